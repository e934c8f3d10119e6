package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrimLower(t *testing.T) {
	assert.Equal(t, []string{"0-5", "8+"}, DedupeAndTrimLower([]string{" 0-5", "8+", "0-5 ", "", "  "}))
	assert.Empty(t, DedupeAndTrimLower(nil))
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "Mary Ann Smith", CollapseSpace("  Mary \t Ann   Smith "))
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "4111111111111111", DigitsOnly("4111 1111-1111 1111"))
}
