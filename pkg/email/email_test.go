package email

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "jane.doe@example.com", Normalize("  Jane.Doe@Example.COM "))
}

func TestValid(t *testing.T) {
	valid := []string{"jane@example.com", "jane+childcare@ex.gov.uk"}
	invalid := []string{"", "jane", "jane@localhost", "jane@@example.com", "jane@-example.com", strings.Repeat("a", 250) + "@x.io"}

	for _, in := range valid {
		assert.True(t, Valid(in), in)
	}
	for _, in := range invalid {
		assert.False(t, Valid(in), in)
	}
}

func TestMask(t *testing.T) {
	assert.Equal(t, "j***@example.com", Mask("jane.doe@example.com"))
	assert.Equal(t, "***", Mask("nope"))
}
