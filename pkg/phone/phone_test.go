package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "07700900982", Normalize("07700 900 982"))
	assert.Equal(t, "07700900982", Normalize("+44 7700-900982"))
	assert.Equal(t, "02079460000", Normalize("(020) 7946 0000"))
}

func TestValidMobile(t *testing.T) {
	assert.True(t, ValidMobile("07700900982"))
	assert.False(t, ValidMobile("02079460000"), "landline")
	assert.False(t, ValidMobile("0770090098"), "too short")
	assert.False(t, ValidMobile("0770090098x"))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("02079460000"))
	assert.True(t, Valid("0161496000"))
	assert.False(t, Valid("2079460000"), "no leading zero")
	assert.False(t, Valid(""))
}
