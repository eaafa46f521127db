package numfmt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "0", Format(0))
	assert.Equal(t, "1,234,567", Format(1234567))
	assert.Equal(t, "-42", Format(-42))
	assert.Equal(t, "NaN", Format(math.NaN()))
	assert.Equal(t, "∞", Format(math.Inf(1)))
}

func TestFormatInt(t *testing.T) {
	assert.Equal(t, "9,876", FormatInt(9876))
}
