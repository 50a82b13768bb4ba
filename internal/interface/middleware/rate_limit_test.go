package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemainingAfter(t *testing.T) {
	assert.Equal(t, 9, remainingAfter(10, 1))
	assert.Equal(t, 0, remainingAfter(10, 10))
	// Once the counter overshoots the limit the header stays at zero.
	assert.Equal(t, 0, remainingAfter(10, 11))
	assert.Equal(t, 0, remainingAfter(10, 250))
}

func TestToInt(t *testing.T) {
	assert.Equal(t, 7, toInt(int64(7)))
	assert.Equal(t, 7, toInt(7))
	assert.Equal(t, 7, toInt("7"))
	assert.Equal(t, 0, toInt(nil))
}
