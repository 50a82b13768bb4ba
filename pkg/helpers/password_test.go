package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, CompareHashAndPassword(hash, "secret1"))
	assert.False(t, CompareHashAndPassword(hash, "wrong"))
}

func TestNewResetToken(t *testing.T) {
	raw, hashed, err := NewResetToken()
	require.NoError(t, err)

	// 20 random bytes, hex encoded.
	assert.Len(t, raw, 40)
	assert.Equal(t, Sha256Hex(raw), hashed)
	assert.NotEqual(t, raw, hashed)

	raw2, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, raw2)
}

func TestSha256HexStable(t *testing.T) {
	assert.Equal(t, Sha256Hex("abc"), Sha256Hex("abc"))
	assert.Len(t, Sha256Hex("abc"), 64)
}
