package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("abc123xyz")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "abc123xyz", hash)

	ok, err := VerifyPassword("abc123xyz", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordProducesUniqueHashes(t *testing.T) {
	first, err := HashPassword("abc123xyz")
	require.NoError(t, err)

	second, err := HashPassword("abc123xyz")
	require.NoError(t, err)

	// Random salts mean equal passwords never share a hash.
	assert.NotEqual(t, first, second)
}
