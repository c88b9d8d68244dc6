package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	digest, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, digest)

	assert.True(t, VerifyPassword("correct horse battery staple", digest))
	assert.False(t, VerifyPassword("correct horse battery stapl", digest))
	assert.False(t, VerifyPassword("", digest))
}

func TestHashPasswordSaltsPerCall(t *testing.T) {
	first, err := HashPassword("hunter2")
	require.NoError(t, err)
	second, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, VerifyPassword("hunter2", first))
	assert.True(t, VerifyPassword("hunter2", second))
}

func TestVerifyPasswordMalformedDigest(t *testing.T) {
	assert.False(t, VerifyPassword("hunter2", ""))
	assert.False(t, VerifyPassword("hunter2", "not-a-bcrypt-digest"))
	assert.False(t, VerifyPassword("hunter2", "$2a$garbage"))
}
