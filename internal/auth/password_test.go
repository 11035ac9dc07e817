package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askforge/askforge/internal/auth"
)

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := auth.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse battery staple", hash)
	assert.True(t, auth.CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, auth.CheckPassword(hash, "wrong"))
}

func TestSamePasswordDifferentHashes(t *testing.T) {
	h1, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	h2, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	// bcrypt salts per hash.
	assert.NotEqual(t, h1, h2)
}
