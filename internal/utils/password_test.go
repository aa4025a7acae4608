package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Secure1!", 12)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "Secure1!", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 12, cost)
}

func TestCheckPasswordHash(t *testing.T) {
	hash, err := HashPassword("Secure1!", 12)
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("Secure1!", hash))
	assert.False(t, CheckPasswordHash("secure1!", hash))
	assert.False(t, CheckPasswordHash("", hash))
	assert.False(t, CheckPasswordHash("Secure1!", "not-a-hash"))
}

func TestHashPasswordSaltsEveryCall(t *testing.T) {
	first, err := HashPassword("Secure1!", 12)
	require.NoError(t, err)
	second, err := HashPassword("Secure1!", 12)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
