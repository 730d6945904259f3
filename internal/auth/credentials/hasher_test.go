package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"social-login-service/internal/auth"
)

const testCost = bcrypt.MinCost

func TestHashAndVerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple", testCost)
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	ok, err := VerifyPassword(hash, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyWrongPasswordIsFalseNotError(t *testing.T) {
	hash, err := HashPassword("hunter2", testCost)
	require.NoError(t, err)

	ok, err := VerifyPassword(hash, "hunter3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyMalformedHashIsCryptoFailure(t *testing.T) {
	ok, err := VerifyPassword("not-a-bcrypt-hash", "whatever")
	assert.False(t, ok)
	assert.ErrorIs(t, err, auth.ErrCrypto)
}

func TestHashingAlreadyHashedValueIsNoOp(t *testing.T) {
	hash, err := HashPassword("hunter2", testCost)
	require.NoError(t, err)

	again, err := HashPassword(hash, testCost)
	require.NoError(t, err)
	assert.Equal(t, hash, again, "an already-hashed value must not be hashed twice")

	ok, err := VerifyPassword(again, "hunter2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	_, err := HashPassword("", testCost)
	assert.Error(t, err)
}

func TestHashesAreSalted(t *testing.T) {
	h1, err := HashPassword("same password", testCost)
	require.NoError(t, err)
	h2, err := HashPassword("same password", testCost)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
