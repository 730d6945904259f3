package credentials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-login-service/internal/auth"
	"social-login-service/internal/store"
)

func newTestService() (*Service, *store.Memory) {
	mem := store.NewMemory()
	return NewService(mem, testCost), mem
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	created, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "alice", created.Username)
	assert.NotEqual(t, "password123", created.PasswordHash, "plaintext must never be stored")

	user, err := svc.Authenticate(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
}

func TestRegisterDuplicateUsernameIsDistinctOutcome(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService()

	first, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "different-password")
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)

	// First account is unaffected.
	unchanged, err := mem.UserByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.PasswordHash, unchanged.PasswordHash)
}

func TestAuthenticateAntiEnumeration(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)

	_, unknownErr := svc.Authenticate(ctx, "no-such-user", "password123")
	_, wrongPassErr := svc.Authenticate(ctx, "alice", "wrong-password")

	assert.ErrorIs(t, unknownErr, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongPassErr, auth.ErrInvalidCredentials)

	// The caller must not be able to tell the two apart.
	assert.Equal(t, unknownErr.Error(), wrongPassErr.Error())
}

func TestAuthenticateProviderOnlyAccountFails(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService()

	// Created via an external provider: no local credential.
	_, err := mem.CreateUser(ctx, "spotify_kid", "")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "spotify_kid", "anything")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
