package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsernameUniquenessEnforced(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	_, err := mem.CreateUser(ctx, "alice", "hash-1")
	require.NoError(t, err)

	_, err = mem.CreateUser(ctx, "alice", "hash-2")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	// Case-sensitive: a different casing is a different username.
	_, err = mem.CreateUser(ctx, "Alice", "hash-3")
	assert.NoError(t, err)
}

func TestMembershipUniquenessEnforced(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	u, err := mem.CreateUser(ctx, "alice", "")
	require.NoError(t, err)

	_, err = mem.CreateMembership(ctx, SocialMembership{
		Provider:       "spotify",
		ProviderUserID: "123",
		UserID:         u.ID,
	})
	require.NoError(t, err)

	_, err = mem.CreateMembership(ctx, SocialMembership{
		Provider:       "spotify",
		ProviderUserID: "123",
		UserID:         u.ID,
	})
	assert.ErrorIs(t, err, ErrMembershipExists)

	// Same external id at a different provider is a different membership.
	_, err = mem.CreateMembership(ctx, SocialMembership{
		Provider:       "twitter",
		ProviderUserID: "123",
		UserID:         u.ID,
	})
	assert.NoError(t, err)
}

func TestDeleteUserCascadesMemberships(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	u, err := mem.CreateUser(ctx, "alice", "")
	require.NoError(t, err)
	_, err = mem.CreateMembership(ctx, SocialMembership{
		Provider:       "spotify",
		ProviderUserID: "123",
		UserID:         u.ID,
	})
	require.NoError(t, err)

	require.NoError(t, mem.DeleteUser(ctx, u.ID))

	_, err = mem.UserByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = mem.MembershipByProviderID(ctx, "spotify", "123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateCredentialReplacesMaterial(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	u, err := mem.CreateUser(ctx, "alice", "")
	require.NoError(t, err)
	m, err := mem.CreateMembership(ctx, SocialMembership{
		Provider:       "twitter",
		ProviderUserID: "123",
		Credential:     Credential{Token: "t1", TokenSecret: "s1"},
		UserID:         u.ID,
	})
	require.NoError(t, err)

	err = mem.UpdateCredential(ctx, m.ID, Credential{Token: "t2", TokenSecret: "s2"})
	require.NoError(t, err)

	got, err := mem.MembershipByUserAndProvider(ctx, u.ID, "twitter")
	require.NoError(t, err)
	assert.Equal(t, "t2", got.Credential.Token)
	assert.Equal(t, "s2", got.Credential.TokenSecret)

	assert.ErrorIs(t, mem.UpdateCredential(ctx, "missing", Credential{}), ErrNotFound)
}
