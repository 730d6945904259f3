package linker

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-login-service/internal/auth"
	"social-login-service/internal/store"
)

func spotifyProfile(username string) *auth.Profile {
	return &auth.Profile{
		Provider:       "spotify",
		ProviderUserID: "spotify-123",
		Username:       username,
		Credential: store.Credential{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
		},
	}
}

func TestFirstLoginCreatesUserAndMembership(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	l := New(mem)

	user, err := l.LinkOrCreate(ctx, spotifyProfile("alice"))
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.PasswordHash, "provider-created user has no local credential")

	m, err := mem.MembershipByProviderID(ctx, "spotify", "spotify-123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, m.UserID)
	assert.Equal(t, "access-1", m.Credential.AccessToken)
}

func TestSecondLoginRefreshesCredentialOnly(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	l := New(mem)

	first, err := l.LinkOrCreate(ctx, spotifyProfile("alice"))
	require.NoError(t, err)

	again := spotifyProfile("alice")
	again.Credential = store.Credential{AccessToken: "access-2", RefreshToken: "refresh-2"}

	second, err := l.LinkOrCreate(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	m, err := mem.MembershipByProviderID(ctx, "spotify", "spotify-123")
	require.NoError(t, err)
	assert.Equal(t, "access-2", m.Credential.AccessToken)

	memberships, err := mem.MembershipsByUser(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, memberships, 1, "no duplicate membership on re-login")
}

func TestConcurrentFirstLoginsResolveToOneUser(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	l := New(mem)

	const attempts = 8

	var wg sync.WaitGroup
	users := make([]*store.User, attempts)
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := spotifyProfile("alice")
			users[i], errs[i] = l.LinkOrCreate(ctx, p)
		}(i)
	}
	wg.Wait()

	winner := users[0]
	for i := 0; i < attempts; i++ {
		require.NoError(t, errs[i], "every concurrent first login must resolve")
		assert.Equal(t, winner.ID, users[i].ID, "all logins resolve to the same user")
	}

	memberships, err := mem.MembershipsByUser(ctx, winner.ID)
	require.NoError(t, err)
	assert.Len(t, memberships, 1)

	// Exactly one user exists for the provider identity.
	m, err := mem.MembershipByProviderID(ctx, "spotify", "spotify-123")
	require.NoError(t, err)
	assert.Equal(t, winner.ID, m.UserID)
}

func TestLosingRacerRetriesToWinner(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	l := New(mem)

	// Simulate the loser's view: membership appears between its lookup and
	// its create. Seed the winner first, then link with a distinct username
	// so the retry path (not the username collision) is exercised.
	winner, err := l.LinkOrCreate(ctx, spotifyProfile("alice"))
	require.NoError(t, err)

	loser := spotifyProfile("alice_2")
	resolved, err := l.LinkOrCreate(ctx, loser)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, resolved.ID)
}

// stallingStore parks the first CreateMembership call on a gate so a second
// racer can be driven through the window where the winner's user row exists
// but its membership does not.
type stallingStore struct {
	*store.Memory

	gate    chan struct{}
	stalled chan struct{}
	once    sync.Once
}

func (s *stallingStore) CreateMembership(ctx context.Context, m store.SocialMembership) (*store.SocialMembership, error) {
	s.once.Do(func() {
		close(s.stalled)
		<-s.gate
	})
	return s.Memory.CreateMembership(ctx, m)
}

func TestLoserDuringWinnersMembershipInsertResolvesToWinner(t *testing.T) {
	ctx := context.Background()
	stalling := &stallingStore{
		Memory:  store.NewMemory(),
		gate:    make(chan struct{}),
		stalled: make(chan struct{}),
	}
	l := New(stalling)

	winnerDone := make(chan struct{})
	var winner *store.User
	var winnerErr error
	go func() {
		defer close(winnerDone)
		winner, winnerErr = l.LinkOrCreate(ctx, spotifyProfile("alice"))
	}()
	<-stalling.stalled

	// The winner holds its user row but no membership yet. The loser sees the
	// username taken and no membership; it must keep retrying, not fail.
	loserDone := make(chan struct{})
	var loser *store.User
	var loserErr error
	go func() {
		defer close(loserDone)
		loser, loserErr = l.LinkOrCreate(ctx, spotifyProfile("alice"))
	}()

	close(stalling.gate)
	<-winnerDone
	<-loserDone

	require.NoError(t, winnerErr)
	require.NoError(t, loserErr, "loser must resolve to the winner")
	assert.Equal(t, winner.ID, loser.ID)

	memberships, err := stalling.MembershipsByUser(ctx, winner.ID)
	require.NoError(t, err)
	assert.Len(t, memberships, 1)
}

func TestUsernameCollisionSurfacesAsProviderFailure(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	l := New(mem)

	// An unrelated local account already owns the profile username.
	_, err := mem.CreateUser(ctx, "alice", "some-hash")
	require.NoError(t, err)

	_, err = l.LinkOrCreate(ctx, spotifyProfile("alice"))
	assert.ErrorIs(t, err, auth.ErrProviderAuth)
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)

	// The linking failure must not have created a membership.
	_, err = mem.MembershipByProviderID(ctx, "spotify", "spotify-123")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestIncompleteProfileRejected(t *testing.T) {
	ctx := context.Background()
	l := New(store.NewMemory())

	_, err := l.LinkOrCreate(ctx, &auth.Profile{Provider: "spotify"})
	assert.ErrorIs(t, err, auth.ErrProviderAuth)

	_, err = l.LinkOrCreate(ctx, nil)
	assert.ErrorIs(t, err, auth.ErrProviderAuth)
}
