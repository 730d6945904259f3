package linker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"social-login-service/internal/auth"
	"social-login-service/internal/logger"
	"social-login-service/internal/store"
)

// Linker reconciles external-provider identities with local users. It is the
// ONLY place where profile-to-user mapping logic lives.
type Linker struct {
	store store.Store
}

func New(s store.Store) *Linker {
	return &Linker{store: s}
}

// maxAttempts bounds the retry loop for the concurrent-first-login race.
// One retry suffices in practice: losing the membership insert means the
// winning record now exists.
const maxAttempts = 3

// retryDelay gives a concurrent winner time to finish its membership insert
// when the loser only saw the winner's user row so far.
const retryDelay = 25 * time.Millisecond

// LinkOrCreate finds the user behind a provider profile, creating user and
// membership on first login. A membership is never created without its
// owning user, and two concurrent first logins by the same provider identity
// resolve to a single user: the store's uniqueness constraint on
// (provider, provider_user_id) decides the winner and the loser re-resolves.
func (l *Linker) LinkOrCreate(ctx context.Context, profile *auth.Profile) (*store.User, error) {
	if profile == nil || profile.Provider == "" || profile.ProviderUserID == "" {
		return nil, fmt.Errorf("%w: incomplete profile", auth.ErrProviderAuth)
	}

	usernameCollision := false

	for attempt := 0; attempt < maxAttempts; attempt++ {
		membership, err := l.store.MembershipByProviderID(
			ctx, profile.Provider, profile.ProviderUserID,
		)

		switch {
		case err == nil:
			return l.refresh(ctx, membership, profile)

		case errors.Is(err, store.ErrNotFound):
			user, err := l.create(ctx, profile)
			switch {
			case err == nil:
				return user, nil

			case errors.Is(err, store.ErrMembershipExists):
				// Lost a concurrent first-login race; the winner's
				// membership exists now, so look it up again.
				logger.Warn("membership race lost, retrying lookup", map[string]any{
					"provider": profile.Provider,
					"attempt":  attempt + 1,
				})
				continue

			case errors.Is(err, store.ErrUsernameTaken):
				// The name may belong to a concurrent winner whose membership
				// insert has not landed yet. Wait a beat and look again; a
				// genuine collision with an unrelated local account surfaces
				// once the retries exhaust.
				usernameCollision = true
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(retryDelay):
				}
				continue

			default:
				return nil, err
			}

		default:
			return nil, fmt.Errorf("linker: membership lookup: %w", err)
		}
	}

	if usernameCollision {
		// An unrelated local account owns the profile username. Do not guess
		// a disambiguated name; surface a provider auth failure.
		return nil, fmt.Errorf("%w: %w", auth.ErrProviderAuth, auth.ErrUsernameTaken)
	}

	return nil, fmt.Errorf("linker: gave up after %d attempts for provider %s",
		maxAttempts, profile.Provider)
}

// refresh updates the stored credential material (providers rotate tokens on
// every login) and returns the owning user.
func (l *Linker) refresh(
	ctx context.Context,
	membership *store.SocialMembership,
	profile *auth.Profile,
) (*store.User, error) {

	if err := l.store.UpdateCredential(ctx, membership.ID, profile.Credential); err != nil {
		return nil, fmt.Errorf("linker: refresh credential: %w", err)
	}

	user, err := l.store.UserByID(ctx, membership.UserID)
	if err != nil {
		return nil, fmt.Errorf("linker: owning user lookup: %w", err)
	}

	return user, nil
}

// create makes the user first, then the membership pointing at it. When the
// membership insert loses the uniqueness race, the freshly created orphan
// user is removed before the caller retries.
func (l *Linker) create(ctx context.Context, profile *auth.Profile) (*store.User, error) {
	user, err := l.store.CreateUser(ctx, profile.Username, "")
	if errors.Is(err, store.ErrUsernameTaken) {
		// Fast path: the name belongs to a concurrent winner whose membership
		// already landed.
		_, lookupErr := l.store.MembershipByProviderID(
			ctx, profile.Provider, profile.ProviderUserID,
		)
		if lookupErr == nil {
			return nil, store.ErrMembershipExists
		}
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("linker: create user: %w", err)
	}

	_, err = l.store.CreateMembership(ctx, store.SocialMembership{
		Provider:       profile.Provider,
		ProviderUserID: profile.ProviderUserID,
		Credential:     profile.Credential,
		UserID:         user.ID,
	})
	if errors.Is(err, store.ErrMembershipExists) {
		if delErr := l.store.DeleteUser(ctx, user.ID); delErr != nil {
			logger.Error("orphan user cleanup failed", map[string]any{
				"user_id": user.ID,
				"error":   delErr.Error(),
			})
		}
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("linker: create membership: %w", err)
	}

	return user, nil
}
