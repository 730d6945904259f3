package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"social-login-service/internal/store"
)

// Codec converts between an authenticated identity and an opaque session
// token. Serialization extracts only the user ID; resolution looks the user
// up again on every request, so a deleted user simply stops resolving.
type Codec struct {
	sessions Store
	users    store.UserStore
	ttl      time.Duration
}

func NewCodec(sessions Store, users store.UserStore, ttl time.Duration) *Codec {
	return &Codec{
		sessions: sessions,
		users:    users,
		ttl:      ttl,
	}
}

// TTL returns the configured session lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue creates a new session carrying only the user ID and returns it.
func (c *Codec) Issue(ctx context.Context, userID string) (Session, error) {
	sessionID, err := GenerateID()
	if err != nil {
		return Session{}, err
	}

	s := Session{
		SessionID: sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(c.ttl),
	}

	if err := c.sessions.Create(ctx, s); err != nil {
		return Session{}, fmt.Errorf("session: create: %w", err)
	}

	return s, nil
}

// Resolve rehydrates the user behind a session token. A missing or expired
// session, or a user that no longer exists, yields (nil, nil): the request
// proceeds unauthenticated rather than failing.
func (c *Codec) Resolve(ctx context.Context, sessionID string) (*store.User, error) {
	if sessionID == "" {
		return nil, nil
	}

	s, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session: get: %w", err)
	}
	if s == nil {
		return nil, nil
	}

	if time.Now().After(s.ExpiresAt) {
		_ = c.sessions.Delete(ctx, sessionID)
		return nil, nil
	}

	user, err := c.users.UserByID(ctx, s.UserID)
	if errors.Is(err, store.ErrNotFound) {
		_ = c.sessions.Delete(ctx, sessionID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: user lookup: %w", err)
	}

	// Rolling expiry: activity extends the session.
	s.ExpiresAt = time.Now().Add(c.ttl)
	if err := c.sessions.Update(ctx, *s); err != nil {
		return nil, fmt.Errorf("session: extend: %w", err)
	}

	return user, nil
}

// Revoke destroys the session. Idempotent.
func (c *Codec) Revoke(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return c.sessions.Delete(ctx, sessionID)
}
