package session

import (
	"context"
	"time"
)

// Session is the minimal durable representation of "who is logged in". It
// intentionally carries only the user ID; never a password hash or provider
// credential.
type Session struct {
	SessionID string    // opaque random identifier
	UserID    string    // references users.id
	ExpiresAt time.Time // absolute expiry time
}

// Store defines how sessions are stored and retrieved. Implementations
// (e.g., Redis) must remain stateless and opaque.
type Store interface {
	Create(ctx context.Context, s Session) error
	// Get returns (nil, nil) when the session does not exist.
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}
