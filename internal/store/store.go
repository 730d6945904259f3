package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("store: record not found")

	// ErrUsernameTaken means the username uniqueness constraint fired.
	ErrUsernameTaken = errors.New("store: username already in use")

	// ErrMembershipExists means the (provider, provider_user_id) uniqueness
	// constraint fired. A concurrent creator lost the race and should
	// re-resolve instead of surfacing this to the caller.
	ErrMembershipExists = errors.New("store: membership already exists")
)

// User is the local identity record. PasswordHash is empty for accounts
// created purely via an external provider.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Credential is the provider-issued material attached to a membership.
// OAuth2-style providers fill AccessToken/RefreshToken; OAuth1-style
// providers fill Token/TokenSecret.
type Credential struct {
	AccessToken  string
	RefreshToken string
	Token        string
	TokenSecret  string
}

// SocialMembership links one User to one identity at one external provider.
// The pair (Provider, ProviderUserID) is unique.
type SocialMembership struct {
	ID             string
	Provider       string
	ProviderUserID string
	Credential     Credential
	UserID         string
	CreatedAt      time.Time
}

type UserStore interface {
	// CreateUser inserts a new user. Returns ErrUsernameTaken when the
	// username belongs to an existing user. passwordHash may be empty.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	UserByID(ctx context.Context, id string) (*User, error)
	UserByUsername(ctx context.Context, username string) (*User, error)

	DeleteUser(ctx context.Context, id string) error
}

type MembershipStore interface {
	// CreateMembership inserts a new membership. Returns ErrMembershipExists
	// when (provider, provider_user_id) is already linked.
	CreateMembership(ctx context.Context, m SocialMembership) (*SocialMembership, error)

	MembershipByProviderID(ctx context.Context, provider, providerUserID string) (*SocialMembership, error)
	MembershipByUserAndProvider(ctx context.Context, userID, provider string) (*SocialMembership, error)
	MembershipsByUser(ctx context.Context, userID string) ([]SocialMembership, error)

	// UpdateCredential replaces the credential material of an existing
	// membership. Providers rotate tokens on every login.
	UpdateCredential(ctx context.Context, id string, cred Credential) error
}

// Store is the Identity Record Store: the only serialization point for
// concurrent request handling. Implementations must enforce the uniqueness
// constraints atomically.
type Store interface {
	UserStore
	MembershipStore
}
