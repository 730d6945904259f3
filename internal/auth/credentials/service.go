package credentials

import (
	"context"
	"errors"

	"social-login-service/internal/auth"
	"social-login-service/internal/store"
)

// Service implements the local username/password strategy. Plaintext
// passwords never reach the store layer: they are hashed here, exactly once.
type Service struct {
	users store.UserStore
	cost  int
}

func NewService(users store.UserStore, cost int) *Service {
	return &Service{users: users, cost: cost}
}

// Register creates a user with a freshly hashed password. A duplicate
// username is reported as auth.ErrUsernameTaken, a distinct outcome.
func (s *Service) Register(
	ctx context.Context,
	username string,
	password string,
) (*store.User, error) {

	if username == "" || password == "" {
		return nil, auth.ErrInvalidCredentials
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, username, hash)
	if errors.Is(err, store.ErrUsernameTaken) {
		return nil, auth.ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate verifies a username/password pair. An unknown username and a
// wrong password both return auth.ErrInvalidCredentials so the caller cannot
// enumerate accounts. Malformed stored hashes surface as auth.ErrCrypto.
func (s *Service) Authenticate(
	ctx context.Context,
	username string,
	password string,
) (*store.User, error) {

	user, err := s.users.UserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	// Provider-created accounts have no local credential.
	if user.PasswordHash == "" {
		return nil, auth.ErrInvalidCredentials
	}

	ok, err := VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, auth.ErrInvalidCredentials
	}

	return user, nil
}
