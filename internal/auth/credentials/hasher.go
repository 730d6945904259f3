package credentials

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"social-login-service/internal/auth"
)

// DefaultCost is the bcrypt work factor used when the caller passes 0.
// Verification should cost a few hundred milliseconds on commodity hardware;
// raise this as hardware improves.
const DefaultCost = 12

// HashPassword hashes a plaintext password using bcrypt. Passing an
// already-hashed value is a no-op: the hash comes back unchanged, so a value
// is never hashed twice.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("credentials: empty password")
	}
	if cost == 0 {
		cost = DefaultCost
	}

	// Already a bcrypt hash; hashing again would destroy it.
	if _, err := bcrypt.Cost([]byte(password)); err == nil {
		return password, nil
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("credentials: hash: %w", err)
	}

	return string(bytes), nil
}

// VerifyPassword compares a plaintext password with a stored hash. A wrong
// password reports (false, nil); only malformed hash input is an error.
func VerifyPassword(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", auth.ErrCrypto, err)
}
