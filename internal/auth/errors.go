package auth

import "errors"

// Expected authentication outcomes. Handlers map these to client-facing
// responses; anything else is treated as an internal failure and logged.
var (
	// ErrInvalidCredentials is returned for both an unknown username and a
	// wrong password. Callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUsernameTaken means the requested username belongs to another user.
	ErrUsernameTaken = errors.New("username already in use")

	// ErrUnauthenticated means no valid session identity was presented.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrProviderAuth means the external-provider handshake was denied or
	// produced a malformed profile.
	ErrProviderAuth = errors.New("provider authentication failed")

	// ErrCrypto means stored hash material is malformed. A wrong password is
	// never an ErrCrypto.
	ErrCrypto = errors.New("malformed credential hash")
)
