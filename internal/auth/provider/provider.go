package provider

import (
	"context"
	"net/http"

	"social-login-service/internal/auth"
)

// Callback carries the query parameters a provider sends to the leg-2
// redirect. OAuth2 providers fill Code; OAuth1 providers fill
// OAuthToken/OAuthVerifier.
type Callback struct {
	Code          string
	OAuthToken    string
	OAuthVerifier string
}

// Strategy is one pluggable way of proving identity against an external
// provider. Implementations return identity facts only and must not perform
// user creation, linking, or session management.
type Strategy interface {
	// Name returns the provider identifier (e.g. "spotify", "twitter").
	Name() string

	// Begin returns the authorization URL the user agent is redirected to,
	// plus an opaque secret the leg-2 exchange needs back (PKCE verifier for
	// OAuth2, request-token secret for OAuth1). The caller round-trips the
	// secret in a short-lived cookie.
	Begin(ctx context.Context, state string) (authURL string, secret string, err error)

	// Exchange turns the leg-2 callback into a normalized profile.
	Exchange(ctx context.Context, cb Callback, secret string) (*auth.Profile, error)
}

// APIClientProvider is implemented by strategies whose stored credentials
// require request signing (OAuth1). The returned client signs every request
// with the membership's token pair.
type APIClientProvider interface {
	APIClient(ctx context.Context, token, tokenSecret string) *http.Client
}
