package auth

import "social-login-service/internal/store"

// Profile is the normalized identity an external provider hands back after a
// successful leg-2 exchange. It contains facts only; linking and session
// decisions happen elsewhere.
type Profile struct {
	Provider       string // e.g. "spotify", "twitter"
	ProviderUserID string // provider-scoped unique user identifier
	Username       string // display name used to seed an auto-created user
	Credential     store.Credential
}
