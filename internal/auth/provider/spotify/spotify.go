package spotify

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"social-login-service/internal/auth"
	"social-login-service/internal/auth/provider"
	"social-login-service/internal/store"
)

const (
	providerName = "spotify"

	authURL    = "https://accounts.spotify.com/authorize"
	tokenURL   = "https://accounts.spotify.com/api/token"
	profileURL = "https://api.spotify.com/v1/me"
)

// Provider implements the Spotify OAuth2 authorization-code flow with PKCE
// and resolves the profile via the Web API.
type Provider struct {
	oauthConfig *oauth2.Config
}

func New(clientID, clientSecret, redirectURL string) (*Provider, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("spotify oauth config missing required fields")
	}

	return &Provider{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
			// Minimum scopes to read the user's name and email, plus
			// playlist access so linked accounts are useful to the API.
			Scopes: []string{
				"user-read-private", "user-read-email",
				"playlist-read-private", "playlist-read-collaborative",
			},
		},
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// Begin builds the authorization URL with PKCE parameters. The returned
// secret is the code verifier the exchange leg needs back.
func (p *Provider) Begin(_ context.Context, state string) (string, string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("spotify pkce verifier: %w", err)
	}

	verifier := base64.RawURLEncoding.EncodeToString(b)
	hash := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(hash[:])

	url := p.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)

	return url, verifier, nil
}

func (p *Provider) Exchange(
	ctx context.Context,
	cb provider.Callback,
	secret string,
) (*auth.Profile, error) {

	if cb.Code == "" {
		return nil, errors.New("spotify callback missing code")
	}

	token, err := p.oauthConfig.Exchange(
		ctx,
		cb.Code,
		oauth2.SetAuthURLParam("code_verifier", secret),
	)
	if err != nil {
		return nil, fmt.Errorf("spotify token exchange failed: %w", err)
	}

	profile, err := p.fetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}

	username := profile.DisplayName
	if username == "" {
		username = profile.ID
	}

	return &auth.Profile{
		Provider:       providerName,
		ProviderUserID: profile.ID,
		Username:       username,
		Credential: store.Credential{
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
		},
	}, nil
}

type spotifyProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

func (p *Provider) fetchProfile(ctx context.Context, token *oauth2.Token) (*spotifyProfile, error) {
	client := p.oauthConfig.Client(ctx, token)

	resp, err := client.Get(profileURL)
	if err != nil {
		return nil, fmt.Errorf("spotify profile fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify profile fetch returned %d", resp.StatusCode)
	}

	var profile spotifyProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("spotify profile parse failed: %w", err)
	}

	if profile.ID == "" {
		return nil, errors.New("spotify profile missing id")
	}

	return &profile, nil
}
