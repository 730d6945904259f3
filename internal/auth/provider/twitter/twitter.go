package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dghubble/oauth1"

	"social-login-service/internal/auth"
	"social-login-service/internal/auth/provider"
	"social-login-service/internal/store"
)

const (
	providerName = "twitter"

	requestTokenURL = "https://api.twitter.com/oauth/request_token"
	authorizeURL    = "https://api.twitter.com/oauth/authorize"
	accessTokenURL  = "https://api.twitter.com/oauth/access_token"
	verifyURL       = "https://api.twitter.com/1.1/account/verify_credentials.json"
)

// Provider implements the Twitter OAuth1a three-leg flow. Twitter does not
// issue OAuth2 access/refresh pairs; the credential material is a
// token/token-secret pair.
type Provider struct {
	config *oauth1.Config
}

func New(consumerKey, consumerSecret, callbackURL string) (*Provider, error) {
	if consumerKey == "" || consumerSecret == "" || callbackURL == "" {
		return nil, errors.New("twitter oauth config missing required fields")
	}

	return &Provider{
		config: &oauth1.Config{
			ConsumerKey:    consumerKey,
			ConsumerSecret: consumerSecret,
			CallbackURL:    callbackURL,
			Endpoint: oauth1.Endpoint{
				RequestTokenURL: requestTokenURL,
				AuthorizeURL:    authorizeURL,
				AccessTokenURL:  accessTokenURL,
			},
		},
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// Begin obtains a request token and returns the authorization URL. OAuth1
// has no state parameter; the request-token secret is returned for the
// exchange leg instead.
func (p *Provider) Begin(_ context.Context, _ string) (string, string, error) {
	requestToken, requestSecret, err := p.config.RequestToken()
	if err != nil {
		return "", "", fmt.Errorf("twitter request token failed: %w", err)
	}

	authorizationURL, err := p.config.AuthorizationURL(requestToken)
	if err != nil {
		return "", "", fmt.Errorf("twitter authorization url failed: %w", err)
	}

	return authorizationURL.String(), requestSecret, nil
}

func (p *Provider) Exchange(
	ctx context.Context,
	cb provider.Callback,
	secret string,
) (*auth.Profile, error) {

	if cb.OAuthToken == "" || cb.OAuthVerifier == "" {
		return nil, errors.New("twitter callback missing oauth_token or oauth_verifier")
	}

	accessToken, accessSecret, err := p.config.AccessToken(
		cb.OAuthToken,
		secret,
		cb.OAuthVerifier,
	)
	if err != nil {
		return nil, fmt.Errorf("twitter access token failed: %w", err)
	}

	profile, err := p.verifyCredentials(ctx, accessToken, accessSecret)
	if err != nil {
		return nil, err
	}

	return &auth.Profile{
		Provider:       providerName,
		ProviderUserID: profile.IDStr,
		Username:       profile.ScreenName,
		Credential: store.Credential{
			Token:       accessToken,
			TokenSecret: accessSecret,
		},
	}, nil
}

// APIClient returns an http.Client that signs requests with the stored
// token/token-secret pair, for calling the Twitter API on the user's behalf.
func (p *Provider) APIClient(ctx context.Context, token, tokenSecret string) *http.Client {
	return p.config.Client(ctx, oauth1.NewToken(token, tokenSecret))
}

type twitterProfile struct {
	IDStr      string `json:"id_str"`
	ScreenName string `json:"screen_name"`
}

func (p *Provider) verifyCredentials(ctx context.Context, token, tokenSecret string) (*twitterProfile, error) {
	client := p.config.Client(ctx, oauth1.NewToken(token, tokenSecret))

	resp, err := client.Get(verifyURL)
	if err != nil {
		return nil, fmt.Errorf("twitter verify credentials failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twitter verify credentials returned %d", resp.StatusCode)
	}

	var profile twitterProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("twitter profile parse failed: %w", err)
	}

	if profile.IDStr == "" || profile.ScreenName == "" {
		return nil, errors.New("twitter profile missing id or screen_name")
	}

	return &profile, nil
}
