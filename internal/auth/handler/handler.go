package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"social-login-service/internal/auth"
	"social-login-service/internal/auth/credentials"
	"social-login-service/internal/auth/linker"
	"social-login-service/internal/auth/provider"
	"social-login-service/internal/logger"
	"social-login-service/internal/middleware"
	"social-login-service/internal/session"
	"social-login-service/internal/store"
)

type Handler struct {
	providers   *provider.Registry
	credentials *credentials.Service
	linker      *linker.Linker
	codec       *session.Codec
	memberships store.MembershipStore

	successURL string
	failureURL string

	spotifyAPIBase string
	twitterAPIBase string
}

func NewHandler(
	registry *provider.Registry,
	creds *credentials.Service,
	link *linker.Linker,
	codec *session.Codec,
	memberships store.MembershipStore,
	successURL string,
	failureURL string,
) *Handler {
	return &Handler{
		providers:   registry,
		credentials: creds,
		linker:      link,
		codec:       codec,
		memberships: memberships,
		successURL:  successURL,
		failureURL:  failureURL,

		spotifyAPIBase: defaultSpotifyAPIBase,
		twitterAPIBase: defaultTwitterAPIBase,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/auth", h.Login)
	r.GET("/api/auth", h.CurrentSession)
	r.DELETE("/api/auth", h.Logout)
	r.POST("/api/users", h.RegisterUser)

	r.GET("/auth/:provider", h.beginProviderLogin)
	r.GET("/auth/:provider/callback", h.providerCallback)
}

// RegisterProtectedRoutes mounts routes that require an authenticated session.
// The caller attaches the auth middleware to the group first.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/playlists", h.Playlists)
	rg.GET("/tweets", h.Tweets)
}

func (h *Handler) beginProviderLogin(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "unknown auth provider",
		})
		return
	}

	state := issueState(c)

	authURL, secret, err := p.Begin(c.Request.Context(), state)
	if err != nil {
		logger.Error("provider begin failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.Redirect(http.StatusFound, h.failureURL)
		return
	}

	setExchangeSecret(c, secret)
	c.Redirect(http.StatusFound, authURL)
}

func (h *Handler) providerCallback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "unknown auth provider",
		})
		return
	}

	// Provider denied the grant (user hit cancel, expired consent, ...).
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("provider callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		c.Redirect(http.StatusFound, h.failureURL)
		return
	}

	// OAuth1 providers carry no state parameter; the request-token secret
	// round-trip plays the same role.
	if c.Query("state") != "" && !validateState(c) {
		logger.Warn("provider callback state mismatch", map[string]any{
			"provider": providerName,
		})
		c.Redirect(http.StatusFound, h.failureURL)
		return
	}

	cb := provider.Callback{
		Code:          c.Query("code"),
		OAuthToken:    c.Query("oauth_token"),
		OAuthVerifier: c.Query("oauth_verifier"),
	}

	profile, err := p.Exchange(c.Request.Context(), cb, exchangeSecret(c))
	if err != nil {
		logger.Warn("provider exchange failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.Redirect(http.StatusFound, h.failureURL)
		return
	}

	user, err := h.linker.LinkOrCreate(c.Request.Context(), profile)
	if err != nil {
		if errors.Is(err, auth.ErrProviderAuth) {
			logger.Warn("account linking rejected", map[string]any{
				"provider": providerName,
				"error":    err.Error(),
			})
			c.Redirect(http.StatusFound, h.failureURL)
			return
		}
		logger.Error("account linking failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.Redirect(http.StatusFound, h.failureURL)
		return
	}

	if err := h.establishSession(c, user.ID); err != nil {
		logger.Error("session creation failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.Redirect(http.StatusFound, h.failureURL)
		return
	}

	logger.Info("provider login succeeded", map[string]any{
		"provider": providerName,
		"user_id":  user.ID,
	})

	c.Redirect(http.StatusFound, h.successURL)
}

// establishSession issues a session for the user and sets the cookie.
func (h *Handler) establishSession(c *gin.Context, userID string) error {
	s, err := h.codec.Issue(c.Request.Context(), userID)
	if err != nil {
		return err
	}

	session.SetCookie(c.Writer, s.SessionID, s.ExpiresAt, session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// sessionUser resolves the current session without requiring one. A session
// backend failure is returned, not folded into "no user".
func (h *Handler) sessionUser(c *gin.Context) (*store.User, error) {
	if u, ok := middleware.UserFromContext(c.Request.Context()); ok {
		return u, nil
	}

	cookie, err := c.Request.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	return h.codec.Resolve(c.Request.Context(), cookie.Value)
}
