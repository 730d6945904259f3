package handler

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	stateCookieName  = "__oauth_state"
	secretCookieName = "__oauth_secret"
	handshakeTTL     = 5 * time.Minute
)

// issueState generates the anti-CSRF state for the redirect handshake and
// stores it in a short-lived cookie.
func issueState(c *gin.Context) string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)

	state := base64.RawURLEncoding.EncodeToString(b)
	setHandshakeCookie(c, stateCookieName, state)
	return state
}

func validateState(c *gin.Context) bool {
	stateQuery := c.Query("state")
	if stateQuery == "" {
		return false
	}

	cookie, err := c.Request.Cookie(stateCookieName)
	if err != nil {
		return false
	}

	return cookie.Value == stateQuery
}

// setExchangeSecret stores the provider's leg-2 secret (PKCE verifier or
// OAuth1 request-token secret) between the two redirect legs.
func setExchangeSecret(c *gin.Context, secret string) {
	if secret == "" {
		return
	}
	setHandshakeCookie(c, secretCookieName, secret)
}

func exchangeSecret(c *gin.Context) string {
	cookie, err := c.Request.Cookie(secretCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setHandshakeCookie(c *gin.Context, name, value string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(handshakeTTL.Seconds()),
	})
}
