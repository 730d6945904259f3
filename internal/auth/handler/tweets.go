package handler

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"social-login-service/internal/auth/provider"
	"social-login-service/internal/logger"
	"social-login-service/internal/middleware"
	"social-login-service/internal/store"
)

const defaultTwitterAPIBase = "https://api.twitter.com/1.1"

// Tweets fetches the user's recent timeline with the stored OAuth1 token
// pair. Requires a Twitter-linked account.
func (h *Handler) Tweets(c *gin.Context) {
	user, ok := middleware.UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": "You must be logged in to perform this action.",
		})
		return
	}

	m, err := h.memberships.MembershipByUserAndProvider(
		c.Request.Context(), user.ID, "twitter",
	)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusForbidden, gin.H{
			"message": "You must log in using Twitter to access this resource.",
		})
		return
	}
	if err != nil {
		logger.Error("membership lookup failed", map[string]any{
			"user_id": user.ID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	strategy, err := h.providers.Get("twitter")
	if err != nil {
		// A membership exists but the provider is no longer configured.
		logger.Error("twitter strategy unavailable", map[string]any{
			"user_id": user.ID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	signer, ok := strategy.(provider.APIClientProvider)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	client := signer.APIClient(
		c.Request.Context(), m.Credential.Token, m.Credential.TokenSecret,
	)

	timelineURL := h.twitterAPIBase + "/statuses/user_timeline.json?user_id=" +
		url.QueryEscape(m.ProviderUserID)

	req, err := http.NewRequestWithContext(
		c.Request.Context(), http.MethodGet, timelineURL, nil,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	resp, err := client.Do(req)
	if err != nil {
		logger.Error("twitter timeline fetch failed", map[string]any{
			"user_id": user.ID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusBadGateway, gin.H{"message": "provider request failed"})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"message": "provider request failed"})
		return
	}

	c.Data(resp.StatusCode, "application/json", body)
}
