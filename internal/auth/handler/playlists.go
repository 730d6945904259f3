package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"social-login-service/internal/logger"
	"social-login-service/internal/middleware"
	"social-login-service/internal/store"
)

const defaultSpotifyAPIBase = "https://api.spotify.com/v1"

// Playlists demonstrates using stored membership credentials against the
// provider's API on the user's behalf. Requires a Spotify-linked account.
func (h *Handler) Playlists(c *gin.Context) {
	user, ok := middleware.UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": "You must be logged in to perform this action.",
		})
		return
	}

	m, err := h.memberships.MembershipByUserAndProvider(
		c.Request.Context(), user.ID, "spotify",
	)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusForbidden, gin.H{
			"message": "You must log in using Spotify to access this resource.",
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

	req, err := http.NewRequestWithContext(
		c.Request.Context(),
		http.MethodGet,
		h.spotifyAPIBase+"/me/playlists",
		nil,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	req.Header.Set("Authorization", "Bearer "+m.Credential.AccessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Error("spotify playlists fetch failed", map[string]any{
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
