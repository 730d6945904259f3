package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-login-service/internal/logger"
	"social-login-service/internal/session"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// invalidCredentialsMessage is returned for both an unknown username and a
// wrong password. The two failure payloads must stay byte-identical.
const invalidCredentialsMessage = "Invalid username or password."

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	user, err := h.credentials.Authenticate(
		c.Request.Context(),
		req.Username,
		req.Password,
	)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": invalidCredentialsMessage})
		return
	}

	if err := h.establishSession(c, user.ID); err != nil {
		logger.Error("session creation failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "session error"})
		return
	}

	h.renderSnapshot(c, http.StatusOK, user)
}

// CurrentSession returns the client session snapshot for the logged-in user,
// or an unauthenticated outcome.
func (h *Handler) CurrentSession(c *gin.Context) {
	user, err := h.sessionUser(c)
	if err != nil {
		logger.Error("session resolve failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": "You are not currently logged in.",
		})
		return
	}

	h.renderSnapshot(c, http.StatusOK, user)
}

// Logout destroys the server session. The client clears its own snapshot.
func (h *Handler) Logout(c *gin.Context) {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		if err := h.codec.Revoke(c.Request.Context(), cookie.Value); err != nil {
			logger.Error("session revoke failed", map[string]any{
				"error": err.Error(),
			})
		}
	}

	session.ClearCookie(c.Writer, session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	c.JSON(http.StatusOK, gin.H{"message": "You have been logged out."})
}
