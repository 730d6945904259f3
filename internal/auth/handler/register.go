package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"social-login-service/internal/auth"
	"social-login-service/internal/logger"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	user, err := h.credentials.Register(
		c.Request.Context(),
		req.Username,
		req.Password,
	)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"message": "Username already in use."})
		case errors.Is(err, auth.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"message": "username and password are required"})
		default:
			logger.Error("registration failed", map[string]any{
				"error": err.Error(),
			})
			c.JSON(http.StatusInternalServerError, gin.H{"message": "registration failed"})
		}
		return
	}

	if err := h.establishSession(c, user.ID); err != nil {
		logger.Error("session creation failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "session error"})
		return
	}

	h.renderSnapshot(c, http.StatusCreated, user)
}
