package handler

import (
	"github.com/gin-gonic/gin"

	"social-login-service/internal/logger"
	"social-login-service/internal/store"
)

// snapshot is the public-safe identity shape exposed to the frontend: never
// the password hash, never provider credentials, only provider names.
type snapshot struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Memberships []string `json:"memberships"`
}

func (h *Handler) renderSnapshot(c *gin.Context, status int, user *store.User) {
	memberships, err := h.memberships.MembershipsByUser(c.Request.Context(), user.ID)
	if err != nil {
		logger.Error("membership lookup failed", map[string]any{
			"user_id": user.ID,
			"error":   err.Error(),
		})
		c.JSON(500, gin.H{"message": "internal error"})
		return
	}

	providers := make([]string, 0, len(memberships))
	for _, m := range memberships {
		providers = append(providers, m.Provider)
	}

	c.JSON(status, snapshot{
		ID:          user.ID,
		Username:    user.Username,
		Memberships: providers,
	})
}
