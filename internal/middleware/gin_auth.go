package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinRequireAuth adapts the net/http session gate to a gin handler chain.
// RequireAuth stays framework-free; this bridge is the only gin-aware part.
func GinRequireAuth(auth *AuthMiddleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		// next re-enters the gin chain with the request RequireAuth produced,
		// which carries the resolved user in its context.
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		auth.RequireAuth(next).ServeHTTP(c.Writer, c.Request)

		// A written response means the gate rejected the request; stop gin
		// from running the route handler on top of it.
		if c.Writer.Written() {
			c.Abort()
		}
	}
}
