package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"social-login-service/internal/logger"
	"social-login-service/internal/session"
	"social-login-service/internal/store"
)

// unexported, collision-proof context key
type userContextKeyType struct{}

var userKey = userContextKeyType{}

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) (*store.User, bool) {
	u, ok := ctx.Value(userKey).(*store.User)
	return u, ok
}

// WithUser returns a context carrying the resolved session user.
func WithUser(ctx context.Context, u *store.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

type AuthMiddleware struct {
	Codec *session.Codec

	// LoginPath is where unauthenticated browser navigation is redirected,
	// with the originally requested destination preserved in ?next=.
	LoginPath string
}

func NewAuthMiddleware(codec *session.Codec, loginPath string) *AuthMiddleware {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &AuthMiddleware{Codec: codec, LoginPath: loginPath}
}

// RequireAuth rejects requests without a valid session identity. The
// rejection shape depends on what the caller accepts: a structured JSON
// payload for programmatic callers, a login redirect for browser navigation.
// A session backend failure is fatal to the request, never a quiet logout.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.resolve(r)
		if err != nil {
			logger.Error("session resolve failed", map[string]any{
				"error": err.Error(),
			})
			a.fail(w, r)
			return
		}
		if user == nil {
			a.reject(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func (a *AuthMiddleware) resolve(r *http.Request) (*store.User, error) {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	return a.Codec.Resolve(r.Context(), cookie.Value)
}

func (a *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message": "You must be logged in to perform this action.",
		})
		return
	}

	// Browser navigation: send them to the login entry point, remembering
	// where they were headed so navigation can resume after login.
	target := a.LoginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusFound)
}

// fail answers a session backend outage. The cause stays in the logs; the
// caller gets an opaque server error, not an unauthenticated outcome.
func (a *AuthMiddleware) fail(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message": "internal error",
		})
		return
	}

	http.Error(w, "internal error", http.StatusInternalServerError)
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "text/html") {
		return false
	}
	return strings.Contains(accept, "application/json") ||
		strings.Contains(accept, "*/*") || accept == ""
}
