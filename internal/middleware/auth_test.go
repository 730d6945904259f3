package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-login-service/internal/session"
	"social-login-service/internal/store"
)

func newTestGate(t *testing.T) (*AuthMiddleware, *session.Codec, *store.Memory) {
	t.Helper()
	users := store.NewMemory()
	codec := session.NewCodec(session.NewMemoryStore(), users, time.Hour)
	return NewAuthMiddleware(codec, "/login"), codec, users
}

func protectedHandler(gate *AuthMiddleware) http.Handler {
	return gate.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			http.Error(w, "no user in context", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("hello " + user.Username))
	}))
}

func TestRequireAuthRejectsMissingSessionAsJSON(t *testing.T) {
	gate, _, _ := newTestGate(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stuff", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	protectedHandler(gate).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t,
		`{"message":"You must be logged in to perform this action."}`,
		rec.Body.String(),
	)
}

func TestRequireAuthRedirectsBrowserNavigationPreservingDestination(t *testing.T) {
	gate, _, _ := newTestGate(t)

	req := httptest.NewRequest(http.MethodGet, "/members?tab=playlists", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()

	protectedHandler(gate).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t,
		"/login?next=%2Fmembers%3Ftab%3Dplaylists",
		rec.Header().Get("Location"),
	)
}

func TestRequireAuthPassesValidSession(t *testing.T) {
	gate, codec, users := newTestGate(t)
	ctx := context.Background()

	u, err := users.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	s, err := codec.Issue(ctx, u.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/stuff", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: s.SessionID})
	rec := httptest.NewRecorder()

	protectedHandler(gate).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello alice", rec.Body.String())
}

// downStore simulates an unreachable session backend.
type downStore struct{}

func (downStore) Create(context.Context, session.Session) error { return errDown }
func (downStore) Get(context.Context, string) (*session.Session, error) {
	return nil, errDown
}
func (downStore) Update(context.Context, session.Session) error { return errDown }
func (downStore) Delete(context.Context, string) error          { return errDown }

var errDown = errors.New("connection refused")

func TestRequireAuthBackendOutageIsServerErrorNotLogout(t *testing.T) {
	codec := session.NewCodec(downStore{}, store.NewMemory(), time.Hour)
	gate := NewAuthMiddleware(codec, "/login")

	req := httptest.NewRequest(http.MethodGet, "/api/stuff", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "some-session-id"})
	rec := httptest.NewRecorder()

	protectedHandler(gate).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"internal error"}`, rec.Body.String())

	// Browser navigation must not be bounced to login either.
	req = httptest.NewRequest(http.MethodGet, "/members", nil)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "some-session-id"})
	rec = httptest.NewRecorder()

	protectedHandler(gate).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestRequireAuthRejectsRevokedSession(t *testing.T) {
	gate, codec, users := newTestGate(t)
	ctx := context.Background()

	u, err := users.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	s, err := codec.Issue(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, codec.Revoke(ctx, s.SessionID))

	req := httptest.NewRequest(http.MethodGet, "/api/stuff", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: s.SessionID})
	rec := httptest.NewRecorder()

	protectedHandler(gate).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
