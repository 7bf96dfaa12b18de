package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/access"
	"taskboard/internal/auth"
	"taskboard/internal/identity"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/session"
)

const jwtSecret = "test-secret-key"

// stubGateway lets a test push auth-state notifications by hand
type stubGateway struct {
	listener identity.Listener
}

func (g *stubGateway) OnAuthStateChanged(fn identity.Listener) func() {
	g.listener = fn
	return func() {}
}

func (g *stubGateway) SignIn(context.Context, string, string) (*model.Identity, error) {
	return nil, errors.New("not used")
}

func (g *stubGateway) SignUp(context.Context, string, string) (*model.Identity, error) {
	return nil, errors.New("not used")
}

func (g *stubGateway) UpdateProfile(context.Context, string) (*model.Identity, error) {
	return nil, errors.New("not used")
}

func (g *stubGateway) SignOut(context.Context) error { return nil }

func (g *stubGateway) SendPasswordResetEmail(context.Context, string) error { return nil }

func (g *stubGateway) Close() {}

type sessionMap map[string]*session.Session

func (m sessionMap) Get(id string) (*session.Session, bool) {
	s, ok := m[id]
	return s, ok
}

// newSession returns a session whose gateway has reported id (nil means
// signed out). resolve=false leaves the session still loading.
func newSession(id *model.Identity, resolve bool) *session.Session {
	gw := &stubGateway{}
	s := session.New(gw)
	if resolve {
		gw.listener(id)
	}
	return s
}

func setupRouter(sessions sessionMap) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	tokens := auth.NewTokenManager(jwtSecret, time.Hour)
	admins := access.NewRoles(access.RoleAdmin, "admin@x.com")

	protected := r.Group("/")
	protected.Use(middleware.SessionMiddleware(tokens, sessions))

	handler := func(c *gin.Context) {
		sid, exists := c.Get(middleware.SessionIDKey)
		if !exists {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Session ID not found in context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Access granted", "session_id": sid})
	}
	protected.GET("/tasks", middleware.Guard(nil), handler)
	protected.GET("/admin", middleware.Guard(access.RequireRole(admins, access.RoleAdmin)), handler)

	return r
}

func bearer(t *testing.T, sid string) string {
	t.Helper()
	token, err := auth.NewTokenManager(jwtSecret, time.Hour).GenerateToken(sid)
	require.NoError(t, err)
	return "Bearer " + token
}

func do(router *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestSessionMiddleware_ValidToken(t *testing.T) {
	// Arrange
	router := setupRouter(sessionMap{"s-1": newSession(&model.Identity{Email: "a@x.com"}, true)})

	// Act
	resp := do(router, "/tasks", bearer(t, "s-1"))

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Access granted")
	assert.Contains(t, resp.Body.String(), "s-1")
}

func TestSessionMiddleware_NoAuthHeader(t *testing.T) {
	resp := do(setupRouter(sessionMap{}), "/tasks", "")

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Authorization header is required")
}

func TestSessionMiddleware_InvalidAuthFormat(t *testing.T) {
	resp := do(setupRouter(sessionMap{}), "/tasks", "InvalidFormat token123")

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Authorization header format must be Bearer {token}")
}

func TestSessionMiddleware_InvalidToken(t *testing.T) {
	resp := do(setupRouter(sessionMap{}), "/tasks", "Bearer invalid-token")

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid or expired token")
}

func TestSessionMiddleware_UnknownSession(t *testing.T) {
	resp := do(setupRouter(sessionMap{}), "/tasks", bearer(t, "gone"))

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Session not found or expired")
}

func TestGuard_Decisions(t *testing.T) {
	signedOut := newSession(&model.Identity{Email: "a@x.com"}, true)
	signedOut.Logout(context.Background())

	sessions := sessionMap{
		"loading":    newSession(nil, false),
		"anonymous":  newSession(nil, true),
		"signed-out": signedOut,
		"user":       newSession(&model.Identity{Email: "a@x.com"}, true),
		"admin":      newSession(&model.Identity{Email: "admin@x.com"}, true),
	}
	router := setupRouter(sessions)

	tests := []struct {
		name       string
		sid        string
		path       string
		wantStatus int
		wantBody   map[string]string
	}{
		{"resolving", "loading", "/admin", http.StatusServiceUnavailable, map[string]string{"status": "loading"}},
		{"unauthenticated", "anonymous", "/admin", http.StatusUnauthorized, map[string]string{"redirect": "/auth", "from": "/admin"}},
		{"denied", "signed-out", "/tasks", http.StatusForbidden, map[string]string{"error": "Access Denied. Please log in."}},
		{"role denied", "user", "/admin", http.StatusForbidden, map[string]string{
			"error": "Access Denied. You do not have permission to view this page",
			"home":  "/",
		}},
		{"authorized user", "user", "/tasks", http.StatusOK, map[string]string{"message": "Access granted"}},
		{"authorized admin", "admin", "/admin", http.StatusOK, map[string]string{"message": "Access granted"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(router, tt.path, bearer(t, tt.sid))

			assert.Equal(t, tt.wantStatus, resp.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			for k, v := range tt.wantBody {
				assert.Equal(t, v, body[k], k)
			}
		})
	}
}

func TestGuard_ResolvingAsksToRetry(t *testing.T) {
	router := setupRouter(sessionMap{"loading": newSession(nil, false)})

	resp := do(router, "/tasks", bearer(t, "loading"))

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Equal(t, "1", resp.Header().Get("Retry-After"))
}
