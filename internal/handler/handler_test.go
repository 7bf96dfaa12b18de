package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"taskboard/internal/identity"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/session"
)

// MockGateway is a testify mock of session.Gateway. Auth-state
// notifications are pushed by the test through emit.
type MockGateway struct {
	mock.Mock

	mu       sync.Mutex
	listener identity.Listener
}

func (m *MockGateway) OnAuthStateChanged(fn identity.Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = fn
	return func() {}
}

func (m *MockGateway) emit(id *model.Identity) {
	m.mu.Lock()
	fn := m.listener
	m.mu.Unlock()
	fn(id)
}

func (m *MockGateway) SignIn(ctx context.Context, email, password string) (*model.Identity, error) {
	args := m.Called(ctx, email, password)
	id, _ := args.Get(0).(*model.Identity)
	return id, args.Error(1)
}

func (m *MockGateway) SignUp(ctx context.Context, email, password string) (*model.Identity, error) {
	args := m.Called(ctx, email, password)
	id, _ := args.Get(0).(*model.Identity)
	return id, args.Error(1)
}

func (m *MockGateway) UpdateProfile(ctx context.Context, displayName string) (*model.Identity, error) {
	args := m.Called(ctx, displayName)
	id, _ := args.Get(0).(*model.Identity)
	return id, args.Error(1)
}

func (m *MockGateway) SignOut(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockGateway) SendPasswordResetEmail(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockGateway) Close() {}

// newSession returns a resolved session signed in as id (nil for anonymous).
func newSession(id *model.Identity) (*session.Session, *MockGateway) {
	gw := new(MockGateway)
	s := session.New(gw)
	gw.emit(id)
	return s, gw
}

// withSession stands in for middleware.SessionMiddleware.
func withSession(sid string, s *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.SessionIDKey, sid)
		c.Set(middleware.SessionKey, s)
		c.Next()
	}
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}
