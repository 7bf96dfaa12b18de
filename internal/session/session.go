package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/sync/singleflight"

	"taskboard/internal/identity"
	"taskboard/internal/model"
)

// ErrAuthentication wraps every failed Login.
var ErrAuthentication = errors.New("authentication failed")

// Notice levels
const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// Gateway is the session's view of the identity provider.
type Gateway interface {
	OnAuthStateChanged(fn identity.Listener) (unsubscribe func())
	SignIn(ctx context.Context, email, password string) (*model.Identity, error)
	SignUp(ctx context.Context, email, password string) (*model.Identity, error)
	UpdateProfile(ctx context.Context, displayName string) (*model.Identity, error)
	SignOut(ctx context.Context) error
	SendPasswordResetEmail(ctx context.Context, email string) error
	Close()
}

// State is what views and the access guard see of a session.
type State struct {
	Identity         *model.Identity `json:"identity"`
	IsAuthenticating bool            `json:"isAuthenticating"`
	Loading          bool            `json:"loading"`
}

// Notice is a user-facing message produced as a side effect of an operation.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// ResetResult is the outcome of a password reset request.
type ResetResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Session tracks one viewer's identity. The gateway subscription is the
// source of truth: Login and Signup write optimistically, and a callback
// emitted during an operation is applied only after that operation returns,
// so it always overwrites the optimistic value.
type Session struct {
	gateway     Gateway
	unsubscribe func()

	// op serializes gateway operations with subscription callbacks
	op sync.Mutex

	mu      sync.RWMutex
	state   State
	notices []Notice

	flight singleflight.Group
}

func New(gateway Gateway) *Session {
	s := &Session{
		gateway: gateway,
		state:   State{Loading: true},
	}
	s.unsubscribe = gateway.OnAuthStateChanged(s.onAuthStateChanged)
	return s
}

func (s *Session) onAuthStateChanged(id *model.Identity) {
	s.op.Lock()
	defer s.op.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{
		Identity:         id,
		IsAuthenticating: id != nil,
		Loading:          false,
	}
	glog.V(1).Infof("session: auth state changed, authenticated=%t", id != nil)
}

// State returns a copy of the current session state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	if st.Identity != nil {
		id := *st.Identity
		st.Identity = &id
	}
	return st
}

// Login signs in and records the identity. On failure the session is left
// untouched and the returned error wraps ErrAuthentication. Identical
// concurrent submissions share one gateway call; a submission that differs
// in any field waits its turn and makes its own.
func (s *Session) Login(ctx context.Context, email, password string) error {
	_, err, _ := s.flight.Do(flightKey("login", email, password), func() (interface{}, error) {
		s.op.Lock()
		defer s.op.Unlock()

		id, err := s.gateway.SignIn(ctx, email, password)
		if err != nil {
			glog.Warningf("Login error for %s: %v", email, err)
			return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
		}

		glog.Infof("Logged in user: %s", id.Email)
		s.mu.Lock()
		s.state.Identity = id
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

// Signup creates the identity, applies name as its display name when set,
// and marks the session authenticated without waiting for the gateway's
// notification. Failures are reported as false plus a notice.
func (s *Session) Signup(ctx context.Context, email, password, name string) bool {
	ok, _, _ := s.flight.Do(flightKey("signup", email, password, name), func() (interface{}, error) {
		return s.signup(ctx, email, password, name), nil
	})
	return ok.(bool)
}

func (s *Session) signup(ctx context.Context, email, password, name string) bool {
	s.op.Lock()
	defer s.op.Unlock()

	id, err := s.gateway.SignUp(ctx, email, password)
	if err == nil && name != "" {
		var updated *model.Identity
		if updated, err = s.gateway.UpdateProfile(ctx, name); err == nil {
			id = updated
		}
	}
	if err != nil {
		s.reportSignupError(err)
		return false
	}

	optimistic := *id
	if name != "" {
		optimistic.DisplayName = name
	}

	s.mu.Lock()
	s.state.Identity = &optimistic
	s.state.IsAuthenticating = true
	s.mu.Unlock()
	return true
}

func (s *Session) reportSignupError(err error) {
	switch identity.CodeOf(err) {
	case identity.CodeEmailAlreadyInUse:
		glog.Warning("This email is already in use. Please log in.")
		s.notify(LevelError, "This email is already in use. Please log in.")
	case identity.CodeNetworkRequestFailed:
		glog.Warning("Network error. Please check your internet connection.")
		s.notify(LevelError, "Network error. Please check your internet connection.")
	default:
		glog.Errorf("Signup error: %v", err)
	}
}

// Logout is best effort: a gateway failure is logged and the session kept.
func (s *Session) Logout(ctx context.Context) {
	s.op.Lock()
	defer s.op.Unlock()

	if err := s.gateway.SignOut(ctx); err != nil {
		glog.Errorf("Logout error: %v", err)
		return
	}

	s.mu.Lock()
	s.state.Identity = nil
	s.mu.Unlock()
	glog.Info("User logged out successfully")
}

// ForgotPassword requests a reset email. It never fails; errors come back
// in the result.
func (s *Session) ForgotPassword(ctx context.Context, email string) ResetResult {
	if err := s.gateway.SendPasswordResetEmail(ctx, email); err != nil {
		glog.Errorf("Password reset error: %v", err)
		s.notify(LevelError, "Failed to send password reset email. Please try again.")
		return ResetResult{Success: false, Message: err.Error()}
	}
	return ResetResult{Success: true}
}

// DrainNotices returns and clears the pending notices.
func (s *Session) DrainNotices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.notices
	s.notices = nil
	return out
}

// Close ends the subscription and releases the gateway client.
func (s *Session) Close() {
	s.unsubscribe()
	s.gateway.Close()
}

func (s *Session) notify(level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, Notice{Level: level, Message: message})
}

// flightKey identifies a submission by every field the gateway sees.
func flightKey(op string, fields ...string) string {
	return op + "\x00" + strings.Join(fields, "\x00")
}
