package identity_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskboard/internal/identity"
	"taskboard/internal/model"
)

// MockProvider is a testify mock of identity.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) SignIn(ctx context.Context, email, password string) (*model.Identity, error) {
	args := m.Called(ctx, email, password)
	id, _ := args.Get(0).(*model.Identity)
	return id, args.Error(1)
}

func (m *MockProvider) SignUp(ctx context.Context, email, password string) (*model.Identity, error) {
	args := m.Called(ctx, email, password)
	id, _ := args.Get(0).(*model.Identity)
	return id, args.Error(1)
}

func (m *MockProvider) UpdateProfile(ctx context.Context, id *model.Identity, displayName string) (*model.Identity, error) {
	args := m.Called(ctx, id, displayName)
	updated, _ := args.Get(0).(*model.Identity)
	return updated, args.Error(1)
}

func (m *MockProvider) SignOut(ctx context.Context, id *model.Identity) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProvider) SendPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

// recorder collects auth-state notifications
type recorder struct {
	mu     sync.Mutex
	events []*model.Identity
}

func (r *recorder) listen(id *model.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, id)
}

func (r *recorder) snapshot() []*model.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Identity, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) waitFor(t *testing.T, n int) []*model.Identity {
	t.Helper()
	require.Eventually(t, func() bool { return len(r.snapshot()) >= n }, time.Second, 5*time.Millisecond)
	return r.snapshot()
}

func TestClient_SubscriberReceivesCurrentState(t *testing.T) {
	client := identity.NewClient(new(MockProvider))
	defer client.Close()

	rec := &recorder{}
	unsubscribe := client.OnAuthStateChanged(rec.listen)
	defer unsubscribe()

	events := rec.waitFor(t, 1)
	assert.Nil(t, events[0])
}

func TestClient_DeliversTransitionsInOrder(t *testing.T) {
	provider := new(MockProvider)
	alice := &model.Identity{UID: "1", Email: "alice@x.com"}
	provider.On("SignIn", mock.Anything, "alice@x.com", "secret").Return(alice, nil)
	provider.On("UpdateProfile", mock.Anything, alice, "Alice").
		Return(&model.Identity{UID: "1", Email: "alice@x.com", DisplayName: "Alice"}, nil)
	provider.On("SignOut", mock.Anything, mock.Anything).Return(nil)

	client := identity.NewClient(provider)
	defer client.Close()

	rec := &recorder{}
	client.OnAuthStateChanged(rec.listen)

	ctx := context.Background()
	_, err := client.SignIn(ctx, "alice@x.com", "secret")
	require.NoError(t, err)
	_, err = client.UpdateProfile(ctx, "Alice")
	require.NoError(t, err)
	require.NoError(t, client.SignOut(ctx))

	events := rec.waitFor(t, 4)
	require.Len(t, events, 4)
	assert.Nil(t, events[0])
	assert.Equal(t, "alice@x.com", events[1].Email)
	assert.Equal(t, "Alice", events[2].DisplayName)
	assert.Nil(t, events[3])
	assert.Nil(t, client.CurrentUser())
	provider.AssertExpectations(t)
}

func TestClient_FailedSignInEmitsNothing(t *testing.T) {
	provider := new(MockProvider)
	provider.On("SignIn", mock.Anything, "alice@x.com", "wrong").
		Return(nil, &identity.Error{Code: identity.CodeInvalidCredential})

	client := identity.NewClient(provider)
	defer client.Close()

	rec := &recorder{}
	client.OnAuthStateChanged(rec.listen)
	rec.waitFor(t, 1)

	_, err := client.SignIn(context.Background(), "alice@x.com", "wrong")
	assert.Equal(t, identity.CodeInvalidCredential, identity.CodeOf(err))

	time.Sleep(20 * time.Millisecond)
	assert.Len(t, rec.snapshot(), 1)
	assert.Nil(t, client.CurrentUser())
}

func TestClient_UnsubscribeStopsDelivery(t *testing.T) {
	provider := new(MockProvider)
	provider.On("SignIn", mock.Anything, mock.Anything, mock.Anything).
		Return(&model.Identity{UID: "1", Email: "alice@x.com"}, nil)

	client := identity.NewClient(provider)
	defer client.Close()

	rec := &recorder{}
	unsubscribe := client.OnAuthStateChanged(rec.listen)
	rec.waitFor(t, 1)
	unsubscribe()
	unsubscribe()

	_, err := client.SignIn(context.Background(), "alice@x.com", "secret")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	assert.Len(t, rec.snapshot(), 1)
}

func TestClient_UpdateProfileRequiresSignedInUser(t *testing.T) {
	client := identity.NewClient(new(MockProvider))
	defer client.Close()

	_, err := client.UpdateProfile(context.Background(), "Nobody")
	assert.ErrorIs(t, err, identity.ErrNoCurrentUser)
}

func TestClient_ListenersGetCopies(t *testing.T) {
	provider := new(MockProvider)
	provider.On("SignIn", mock.Anything, mock.Anything, mock.Anything).
		Return(&model.Identity{UID: "1", Email: "alice@x.com"}, nil)

	client := identity.NewClient(provider)
	defer client.Close()

	client.OnAuthStateChanged(func(id *model.Identity) {
		if id != nil {
			id.Email = "tampered@x.com"
		}
	})
	_, err := client.SignIn(context.Background(), "alice@x.com", "secret")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, "alice@x.com", client.CurrentUser().Email)
}
