package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskboard/internal/handler"
	"taskboard/internal/identity"
)

// MockResetter is a testify mock of identity.PasswordResetter
type MockResetter struct {
	mock.Mock
}

func (m *MockResetter) VerifyPasswordResetCode(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *MockResetter) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	return m.Called(ctx, code, newPassword).Error(0)
}

func setupReset() (*gin.Engine, *MockResetter) {
	resetter := new(MockResetter)
	h := handler.NewResetHandler(resetter)

	r := newRouter()
	r.GET("/auth/reset", h.VerifyReset)
	r.POST("/auth/reset", h.ResetPassword)
	return r, resetter
}

func TestVerifyReset(t *testing.T) {
	// Arrange
	r, resetter := setupReset()
	resetter.On("VerifyPasswordResetCode", mock.Anything, "token").Return("test@example.com", nil)
	resetter.On("VerifyPasswordResetCode", mock.Anything, "stale").
		Return("", &identity.Error{Code: identity.CodeExpiredActionCode})

	// Act
	ok := doJSON(r, http.MethodGet, "/auth/reset?oobCode=token", nil)
	stale := doJSON(r, http.MethodGet, "/auth/reset?oobCode=stale", nil)

	// Assert
	assert.Equal(t, http.StatusOK, ok.Code)
	var resp handler.VerifyResetResponse
	require.NoError(t, json.Unmarshal(ok.Body.Bytes(), &resp))
	assert.Equal(t, "test@example.com", resp.Email)

	assert.Equal(t, http.StatusBadRequest, stale.Code)
	var errResp handler.ErrorResponse
	require.NoError(t, json.Unmarshal(stale.Body.Bytes(), &errResp))
	assert.Equal(t, identity.CodeExpiredActionCode, errResp.Code)
}

func TestResetPassword(t *testing.T) {
	// Arrange
	r, resetter := setupReset()
	resetter.On("ConfirmPasswordReset", mock.Anything, "token", "newpassword").Return(nil)

	// Act
	resp := doJSON(r, http.MethodPost, "/auth/reset", gin.H{"oobCode": "token", "newPassword": "newpassword"})

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"success": true}`, resp.Body.String())
	resetter.AssertExpectations(t)
}

func TestResetPassword_Failures(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		err        error
		wantStatus int
		wantCode   string
	}{
		{"missing code", gin.H{"newPassword": "newpassword"}, nil, http.StatusBadRequest, ""},
		{"invalid code", gin.H{"oobCode": "bad", "newPassword": "newpassword"}, &identity.Error{Code: identity.CodeInvalidActionCode}, http.StatusBadRequest, identity.CodeInvalidActionCode},
		{"weak password", gin.H{"oobCode": "token", "newPassword": "123"}, &identity.Error{Code: identity.CodeWeakPassword}, http.StatusBadRequest, identity.CodeWeakPassword},
		{"directory down", gin.H{"oobCode": "token", "newPassword": "newpassword"}, &identity.Error{Code: identity.CodeNetworkRequestFailed}, http.StatusServiceUnavailable, identity.CodeNetworkRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, resetter := setupReset()
			resetter.On("ConfirmPasswordReset", mock.Anything, mock.Anything, mock.Anything).Return(tt.err)

			resp := doJSON(r, http.MethodPost, "/auth/reset", tt.body)

			assert.Equal(t, tt.wantStatus, resp.Code)
			var errResp handler.ErrorResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
			assert.Equal(t, tt.wantCode, errResp.Code)
			if tt.wantCode == "" {
				resetter.AssertNotCalled(t, "ConfirmPasswordReset", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}
