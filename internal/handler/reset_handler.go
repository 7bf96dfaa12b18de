package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/identity"
)

// ResetHandler serves the reset link mailed by the local provider.
type ResetHandler struct {
	resetter identity.PasswordResetter
}

func NewResetHandler(resetter identity.PasswordResetter) *ResetHandler {
	return &ResetHandler{resetter: resetter}
}

type ResetPasswordRequest struct {
	OobCode     string `json:"oobCode" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

type VerifyResetResponse struct {
	Email string `json:"email"`
}

// VerifyReset godoc
// @Summary      Check a password reset code
// @Tags         Auth
// @Produce      json
// @Param        oobCode  query     string  true  "Reset code from the emailed link"
// @Success      200      {object}  VerifyResetResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /auth/reset [get]
func (h *ResetHandler) VerifyReset(c *gin.Context) {
	email, err := h.resetter.VerifyPasswordResetCode(c.Request.Context(), c.Query("oobCode"))
	if err != nil {
		resetFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, VerifyResetResponse{Email: email})
}

// ResetPassword godoc
// @Summary      Set a new password with a reset code
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      ResetPasswordRequest  true  "Reset code and new password"
// @Success      200      {object}  map[string]bool
// @Failure      400      {object}  ErrorResponse
// @Router       /auth/reset [post]
func (h *ResetHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := h.resetter.ConfirmPasswordReset(c.Request.Context(), req.OobCode, req.NewPassword); err != nil {
		resetFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func resetFailed(c *gin.Context, err error) {
	code := identity.CodeOf(err)
	switch code {
	case identity.CodeInvalidActionCode, identity.CodeExpiredActionCode:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid or expired reset link", Code: code})
	case identity.CodeWeakPassword:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Password is too weak", Code: code})
	case identity.CodeNetworkRequestFailed:
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Identity service unavailable", Code: code})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to reset password", Code: code})
	}
}
