package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/access"
	"taskboard/internal/identity"
	"taskboard/internal/middleware"
	"taskboard/internal/session"
)

// SessionStore opens and closes viewer sessions.
type SessionStore interface {
	Open() (string, *session.Session)
	Close(id string) bool
}

// TokenIssuer signs a bearer token for a session ID.
type TokenIssuer interface {
	GenerateToken(sessionID string) (string, error)
}

type AuthHandler struct {
	sessions SessionStore
	tokens   TokenIssuer
	roles    access.Roles
}

func NewAuthHandler(sessions SessionStore, tokens TokenIssuer, roles access.Roles) *AuthHandler {
	return &AuthHandler{sessions: sessions, tokens: tokens, roles: roles}
}

type OpenSessionResponse struct {
	Token   string          `json:"token"`
	Session SessionResponse `json:"session"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// OpenSession godoc
// @Summary      Open a session
// @Description  Starts a new viewer session and returns its bearer token
// @Tags         Auth
// @Produce      json
// @Success      201  {object}  OpenSessionResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /session [post]
func (h *AuthHandler) OpenSession(c *gin.Context) {
	sid, s := h.sessions.Open()

	token, err := h.tokens.GenerateToken(sid)
	if err != nil {
		h.sessions.Close(sid)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, OpenSessionResponse{
		Token:   token,
		Session: sessionResponse(s, h.roles),
	})
}

// GetSession godoc
// @Summary   Current session state
// @Tags      Auth
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  SessionResponse
// @Failure   401  {object}  ErrorResponse
// @Router    /session [get]
func (h *AuthHandler) GetSession(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s, h.roles))
}

// CloseSession godoc
// @Summary   Close the session
// @Tags      Auth
// @Security  BearerAuth
// @Success   204
// @Failure   401  {object}  ErrorResponse
// @Router    /session [delete]
func (h *AuthHandler) CloseSession(c *gin.Context) {
	h.sessions.Close(c.GetString(middleware.SessionIDKey))
	c.Status(http.StatusNoContent)
}

// Login godoc
// @Summary   Log in
// @Tags      Auth
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     request  body      LoginRequest  true  "Credentials"
// @Success   200      {object}  SessionResponse
// @Failure   400      {object}  ErrorResponse
// @Failure   401      {object}  ErrorResponse
// @Router    /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := s.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "Invalid credentials",
			Code:  identity.CodeOf(err),
		})
		return
	}

	c.JSON(http.StatusOK, sessionResponse(s, h.roles))
}

// Signup godoc
// @Summary      Sign up
// @Description  Creates an account; password and confirmPassword must match
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      SignupRequest  true  "New account"
// @Success      201      {object}  SessionResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		return
	}

	if !s.Signup(c.Request.Context(), req.Email, req.Password, req.Name) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Signup failed",
			Notices: s.DrainNotices(),
		})
		return
	}

	c.JSON(http.StatusCreated, sessionResponse(s, h.roles))
}

// Logout godoc
// @Summary   Log out
// @Tags      Auth
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  SessionResponse
// @Failure   401  {object}  ErrorResponse
// @Router    /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}

	s.Logout(c.Request.Context())
	c.JSON(http.StatusOK, sessionResponse(s, h.roles))
}

// ForgotPassword godoc
// @Summary      Request a password reset email
// @Description  Always answers 200; the outcome is in the body
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      ForgotPasswordRequest  true  "Account email"
// @Success      200      {object}  session.ResetResult
// @Failure      400      {object}  ErrorResponse
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}

	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	c.JSON(http.StatusOK, s.ForgotPassword(c.Request.Context(), req.Email))
}
