package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/access"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/session"
)

// SessionResponse is the viewer's session as seen by clients.
type SessionResponse struct {
	Identity         *model.Identity  `json:"identity"`
	IsAuthenticating bool             `json:"isAuthenticating"`
	Loading          bool             `json:"loading"`
	Roles            []string         `json:"roles"`
	Notices          []session.Notice `json:"notices,omitempty"`
}

type ErrorResponse struct {
	Error   string           `json:"error"`
	Code    string           `json:"code,omitempty"`
	Notices []session.Notice `json:"notices,omitempty"`
}

func sessionResponse(s *session.Session, roles access.Roles) SessionResponse {
	st := s.State()
	resp := SessionResponse{
		Identity:         st.Identity,
		IsAuthenticating: st.IsAuthenticating,
		Loading:          st.Loading,
		Roles:            []string{},
		Notices:          s.DrainNotices(),
	}
	if st.Identity != nil {
		resp.Roles = roles.Of(st.Identity.Email)
	}
	return resp
}

// mustSession fetches the session set by middleware.SessionMiddleware.
func mustSession(c *gin.Context) (*session.Session, bool) {
	s, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
	}
	return s, ok
}
