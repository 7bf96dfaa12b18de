package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"

	"taskboard/internal/access"
)

// Guard runs the access guard for the current session and only lets
// Authorized requests through. It must be mounted after SessionMiddleware.
func Guard(req access.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := CurrentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		d := access.Evaluate(s.State(), c.Request.URL.Path, req)
		glog.V(2).Infof("guard: %s %s -> %s", c.Request.Method, c.Request.URL.Path, d.Outcome)

		switch d.Outcome {
		case access.Resolving:
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		case access.Unauthenticated:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "Not authenticated",
				"redirect": d.Redirect,
				"from":     d.From,
			})
		case access.Denied:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access Denied. Please log in."})
		case access.RoleDenied:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Access Denied. You do not have permission to view this page",
				"home":  d.Home,
			})
		default:
			c.Next()
		}
	}
}
