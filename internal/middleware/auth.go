package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-dashboard/internal/handler"
	"github.com/jwalitptl/hospital-dashboard/internal/service/auth"
	"github.com/jwalitptl/hospital-dashboard/internal/service/rbac"
	"github.com/jwalitptl/hospital-dashboard/internal/session"
)

const (
	ContextSession    = "session"
	ContextProjection = "projection"
)

type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate resolves the session for the request's token and stores it and
// its projection in the context. Any failure answers 401 with a redirect to
// the login page.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ParseAuthorization(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewAuthErrorResponse("missing authorization token"))
			return
		}

		sess, err := m.authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			handler.RespondError(c, err)
			return
		}

		c.Set(ContextSession, sess)
		c.Set(ContextProjection, m.authService.Projection(sess))
		c.Next()
	}
}

// RequireRegion rejects the request unless the caller's projection shows region.
func (m *AuthMiddleware) RequireRegion(region rbac.Region) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.Authorize(c, region) {
			return
		}
		c.Next()
	}
}

// Authorize is RequireRegion for checks that depend on the request body. It
// aborts with 401 or 403 and returns false when the region is not visible.
func (m *AuthMiddleware) Authorize(c *gin.Context, region rbac.Region) bool {
	proj, ok := ProjectionFrom(c)
	if !ok || !proj.Known {
		c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewAuthErrorResponse("unrecognized role"))
		return false
	}
	if !proj.IsVisible(region) {
		c.AbortWithStatusJSON(http.StatusForbidden, handler.NewErrorResponse("permission denied"))
		return false
	}
	return true
}

// SessionFrom returns the session set by Authenticate.
func SessionFrom(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok && sess != nil
}

func ProjectionFrom(c *gin.Context) (rbac.Projection, bool) {
	v, ok := c.Get(ContextProjection)
	if !ok {
		return rbac.Projection{}, false
	}
	proj, ok := v.(rbac.Projection)
	return proj, ok
}
