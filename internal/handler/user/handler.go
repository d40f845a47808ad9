package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-dashboard/internal/handler"
	"github.com/jwalitptl/hospital-dashboard/internal/middleware"
	"github.com/jwalitptl/hospital-dashboard/internal/service/auth"
	"github.com/jwalitptl/hospital-dashboard/internal/service/rbac"
	apperrors "github.com/jwalitptl/hospital-dashboard/pkg/errors"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

// profileResponse is the session as the dashboard sees it. The token is never echoed.
type profileResponse struct {
	Name        string   `json:"name"`
	UserType    string   `json:"user_type"`
	RoleLevel   string   `json:"role_level"`
	Permissions []string `json:"permissions"`
	DoctorID    string   `json:"doctor_id,omitempty"`
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("/me", h.Me)
		users.POST("/logout", h.Logout)
	}
}

func (h *Handler) Me(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		_ = c.Error(apperrors.Unauthorized("", nil))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profileResponse{
		Name:        sess.Name,
		UserType:    sess.UserType,
		RoleLevel:   sess.RoleLevel,
		Permissions: sess.Permissions,
		DoctorID:    sess.ViewerDoctorID(),
	}))
}

// Logout always clears the session. A backend failure is logged by the
// service; the dashboard still goes to the login page.
func (h *Handler) Logout(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		_ = c.Error(apperrors.Unauthorized("", nil))
		return
	}
	_ = h.service.Logout(c.Request.Context(), sess)
	c.JSON(http.StatusOK, &handler.Response{
		Status:   "success",
		Message:  "logged out",
		Redirect: rbac.LoginPath,
	})
}
