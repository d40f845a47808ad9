package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-dashboard/internal/handler"
	"github.com/jwalitptl/hospital-dashboard/internal/middleware"
	"github.com/jwalitptl/hospital-dashboard/internal/service/rbac"
	apperrors "github.com/jwalitptl/hospital-dashboard/pkg/errors"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	dashboard := r.Group("/dashboard")
	{
		dashboard.GET("/projection", h.GetProjection)
		dashboard.GET("/projection/isolate/:tab", h.IsolateTab)
		dashboard.GET("/regions", h.ListRegions)
	}
}

// GetProjection returns what the signed-in user's dashboard shows.
func (h *Handler) GetProjection(c *gin.Context) {
	proj, ok := middleware.ProjectionFrom(c)
	if !ok {
		_ = c.Error(apperrors.Unauthorized("", nil))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(proj))
}

// IsolateTab returns the projection with only one modal tab showing. A tab
// the role cannot see is 403; isolation never reveals anything.
func (h *Handler) IsolateTab(c *gin.Context) {
	proj, ok := middleware.ProjectionFrom(c)
	if !ok {
		_ = c.Error(apperrors.Unauthorized("", nil))
		return
	}

	tab := rbac.Region(c.Param("tab"))
	if tab.Group() != rbac.GroupTab {
		tab = rbac.Region(string(rbac.GroupTab) + "." + c.Param("tab"))
	}
	if !tab.Known() || tab.Group() != rbac.GroupTab {
		_ = c.Error(apperrors.NotFound("tab", nil))
		return
	}

	isolated, ok := proj.Isolate(tab)
	if !ok {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("tab not available for this role"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(isolated))
}

func (h *Handler) ListRegions(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"regions": rbac.AllRegions(),
		"tabs":    rbac.Tabs(),
	}))
}
