package city

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-dashboard/internal/handler"
	"github.com/jwalitptl/hospital-dashboard/internal/middleware"
	"github.com/jwalitptl/hospital-dashboard/internal/service/city"
)

type Handler struct {
	service *city.Service
}

func NewHandler(service *city.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/cities", h.Search)
}

// Search answers 204 when a newer keystroke from the same caller replaced this one.
func (h *Handler) Search(c *gin.Context) {
	key := c.ClientIP()
	if sess, ok := middleware.SessionFrom(c); ok {
		key = sess.ID
	}

	cities, err := h.service.Search(c.Request.Context(), key, c.Query("q"))
	if errors.Is(err, city.ErrSuperseded) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(cities))
}
