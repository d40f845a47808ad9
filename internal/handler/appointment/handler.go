package appointment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-dashboard/internal/handler"
	"github.com/jwalitptl/hospital-dashboard/internal/middleware"
	"github.com/jwalitptl/hospital-dashboard/internal/model"
	"github.com/jwalitptl/hospital-dashboard/internal/service/appointment"
	"github.com/jwalitptl/hospital-dashboard/internal/service/rbac"
	apperrors "github.com/jwalitptl/hospital-dashboard/pkg/errors"
)

type Handler struct {
	service *appointment.Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(service *appointment.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{service: service, auth: auth}
}

type calendarQuery struct {
	WeekStart string `form:"week_start"`
	DoctorID  string `form:"doctor_id"`
	Seq       int64  `form:"seq" binding:"omitempty,min=0"`
}

type updateRequest struct {
	Status          *model.AppointmentStatus `json:"status" binding:"omitempty,appointment_status"`
	AppointmentDate *string                  `json:"appointment_date"`
	DoctorID        *model.ID                `json:"doctor_id"`
	Notes           *string                  `json:"notes"`
}

type statusRequest struct {
	Status model.AppointmentStatus `json:"status" binding:"required,appointment_status"`
}

type bulkRequest struct {
	AppointmentIDs []model.ID `json:"appointment_ids" binding:"required,min=1"`
}

type rescheduleRequest struct {
	AppointmentIDs []model.ID `json:"appointment_ids" binding:"required,min=1"`
	NewDate        string     `json:"new_date" binding:"required"`
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("/calendar", h.auth.RequireRegion(rbac.NavCalendar), h.GetCalendar)
		appointments.GET("/search", h.Search)
		appointments.GET("/doctors", h.auth.RequireRegion(rbac.FilterDoctor), h.ListDoctors)
		appointments.PATCH("/:id", h.UpdateAppointment)
		appointments.PATCH("/:id/status", h.UpdateStatus)
		appointments.PATCH("/cancel", h.auth.RequireRegion(rbac.ButtonCancel), h.Cancel)
		appointments.PATCH("/reschedule", h.auth.RequireRegion(rbac.ButtonReschedule), h.Reschedule)
	}
}

// GetCalendar answers 409 when a newer calendar request from the same session
// overtook this one; the dashboard keeps the newer view.
func (h *Handler) GetCalendar(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		_ = c.Error(apperrors.Unauthorized("", nil))
		return
	}
	var q calendarQuery
	if err := handler.BindQuery(c, &q); err != nil {
		_ = c.Error(err)
		return
	}

	view, err := h.service.LoadCalendar(c.Request.Context(), sess, appointment.CalendarRequest{
		WeekStart:    q.WeekStart,
		DoctorFilter: q.DoctorID,
		ClientSeq:    q.Seq,
	})
	if errors.Is(err, appointment.ErrStaleResponse) {
		c.JSON(http.StatusConflict, handler.NewErrorResponse("superseded by a newer calendar request"))
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(view))
}

func (h *Handler) Search(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		_ = c.Error(apperrors.Unauthorized("", nil))
		return
	}
	entries, err := h.service.Search(c.Request.Context(), sess, c.Query("q"))
	if errors.Is(err, appointment.ErrSuperseded) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(entries))
}

func (h *Handler) ListDoctors(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		_ = c.Error(apperrors.Unauthorized("", nil))
		return
	}
	doctors, err := h.service.Doctors(c.Request.Context(), sess)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		_ = c.Error(apperrors.Unauthorized("", nil))
		return
	}
	var req updateRequest
	if err := handler.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	if req.Status == nil && req.AppointmentDate == nil && req.DoctorID == nil && req.Notes == nil {
		_ = c.Error(apperrors.BadRequest("nothing to update", nil))
		return
	}
	if req.Status != nil {
		s := req.Status.Normalize()
		req.Status = &s
		if s == model.AppointmentStatusCanceled && !h.auth.Authorize(c, rbac.ButtonCancel) {
			return
		}
	}
	if (req.AppointmentDate != nil || req.DoctorID != nil) && !h.auth.Authorize(c, rbac.ButtonReschedule) {
		return
	}

	res, err := h.service.Update(c.Request.Context(), sess, model.ID(c.Param("id")), &model.AppointmentUpdate{
		Status:          req.Status,
		AppointmentDate: req.AppointmentDate,
		DoctorID:        req.DoctorID,
		Notes:           req.Notes,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(res))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		_ = c.Error(apperrors.Unauthorized("", nil))
		return
	}
	var req statusRequest
	if err := handler.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	if req.Status.Normalize() == model.AppointmentStatusCanceled && !h.auth.Authorize(c, rbac.ButtonCancel) {
		return
	}

	res, err := h.service.UpdateStatus(c.Request.Context(), sess, model.ID(c.Param("id")), req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(res))
}

func (h *Handler) Cancel(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		_ = c.Error(apperrors.Unauthorized("", nil))
		return
	}
	var req bulkRequest
	if err := handler.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.service.Cancel(c.Request.Context(), sess, req.AppointmentIDs)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(res))
}

func (h *Handler) Reschedule(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		_ = c.Error(apperrors.Unauthorized("", nil))
		return
	}
	var req rescheduleRequest
	if err := handler.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.service.Reschedule(c.Request.Context(), sess, req.AppointmentIDs, req.NewDate)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(res))
}
