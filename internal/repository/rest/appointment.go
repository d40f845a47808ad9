package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jwalitptl/hospital-dashboard/internal/model"
	"github.com/jwalitptl/hospital-dashboard/internal/repository"
)

type appointmentRepository struct {
	c *Client
}

func NewAppointmentRepository(c *Client) repository.AppointmentRepository {
	return &appointmentRepository{c: c}
}

type bulkRequest struct {
	AppointmentIDs []model.ID `json:"appointment_ids"`
	NewDate        string     `json:"new_date,omitempty"`
}

type bulkResponse struct {
	Count        *int `json:"count"`
	UpdatedCount *int `json:"updated_count"`
}

func (b bulkResponse) count(fallback int) int {
	switch {
	case b.Count != nil:
		return *b.Count
	case b.UpdatedCount != nil:
		return *b.UpdatedCount
	}
	return fallback
}

func (r *appointmentRepository) List(ctx context.Context, token string, q model.AppointmentQuery) ([]model.Appointment, error) {
	params := url.Values{}
	params.Set("start_date", q.StartDate)
	params.Set("end_date", q.EndDate)
	params.Set("doctor_id", q.DoctorID)

	var raw json.RawMessage
	if err := r.c.do(ctx, "appointments_list", http.MethodGet, "/appointments/list/?"+params.Encode(), token, nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	var out []model.Appointment
	if err := decodeList(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return out, nil
}

func (r *appointmentRepository) Update(ctx context.Context, token string, id model.ID, upd *model.AppointmentUpdate) (*model.Appointment, error) {
	var apt model.Appointment
	path := "/appointments/edit/" + url.PathEscape(id.String()) + "/"
	if err := r.c.do(ctx, "appointments_edit", http.MethodPatch, path, token, upd, &apt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	if apt.ID.IsZero() {
		apt.ID = id
	}
	return &apt, nil
}

func (r *appointmentRepository) Cancel(ctx context.Context, token string, ids []model.ID) (int, error) {
	var resp bulkResponse
	if err := r.c.do(ctx, "appointments_cancel", http.MethodPatch, "/appointments/cancel/", token, bulkRequest{AppointmentIDs: ids}, &resp); err != nil {
		return 0, fmt.Errorf("failed to cancel appointments: %w", err)
	}
	return resp.count(len(ids)), nil
}

func (r *appointmentRepository) Reschedule(ctx context.Context, token string, ids []model.ID, newDate string) (int, error) {
	var resp bulkResponse
	body := bulkRequest{AppointmentIDs: ids, NewDate: newDate}
	if err := r.c.do(ctx, "appointments_reschedule", http.MethodPatch, "/appointments/reschedule/", token, body, &resp); err != nil {
		return 0, fmt.Errorf("failed to reschedule appointments: %w", err)
	}
	return resp.count(len(ids)), nil
}
