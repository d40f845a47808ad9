package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jwalitptl/hospital-dashboard/internal/model"
	"github.com/jwalitptl/hospital-dashboard/internal/repository"
)

type doctorRepository struct {
	c *Client
}

func NewDoctorRepository(c *Client) repository.DoctorRepository {
	return &doctorRepository{c: c}
}

func (r *doctorRepository) List(ctx context.Context, token string) ([]model.Doctor, error) {
	var raw json.RawMessage
	if err := r.c.do(ctx, "doctors_list", http.MethodGet, "/appointments/doctors/list/", token, nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	var out []model.Doctor
	if err := decodeList(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode doctors: %w", err)
	}
	return out, nil
}
