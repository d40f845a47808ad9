package repository

import (
	"context"

	"github.com/jwalitptl/hospital-dashboard/internal/model"
)

// All repository interfaces in one file. Every call takes the session token;
// the hospital backend is the only source of truth.
type (
	UserRepository interface {
		Profile(ctx context.Context, token string) (*model.Profile, error)
		Logout(ctx context.Context, token string) error
	}

	AppointmentRepository interface {
		List(ctx context.Context, token string, q model.AppointmentQuery) ([]model.Appointment, error)
		Update(ctx context.Context, token string, id model.ID, upd *model.AppointmentUpdate) (*model.Appointment, error)
		Cancel(ctx context.Context, token string, ids []model.ID) (int, error)
		Reschedule(ctx context.Context, token string, ids []model.ID, newDate string) (int, error)
	}

	DoctorRepository interface {
		List(ctx context.Context, token string) ([]model.Doctor, error)
	}

	CityRepository interface {
		List(ctx context.Context) ([]string, error)
	}
)
