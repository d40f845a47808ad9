// Package mocks holds testify mocks of the repository interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/hospital-dashboard/internal/model"
	"github.com/jwalitptl/hospital-dashboard/internal/repository"
)

var (
	_ repository.UserRepository        = (*UserRepository)(nil)
	_ repository.AppointmentRepository = (*AppointmentRepository)(nil)
	_ repository.DoctorRepository      = (*DoctorRepository)(nil)
	_ repository.CityRepository        = (*CityRepository)(nil)
)

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Profile(ctx context.Context, token string) (*model.Profile, error) {
	args := m.Called(ctx, token)
	p, _ := args.Get(0).(*model.Profile)
	return p, args.Error(1)
}

func (m *UserRepository) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type AppointmentRepository struct {
	mock.Mock
}

func (m *AppointmentRepository) List(ctx context.Context, token string, q model.AppointmentQuery) ([]model.Appointment, error) {
	args := m.Called(ctx, token, q)
	out, _ := args.Get(0).([]model.Appointment)
	return out, args.Error(1)
}

func (m *AppointmentRepository) Update(ctx context.Context, token string, id model.ID, upd *model.AppointmentUpdate) (*model.Appointment, error) {
	args := m.Called(ctx, token, id, upd)
	apt, _ := args.Get(0).(*model.Appointment)
	return apt, args.Error(1)
}

func (m *AppointmentRepository) Cancel(ctx context.Context, token string, ids []model.ID) (int, error) {
	args := m.Called(ctx, token, ids)
	return args.Int(0), args.Error(1)
}

func (m *AppointmentRepository) Reschedule(ctx context.Context, token string, ids []model.ID, newDate string) (int, error) {
	args := m.Called(ctx, token, ids, newDate)
	return args.Int(0), args.Error(1)
}

type DoctorRepository struct {
	mock.Mock
}

func (m *DoctorRepository) List(ctx context.Context, token string) ([]model.Doctor, error) {
	args := m.Called(ctx, token)
	out, _ := args.Get(0).([]model.Doctor)
	return out, args.Error(1)
}

type CityRepository struct {
	mock.Mock
}

func (m *CityRepository) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]string)
	return out, args.Error(1)
}
