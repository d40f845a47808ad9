package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-dashboard/internal/model"
	"github.com/jwalitptl/hospital-dashboard/internal/session"
)

func TestNewDoctorSession(t *testing.T) {
	now := time.Now()
	s := session.New("tok-1", &model.Profile{
		ID: "7", FirstName: "Meera", LastName: "Rao",
		UserType: "Doctor", RoleLevel: "Senior", DoctorID: "D2",
		Permissions: []string{"appointments.view"},
	}, now)

	assert.Equal(t, session.KeyFor("tok-1"), s.ID)
	assert.NotEqual(t, "tok-1", s.ID)
	assert.Equal(t, "Token tok-1", s.AuthHeader())
	assert.Equal(t, "Meera Rao", s.Name)
	assert.Equal(t, "D2", s.ViewerDoctorID())
	assert.True(t, s.HasPermission("appointments.view"))

	role, ok := s.Role()
	require.True(t, ok)
	assert.Equal(t, "doctor-senior", role.Key())
}

func TestDoctorWithoutDoctorIDFallsBackToUserID(t *testing.T) {
	s := session.New("tok", &model.Profile{ID: "7", UserType: "doctor", RoleLevel: "basic"}, time.Now())
	assert.Equal(t, "7", s.ViewerDoctorID())
}

func TestNonDoctorHasNoViewerDoctor(t *testing.T) {
	s := session.New("tok", &model.Profile{ID: "3", UserType: "receptionist", RoleLevel: "basic", DoctorID: "D1"}, time.Now())
	assert.Empty(t, s.ViewerDoctorID())
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore(time.Minute)

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)

	s := session.New("tok", &model.Profile{ID: "1", UserType: "admin", RoleLevel: "senior"}, time.Now())
	require.NoError(t, store.Put(ctx, s))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Token, got.Token)

	// returned copies do not alias the stored value
	got.UserType = "nurse"
	again, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", again.UserType)

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}
