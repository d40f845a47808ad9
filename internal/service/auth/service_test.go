package auth_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-dashboard/internal/model"
	"github.com/jwalitptl/hospital-dashboard/internal/repository/mocks"
	"github.com/jwalitptl/hospital-dashboard/internal/repository/rest"
	"github.com/jwalitptl/hospital-dashboard/internal/service/auth"
	"github.com/jwalitptl/hospital-dashboard/internal/service/rbac"
	"github.com/jwalitptl/hospital-dashboard/internal/session"
	apperrors "github.com/jwalitptl/hospital-dashboard/pkg/errors"
	"github.com/jwalitptl/hospital-dashboard/pkg/metrics"
)

func newService(users *mocks.UserRepository) (*auth.Service, session.Store) {
	store := session.NewMemoryStore(0)
	return auth.NewService(users, store, rbac.NewProjector(nil), metrics.New("test", nil), nil), store
}

func TestParseAuthorization(t *testing.T) {
	tok, err := auth.ParseAuthorization("Token abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", tok)

	tok, err = auth.ParseAuthorization("bearer xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	for _, h := range []string{"", "Token", "Token   ", "Basic abc"} {
		_, err := auth.ParseAuthorization(h)
		assert.ErrorIs(t, err, auth.ErrMissingToken, h)
	}
}

func TestAuthenticateResolvesOnceAndCaches(t *testing.T) {
	users := &mocks.UserRepository{}
	users.On("Profile", mock.Anything, "tok").Return(&model.Profile{
		ID: "9", UserType: "Receptionist", RoleLevel: "Medium",
	}, nil).Once()
	svc, _ := newService(users)

	first, err := svc.Authenticate(context.Background(), "tok")
	require.NoError(t, err)
	second, err := svc.Authenticate(context.Background(), "tok")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	users.AssertExpectations(t)

	proj := svc.Projection(second)
	assert.True(t, proj.Known)
	assert.Equal(t, "receptionist-medium", proj.Role)
}

func TestAuthenticateMissingToken(t *testing.T) {
	svc, _ := newService(&mocks.UserRepository{})
	_, err := svc.Authenticate(context.Background(), "")
	assert.Equal(t, apperrors.KindAuth, apperrors.KindOf(err))
}

func TestAuthenticateBackendRejects(t *testing.T) {
	users := &mocks.UserRepository{}
	users.On("Profile", mock.Anything, "bad").Return(nil, &rest.Error{StatusCode: http.StatusUnauthorized, Message: "Invalid token."})
	svc, _ := newService(users)

	_, err := svc.Authenticate(context.Background(), "bad")
	assert.Equal(t, apperrors.KindAuth, apperrors.KindOf(err))
}

func TestAuthenticateBackendDownIsReadError(t *testing.T) {
	users := &mocks.UserRepository{}
	users.On("Profile", mock.Anything, "tok").Return(nil, errors.New("connection refused"))
	svc, _ := newService(users)

	_, err := svc.Authenticate(context.Background(), "tok")
	assert.Equal(t, apperrors.KindRead, apperrors.KindOf(err))
}

func TestAuthenticateUnknownRoleFailsClosed(t *testing.T) {
	users := &mocks.UserRepository{}
	users.On("Profile", mock.Anything, "tok").Return(&model.Profile{ID: "1", UserType: "janitor", RoleLevel: "senior"}, nil)
	svc, store := newService(users)

	_, err := svc.Authenticate(context.Background(), "tok")
	assert.ErrorIs(t, err, auth.ErrUnknownRole)

	_, err = store.Get(context.Background(), session.KeyFor("tok"))
	assert.ErrorIs(t, err, session.ErrNotFound, "no session is stored for an unknown role")
}

func TestLogoutTearsDownEvenIfBackendFails(t *testing.T) {
	users := &mocks.UserRepository{}
	users.On("Profile", mock.Anything, "tok").Return(&model.Profile{ID: "1", UserType: "admin", RoleLevel: "senior"}, nil)
	users.On("Logout", mock.Anything, "tok").Return(errors.New("timeout"))
	svc, store := newService(users)

	var torn []string
	svc.OnTeardown(func(id string) { torn = append(torn, id) })

	sess, err := svc.Authenticate(context.Background(), "tok")
	require.NoError(t, err)

	err = svc.Logout(context.Background(), sess)
	assert.Error(t, err)
	assert.Equal(t, []string{sess.ID}, torn)
	_, err = store.Get(context.Background(), sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestProjectionForNilSessionDeniesAll(t *testing.T) {
	svc, _ := newService(&mocks.UserRepository{})
	proj := svc.Projection(nil)
	assert.False(t, proj.Known)
	assert.Equal(t, rbac.LoginPath, proj.Redirect)
}
