package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jwalitptl/hospital-dashboard/internal/repository"
	"github.com/jwalitptl/hospital-dashboard/internal/repository/rest"
	"github.com/jwalitptl/hospital-dashboard/internal/service/rbac"
	"github.com/jwalitptl/hospital-dashboard/internal/session"
	apperrors "github.com/jwalitptl/hospital-dashboard/pkg/errors"
	"github.com/jwalitptl/hospital-dashboard/pkg/logger"
	"github.com/jwalitptl/hospital-dashboard/pkg/metrics"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrUnknownRole  = errors.New("unrecognized role")
)

// TeardownFunc is called with the session id whenever a session is removed.
type TeardownFunc func(sessionID string)

type Service struct {
	users     repository.UserRepository
	store     session.Store
	projector *rbac.Projector
	metrics   *metrics.Metrics
	log       *logger.Logger
	now       func() time.Time

	mu        sync.RWMutex
	teardowns []TeardownFunc
}

func NewService(users repository.UserRepository, store session.Store, projector *rbac.Projector, m *metrics.Metrics, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		users:     users,
		store:     store,
		projector: projector,
		metrics:   m,
		log:       log.With("component", "auth"),
		now:       time.Now,
	}
}

// OnTeardown registers fn to run when a session is invalidated or logged out.
func (s *Service) OnTeardown(fn TeardownFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardowns = append(s.teardowns, fn)
}

// ParseAuthorization extracts the token from "Token <token>". "Bearer" is accepted too.
func ParseAuthorization(header string) (string, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", ErrMissingToken
	}
	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// Authenticate returns the session for token, building it from the backend
// profile on first use. Anything short of a known role is an auth error and
// leaves no session behind.
func (s *Service) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		s.reject("missing_token")
		return nil, apperrors.Unauthorized("missing authorization token", ErrMissingToken)
	}

	id := session.KeyFor(token)
	sess, err := s.store.Get(ctx, id)
	switch {
	case err == nil:
		if _, ok := sess.Role(); ok {
			return sess, nil
		}
		s.Invalidate(ctx, id)
		s.reject("unknown_role")
		return nil, apperrors.Unauthorized("unrecognized role", ErrUnknownRole)
	case !errors.Is(err, session.ErrNotFound):
		s.log.Error(err, "session store read failed, resolving from backend")
	}

	profile, err := s.users.Profile(ctx, token)
	if err != nil {
		if be, ok := rest.AsError(err); ok && be.IsAuth() {
			s.reject("backend_rejected")
			return nil, apperrors.Unauthorized(be.Message, err)
		}
		return nil, apperrors.Read("failed to load profile", err)
	}

	sess = session.New(token, profile, s.now())
	if _, ok := sess.Role(); !ok {
		s.log.Warn("profile has an unrecognized role", "user_type", profile.UserType, "role_level", profile.RoleLevel)
		s.reject("unknown_role")
		return nil, apperrors.Unauthorized("unrecognized role", ErrUnknownRole)
	}

	if err := s.store.Put(ctx, sess); err != nil {
		s.log.Error(err, "failed to store session")
	}
	if s.metrics != nil {
		s.metrics.SessionsResolved.Inc()
	}
	return sess, nil
}

// Projection computes the RBAC projection for the session's stored role.
func (s *Service) Projection(sess *session.Session) rbac.Projection {
	if sess == nil {
		return s.projector.ProjectRaw("", "")
	}
	return s.projector.ProjectRaw(sess.UserType, sess.RoleLevel)
}

// Invalidate removes the session and everything keyed by it. It is the only
// teardown path, shared by logout and by auth failures.
func (s *Service) Invalidate(ctx context.Context, sessionID string) {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.log.Error(err, "failed to delete session", "session_id", sessionID)
	}
	s.mu.RLock()
	fns := append([]TeardownFunc(nil), s.teardowns...)
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(sessionID)
	}
}

// Logout tells the backend to drop the token and then tears the session down
// whatever the backend answered.
func (s *Service) Logout(ctx context.Context, sess *session.Session) error {
	err := s.users.Logout(ctx, sess.Token)
	if err != nil {
		s.log.Error(err, "backend logout failed, clearing session anyway", "session_id", sess.ID)
	}
	s.Invalidate(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

func (s *Service) reject(reason string) {
	if s.metrics != nil {
		s.metrics.SessionsRejected.WithLabelValues(reason).Inc()
	}
}
