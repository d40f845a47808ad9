package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/hospital-dashboard/internal/debounce"
	"github.com/jwalitptl/hospital-dashboard/internal/model"
	"github.com/jwalitptl/hospital-dashboard/internal/repository"
	"github.com/jwalitptl/hospital-dashboard/internal/repository/rest"
	"github.com/jwalitptl/hospital-dashboard/internal/service/calendar"
	"github.com/jwalitptl/hospital-dashboard/internal/session"
	apperrors "github.com/jwalitptl/hospital-dashboard/pkg/errors"
	"github.com/jwalitptl/hospital-dashboard/pkg/logger"
	"github.com/jwalitptl/hospital-dashboard/pkg/messaging"
	"github.com/jwalitptl/hospital-dashboard/pkg/metrics"
)

var (
	// ErrStaleResponse is returned when a newer load for the same session
	// superseded this one. The result was discarded.
	ErrStaleResponse = errors.New("stale calendar response")
	// ErrSuperseded is returned by Search when a newer keystroke replaced the query.
	ErrSuperseded = errors.New("search superseded")
)

const (
	alertLoadFailed    = "Failed to load appointments"
	doctorsCachePrefix = "doctors:"
)

// SessionInvalidator tears a session down after the backend rejected its token.
type SessionInvalidator interface {
	Invalidate(ctx context.Context, sessionID string)
}

type Config struct {
	FirstHour       int
	LastHour        int
	Location        *time.Location
	ReloadAfterBulk bool
	SearchDelay     time.Duration
	DoctorsTTL      time.Duration
	ViewTTL         time.Duration
}

// CalendarRequest is what the dashboard asks for. ClientSeq is echoed back so
// the browser can apply the same latest-wins rule on its side.
type CalendarRequest struct {
	WeekStart    string
	DoctorFilter string
	ClientSeq    int64
}

// CalendarView is a committed grid. Alert is set when the fetch failed and the
// grid is the empty placeholder.
type CalendarView struct {
	Seq       uint64                 `json:"seq"`
	ClientSeq int64                  `json:"client_seq,omitempty"`
	Query     model.AppointmentQuery `json:"query"`
	Grid      *calendar.Grid         `json:"grid"`
	Alert     string                 `json:"alert,omitempty"`
}

// MutationResult tells the dashboard how to refresh after a write. Refetch is
// always true on success; Reload asks for a full page reload after bulk writes.
type MutationResult struct {
	Count       int                `json:"count"`
	Appointment *model.Appointment `json:"appointment,omitempty"`
	Refetch     bool               `json:"refetch"`
	Reload      bool               `json:"reload"`
}

type Service struct {
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
	tracker      *Tracker
	broker       messaging.Broker
	sessions     SessionInvalidator
	debouncer    *debounce.Debouncer
	doctorCache  *cache.Cache
	metrics      *metrics.Metrics
	log          *logger.Logger
	cfg          Config
	origin       string
}

func NewService(
	appointments repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	broker messaging.Broker,
	sessions SessionInvalidator,
	m *metrics.Metrics,
	log *logger.Logger,
	cfg Config,
) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.FirstHour == 0 && cfg.LastHour == 0 {
		cfg.FirstHour, cfg.LastHour = calendar.DefaultFirstHour, calendar.DefaultLastHour
	}
	if cfg.Location == nil {
		cfg.Location = calendar.IST
	}
	if cfg.DoctorsTTL <= 0 {
		cfg.DoctorsTTL = 5 * time.Minute
	}
	return &Service{
		appointments: appointments,
		doctors:      doctors,
		tracker:      NewTracker(cfg.ViewTTL),
		broker:       broker,
		sessions:     sessions,
		debouncer:    debounce.New(cfg.SearchDelay),
		doctorCache:  cache.New(cfg.DoctorsTTL, 2*cfg.DoctorsTTL),
		metrics:      m,
		log:          log.With("component", "appointment"),
		cfg:          cfg,
		origin:       uuid.NewString(),
	}
}

func (s *Service) Tracker() *Tracker { return s.tracker }

// Forget drops everything held for a session. Registered as a session teardown hook.
func (s *Service) Forget(sessionID string) {
	s.tracker.Drop(sessionID)
	s.doctorCache.Delete(doctorsCachePrefix + sessionID)
}

// LoadCalendar fetches the week for the session and builds its grid; an empty
// WeekStart means the current week. A failed
// fetch still yields a grid (the empty placeholder) plus an alert. If a newer
// load for the session started meanwhile, the result is discarded and
// ErrStaleResponse returned.
func (s *Service) LoadCalendar(ctx context.Context, sess *session.Session, req CalendarRequest) (*CalendarView, error) {
	if strings.TrimSpace(req.WeekStart) == "" {
		req.WeekStart = time.Now().In(s.cfg.Location).Format("2006-01-02")
	}
	opts := calendar.Options{
		WeekStart:      req.WeekStart,
		FirstHour:      s.cfg.FirstHour,
		LastHour:       s.cfg.LastHour,
		DoctorFilter:   req.DoctorFilter,
		ViewerDoctorID: sess.ViewerDoctorID(),
		Location:       s.cfg.Location,
	}
	weekStart, err := calendar.NormalizeWeekStart(req.WeekStart, s.cfg.Location)
	if err != nil {
		return nil, apperrors.BadRequest("invalid week_start", err)
	}

	from, to := calendar.WeekRange(weekStart)
	q := model.AppointmentQuery{StartDate: from, EndDate: to, DoctorID: doctorParam(req.DoctorFilter, opts.ViewerDoctorID)}
	ticket := s.tracker.Begin(sess.ID, q)

	var alert string
	appts, err := s.appointments.List(ctx, sess.Token, q)
	if err != nil {
		if s.rejected(ctx, sess, err) {
			return nil, apperrors.Unauthorized("session expired", err)
		}
		s.log.Error(err, "failed to fetch appointments", "session_id", sess.ID, "start_date", from, "end_date", to)
		appts = nil
		alert = alertLoadFailed
	}

	grid, err := calendar.BuildGrid(appts, opts)
	if err != nil {
		return nil, apperrors.BadRequest("invalid calendar range", err)
	}
	s.observe(grid)

	if !s.tracker.Commit(ticket, grid) {
		if s.metrics != nil {
			s.metrics.CalendarStaleResponses.Inc()
		}
		s.log.Debug("discarded stale calendar response", "session_id", sess.ID, "seq", ticket.Seq)
		return nil, ErrStaleResponse
	}

	return &CalendarView{
		Seq:       ticket.Seq,
		ClientSeq: req.ClientSeq,
		Query:     q,
		Grid:      grid,
		Alert:     alert,
	}, nil
}

// UpdateStatus changes one appointment's status.
func (s *Service) UpdateStatus(ctx context.Context, sess *session.Session, id model.ID, status model.AppointmentStatus) (*MutationResult, error) {
	status = status.Normalize()
	if !status.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown status %q", status), nil)
	}
	return s.Update(ctx, sess, id, &model.AppointmentUpdate{Status: &status})
}

// Update sends a partial edit of one appointment.
func (s *Service) Update(ctx context.Context, sess *session.Session, id model.ID, upd *model.AppointmentUpdate) (*MutationResult, error) {
	if id.IsZero() {
		return nil, apperrors.BadRequest("appointment id is required", nil)
	}
	apt, err := s.appointments.Update(ctx, sess.Token, id, upd)
	if err != nil {
		return nil, s.writeError(ctx, sess, "failed to update appointment", err)
	}
	s.invalidate(ctx, sess, "update", []model.ID{id})
	return &MutationResult{Count: 1, Appointment: apt, Refetch: true}, nil
}

// Cancel cancels appointments in bulk.
func (s *Service) Cancel(ctx context.Context, sess *session.Session, ids []model.ID) (*MutationResult, error) {
	if len(ids) == 0 {
		return nil, apperrors.BadRequest("no appointments selected", nil)
	}
	n, err := s.appointments.Cancel(ctx, sess.Token, ids)
	if err != nil {
		return nil, s.writeError(ctx, sess, "failed to cancel appointments", err)
	}
	s.invalidate(ctx, sess, "cancel", ids)
	return &MutationResult{Count: n, Refetch: true, Reload: s.cfg.ReloadAfterBulk}, nil
}

// Reschedule moves appointments in bulk to newDate.
func (s *Service) Reschedule(ctx context.Context, sess *session.Session, ids []model.ID, newDate string) (*MutationResult, error) {
	if len(ids) == 0 {
		return nil, apperrors.BadRequest("no appointments selected", nil)
	}
	if _, err := calendar.ParseAppointmentDate(newDate, s.cfg.Location); err != nil {
		if _, derr := time.ParseInLocation("2006-01-02", strings.TrimSpace(newDate), s.cfg.Location); derr != nil {
			return nil, apperrors.BadRequest("invalid new_date", err)
		}
	}
	n, err := s.appointments.Reschedule(ctx, sess.Token, ids, newDate)
	if err != nil {
		return nil, s.writeError(ctx, sess, "failed to reschedule appointments", err)
	}
	s.invalidate(ctx, sess, "reschedule", ids)
	return &MutationResult{Count: n, Refetch: true, Reload: s.cfg.ReloadAfterBulk}, nil
}

// Doctors returns the doctor list for the filter dropdown, cached briefly per
// session since the backend answers with the caller's own token.
func (s *Service) Doctors(ctx context.Context, sess *session.Session) ([]model.Doctor, error) {
	key := doctorsCachePrefix + sess.ID
	if v, ok := s.doctorCache.Get(key); ok {
		return v.([]model.Doctor), nil
	}
	list, err := s.doctors.List(ctx, sess.Token)
	if err != nil {
		if s.rejected(ctx, sess, err) {
			return nil, apperrors.Unauthorized("session expired", err)
		}
		return nil, apperrors.Read("failed to load doctors", err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return strings.ToLower(list[i].LastName+list[i].FirstName) < strings.ToLower(list[j].LastName+list[j].FirstName)
	})
	s.doctorCache.SetDefault(key, list)
	return list, nil
}

// Search filters the session's committed grid by patient name. Calls are
// debounced per session; a call replaced by a newer one returns ErrSuperseded.
func (s *Service) Search(ctx context.Context, sess *session.Session, q string) ([]calendar.Entry, error) {
	latest, err := s.debouncer.Wait(ctx, "search:"+sess.ID)
	if err != nil {
		return nil, err
	}
	if !latest {
		return nil, ErrSuperseded
	}

	view, ok := s.tracker.Current(sess.ID)
	if !ok {
		return []calendar.Entry{}, nil
	}
	needle := strings.ToLower(strings.TrimSpace(q))
	out := []calendar.Entry{}
	for _, e := range view.Grid.Entries() {
		if needle == "" || strings.Contains(strings.ToLower(e.Appointment.Patient.FullName()), needle) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Listen applies invalidations published by other instances until ctx ends.
func (s *Service) Listen(ctx context.Context) error {
	if s.broker == nil {
		return nil
	}
	msgs, err := s.broker.Subscribe(ctx, messaging.ChannelAppointmentsInvalidated)
	if err != nil {
		return fmt.Errorf("failed to subscribe to invalidations: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-msgs:
			if !ok {
				return nil
			}
			var inv messaging.Invalidation
			if err := json.Unmarshal(raw, &inv); err != nil {
				s.log.Error(err, "dropping malformed invalidation")
				continue
			}
			if inv.Origin == s.origin {
				continue
			}
			s.tracker.InvalidateAll()
			s.log.Debug("applied remote invalidation", "reason", inv.Reason, "origin", inv.Origin)
		}
	}
}

func (s *Service) invalidate(ctx context.Context, sess *session.Session, reason string, ids []model.ID) {
	s.tracker.Invalidate(sess.ID)
	if s.metrics != nil {
		s.metrics.Invalidations.Inc()
	}
	if s.broker == nil {
		return
	}
	inv := messaging.Invalidation{
		Origin:         s.origin,
		Reason:         reason,
		AppointmentIDs: make([]string, 0, len(ids)),
		At:             time.Now().UTC(),
	}
	for _, id := range ids {
		inv.AppointmentIDs = append(inv.AppointmentIDs, id.String())
	}
	if err := s.broker.Publish(ctx, messaging.ChannelAppointmentsInvalidated, inv); err != nil {
		s.log.Error(err, "failed to publish invalidation", "reason", reason)
	}
}

func (s *Service) writeError(ctx context.Context, sess *session.Session, msg string, err error) error {
	if s.rejected(ctx, sess, err) {
		return apperrors.Unauthorized("session expired", err)
	}
	s.log.Error(err, msg, "session_id", sess.ID)
	if be, ok := rest.AsError(err); ok {
		status := be.StatusCode
		if status >= 500 {
			status = 0
		}
		return apperrors.Write(be.Message, status, err)
	}
	return apperrors.Write(msg, 0, err)
}

// rejected reports whether err is the backend refusing the token, and if so
// tears the session down.
func (s *Service) rejected(ctx context.Context, sess *session.Session, err error) bool {
	be, ok := rest.AsError(err)
	if !ok || !be.IsAuth() {
		return false
	}
	s.log.Warn("backend rejected session token", "session_id", sess.ID)
	if s.sessions != nil {
		s.sessions.Invalidate(ctx, sess.ID)
	}
	return true
}

func (s *Service) observe(grid *calendar.Grid) {
	for _, sk := range grid.Skipped {
		s.log.Warn("skipped appointment with malformed date", "appointment_id", sk.ID.String(), "appointment_date", sk.Raw)
	}
	if s.metrics == nil {
		return
	}
	s.metrics.CalendarBuilds.Inc()
	s.metrics.CalendarRecordsSkipped.Add(float64(len(grid.Skipped)))
	s.metrics.CalendarOutOfRange.Add(float64(grid.OutOfRange))
	if grid.Empty {
		s.metrics.CalendarEmptyRenders.Inc()
	}
}

// doctorParam is the doctor_id sent to the backend: the explicit filter, else
// the viewing doctor's own id, else nothing.
func doctorParam(filter, viewer string) string {
	if filter != "" && filter != calendar.AllDoctors {
		return filter
	}
	return viewer
}
