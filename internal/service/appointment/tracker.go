package appointment

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/hospital-dashboard/internal/model"
	"github.com/jwalitptl/hospital-dashboard/internal/service/calendar"
)

// Ticket tags one calendar load with the query it was issued for and the
// session's sequence number at the time.
type Ticket struct {
	SessionID string
	Seq       uint64
	Query     model.AppointmentQuery
}

// View is the last grid committed for a session. It is replaced wholesale.
type View struct {
	Seq         uint64                 `json:"seq"`
	Query       model.AppointmentQuery `json:"query"`
	Grid        *calendar.Grid         `json:"grid"`
	CommittedAt time.Time              `json:"committed_at"`
}

type tracked struct {
	seq   uint64
	query model.AppointmentQuery
	view  *View
}

// Tracker hands out tickets per session and only lets the newest one commit.
type Tracker struct {
	mu     sync.Mutex
	states *cache.Cache
	now    func() time.Time
}

func NewTracker(ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Tracker{
		states: cache.New(ttl, ttl),
		now:    time.Now,
	}
}

// Begin issues a ticket for q. Any ticket issued earlier for the same session
// is stale from now on.
func (t *Tracker) Begin(sessionID string, q model.AppointmentQuery) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.state(sessionID)
	st.seq++
	st.query = q
	return Ticket{SessionID: sessionID, Seq: st.seq, Query: q}
}

// Commit stores grid as the session's view if ticket is still the latest one
// and its query is still the active query. It returns false otherwise and the
// grid must be discarded.
func (t *Tracker) Commit(ticket Ticket, grid *calendar.Grid) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.states.Get(ticket.SessionID)
	if !ok {
		return false
	}
	st := v.(*tracked)
	if st.seq != ticket.Seq || st.query != ticket.Query {
		return false
	}
	st.view = &View{Seq: ticket.Seq, Query: ticket.Query, Grid: grid, CommittedAt: t.now()}
	t.states.SetDefault(ticket.SessionID, st)
	return true
}

// Current returns the session's committed view.
func (t *Tracker) Current(sessionID string) (*View, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.states.Get(sessionID)
	if !ok {
		return nil, false
	}
	st := v.(*tracked)
	if st.view == nil {
		return nil, false
	}
	return st.view, true
}

// Invalidate drops the session's view and makes every in-flight load stale.
func (t *Tracker) Invalidate(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.states.Get(sessionID)
	if !ok {
		return
	}
	st := v.(*tracked)
	st.seq++
	st.view = nil
}

// InvalidateAll invalidates every session. Used when another instance reports
// a mutation.
func (t *Tracker) InvalidateAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, item := range t.states.Items() {
		st := item.Object.(*tracked)
		st.seq++
		st.view = nil
	}
}

// Drop forgets the session entirely.
func (t *Tracker) Drop(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states.Delete(sessionID)
}

func (t *Tracker) state(sessionID string) *tracked {
	if v, ok := t.states.Get(sessionID); ok {
		st := v.(*tracked)
		t.states.SetDefault(sessionID, st)
		return st
	}
	st := &tracked{}
	t.states.SetDefault(sessionID, st)
	return st
}
