package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-dashboard/internal/model"
	"github.com/jwalitptl/hospital-dashboard/internal/service/calendar"
)

func weekQuery(start string) model.AppointmentQuery {
	return model.AppointmentQuery{StartDate: start, EndDate: start}
}

func TestTrackerLatestTicketWins(t *testing.T) {
	tr := NewTracker(0)
	first := tr.Begin("s1", weekQuery("2025-03-30"))
	second := tr.Begin("s1", weekQuery("2025-04-06"))

	assert.Greater(t, second.Seq, first.Seq)

	// second response arrives first, then the older one
	assert.True(t, tr.Commit(second, &calendar.Grid{Total: 2}))
	assert.False(t, tr.Commit(first, &calendar.Grid{Total: 1}))

	view, ok := tr.Current("s1")
	require.True(t, ok)
	assert.Equal(t, second.Seq, view.Seq)
	assert.Equal(t, 2, view.Grid.Total)
}

func TestTrackerSessionsAreIndependent(t *testing.T) {
	tr := NewTracker(0)
	a := tr.Begin("a", weekQuery("2025-03-30"))
	b := tr.Begin("b", weekQuery("2025-03-30"))

	assert.True(t, tr.Commit(a, &calendar.Grid{}))
	assert.True(t, tr.Commit(b, &calendar.Grid{}))
}

func TestTrackerInvalidateMakesInFlightStale(t *testing.T) {
	tr := NewTracker(0)
	done := tr.Begin("s1", weekQuery("2025-03-30"))
	require.True(t, tr.Commit(done, &calendar.Grid{}))

	inFlight := tr.Begin("s1", weekQuery("2025-03-30"))
	tr.Invalidate("s1")

	assert.False(t, tr.Commit(inFlight, &calendar.Grid{}))
	_, ok := tr.Current("s1")
	assert.False(t, ok)
}

func TestTrackerInvalidateAll(t *testing.T) {
	tr := NewTracker(0)
	for _, id := range []string{"a", "b"} {
		require.True(t, tr.Commit(tr.Begin(id, weekQuery("2025-03-30")), &calendar.Grid{}))
	}
	tr.InvalidateAll()

	for _, id := range []string{"a", "b"} {
		_, ok := tr.Current(id)
		assert.False(t, ok, id)
	}
}

func TestTrackerDrop(t *testing.T) {
	tr := NewTracker(0)
	ticket := tr.Begin("s1", weekQuery("2025-03-30"))
	tr.Drop("s1")

	assert.False(t, tr.Commit(ticket, &calendar.Grid{}))
	_, ok := tr.Current("s1")
	assert.False(t, ok)
}
