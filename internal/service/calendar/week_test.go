package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-dashboard/internal/model"
	"github.com/jwalitptl/hospital-dashboard/internal/service/calendar"
)

func TestNormalizeWeekStart(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-03-30", "2025-03-30"}, // Sunday
		{"2025-04-02", "2025-03-30"}, // Wednesday
		{"2025-04-05", "2025-03-30"}, // Saturday
		{"2025-04-06", "2025-04-06"},
		{"2025-04-01T23:00:00Z", "2025-03-30"}, // Wed 04:30 IST
	}
	for _, tt := range tests {
		got, err := calendar.NormalizeWeekStart(tt.in, calendar.IST)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got.Format("2006-01-02"), tt.in)
		assert.Equal(t, time.Sunday, got.Weekday())
		assert.Zero(t, got.Hour())
	}

	_, err := calendar.NormalizeWeekStart("", calendar.IST)
	assert.ErrorIs(t, err, calendar.ErrInvalidDate)
}

func TestWeekRange(t *testing.T) {
	start, err := calendar.NormalizeWeekStart("2025-03-30", calendar.IST)
	require.NoError(t, err)
	from, to := calendar.WeekRange(start)
	assert.Equal(t, "2025-03-30", from)
	assert.Equal(t, "2025-04-05", to)
}

func TestParseAppointmentDateWithoutOffsetIsClinicLocal(t *testing.T) {
	got, err := calendar.ParseAppointmentDate("2025-03-31T09:15:00", calendar.IST)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Hour())
	assert.Equal(t, "2025-03-31T03:45:00Z", got.UTC().Format(time.RFC3339))
}

func TestDayLabel(t *testing.T) {
	d := time.Date(2025, 4, 1, 0, 0, 0, 0, calendar.IST)
	assert.Equal(t, "Tue 1/4", calendar.DayLabel(d))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "status-on-going", calendar.StatusClass(status("on-going")))
	assert.Equal(t, "status-canceled", calendar.StatusClass(status("Canceled")))
	assert.Equal(t, "status-unknown", calendar.StatusClass(nil))
	assert.Equal(t, "status-unknown", calendar.StatusClass(status("teleported")))
	empty := model.AppointmentStatus("")
	assert.Equal(t, "status-unknown", calendar.StatusClass(&empty))
}
