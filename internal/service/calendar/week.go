package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidHourRange = errors.New("invalid hour range")
)

const dateLayout = "2006-01-02"

// local layouts carry no offset and are read in the clinic's timezone.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// NormalizeWeekStart parses s (a date or an RFC3339 timestamp) and returns
// midnight of the preceding Sunday in loc. A Sunday maps to itself.
func NormalizeWeekStart(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	var t time.Time
	var err error
	if t, err = time.ParseInLocation(dateLayout, s, loc); err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return time.Time{}, fmt.Errorf("%w: week start %q", ErrInvalidDate, s)
		}
		t = t.In(loc)
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return day.AddDate(0, 0, -int(day.Weekday())), nil
}

// WeekRange returns the first and last calendar dates of the week starting at
// weekStart, formatted as the backend's start_date/end_date query values.
func WeekRange(weekStart time.Time) (string, string) {
	return weekStart.Format(dateLayout), weekStart.AddDate(0, 0, 6).Format(dateLayout)
}

// ParseAppointmentDate parses an appointment timestamp and converts it to loc.
// Timestamps without an offset are taken as clinic-local time.
func ParseAppointmentDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty appointment date", ErrInvalidDate)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: appointment date %q", ErrInvalidDate, s)
}

// DayLabel is the column header, e.g. "Mon 31/3".
func DayLabel(t time.Time) string {
	return fmt.Sprintf("%s %d/%d", t.Weekday().String()[:3], t.Day(), int(t.Month()))
}

// daysBetween counts calendar days from a to b using their wall-clock dates,
// so a DST shift inside the week does not move an appointment to another column.
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
