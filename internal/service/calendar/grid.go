package calendar

import (
	"fmt"
	"time"

	"github.com/jwalitptl/hospital-dashboard/internal/model"
)

const (
	DefaultFirstHour = 8
	DefaultLastHour  = 20
	DaysPerWeek      = 7

	// AllDoctors is the doctor filter value that means "no explicit filter".
	AllDoctors = "all"
)

// IST is the clinic timezone used when none is configured.
var IST = time.FixedZone("IST", 5*60*60+30*60)

type Options struct {
	WeekStart      string
	FirstHour      int
	LastHour       int
	DoctorFilter   string
	ViewerDoctorID string
	Location       *time.Location
}

type Day struct {
	Offset int       `json:"offset"`
	Date   time.Time `json:"date"`
	Label  string    `json:"label"`
}

// Entry is one appointment placed in a cell. StackIndex is its position
// within the cell and drives the vertical offset when rendered.
type Entry struct {
	Appointment model.Appointment `json:"appointment"`
	Start       time.Time         `json:"start"`
	StatusClass string            `json:"status_class"`
	StackIndex  int               `json:"stack_index"`
}

type Cell struct {
	Hour         int     `json:"hour"`
	Appointments []Entry `json:"appointments"`
}

// Skipped describes an appointment dropped because its date did not parse.
type Skipped struct {
	ID     model.ID `json:"id"`
	Raw    string   `json:"raw"`
	Reason string   `json:"reason"`
}

type Grid struct {
	WeekStart  time.Time           `json:"week_start"`
	Days       [DaysPerWeek]Day    `json:"days"`
	Hours      []int               `json:"hours"`
	Cells      [DaysPerWeek][]Cell `json:"cells"`
	Empty      bool                `json:"empty"`
	Total      int                 `json:"total"`
	OutOfRange int                 `json:"out_of_range"`
	Skipped    []Skipped           `json:"skipped,omitempty"`
}

// Cell returns the cell for (day offset, hour), or nil when outside the grid.
func (g *Grid) Cell(day, hour int) *Cell {
	if day < 0 || day >= DaysPerWeek || len(g.Hours) == 0 {
		return nil
	}
	i := hour - g.Hours[0]
	if i < 0 || i >= len(g.Cells[day]) {
		return nil
	}
	return &g.Cells[day][i]
}

// Entries returns every placed entry, day by day, hour by hour.
func (g *Grid) Entries() []Entry {
	var out []Entry
	for d := range g.Cells {
		for _, c := range g.Cells[d] {
			out = append(out, c.Appointments...)
		}
	}
	return out
}

// BuildGrid buckets appointments into the (day, hour) cells of the week that
// contains opts.WeekStart. It only fails when the week start or hour range is
// unusable; a malformed appointment date drops that one record into Skipped.
func BuildGrid(appointments []model.Appointment, opts Options) (*Grid, error) {
	opts = withDefaults(opts)
	if opts.FirstHour < 0 || opts.LastHour > 23 || opts.FirstHour > opts.LastHour {
		return nil, fmt.Errorf("%w: %d-%d", ErrInvalidHourRange, opts.FirstHour, opts.LastHour)
	}

	weekStart, err := NormalizeWeekStart(opts.WeekStart, opts.Location)
	if err != nil {
		return nil, err
	}

	g := newGrid(weekStart, opts.FirstHour, opts.LastHour)

	type placed struct {
		apt   model.Appointment
		start time.Time
	}
	var valid []placed
	for _, apt := range appointments {
		start, err := ParseAppointmentDate(apt.AppointmentDate, opts.Location)
		if err != nil {
			g.Skipped = append(g.Skipped, Skipped{ID: apt.ID, Raw: apt.AppointmentDate, Reason: err.Error()})
			continue
		}
		valid = append(valid, placed{apt: apt, start: start})
	}

	doctor := effectiveDoctor(opts.DoctorFilter, opts.ViewerDoctorID)
	for _, p := range valid {
		if doctor != "" && p.apt.Doctor.ID.String() != doctor {
			continue
		}
		g.Total++

		cell := g.Cell(daysBetween(weekStart, p.start), p.start.Hour())
		if cell == nil {
			g.OutOfRange++
			continue
		}
		cell.Appointments = append(cell.Appointments, Entry{
			Appointment: p.apt,
			Start:       p.start,
			StatusClass: StatusClass(p.apt.Status),
			StackIndex:  len(cell.Appointments),
		})
	}

	g.Empty = g.Total == 0
	return g, nil
}

// EmptyGrid is the grid rendered when the fetch failed: well formed, no appointments.
func EmptyGrid(opts Options) (*Grid, error) {
	return BuildGrid(nil, opts)
}

// effectiveDoctor returns the doctor id to keep, or "" to keep everyone.
// Doctors see their own schedule unless they pick another doctor explicitly.
func effectiveDoctor(filter, viewer string) string {
	if filter != "" && filter != AllDoctors {
		return filter
	}
	return viewer
}

func withDefaults(opts Options) Options {
	if opts.FirstHour == 0 && opts.LastHour == 0 {
		opts.FirstHour, opts.LastHour = DefaultFirstHour, DefaultLastHour
	}
	if opts.Location == nil {
		opts.Location = IST
	}
	return opts
}

func newGrid(weekStart time.Time, firstHour, lastHour int) *Grid {
	g := &Grid{WeekStart: weekStart}
	for h := firstHour; h <= lastHour; h++ {
		g.Hours = append(g.Hours, h)
	}
	for d := 0; d < DaysPerWeek; d++ {
		date := weekStart.AddDate(0, 0, d)
		g.Days[d] = Day{Offset: d, Date: date, Label: DayLabel(date)}
		g.Cells[d] = make([]Cell, len(g.Hours))
		for i, h := range g.Hours {
			g.Cells[d][i] = Cell{Hour: h, Appointments: []Entry{}}
		}
	}
	return g
}
