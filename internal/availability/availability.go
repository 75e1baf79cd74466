// Package availability turns a professional's weekly working hours into
// concrete working windows for a calendar date.
package availability

import (
	"context"
	"fmt"
	"time"

	"probook/pkg/model"
)

const DefaultTimeZone = "Asia/Jerusalem"

// Window is a half-open [Start, End) interval in UTC.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Contains(start, end time.Time) bool {
	return !start.Before(w.Start) && !end.After(w.End) && start.Before(end)
}

// Within reports whether [start, end) sits entirely inside one window.
func Within(windows []Window, start, end time.Time) bool {
	for _, w := range windows {
		if w.Contains(start, end) {
			return true
		}
	}
	return false
}

type ScheduleSource interface {
	GetSchedule(ctx context.Context, professionalID string) (*model.WeeklySchedule, error)
}

type Model struct {
	schedules ScheduleSource
}

func New(schedules ScheduleSource) *Model {
	return &Model{schedules: schedules}
}

// WindowsFor loads the professional's schedule and computes the windows for date.
func (m *Model) WindowsFor(ctx context.Context, professionalID string, date time.Time) ([]Window, error) {
	schedule, err := m.schedules.GetSchedule(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	return Compute(schedule, date)
}

// WindowsAt returns the windows of the working day that contains instant,
// read in the schedule's own zone.
func (m *Model) WindowsAt(ctx context.Context, professionalID string, instant time.Time) ([]Window, error) {
	schedule, err := m.schedules.GetSchedule(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	loc, err := Location(schedule)
	if err != nil {
		return nil, err
	}
	return Compute(schedule, instant.In(loc))
}

// Location resolves the schedule's zone, falling back to Israel time.
func Location(s *model.WeeklySchedule) (*time.Location, error) {
	tz := s.TimeZone
	if tz == "" {
		tz = DefaultTimeZone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", tz, err)
	}
	return loc, nil
}

// Compute returns the ordered working windows for the calendar date carried by
// date (its year, month and day; the clock and zone are ignored). Wall-clock
// hours are read in the schedule's zone and returned as UTC instants. A closed
// weekday or a closed date yields no windows.
func Compute(s *model.WeeklySchedule, date time.Time) ([]Window, error) {
	loc, err := Location(s)
	if err != nil {
		return nil, err
	}

	y, mo, d := date.Date()
	midnight := time.Date(y, mo, d, 0, 0, 0, 0, loc)
	if s.IsClosedOn(midnight.Format(time.DateOnly)) {
		return nil, nil
	}

	day, ok := s.Day(model.WeekdayOf(midnight.Weekday()))
	if !ok || !day.IsOpen {
		return nil, nil
	}
	if err := day.Check(); err != nil {
		return nil, err
	}
	mins, err := day.Minutes()
	if err != nil {
		return nil, err
	}

	at := func(minute int) time.Time {
		return time.Date(y, mo, d, minute/60, minute%60, 0, 0, loc).UTC()
	}

	bounds := [][2]int{{mins.Open, mins.Close}}
	if mins.HasBreak {
		bounds = [][2]int{{mins.Open, mins.BreakStart}, {mins.BreakEnd, mins.Close}}
	}

	windows := make([]Window, 0, len(bounds))
	for _, b := range bounds {
		w := Window{Start: at(b[0]), End: at(b[1])}
		// skips an empty piece when the break touches open or close
		if w.Start.Before(w.End) {
			windows = append(windows, w)
		}
	}
	return windows, nil
}
