package availability

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"probook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekWith(day model.DaySchedule) *model.WeeklySchedule {
	s := &model.WeeklySchedule{ProfessionalID: "pro-1", TimeZone: DefaultTimeZone}
	for _, w := range model.Weekdays {
		if w == day.Weekday {
			s.Days = append(s.Days, day)
			continue
		}
		s.Days = append(s.Days, model.DaySchedule{Weekday: w})
	}
	return s
}

func utc(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// 2026-01-04 is a Sunday in winter (UTC+2); 2026-07-05 is a Sunday in summer (UTC+3).
var (
	winterSunday = time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	summerSunday = time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC)
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name string
		day  model.DaySchedule
		date time.Time
		want []Window
	}{
		{
			name: "open without break",
			day:  model.DaySchedule{Weekday: model.Sunday, IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"},
			date: winterSunday,
			want: []Window{{utc("2026-01-04T07:00:00Z"), utc("2026-01-04T16:00:00Z")}},
		},
		{
			name: "summer offset",
			day:  model.DaySchedule{Weekday: model.Sunday, IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"},
			date: summerSunday,
			want: []Window{{utc("2026-07-05T06:00:00Z"), utc("2026-07-05T15:00:00Z")}},
		},
		{
			name: "break splits the day",
			day: model.DaySchedule{Weekday: model.Sunday, IsOpen: true, OpenTime: "09:00", CloseTime: "18:00",
				BreakStart: "13:00", BreakEnd: "14:00"},
			date: winterSunday,
			want: []Window{
				{utc("2026-01-04T07:00:00Z"), utc("2026-01-04T11:00:00Z")},
				{utc("2026-01-04T12:00:00Z"), utc("2026-01-04T16:00:00Z")},
			},
		},
		{
			name: "equal break bounds mean no break",
			day: model.DaySchedule{Weekday: model.Sunday, IsOpen: true, OpenTime: "09:00", CloseTime: "18:00",
				BreakStart: "13:00", BreakEnd: "13:00"},
			date: winterSunday,
			want: []Window{{utc("2026-01-04T07:00:00Z"), utc("2026-01-04T16:00:00Z")}},
		},
		{
			name: "break at opening leaves one window",
			day: model.DaySchedule{Weekday: model.Sunday, IsOpen: true, OpenTime: "09:00", CloseTime: "18:00",
				BreakStart: "09:00", BreakEnd: "10:00"},
			date: winterSunday,
			want: []Window{{utc("2026-01-04T08:00:00Z"), utc("2026-01-04T16:00:00Z")}},
		},
		{
			name: "closed weekday",
			day:  model.DaySchedule{Weekday: model.Monday, IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"},
			date: winterSunday,
			want: nil,
		},
		{
			name: "toggled closed",
			day:  model.DaySchedule{Weekday: model.Sunday, IsOpen: false, OpenTime: "09:00", CloseTime: "18:00"},
			date: winterSunday,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(weekWith(tt.day), tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompute_DateIsReadAsCalendarDay(t *testing.T) {
	s := weekWith(model.DaySchedule{Weekday: model.Sunday, IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"})

	// Late Sunday evening in another zone is still Sunday the 4th.
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	got, err := Compute(s, time.Date(2026, 1, 4, 23, 30, 0, 0, ny))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, utc("2026-01-04T07:00:00Z"), got[0].Start)
}

func TestCompute_ClosedDate(t *testing.T) {
	s := weekWith(model.DaySchedule{Weekday: model.Sunday, IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"})
	s.ClosedDates = []string{"2026-01-04"}

	got, err := Compute(s, winterSunday)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Compute(s, winterSunday.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCompute_InvalidDay(t *testing.T) {
	s := weekWith(model.DaySchedule{Weekday: model.Sunday, IsOpen: true, OpenTime: "18:00", CloseTime: "09:00"})
	_, err := Compute(s, winterSunday)
	assert.Error(t, err)

	s = weekWith(model.DaySchedule{Weekday: model.Sunday, IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"})
	s.TimeZone = "Nowhere/Land"
	_, err = Compute(s, winterSunday)
	assert.Error(t, err)
}

// Every window stays inside opening hours and never touches the break,
// whatever the break placement.
func TestCompute_WindowsAvoidBreak(t *testing.T) {
	for bs := 9 * 60; bs <= 18*60; bs += 15 {
		for be := bs; be <= 18*60; be += 15 {
			day := model.DaySchedule{
				Weekday: model.Sunday, IsOpen: true, OpenTime: "09:00", CloseTime: "18:00",
				BreakStart: model.FormatClock(bs), BreakEnd: model.FormatClock(be),
			}
			got, err := Compute(weekWith(day), winterSunday)
			require.NoError(t, err, "break %s-%s", day.BreakStart, day.BreakEnd)

			open := utc("2026-01-04T07:00:00Z")
			closeAt := utc("2026-01-04T16:00:00Z")
			breakStart := open.Add(time.Duration(bs-9*60) * time.Minute)
			breakEnd := open.Add(time.Duration(be-9*60) * time.Minute)

			for i, w := range got {
				assert.True(t, w.Start.Before(w.End), "zero-length window")
				assert.False(t, w.Start.Before(open))
				assert.False(t, w.End.After(closeAt))
				if bs != be {
					assert.False(t, w.Start.Before(breakEnd) && w.End.After(breakStart), "window overlaps break")
				}
				if i > 0 {
					assert.True(t, got[i-1].End.Before(w.Start) || got[i-1].End.Equal(w.Start))
				}
			}
		}
	}
}

type stubSource struct {
	schedule *model.WeeklySchedule
	err      error
	calls    int
}

func (s *stubSource) GetSchedule(_ context.Context, _ string) (*model.WeeklySchedule, error) {
	s.calls++
	return s.schedule, s.err
}

func TestModel_WindowsFor(t *testing.T) {
	src := &stubSource{schedule: weekWith(model.DaySchedule{Weekday: model.Sunday, IsOpen: true, OpenTime: "10:00", CloseTime: "12:00"})}
	m := New(src)

	got, err := m.WindowsFor(context.Background(), "pro-1", winterSunday)
	require.NoError(t, err)
	assert.Equal(t, []Window{{utc("2026-01-04T08:00:00Z"), utc("2026-01-04T10:00:00Z")}}, got)

	src.err = errors.New("schedule not found")
	_, err = m.WindowsFor(context.Background(), "pro-1", winterSunday)
	assert.Error(t, err)
}

func TestModel_WindowsAt_UsesLocalDay(t *testing.T) {
	src := &stubSource{schedule: weekWith(model.DaySchedule{Weekday: model.Sunday, IsOpen: true, OpenTime: "10:00", CloseTime: "12:00"})}
	m := New(src)

	// 22:30 UTC on Saturday is already 00:30 on Sunday in Israel.
	got, err := m.WindowsAt(context.Background(), "pro-1", utc("2026-01-03T22:30:00Z"))
	require.NoError(t, err)
	assert.Equal(t, []Window{{utc("2026-01-04T08:00:00Z"), utc("2026-01-04T10:00:00Z")}}, got)
}

func TestWithin(t *testing.T) {
	windows := []Window{
		{utc("2026-01-04T07:00:00Z"), utc("2026-01-04T11:00:00Z")},
		{utc("2026-01-04T12:00:00Z"), utc("2026-01-04T16:00:00Z")},
	}
	assert.True(t, Within(windows, utc("2026-01-04T10:00:00Z"), utc("2026-01-04T11:00:00Z")))
	assert.False(t, Within(windows, utc("2026-01-04T10:30:00Z"), utc("2026-01-04T11:30:00Z")))
	assert.False(t, Within(windows, utc("2026-01-04T11:00:00Z"), utc("2026-01-04T12:00:00Z")))
	assert.False(t, Within(windows, utc("2026-01-04T13:00:00Z"), utc("2026-01-04T13:00:00Z")))
}
