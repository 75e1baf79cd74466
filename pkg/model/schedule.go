package model

import (
	"fmt"
	"time"
)

type DaySchedule struct {
	Weekday    Weekday `json:"weekday" bson:"weekday" yaml:"weekday" validate:"required,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	IsOpen     bool    `json:"is_open" bson:"is_open" yaml:"is_open"`
	OpenTime   string  `json:"open_time,omitempty" bson:"open_time,omitempty" yaml:"open_time" validate:"omitempty,clock"`
	CloseTime  string  `json:"close_time,omitempty" bson:"close_time,omitempty" yaml:"close_time" validate:"omitempty,clock"`
	BreakStart string  `json:"break_start,omitempty" bson:"break_start,omitempty" yaml:"break_start" validate:"omitempty,clock"`
	BreakEnd   string  `json:"break_end,omitempty" bson:"break_end,omitempty" yaml:"break_end" validate:"omitempty,clock"`
}

// HasBreak is false when either bound is missing or both are equal.
func (d DaySchedule) HasBreak() bool {
	return d.BreakStart != "" && d.BreakEnd != "" && d.BreakStart != d.BreakEnd
}

type WeeklySchedule struct {
	ProfessionalID string        `json:"professional_id" bson:"_id" validate:"required"`
	TimeZone       string        `json:"time_zone" bson:"time_zone" validate:"required,timezone"`
	Days           []DaySchedule `json:"days" bson:"days" validate:"required,len=7,unique=Weekday,dive"`
	ClosedDates    []string      `json:"closed_dates,omitempty" bson:"closed_dates,omitempty" validate:"omitempty,dive,datetime=2006-01-02"`
	UpdatedAt      time.Time     `json:"updated_at" bson:"updated_at"`
}

func (s *WeeklySchedule) Day(w Weekday) (DaySchedule, bool) {
	for _, d := range s.Days {
		if d.Weekday == w {
			return d, true
		}
	}
	return DaySchedule{}, false
}

func (s *WeeklySchedule) IsClosedOn(date string) bool {
	for _, d := range s.ClosedDates {
		if d == date {
			return true
		}
	}
	return false
}

type ScheduleUpdate struct {
	Days     []DaySchedule `json:"days" validate:"required,len=7,unique=Weekday,dive"`
	TimeZone string        `json:"time_zone,omitempty" validate:"omitempty,timezone"`
}

type ClosedDatesUpdate struct {
	ClosedDates []string `json:"closed_dates" validate:"max=366,dive,datetime=2006-01-02"`
}

// DayMinutes is a DaySchedule resolved to minutes since midnight.
type DayMinutes struct {
	Open       int
	Close      int
	BreakStart int
	BreakEnd   int
	HasBreak   bool
}

func (d DaySchedule) Minutes() (DayMinutes, error) {
	var m DayMinutes
	var err error
	if m.Open, err = ParseClock(d.OpenTime); err != nil {
		return m, fmt.Errorf("%s open_time: %w", d.Weekday, err)
	}
	if m.Close, err = ParseClock(d.CloseTime); err != nil {
		return m, fmt.Errorf("%s close_time: %w", d.Weekday, err)
	}
	if !d.HasBreak() {
		return m, nil
	}
	if m.BreakStart, err = ParseClock(d.BreakStart); err != nil {
		return m, fmt.Errorf("%s break_start: %w", d.Weekday, err)
	}
	if m.BreakEnd, err = ParseClock(d.BreakEnd); err != nil {
		return m, fmt.Errorf("%s break_end: %w", d.Weekday, err)
	}
	m.HasBreak = true
	return m, nil
}

// Check enforces open < close and a break that sits inside the open hours.
// Closed days are not checked.
func (d DaySchedule) Check() error {
	if !d.IsOpen {
		return nil
	}
	if (d.BreakStart == "") != (d.BreakEnd == "") {
		return fmt.Errorf("%s: break_start and break_end must be set together", d.Weekday)
	}
	m, err := d.Minutes()
	if err != nil {
		return err
	}
	if m.Open >= m.Close {
		return fmt.Errorf("%s: open_time must be before close_time", d.Weekday)
	}
	if m.HasBreak && (m.BreakStart >= m.BreakEnd || m.BreakStart < m.Open || m.BreakEnd > m.Close) {
		return fmt.Errorf("%s: break must lie within open hours and end after it starts", d.Weekday)
	}
	return nil
}
