package config

import (
	"fmt"
	"os"

	"probook/pkg/model"

	"gopkg.in/yaml.v3"
)

// ScheduleTemplate is the weekly schedule every professional starts with.
type ScheduleTemplate struct {
	Days []model.DaySchedule `yaml:"days"`
}

// BuiltinScheduleTemplate is used when no template file is configured:
// Sunday to Thursday full days with a short lunch, Friday mornings, Saturday closed.
func BuiltinScheduleTemplate() *ScheduleTemplate {
	full := func(w model.Weekday) model.DaySchedule {
		return model.DaySchedule{
			Weekday:    w,
			IsOpen:     true,
			OpenTime:   "09:00",
			CloseTime:  "18:00",
			BreakStart: "13:00",
			BreakEnd:   "13:30",
		}
	}
	return &ScheduleTemplate{Days: []model.DaySchedule{
		full(model.Sunday),
		full(model.Monday),
		full(model.Tuesday),
		full(model.Wednesday),
		full(model.Thursday),
		{Weekday: model.Friday, IsOpen: true, OpenTime: "09:00", CloseTime: "14:00"},
		{Weekday: model.Saturday, IsOpen: false},
	}}
}

func LoadScheduleTemplate(path string) (*ScheduleTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schedule template: %w", err)
	}

	var tpl ScheduleTemplate
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("parse schedule template: %w", err)
	}

	if err := tpl.Validate(); err != nil {
		return nil, fmt.Errorf("validate schedule template: %w", err)
	}
	return &tpl, nil
}

func (t *ScheduleTemplate) Validate() error {
	if len(t.Days) != len(model.Weekdays) {
		return fmt.Errorf("expected %d days, got %d", len(model.Weekdays), len(t.Days))
	}
	seen := make(map[model.Weekday]bool)
	for i, d := range t.Days {
		if !d.Weekday.Valid() {
			return fmt.Errorf("days[%d]: unknown weekday %q", i, d.Weekday)
		}
		if seen[d.Weekday] {
			return fmt.Errorf("days[%d]: duplicate weekday %s", i, d.Weekday)
		}
		seen[d.Weekday] = true
		if err := d.Check(); err != nil {
			return fmt.Errorf("days[%d]: %w", i, err)
		}
	}
	return nil
}

// Schedule builds a fresh weekly schedule for a professional from the template.
func (t *ScheduleTemplate) Schedule(professionalID, timeZone string) *model.WeeklySchedule {
	days := make([]model.DaySchedule, len(t.Days))
	copy(days, t.Days)
	return &model.WeeklySchedule{
		ProfessionalID: professionalID,
		TimeZone:       timeZone,
		Days:           days,
	}
}
