package model

import (
	"fmt"
	"strings"
	"time"
)

type Weekday string

const (
	Sunday    Weekday = "Sunday"
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
)

// Weekdays lists the week starting on Sunday, as it is observed in Israel.
var Weekdays = []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

func WeekdayOf(d time.Weekday) Weekday {
	return Weekdays[int(d)]
}

func ParseWeekday(s string) (Weekday, error) {
	for _, w := range Weekdays {
		if strings.EqualFold(string(w), strings.TrimSpace(s)) {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown weekday %q", s)
}

func (w Weekday) Valid() bool {
	for _, d := range Weekdays {
		if d == w {
			return true
		}
	}
	return false
}
