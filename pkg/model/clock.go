package model

import (
	"fmt"
	"time"
)

const ClockLayout = "15:04"

// ParseClock converts an HH:MM wall-clock string to minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil || len(s) != len(ClockLayout) {
		return 0, fmt.Errorf("invalid wall-clock time %q, expected HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
