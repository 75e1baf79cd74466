package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrSlotTaken = errors.New("time overlaps an active reservation")

	ErrInvalidTimeRange = errors.New("end time must be after start time")

	ErrStartInPast = errors.New("start time must be in the future")

	ErrOutsideWorkingHours = errors.New("reservation is outside working hours")
)
