// Package conflict decides whether a professional's time is free.
package conflict

import (
	"context"
	"errors"
	"time"

	"probook/pkg/model"
)

var ErrInvalidInterval = errors.New("interval end must be after its start")

// Interval is half-open: [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps is the half-open overlap test, so back-to-back intervals do not collide.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

func AnyOverlap(busy []Interval, start, end time.Time) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

// Busy keeps the intervals of reservations that still hold time.
func Busy(reservations []*model.Reservation) []Interval {
	out := make([]Interval, 0, len(reservations))
	for _, r := range reservations {
		if r.Status.Active() {
			out = append(out, Interval{Start: r.StartAt, End: r.EndAt})
		}
	}
	return out
}

type ActiveFinder interface {
	// FindActiveOverlapping returns PENDING or CONFIRMED reservations of the
	// professional overlapping [start, end).
	FindActiveOverlapping(ctx context.Context, professionalID string, start, end time.Time) ([]*model.Reservation, error)
}

type Detector struct {
	finder ActiveFinder
}

func NewDetector(finder ActiveFinder) *Detector {
	return &Detector{finder: finder}
}

// IsFree is a read-only check. Its answer is advisory: creation repeats the
// check atomically with the insert.
func (d *Detector) IsFree(ctx context.Context, professionalID string, start, end time.Time) (bool, error) {
	if !start.Before(end) {
		return false, ErrInvalidInterval
	}
	overlapping, err := d.finder.FindActiveOverlapping(ctx, professionalID, start.UTC(), end.UTC())
	if err != nil {
		return false, err
	}
	return !AnyOverlap(Busy(overlapping), start, end), nil
}

// BusyBetween lists the active intervals touching [from, to).
func (d *Detector) BusyBetween(ctx context.Context, professionalID string, from, to time.Time) ([]Interval, error) {
	if !from.Before(to) {
		return nil, ErrInvalidInterval
	}
	overlapping, err := d.finder.FindActiveOverlapping(ctx, professionalID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	return Busy(overlapping), nil
}
