// Package slots produces bookable candidate slots from working windows.
package slots

import (
	"context"
	"errors"
	"iter"
	"time"

	"probook/internal/availability"
	"probook/internal/conflict"
	"probook/pkg/model"
)

// MaxDurationMinutes matches the longest reservation that can be booked.
const MaxDurationMinutes = 24 * 60

var (
	ErrInvalidDuration    = errors.New("duration must be between 1 and 1440 minutes")
	ErrInvalidStep        = errors.New("step must be positive")
	ErrServiceUnavailable = errors.New("service is not offered by this professional")
)

type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Offer is a slot annotated for display. Available is advisory only.
type Offer struct {
	Slot
	Available bool `json:"available"`
}

// Generate yields every slot of the given duration that fits inside a window,
// starting at each window's opening and advancing by step. The sequence is
// lazy and can be ranged over any number of times.
func Generate(windows []availability.Window, duration, step time.Duration) iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		if duration <= 0 || step <= 0 {
			return
		}
		for _, w := range windows {
			for start := w.Start; !start.Add(duration).After(w.End); start = start.Add(step) {
				if !yield(Slot{Start: start, End: start.Add(duration)}) {
					return
				}
			}
		}
	}
}

// Annotate marks slots that overlap busy time or start before now as unavailable.
func Annotate(slots iter.Seq[Slot], busy []conflict.Interval, now time.Time) iter.Seq[Offer] {
	return func(yield func(Offer) bool) {
		for s := range slots {
			available := !s.Start.Before(now) && !conflict.AnyOverlap(busy, s.Start, s.End)
			if !yield(Offer{Slot: s, Available: available}) {
				return
			}
		}
	}
}

// DurationOptions lists the lengths, in multiples of step up to longest, that can
// be booked from start without leaving its window or running into busy time.
func DurationOptions(windows []availability.Window, busy []conflict.Interval, start time.Time, step, longest time.Duration) []time.Duration {
	if step <= 0 || longest < step {
		return nil
	}

	var limit time.Time
	for _, w := range windows {
		if !start.Before(w.Start) && start.Before(w.End) {
			limit = w.End
			break
		}
	}
	if limit.IsZero() {
		return nil
	}

	for _, b := range busy {
		if !b.End.After(start) {
			continue
		}
		if !b.Start.After(start) {
			return nil
		}
		if b.Start.Before(limit) {
			limit = b.Start
		}
	}

	var out []time.Duration
	for d := step; d <= longest && !start.Add(d).After(limit); d += step {
		out = append(out, d)
	}
	return out
}

type WindowSource interface {
	WindowsFor(ctx context.Context, professionalID string, date time.Time) ([]availability.Window, error)
}

type ServiceSource interface {
	GetByID(ctx context.Context, id string) (*model.Service, error)
}

type Generator struct {
	windows  WindowSource
	services ServiceSource
	step     time.Duration
}

func NewGenerator(windows WindowSource, services ServiceSource, step time.Duration) *Generator {
	return &Generator{
		windows:  windows,
		services: services,
		step:     step,
	}
}

func (g *Generator) Step() time.Duration {
	return g.step
}

// SlotsFor recomputes the windows on every call; nothing is cached because the
// schedule can change between calls.
func (g *Generator) SlotsFor(ctx context.Context, professionalID string, date time.Time, durationMinutes int) (iter.Seq[Slot], error) {
	if durationMinutes <= 0 || durationMinutes > MaxDurationMinutes {
		return nil, ErrInvalidDuration
	}
	if g.step <= 0 {
		return nil, ErrInvalidStep
	}

	windows, err := g.windows.WindowsFor(ctx, professionalID, date)
	if err != nil {
		return nil, err
	}
	return Generate(windows, time.Duration(durationMinutes)*time.Minute, g.step), nil
}

// SlotsForService takes the slot length from an active catalog service owned
// by the professional.
func (g *Generator) SlotsForService(ctx context.Context, professionalID string, date time.Time, serviceID string) (iter.Seq[Slot], *model.Service, error) {
	svc, err := g.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, nil, err
	}
	if svc.ProfessionalID != professionalID || !svc.IsActive {
		return nil, nil, ErrServiceUnavailable
	}

	seq, err := g.SlotsFor(ctx, professionalID, date, svc.DurationMinutes)
	if err != nil {
		return nil, nil, err
	}
	return seq, svc, nil
}
