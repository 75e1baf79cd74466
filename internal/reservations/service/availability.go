package service

import (
	"context"
	"errors"
	"iter"
	"slices"
	"time"

	"probook/internal/availability"
	"probook/internal/conflict"
	"probook/internal/slots"
	"probook/pkg/config"
	apperrors "probook/pkg/errors"
	"probook/pkg/metrics"
	"probook/pkg/model"
)

// maxReservationLength matches the longest duration a request may ask for.
const maxReservationLength = 24 * time.Hour

type AvailabilityWindows interface {
	WindowSource
	slots.WindowSource
}

type SlotQuery struct {
	ProfessionalID  string
	Date            time.Time
	DurationMinutes int
	ServiceID       string
}

type SlotList struct {
	ProfessionalID string         `json:"professional_id"`
	Date           string         `json:"date"`
	Duration       int            `json:"duration_minutes"`
	Service        *model.Service `json:"service,omitempty"`
	Slots          []slots.Offer  `json:"slots"`
}

type AvailabilityService interface {
	Windows(ctx context.Context, professionalID string, date time.Time) ([]availability.Window, error)
	Slots(ctx context.Context, q SlotQuery) (*SlotList, error)
	DurationOptions(ctx context.Context, professionalID string, start time.Time) ([]int, error)
	IsFree(ctx context.Context, professionalID string, start, end time.Time) (bool, error)
}

type availabilityService struct {
	windows   AvailabilityWindows
	generator *slots.Generator
	detector  *conflict.Detector
	cfg       *config.Config
	now       func() time.Time
}

func NewAvailabilityService(
	windows AvailabilityWindows,
	services ServiceSource,
	finder conflict.ActiveFinder,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		windows:   windows,
		generator: slots.NewGenerator(windows, services, cfg.SlotStep),
		detector:  conflict.NewDetector(finder),
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *availabilityService) Windows(ctx context.Context, professionalID string, date time.Time) ([]availability.Window, error) {
	windows, err := s.windows.WindowsFor(ctx, professionalID, date)
	if err != nil {
		return nil, mapScheduleError(err)
	}
	if windows == nil {
		windows = []availability.Window{}
	}
	return windows, nil
}

// Slots lists candidate slots for the day with advisory availability. The
// busy set is loaded once for the span the candidates cover.
func (s *availabilityService) Slots(ctx context.Context, q SlotQuery) (*SlotList, error) {
	var (
		seq iter.Seq[slots.Slot]
		svc *model.Service
		err error
	)
	switch {
	case q.ServiceID != "":
		seq, svc, err = s.generator.SlotsForService(ctx, q.ProfessionalID, q.Date, q.ServiceID)
	default:
		seq, err = s.generator.SlotsFor(ctx, q.ProfessionalID, q.Date, q.DurationMinutes)
	}
	if err != nil {
		return nil, mapSlotError(err)
	}

	duration := q.DurationMinutes
	if svc != nil {
		duration = svc.DurationMinutes
	}
	list := &SlotList{
		ProfessionalID: q.ProfessionalID,
		Date:           q.Date.Format(time.DateOnly),
		Duration:       duration,
		Service:        svc,
		Slots:          []slots.Offer{},
	}

	candidates := slices.Collect(seq)
	if len(candidates) == 0 {
		return list, nil
	}

	busy, err := s.detector.BusyBetween(ctx, q.ProfessionalID, candidates[0].Start, candidates[len(candidates)-1].End)
	if err != nil {
		s.cfg.Log.Error("Failed to load busy intervals", "professional_id", q.ProfessionalID, "error", err)
		return nil, apperrors.Internal("Failed to load reservations", err)
	}
	list.Slots = slices.Collect(slots.Annotate(slices.Values(candidates), busy, s.now()))
	return list, nil
}

// DurationOptions returns, in minutes, the lengths bookable from start.
func (s *availabilityService) DurationOptions(ctx context.Context, professionalID string, start time.Time) ([]int, error) {
	start = start.UTC()
	windows, err := s.windows.WindowsAt(ctx, professionalID, start)
	if err != nil {
		return nil, mapScheduleError(err)
	}

	options := []int{}
	var end time.Time
	for _, w := range windows {
		if !start.Before(w.Start) && start.Before(w.End) {
			end = w.End
			break
		}
	}
	if end.IsZero() {
		return options, nil
	}

	busy, err := s.detector.BusyBetween(ctx, professionalID, start, end)
	if err != nil {
		return nil, apperrors.Internal("Failed to load reservations", err)
	}
	for _, d := range slots.DurationOptions(windows, busy, start, s.generator.Step(), maxReservationLength) {
		options = append(options, int(d/time.Minute))
	}
	return options, nil
}

func (s *availabilityService) IsFree(ctx context.Context, professionalID string, start, end time.Time) (bool, error) {
	free, err := s.detector.IsFree(ctx, professionalID, start, end)
	if err != nil {
		if errors.Is(err, conflict.ErrInvalidInterval) {
			return false, apperrors.Validation("end must be after start", nil)
		}
		return false, apperrors.Internal("Failed to check availability", err)
	}
	metrics.IncAvailabilityCheck(free)
	return free, nil
}

func mapSlotError(err error) error {
	switch {
	case errors.Is(err, slots.ErrInvalidDuration):
		return apperrors.Validation("duration_minutes must be between 1 and 1440", nil)
	case errors.Is(err, slots.ErrServiceUnavailable):
		return apperrors.Validation("Service is not offered by this professional", nil)
	case errors.Is(err, slots.ErrInvalidStep):
		return apperrors.Internal("Slot step is not configured", err)
	}
	return mapScheduleError(err)
}
