package service

import (
	"context"
	"errors"
	"time"

	scheduleerrors "probook/internal/schedules/errors"
	"probook/internal/schedules/repository"
	"probook/internal/schedules/validator"
	"probook/pkg/config"
	apperrors "probook/pkg/errors"
	"probook/pkg/model"
	"probook/pkg/sanitizer"
)

type ScheduleService interface {
	// GetSchedule returns the professional's weekly hours; it feeds availability.
	GetSchedule(ctx context.Context, professionalID string) (*model.WeeklySchedule, error)
	Update(ctx context.Context, professionalID string, update *model.ScheduleUpdate, actor model.Actor) (*model.WeeklySchedule, error)
	SetClosedDates(ctx context.Context, professionalID string, update *model.ClosedDatesUpdate, actor model.Actor) (*model.WeeklySchedule, error)
}

type scheduleService struct {
	repo      repository.ScheduleRepository
	validator *validator.ScheduleValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewScheduleService(
	repo repository.ScheduleRepository,
	validator *validator.ScheduleValidator,
	cfg *config.Config,
) ScheduleService {
	return &scheduleService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *scheduleService) GetSchedule(ctx context.Context, professionalID string) (*model.WeeklySchedule, error) {
	if professionalID == "" {
		return nil, apperrors.InvalidInput("Professional ID cannot be empty")
	}

	sc, err := s.repo.FindByProfessionalID(ctx, professionalID)
	if err != nil {
		if errors.Is(err, scheduleerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Schedule", professionalID)
		}
		s.cfg.Log.Error("Failed to get schedule",
			"professional_id", professionalID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve schedule", err)
	}
	return sc, nil
}

// Update replaces all seven days. Existing reservations are not touched even
// if they no longer fit the new hours.
func (s *scheduleService) Update(ctx context.Context, professionalID string, update *model.ScheduleUpdate, actor model.Actor) (*model.WeeklySchedule, error) {
	if err := authorize(professionalID, actor); err != nil {
		return nil, err
	}

	update.TimeZone = sanitizer.NormalizeTimeZone(update.TimeZone)
	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Schedule validation failed",
			"professional_id", professionalID,
			"error", err,
		)
		return nil, apperrors.Validation("Schedule validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.ReplaceDays(ctx, professionalID, update.Days, update.TimeZone, s.now()); err != nil {
		return nil, s.mapWriteError(professionalID, "Failed to update schedule", err)
	}

	s.cfg.Log.Info("Schedule updated successfully",
		"professional_id", professionalID,
		"time_zone", update.TimeZone,
	)
	return s.GetSchedule(ctx, professionalID)
}

func (s *scheduleService) SetClosedDates(ctx context.Context, professionalID string, update *model.ClosedDatesUpdate, actor model.Actor) (*model.WeeklySchedule, error) {
	if err := authorize(professionalID, actor); err != nil {
		return nil, err
	}

	update.ClosedDates = sanitizer.NormalizeDates(update.ClosedDates)
	if err := s.validator.ValidateClosedDates(update); err != nil {
		return nil, apperrors.Validation("Closed dates validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.SetClosedDates(ctx, professionalID, update.ClosedDates, s.now()); err != nil {
		return nil, s.mapWriteError(professionalID, "Failed to update closed dates", err)
	}

	s.cfg.Log.Info("Closed dates updated successfully",
		"professional_id", professionalID,
		"count", len(update.ClosedDates),
	)
	return s.GetSchedule(ctx, professionalID)
}

func (s *scheduleService) mapWriteError(professionalID, message string, err error) error {
	if errors.Is(err, scheduleerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Schedule", professionalID)
	}
	s.cfg.Log.Error(message,
		"professional_id", professionalID,
		"error", err,
	)
	return apperrors.Internal(message, err)
}

// authorize limits schedule changes to the professional who owns it.
func authorize(professionalID string, actor model.Actor) error {
	if !actor.IsProfessional() || actor.ID != professionalID {
		return apperrors.Forbidden("Only the professional can change their schedule")
	}
	return nil
}
