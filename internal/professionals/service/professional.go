package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	professionalserrors "probook/internal/professionals/errors"
	"probook/internal/professionals/repository"
	"probook/internal/professionals/validator"
	"probook/pkg/config"
	apperrors "probook/pkg/errors"
	"probook/pkg/locale"
	"probook/pkg/model"
	"probook/pkg/sanitizer"
)

// ScheduleCreator stores the initial weekly schedule of a new professional.
type ScheduleCreator interface {
	Create(ctx context.Context, sc *model.WeeklySchedule) error
}

type ProfessionalService interface {
	// Onboard registers the professional together with a default weekly
	// schedule, so availability can be computed immediately.
	Onboard(ctx context.Context, pro *model.Professional) error
	GetByID(ctx context.Context, id string) (*model.Professional, error)
	Update(ctx context.Context, id string, updates *model.ProfessionalUpdate, actor model.Actor) (*model.Professional, error)
}

type professionalService struct {
	repo      repository.ProfessionalRepository
	schedules ScheduleCreator
	validator *validator.ProfessionalValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewProfessionalService(
	repo repository.ProfessionalRepository,
	schedules ScheduleCreator,
	validator *validator.ProfessionalValidator,
	cfg *config.Config,
) ProfessionalService {
	return &professionalService{
		repo:      repo,
		schedules: schedules,
		validator: validator,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *professionalService) Onboard(ctx context.Context, pro *model.Professional) error {
	s.sanitize(pro)
	pro.ID = uuid.New().String()
	pro.CreatedAt = s.now()
	pro.TimeZone = locale.ResolveTimeZone(pro.TimeZone, pro.Phone)

	if err := s.validator.Validate(pro); err != nil {
		s.cfg.Log.Warn("Professional validation failed",
			"name", pro.Name,
			"phone", pro.Phone,
			"error", err,
		)
		return apperrors.Validation("Professional validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	schedule := s.cfg.ScheduleTemplate.Schedule(pro.ID, pro.TimeZone)
	schedule.UpdatedAt = pro.CreatedAt

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Create(sessCtx, pro); err != nil {
			if errors.Is(err, professionalserrors.ErrDuplicatePhone) {
				return apperrors.Conflict("A professional with this phone number already exists")
			}
			return err
		}
		if err := s.schedules.Create(sessCtx, schedule); err != nil {
			return fmt.Errorf("failed to create default schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		s.cfg.Log.Error("Failed to onboard professional",
			"name", pro.Name,
			"phone", pro.Phone,
			"error", err,
		)
		return apperrors.Internal("Failed to onboard professional", err)
	}

	s.cfg.Log.Info("Professional onboarded successfully",
		"id", pro.ID,
		"name", pro.Name,
		"time_zone", pro.TimeZone,
	)
	return nil
}

func (s *professionalService) GetByID(ctx context.Context, id string) (*model.Professional, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Professional ID cannot be empty")
	}

	pro, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, professionalserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Professional", id)
		}
		s.cfg.Log.Error("Failed to get professional by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve professional", err)
	}
	return pro, nil
}

// Update changes profile fields only. A new time zone here does not move
// the schedule's zone; that is edited with the schedule.
func (s *professionalService) Update(ctx context.Context, id string, updates *model.ProfessionalUpdate, actor model.Actor) (*model.Professional, error) {
	if !actor.IsProfessional() || actor.ID != id {
		return nil, apperrors.Forbidden("Only the professional can edit their profile")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.sanitizeUpdate(updates)
	merged := mergeProfessionalUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Professional validation failed",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Validation("Professional validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, professionalserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Professional", id)
		}
		s.cfg.Log.Error("Failed to update professional",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update professional", err)
	}

	s.cfg.Log.Info("Professional updated successfully",
		"id", id,
		"name", merged.Name,
	)
	return merged, nil
}

func (s *professionalService) sanitize(pro *model.Professional) {
	pro.Name = sanitizer.NormalizeName(pro.Name)
	pro.Phone = sanitizer.NormalizePhone(pro.Phone)
	pro.TimeZone = sanitizer.NormalizeTimeZone(pro.TimeZone)
}

func (s *professionalService) sanitizeUpdate(updates *model.ProfessionalUpdate) {
	if updates.Name != "" {
		updates.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.TimeZone != "" {
		updates.TimeZone = sanitizer.NormalizeTimeZone(updates.TimeZone)
		if updates.TimeZone == "" {
			updates.TimeZone = "invalid_result"
		}
	}
}

func mergeProfessionalUpdates(existing *model.Professional, updates *model.ProfessionalUpdate) *model.Professional {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.HourlyRate != nil {
		merged.HourlyRate = *updates.HourlyRate
	}
	if updates.TimeZone != "" {
		merged.TimeZone = updates.TimeZone
	}

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	return &merged
}
