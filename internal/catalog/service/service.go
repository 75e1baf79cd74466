package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	catalogerrors "probook/internal/catalog/errors"
	"probook/internal/catalog/repository"
	"probook/internal/catalog/validator"
	"probook/pkg/config"
	apperrors "probook/pkg/errors"
	"probook/pkg/model"
	"probook/pkg/sanitizer"
)

type CatalogService interface {
	Create(ctx context.Context, professionalID string, svc *model.Service, actor model.Actor) (*model.Service, error)
	GetByID(ctx context.Context, id string) (*model.Service, error)
	ListByProfessional(ctx context.Context, professionalID string, activeOnly bool) ([]*model.Service, error)
	Update(ctx context.Context, id string, update *model.ServiceUpdate, actor model.Actor) (*model.Service, error)
	// Deactivate hides the service from new bookings; existing reservations keep their price.
	Deactivate(ctx context.Context, id string, actor model.Actor) error
}

type catalogService struct {
	repo      repository.ServiceRepository
	validator *validator.ServiceValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewCatalogService(
	repo repository.ServiceRepository,
	validator *validator.ServiceValidator,
	cfg *config.Config,
) CatalogService {
	return &catalogService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *catalogService) Create(ctx context.Context, professionalID string, svc *model.Service, actor model.Actor) (*model.Service, error) {
	if err := authorize(professionalID, actor); err != nil {
		return nil, err
	}

	svc.ID = uuid.New().String()
	svc.ProfessionalID = professionalID
	svc.Name = sanitizer.NormalizeName(svc.Name)
	svc.IsActive = true
	svc.CreatedAt = s.now()

	if err := s.validator.Validate(svc); err != nil {
		s.cfg.Log.Warn("Service validation failed",
			"professional_id", professionalID,
			"error", err,
		)
		return nil, apperrors.Validation("Service validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, svc); err != nil {
		s.cfg.Log.Error("Failed to create service",
			"professional_id", professionalID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create service", err)
	}

	s.cfg.Log.Info("Service created successfully",
		"service_id", svc.ID,
		"professional_id", professionalID,
		"duration_minutes", svc.DurationMinutes,
	)
	return svc, nil
}

func (s *catalogService) GetByID(ctx context.Context, id string) (*model.Service, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(id, "Failed to retrieve service", err)
	}
	return svc, nil
}

func (s *catalogService) ListByProfessional(ctx context.Context, professionalID string, activeOnly bool) ([]*model.Service, error) {
	if professionalID == "" {
		return nil, apperrors.InvalidInput("Professional ID cannot be empty")
	}

	services, err := s.repo.FindByProfessional(ctx, professionalID, activeOnly)
	if err != nil {
		s.cfg.Log.Error("Failed to list services",
			"professional_id", professionalID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to list services", err)
	}
	if services == nil {
		services = []*model.Service{}
	}
	return services, nil
}

func (s *catalogService) Update(ctx context.Context, id string, update *model.ServiceUpdate, actor model.Actor) (*model.Service, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(existing.ProfessionalID, actor); err != nil {
		return nil, err
	}

	if update.Name != "" {
		update.Name = sanitizer.NormalizeName(update.Name)
	}
	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, apperrors.Validation("Service validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	merged := mergeService(existing, update)
	if err := s.repo.Update(ctx, id, merged); err != nil {
		return nil, s.mapError(id, "Failed to update service", err)
	}

	s.cfg.Log.Info("Service updated successfully", "service_id", id)
	return merged, nil
}

func (s *catalogService) Deactivate(ctx context.Context, id string, actor model.Actor) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(existing.ProfessionalID, actor); err != nil {
		return err
	}
	if !existing.IsActive {
		return nil
	}

	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return s.mapError(id, "Failed to deactivate service", err)
	}

	s.cfg.Log.Info("Service deactivated", "service_id", id)
	return nil
}

func (s *catalogService) mapError(id, message string, err error) error {
	if errors.Is(err, catalogerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Service", id)
	}
	s.cfg.Log.Error(message,
		"service_id", id,
		"error", err,
	)
	return apperrors.Internal(message, err)
}

func mergeService(existing *model.Service, update *model.ServiceUpdate) *model.Service {
	merged := *existing
	if update.Name != "" {
		merged.Name = update.Name
	}
	if update.DurationMinutes != nil {
		merged.DurationMinutes = *update.DurationMinutes
	}
	if update.Price != nil {
		merged.Price = *update.Price
	}
	if update.IsActive != nil {
		merged.IsActive = *update.IsActive
	}
	return &merged
}

func authorize(professionalID string, actor model.Actor) error {
	if !actor.IsProfessional() || actor.ID != professionalID {
		return apperrors.Forbidden("Only the professional can manage their services")
	}
	return nil
}
