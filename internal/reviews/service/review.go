package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	reviewserrors "probook/internal/reviews/errors"
	"probook/internal/reviews/repository"
	"probook/internal/reviews/validator"
	"probook/pkg/config"
	apperrors "probook/pkg/errors"
	"probook/pkg/model"
)

type ReservationSource interface {
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
}

type ReviewService interface {
	// Submit records the client's review of a completed reservation.
	Submit(ctx context.Context, reservationID string, actor model.Actor, rating int, comment string) (*model.Review, error)
	// CanReview reports whether the reservation is completed and still unreviewed.
	CanReview(ctx context.Context, reservationID string) (bool, error)
	ListByProfessional(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Review, int64, error)
}

type reviewService struct {
	repo         repository.ReviewRepository
	reservations ReservationSource
	validator    *validator.ReviewValidator
	cfg          *config.Config
	now          func() time.Time
}

func NewReviewService(
	repo repository.ReviewRepository,
	reservations ReservationSource,
	validator *validator.ReviewValidator,
	cfg *config.Config,
) ReviewService {
	return &reviewService{
		repo:         repo,
		reservations: reservations,
		validator:    validator,
		cfg:          cfg,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *reviewService) Submit(ctx context.Context, reservationID string, actor model.Actor, rating int, comment string) (*model.Review, error) {
	r, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !actor.IsClient() || actor.ID != r.ClientID {
		return nil, apperrors.Forbidden("Only the reservation's client can review it")
	}
	if r.Status != model.StatusCompleted {
		return nil, apperrors.ReviewNotAllowed(string(r.Status))
	}

	req := &model.ReviewRequest{Rating: rating, Comment: strings.TrimSpace(comment)}
	if err := s.validator.Validate(req); err != nil {
		return nil, apperrors.Validation("Review validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	review := &model.Review{
		ReservationID:  r.ID,
		ProfessionalID: r.ProfessionalID,
		ClientID:       r.ClientID,
		Rating:         req.Rating,
		Comment:        req.Comment,
		CreatedAt:      s.now(),
	}
	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, reviewserrors.ErrAlreadyReviewed) {
			return nil, apperrors.Conflict("This reservation has already been reviewed")
		}
		s.cfg.Log.Error("Failed to create review",
			"reservation_id", reservationID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create review", err)
	}

	s.cfg.Log.Info("Review submitted",
		"reservation_id", review.ReservationID,
		"professional_id", review.ProfessionalID,
		"rating", review.Rating,
	)
	return review, nil
}

func (s *reviewService) CanReview(ctx context.Context, reservationID string) (bool, error) {
	r, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return false, err
	}
	if r.Status != model.StatusCompleted {
		return false, nil
	}

	_, err = s.repo.FindByReservationID(ctx, reservationID)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, reviewserrors.ErrNotFound):
		return true, nil
	default:
		return false, apperrors.Internal("Failed to look up review", err)
	}
}

func (s *reviewService) ListByProfessional(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Review, int64, error) {
	if professionalID == "" {
		return nil, 0, apperrors.InvalidInput("Professional ID cannot be empty")
	}

	var (
		reviews           []*model.Review
		count             int64
		errFind, errCount error
		wg                sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		reviews, errFind = s.repo.FindByProfessional(ctx, professionalID, limit, offset)
	}()
	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByProfessional(ctx, professionalID)
	}()
	wg.Wait()

	if err := errors.Join(errFind, errCount); err != nil {
		s.cfg.Log.Error("Failed to list reviews",
			"professional_id", professionalID,
			"error", err,
		)
		return nil, 0, apperrors.Internal("Failed to list reviews", err)
	}
	if reviews == nil {
		reviews = []*model.Review{}
	}
	return reviews, count, nil
}
