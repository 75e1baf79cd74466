package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"probook/internal/availability"
	"probook/internal/lifecycle"
	"probook/internal/notifications"
	"probook/internal/pricing"
	reservationserrors "probook/internal/reservations/errors"
	"probook/internal/reservations/repository"
	"probook/internal/reservations/validator"
	"probook/pkg/config"
	apperrors "probook/pkg/errors"
	"probook/pkg/metrics"
	"probook/pkg/model"

	"github.com/google/uuid"
)

type ProfessionalSource interface {
	GetByID(ctx context.Context, id string) (*model.Professional, error)
}

type ServiceSource interface {
	GetByID(ctx context.Context, id string) (*model.Service, error)
}

type WindowSource interface {
	WindowsAt(ctx context.Context, professionalID string, instant time.Time) ([]availability.Window, error)
}

type ReservationService interface {
	Create(ctx context.Context, req *model.ReservationRequest, actor model.Actor) (*model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetForActor(ctx context.Context, id string, actor model.Actor) (*model.Reservation, error)
	Confirm(ctx context.Context, id string, actor model.Actor) (*model.TransitionResult, error)
	Reject(ctx context.Context, id string, actor model.Actor) (*model.TransitionResult, error)
	Cancel(ctx context.Context, id string, actor model.Actor) (*model.TransitionResult, error)
	Complete(ctx context.Context, id string, actor model.Actor, opts lifecycle.Options) (*model.TransitionResult, error)
	Transition(ctx context.Context, id string, action lifecycle.Action, actor model.Actor, opts lifecycle.Options) (*model.TransitionResult, error)
	ListForProfessional(ctx context.Context, professionalID string, filter model.ReservationFilter, actor model.Actor) ([]*model.Reservation, int64, error)
	ListForClient(ctx context.Context, clientID string, filter model.ReservationFilter, actor model.Actor) ([]*model.Reservation, int64, error)
}

type reservationService struct {
	repo          repository.ReservationRepository
	validator     *validator.ReservationValidator
	professionals ProfessionalSource
	services      ServiceSource
	windows       WindowSource
	machine       *lifecycle.Machine
	notifier      notifications.Notifier
	cfg           *config.Config
	now           func() time.Time
}

func NewReservationService(
	repo repository.ReservationRepository,
	validator *validator.ReservationValidator,
	professionals ProfessionalSource,
	services ServiceSource,
	windows WindowSource,
	notifier notifications.Notifier,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:          repo,
		validator:     validator,
		professionals: professionals,
		services:      services,
		windows:       windows,
		machine:       lifecycle.NewMachine(lifecycle.NoticePolicy{Notice: cfg.CancellationNotice}),
		notifier:      notifier,
		cfg:           cfg,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *reservationService) Create(ctx context.Context, req *model.ReservationRequest, actor model.Actor) (*model.Reservation, error) {
	now := s.now()
	if err := s.validator.Validate(req, now); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "professional_id", req.ProfessionalID, "error", err)
		return nil, apperrors.Validation("Invalid reservation request", map[string]any{"error": err.Error()})
	}
	if err := authorizeCreate(req, actor); err != nil {
		return nil, err
	}

	pro, err := s.professionals.GetByID(ctx, req.ProfessionalID)
	if err != nil {
		return nil, err
	}

	var svc *model.Service
	if req.ServiceID != "" {
		svc, err = s.services.GetByID(ctx, req.ServiceID)
		if err != nil {
			return nil, err
		}
		if svc.ProfessionalID != pro.ID || !svc.IsActive {
			return nil, apperrors.Validation("Service is not offered by this professional",
				map[string]any{"service_id": req.ServiceID})
		}
	}

	start := req.StartAt.UTC().Truncate(time.Millisecond)
	var requested time.Duration
	switch {
	case req.DurationMinutes > 0:
		requested = time.Duration(req.DurationMinutes) * time.Minute
	case req.EndAt != nil:
		requested = req.EndAt.UTC().Truncate(time.Millisecond).Sub(start)
	}
	duration, err := pricing.DurationFor(svc, requested)
	if err != nil {
		return nil, apperrors.Validation("Invalid reservation length", map[string]any{"error": err.Error()})
	}
	end := start.Add(duration)

	windows, err := s.windows.WindowsAt(ctx, pro.ID, start)
	if err != nil {
		return nil, mapScheduleError(err)
	}
	if !availability.Within(windows, start, end) {
		return nil, apperrors.Validation("Reservation is outside working hours", map[string]any{
			"start_at": start,
			"end_at":   end,
		})
	}

	price, err := pricing.PriceFor(svc, duration, pro.HourlyRate)
	if err != nil {
		return nil, apperrors.Validation("Reservation cannot be priced", map[string]any{"error": err.Error()})
	}

	stamp := now.Truncate(time.Millisecond)
	res := &model.Reservation{
		ID:             uuid.NewString(),
		ProfessionalID: pro.ID,
		ClientID:       req.ClientID,
		ServiceID:      req.ServiceID,
		StartAt:        start,
		EndAt:          end,
		Status:         model.StatusPending,
		Source:         sourceFor(actor),
		TotalPrice:     price,
		Currency:       model.CurrencyILS,
		CreatedAt:      stamp,
		UpdatedAt:      stamp,
	}

	if err := s.repo.CreateIfFree(ctx, res); err != nil {
		if errors.Is(err, reservationserrors.ErrSlotTaken) {
			metrics.IncReservationCreated("conflict")
			s.cfg.Log.Info("Reservation slot already taken",
				"professional_id", pro.ID,
				"start_at", start,
				"end_at", end,
			)
			return nil, apperrors.SlotConflict(pro.ID)
		}
		metrics.IncReservationCreated("error")
		s.cfg.Log.Error("Failed to create reservation", "professional_id", pro.ID, "error", err)
		return nil, apperrors.Internal("Failed to create reservation", err)
	}

	metrics.IncReservationCreated("ok")
	s.cfg.Log.Info("Reservation created successfully",
		"id", res.ID,
		"professional_id", res.ProfessionalID,
		"client_id", res.ClientID,
		"start_at", res.StartAt,
		"total_price", res.TotalPrice,
	)
	s.notify(ctx, notifications.NewEvent(res, "", actor.Role, now))
	return res, nil
}

// authorizeCreate lets a client book for themselves and a professional
// enter a booking into their own calendar.
func authorizeCreate(req *model.ReservationRequest, actor model.Actor) error {
	switch {
	case actor.IsClient() && actor.ID == req.ClientID:
		return nil
	case actor.IsProfessional() && actor.ID == req.ProfessionalID:
		return nil
	}
	return apperrors.Forbidden("Reservations can only be made for yourself")
}

func sourceFor(actor model.Actor) model.ReservationSource {
	if actor.IsProfessional() {
		return model.SourceManual
	}
	return model.SourceClient
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}
	return res, nil
}

func (s *reservationService) GetForActor(ctx context.Context, id string, actor model.Actor) (*model.Reservation, error) {
	res, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isParticipant(res, actor) {
		return nil, apperrors.Forbidden("Not a party to this reservation")
	}
	return res, nil
}

func (s *reservationService) Confirm(ctx context.Context, id string, actor model.Actor) (*model.TransitionResult, error) {
	return s.Transition(ctx, id, lifecycle.Confirm, actor, lifecycle.Options{})
}

func (s *reservationService) Reject(ctx context.Context, id string, actor model.Actor) (*model.TransitionResult, error) {
	return s.Transition(ctx, id, lifecycle.Reject, actor, lifecycle.Options{})
}

func (s *reservationService) Cancel(ctx context.Context, id string, actor model.Actor) (*model.TransitionResult, error) {
	return s.Transition(ctx, id, lifecycle.Cancel, actor, lifecycle.Options{})
}

func (s *reservationService) Complete(ctx context.Context, id string, actor model.Actor, opts lifecycle.Options) (*model.TransitionResult, error) {
	return s.Transition(ctx, id, lifecycle.Complete, actor, opts)
}

// Transition applies action with a compare-and-swap on the stored status.
// Losing the swap means someone else moved the reservation first: if it
// landed where this command wanted, the command is a no-op, otherwise it
// is refused against the status that won.
func (s *reservationService) Transition(ctx context.Context, id string, action lifecycle.Action, actor model.Actor, opts lifecycle.Options) (*model.TransitionResult, error) {
	res, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	decision, err := s.machine.Plan(res, action, actor, now, opts)
	if err != nil {
		target, _ := action.Target()
		metrics.IncTransition(string(res.Status), string(target), "refused")
		return nil, mapLifecycleError(err)
	}
	if decision.NoOp {
		metrics.IncTransition(string(decision.From), string(decision.To), "noop")
		return &model.TransitionResult{Reservation: res, NoOp: true}, nil
	}

	swapped, err := s.repo.CompareAndSwapStatus(ctx, id, decision.From, decision.To, now)
	if err != nil {
		s.cfg.Log.Error("Failed to update reservation status", "id", id, "to", decision.To, "error", err)
		return nil, apperrors.Internal("Failed to update reservation", err)
	}
	if !swapped {
		current, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Status == decision.To {
			metrics.IncTransition(string(decision.From), string(decision.To), "noop")
			return &model.TransitionResult{Reservation: current, NoOp: true}, nil
		}
		metrics.IncTransition(string(current.Status), string(decision.To), "refused")
		return nil, apperrors.InvalidTransition(string(current.Status), string(decision.To),
			fmt.Sprintf("reservation is now %s", current.Status))
	}

	res.Status = decision.To
	res.UpdatedAt = now.Truncate(time.Millisecond)
	metrics.IncTransition(string(decision.From), string(decision.To), "ok")
	s.cfg.Log.Info("Reservation status changed",
		"id", id,
		"from", decision.From,
		"to", decision.To,
		"actor_role", actor.Role,
	)
	s.notify(ctx, notifications.NewEvent(res, decision.From, actor.Role, now))
	return &model.TransitionResult{Reservation: res}, nil
}

func (s *reservationService) ListForProfessional(ctx context.Context, professionalID string, filter model.ReservationFilter, actor model.Actor) ([]*model.Reservation, int64, error) {
	if !actor.IsProfessional() || actor.ID != professionalID {
		return nil, 0, apperrors.Forbidden("Professionals can only list their own reservations")
	}
	return s.list(ctx, filter, func(ctx context.Context) ([]*model.Reservation, error) {
		return s.repo.ListByProfessional(ctx, professionalID, filter)
	}, func(ctx context.Context) (int64, error) {
		return s.repo.CountByProfessional(ctx, professionalID, filter)
	})
}

func (s *reservationService) ListForClient(ctx context.Context, clientID string, filter model.ReservationFilter, actor model.Actor) ([]*model.Reservation, int64, error) {
	if !actor.IsClient() || actor.ID != clientID {
		return nil, 0, apperrors.Forbidden("Clients can only list their own reservations")
	}
	return s.list(ctx, filter, func(ctx context.Context) ([]*model.Reservation, error) {
		return s.repo.ListByClient(ctx, clientID, filter)
	}, func(ctx context.Context) (int64, error) {
		return s.repo.CountByClient(ctx, clientID, filter)
	})
}

// list runs the page query and the count concurrently.
func (s *reservationService) list(
	ctx context.Context,
	filter model.ReservationFilter,
	find func(context.Context) ([]*model.Reservation, error),
	count func(context.Context) (int64, error),
) ([]*model.Reservation, int64, error) {
	if err := s.validator.ValidateFilter(&filter); err != nil {
		return nil, 0, apperrors.Validation("Invalid reservation filter", map[string]any{"error": err.Error()})
	}

	var (
		reservations      []*model.Reservation
		total             int64
		errFind, errCount error
		wg                sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		reservations, errFind = find(ctx)
	}()
	go func() {
		defer wg.Done()
		total, errCount = count(ctx)
	}()
	wg.Wait()

	if errFind != nil {
		s.cfg.Log.Error("Failed to list reservations", "error", errFind)
		return nil, 0, apperrors.Internal("Failed to retrieve reservations", errFind)
	}
	if errCount != nil {
		s.cfg.Log.Error("Failed to count reservations", "error", errCount)
		return nil, 0, apperrors.Internal("Failed to count reservations", errCount)
	}
	if reservations == nil {
		reservations = []*model.Reservation{}
	}
	return reservations, total, nil
}

// notify never fails the caller: the status change is already committed.
func (s *reservationService) notify(ctx context.Context, e notifications.Event) {
	if err := s.notifier.Notify(ctx, e); err != nil {
		s.cfg.Log.Error("Failed to publish reservation event",
			"event_id", e.EventID,
			"reservation_id", e.ReservationID,
			"to", e.ToStatus,
			"error", err,
		)
	}
}

func isParticipant(r *model.Reservation, actor model.Actor) bool {
	return (actor.IsClient() && actor.ID == r.ClientID) ||
		(actor.IsProfessional() && actor.ID == r.ProfessionalID)
}

func mapLifecycleError(err error) error {
	var te *lifecycle.TransitionError
	switch {
	case errors.As(err, &te):
		return apperrors.InvalidTransition(string(te.From), string(te.To), te.Reason)
	case errors.Is(err, lifecycle.ErrNotParticipant):
		return apperrors.Forbidden("Not a party to this reservation")
	case errors.Is(err, lifecycle.ErrRoleNotPermitted):
		return apperrors.Forbidden("Your role may not perform this action")
	case errors.Is(err, lifecycle.ErrUnknownAction):
		return apperrors.InvalidInput(err.Error())
	}
	return apperrors.Internal("Failed to plan transition", err)
}

// mapScheduleError passes AppErrors from the schedule store through and
// reports a broken stored schedule as an internal fault.
func mapScheduleError(err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal("Failed to compute working hours", err)
}
