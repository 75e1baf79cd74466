package repository

import (
	"context"
	"time"

	"probook/pkg/model"
)

// ReservationRepository is the persistence contract for reservations. Both
// implementations guarantee that CreateIfFree never lets two active
// reservations of one professional overlap, however many callers race.
type ReservationRepository interface {
	// CreateIfFree inserts r when no active reservation of the same
	// professional overlaps [r.StartAt, r.EndAt). It returns ErrSlotTaken otherwise.
	CreateIfFree(ctx context.Context, r *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindActiveOverlapping(ctx context.Context, professionalID string, start, end time.Time) ([]*model.Reservation, error)
	ListByProfessional(ctx context.Context, professionalID string, filter model.ReservationFilter) ([]*model.Reservation, error)
	CountByProfessional(ctx context.Context, professionalID string, filter model.ReservationFilter) (int64, error)
	ListByClient(ctx context.Context, clientID string, filter model.ReservationFilter) ([]*model.Reservation, error)
	CountByClient(ctx context.Context, clientID string, filter model.ReservationFilter) (int64, error)
	// CompareAndSwapStatus moves the reservation to `to` only if it is still
	// in `from`. It reports whether the swap happened.
	CompareAndSwapStatus(ctx context.Context, id string, from, to model.ReservationStatus, at time.Time) (bool, error)
}

// withTimeout bounds ctx by timeout unless it already has an earlier deadline.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}
