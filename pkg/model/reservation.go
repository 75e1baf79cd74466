package model

import "time"

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCompleted ReservationStatus = "COMPLETED"
	StatusCancelled ReservationStatus = "CANCELLED"
	StatusRejected  ReservationStatus = "REJECTED"
)

// ActiveStatuses are the statuses that hold a professional's time.
var ActiveStatuses = []ReservationStatus{StatusPending, StatusConfirmed}

func (s ReservationStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

const CurrencyILS = "ILS"

// ReservationSource records who entered a reservation. Manual bookings are
// ones a professional recorded for a client, e.g. a phone or walk-in booking.
type ReservationSource string

const (
	SourceClient ReservationSource = "client"
	SourceManual ReservationSource = "manual"
)

// Reservation times are UTC. TotalPrice is in minor currency units.
type Reservation struct {
	ID             string            `json:"id" bson:"_id" db:"id"`
	ProfessionalID string            `json:"professional_id" bson:"professional_id" db:"professional_id"`
	ClientID       string            `json:"client_id" bson:"client_id" db:"client_id"`
	ServiceID      string            `json:"service_id,omitempty" bson:"service_id,omitempty" db:"service_id"`
	StartAt        time.Time         `json:"start_at" bson:"start_at" db:"start_at"`
	EndAt          time.Time         `json:"end_at" bson:"end_at" db:"end_at"`
	Status         ReservationStatus `json:"status" bson:"status" db:"status"`
	Source         ReservationSource `json:"source" bson:"source" db:"source"`
	TotalPrice     int64             `json:"total_price" bson:"total_price" db:"total_price"`
	Currency       string            `json:"currency" bson:"currency" db:"currency"`
	CreatedAt      time.Time         `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" bson:"updated_at" db:"updated_at"`
}

func (r *Reservation) Duration() time.Duration {
	return r.EndAt.Sub(r.StartAt)
}

func (r *Reservation) Manual() bool {
	return r.Source == SourceManual
}

// ReservationRequest is what a client submits. Either ServiceID, DurationMinutes
// or EndAt determines the length; a catalog service always wins.
type ReservationRequest struct {
	ProfessionalID  string     `json:"professional_id" validate:"required,max=64"`
	ClientID        string     `json:"client_id" validate:"required,max=64"`
	ServiceID       string     `json:"service_id,omitempty" validate:"omitempty,max=64"`
	StartAt         time.Time  `json:"start_at" validate:"required"`
	EndAt           *time.Time `json:"end_at,omitempty"`
	DurationMinutes int        `json:"duration_minutes,omitempty" validate:"omitempty,min=1,max=1440"`
}

type ReservationFilter struct {
	Statuses []ReservationStatus
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int64
}

// TransitionResult carries the reservation after a lifecycle command and
// whether the command changed anything.
type TransitionResult struct {
	Reservation *Reservation `json:"reservation"`
	NoOp        bool         `json:"noop"`
}
