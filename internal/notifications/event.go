// Package notifications turns reservation status changes into events and
// routes them to the party that needs to hear about them.
package notifications

import (
	"strings"
	"time"

	"probook/pkg/model"

	"github.com/google/uuid"
)

const SchemaVersion = "1"

// Event records one status change. FromStatus is empty for a new reservation.
type Event struct {
	EventID        string                  `json:"event_id"`
	ReservationID  string                  `json:"reservation_id"`
	ProfessionalID string                  `json:"professional_id"`
	ClientID       string                  `json:"client_id"`
	FromStatus     model.ReservationStatus `json:"from_status,omitempty"`
	ToStatus       model.ReservationStatus `json:"to_status"`
	Actor          model.ActorRole         `json:"actor,omitempty"`
	StartAt        time.Time               `json:"start_at"`
	OccurredAt     time.Time               `json:"occurred_at"`
}

func NewEvent(r *model.Reservation, from model.ReservationStatus, actor model.ActorRole, at time.Time) Event {
	return Event{
		EventID:        uuid.NewString(),
		ReservationID:  r.ID,
		ProfessionalID: r.ProfessionalID,
		ClientID:       r.ClientID,
		FromStatus:     from,
		ToStatus:       r.Status,
		Actor:          actor,
		StartAt:        r.StartAt,
		OccurredAt:     at.UTC(),
	}
}

// Type is the event name carried in the message header, e.g. "reservation.confirmed".
func (e Event) Type() string {
	return "reservation." + strings.ToLower(string(e.ToStatus))
}

type Recipient string

const (
	RecipientProfessional Recipient = "professional"
	RecipientClient       Recipient = "client"
	RecipientNone         Recipient = "none"
)

// RecipientFor decides who hears about e. The professional learns of new
// requests and of cancellations made by the client; the client learns of
// every decision the professional makes.
func RecipientFor(e Event) Recipient {
	switch e.ToStatus {
	case model.StatusPending:
		return RecipientProfessional
	case model.StatusConfirmed, model.StatusRejected, model.StatusCompleted:
		return RecipientClient
	case model.StatusCancelled:
		if e.Actor == model.RoleProfessional {
			return RecipientClient
		}
		return RecipientProfessional
	}
	return RecipientNone
}

// RecipientID returns the id of the party RecipientFor selected.
func RecipientID(e Event, r Recipient) string {
	switch r {
	case RecipientProfessional:
		return e.ProfessionalID
	case RecipientClient:
		return e.ClientID
	}
	return ""
}
