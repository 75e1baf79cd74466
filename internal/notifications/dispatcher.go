package notifications

import (
	"context"
	"fmt"

	"probook/pkg/kafka"
	"probook/pkg/logger"
	"probook/pkg/metrics"
)

// Delivery hands an event to its recipient. The mechanism (SMS, push,
// WhatsApp) lives outside the engine.
type Delivery interface {
	Deliver(ctx context.Context, recipient Recipient, recipientID string, e Event) error
}

type LogDelivery struct {
	log *logger.Logger
}

func NewLogDelivery(log *logger.Logger) *LogDelivery {
	return &LogDelivery{log: log}
}

func (d *LogDelivery) Deliver(ctx context.Context, recipient Recipient, recipientID string, e Event) error {
	d.log.Info("Notification delivered",
		"recipient", recipient,
		"recipient_id", recipientID,
		"event_type", e.Type(),
		"reservation_id", e.ReservationID,
		"start_at", e.StartAt,
	)
	return nil
}

type Dispatcher struct {
	delivery Delivery
	log      *logger.Logger
}

func NewDispatcher(delivery Delivery, log *logger.Logger) *Dispatcher {
	return &Dispatcher{delivery: delivery, log: log}
}

// Handle is a kafka.MessageHandler for the lifecycle topic.
func (d *Dispatcher) Handle(ctx context.Context, msg kafka.Message) error {
	var e Event
	if err := msg.DecodeValue(&e); err != nil {
		return err
	}
	if e.ReservationID == "" || e.ToStatus == "" {
		return kafka.NewPermanentError("invalid message", fmt.Errorf("event %s lacks reservation or status", msg.GetEventID()))
	}
	return d.Dispatch(ctx, e)
}

func (d *Dispatcher) Dispatch(ctx context.Context, e Event) error {
	recipient := RecipientFor(e)
	if recipient == RecipientNone {
		d.log.Debug("Event needs no notification", "event_type", e.Type(), "reservation_id", e.ReservationID)
		metrics.IncNotificationDispatched(string(recipient), "skipped")
		return nil
	}

	if err := d.delivery.Deliver(ctx, recipient, RecipientID(e, recipient), e); err != nil {
		metrics.IncNotificationDispatched(string(recipient), "failed")
		return err
	}
	metrics.IncNotificationDispatched(string(recipient), "delivered")
	return nil
}
