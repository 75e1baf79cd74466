package notifications

import (
	"context"
	"fmt"

	"probook/pkg/kafka"
	"probook/pkg/logger"
	"probook/pkg/middleware"
)

type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// LogNotifier stands in for a broker when Kafka is disabled.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, e Event) error {
	n.log.Info("Reservation event",
		"event_id", e.EventID,
		"event_type", e.Type(),
		"reservation_id", e.ReservationID,
		"professional_id", e.ProfessionalID,
		"from", e.FromStatus,
		"to", e.ToStatus,
		"request_id", middleware.RequestIDFromContext(ctx),
	)
	return nil
}

type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaNotifier keys every event by professional so one professional's
// events stay ordered on a single partition.
type KafkaNotifier struct {
	publisher Publisher
	source    string
}

func NewKafkaNotifier(publisher Publisher, source string) *KafkaNotifier {
	return &KafkaNotifier{publisher: publisher, source: source}
}

func (n *KafkaNotifier) Notify(ctx context.Context, e Event) error {
	msg, err := kafka.NewMessage().
		WithKey(e.ProfessionalID).
		WithValue(e).
		WithEventID(e.EventID).
		WithEventType(e.Type()).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(n.source).
		WithTimestamp(e.OccurredAt).
		Build()
	if err != nil {
		return err
	}
	if err := n.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s for reservation %s: %w", e.Type(), e.ReservationID, err)
	}
	return nil
}
