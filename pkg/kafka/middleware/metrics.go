package kafkamiddleware

import (
	"context"
	"time"

	"probook/pkg/kafka"
	"probook/pkg/metrics"
)

const (
	DirectionProduce = "produce"
	DirectionConsume = "consume"
)

func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		metrics.ObserveKafka(DirectionProduce, msg.Topic, err, time.Since(start))
		return err
	}
}

func MetricsConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		metrics.ObserveKafka(DirectionConsume, msg.Topic, err, time.Since(start))
		return err
	}
}
