package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"probook/internal/notifications"
	"probook/pkg/kafka"
	kafkaconfig "probook/pkg/kafka/config"
	kafkamiddleware "probook/pkg/kafka/middleware"
	"probook/pkg/logger"
	"probook/pkg/metrics"
)

const ServiceName = "probook-notifier"

// The notifier consumes reservation lifecycle events and hands each one to
// the party that has to hear about it.
func main() {
	_ = godotenv.Load()

	log := logger.New(logger.Config{
		Level:   os.Getenv("LOG_LEVEL"),
		Format:  logger.JSON,
		Service: ServiceName,
	})

	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		log.Fatal("Invalid Kafka configuration", "error", err)
	}
	log.Info("Kafka configuration loaded", kafkaCfg.LogArgs()...)

	metrics.Register()
	dispatcher := notifications.NewDispatcher(notifications.NewLogDelivery(log), log)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		log,
		kafkaCfg.TopicReservations,
		kafkaCfg.ConsumerGroup,
		kafkaCfg.TopicDLQ,
		dispatcher.Handle,
	)
	if err != nil {
		log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(log))
	consumer.Use(kafkamiddleware.MetricsConsumerMiddleware())

	metricsServer := &http.Server{
		Addr:              ":" + metricsPort(),
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Consuming reservation events", "topic", kafkaCfg.TopicReservations, "group", kafkaCfg.ConsumerGroup)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Consumer stopped", "error", err)
	}

	log.Info("Shutting down notifier")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Metrics server shutdown failed", "error", err)
	}
	if err := consumer.Close(); err != nil {
		log.Error("Failed to close Kafka consumer", "error", err)
	}
}

func metricsPort() string {
	if port := os.Getenv("METRICS_PORT"); port != "" {
		return port
	}
	return "9102"
}
