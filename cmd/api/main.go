package main

import (
	_ "time/tzdata"

	"probook/internal/availability"
	catalogHandler "probook/internal/catalog/handler"
	catalogRepository "probook/internal/catalog/repository"
	catalogService "probook/internal/catalog/service"
	catalogValidator "probook/internal/catalog/validator"
	"probook/internal/notifications"
	professionalHandler "probook/internal/professionals/handler"
	professionalRepository "probook/internal/professionals/repository"
	professionalService "probook/internal/professionals/service"
	professionalValidator "probook/internal/professionals/validator"
	reservationHandler "probook/internal/reservations/handler"
	reservationRepository "probook/internal/reservations/repository"
	reservationService "probook/internal/reservations/service"
	reservationValidator "probook/internal/reservations/validator"
	reviewHandler "probook/internal/reviews/handler"
	reviewRepository "probook/internal/reviews/repository"
	reviewService "probook/internal/reviews/service"
	reviewValidator "probook/internal/reviews/validator"
	scheduleHandler "probook/internal/schedules/handler"
	scheduleRepository "probook/internal/schedules/repository"
	scheduleService "probook/internal/schedules/service"
	scheduleValidator "probook/internal/schedules/validator"
	"probook/pkg/app"
	"probook/pkg/config"
	"probook/pkg/contracts"
	"probook/pkg/kafka"
	kafkaconfig "probook/pkg/kafka/config"
	kafkamiddleware "probook/pkg/kafka/middleware"
)

const ServiceName = "probook-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.ReservationStore == config.StorePostgres {
		cfg.SetPostgres()
	}
	cfg.SetRedis()

	cfg.Log.Info("Starting reservation API")
	serverApp := app.NewApplication(cfg)

	notifier, producer := initNotifier(cfg)
	if producer != nil {
		serverApp.OnShutdown(producer)
	}

	serverApp.SetApp(initHandlers(cfg, notifier)...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, notifier notifications.Notifier) []contracts.Handler {
	scheduleRepo := scheduleRepository.NewMongoScheduleRepository(cfg)
	schedules := scheduleService.NewScheduleService(
		scheduleRepo,
		scheduleValidator.NewScheduleValidator(cfg.Log),
		cfg,
	)
	windows := availability.New(schedules)

	catalog := catalogService.NewCatalogService(
		catalogRepository.NewMongoServiceRepository(cfg),
		catalogValidator.NewServiceValidator(cfg.Log),
		cfg,
	)

	professionals := professionalService.NewProfessionalService(
		professionalRepository.NewMongoProfessionalRepository(cfg),
		scheduleRepo,
		professionalValidator.NewProfessionalValidator(cfg.Log),
		cfg,
	)

	reservationRepo := initReservationRepository(cfg)
	reservations := reservationService.NewReservationService(
		reservationRepo,
		reservationValidator.NewReservationValidator(cfg.Log),
		professionals,
		catalog,
		windows,
		notifier,
		cfg,
	)
	availabilityService := reservationService.NewAvailabilityService(windows, catalog, reservationRepo, cfg)

	reviews := reviewService.NewReviewService(
		reviewRepository.NewMongoReviewRepository(cfg),
		reservations,
		reviewValidator.NewReviewValidator(),
		cfg,
	)

	cfg.Log.Info("Services initialized",
		"database", cfg.MongoDatabaseName,
		"reservation_store", cfg.ReservationStore,
	)

	return []contracts.Handler{
		professionalHandler.NewProfessionalHandler(professionals, cfg.Log),
		scheduleHandler.NewScheduleHandler(schedules, cfg.Log),
		catalogHandler.NewCatalogHandler(catalog, cfg.Log),
		reservationHandler.NewReservationHandler(reservations, cfg.Log),
		reservationHandler.NewAvailabilityHandler(availabilityService, cfg.Log),
		reviewHandler.NewReviewHandler(reviews, cfg.Log),
	}
}

func initReservationRepository(cfg *config.Config) reservationRepository.ReservationRepository {
	if cfg.ReservationStore == config.StorePostgres {
		return reservationRepository.NewPostgresReservationRepository(cfg)
	}
	return reservationRepository.NewMongoReservationRepository(cfg)
}

// initNotifier publishes lifecycle events to Kafka when enabled and logs
// them otherwise.
func initNotifier(cfg *config.Config) (notifications.Notifier, *kafka.Producer) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, lifecycle events are logged only")
		return notifications.NewLogNotifier(cfg.Log), nil
	}

	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	cfg.Log.Info("Kafka configuration loaded", kafkaCfg.LogArgs()...)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, kafkaCfg.TopicReservations, kafkaCfg.TopicDLQ)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafkamiddleware.MetricsProducerMiddleware())

	return notifications.NewKafkaNotifier(producer, ServiceName), producer
}
