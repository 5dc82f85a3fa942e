package main

import (
	"context"

	"stayd/internal/reservations/events"
	"stayd/internal/reservations/expirer"
	"stayd/internal/reservations/handler"
	"stayd/internal/reservations/manager"
	"stayd/internal/reservations/repository"
	"stayd/internal/reservations/service"
	"stayd/internal/reservations/store"
	"stayd/internal/reservations/validator"
	"stayd/pkg/app"
	"stayd/pkg/client"
	"stayd/pkg/config"
	"stayd/pkg/kafka"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Reservations service")

	reservationService, holdExpirer := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewReservationHandler(reservationService, cfg.Log), holdExpirer)
	serverApp.Run()
}

func initServices(cfg *config.Config) (*service.ReservationService, *expirer.Expirer) {
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	recordRepo := repository.NewMongoRecordRepository(cfg)

	intervalManager := manager.NewManager(cfg, store.NewIntervalStore(), recordRepo)
	if err := intervalManager.WarmUp(context.Background()); err != nil {
		cfg.Log.Fatal("Failed to load active reservations", "error", err)
	}

	reservationService := service.NewReservationService(
		cfg,
		bookingRepo,
		intervalManager,
		validator.NewReservationValidator(cfg.Log),
		client.NewCatalogClient(cfg.CatalogBaseURL),
		client.NewPaymentClient(cfg.PaymentBaseURL),
		newEventPublisher(cfg),
	)

	holdExpirer := expirer.New(cfg, reservationService, intervalManager)

	cfg.Log.Info("Reservations service initialized", "database", cfg.MongoDatabaseName)
	return reservationService, holdExpirer
}

// newEventPublisher builds the Kafka publisher, or a no-op one when no
// brokers are configured (local development).
func newEventPublisher(cfg *config.Config) *events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Warn("No Kafka brokers configured, booking events disabled")
		return events.NewPublisher(nil, ServiceName, cfg.Log)
	}

	producer, err := kafka.NewProducer(kafka.Config{Brokers: cfg.KafkaBrokers}, cfg.KafkaTopic, cfg.KafkaDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	return events.NewPublisher(producer, ServiceName, cfg.Log)
}
