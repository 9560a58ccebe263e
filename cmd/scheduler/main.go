package main

import (
	"context"

	"carebook/internal/availability"
	bookingshandler "carebook/internal/bookings/handler"
	bookingsrepo "carebook/internal/bookings/repository"
	bookingsservice "carebook/internal/bookings/service"
	bookingsvalidator "carebook/internal/bookings/validator"
	"carebook/internal/calendar"
	eventshandler "carebook/internal/scheduleevents/handler"
	eventsrepo "carebook/internal/scheduleevents/repository"
	eventsservice "carebook/internal/scheduleevents/service"
	eventsvalidator "carebook/internal/scheduleevents/validator"
	workershandler "carebook/internal/workers/handler"
	workersrepo "carebook/internal/workers/repository"
	workersservice "carebook/internal/workers/service"
	whhandler "carebook/internal/workinghours/handler"
	whrepo "carebook/internal/workinghours/repository"
	whservice "carebook/internal/workinghours/service"
	whvalidator "carebook/internal/workinghours/validator"
	"carebook/pkg/app"
	"carebook/pkg/cache"
	"carebook/pkg/config"
	"carebook/pkg/kafka"
	kafka_config "carebook/pkg/kafka/config"
	kafka_middleware "carebook/pkg/kafka/middleware"
)

const ServiceName = "scheduler"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Scheduler service")

	availabilityCache := cache.NewAvailabilityCache(cfg.Client.Redis, cfg.AvailabilityCacheTTL, cfg.Log)

	bookingsProducer, eventsProducer := initProducers(cfg)
	if bookingsProducer != nil {
		defer bookingsProducer.Close()
	}
	if eventsProducer != nil {
		defer eventsProducer.Close()
	}

	workingHoursRepo := whrepo.NewMongoWorkingHoursRepository(cfg)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	bookingLockRepo := bookingsrepo.NewBookingLockRepository(cfg)
	eventRepo := eventsrepo.NewMongoScheduleEventRepository(cfg)
	workerRepo := workersrepo.NewMongoWorkerRepository(cfg)

	ensureIndexes(cfg, workingHoursRepo, bookingRepo, bookingLockRepo, eventRepo)

	workingHoursService := whservice.NewWorkingHoursService(
		workingHoursRepo,
		whvalidator.NewWorkingHoursValidator(cfg.Log),
		availabilityCache,
		cfg,
	)
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		bookingLockRepo,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		availabilityCache,
		bookingsProducer,
		cfg,
	)
	eventService := eventsservice.NewScheduleEventService(
		eventRepo,
		eventsvalidator.NewScheduleEventValidator(cfg.Log),
		availabilityCache,
		eventsProducer,
		cfg,
	)
	workerService := workersservice.NewWorkerService(workerRepo, cfg)

	evaluator := availability.NewEvaluator(
		workingHoursService,
		bookingService,
		eventService,
		availabilityCache,
		cfg,
	)
	calendarService := calendar.NewService(
		bookingService,
		eventService,
		workingHoursService,
		cfg,
	)

	cfg.Log.Info("Scheduler services initialized", "database", cfg.MongoDatabaseName)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		whhandler.NewWorkingHoursHandler(workingHoursService, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		eventshandler.NewScheduleEventHandler(eventService, cfg.Log),
		workershandler.NewWorkerHandler(workerService, cfg.Log),
		availability.NewHandler(evaluator, cfg.Log),
		calendar.NewHandler(calendarService, cfg.Log),
	)
	serverApp.Run()
}

func initProducers(cfg *config.Config) (*kafka.Producer, *kafka.Producer) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka publishing disabled")
		return nil, nil
	}

	kafkaCfg := kafka_config.Load()

	bookingsProducer, err := kafka.NewProducer(kafkaCfg, cfg.BookingsTopic, cfg.BookingsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create bookings producer", "error", err)
	}
	eventsProducer, err := kafka.NewProducer(kafkaCfg, cfg.ScheduleEventsTopic, cfg.ScheduleEventsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create schedule events producer", "error", err)
	}

	if kafkaCfg.EnableMiddleware {
		for _, producer := range []*kafka.Producer{bookingsProducer, eventsProducer} {
			producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
			producer.Use(kafka_middleware.MetricsProducerMiddleware())
		}
	}

	cfg.Log.Info("Kafka producers initialized",
		"brokers", kafkaCfg.Brokers,
		"bookings_topic", cfg.BookingsTopic,
		"schedule_events_topic", cfg.ScheduleEventsTopic,
	)
	return bookingsProducer, eventsProducer
}

type indexEnsurer interface {
	EnsureIndexes(ctx context.Context) error
}

func ensureIndexes(cfg *config.Config, ensurers ...indexEnsurer) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	for _, ensurer := range ensurers {
		if err := ensurer.EnsureIndexes(ctx); err != nil {
			cfg.Log.Fatal("Failed to create indexes", "error", err)
		}
	}
}
