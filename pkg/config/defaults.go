package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "carebook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr       = "localhost:6379"
	DefaultRedisDB         = 0
	DefaultAvailabilityTTL = 5 * time.Minute
	DefaultEventConflicts  = true
	DefaultTimeZone        = "UTC"

	DefaultKafkaEnabled           = false
	DefaultBookingsTopic          = "carebook.bookings"
	DefaultScheduleEventsTopic    = "carebook.schedule-events"
	DefaultBookingsDLQTopic       = "carebook.bookings.dlq"
	DefaultScheduleEventsDLQTopic = "carebook.schedule-events.dlq"

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Soft bounds enforced by the appointment form's time inputs. The
	// availability evaluator still classifies windows outside this range.
	DefaultDayStart = "09:00"
	DefaultDayEnd   = "21:00"

	DefaultPaginationLimit = 100
)
