package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr         = "REDIS_ADDR"
	EnvRedisPassword     = "REDIS_PASSWORD"
	EnvRedisDB           = "REDIS_DB"
	EnvAvailabilityTTL   = "AVAILABILITY_CACHE_TTL"
	EnvEventConflicts    = "EVENT_CONFLICTS"
	EnvSchedulerTimeZone = "SCHEDULER_TIMEZONE"

	EnvKafkaEnabled           = "KAFKA_ENABLED"
	EnvBookingsTopic          = "KAFKA_BOOKINGS_TOPIC"
	EnvScheduleEventsTopic    = "KAFKA_SCHEDULE_EVENTS_TOPIC"
	EnvBookingsDLQTopic       = "KAFKA_BOOKINGS_DLQ_TOPIC"
	EnvScheduleEventsDLQTopic = "KAFKA_SCHEDULE_EVENTS_DLQ_TOPIC"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDayStart = "BOOKABLE_DAY_START"
	EnvDayEnd   = "BOOKABLE_DAY_END"
)
