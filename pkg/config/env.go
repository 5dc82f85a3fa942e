package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvHoldWindow         = "HOLD_WINDOW"
	EnvSweepInterval      = "SWEEP_INTERVAL"
	EnvSweepBatchSize     = "SWEEP_BATCH_SIZE"
	EnvPropertyLockWait   = "PROPERTY_LOCK_TIMEOUT"
	EnvLockRetries        = "LOCK_RETRIES"
	EnvMaxAvailabilityDay = "MAX_AVAILABILITY_WINDOW_DAYS"

	EnvCatalogBaseURL = "CATALOG_BASE_URL"
	EnvPaymentBaseURL = "PAYMENT_BASE_URL"

	EnvKafkaBrokers  = "KAFKA_BROKERS"
	EnvKafkaTopic    = "KAFKA_TOPIC"
	EnvKafkaDLQTopic = "KAFKA_DLQ_TOPIC"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
