package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "stayd"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultHoldWindow             = 10 * time.Minute
	DefaultSweepInterval          = 30 * time.Second
	DefaultSweepBatchSize         = 100
	DefaultPropertyLockTimeout    = 2 * time.Second
	DefaultLockRetries            = 3
	DefaultMaxAvailabilityWindow  = 365

	DefaultCatalogBaseURL = "http://localhost:8081"
	DefaultPaymentBaseURL = "http://localhost:8082"

	DefaultKafkaTopic    = "booking-events"
	DefaultKafkaDLQTopic = "booking-events-dlq"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)
