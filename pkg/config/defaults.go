package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "probook"
	DefaultMongoConnTimeout  = 10 * time.Second

	StoreMongo              = "mongo"
	StorePostgres           = "postgres"
	DefaultReservationStore = StoreMongo
	DefaultPostgresMaxConns = 10

	DefaultPort = "8080"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSlotStep           = 30 * time.Minute
	DefaultTimeZone           = "Asia/Jerusalem"
	DefaultCancellationNotice = time.Duration(0)

	DefaultPaginationLimit = 100
)
