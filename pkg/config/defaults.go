package config

import "time"

const (
	StoreGitHub = "github"
	StoreMongo  = "mongo"
	StoreFile   = "file"
	StoreMemory = "memory"
)

const (
	DefaultStoreBackend = StoreFile
	DefaultStoreDir     = "./var/aqevent"

	DefaultGitHubAPIBase = "https://api.github.com"
	DefaultGitHubBranch  = "main"
	DefaultGitHubTimeout = 30 * time.Second

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "aqevent"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultMongoReadTimeout  = 5 * time.Second
	DefaultMongoWriteTimeout = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultCalendarFile   = "./conf/calendar.yaml"
	DefaultTimezone       = "America/New_York"
	DefaultConflictBuffer = 15 * time.Minute

	DefaultSubmissionDelay = 500 * time.Millisecond
	DefaultBatchDelay      = 500 * time.Millisecond
	DefaultUploadDelay     = 500 * time.Millisecond

	// Every night at 02:30; seconds field first.
	DefaultIntegritySchedule = "0 30 2 * * *"

	DefaultRedisDB = 0

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 60 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	// Uploads travel base64-encoded inside the JSON body.
	DefaultMaxRequestSize = 200 * 1024 * 1024

	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 90 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
