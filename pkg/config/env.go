package config

const (
	EnvStoreBackend = "STORE_BACKEND"
	EnvStoreDir     = "STORE_DIR"

	EnvGitHubAPIBase     = "GITHUB_API_BASE"
	EnvGitHubOwner       = "GITHUB_OWNER"
	EnvGitHubRepo        = "GITHUB_REPO"
	EnvGitHubBranch      = "GITHUB_BRANCH"
	EnvGitHubToken       = "GITHUB_TOKEN"
	EnvGitHubSealedToken = "GITHUB_SEALED_TOKEN"
	EnvGitHubTimeout     = "GITHUB_TIMEOUT"
	EnvSealerKey         = "SEALER_KEY"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"
	EnvMongoReadTimeout  = "MONGO_READ_TIMEOUT"
	EnvMongoWriteTimeout = "MONGO_WRITE_TIMEOUT"

	EnvPort       = "PORT"
	EnvLogLevel   = "LOG_LEVEL"
	EnvAdminToken = "ADMIN_TOKEN"

	EnvCalendarFile   = "CALENDAR_FILE"
	EnvHolidayICS     = "HOLIDAY_ICS"
	EnvTimezone       = "TIMEZONE"
	EnvConflictBuffer = "CONFLICT_BUFFER"

	EnvSubmissionDelay = "SUBMISSION_DELAY"
	EnvBatchDelay      = "BATCH_DELAY"
	EnvUploadDelay     = "UPLOAD_DELAY"

	EnvIntegritySchedule = "INTEGRITY_SCHEDULE"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

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
