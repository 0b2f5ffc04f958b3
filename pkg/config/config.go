package config

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"aqevent/pkg/client"
	"aqevent/pkg/logger"
	"aqevent/pkg/sealer"
)

type Config struct {
	ServiceName string

	StoreBackend string
	StoreDir     string

	GitHubAPIBase     string
	GitHubOwner       string
	GitHubRepo        string
	GitHubBranch      string
	GitHubToken       string
	GitHubSealedToken string
	GitHubTimeout     time.Duration
	SealerKey         string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration
	MongoReadTimeout  time.Duration
	MongoWriteTimeout time.Duration

	Port       string
	AdminToken string

	CalendarFile   string
	HolidayICS     string
	Timezone       string
	ConflictBuffer time.Duration

	SubmissionDelay time.Duration
	BatchDelay      time.Duration
	UploadDelay     time.Duration

	IntegritySchedule string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	LogLevel string
	Log      *logger.Logger
	Mongo    *client.MongoClient
}

// Load reads the environment, validates it and exits on a bad configuration.
func Load(serviceName string) *Config {
	cfg := FromEnv(serviceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// FromEnv reads the environment without validating.
func FromEnv(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,

		StoreBackend: strings.ToLower(getEnvStr(EnvStoreBackend, DefaultStoreBackend)),
		StoreDir:     getEnvStr(EnvStoreDir, DefaultStoreDir),

		GitHubAPIBase:     getEnvStr(EnvGitHubAPIBase, DefaultGitHubAPIBase),
		GitHubOwner:       getEnvStr(EnvGitHubOwner, ""),
		GitHubRepo:        getEnvStr(EnvGitHubRepo, ""),
		GitHubBranch:      getEnvStr(EnvGitHubBranch, DefaultGitHubBranch),
		GitHubToken:       getEnvStr(EnvGitHubToken, ""),
		GitHubSealedToken: getEnvStr(EnvGitHubSealedToken, ""),
		GitHubTimeout:     getEnvDuration(EnvGitHubTimeout, DefaultGitHubTimeout),
		SealerKey:         getEnvStr(EnvSealerKey, ""),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),
		MongoReadTimeout:  getEnvDuration(EnvMongoReadTimeout, DefaultMongoReadTimeout),
		MongoWriteTimeout: getEnvDuration(EnvMongoWriteTimeout, DefaultMongoWriteTimeout),

		Port:       getEnvStr(EnvPort, DefaultPort),
		AdminToken: getEnvStr(EnvAdminToken, ""),

		CalendarFile:   getEnvStr(EnvCalendarFile, DefaultCalendarFile),
		HolidayICS:     getEnvStr(EnvHolidayICS, ""),
		Timezone:       getEnvStr(EnvTimezone, DefaultTimezone),
		ConflictBuffer: getEnvDuration(EnvConflictBuffer, DefaultConflictBuffer),

		SubmissionDelay: getEnvDuration(EnvSubmissionDelay, DefaultSubmissionDelay),
		BatchDelay:      getEnvDuration(EnvBatchDelay, DefaultBatchDelay),
		UploadDelay:     getEnvDuration(EnvUploadDelay, DefaultUploadDelay),

		IntegritySchedule: getEnvStr(EnvIntegritySchedule, DefaultIntegritySchedule),

		RedisAddr:     getEnvStr(EnvRedisAddr, ""),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		LogLevel: getEnvStr(EnvLogLevel, DefaultLogLevel),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
	}
}

// SetMongo connects the shared Mongo client; Load does not, so services on
// other backends never dial Mongo.
func (cfg *Config) SetMongo() {
	cfg.Mongo = client.NewMongoClient(cfg.Log, cfg.MongoURI, cfg.ServiceName, cfg.MongoConnTimeout)
}

// Location resolves Timezone; Validate has already checked it.
func (cfg *Config) Location() *time.Location {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ResolveGitHubToken prefers the plain token and otherwise unseals the sealed one.
func (cfg *Config) ResolveGitHubToken() (string, error) {
	if cfg.GitHubToken != "" {
		return cfg.GitHubToken, nil
	}
	if cfg.GitHubSealedToken == "" {
		return "", fmt.Errorf("no GitHub token configured")
	}
	s, err := sealer.New(cfg.SealerKey)
	if err != nil {
		return "", err
	}
	return s.Open(cfg.GitHubSealedToken)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	switch cfg.StoreBackend {
	case StoreGitHub:
		if cfg.GitHubOwner == "" || cfg.GitHubRepo == "" {
			errors = append(errors, "GitHubOwner and GitHubRepo are required for the github store")
		}
		if cfg.GitHubBranch == "" {
			errors = append(errors, "GitHubBranch cannot be empty")
		}
		if !strings.HasPrefix(cfg.GitHubAPIBase, "http://") && !strings.HasPrefix(cfg.GitHubAPIBase, "https://") {
			errors = append(errors, fmt.Sprintf("GitHubAPIBase must be an http(s) URL, got: %s", cfg.GitHubAPIBase))
		}
		if cfg.GitHubToken == "" && cfg.GitHubSealedToken == "" {
			errors = append(errors, "GitHubToken or GitHubSealedToken is required for the github store")
		} else if cfg.GitHubToken == "" {
			if _, err := cfg.ResolveGitHubToken(); err != nil {
				errors = append(errors, fmt.Sprintf("GitHubSealedToken could not be opened: %v", err))
			}
		}
		if cfg.GitHubTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("GitHubTimeout must be positive, got: %s", cfg.GitHubTimeout))
		}
	case StoreMongo:
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 || cfg.MongoReadTimeout <= 0 || cfg.MongoWriteTimeout <= 0 {
			errors = append(errors, "Mongo timeouts must be positive")
		}
	case StoreFile:
		if cfg.StoreDir == "" {
			errors = append(errors, "StoreDir cannot be empty for the file store")
		}
	case StoreMemory:
	default:
		errors = append(errors, fmt.Sprintf("StoreBackend must be one of [github, mongo, file, memory], got: %s", cfg.StoreBackend))
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("Timezone is not a known location, got: %s", cfg.Timezone))
	}
	if cfg.ConflictBuffer < 0 {
		errors = append(errors, fmt.Sprintf("ConflictBuffer cannot be negative, got: %s", cfg.ConflictBuffer))
	}
	if cfg.SubmissionDelay < 0 || cfg.BatchDelay < 0 || cfg.UploadDelay < 0 {
		errors = append(errors, "SubmissionDelay, BatchDelay and UploadDelay cannot be negative")
	}
	if cfg.IntegritySchedule != "" {
		if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).Parse(cfg.IntegritySchedule); err != nil {
			errors = append(errors, fmt.Sprintf("IntegritySchedule is not a valid cron expression: %v", err))
		}
	}
	if !logger.IsValidLevel(cfg.LogLevel) {
		errors = append(errors, fmt.Sprintf("LogLevel must be one of [debug, info, warn, error], got: %s", cfg.LogLevel))
	}
	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("RedisDB cannot be negative, got: %d", cfg.RedisDB))
	}

	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}
	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"store_backend", cfg.StoreBackend,
		"store_dir", cfg.StoreDir,
		"github_repo", cfg.GitHubOwner+"/"+cfg.GitHubRepo,
		"github_branch", cfg.GitHubBranch,
		"github_token_set", cfg.GitHubToken != "" || cfg.GitHubSealedToken != "",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"port", cfg.Port,
		"admin_token_set", cfg.AdminToken != "",
		"calendar_file", cfg.CalendarFile,
		"holiday_ics", cfg.HolidayICS,
		"timezone", cfg.Timezone,
		"conflict_buffer", cfg.ConflictBuffer,
		"submission_delay", cfg.SubmissionDelay,
		"batch_delay", cfg.BatchDelay,
		"upload_delay", cfg.UploadDelay,
		"integrity_schedule", cfg.IntegritySchedule,
		"redis_addr", cfg.RedisAddr,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown(ctx context.Context) {
	if err := cfg.Mongo.Disconnect(ctx); err != nil {
		cfg.Log.Error("Failed to disconnect from MongoDB", "error", err)
	}
}
