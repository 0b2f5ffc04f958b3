package main

import (
	"context"
	_ "time/tzdata"

	"aqevent/internal/calendar"
	"aqevent/internal/conflicts"
	"aqevent/internal/events/handler"
	"aqevent/internal/events/repository"
	"aqevent/internal/events/service"
	"aqevent/internal/events/validator"
	"aqevent/internal/integrity"
	"aqevent/internal/submission"
	"aqevent/pkg/app"
	"aqevent/pkg/client"
	"aqevent/pkg/config"
	"aqevent/pkg/kafka"
	kafka_config "aqevent/pkg/kafka/config"
	kafka_middleware "aqevent/pkg/kafka/middleware"
	"aqevent/pkg/store"
)

const ServiceName = "aqevent"

func main() {
	cfg := config.Load(ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventStore := initStore(cfg)
	detector := initDetector(cfg, eventStore)

	notifier, producer, publishMetrics := initNotifier(cfg)
	if producer != nil {
		defer func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
			if publishMetrics != nil {
				cfg.Log.Info("Kafka producer stopped", "metrics", publishMetrics.Snapshot())
			}
		}()
	}

	repo := repository.NewEventRepository(eventStore, cfg.Log.Component("repository"))
	eventService := service.NewEventService(repo, validator.NewEventValidator(cfg.Log.Component("validator")), detector, notifier, cfg)
	orchestrator := submission.NewOrchestrator(detector, eventService, cfg)
	integrityLog := cfg.Log.Component("integrity")
	checker := integrity.NewChecker(repo, cfg.AdminToken != "", integrityLog)
	cfg.Log.Info("Event services initialized")

	job := integrity.NewJob(checker, cfg.IntegritySchedule, integrityLog)
	if err := job.Start(); err != nil {
		cfg.Log.Fatal("Failed to schedule integrity check", "schedule", cfg.IntegritySchedule, "error", err)
	}

	drafts := handler.NewDraftHandler(ctx, eventService, cfg.Log.Component("drafts"))

	application := app.NewApplication(cfg)
	application.SetApp(
		handler.NewHealthHandler(repo, cfg.Log),
		handler.NewEventHandler(eventService, orchestrator, cfg),
		handler.NewAdminHandler(eventService, checker, cfg.AdminToken, cfg.Log),
		drafts,
	)
	application.OnShutdown(drafts, job)
	application.Run()
}

func initStore(cfg *config.Config) store.EventStore {
	switch cfg.StoreBackend {
	case config.StoreGitHub:
		token, err := cfg.ResolveGitHubToken()
		if err != nil {
			cfg.Log.Fatal("Failed to resolve GitHub token", "error", err)
		}
		gh := client.NewGitHubClient(client.GitHubConfig{
			APIBase: cfg.GitHubAPIBase,
			Owner:   cfg.GitHubOwner,
			Repo:    cfg.GitHubRepo,
			Branch:  cfg.GitHubBranch,
			Token:   token,
			Timeout: cfg.GitHubTimeout,
		})
		cfg.Log.Info("Using GitHub event store", "owner", cfg.GitHubOwner, "repo", cfg.GitHubRepo, "branch", cfg.GitHubBranch)
		return store.NewGitHubStore(gh, cfg.Log.Component("store"))

	case config.StoreMongo:
		cfg.SetMongo()
		cfg.Log.Info("Using Mongo event store", "database", cfg.MongoDatabaseName)
		return store.NewMongoStore(cfg.Mongo.Client, cfg.MongoDatabaseName, cfg.MongoReadTimeout, cfg.MongoWriteTimeout)

	case config.StoreMemory:
		cfg.Log.Warn("Using in-memory event store; data is lost on restart")
		return store.NewMemoryStore()

	default:
		fs, err := store.NewFileSystemStore(cfg.StoreDir)
		if err != nil {
			cfg.Log.Fatal("Failed to open file event store", "dir", cfg.StoreDir, "error", err)
		}
		cfg.Log.Info("Using file event store", "dir", cfg.StoreDir)
		return fs
	}
}

// initDetector builds the conflict engine from the calendar file, the
// optional holiday feed and the configured buffer.
func initDetector(cfg *config.Config, s store.Store) *conflicts.Detector {
	opts := conflicts.DefaultOptions()
	opts.Location = cfg.Location()
	opts.Buffer = cfg.ConflictBuffer

	if cfg.CalendarFile != "" {
		file, err := calendar.Load(cfg.CalendarFile)
		if err != nil {
			cfg.Log.Fatal("Failed to load calendar config", "path", cfg.CalendarFile, "error", err)
		}
		cal, err := file.Calendar()
		if err != nil {
			cfg.Log.Fatal("Invalid calendar config", "path", cfg.CalendarFile, "error", err)
		}
		opts.Calendar = cal
		if len(file.Venues) > 0 {
			opts.Venues = file.Venues
		}
		if cfg.HolidayICS == "" {
			cfg.HolidayICS = file.HolidayICS
		}
	}

	if cfg.HolidayICS != "" {
		holidays, breaks, err := calendar.ImportICSFile(cfg.HolidayICS)
		if err != nil {
			cfg.Log.Fatal("Failed to import holiday calendar", "path", cfg.HolidayICS, "error", err)
		}
		opts.Calendar.Merge(holidays, breaks)
		cfg.Log.Info("Imported holiday calendar", "path", cfg.HolidayICS, "holidays", len(holidays), "breaks", len(breaks))
	}

	return conflicts.NewDetector(store.NewCorpus(s), opts, cfg.Log.Component("conflicts"))
}

// initNotifier publishes lifecycle notifications to Kafka when brokers are
// configured. Without brokers transitions are not announced.
func initNotifier(cfg *config.Config) (service.Notifier, *kafka.Producer, *kafka_middleware.Metrics) {
	kcfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	if !kcfg.Enabled() {
		cfg.Log.Info("Kafka not configured, lifecycle notifications disabled")
		return service.NopNotifier{}, nil, nil
	}

	producer, err := kafka.NewProducer(kcfg, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	var metrics *kafka_middleware.Metrics
	if kcfg.EnableMiddleware {
		metrics = kafka_middleware.NewMetrics()
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware(metrics))
	}
	cfg.Log.Info("Lifecycle notifications enabled", "topic", producer.Topic(), "brokers", kcfg.Brokers)
	return service.NewKafkaNotifier(producer, cfg.Log.Component("notifier")), producer, metrics
}
