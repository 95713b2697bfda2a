package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/straye-as/crm-core/docs"
	"github.com/straye-as/crm-core/internal/auth"
	"github.com/straye-as/crm-core/internal/cache"
	"github.com/straye-as/crm-core/internal/config"
	"github.com/straye-as/crm-core/internal/database"
	"github.com/straye-as/crm-core/internal/events"
	"github.com/straye-as/crm-core/internal/http/handler"
	"github.com/straye-as/crm-core/internal/http/middleware"
	"github.com/straye-as/crm-core/internal/http/router"
	"github.com/straye-as/crm-core/internal/jobs"
	"github.com/straye-as/crm-core/internal/logger"
	"github.com/straye-as/crm-core/internal/notify"
	"github.com/straye-as/crm-core/internal/repository"
	"github.com/straye-as/crm-core/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// @title Straye CRM API
// @version 1.0
// @description Pipelines, leads, project budgets and budget alerts

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if basicCfg.App.Environment == "development" {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// In development secrets come from the environment, in staging/production from Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	txRunner := database.NewTxRunner(db, cfg.Database.MaxTxRetries)

	var rdb *goredis.Client
	if cfg.Cache.Mode == "redis" || cfg.Events.Mode == "redis" {
		rdb, err = cache.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	responseCache := newCache(cfg, rdb)
	log.Info("Cache initialized", zap.String("mode", cfg.Cache.Mode))

	publisher := newPublisher(cfg, rdb, logger.WithComponent(log, "events"))
	log.Info("Event publisher initialized", zap.String("mode", cfg.Events.Mode))

	notifier, err := newNotifier(cfg, logger.WithComponent(log, "notify"))
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}

	// Initialize repositories
	clientRepo := repository.NewClientRepository(db)
	pipelineRepo := repository.NewPipelineRepository(db)
	stageRepo := repository.NewStageRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	alertRepo := repository.NewBudgetAlertRepository(db)

	// Initialize services
	clientService := service.NewClientService(clientRepo, log)
	pipelineService := service.NewPipelineService(pipelineRepo, txRunner, log)
	stageService := service.NewStageService(pipelineRepo, stageRepo, leadRepo, txRunner, log)
	leadService := service.NewLeadService(leadRepo, stageRepo, pipelineRepo, clientRepo, activityRepo, publisher, txRunner, log)
	budgetService := service.NewBudgetService(projectRepo, expenseRepo, alertRepo, clientRepo, txRunner, log)
	expenseService := service.NewExpenseService(expenseRepo, projectRepo, budgetService, txRunner, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	pipelineCache := handler.NewPipelineCache(responseCache, cfg.Cache.TTL(), log)
	handlers := router.Handlers{
		Health: handler.NewHealthHandler(func(ctx context.Context) error {
			return database.HealthCheck(ctx, db)
		}, responseCache, log),
		Pipeline: handler.NewPipelineHandler(pipelineService, stageService, pipelineCache, log),
		Stage:    handler.NewStageHandler(stageService, pipelineCache, log),
		Lead:     handler.NewLeadHandler(leadService, log),
		Client:   handler.NewClientHandler(clientService, log),
		Project:  handler.NewProjectHandler(budgetService, log),
		Expense:  handler.NewExpenseHandler(expenseService, log),
	}

	rt := router.NewRouter(cfg, log, authMiddleware, rateLimiter, handlers)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.AlertDispatchEnabled {
		jobsLogger := logger.WithComponent(log, "jobs")
		scheduler = jobs.NewScheduler(jobsLogger)
		if err := jobs.RegisterAlertDispatchJob(
			scheduler,
			budgetService,
			notifier,
			jobsLogger,
			cfg.Jobs.AlertDispatchCron,
			cfg.Jobs.AlertDispatchBatchSize,
			cfg.Jobs.AlertDispatchTimeoutDuration(),
		); err != nil {
			log.Error("Failed to register alert dispatch job", zap.Error(err))
			scheduler = nil
		} else {
			scheduler.Start()
			log.Info("Scheduler started with alert dispatch job",
				zap.String("cron_expr", cfg.Jobs.AlertDispatchCron),
				zap.Int("batch_size", cfg.Jobs.AlertDispatchBatchSize),
			)
		}
	} else {
		log.Info("Alert dispatch disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			stopCtx := scheduler.Stop()
			<-stopCtx.Done()
			log.Info("Scheduler stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		closeResources(log, db, publisher, rdb)
		log.Info("Server stopped gracefully")
	}

	return nil
}

func newCache(cfg *config.Config, rdb *goredis.Client) cache.Cache {
	switch cfg.Cache.Mode {
	case "redis":
		return cache.NewRedisCache(rdb, cfg.Cache.KeyPrefix)
	case "memory":
		return cache.NewMemoryCache()
	default:
		return cache.Nop{}
	}
}

func newPublisher(cfg *config.Config, rdb *goredis.Client, log *zap.Logger) events.Publisher {
	if cfg.Events.Mode == "redis" {
		return events.NewRedisPublisher(rdb, cfg.Events.Channel, log)
	}
	return events.NopPublisher{}
}

func newNotifier(cfg *config.Config, log *zap.Logger) (notify.Notifier, error) {
	if !cfg.Telegram.Enabled {
		log.Info("Telegram disabled, budget alerts are written to the log")
		return notify.NewLogNotifier(log), nil
	}
	n, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, log)
	if err != nil {
		return nil, err
	}
	log.Info("Telegram notifier initialized", zap.Int64("chat_id", cfg.Telegram.ChatID))
	return n, nil
}

func closeResources(log *zap.Logger, db *gorm.DB, publisher events.Publisher, rdb *goredis.Client) {
	if err := publisher.Close(); err != nil {
		log.Warn("Error closing event publisher", zap.Error(err))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Warn("Error closing redis connection", zap.Error(err))
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Warn("Error closing database connection", zap.Error(err))
		}
	}
}
