package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/punchaudit/punchaudit-backend/internal/audit/calendar"
	"github.com/punchaudit/punchaudit-backend/internal/audit/events"
	"github.com/punchaudit/punchaudit-backend/internal/audit/handler"
	"github.com/punchaudit/punchaudit-backend/internal/audit/report"
	"github.com/punchaudit/punchaudit-backend/internal/audit/repository"
	"github.com/punchaudit/punchaudit-backend/internal/audit/service"
	"github.com/punchaudit/punchaudit-backend/pkg/auth"
	"github.com/punchaudit/punchaudit-backend/pkg/cache"
	"github.com/punchaudit/punchaudit-backend/pkg/config"
	"github.com/punchaudit/punchaudit-backend/pkg/database"
	"github.com/punchaudit/punchaudit-backend/pkg/logger"
	"github.com/punchaudit/punchaudit-backend/pkg/messaging"
)

const serviceName = "audit-service"

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(serviceName, cfg.Server.Environment).SetLevel(cfg.Server.LogLevel)
	log.Info().Msg("starting Audit Service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthChecks := map[string]handler.HealthCheck{}

	// Run history is optional
	var runs service.RunStore
	if cfg.Database.Enabled {
		db, err := database.New(&cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		runRepo := repository.NewRunRepository(db)
		if err := runRepo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to create run history schema")
		}
		runs = runRepo
		healthChecks["database"] = db.Health
	}

	// Completion events are optional
	var publisher service.EventPublisher
	if cfg.RabbitMQ.Enabled {
		rmq, err := messaging.New(ctx, &cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		eventPublisher, err := events.NewRabbitMQPublisher(rmq, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
		publisher = eventPublisher
		healthChecks["rabbitmq"] = func(context.Context) map[string]string { return rmq.Health() }
	}

	var redisClient *cache.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.New(&cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer redisClient.Close()
		healthChecks["redis"] = redisClient.Health
	}

	// Report storage
	var reports report.Store
	switch cfg.Reports.Backend {
	case config.ReportBackendRedis:
		reports = report.NewRedisStore(redisClient.Client, cfg.Reports.TTL)
	default:
		fileStore, err := report.NewFileStore(cfg.Reports.Dir, cfg.Reports.TTL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to prepare report directory")
		}
		reports = fileStore
		go service.RunPurger(ctx, fileStore, cfg.Reports.PurgeInterval, log)
	}
	log.Info().Str("backend", cfg.Reports.Backend).Dur("ttl", cfg.Reports.TTL).Msg("report storage ready")

	// Holiday calendar
	cal, err := calendar.LoadFile(cfg.Policy.HolidayCalendar)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Policy.HolidayCalendar).Msg("failed to load holiday calendar")
	}

	// Initialize service
	policy := service.PolicyFromConfig(cfg.Policy)
	analysisService := service.NewAnalysisService(
		policy,
		cal,
		report.NewRenderer(policy),
		reports,
		runs,
		publisher,
		log,
	)

	// Initialize handlers
	payrollHandler := handler.NewPayrollHandler(analysisService, cfg.Server.MaxUploadBytes, log)

	routerCfg := handler.RouterConfig{
		ServiceName:    serviceName,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		HealthChecks:   healthChecks,
	}
	if cfg.Auth.Enabled() {
		routerCfg.Auth = auth.NewManager(&cfg.Auth).Middleware(log)
	} else {
		log.Warn().Msg("auth secret not set, API routes are unauthenticated")
	}

	// Create server
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler.NewRouter(payrollHandler, routerCfg, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Stop the purger
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
