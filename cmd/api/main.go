package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/straye-as/agency-pipeline/internal/config"
	"github.com/straye-as/agency-pipeline/internal/database"
	"github.com/straye-as/agency-pipeline/internal/http/handler"
	"github.com/straye-as/agency-pipeline/internal/http/middleware"
	"github.com/straye-as/agency-pipeline/internal/http/router"
	"github.com/straye-as/agency-pipeline/internal/jobs"
	"github.com/straye-as/agency-pipeline/internal/logger"
	"github.com/straye-as/agency-pipeline/internal/repository"
	"github.com/straye-as/agency-pipeline/internal/service"
	"go.uber.org/zap"
)

// @title Agency Pipeline API
// @version 1.0
// @description Sales pipeline, profit allocation and production tracking for a creative agency
// @BasePath /api/v1

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Postgres schema is owned by cmd/migrate; sqlite is migrated in place
	if cfg.Database.Driver == "sqlite" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
		log.Info("SQLite schema migrated", zap.String("path", cfg.Database.SQLitePath))
	}

	// Initialize repositories
	clientRepo := repository.NewClientRepository(db)
	userRepo := repository.NewUserRepository(db)
	dealRepo := repository.NewDealRepository(db)
	dealStageHistoryRepo := repository.NewDealStageHistoryRepository(db)
	profitShareRepo := repository.NewProfitShareRepository(db)
	jobRepo := repository.NewJobRepository(db)
	assignmentRepo := repository.NewJobAssignmentRepository(db)
	deliverableRepo := repository.NewDeliverableRepository(db)

	// Initialize services
	clientService := service.NewClientService(clientRepo, log)
	userService := service.NewUserService(userRepo, log)
	dealService := service.NewDealService(dealRepo, dealStageHistoryRepo, clientRepo, jobRepo, log, db)
	profitService := service.NewProfitService(profitShareRepo, dealRepo, userRepo, log)
	productionService := service.NewProductionService(jobRepo, deliverableRepo, assignmentRepo, clientRepo, dealRepo, userRepo, log, db)
	calendarService := service.NewCalendarService(deliverableRepo, jobRepo, cfg.Calendar.WeekStartDay(), log)
	dashboardService := service.NewDashboardService(dealRepo, jobRepo, deliverableRepo, log)

	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(cfg, log, db, rateLimiter, router.Handlers{
		Client:      handler.NewClientHandler(clientService, productionService, log),
		User:        handler.NewUserHandler(userService, log),
		Deal:        handler.NewDealHandler(dealService, log),
		Profit:      handler.NewProfitHandler(profitService, log),
		Job:         handler.NewJobHandler(productionService, log),
		Deliverable: handler.NewDeliverableHandler(productionService, log),
		Calendar:    handler.NewCalendarHandler(calendarService, log),
		Dashboard:   handler.NewDashboardHandler(dashboardService, log),
	})

	// Background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.ReminderEnabled {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterDeliverableReminderJob(
			scheduler,
			productionService,
			log,
			cfg.Jobs.ReminderCron,
			cfg.Jobs.ReminderLookaheadDays,
			cfg.Jobs.ReminderTimeoutDuration(),
		); err != nil {
			log.Error("Failed to register deliverable reminder job", zap.Error(err))
		} else {
			scheduler.Start()
			next, _ := scheduler.NextRun(jobs.DeliverableReminderJobName)
			log.Info("Scheduler started with deliverable reminders",
				zap.String("cron_expr", cfg.Jobs.ReminderCron),
				zap.Int("lookahead_days", cfg.Jobs.ReminderLookaheadDays),
				zap.Time("next_run", next),
			)
		}
	} else {
		log.Info("Deliverable reminders disabled")
	}

	var h http.Handler = rt.Setup()
	if timeout := cfg.Server.RequestTimeoutDuration(); timeout > 0 {
		h = http.TimeoutHandler(h, timeout, "request timed out")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      h,
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
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
