package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"arthastra/internal/agent"
	"arthastra/internal/api"
	"arthastra/internal/batch"
	"arthastra/internal/config"
	"arthastra/internal/domain/alert"
	"arthastra/internal/domain/profile"
	"arthastra/internal/event"
	"arthastra/internal/infrastructure/activity"
	"arthastra/internal/infrastructure/database/postgres"
	"arthastra/internal/infrastructure/llm"
	"arthastra/internal/infrastructure/logging"
	"arthastra/internal/infrastructure/messaging"
)

func main() {
	cfg, logger := initializeApp()

	dbPool := initializeDatabase(cfg, logger)
	defer closeDatabase(dbPool, logger)

	activityStore := initializeActivityStore(cfg, logger)
	defer activityStore.Close()

	publisher, amqpConn := initializePublisher(cfg, logger)
	if amqpConn != nil {
		defer amqpConn.Close()
	}

	completer := initializeCompleter(cfg, logger)

	profileService, alertService := initializeServices(dbPool, activityStore, publisher, cfg, logger)
	agentService := agent.NewService(completer, logger)

	scoreJob := batch.NewScoreChangeJob(alertService, logger)
	dropOffJob := batch.NewDropOffJob(alertService, logger)
	cronScheduler := startBatchJobs(cfg, logger, scoreJob, dropOffJob)

	router := api.SetupRouter(api.Dependencies{
		Profiles: profileService,
		Agents:   agentService,
		Alerts:   alertService,
		Activity: activityStore,
	}, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Application starting...", "config_source", viper.ConfigFileUsed())

	return cfg, logger
}

func initializeDatabase(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	logger.Info("Initializing database connection pool...")
	dbPool, err := postgres.NewConnectionPool(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	return dbPool
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

func initializeActivityStore(cfg *config.Config, logger *slog.Logger) *activity.Store {
	logger.Info("Initializing activity store...", "address", cfg.Redis.Address)
	store := activity.NewStore(cfg.Redis)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		logger.Warn("Activity store unreachable at startup, last-seen tracking degraded", "error", err)
	}
	return store
}

// initializePublisher connects to RabbitMQ when enabled. A broker outage at
// startup degrades to no event publishing rather than failing the boot.
func initializePublisher(cfg *config.Config, logger *slog.Logger) (event.EventPublisher, *amqp.Connection) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("Event publishing disabled by configuration.")
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Warn("Failed to connect to RabbitMQ, alert events will not be published", "error", err)
		return nil, nil
	}

	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.RabbitMQ.ExchangeName, logger)
	if err != nil {
		logger.Warn("Failed to set up event publisher", "error", err)
		conn.Close()
		return nil, nil
	}
	return publisher, conn
}

func initializeCompleter(cfg *config.Config, logger *slog.Logger) llm.Completer {
	if len(cfg.GenAI.Keys) == 0 {
		logger.Warn("No GenAI keys configured; chat runs on keyword routing only.")
		return nil
	}

	client, err := llm.NewClient(cfg.GenAI, logger)
	if err != nil {
		logger.Error("Failed to initialize completion client", "error", err)
		os.Exit(1)
	}
	return client
}

func initializeServices(dbPool *pgxpool.Pool, activityStore *activity.Store, publisher event.EventPublisher, cfg *config.Config, logger *slog.Logger) (profile.Service, alert.Service) {
	logger.Info("Initializing application components...")

	profileRepo := postgres.NewProfileRepository(dbPool, logger)
	alertRepo := postgres.NewAlertRepository(dbPool, logger)

	var profilePublisher profile.Publisher
	if publisher != nil {
		profilePublisher = publisher
	}
	profileService := profile.NewService(profileRepo, profilePublisher, logger)

	opts := alert.ServiceOptions{
		ScoreDeltaThreshold: cfg.Alerts.ScoreDeltaThreshold,
		DropOffAfterDays:    cfg.Alerts.DropOffAfterDays,
		Activity:            activityStore,
	}
	if publisher != nil {
		opts.Publisher = publisher
	}
	if cfg.Messaging.Enabled {
		opts.Notifier = messaging.NewSender(cfg.Messaging, logger)
	}
	alertService := alert.NewService(alertRepo, profileRepo, logger, opts)

	return profileService, alertService
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, scoreJob *batch.ScoreChangeJob, dropOffJob *batch.DropOffJob) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	jobTimeout := cfg.Alerts.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = 10 * time.Minute
	}

	schedule := func(name, spec, fallback string, run func(context.Context) error) {
		if spec == "" {
			spec = fallback
			logger.Warn("Schedule not configured, using default", "job", name, "schedule", spec)
		}

		jobID, err := c.AddJob(spec, cron.FuncJob(func() {
			jobLogger := logger.With("job_name", name)
			jobLogger.Info("Cron triggered: running job.")

			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()

			if runErr := run(ctx); runErr != nil {
				jobLogger.Error("Job finished with error", slog.Any("error", runErr))
			} else {
				jobLogger.Info("Job finished successfully.")
			}
		}))
		if err != nil {
			logger.Error("Failed to schedule job", "job", name, "schedule", spec, slog.Any("error", err))
			return
		}
		logger.Info("Scheduled job", "job", name, "schedule", spec, "job_id", jobID)
	}

	schedule("ScoreChangeDetection", cfg.Alerts.ScoreChangeSchedule, "0 8 * * *", scoreJob.Run)
	schedule("DropOffDetection", cfg.Alerts.DropOffSchedule, "0 9 * * *", dropOffJob.Run)

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	var triggerReason string
	select {
	case sig := <-shutdownChan:
		triggerReason = "signal: " + sig.String()
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		triggerReason = "server exited"
		logger.Info("Server goroutine finished before signal.", "error", err)
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server graceful shutdown failed", "error", err)
		} else {
			logger.Info("HTTP server shutdown initiated.")
		}
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	logger.Info("Waiting for server goroutine to confirm exit...")
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}

	logger.Info("Application shutdown process complete.")
}
