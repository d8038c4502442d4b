package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"plumbing_portal_backend/internal/geocode"
	apphttp "plumbing_portal_backend/internal/http"
	"plumbing_portal_backend/internal/http/router"
	"plumbing_portal_backend/internal/notification"
	"plumbing_portal_backend/internal/profiles"
	"plumbing_portal_backend/internal/quotes"
	"plumbing_portal_backend/internal/requests"
	"plumbing_portal_backend/internal/scheduler"
	"plumbing_portal_backend/internal/sms"
	"plumbing_portal_backend/internal/storage"
	"plumbing_portal_backend/internal/triage"
	"plumbing_portal_backend/platform/ai/openai"
	"plumbing_portal_backend/platform/config"
	"plumbing_portal_backend/platform/db"
	"plumbing_portal_backend/platform/events"
	"plumbing_portal_backend/platform/logger"
	"plumbing_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	val := validator.New()

	completion := openai.NewClient(openai.ClientConfig{
		BaseURL: cfg.GetOpenAIBaseURL(),
		APIKey:  cfg.GetOpenAIAPIKey(),
		Model:   cfg.GetOpenAIModel(),
	})

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	requestsModule := requests.NewModule(pool, completion, eventBus, val, log)
	quotesModule := quotes.NewModule(pool, eventBus, val, log)
	geocodeModule := geocode.NewModule(cfg, requestsModule.Repository(), profiles.New(pool), eventBus, log)

	modules := []apphttp.Module{
		requestsModule,
		quotesModule,
		geocodeModule,
		sms.NewModule(cfg, cfg.GetAppBaseURL(), profiles.New(pool), eventBus, log),
	}

	agent, err := triage.NewAgent(cfg, log)
	if err != nil {
		log.Error("failed to initialize triage agent", "error", err)
		panic("failed to initialize triage agent: " + err.Error())
	}
	modules = append(modules, triage.NewModule(agent, requestsModule.Repository(), eventBus, log))

	storageModule, err := storage.NewModule(ctx, cfg, pool, requestsModule.Repository(), eventBus, log)
	if err != nil {
		log.Error("failed to initialize storage module", "error", err)
		panic("failed to initialize storage module: " + err.Error())
	}
	if storageModule != nil {
		modules = append(modules, storageModule)
	}

	// Notification module subscribes to domain events (not HTTP-facing)
	notification.Register(cfg, cfg, eventBus, log)

	if cfg.GetRedisURL() != "" {
		followUps, err := scheduler.NewClient(cfg, log)
		if err != nil {
			log.Error("failed to initialize follow-up scheduler client", "error", err)
		} else {
			followUps.RegisterSubscribers(eventBus)
			defer followUps.Close()
		}
	} else {
		log.Warn("REDIS_URL not configured; follow-up reminders disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules:  modules,
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := eventBus.Close(shutdownCtx); err != nil {
			log.Warn("event bus did not drain before shutdown", "error", err)
		}
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}
