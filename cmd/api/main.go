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

	"consulting_leads_backend/internal/auth"
	"consulting_leads_backend/internal/events"
	apphttp "consulting_leads_backend/internal/http"
	"consulting_leads_backend/internal/http/router"
	"consulting_leads_backend/internal/leads"
	"consulting_leads_backend/internal/notification"
	"consulting_leads_backend/internal/scheduler"
	"consulting_leads_backend/platform/config"
	"consulting_leads_backend/platform/db"
	"consulting_leads_backend/platform/lock"
	"consulting_leads_backend/platform/logger"
	"consulting_leads_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const (
	automationLockKey     = "leads-automation"
	listenerRetryInterval = 5 * time.Second
	shutdownTimeout       = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

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

	if err := db.RunMigrations(ctx, pool); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	guard, closeGuard := initAutomationGuard(cfg, log)
	defer closeGuard()

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	notificationModule := notification.New(log)
	notificationModule.RegisterHandlers(eventBus)
	defer notificationModule.SSE().Close()

	authModule := auth.NewModule(pool, cfg, val, log)
	leadsModule, err := leads.NewModule(ctx, pool, eventBus, val, guard, cfg, log)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: pool,
		Modules: []apphttp.Module{
			authModule,
			leadsModule,
			notificationModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		runInsertListener(gctx, leadsModule, eventBus, log)
		return nil
	})

	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; running automation on an in-process ticker")
		ticker := scheduler.NewTicker(leadsModule.AutomationRunner(), cfg.GetAutomationInterval(), log)
		g.Go(func() error { return ticker.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// runInsertListener forwards store insert notifications to the event bus and
// reconnects until ctx is cancelled.
func runInsertListener(ctx context.Context, leadsModule *leads.Module, eventBus events.Bus, log *logger.Logger) {
	onInsert := func(ctx context.Context, id uuid.UUID) {
		eventBus.Publish(ctx, events.LeadInserted{BaseEvent: events.NewBaseEvent(), LeadID: id})
	}

	for {
		err := leadsModule.Repository().SubscribeInserts(ctx, onInsert)
		if ctx.Err() != nil {
			return
		}
		log.Warn("lead insert listener stopped, reconnecting", "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(listenerRetryInterval):
		}
	}
}

// initAutomationGuard shares the "already running" flag through Redis when
// it is configured, so the API and the scheduler never overlap.
func initAutomationGuard(cfg *config.Config, log *logger.Logger) (lock.Guard, func()) {
	if cfg.GetRedisURL() == "" {
		return lock.NewLocalGuard(), func() {}
	}

	client, err := scheduler.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to initialize redis client, falling back to in-process guard", "error", err)
		return lock.NewLocalGuard(), func() {}
	}

	return lock.NewRedisGuard(client, automationLockKey, cfg.GetAutomationLockTTL()), func() {
		_ = client.Close()
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

	return errors.New(name + ": " + lastErr.Error())
}
