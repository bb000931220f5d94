package server

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

	"github.com/go-chi/chi/v5"

	"notify/internal/domain/accounts"
	"notify/internal/domain/notifications"
	"notify/internal/domain/relationships"
	"notify/internal/domain/statuses"
	"notify/internal/platform/config"
	"notify/internal/platform/db"
	"notify/internal/platform/email"
	"notify/internal/platform/jobs"
	"notify/internal/platform/metrics"
	activitieshandler "notify/internal/transport/http/handlers/activities"
	notificationshandler "notify/internal/transport/http/handlers/notifications"
	relationshipshandler "notify/internal/transport/http/handlers/relationships"
	"notify/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *db.Pool
	Router  http.Handler
	Notify  *notifications.Service
	Metrics *metrics.Collector

	jobs   *jobs.Service
	cancel context.CancelFunc
}

// New connects to the database, applies migrations when enabled and wires the
// notification pipeline behind the HTTP router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	accountStore := accounts.NewStore(pool)
	relationshipStore := relationships.NewStore(pool)
	statusStore := statuses.NewStore(pool)
	notificationStore := notifications.NewStore(pool)

	gate := relationships.NewGate(relationshipStore)
	ancestry := statuses.NewAncestryResolver(statusStore, gate, cfg.ThreadMaxDepth)
	engine := notifications.NewEngine(gate, ancestry, notificationStore)
	emailGate := notifications.NewEmailGate(notificationStore, cfg.EmailDefaultCategories)

	workerCtx, cancel := context.WithCancel(context.Background())
	app := &App{Config: cfg, DB: pool, Metrics: metrics.New(), cancel: cancel}

	dispatcher := email.NewDispatcher(email.New(cfg), cfg.EmailFrom, cfg.PublicURL, nil, accountStore)
	if cfg.EmailAsync {
		app.jobs = jobs.New(pool, cfg.EmailQueueSize, 2)
		app.jobs.Start(workerCtx)
		dispatcher.Queue = app.jobs
	}

	app.Notify = notifications.New(notificationStore, engine, emailGate, dispatcher)
	app.Notify.Metrics = app.Metrics

	app.Router = app.routes(accountStore, statusStore, relationshipStore)
	return app, nil
}

func (a *App) routes(accountStore *accounts.Store, statusStore *statuses.Store, relationshipStore *relationships.Store) http.Handler {
	var recorder middleware.Recorder
	if a.Config.MetricsEnabled {
		recorder = a.Metrics
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(recorder))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(a.Config.Environment == "production"))
	router.Use(middleware.BodyLimit(a.Config.MaxBodyBytes))
	router.Use(middleware.Auth(a.Config.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if a.Config.MetricsEnabled {
		router.Handle("/metrics", a.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		activitieshandler.NewHandler(a.Notify, accountStore, statusStore).RegisterRoutes(r)
		notificationshandler.NewHandler(a.Notify).RegisterRoutes(r)
		relationshipshandler.NewHandler(relationshipStore).RegisterRoutes(r)
	})

	return router
}

// Close stops the email workers and releases the pool.
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.jobs != nil {
		a.jobs.Wait()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run serves until SIGINT or SIGTERM and then drains in-flight requests.
func Run() error {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("notify server listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
