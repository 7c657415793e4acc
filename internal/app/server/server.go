package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kudos/internal/domain/audit"
	"kudos/internal/domain/auth"
	"kudos/internal/domain/feedback"
	"kudos/internal/domain/notifications"
	"kudos/internal/domain/reports"
	"kudos/internal/domain/users"
	"kudos/internal/platform/config"
	"kudos/internal/platform/db"
	"kudos/internal/platform/email"
	"kudos/internal/platform/jobs"
	"kudos/internal/platform/metrics"
	audithandler "kudos/internal/transport/http/handlers/audit"
	authhandler "kudos/internal/transport/http/handlers/auth"
	confighandler "kudos/internal/transport/http/handlers/config"
	feedbackhandler "kudos/internal/transport/http/handlers/feedback"
	metricshandler "kudos/internal/transport/http/handlers/metrics"
	reportshandler "kudos/internal/transport/http/handlers/reports"
	usershandler "kudos/internal/transport/http/handlers/users"
	"kudos/internal/transport/http/middleware"
)

const (
	importBodyLimit = 32 << 20
	shutdownTimeout = 15 * time.Second
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector

	stopJobs context.CancelFunc
}

// New connects to the database, prepares the schema and wires every
// handler. Close releases what New acquired.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	jobCtx, stopJobs := context.WithCancel(context.Background())
	jobService := jobs.New(pool, collector)
	jobService.Start(jobCtx)

	notifier := notifications.New(email.New(cfg), jobService, cfg.EmailFrom, cfg.AppBaseURL)
	perms := auth.StaticPermissions{}
	auditService := audit.New(pool)

	userStore := users.NewStore(pool)
	userService := users.NewService(userStore)

	feedbackService := feedback.NewService(feedback.NewStore(pool), userStore, feedback.NewEngine(cfg.Rating), notifier)
	feedbackService.BadgeWindow = cfg.BadgeWindow

	authService := auth.NewService(auth.NewStore(pool), notifier, cfg.JWTSecret, cfg.TokenTTL, cfg.ResetTokenTTL)
	reportService := reports.NewService(feedbackService, userService)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes, map[string]int64{"/admin/feedback/import": importBodyLimit}))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute*5, time.Minute))

		authhandler.NewHandler(authService).RegisterRoutes(r)
		confighandler.NewHandler(feedbackService, cfg.Rating).RegisterRoutes(r)
		usershandler.NewHandler(userService, perms, auditService).RegisterRoutes(r)
		feedbackhandler.NewHandler(feedbackService, perms, auditService, collector).RegisterRoutes(r)
		reportshandler.NewHandler(reportService, perms).RegisterRoutes(r)
		audithandler.NewHandler(auditService, perms).RegisterRoutes(r)
		metricshandler.NewHandler(collector, perms).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return &App{
		Config:   cfg,
		DB:       pool,
		Router:   router,
		Metrics:  collector,
		stopJobs: stopJobs,
	}, nil
}

func (a *App) Close() {
	if a.stopJobs != nil {
		a.stopJobs()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run loads the configuration from the environment and serves until SIGINT
// or SIGTERM.
func Run() error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
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
		slog.Info("kudos server listening", "addr", cfg.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, filepath.Clean("/"+r.URL.Path))
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		index := filepath.Join(h.staticPath, h.indexPath)
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
		return
	}

	http.NotFound(w, r)
}
