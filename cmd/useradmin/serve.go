package main

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/useradmin/useradmin/internal/auth"
	"github.com/useradmin/useradmin/internal/cache"
	"github.com/useradmin/useradmin/internal/config"
	"github.com/useradmin/useradmin/internal/handler"
	"github.com/useradmin/useradmin/internal/metrics"
	"github.com/useradmin/useradmin/internal/middleware"
	"github.com/useradmin/useradmin/internal/server"
	"github.com/useradmin/useradmin/internal/service"
	"github.com/useradmin/useradmin/internal/validation"
	"github.com/useradmin/useradmin/internal/view"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the user administration pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runServe(cmd, a); err != nil {
				return reportErr(cmd, err)
			}
			return nil
		},
	}
}

func runServe(cmd *cobra.Command, a *app) error {
	ctx := cmd.Context()
	cfg, logger := a.cfg, a.logger

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	hasher, err := auth.NewHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		_ = closeStore(ctx)
		return err
	}

	var (
		limiter     middleware.SubmissionLimiter
		cacheHealth handler.HealthChecker
		cacheClient *cache.Cache
	)
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			_ = closeStore(ctx)
			return err
		}
		logger.Info("connected to Redis")
		limiter = cacheClient
		cacheHealth = cacheClient
	} else {
		logger.Info("REDIS_URL not set; submission rate limiting disabled")
	}

	renderer, err := view.New()
	if err != nil {
		_ = closeStore(ctx)
		return err
	}

	recorder := metrics.NewInMemory()
	svc := service.NewUserService(store, hasher, validation.New(), recorder, logger)

	r := setupRouter(routerDeps{
		cfg:      cfg,
		logger:   logger,
		base:     handler.New(renderer, cfg.MountPath, logger),
		users:    handler.NewUserHandler(svc, renderer, cfg.MountPath, logger),
		health:   handler.NewHealthHandler(store, cacheHealth),
		metrics:  handler.NewMetricsHandler(recorder),
		limiter:  limiter,
		recorder: recorder,
	})

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// LIFO: Redis closes before the store.
	srv.OnShutdown("store", closeStore)
	if cacheClient != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error { return cacheClient.Close() })
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"mount_path", cfg.MountPath,
		"store", cfg.StoreDriver,
		"hasher", cfg.PasswordHasher,
		"env", cfg.AppEnv,
	)

	return srv.Run(ctx)
}

type routerDeps struct {
	cfg      *config.Config
	logger   *slog.Logger
	base     *handler.Handler
	users    *handler.UserHandler
	health   *handler.HealthHandler
	metrics  *handler.MetricsHandler
	limiter  middleware.SubmissionLimiter
	recorder metrics.Recorder
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger, d.cfg.IsDevelopment()))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: d.cfg.IsDevelopment()}))

	// Operational endpoints
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	r.Get("/metrics", d.metrics.Metrics)

	r.NotFound(d.base.NotFound)
	r.MethodNotAllowed(d.base.MethodNotAllowed)

	r.Get("/", d.base.Root)

	r.Mount(d.cfg.MountPath, d.users.Routes(
		middleware.MaxBodySize(d.cfg.MaxRequestBodySize),
		middleware.RateLimitSubmissions(middleware.RateLimitConfig{
			Logger:  d.logger,
			Limiter: d.limiter,
			Metrics: d.recorder,
			Enabled: d.cfg.RateLimitEnabled,
			RPS:     d.cfg.RateLimitRPS,
			Burst:   d.cfg.RateLimitBurst,
		}),
	))

	return r
}
