package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-blog-auth"
	"github.com/goliatone/go-blog-auth/blog"
	"github.com/goliatone/go-blog-auth/repository"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-router"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config   *Config
	logger   *glog.BaseLogger
	db       *bun.DB
	repo     auth.RepositoryManager
	redis    *redis.Client
	refresh  auth.RefreshTokenStore
	auther   *auth.Auther
	httpAuth *auth.RouteAuthenticator
	registry *prometheus.Registry
	srv      router.Server[*fiber.App]
	metrics  *http.Server
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithName("blog"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := LoadConfig()
	if err != nil {
		lgr.GetLogger("config").Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if cfg.Debug {
		lgr = glog.NewLogger(
			glog.WithLoggerTypePretty(),
			glog.WithLevel(glog.Trace),
			glog.WithName("blog"),
			glog.WithAddSource(true),
			glog.WithRichErrorHandler(errors.ToSlogAttributes),
		)
	}

	app := &App{
		config:   cfg,
		logger:   lgr,
		registry: prometheus.NewRegistry(),
	}

	log := app.GetLogger("main")
	ctx := context.Background()

	steps := []func(context.Context, *App) error{
		WithPersistence,
		WithRefreshStore,
		WithAuthenticator,
		WithHTTPServer,
		WithMetricsServer,
	}
	for _, step := range steps {
		if err := step(ctx, app); err != nil {
			log.Error("startup failed", "error", err)
			app.Close()
			os.Exit(1)
		}
	}

	go func() {
		if err := app.srv.Serve(cfg.HTTPAddr); err != nil {
			log.Error("http server stopped", "error", err)
		}
	}()

	go func() {
		if err := app.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", "error", err)
		}
	}()

	log.Info("blog server started", "addr", cfg.HTTPAddr, "metrics_addr", cfg.MetricsAddr)

	sig := WaitExitSignal()
	log.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	if err := app.metrics.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics shutdown failed", "error", err)
	}
	app.Close()
}

// Close releases the database and redis connections
func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func openDB(cfg DatabaseConfig) (*bun.DB, error) {
	switch cfg.Dialect {
	case auth.DialectPostgres:
		sqldb, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
		if err != nil {
			return nil, err
		}
		sqldb.SetMaxOpenConns(1)
		if _, err := sqldb.Exec("PRAGMA foreign_keys = ON;"); err != nil {
			return nil, err
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	cfg := app.config

	db, err := openDB(cfg.Database)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to open database")
	}
	app.db = db

	if err := db.PingContext(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to reach database")
	}

	if err := auth.RunMigrations(ctx, db.DB, cfg.Database.Dialect,
		auth.GetMigrationsSource(),
		blog.GetMigrationsSource(),
	); err != nil {
		return err
	}

	app.repo = auth.NewRepositoryManager(db, cfg.Auth.GetRefreshTokenExpiration())
	return app.repo.Validate()
}

func WithRefreshStore(ctx context.Context, app *App) error {
	cfg := app.config

	if cfg.RefreshStore != RefreshStoreRedis {
		app.refresh = app.repo.RefreshTokens()
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	app.redis = client

	if err := client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to reach redis").
			WithMetadata(map[string]any{"addr": cfg.Redis.Addr})
	}

	app.refresh = repository.NewRedisRefreshTokens(
		client,
		cfg.Auth.GetRefreshTokenExpiration(),
		repository.WithKeyPrefix(cfg.Redis.Prefix),
	)
	return nil
}

func WithAuthenticator(_ context.Context, app *App) error {
	cfg := app.config.Auth

	tokens := auth.NewTokenServiceFromConfig(cfg, auth.WithTokenLogger(app.GetLogger("auth:tokens")))

	hasher := auth.NewBcryptHasher(0)
	provider := auth.NewUserProvider(app.repo.Users(), hasher).
		WithLogger(app.GetLogger("auth:prv"))

	metrics, err := auth.NewMetricsSink(app.config.MetricsNamespace, app.registry)
	if err != nil {
		return err
	}

	app.auther = auth.NewAuthenticator(provider, provider, tokens, app.refresh).
		WithLogger(app.GetLogger("auth:authz")).
		WithRegisterHandler(auth.NewRegisterUserHandler(app.repo, hasher).
			WithAdminUsernames(app.config.AdminUsernames...)).
		WithActivitySink(auth.MultiActivitySink{
			metrics,
			auth.LoggerActivitySink{Logger: app.GetLogger("auth:activity")},
		})

	httpAuth, err := auth.NewHTTPAuthenticator(app.auther, cfg)
	if err != nil {
		return err
	}
	app.httpAuth = httpAuth.WithLogger(app.GetLogger("auth:http"))
	return nil
}

func WithHTTPServer(_ context.Context, app *App) error {
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		f := router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: app.config.Debug,
			StrictRouting:     false,
		}))
		f.Use(corsMiddleware(app.config.CORS))
		return f
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	api := srv.Router().Group("/api/v1")
	api.Use(app.httpAuth.IdentityMiddleware())

	auth.NewAuthController(app.auther,
		auth.WithControllerLogger(app.GetLogger("auth:ctrl")),
		auth.WithControllerDebug(app.config.Debug),
	).RegisterRoutes(api.Group("/auth"))

	blog.NewController(
		blog.NewService(blog.NewStore(app.db), app.repo.Users()),
		blog.WithLogger(app.GetLogger("blog:ctrl")),
	).RegisterRoutes(api, app.httpAuth)

	app.srv = srv
	return nil
}

func WithMetricsServer(_ context.Context, app *App) error {
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	app.metrics = &http.Server{
		Addr:              app.config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
