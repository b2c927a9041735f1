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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/DavidZachariahWC/trademarks-public/internal/config"
	"github.com/DavidZachariahWC/trademarks-public/internal/db/postgres"
	dbRedis "github.com/DavidZachariahWC/trademarks-public/internal/db/redis"
	"github.com/DavidZachariahWC/trademarks-public/internal/domain/tree"
	logpkg "github.com/DavidZachariahWC/trademarks-public/internal/logger"
	"github.com/DavidZachariahWC/trademarks-public/internal/metrics"
	searchrepo "github.com/DavidZachariahWC/trademarks-public/internal/repository/search"
	"github.com/DavidZachariahWC/trademarks-public/internal/repository/searchcache"
	"github.com/DavidZachariahWC/trademarks-public/internal/strategy"
	chiTransport "github.com/DavidZachariahWC/trademarks-public/internal/transport/chi"
	healthuc "github.com/DavidZachariahWC/trademarks-public/internal/usecase/health"
	searchuc "github.com/DavidZachariahWC/trademarks-public/internal/usecase/search"
	suggestuc "github.com/DavidZachariahWC/trademarks-public/internal/usecase/suggest"
	"github.com/DavidZachariahWC/trademarks-public/internal/version"
)

func main() {
	// .env is optional; real deployments pass the environment directly.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting tmsearch API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("tracing_enabled", cfg.Tracing.Enabled),
	)

	if !cfg.Tracing.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
	}

	ctx := context.Background()

	// Record store
	store, err := postgres.NewStore(ctx, postgres.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: time.Duration(cfg.Database.MaxConnLifetimeSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create record store", zap.Error(err))
	}
	defer store.Close()

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		logger.Fatal("Record store not ready", zap.Error(err))
	}
	logger.Info("Connected to record store")

	if cfg.Database.MigrateOnStart {
		if err := store.Migrate(ctx); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
		v, dirty, err := store.MigrationVersion(ctx)
		if err != nil {
			logger.Fatal("Failed to read migration version", zap.Error(err))
		}
		logger.Info("Migrations applied", zap.Uint("version", v), zap.Bool("dirty", dirty))
	}

	// Search metrics are registered explicitly (no init()).
	metrics.RegisterSearchMetrics()

	// Strategy registry and compiler
	registry := strategy.MustBuiltin()
	compiler, err := searchuc.NewCompiler(registry, cfg.Search.CompileWorkers)
	if err != nil {
		logger.Fatal("Failed to create compiler", zap.Error(err))
	}
	defer compiler.Release()
	logger.Info("Strategy registry loaded",
		zap.Int("strategies", registry.Len()),
		zap.Int("compile_workers", cfg.Search.CompileWorkers),
	)

	// Repositories
	recordRepo := searchrepo.New(store)
	var pageRepo searchuc.Repository = recordRepo

	// Health: pass a nil interface, not a typed nil *dbRedis.Store, when the cache is off.
	var cachePinger healthuc.Pinger
	if cfg.Cache.Enabled {
		cache, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cache.Close()

		if err := cache.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))

		pageRepo = searchcache.New(
			recordRepo, cache,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.SearchCacheTotal, logger,
		)
		cachePinger = cache
	}

	// Use case services
	searchSvc := searchuc.New(compiler, pageRepo, searchuc.Config{
		MaxPerPage: cfg.Search.MaxPerPage,
		Limits: tree.Limits{
			MaxDepth:    cfg.Search.MaxTreeDepth,
			MaxOperands: cfg.Search.MaxOperands,
			MaxLeaves:   cfg.Search.MaxLeaves,
		},
		QueryTimeout: time.Duration(cfg.Database.QueryTimeoutMs) * time.Millisecond,
	})
	suggestSvc := suggestuc.New(recordRepo, suggestuc.DefaultLimit)
	healthSvc := healthuc.New(store, cachePinger)

	server := chiTransport.NewServer(searchSvc, suggestSvc, healthSvc, registry, cfg.Search.DefaultPerPage, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// corsMiddleware allows browser clients from the configured origins. No origins means any origin.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		if o != "" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         600,
	}).Handler
}
