// Package main is the entry point for the SkateSpot API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/onnwee/skatespot/internal/api"
	"github.com/onnwee/skatespot/internal/auth"
	"github.com/onnwee/skatespot/internal/config"
	"github.com/onnwee/skatespot/internal/db"
	"github.com/onnwee/skatespot/internal/health"
	"github.com/onnwee/skatespot/internal/middleware"
	"github.com/onnwee/skatespot/internal/park"
	"github.com/onnwee/skatespot/internal/review"
	"github.com/onnwee/skatespot/internal/session"
	"github.com/onnwee/skatespot/internal/tracing"
	"github.com/onnwee/skatespot/internal/user"
)

func main() {
	help := flag.Bool("help", false, "display help message")
	configFile := flag.String("config", "", "path to optional YAML config file")
	flag.Parse()

	if *help {
		fmt.Println("SkateSpot API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configFile)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "config", cfg.LogSummary())

	ctx := context.Background()

	// Postgres
	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Tracing
	tracingProvider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  "skatespot-api",
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporter,
		OTLPEndpoint: cfg.TracingEndpoint,
		SamplingRate: cfg.TracingSamplingRate,
		InsecureMode: cfg.Env != "production",
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics()
	if err := metrics.Register(registry); err != nil {
		logger.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	// Stores and services
	sessionTTL := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	sessions := session.NewRedisStore(redisClient, sessionTTL)

	var tokens *auth.TokenService
	if cfg.SessionSecretRotating() {
		tokens = auth.NewTokenServiceWithRotation(cfg.SessionSecret, cfg.SessionSecretPrevious, sessionTTL)
	} else {
		tokens = auth.NewTokenService(cfg.SessionSecret, sessionTTL)
	}

	users := user.NewPostgresRepository(pool, logger)
	creds := auth.NewCredentialService(users, logger)
	parks := park.NewPostgresRepository(pool, logger)
	reviews := review.NewPostgresRepository(pool)

	secureCookies := cfg.Env == "production"

	// Rate limiting shares the Redis connection so limits hold across replicas
	rateLimitStore := middleware.NewRedisRateLimitStore(redisClient).WithMetrics(metrics)

	// Routes
	mux := api.NewRouter(api.RouterConfig{
		Auth:         api.NewAuthHandlers(creds, tokens, sessions, metrics, sessionTTL, secureCookies),
		Parks:        api.NewParkHandlers(parks),
		Reviews:      api.NewReviewHandlers(reviews),
		ClientConfig: api.NewClientConfigHandlers(cfg.MapsAPIKey),
		Health: api.NewHealthHandlers(api.HealthHandlersConfig{
			DBChecker:    health.NewDBChecker(pool),
			RedisChecker: health.NewRedisChecker(redisClient),
		}),
		Guard: middleware.RequireUser(tokens, sessions, metrics),
		AuthLimiter: middleware.RateLimiter(
			rateLimitStore, middleware.DefaultAuthLimit(), middleware.IPKeyFunc(), metrics, "auth"),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	// Middleware chain: RequestID -> Tracing -> HTTPMetrics -> global rate limit -> Logging
	var handler http.Handler = mux
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RateLimiter(
		rateLimitStore, middleware.DefaultGlobalLimit(), middleware.UserKeyFunc(), metrics, "global")(handler)
	handler = middleware.HTTPMetrics(metrics)(handler)
	if cfg.TracingEnabled {
		handler = middleware.Tracing("skatespot-api")(handler)
	}
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := tracingProvider.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down tracing", "error", err)
	}

	logger.Info("server stopped")
}
