package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobads/internal/config"
	"jobads/internal/delivery/router"
	"jobads/internal/infrastructure/metrics"
	"jobads/internal/link"
	"jobads/internal/storage"
	"jobads/internal/store"
	"jobads/pkg/database"
	"jobads/pkg/logger"
	"jobads/pkg/utils"

	"github.com/go-chi/chi/v5"
	redisClient "github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func main() {
	cfg := config.MustLoadConfig()

	loggers, err := logger.SetupLogger(cfg.Logger.Level)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	loggers.InfoLogger.Info("Logger initialized")

	tracerProvider := setupTracer(cfg, loggers)
	defer shutdownTracer(tracerProvider, loggers)

	handlerMetrics := metrics.NewHandlerMetrics()
	storeMetrics := metrics.NewStoreMetrics()
	slotMetrics := metrics.NewSlotMetrics()
	loggers.InfoLogger.Info("Prometheus metrics initialized")

	slot, cleanupSlot := setupSlot(cfg, slotMetrics, loggers)
	defer cleanupSlot()

	adStore := store.NewAdvertisementStore(slot, storeMetrics)
	if err := adStore.Load(context.Background()); err != nil {
		// A failed load degrades to an empty list rather than refusing to
		// start; the error is kept for telemetry.
		loggers.ErrorLogger.Error("Failed to load advertisements, starting empty", utils.Err(err))
	}
	loggers.InfoLogger.Info("Advertisement store loaded", "count", adStore.Count())

	opener := link.NewOpener(cfg.HTTP.Timeout)

	r := chi.NewRouter()
	router.SetupAdRoutes(r, adStore, opener, loggers, handlerMetrics)
	loggers.InfoLogger.Info("Router and routes initialized")

	r.Handle("/metrics", handlerMetrics.HTTPHandler())

	server := startServer(cfg, r, loggers)

	waitForShutdown(server, loggers)
}

func setupSlot(cfg *config.Config, slotMetrics *metrics.SlotMetrics, loggers *logger.Loggers) (storage.Slot, func()) {
	switch cfg.Storage.Backend {
	case "file":
		loggers.InfoLogger.Info("Using file slot", "path", cfg.Storage.File.Path)
		return storage.NewFileSlot(cfg.Storage.File.Path, slotMetrics), func() {}

	case "sql":
		db, err := database.NewDatabase(cfg.Storage.SQL.Driver, cfg.Storage.SQL.DSN)
		if err != nil {
			loggers.ErrorLogger.Error("Failed to connect to database", utils.Err(err))
			os.Exit(1)
		}
		slot, err := storage.NewSQLSlot(db, slotMetrics)
		if err != nil {
			loggers.ErrorLogger.Error("Failed to prepare slots table", utils.Err(err))
			os.Exit(1)
		}
		loggers.InfoLogger.Info("Using SQL slot", "driver", cfg.Storage.SQL.Driver)

		cleanup := func() {
			if err := db.Close(); err != nil {
				loggers.ErrorLogger.Error("Failed to close database connection", utils.Err(err))
			}
		}
		return slot, cleanup

	case "redis":
		rdb := redisClient.NewClient(&redisClient.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})

		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			loggers.ErrorLogger.Error("Failed to connect to Redis", utils.Err(err))
			os.Exit(1)
		}
		loggers.InfoLogger.Info("Using Redis slot", "addr", cfg.Storage.Redis.Addr)

		cleanup := func() {
			if err := rdb.Close(); err != nil {
				loggers.ErrorLogger.Error("Failed to close Redis client", utils.Err(err))
			}
		}
		return storage.NewRedisSlot(rdb, slotMetrics), cleanup

	case "memory":
		loggers.InfoLogger.Info("Using in-memory slot; advertisements will not survive restarts")
		return storage.NewMemorySlot(), func() {}

	default:
		loggers.ErrorLogger.Error("Unknown storage backend", "backend", cfg.Storage.Backend)
		os.Exit(1)
		return nil, nil
	}
}

func setupTracer(cfg *config.Config, loggers *logger.Loggers) *sdktrace.TracerProvider {
	tracerProvider := metrics.InitTracer(
		cfg.Tracing.Enabled,
		cfg.Tracing.ServiceName,
		cfg.Tracing.Environment,
		cfg.Tracing.Version,
		cfg.Tracing.Endpoint,
	)
	if cfg.Tracing.Enabled {
		loggers.InfoLogger.Info("OpenTelemetry Tracer initialized", "endpoint", cfg.Tracing.Endpoint)
	}
	return tracerProvider
}

func shutdownTracer(tp *sdktrace.TracerProvider, loggers *logger.Loggers) {
	if err := tp.Shutdown(context.Background()); err != nil {
		loggers.ErrorLogger.Error("Failed to shut down tracer provider", utils.Err(err))
	}
}

func startServer(cfg *config.Config, handler http.Handler, loggers *logger.Loggers) *http.Server {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.Timeout,
		WriteTimeout: cfg.HTTP.Timeout,
	}

	go func() {
		loggers.InfoLogger.Info("Starting server", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			loggers.ErrorLogger.Error("Failed to start server", utils.Err(err))
			os.Exit(1)
		}
	}()

	return server
}

func waitForShutdown(server *http.Server, loggers *logger.Loggers) {
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	<-shutdownCh
	loggers.InfoLogger.Info("Shutdown signal received, shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		loggers.ErrorLogger.Error("Server forced to shutdown", utils.Err(err))
	} else {
		loggers.InfoLogger.Info("Server shutdown gracefully")
	}
}
