package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	appfulfillment "github.com/shopdesk/backend/internal/application/fulfillment"
	"github.com/shopdesk/backend/internal/domain/fulfillment"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopdesk/backend/internal/infrastructure/cache"
	"github.com/shopdesk/backend/internal/infrastructure/config"
	"github.com/shopdesk/backend/internal/infrastructure/event"
	"github.com/shopdesk/backend/internal/infrastructure/logger"
	"github.com/shopdesk/backend/internal/infrastructure/notify"
	"github.com/shopdesk/backend/internal/infrastructure/persistence"
	"github.com/shopdesk/backend/internal/infrastructure/storage"
	"github.com/shopdesk/backend/internal/infrastructure/telemetry"
	"github.com/shopdesk/backend/internal/interfaces/http/handler"
	"github.com/shopdesk/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic("Failed to load .env file: " + err.Error())
	}

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logCfg, log); err != nil {
		log.Error("Server exited with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(ctx context.Context, cfg *config.Config, logCfg logger.Config, log *zap.Logger) error {
	// Telemetry first so the logger can be tee'd into the OTLP log pipeline.
	tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	mp, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	lp, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(log, tp, mp, lp)

	if lp.IsEnabled() {
		level, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			level = zapcore.InfoLevel
		}
		bridged, err := logger.New(logCfg, lp.ZapCore(cfg.Telemetry.ServiceName, level))
		if err != nil {
			return err
		}
		log = bridged
	}

	log.Info("Starting shopdesk backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabase(&cfg.Database, logger.NewGormLogger(log, cfg.Log.Level, 0))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.InstrumentDatabase(db.DB, cfg.Telemetry, log); err != nil {
		return err
	}
	log.Info("Database connected successfully")

	images, err := newTransferImageStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	bus, idempotency, err := newEventBus(ctx, cfg, mp, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := idempotency.Close(); err != nil {
			log.Warn("Error closing idempotency store", zap.Error(err))
		}
	}()
	if err := bus.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = bus.Stop(context.Background()) }()

	orders := persistence.NewGormOrderRepository(db.DB)
	engine := fulfillment.NewEngine(fulfillment.ShippingFeePolicy{
		FreeShippingThreshold: cfg.Fulfillment.FreeShippingThreshold,
		FlatFee:               cfg.Fulfillment.FlatShippingFee,
	})
	orderService := appfulfillment.NewOrderService(
		persistence.NewGormUnitOfWork(db.DB),
		orders,
		engine,
		appfulfillment.NewStockReconciler(log),
		log,
	)
	orderService.SetEventPublisher(bus)
	orderService.SetTransferImageStore(images)

	ginEngine := router.NewEngine(router.EngineConfig{
		Mode:      cfg.App.Env,
		HTTP:      cfg.HTTP,
		Telemetry: cfg.Telemetry,
		Meters:    mp,
		Logger:    log,
	})

	systemHandler := handler.NewSystemHandler(db, cfg.App.Name, version)
	systemHandler.RegisterRoutes(ginEngine)

	api := router.NewRouter(ginEngine).
		Register(handler.NewOrderHandler(orderService)).
		Register(handler.NewUploadHandler(images, cfg.HTTP.MaxUploadSize)).
		Setup()
	systemHandler.RegisterAPIRoutes(api)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server exited gracefully")
	return nil
}

func newTransferImageStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (appfulfillment.TransferImageStore, error) {
	if cfg.Storage.Driver != "s3" {
		log.Warn("Using in-memory transfer image storage", zap.String("driver", cfg.Storage.Driver))
		return storage.NewMemoryTransferImageStore(cfg.Storage.StagingPrefix, cfg.Storage.PermanentPrefix, cfg.Storage.MaxImageSize), nil
	}

	store, err := storage.NewS3TransferImageStore(&cfg.Storage, log)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// newEventBus wires the after-commit subscribers: customer notifications,
// de-duplicated by event id, and fulfillment metrics.
func newEventBus(ctx context.Context, cfg *config.Config, mp *telemetry.MeterProvider, log *zap.Logger) (*event.InMemoryEventBus, shared.IdempotencyStore, error) {
	bus := event.NewInMemoryEventBus(log)

	store, err := cache.NewIdempotencyStore(ctx, cfg.Redis, !cfg.IsProduction(), log)
	if err != nil {
		return nil, nil, err
	}

	notifications := appfulfillment.NewNotificationHandler(
		cfg.Fulfillment.Locale,
		valueobject.Currency(cfg.Fulfillment.Currency),
		log,
		notify.NewSinks(cfg.Notification, log)...,
	)
	idempotent := event.NewIdempotentHandler("notification", notifications, store, shared.IdempotencyConfig{
		TTL:     cfg.Fulfillment.IdempotencyTTL,
		Enabled: true,
	}, log)
	bus.Subscribe(idempotent, notifications.EventTypes()...)

	metrics, err := telemetry.NewFulfillmentMetrics(mp.Meter("fulfillment"))
	if err != nil {
		return nil, nil, errors.Join(err, store.Close())
	}
	bus.Subscribe(metrics, metrics.EventTypes()...)

	return bus, store, nil
}

func shutdownTelemetry(log *zap.Logger, tp *telemetry.TracerProvider, mp *telemetry.MeterProvider, lp *telemetry.LoggerProvider) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx), lp.Shutdown(ctx)); err != nil {
		log.Warn("Telemetry shutdown incomplete", zap.Error(err))
	}
}
