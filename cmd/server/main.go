package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/erp/ledger/internal/application/catalog"
	eventapp "github.com/erp/ledger/internal/application/event"
	financeapp "github.com/erp/ledger/internal/application/finance"
	identityapp "github.com/erp/ledger/internal/application/identity"
	inventoryapp "github.com/erp/ledger/internal/application/inventory"
	appshared "github.com/erp/ledger/internal/application/shared"
	taxapp "github.com/erp/ledger/internal/application/tax"
	tradeapp "github.com/erp/ledger/internal/application/trade"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/infrastructure/event"
	"github.com/erp/ledger/internal/infrastructure/lock"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/metrics"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/erp/ledger/internal/interfaces/http/handler"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/erp/ledger/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/erp/ledger/docs"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			ERP Ledger API
//	@version		1.0
//	@description	Multi-tenant inventory and ledger consistency engine

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, cfg.App.Name)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ledger server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry: traces and otel metrics go to the collector when enabled
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer shutdown(log, "tracer provider", tracerProvider.Shutdown)

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdown(log, "meter provider", meterProvider.Shutdown)

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer shutdown(log, "logger provider", loggerProvider.Shutdown)
	if loggerProvider.IsEnabled() {
		level, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			level = zapcore.InfoLevel
		}
		log = telemetry.BridgeLogger(log,
			telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, loggerProvider.Provider(), level))
	}

	// Prometheus registry for worker metrics scraped from /metrics
	registry := metrics.NewRegistry()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if db.Driver == persistence.DriverSQLite {
		// postgres schemas are managed by cmd/migrate
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}
	log.Info("Database connected", zap.String("driver", db.Driver))

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	if db.Driver == persistence.DriverSQLite {
		dbTracing.DBSystem = "sqlite"
	}
	if err := telemetry.RegisterDBTracing(db.DB, dbTracing, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if meterProvider.IsEnabled() {
		dbMetricsCfg := telemetry.DefaultDBMetricsConfig()
		dbMetricsCfg.SlowQueryThreshold = cfg.Telemetry.DBSlowQueryThresh
		dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, dbMetricsCfg, log)
		if err != nil {
			log.Fatal("Failed to register database metrics", zap.Error(err))
		}
		if dbMetrics != nil {
			dbMetrics.StartPoolStatsCollection(ctx, mustSQLDB(log, db))
			defer dbMetrics.Stop()
		}
	}

	var businessMetrics *telemetry.BusinessMetrics
	if meterProvider.IsEnabled() {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:           meterProvider.Meter("erp-ledger/business"),
			Logger:          log,
			BacklogProvider: telemetry.NewGormJournalBacklogProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to create business metrics", zap.Error(err))
		}
		businessMetrics.StartPeriodicCollection(ctx, telemetry.NewGormTenantProvider(db.DB), cfg.Telemetry.MetricsInterval)
		defer businessMetrics.Stop()
	}

	// Outbox: events are recorded in the writing transaction and delivered later
	serializer := event.NewEventSerializer()
	outboxRepo := event.NewGormOutboxRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB,
		event.NewOutboxPublisher(serializer, cfg.Event.MaxRetries), cfg.Ledger.TransactionTimeout)

	// Item locks
	var redisClient redis.UniversalClient
	if cfg.Ledger.LockBackend == lock.BackendRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to redis", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
	}
	locker, err := lock.NewItemLocker(lock.Config{
		Backend:      cfg.Ledger.LockBackend,
		TTL:          cfg.Ledger.LockTTL,
		RetryBackoff: cfg.Ledger.LockRetryBackoff,
		RetryLimit:   cfg.Ledger.LockRetryLimit,
	}, redisClient, lock.WithLogger(log), lock.WithMetrics(metrics.NewLockMetrics(registry)))
	if err != nil {
		log.Fatal("Failed to create item locker", zap.Error(err))
	}
	log.Info("Item locker ready", zap.String("backend", cfg.Ledger.LockBackend))

	// Application services
	svc := newServices(txScope, locker, businessMetrics, outboxRepo, log)

	// Event bus and outbox processor
	eventBus := event.NewInMemoryEventBus(log)
	journalHandler := financeapp.NewJournalRequestHandler(txScope, svc.journals, businessMetrics, log)
	eventBus.Subscribe(journalHandler, journalHandler.EventTypes()...)
	log.Info("Event handlers registered", zap.Strings("journal_request_events", journalHandler.EventTypes()))

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer shutdown(log, "event bus", eventBus.Stop)

	if cfg.Event.ProcessorEnabled {
		processorCfg := event.OutboxProcessorConfig{
			BatchSize:        cfg.Event.BatchSize,
			PollInterval:     cfg.Event.PollInterval,
			CleanupEnabled:   cfg.Event.CleanupEnabled,
			CleanupRetention: cfg.Event.CleanupRetention,
			CleanupInterval:  cfg.Event.CleanupInterval,

			ProcessingTimeout: cfg.Event.ProcessingTimeout,
		}
		processor := event.NewOutboxProcessor(outboxRepo, eventBus, serializer, processorCfg,
			metrics.NewOutboxMetrics(registry), log)
		if err := processor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer shutdown(log, "outbox processor", processor.Stop)
		log.Info("Outbox processor started",
			zap.Int("batch_size", cfg.Event.BatchSize),
			zap.Duration("poll_interval", cfg.Event.PollInterval),
			zap.Duration("processing_timeout", cfg.Event.ProcessingTimeout),
		)
	} else {
		log.Warn("Outbox processor disabled; journal entries will stay pending")
	}

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request id first so every later layer can log it,
	// tracing before the enricher, body limit last before handlers.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.HTTPMetrics(meterProvider))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig()))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	router.RegisterAPI(engine, router.Handlers{
		System:    handler.NewSystemHandler(db.DB, version),
		Tenants:   handler.NewTenantHandler(svc.tenants),
		Items:     handler.NewItemHandler(svc.items),
		Taxes:     handler.NewTaxHandler(svc.taxes),
		Documents: handler.NewDocumentHandler(svc.documents),
		Stock:     handler.NewStockHandler(svc.stock),
		Accounts:  handler.NewAccountHandler(svc.accounts),
		Journal:   handler.NewJournalEntryHandler(svc.journals),
		Payments:  handler.NewPaymentHandler(svc.payments),
		Outbox:    handler.NewOutboxHandler(svc.outbox),
		Gatherer:  registry,
	}, router.WithAPIVersion("v1"), router.WithSwagger(!cfg.IsProduction()))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

type services struct {
	tenants   *identityapp.TenantService
	items     *catalogapp.ItemService
	taxes     *taxapp.Service
	documents *tradeapp.DocumentService
	stock     *inventoryapp.StockService
	accounts  *financeapp.AccountService
	journals  *financeapp.JournalEntryService
	payments  *financeapp.PaymentService
	outbox    *eventapp.OutboxService
}

func newServices(
	txScope appshared.TransactionScope,
	locker appshared.ItemLocker,
	bm *telemetry.BusinessMetrics,
	outboxRepo *event.GormOutboxRepository,
	log *zap.Logger,
) *services {
	preparer := appshared.NewDocumentPreparer(taxapp.NewEngine(log))
	coordinator := inventoryapp.NewStockMovementCoordinator(txScope, locker, preparer, bm, log)

	return &services{
		tenants:   identityapp.NewTenantService(txScope, log),
		items:     catalogapp.NewItemService(txScope, log),
		taxes:     taxapp.NewService(txScope, log),
		documents: tradeapp.NewDocumentService(txScope, preparer, coordinator, bm, log),
		stock:     inventoryapp.NewStockService(txScope, locker, bm, log),
		accounts:  financeapp.NewAccountService(txScope, log),
		journals:  financeapp.NewJournalEntryService(txScope, bm, log),
		payments:  financeapp.NewPaymentService(txScope, bm, log),
		outbox:    eventapp.NewOutboxService(outboxRepo, log),
	}
}

func mustSQLDB(log *zap.Logger, db *persistence.Database) *sql.DB {
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get sql.DB", zap.Error(err))
	}
	return sqlDB
}

// shutdown runs a Stop/Shutdown func with a fresh bounded context, since the
// signal context is already cancelled by the time deferred calls run.
func shutdown(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("Error stopping "+name, zap.Error(err))
	}
}
