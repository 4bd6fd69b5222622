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

	"github.com/gin-gonic/gin"
	receiptapp "github.com/obra/backend/internal/application/receipt"
	"github.com/obra/backend/internal/domain/printing"
	"github.com/obra/backend/internal/domain/receipt"
	"github.com/obra/backend/internal/infrastructure/cache"
	"github.com/obra/backend/internal/infrastructure/config"
	"github.com/obra/backend/internal/infrastructure/event"
	"github.com/obra/backend/internal/infrastructure/logger"
	"github.com/obra/backend/internal/infrastructure/migration"
	"github.com/obra/backend/internal/infrastructure/persistence"
	"github.com/obra/backend/internal/infrastructure/persistence/models"
	infraprinting "github.com/obra/backend/internal/infrastructure/printing"
	"github.com/obra/backend/internal/infrastructure/storage"
	"github.com/obra/backend/internal/infrastructure/telemetry"
	"github.com/obra/backend/internal/interfaces/http/handler"
	"github.com/obra/backend/internal/interfaces/http/middleware"
	"github.com/obra/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	tel := setupTelemetry(ctx, cfg, log)

	// Rebuild the logger so entries are also exported over OTLP
	if tel.logs != nil && cfg.Telemetry.LogsEnabled {
		exported, err := logger.New(logCfg, logger.WithCore(tel.logs.ZapCore(logger.ParseLevel(cfg.Telemetry.LogsMinLevel))))
		if err != nil {
			log.Warn("Failed to attach OTLP log core", zap.Error(err))
		} else {
			log = exported
		}
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting receipt service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	db, err := openDatabase(cfg, log)
	if err != nil {
		log.Fatal("Failed to prepare database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	receiptMetrics, err := telemetry.NewReceiptMetricsFromProvider(tel.meter)
	if err != nil {
		log.Warn("Receipt metrics unavailable", zap.Error(err))
	}

	// Domain
	repo := persistence.NewGormReceiptRepository(db.DB)
	factory := receipt.NewFactory(receipt.NewRandomNumberGenerator(), time.Now)
	hasher := receiptapp.NewInstrumentedHasher(
		receipt.NewSHA256Hasher(receipt.WithHashTimeout(cfg.Receipt.HashTimeout)),
		receiptMetrics,
	)
	signer := receipt.NewSigner(hasher, time.Now)

	// Documents
	htmlRenderer, err := newReceiptRenderer(cfg.Printing.TemplatePath)
	if err != nil {
		log.Fatal("Failed to load receipt template", zap.Error(err))
	}

	documents, err := cache.NewDocumentCacheFactory(cfg.Redis, cfg.Receipt.DocumentCacheTTL,
		cache.WithLogger(log),
	).CreateCache()
	if err != nil {
		log.Fatal("Failed to create document cache", zap.Error(err))
	}
	defer func() { _ = documents.Close() }()

	// Events
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewAuditLogHandler(log))
	bus.Subscribe(cache.NewInvalidationHandler(documents, log))

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, receipt events will not be streamed", zap.Error(err))
		} else {
			defer func() { _ = redisClient.Close() }()
			bus.Subscribe(event.NewRedisStreamPublisher(redisClient, event.NewReceiptEventSerializer(), log))
		}
	}
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() { _ = bus.Stop(context.Background()) }()

	page := printing.PageSetup{PaperSize: printing.PaperSize(cfg.Printing.PaperSize), Margins: printing.DefaultMargins()}.Normalize()
	opts := []receiptapp.Option{
		receiptapp.WithDocumentCache(documents),
		receiptapp.WithEventPublisher(bus),
		receiptapp.WithMetrics(receiptMetrics),
		receiptapp.WithLogger(log),
		receiptapp.WithConfig(receiptapp.Config{
			NumberAttempts:   cfg.Receipt.NumberAttempts,
			DocumentCacheTTL: cfg.Receipt.DocumentCacheTTL,
			Page:             page,
		}),
	}
	if cfg.Printing.PDFEnabled {
		pdfRenderer, pdfStorage, err := setupPDFExport(ctx, cfg, log)
		if err != nil {
			log.Fatal("Failed to set up PDF export", zap.Error(err))
		}
		defer func() { _ = pdfRenderer.Close() }()
		opts = append(opts, receiptapp.WithPDFExport(pdfRenderer, pdfStorage))
	}

	service := receiptapp.NewReceiptService(repo, factory, signer, htmlRenderer, opts...)

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	secureCfg := middleware.DefaultSecurityConfig()
	secureCfg.HSTSEnabled = cfg.IsProduction()

	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.Enabled = cfg.Telemetry.Enabled
	tracingCfg.ServiceName = cfg.Telemetry.ServiceName

	profilingCfg := middleware.DefaultProfilingConfig()
	profilingCfg.Enabled = tel.profiler.IsEnabled()

	engine.Use(
		middleware.RequestID(),
		middleware.TracingWithConfig(tracingCfg),
		middleware.SpanEnricher(),
		logger.GinMiddleware(log),
		middleware.Recovery(),
		middleware.HTTPMetrics(tel.httpMeter()),
		middleware.ProfilingWithConfig(profilingCfg),
		middleware.CORSWithConfig(corsCfg),
		middleware.SecureWithConfig(secureCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	checks := []handler.HealthChecker{
		handler.HealthCheckFunc{CheckName: "database", Fn: func(ctx context.Context) error {
			sqlDB, err := db.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}},
	}
	if redisClient != nil {
		checks = append(checks, handler.HealthCheckFunc{CheckName: "redis", Fn: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}
	systemHandler := handler.NewSystemHandler(version, checks...)
	engine.GET("/health", systemHandler.Health)
	engine.NoRoute(systemHandler.NotFound)

	receipts := handler.ReceiptRoutes(handler.NewReceiptHandler(service))
	r := router.NewRouter(engine)
	r.Register(receipts).Register(handler.SystemRoutes(systemHandler))
	r.Setup()
	for _, route := range receipts.Routes() {
		log.Debug("Route registered",
			zap.String("method", route.Method),
			zap.String("path", r.BasePath()+route.Path),
			zap.String("description", route.Description),
		)
	}

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	tel.shutdown(shutdownCtx, log)

	log.Info("Server exited gracefully")
}

// openDatabase connects, installs query tracing and brings the schema up to date.
// Postgres runs the embedded SQL migrations; sqlite is only used for local
// development and gets its schema from AutoMigrate.
func openDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSQL(!cfg.IsProduction()),
	)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return nil, err
	}
	log.Info("Database connected", zap.String("driver", db.DriverName()))

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		DBName:     cfg.Database.DBName,
	}, log); err != nil {
		log.Warn("Database tracing unavailable", zap.Error(err))
	}

	if cfg.Database.Driver == persistence.DriverSQLite {
		if err := db.DB.AutoMigrate(&models.ReceiptModel{}); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
		return db, nil
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	m, err := migration.NewEmbedded(sqlDB, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	// Closing the migrator would close sqlDB, which GORM still owns
	if err := m.Up(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newReceiptRenderer(templatePath string) (*infraprinting.ReceiptRenderer, error) {
	if templatePath == "" {
		return infraprinting.NewReceiptRenderer()
	}
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", templatePath, err)
	}
	return infraprinting.NewReceiptRenderer(infraprinting.WithReceiptTemplate(string(content)))
}

func setupPDFExport(ctx context.Context, cfg *config.Config, log *zap.Logger) (infraprinting.PDFRenderer, infraprinting.PDFStorage, error) {
	renderer := infraprinting.NewChromedpRenderer(&infraprinting.ChromedpConfig{
		DefaultTimeout: cfg.Printing.Timeout,
		RemoteURL:      cfg.Printing.ChromeRemoteURL,
		NoSandbox:      cfg.Printing.NoSandbox,
		Logger:         log,
	})

	switch cfg.Storage.Driver {
	case "s3":
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			_ = renderer.Close()
			return nil, nil, err
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			_ = renderer.Close()
			return nil, nil, err
		}
		log.Info("PDF export enabled", zap.String("storage", "s3"), zap.String("bucket", s3Storage.Bucket()))
		return renderer, s3Storage, nil
	default:
		fsStorage, err := infraprinting.NewFileSystemStorage(&infraprinting.FileSystemStorageConfig{
			BasePath: cfg.Storage.BasePath,
			BaseURL:  cfg.Storage.BaseURL,
			Logger:   log,
		})
		if err != nil {
			_ = renderer.Close()
			return nil, nil, err
		}
		log.Info("PDF export enabled", zap.String("storage", "fs"), zap.String("path", cfg.Storage.BasePath))
		return renderer, fsStorage, nil
	}
}
