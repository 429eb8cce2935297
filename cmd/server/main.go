package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	catalogapp "github.com/pressureflow/backend/internal/application/catalog"
	dashboardapp "github.com/pressureflow/backend/internal/application/dashboard"
	estimateapp "github.com/pressureflow/backend/internal/application/estimate"
	identityapp "github.com/pressureflow/backend/internal/application/identity"
	inventoryapp "github.com/pressureflow/backend/internal/application/inventory"
	partnerapp "github.com/pressureflow/backend/internal/application/partner"
	settingsapp "github.com/pressureflow/backend/internal/application/settings"
	"github.com/pressureflow/backend/internal/infrastructure/auth"
	"github.com/pressureflow/backend/internal/infrastructure/cache"
	"github.com/pressureflow/backend/internal/infrastructure/config"
	"github.com/pressureflow/backend/internal/infrastructure/export"
	"github.com/pressureflow/backend/internal/infrastructure/logger"
	"github.com/pressureflow/backend/internal/infrastructure/migration"
	"github.com/pressureflow/backend/internal/infrastructure/persistence"
	"github.com/pressureflow/backend/internal/infrastructure/printing"
	"github.com/pressureflow/backend/internal/infrastructure/storage"
	"github.com/pressureflow/backend/internal/infrastructure/telemetry"
	"github.com/pressureflow/backend/internal/interfaces/http/handler"
	"github.com/pressureflow/backend/internal/interfaces/http/middleware"
	"github.com/pressureflow/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const lowStockPollInterval = 5 * time.Minute

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
		TimeFormat: logger.DefaultTimeFormat,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// OpenTelemetry: traces, metrics and logs share the collector endpoint
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer shutdown(log, "tracer provider", tp.Shutdown)

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdown(log, "meter provider", mp.Shutdown)

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer shutdown(log, "logger provider", lp.Shutdown)

	if lp.IsEnabled() {
		log = telemetry.BridgeLogger(log, telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: lp,
			Level:          logger.ParseLevel(cfg.Log.Level),
		})
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.PyroscopeAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.PyroscopeUser,
		BasicAuthPassword: cfg.Telemetry.PyroscopePassword,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if cfg.Telemetry.SpanProfilesEnable && profiler.IsEnabled() {
		if err := tp.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	log.Info("Starting PressureFlow backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Apply pending schema migrations before gorm connects
	if cfg.Database.AutoMigrate {
		if err := runMigrations(cfg.Database.DSN(), log); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	// Initialize database connection with zap-backed gorm logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbInstr, err := telemetry.InstrumentDB(db.DB, mp.Meter("pressureflow/database"), telemetry.DBConfig{
		TraceEnabled:       cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:         cfg.Telemetry.DBLogFullSQL,
		DBName:             cfg.Database.DBName,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	dbInstr.StartPoolStatsCollection(ctx)
	defer dbInstr.Stop()

	// Redis backs the token blacklist and the settings cache when configured
	var (
		blacklist     auth.TokenBlacklist
		settingsCache settingsapp.Cache
	)
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	switch {
	case err != nil:
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	case redisClient != nil:
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		settingsCache = cache.NewRedisSettingsCache(redisClient, cfg.Redis.CacheTTL, log)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	default:
		log.Warn("Redis not configured, using in-process token blacklist and settings cache")
		blacklist = auth.NewInMemoryTokenBlacklist()
		settingsCache = cache.NewInMemorySettingsCache(cfg.Redis.CacheTTL)
	}

	photoStorage, err := storage.NewPhotoStorage(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize photo storage", zap.Error(err))
	}

	// Initialize repositories
	serviceRepo := persistence.NewGormServiceRepository(db.DB)
	upsellRepo := persistence.NewGormUpsellItemRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	estimateRepo := persistence.NewGormEstimateRepository(db.DB)
	photoRepo := persistence.NewGormPhotoRepository(db.DB)
	itemRepo := persistence.NewGormInventoryItemRepository(db.DB)
	inventoryLogRepo := persistence.NewGormInventoryLogRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:    mp.Meter("pressureflow/business"),
		Logger:   log,
		LowStock: itemRepo,
	})
	if err != nil {
		log.Fatal("Failed to initialize business metrics", zap.Error(err))
	}
	businessMetrics.StartPeriodicCollection(ctx, lowStockPollInterval)
	defer businessMetrics.Stop()

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	customerService := partnerapp.NewCustomerService(customerRepo, estimateRepo, log)
	catalogService := catalogapp.NewCatalogService(serviceRepo, upsellRepo, itemRepo, log)
	settingsService := settingsapp.NewSettingsService(settingsRepo, settingsCache, log)

	ledger := inventoryapp.NewLedger(persistence.NewGormTransactionScope(db.DB), log)
	ledger.SetBusinessMetrics(businessMetrics)
	inventoryService := inventoryapp.NewInventoryService(itemRepo, inventoryLogRepo, ledger, export.NewWorkbookExporter(), log)

	estimateConfig := estimateapp.DefaultConfig()
	estimateConfig.DefaultBTWPercentage = decimal.NewFromFloat(cfg.Pricing.DefaultBTWPercentage)
	estimateConfig.CompletionRetries = cfg.Inventory.DeductionRetry
	estimateConfig.PhotoURLExpiry = cfg.Storage.URLExpiry
	estimateService := estimateapp.NewEstimateService(
		estimateapp.Repositories{
			Estimates:   estimateRepo,
			Photos:      photoRepo,
			Customers:   customerRepo,
			Services:    serviceRepo,
			UpsellItems: upsellRepo,
		},
		ledger,
		printing.NewPDFRenderer(log),
		settingsService,
		photoStorage,
		estimateConfig,
		log,
	)
	estimateService.SetBusinessMetrics(businessMetrics)

	dashboardService := dashboardapp.NewDashboardService(estimateRepo, customerRepo, itemRepo, time.Local, log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Request id first so recovery and the request logger can tag entries with it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tp.IsEnabled(),
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(mp, log))
	if profiler.IsEnabled() {
		engine.Use(middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig()))
	}
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.WriteTimeout > 0 {
		engine.Use(middleware.Timeout(cfg.HTTP.WriteTimeout))
	}

	loginLimiter := middleware.NewRateLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateWindow)
	defer loginLimiter.Stop()

	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	}
	optionalJWT := jwtConfig
	optionalJWT.Optional = true
	documentJWT := jwtConfig
	documentJWT.AllowQueryToken = true

	systemHandler := handler.NewSystemHandler(db, version)
	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithHealthCheck("/health", systemHandler.Health),
	)
	router.RegisterAPI(r, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Customer:  handler.NewCustomerHandler(customerService),
		Catalog:   handler.NewCatalogHandler(catalogService),
		Estimate:  handler.NewEstimateHandler(estimateService),
		Inventory: handler.NewInventoryHandler(inventoryService),
		Settings:  handler.NewSettingsHandler(settingsService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		System:    systemHandler,
	}, router.Guards{
		Auth:         middleware.JWTAuthMiddlewareWithConfig(jwtConfig),
		OptionalAuth: middleware.JWTAuthMiddlewareWithConfig(optionalJWT),
		DocumentAuth: middleware.JWTAuthMiddlewareWithConfig(documentJWT),
		Admin:        middleware.RequireAdmin(),
		Login:        middleware.RateLimit(loginLimiter),
	})
	r.Setup()

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
			log.Error("Server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// runMigrations applies every pending migration over its own connection,
// which the migrator closes when done.
func runMigrations(dsn string, log *zap.Logger) error {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}
	}()
	return m.Up()
}

func shutdown(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("Error shutting down "+name, zap.Error(err))
	}
}
