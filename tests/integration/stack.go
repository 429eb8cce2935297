//go:build integration

package integration

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
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
	"github.com/pressureflow/backend/internal/infrastructure/persistence"
	"github.com/pressureflow/backend/internal/infrastructure/printing"
	"github.com/pressureflow/backend/internal/infrastructure/storage"
	"github.com/pressureflow/backend/internal/interfaces/http/handler"
	"github.com/pressureflow/backend/internal/interfaces/http/middleware"
	"github.com/pressureflow/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// Stack is the application wired the way cmd/server wires it, minus
// Redis and telemetry.
type Stack struct {
	Auth      *identityapp.AuthService
	Customers *partnerapp.CustomerService
	Catalog   *catalogapp.CatalogService
	Inventory *inventoryapp.InventoryService
	Estimates *estimateapp.EstimateService
	Settings  *settingsapp.SettingsService
	Dashboard *dashboardapp.DashboardService
	Storage   *storage.MemoryPhotoStorage
	Engine    *gin.Engine
}

func newStack(t *testing.T, tdb *TestDB) *Stack {
	t.Helper()
	log := zap.NewNop()
	db := tdb.DB

	serviceRepo := persistence.NewGormServiceRepository(db)
	upsellRepo := persistence.NewGormUpsellItemRepository(db)
	customerRepo := persistence.NewGormCustomerRepository(db)
	estimateRepo := persistence.NewGormEstimateRepository(db)
	itemRepo := persistence.NewGormInventoryItemRepository(db)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:     "integration-secret-at-least-32-chars",
		Expiration: time.Hour,
		Issuer:     "pressureflow-integration",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	photoStorage := storage.NewMemoryPhotoStorage("")

	s := &Stack{Storage: photoStorage}
	s.Auth = identityapp.NewAuthService(persistence.NewGormUserRepository(db), jwtService, blacklist, log)
	s.Customers = partnerapp.NewCustomerService(customerRepo, estimateRepo, log)
	s.Catalog = catalogapp.NewCatalogService(serviceRepo, upsellRepo, itemRepo, log)
	s.Settings = settingsapp.NewSettingsService(persistence.NewGormSettingsRepository(db), cache.NewInMemorySettingsCache(time.Minute), log)

	ledger := inventoryapp.NewLedger(persistence.NewGormTransactionScope(db), log)
	s.Inventory = inventoryapp.NewInventoryService(itemRepo, persistence.NewGormInventoryLogRepository(db), ledger, export.NewWorkbookExporter(), log)

	cfg := estimateapp.DefaultConfig()
	cfg.CompletionRetries = 3
	s.Estimates = estimateapp.NewEstimateService(
		estimateapp.Repositories{
			Estimates:   estimateRepo,
			Photos:      persistence.NewGormPhotoRepository(db),
			Customers:   customerRepo,
			Services:    serviceRepo,
			UpsellItems: upsellRepo,
		},
		ledger,
		printing.NewPDFRenderer(log),
		s.Settings,
		photoStorage,
		cfg,
		log,
	)
	s.Dashboard = dashboardapp.NewDashboardService(estimateRepo, customerRepo, itemRepo, time.UTC, log)

	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
	s.Engine = gin.New()
	s.Engine.Use(middleware.RequestID())

	jwtConfig := middleware.JWTMiddlewareConfig{JWTService: jwtService, TokenBlacklist: blacklist}
	optional := jwtConfig
	optional.Optional = true
	document := jwtConfig
	document.AllowQueryToken = true

	database := &persistence.Database{DB: db}
	system := handler.NewSystemHandler(database, "integration")
	r := router.NewRouter(s.Engine, router.WithHealthCheck("/health", system.Health))
	router.RegisterAPI(r, router.Handlers{
		Auth:      handler.NewAuthHandler(s.Auth),
		Customer:  handler.NewCustomerHandler(s.Customers),
		Catalog:   handler.NewCatalogHandler(s.Catalog),
		Estimate:  handler.NewEstimateHandler(s.Estimates),
		Inventory: handler.NewInventoryHandler(s.Inventory),
		Settings:  handler.NewSettingsHandler(s.Settings),
		Dashboard: handler.NewDashboardHandler(s.Dashboard),
		System:    system,
	}, router.Guards{
		Auth:         middleware.JWTAuthMiddlewareWithConfig(jwtConfig),
		OptionalAuth: middleware.JWTAuthMiddlewareWithConfig(optional),
		DocumentAuth: middleware.JWTAuthMiddlewareWithConfig(document),
		Admin:        middleware.RequireAdmin(),
		Login:        func(c *gin.Context) { c.Next() },
	})
	r.Setup()

	return s
}
