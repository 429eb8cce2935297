package router

import (
	"github.com/gin-gonic/gin"
	"github.com/pressureflow/backend/internal/interfaces/http/handler"
)

// Handlers holds the HTTP handlers served under the API group
type Handlers struct {
	Auth      *handler.AuthHandler
	Customer  *handler.CustomerHandler
	Catalog   *handler.CatalogHandler
	Estimate  *handler.EstimateHandler
	Inventory *handler.InventoryHandler
	Settings  *handler.SettingsHandler
	Dashboard *handler.DashboardHandler
	System    *handler.SystemHandler
}

// Guards are the access checks placed in front of routes.
type Guards struct {
	// Auth rejects requests without a valid bearer token
	Auth gin.HandlerFunc
	// OptionalAuth reads a bearer token when one is sent
	OptionalAuth gin.HandlerFunc
	// DocumentAuth is Auth that also accepts ?token=, for PDFs opened in a browser tab
	DocumentAuth gin.HandlerFunc
	Admin        gin.HandlerFunc
	// Login throttles credential endpoints
	Login gin.HandlerFunc
}

// RegisterAPI adds every PressureFlow route group to r
func RegisterAPI(r *Router, h Handlers, g Guards) {
	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/login", g.Login, h.Auth.Login)
	auth.POST("/register", g.Login, g.OptionalAuth, h.Auth.Register)
	auth.POST("/logout", g.Auth, h.Auth.Logout)
	auth.GET("/me", g.Auth, h.Auth.GetCurrentUser)
	auth.GET("/users", g.Auth, g.Admin, h.Auth.ListUsers)

	customers := NewDomainGroup("customers", "/customers").Use(g.Auth)
	customers.GET("", h.Customer.List)
	customers.POST("", h.Customer.Create)
	customers.GET("/:id", h.Customer.GetByID)
	customers.PUT("/:id", h.Customer.Update)
	customers.DELETE("/:id", h.Customer.Delete)

	services := NewDomainGroup("services", "/services").Use(g.Auth)
	services.GET("", h.Catalog.ListServices)
	services.GET("/:id", h.Catalog.GetService)
	services.POST("", g.Admin, h.Catalog.CreateService)
	services.PUT("/:id", g.Admin, h.Catalog.UpdateService)
	services.DELETE("/:id", g.Admin, h.Catalog.DeleteService)

	upsells := NewDomainGroup("upsells", "/upsells").Use(g.Auth)
	upsells.GET("", h.Catalog.ListUpsells)
	upsells.POST("", g.Admin, h.Catalog.CreateUpsell)
	upsells.PUT("/:id", g.Admin, h.Catalog.UpdateUpsell)
	upsells.DELETE("/:id", g.Admin, h.Catalog.DeleteUpsell)

	estimates := NewDomainGroup("estimates", "/estimates").Use(g.Auth)
	estimates.GET("", h.Estimate.List)
	estimates.POST("", h.Estimate.Create)
	estimates.GET("/:id", h.Estimate.GetByID)
	estimates.PUT("/:id", h.Estimate.Update)
	estimates.POST("/:id/sign", h.Estimate.Sign)
	estimates.POST("/:id/complete", h.Estimate.Complete)
	estimates.POST("/:id/photos", h.Estimate.UploadPhoto)

	documents := NewDomainGroup("documents", "/estimates").Use(g.DocumentAuth)
	documents.GET("/:id/pdf", h.Estimate.DownloadPDF)

	photos := NewDomainGroup("photos", "/photos").Use(g.Auth)
	photos.GET("/:id", h.Estimate.GetPhoto)
	photos.DELETE("/:id", h.Estimate.DeletePhoto)

	inventory := NewDomainGroup("inventory", "/inventory").Use(g.Auth)
	inventory.GET("", h.Inventory.List)
	inventory.GET("/low-stock", h.Inventory.LowStock)
	inventory.GET("/export", h.Inventory.Export)
	inventory.GET("/:id", h.Inventory.GetByID)
	inventory.POST("", g.Admin, h.Inventory.Create)
	inventory.PUT("/:id", g.Admin, h.Inventory.Update)
	inventory.POST("/:id/adjust", h.Inventory.Adjust)
	inventory.GET("/:id/logs", h.Inventory.Logs)

	settings := NewDomainGroup("settings", "/settings").Use(g.Auth)
	settings.GET("", h.Settings.Get)
	settings.PUT("", g.Admin, h.Settings.Update)

	dashboard := NewDomainGroup("dashboard", "/dashboard").Use(g.Auth)
	dashboard.GET("", h.Dashboard.Get)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)
	system.GET("/ping", h.System.Ping)

	r.Register(auth).
		Register(customers).
		Register(services).
		Register(upsells).
		Register(estimates).
		Register(documents).
		Register(photos).
		Register(inventory).
		Register(settings).
		Register(dashboard).
		Register(system)
}
