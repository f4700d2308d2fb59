// Package router sets up the API routes for the application.
// This is used in server mode; for CLI-only usage the API layer is not required.
package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/qrforge/qrforge/consts"
	"github.com/qrforge/qrforge/internal/api/handler"
	"github.com/qrforge/qrforge/internal/api/middleware"
	"github.com/qrforge/qrforge/internal/config"
	"github.com/qrforge/qrforge/internal/store"
)

// Setup configures all API routes
func Setup(r *gin.Engine, cfg *config.BootstrapConfig, s store.Store) {
	SetupWithConfigPath(r, cfg, config.BootstrapConfigPath, s)
}

// SetupWithConfigPath configures all API routes with a custom config path
func SetupWithConfigPath(r *gin.Engine, cfg *config.BootstrapConfig, configPath string, s store.Store) {
	// Apply global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger(&middleware.LoggerConfig{
		AccessLog: cfg.Logging.AccessLog,
	}))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(cfg.Server.Debug))
	r.Use(middleware.Metrics())

	// Apply OpenTelemetry tracing middleware
	r.Use(otelgin.Middleware(consts.ServiceName))

	// Health check endpoint (public)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := r.Group("/api/v1")

	// ============== Public routes ==============

	adminHandler := handler.NewAdminHandler(s)

	// App meta endpoint (public - used by the UI before login)
	v1.GET("/meta", adminHandler.GetAppMeta)
	v1.GET("/status", adminHandler.GetStatus)

	// Theme listing (public - used by the UI for theme selection)
	themeHandler := handler.NewThemeHandler()
	v1.GET("/themes", themeHandler.ListThemes)

	// ============== Auth routes ==============

	// Initialize auth handler with config path for password setup
	authHandler := handler.NewAuthHandlerWithConfigPath(cfg, configPath)

	// Auth routes (login and setup are public, me requires auth)
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		// Password setup routes (public - only available when password is not set)
		auth.GET("/setup/status", authHandler.GetSetupStatus)
		auth.POST("/setup", authHandler.SetupPassword)
	}
	v1.GET("/auth/me", middleware.JWTAuth(authHandler), authHandler.Me)

	// ============== API routes (protected) ==============

	exportHandler := handler.NewExportHandler(cfg, s)

	// Export routes - protected by JWT authentication
	exports := v1.Group("/exports")
	exports.Use(middleware.JWTAuth(authHandler))
	{
		exports.POST("", exportHandler.CreateExport)
		exports.GET("", exportHandler.ListExports)
		exports.GET("/:id", exportHandler.GetExport)
		exports.GET("/:id/download", exportHandler.DownloadExport)
		exports.DELETE("/:id", exportHandler.DeleteExport)
	}

	// QR code routes - protected by JWT authentication
	qrHandler := handler.NewQRCodeHandler(cfg)
	qrcodes := v1.Group("/qrcodes")
	qrcodes.Use(middleware.JWTAuth(authHandler))
	{
		qrcodes.POST("", qrHandler.Preview)
		qrcodes.POST("/preview", qrHandler.Preview)
		qrcodes.POST("/parse", qrHandler.Parse)
		qrcodes.GET("/content-types", qrHandler.ContentTypes)
	}

	// ============== Admin routes (protected) ==============

	admin := v1.Group("/admin")
	admin.Use(middleware.JWTAuth(authHandler))
	{
		// Auth - me endpoint
		admin.GET("/me", authHandler.Me)

		// Server status
		admin.GET("/status", adminHandler.GetStatus)

		// Stats
		admin.GET("/stats", adminHandler.GetStats)

		// Settings management (database-backed runtime settings)
		settingsHandler := handler.NewSettingsHandler(s)
		admin.GET("/settings", settingsHandler.GetAllSettings)
		admin.GET("/settings/:category", settingsHandler.GetSettingsByCategory)
		admin.PUT("/settings/:category", settingsHandler.UpdateSettingsByCategory)
	}
}
