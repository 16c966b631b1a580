// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"telstock/internal/domain/allocation"
	"telstock/internal/domain/auth"
	"telstock/internal/domain/catalogs/accessory"
	"telstock/internal/domain/catalogs/product"
	"telstock/internal/domain/hierarchy"
	"telstock/internal/domain/inventory"
	"telstock/internal/domain/sales"
	"telstock/internal/infrastructure/http/v1/handlers"
	"telstock/internal/infrastructure/http/v1/middleware"
	"telstock/internal/infrastructure/metrics"
	"telstock/internal/infrastructure/storage/postgres"
	"telstock/pkg/logger"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	Logger *logger.Logger

	Pool             *postgres.Pool
	IdempotencyStore *postgres.IdempotencyStore
	Metrics          *metrics.Metrics

	JWTValidator middleware.JWTValidator

	AuthService      *auth.Service
	UserService      *hierarchy.Service
	ProductService   *product.Service
	AccessoryService *accessory.Service
	InventoryService *inventory.Service
	SalesService     *sales.Service
	Engine           *allocation.Engine
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware, order matters.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
		router.GET("/metrics", cfg.Metrics.Handler())
	}
	router.Use(middleware.ErrorHandler())

	// Health endpoints, no auth.
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()
	admin := middleware.RequireRole(string(hierarchy.RoleAdmin))

	v1 := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(base, cfg.AuthService, cfg.UserService)
		v1.POST("/auth/login", authHandler.Login)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))
		if cfg.IdempotencyStore != nil {
			protected.Use(middleware.Idempotency(cfg.IdempotencyStore))
		}

		protected.GET("/auth/me", authHandler.Me)

		userHandler := handlers.NewUserHandler(base, cfg.UserService)
		users := protected.Group("/users")
		{
			users.GET("", userHandler.List)
			users.POST("", admin, userHandler.Create)
			users.GET("/:id", userHandler.Get)
			users.PUT("/:id", admin, userHandler.Update)
			users.GET("/:id/subordinates", userHandler.Subordinates)
		}

		productHandler := handlers.NewProductHandler(base, cfg.ProductService)
		products := protected.Group("/catalog/products")
		{
			products.GET("", productHandler.List)
			products.POST("", admin, productHandler.Create)
			products.GET("/:id", productHandler.Get)
			products.PUT("/:id", admin, productHandler.Update)
			products.DELETE("/:id", admin, productHandler.Delete)
		}

		accessoryHandler := handlers.NewAccessoryHandler(base, cfg.AccessoryService, cfg.Engine)
		protected.GET("/catalog/accessories", accessoryHandler.List)
		protected.POST("/catalog/accessories", admin, accessoryHandler.Create)
		accessories := protected.Group("/accessories")
		{
			accessories.POST("/allocations", accessoryHandler.Allocate)
			accessories.POST("/recalls", accessoryHandler.Recall)
			accessories.GET("/stock", accessoryHandler.Stock)
		}

		inventoryHandler := handlers.NewInventoryHandler(base, cfg.InventoryService, cfg.Engine, cfg.UserService)
		inv := protected.Group("/inventory")
		{
			inv.POST("/imeis", admin, inventoryHandler.Register)
			inv.POST("/imeis/bulk", admin, inventoryHandler.BulkRegister)
			inv.GET("/imeis", inventoryHandler.List)
			inv.GET("/imeis/:imei", inventoryHandler.Get)
			inv.PATCH("/imeis/:imei/status", admin, inventoryHandler.UpdateStatus)
			inv.GET("/my-stock", inventoryHandler.MyStock)
			inv.GET("/imeis/:imei/journey", inventoryHandler.Journey)
		}

		allocationHandler := handlers.NewAllocationHandler(base, cfg.Engine, cfg.UserService, cfg.Metrics)
		allocations := protected.Group("/allocations")
		{
			allocations.POST("", allocationHandler.Allocate)
			allocations.POST("/bulk", allocationHandler.BulkAllocate)
			allocations.POST("/recall", allocationHandler.Recall)
			allocations.POST("/recall/bulk", allocationHandler.BulkRecall)
			allocations.GET("", allocationHandler.List)
			allocations.GET("/eligible-recipients", allocationHandler.EligibleRecipients)
			allocations.GET("/recallable", allocationHandler.Recallable)
		}

		saleHandler := handlers.NewSaleHandler(base, cfg.SalesService, cfg.Metrics)
		salesGroup := protected.Group("/sales")
		{
			salesGroup.POST("", saleHandler.Create)
			salesGroup.GET("", saleHandler.List)
			salesGroup.GET("/commissions", saleHandler.Commissions)
		}
	}

	return router
}
