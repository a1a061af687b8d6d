package main

import (
	"net/http"

	"inventory-service/internal/handler"
	mid "inventory-service/internal/middleware"
	"inventory-service/internal/model"
	"inventory-service/internal/order"
	"inventory-service/internal/stock"
	"inventory-service/pkg/config"
	"inventory-service/pkg/database"
	"inventory-service/pkg/jwtutil"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting inventory-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize metrics
	prometheus.InitMetrics(appConfig)

	// Initialize database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Run migrations
	err = database.MigrateModels(
		&model.User{},
		&model.Product{},
		&model.Warehouse{},
		&model.Supplier{},
		&model.StockLevel{},
		&model.PurchaseOrder{},
		&model.ClientOrder{},
		&model.Sale{},
	)
	if err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Wire the core services
	db := database.GetDB()
	jwtUtil := jwtutil.NewJWTUtil(&appConfig.JWT)
	ledger := stock.NewLedger(db)
	workflow := order.NewWorkflow(db, ledger, &handler.LowStockNotifier{Log: log})
	h := handler.New(db, ledger, workflow, jwtUtil)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	authenticate := mid.Authenticate(jwtUtil)

	api := e.Group("/api")

	// Auth routes
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	// Product routes - listing is public, mutations are admin-only
	api.GET("/products", h.ListProducts)
	api.POST("/products", h.CreateProduct, authenticate, mid.AdminOnly)
	api.PUT("/products/:id", h.UpdateProduct, authenticate, mid.AdminOnly)
	api.DELETE("/products/:id", h.DeleteProduct, authenticate, mid.AdminOnly)

	// Warehouse routes
	api.GET("/warehouses", h.ListWarehouses)
	api.POST("/warehouses", h.CreateWarehouse, authenticate, mid.AdminOnly)
	api.PUT("/warehouses/:id", h.UpdateWarehouse, authenticate, mid.AdminOnly)
	api.DELETE("/warehouses/:id", h.DeleteWarehouse, authenticate, mid.AdminOnly)

	// Supplier routes
	api.GET("/suppliers", h.ListSuppliers)
	api.POST("/suppliers", h.CreateSupplier, authenticate, mid.AdminOnly)
	api.PUT("/suppliers/:id", h.UpdateSupplier, authenticate, mid.AdminOnly)
	api.DELETE("/suppliers/:id", h.DeleteSupplier, authenticate, mid.AdminOnly)

	// Inventory routes
	api.GET("/inventory", h.ListInventory)
	api.PUT("/inventory/:id/stock", h.UpdateStock, authenticate, mid.AdminOnly)
	api.GET("/inventory/low", h.ListLowStock, authenticate, mid.AdminOnly)

	// Client order routes
	api.POST("/client-orders", h.PlaceClientOrder, authenticate)
	api.GET("/client-orders/user/:userId", h.ListClientOrdersByUser, authenticate)
	api.GET("/client-orders/all", h.ListAllClientOrders, authenticate, mid.AdminOnly)

	// Purchase order routes
	api.GET("/orders", h.ListPurchaseOrders)
	api.POST("/orders", h.CreatePurchaseOrder, authenticate, mid.AdminOnly)
	api.PUT("/orders/:id/status", h.SetPurchaseOrderStatus, authenticate, mid.AdminOnly)
	api.PUT("/orders/:id/receive", h.ReceivePurchaseOrder, authenticate, mid.AdminOnly)

	// Sales routes
	api.GET("/sales", h.ListSales, authenticate, mid.AdminOnly)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
