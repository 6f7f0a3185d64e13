// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/erp-backend/internal/config"
	"github.com/your-org/erp-backend/internal/domain/inventory"
	"github.com/your-org/erp-backend/internal/domain/product"
	"github.com/your-org/erp-backend/internal/domain/purchase"
	"github.com/your-org/erp-backend/internal/domain/transaction"
	"github.com/your-org/erp-backend/internal/domain/user"
	"github.com/your-org/erp-backend/internal/domain/warehouse"
	"github.com/your-org/erp-backend/internal/infrastructure/cache"
	"github.com/your-org/erp-backend/internal/interfaces/http/handlers"
	"github.com/your-org/erp-backend/internal/interfaces/http/middleware"
	"github.com/your-org/erp-backend/internal/pkg/logger"
	"github.com/your-org/erp-backend/internal/pkg/notify"
	"gorm.io/gorm"
)

// Dependencies holds everything the route handlers need
type Dependencies struct {
	DB       *gorm.DB
	Config   *config.Config
	Cache    cache.Cache
	Notifier notify.Notifier
	Log      *logrus.Logger
}

// SetupRoutes wires all API routes under the given router group
func SetupRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	userService := user.NewService(deps.DB, deps.Config, logger.ForComponent(deps.Log, "user"))
	productService := product.NewService(deps.DB, deps.Config, deps.Cache, logger.ForComponent(deps.Log, "product"))
	warehouseService := warehouse.NewService(deps.DB, deps.Config, deps.Cache, logger.ForComponent(deps.Log, "warehouse"))
	purchaseService := purchase.NewService(deps.DB, deps.Config, deps.Cache, logger.ForComponent(deps.Log, "purchase"))
	itemService := inventory.NewItemService(deps.DB, deps.Config, deps.Cache, deps.Notifier, logger.ForComponent(deps.Log, "inventory"))
	movementService := inventory.NewMovementService(deps.DB, deps.Config, deps.Cache, deps.Notifier, logger.ForComponent(deps.Log, "inventory"))
	transactionService := transaction.NewService(deps.DB, deps.Config, deps.Cache, deps.Notifier, logger.ForComponent(deps.Log, "transaction"))

	authHandler := handlers.NewAuthHandler(userService, deps.Config)
	productHandler := handlers.NewProductHandler(productService, deps.Config)
	warehouseHandler := handlers.NewWarehouseHandler(warehouseService, deps.Config)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService, deps.Config)
	inventoryHandler := handlers.NewInventoryHandler(itemService, movementService, deps.Config)
	transactionHandler := handlers.NewTransactionHandler(transactionService, deps.Config)

	cfg := deps.Config

	// Public auth endpoints
	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/me", authHandler.GetProfile)
		}
	}

	// Product catalog
	products := rg.Group("/products")
	products.Use(middleware.AuthMiddleware(cfg))
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)

		admin := products.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("", productHandler.CreateProduct)
			admin.PUT("/:id", productHandler.UpdateProduct)
		}
	}

	// Warehouses
	warehouses := rg.Group("/warehouses")
	warehouses.Use(middleware.AuthMiddleware(cfg))
	{
		warehouses.GET("", warehouseHandler.GetWarehouses)
		warehouses.GET("/default", warehouseHandler.GetDefaultWarehouse)
		warehouses.GET("/:id", warehouseHandler.GetWarehouse)

		admin := warehouses.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("", warehouseHandler.CreateWarehouse)
			admin.PUT("/:id", warehouseHandler.UpdateWarehouse)
			admin.DELETE("/:id", warehouseHandler.DeleteWarehouse)
		}
	}

	// Suppliers
	suppliers := rg.Group("/suppliers")
	suppliers.Use(middleware.AuthMiddleware(cfg))
	{
		suppliers.GET("", purchaseHandler.GetSuppliers)
		suppliers.GET("/:id", purchaseHandler.GetSupplier)
		suppliers.POST("", purchaseHandler.CreateSupplier)
		suppliers.PUT("/:id", purchaseHandler.UpdateSupplier)
		suppliers.DELETE("/:id", purchaseHandler.DeleteSupplier)
	}

	// Purchase orders
	purchaseOrders := rg.Group("/purchase-orders")
	purchaseOrders.Use(middleware.AuthMiddleware(cfg))
	{
		purchaseOrders.GET("", purchaseHandler.GetOrders)
		purchaseOrders.GET("/:id", purchaseHandler.GetOrder)
		purchaseOrders.POST("", purchaseHandler.CreateOrder)
		purchaseOrders.PUT("/:id", purchaseHandler.UpdateOrder)
		purchaseOrders.DELETE("/:id", purchaseHandler.DeleteOrder)
	}

	// Inventory items and stock movements
	inv := rg.Group("/inventory")
	inv.Use(middleware.AuthMiddleware(cfg))
	{
		inv.GET("/items", inventoryHandler.GetItems)
		inv.GET("/items/:id", inventoryHandler.GetItem)
		inv.POST("/items", inventoryHandler.CreateItem)
		inv.PUT("/items/:id", inventoryHandler.UpdateItem)
		inv.DELETE("/items/:id", inventoryHandler.DeleteItem)

		inv.GET("/movements", inventoryHandler.GetMovements)
		inv.GET("/movements/:id", inventoryHandler.GetMovement)
		inv.POST("/movements", inventoryHandler.CreateMovement)
	}

	// Sales and returns
	transactions := rg.Group("/transactions")
	transactions.Use(middleware.AuthMiddleware(cfg))
	{
		transactions.GET("", transactionHandler.GetTransactions)
		transactions.GET("/:id", transactionHandler.GetTransaction)
		transactions.POST("/sales", transactionHandler.CreateSale)
		transactions.POST("/returns", transactionHandler.CreateReturn)
	}
}
