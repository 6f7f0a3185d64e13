// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/erp-backend/internal/domain/inventory"
	"github.com/your-org/erp-backend/internal/domain/order"
	"github.com/your-org/erp-backend/internal/domain/product"
	"github.com/your-org/erp-backend/internal/domain/purchase"
	"github.com/your-org/erp-backend/internal/domain/transaction"
	"github.com/your-org/erp-backend/internal/domain/user"
	"github.com/your-org/erp-backend/internal/domain/warehouse"
	"github.com/your-org/erp-backend/internal/pkg/notify"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log *logrus.Entry
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log *logrus.Entry) *Migration {
	return &Migration{
		db:  db,
		log: log,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("running database auto-migrations")

	// Models in dependency order
	models := []interface{}{
		&user.User{},

		&product.Product{},
		&warehouse.Warehouse{},

		&purchase.Supplier{},
		&purchase.PurchaseOrder{},
		&purchase.PurchaseOrderItem{},

		&inventory.InventoryItem{},
		&inventory.InventoryMovement{},

		&order.Order{},
		&order.OrderItem{},

		&transaction.Transaction{},
		&transaction.TransactionItem{},

		&notify.Notification{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Info("database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	m.log.Info("creating additional database indexes")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_sku ON products(sku)",
		"CREATE INDEX IF NOT EXISTS idx_products_active_created ON products(is_active, created_at DESC)",

		// Inventory indexes
		"CREATE INDEX IF NOT EXISTS idx_inventory_items_warehouse ON inventory_items(warehouse_id)",
		"CREATE INDEX IF NOT EXISTS idx_inventory_movements_product ON inventory_movements(product_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_inventory_movements_type ON inventory_movements(type)",
		"CREATE INDEX IF NOT EXISTS idx_inventory_movements_po ON inventory_movements(purchase_order_id)",

		// Purchase order indexes
		"CREATE INDEX IF NOT EXISTS idx_purchase_orders_status ON purchase_orders(status)",
		"CREATE INDEX IF NOT EXISTS idx_purchase_orders_supplier ON purchase_orders(supplier_id)",
		"CREATE INDEX IF NOT EXISTS idx_purchase_orders_created_at ON purchase_orders(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_purchase_order_items_order ON purchase_order_items(purchase_order_id)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_order_number ON orders(order_number)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",

		// Transaction indexes
		"CREATE INDEX IF NOT EXISTS idx_transactions_type ON transactions(type)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_transaction_items_transaction ON transaction_items(transaction_id)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.log.WithError(err).Warn("failed to create index")
			failCount++
		} else {
			successCount++
		}
	}

	m.log.WithFields(logrus.Fields{"created": successCount, "failed": failCount}).Info("index creation finished")
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	m.log.Info("seeding initial data")

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedDefaultWarehouse(); err != nil {
		return fmt.Errorf("failed to seed default warehouse: %w", err)
	}

	m.log.Info("initial data seeded")
	return nil
}

func (m *Migration) seedAdminUser() error {
	var existing user.User
	result := m.db.Where("email = ?", "admin@example.com").First(&existing)
	if result.Error == nil {
		m.log.WithField("user_id", existing.ID).Info("admin user already exists")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := user.User{
		Email:     "admin@example.com",
		Password:  string(hashedPassword),
		FirstName: "Admin",
		LastName:  "User",
		IsActive:  true,
		IsAdmin:   true,
	}

	if err := m.db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	m.log.WithField("user_id", adminUser.ID).Info("created admin user")
	return nil
}

func (m *Migration) seedDefaultWarehouse() error {
	var existing warehouse.Warehouse
	result := m.db.Where("is_default = ?", true).First(&existing)
	if result.Error == nil {
		m.log.WithField("warehouse_id", existing.ID).Info("default warehouse already exists")
		return nil
	}

	wh := warehouse.Warehouse{
		Name:      "Main Warehouse",
		Code:      "MAIN",
		Location:  "Head Office",
		IsActive:  true,
		IsDefault: true,
	}

	if err := m.db.Create(&wh).Error; err != nil {
		return fmt.Errorf("failed to create default warehouse: %w", err)
	}

	m.log.WithField("warehouse_id", wh.ID).Info("created default warehouse")
	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	m.log.Warn("dropping all database tables")

	// Reverse dependency order
	tables := []string{
		"transaction_items",
		"transactions",
		"order_items",
		"orders",
		"inventory_movements",
		"inventory_items",
		"purchase_order_items",
		"purchase_orders",
		"suppliers",
		"warehouses",
		"products",
		"notifications",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			m.log.WithError(err).WithField("table", table).Warn("failed to drop table")
		}
	}

	return nil
}

// GetTableInfo logs record counts for all public tables
func (m *Migration) GetTableInfo() error {
	var tables []string

	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		m.log.WithFields(logrus.Fields{"table": table, "records": count}).Info("table info")
	}

	return nil
}
