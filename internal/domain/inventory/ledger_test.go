// internal/domain/inventory/ledger_test.go
package inventory

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/erp-backend/internal/config"
	"github.com/your-org/erp-backend/internal/domain/product"
	"github.com/your-org/erp-backend/internal/domain/purchase"
	"github.com/your-org/erp-backend/internal/domain/warehouse"
	"github.com/your-org/erp-backend/internal/infrastructure/cache"
	"github.com/your-org/erp-backend/internal/pkg/apperrors"
	"github.com/your-org/erp-backend/internal/pkg/notify"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// One connection so every session sees the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&product.Product{},
		&warehouse.Warehouse{},
		&purchase.Supplier{},
		&purchase.PurchaseOrder{},
		&purchase.PurchaseOrderItem{},
		&InventoryItem{},
		&InventoryMovement{},
		&notify.Notification{},
	))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Cache:     config.CacheConfig{ListTTL: 0},
		Inventory: config.InventoryConfig{LowStockThreshold: 0},
	}
}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// recordingCache captures invalidation patterns while bypassing reads
type recordingCache struct {
	cache.Null
	patterns []string
}

func (c *recordingCache) Invalidate(ctx context.Context, patterns ...string) {
	c.patterns = append(c.patterns, patterns...)
}

// recordingNotifier captures raised notifications
type recordingNotifier struct {
	sent []*notify.Notification
}

func (n *recordingNotifier) Notify(ctx context.Context, msg *notify.Notification) {
	n.sent = append(n.sent, msg)
}

func seedProduct(t *testing.T, db *gorm.DB, sku string) *product.Product {
	t.Helper()
	p := &product.Product{SKU: sku, Name: "Product " + sku, Price: 1000, IsActive: true}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedWarehouse(t *testing.T, db *gorm.DB, code string) *warehouse.Warehouse {
	t.Helper()
	wh := &warehouse.Warehouse{Name: "Warehouse " + code, Code: code, IsActive: true}
	require.NoError(t, db.Create(wh).Error)
	return wh
}

func seedItem(t *testing.T, db *gorm.DB, productID, warehouseID uint, onHand, reserved, damaged int) *InventoryItem {
	t.Helper()
	item := &InventoryItem{
		ProductID:   productID,
		WarehouseID: warehouseID,
		OnHand:      onHand,
		Reserved:    reserved,
		Damaged:     damaged,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func reloadItem(t *testing.T, db *gorm.DB, id uint) *InventoryItem {
	t.Helper()
	var item InventoryItem
	require.NoError(t, db.First(&item, id).Error)
	return &item
}

func TestFindItemNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := FindItem(db, 1, 1)
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestApplyDeltaAddAndSubtract(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "SKU-1")
	wh := seedWarehouse(t, db, "WH-A")
	item := seedItem(t, db, p.ID, wh.ID, 10, 0, 0)

	require.NoError(t, ApplyDelta(db, p.ID, wh.ID, BucketOnHand, 5, DirectionAdd))
	assert.Equal(t, 15, reloadItem(t, db, item.ID).OnHand)

	require.NoError(t, ApplyDelta(db, p.ID, wh.ID, BucketOnHand, 15, DirectionSubtract))
	assert.Equal(t, 0, reloadItem(t, db, item.ID).OnHand)
}

func TestApplyDeltaFloorsAtZero(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "SKU-1")
	wh := seedWarehouse(t, db, "WH-A")
	item := seedItem(t, db, p.ID, wh.ID, 3, 0, 0)

	err := ApplyDelta(db, p.ID, wh.ID, BucketOnHand, 4, DirectionSubtract)
	require.Error(t, err)
	assert.Equal(t, "quantity cannot be negative", err.Error())

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)

	// Rejected delta leaves the counter untouched
	assert.Equal(t, 3, reloadItem(t, db, item.ID).OnHand)
}

func TestApplyDeltaRejectsUnknownBucket(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "SKU-1")
	wh := seedWarehouse(t, db, "WH-A")
	seedItem(t, db, p.ID, wh.ID, 3, 0, 0)

	err := ApplyDelta(db, p.ID, wh.ID, Bucket("available"), 1, DirectionAdd)
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)
}

func TestApplyDeltaTouchesOnlyTargetBucket(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "SKU-1")
	wh := seedWarehouse(t, db, "WH-A")
	item := seedItem(t, db, p.ID, wh.ID, 10, 2, 1)

	require.NoError(t, ApplyDelta(db, p.ID, wh.ID, BucketDamaged, 4, DirectionAdd))

	got := reloadItem(t, db, item.ID)
	assert.Equal(t, 10, got.OnHand)
	assert.Equal(t, 2, got.Reserved)
	assert.Equal(t, 5, got.Damaged)
}

func TestRecomputeProductStockSumsAcrossWarehouses(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "SKU-1")
	whA := seedWarehouse(t, db, "WH-A")
	whB := seedWarehouse(t, db, "WH-B")
	seedItem(t, db, p.ID, whA.ID, 7, 5, 0)
	seedItem(t, db, p.ID, whB.ID, 4, 0, 9)

	require.NoError(t, RecomputeProductStock(db, p.ID))

	var got product.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	// Reserved and damaged never count toward the aggregate
	assert.Equal(t, 11, got.Quantity)
}

func TestCheckLowStockNotifiesBelowThreshold(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "SKU-1")
	require.NoError(t, db.Model(p).UpdateColumn("quantity", 3).Error)

	notifier := &recordingNotifier{}
	CheckLowStock(context.Background(), db, notifier, p.ID, 5)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "Low Stock: "+p.Name, notifier.sent[0].Title)
	assert.Equal(t, notify.ImportanceHigh, notifier.sent[0].Importance)
}

func TestCheckLowStockQuietAtThreshold(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "SKU-1")
	require.NoError(t, db.Model(p).UpdateColumn("quantity", 5).Error)

	notifier := &recordingNotifier{}
	CheckLowStock(context.Background(), db, notifier, p.ID, 5)

	assert.Empty(t, notifier.sent)
}
