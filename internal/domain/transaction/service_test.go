// internal/domain/transaction/service_test.go
package transaction

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/erp-backend/internal/config"
	"github.com/your-org/erp-backend/internal/domain/inventory"
	"github.com/your-org/erp-backend/internal/domain/order"
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

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&product.Product{},
		&warehouse.Warehouse{},
		&purchase.Supplier{},
		&purchase.PurchaseOrder{},
		&purchase.PurchaseOrderItem{},
		&order.Order{},
		&order.OrderItem{},
		&inventory.InventoryItem{},
		&inventory.InventoryMovement{},
		&Transaction{},
		&TransactionItem{},
		&notify.Notification{},
	))
	return db
}

type recordingCache struct {
	cache.Null
	patterns []string
}

func (c *recordingCache) Invalidate(ctx context.Context, patterns ...string) {
	c.patterns = append(c.patterns, patterns...)
}

type recordingNotifier struct {
	sent []*notify.Notification
}

func (n *recordingNotifier) Notify(ctx context.Context, msg *notify.Notification) {
	n.sent = append(n.sent, msg)
}

func newService(db *gorm.DB, cfg *config.Config) (*Service, *recordingCache, *recordingNotifier) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	c := &recordingCache{}
	n := &recordingNotifier{}
	return NewService(db, cfg, c, n, logrus.NewEntry(l)), c, n
}

func testConfig() *config.Config {
	return &config.Config{
		Cache:     config.CacheConfig{ListTTL: 0},
		Inventory: config.InventoryConfig{LowStockThreshold: 0},
	}
}

func seedProduct(t *testing.T, db *gorm.DB, sku string, price int64) *product.Product {
	t.Helper()
	p := &product.Product{SKU: sku, Name: "Product " + sku, Price: price, IsActive: true}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedWarehouse(t *testing.T, db *gorm.DB) *warehouse.Warehouse {
	t.Helper()
	wh := &warehouse.Warehouse{Name: "Main", Code: "MAIN", IsActive: true}
	require.NoError(t, db.Create(wh).Error)
	return wh
}

func seedStock(t *testing.T, db *gorm.DB, productID, warehouseID uint, onHand int) *inventory.InventoryItem {
	t.Helper()
	item := &inventory.InventoryItem{ProductID: productID, WarehouseID: warehouseID, OnHand: onHand}
	require.NoError(t, db.Create(item).Error)
	return item
}

var orderSeq int

func seedOrder(t *testing.T, db *gorm.DB, total int64, lines ...order.OrderItem) *order.Order {
	t.Helper()
	orderSeq++
	o := &order.Order{
		OrderNumber: fmt.Sprintf("ORD-%04d", orderSeq),
		Status:      order.OrderStatusCompleted,
		TotalAmount: total,
		Items:       lines,
	}
	require.NoError(t, db.Create(o).Error)
	return o
}

func onHand(t *testing.T, db *gorm.DB, itemID uint) int {
	t.Helper()
	var item inventory.InventoryItem
	require.NoError(t, db.First(&item, itemID).Error)
	return item.OnHand
}

func yearSuffix() string {
	return time.Now().UTC().Format("06")
}

func TestCreateSaleDeductsStock(t *testing.T) {
	db := setupTestDB(t)
	p1 := seedProduct(t, db, "SKU-1", 1000)
	p2 := seedProduct(t, db, "SKU-2", 250)
	wh := seedWarehouse(t, db)
	stock1 := seedStock(t, db, p1.ID, wh.ID, 10)
	stock2 := seedStock(t, db, p2.ID, wh.ID, 10)
	o := seedOrder(t, db, 0,
		order.OrderItem{ProductID: p1.ID, Quantity: 2, Price: 1000},
		order.OrderItem{ProductID: p2.ID, Quantity: 4, Price: 250},
	)

	svc, c, _ := newService(db, testConfig())
	sale, err := svc.CreateSale(context.Background(), &CreateSaleRequest{
		OrderNumber: o.OrderNumber,
		WarehouseID: wh.ID,
	}, 1)
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("TN-%s-0001", yearSuffix()), sale.TransactionNumber)
	assert.Equal(t, TypeSale, sale.Type)
	require.NotNil(t, sale.OrderID)
	assert.Equal(t, o.ID, *sale.OrderID)

	// Total falls back to the sum of the lines when the order carries none
	assert.Equal(t, int64(2*1000+4*250), sale.TotalAmount)

	assert.Equal(t, 8, onHand(t, db, stock1.ID))
	assert.Equal(t, 6, onHand(t, db, stock2.ID))

	// Derived product fields follow the committed sale
	var got product.Product
	require.NoError(t, db.First(&got, p1.ID).Error)
	assert.Equal(t, 8, got.Quantity)
	assert.Equal(t, 2, got.Sold)

	assert.Contains(t, c.patterns, "transactions:all*")
	assert.Contains(t, c.patterns, fmt.Sprintf("product:%d", p1.ID))
}

func TestCreateSaleSequencesNumbers(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "SKU-1", 1000)
	wh := seedWarehouse(t, db)
	seedStock(t, db, p.ID, wh.ID, 100)

	svc, _, _ := newService(db, testConfig())
	for i, want := range []string{"0001", "0002", "0003"} {
		o := seedOrder(t, db, 0, order.OrderItem{ProductID: p.ID, Quantity: 1, Price: 1000})
		sale, err := svc.CreateSale(context.Background(), &CreateSaleRequest{
			OrderNumber: o.OrderNumber,
			WarehouseID: wh.ID,
		}, 1)
		require.NoError(t, err, "sale %d", i)
		assert.Equal(t, fmt.Sprintf("TN-%s-%s", yearSuffix(), want), sale.TransactionNumber)
	}
}

func TestCreateSaleInsufficientStockRollsBack(t *testing.T) {
	db := setupTestDB(t)
	p1 := seedProduct(t, db, "SKU-1", 1000)
	p2 := seedProduct(t, db, "SKU-2", 250)
	wh := seedWarehouse(t, db)
	stock1 := seedStock(t, db, p1.ID, wh.ID, 10)
	stock2 := seedStock(t, db, p2.ID, wh.ID, 3)
	o := seedOrder(t, db, 0,
		order.OrderItem{ProductID: p1.ID, Quantity: 2, Price: 1000},
		order.OrderItem{ProductID: p2.ID, Quantity: 4, Price: 250},
	)

	svc, _, _ := newService(db, testConfig())
	_, err := svc.CreateSale(context.Background(), &CreateSaleRequest{
		OrderNumber: o.OrderNumber,
		WarehouseID: wh.ID,
	}, 1)
	require.Error(t, err)
	assert.Equal(t, "insufficient stock quantity", err.Error())

	// The first line's deduction rolled back with the short one
	assert.Equal(t, 10, onHand(t, db, stock1.ID))
	assert.Equal(t, 3, onHand(t, db, stock2.ID))

	var count int64
	require.NoError(t, db.Model(&Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCreateSaleUnknownOrder(t *testing.T) {
	db := setupTestDB(t)
	wh := seedWarehouse(t, db)

	svc, _, _ := newService(db, testConfig())
	_, err := svc.CreateSale(context.Background(), &CreateSaleRequest{
		OrderNumber: "ORD-MISSING",
		WarehouseID: wh.ID,
	}, 1)
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestCreateReturnRestoresStock(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "SKU-1", 1000)
	wh := seedWarehouse(t, db)
	stock := seedStock(t, db, p.ID, wh.ID, 10)
	o := seedOrder(t, db, 0, order.OrderItem{ProductID: p.ID, Quantity: 4, Price: 1000})

	svc, _, _ := newService(db, testConfig())
	sale, err := svc.CreateSale(context.Background(), &CreateSaleRequest{
		OrderNumber: o.OrderNumber,
		WarehouseID: wh.ID,
	}, 1)
	require.NoError(t, err)
	require.Equal(t, 6, onHand(t, db, stock.ID))

	// The current catalog price must not leak into the return
	require.NoError(t, db.Model(&product.Product{}).Where("id = ?", p.ID).UpdateColumn("price", 9999).Error)

	ret, err := svc.CreateReturn(context.Background(), &CreateReturnRequest{
		TransactionNumber: sale.TransactionNumber,
		Items:             []ReturnItemRequest{{ProductID: p.ID, Quantity: 3}},
	}, 1)
	require.NoError(t, err)

	assert.Equal(t, TypeReturn, ret.Type)
	require.NotNil(t, ret.ReturnOfID)
	assert.Equal(t, sale.ID, *ret.ReturnOfID)
	require.Len(t, ret.Items, 1)
	assert.Equal(t, int64(1000), ret.Items[0].Price)
	assert.Equal(t, int64(3*1000), ret.TotalAmount)

	assert.Equal(t, 9, onHand(t, db, stock.ID))

	// Sold counter reflects the partial return
	var got product.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 1, got.Sold)

	var reloaded Transaction
	require.NoError(t, db.First(&reloaded, sale.ID).Error)
	assert.True(t, reloaded.IsReturned)
}

func TestCreateReturnOnlyOncePerSale(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "SKU-1", 1000)
	wh := seedWarehouse(t, db)
	seedStock(t, db, p.ID, wh.ID, 10)
	o := seedOrder(t, db, 0, order.OrderItem{ProductID: p.ID, Quantity: 4, Price: 1000})

	svc, _, _ := newService(db, testConfig())
	sale, err := svc.CreateSale(context.Background(), &CreateSaleRequest{
		OrderNumber: o.OrderNumber,
		WarehouseID: wh.ID,
	}, 1)
	require.NoError(t, err)

	_, err = svc.CreateReturn(context.Background(), &CreateReturnRequest{
		TransactionNumber: sale.TransactionNumber,
		Items:             []ReturnItemRequest{{ProductID: p.ID, Quantity: 1}},
	}, 1)
	require.NoError(t, err)

	// Even untouched quantities cannot be returned a second time
	_, err = svc.CreateReturn(context.Background(), &CreateReturnRequest{
		TransactionNumber: sale.TransactionNumber,
		Items:             []ReturnItemRequest{{ProductID: p.ID, Quantity: 1}},
	}, 1)
	require.Error(t, err)
	assert.Equal(t, "this sale transaction has already been returned", err.Error())
}

func TestCreateReturnRejectsReturnTransactions(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "SKU-1", 1000)
	wh := seedWarehouse(t, db)
	stock := seedStock(t, db, p.ID, wh.ID, 10)
	o := seedOrder(t, db, 0, order.OrderItem{ProductID: p.ID, Quantity: 4, Price: 1000})

	svc, _, _ := newService(db, testConfig())
	sale, err := svc.CreateSale(context.Background(), &CreateSaleRequest{
		OrderNumber: o.OrderNumber,
		WarehouseID: wh.ID,
	}, 1)
	require.NoError(t, err)

	ret, err := svc.CreateReturn(context.Background(), &CreateReturnRequest{
		TransactionNumber: sale.TransactionNumber,
		Items:             []ReturnItemRequest{{ProductID: p.ID, Quantity: 2}},
	}, 1)
	require.NoError(t, err)
	require.Equal(t, 8, onHand(t, db, stock.ID))

	// The return's own number cannot be returned to re-inflate stock
	_, err = svc.CreateReturn(context.Background(), &CreateReturnRequest{
		TransactionNumber: ret.TransactionNumber,
		Items:             []ReturnItemRequest{{ProductID: p.ID, Quantity: 2}},
	}, 1)
	require.Error(t, err)
	assert.Equal(t, "only sale transactions can be returned", err.Error())
	assert.Equal(t, 8, onHand(t, db, stock.ID))
}

func TestCreateReturnRejectsInvalidItems(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "SKU-1", 1000)
	other := seedProduct(t, db, "SKU-2", 500)
	wh := seedWarehouse(t, db)
	stock := seedStock(t, db, p.ID, wh.ID, 10)
	o := seedOrder(t, db, 0, order.OrderItem{ProductID: p.ID, Quantity: 4, Price: 1000})

	svc, _, _ := newService(db, testConfig())
	sale, err := svc.CreateSale(context.Background(), &CreateSaleRequest{
		OrderNumber: o.OrderNumber,
		WarehouseID: wh.ID,
	}, 1)
	require.NoError(t, err)

	// Product not on the sale
	_, err = svc.CreateReturn(context.Background(), &CreateReturnRequest{
		TransactionNumber: sale.TransactionNumber,
		Items:             []ReturnItemRequest{{ProductID: other.ID, Quantity: 1}},
	}, 1)
	require.Error(t, err)
	assert.Equal(t, "invalid return items or quantities", err.Error())

	// More than was sold
	_, err = svc.CreateReturn(context.Background(), &CreateReturnRequest{
		TransactionNumber: sale.TransactionNumber,
		Items:             []ReturnItemRequest{{ProductID: p.ID, Quantity: 5}},
	}, 1)
	require.Error(t, err)
	assert.Equal(t, "invalid return items or quantities", err.Error())

	assert.Equal(t, 6, onHand(t, db, stock.ID))
}

func TestCreateReturnUnknownSale(t *testing.T) {
	db := setupTestDB(t)

	svc, _, _ := newService(db, testConfig())
	_, err := svc.CreateReturn(context.Background(), &CreateReturnRequest{
		TransactionNumber: "TN-99-0001",
		Items:             []ReturnItemRequest{{ProductID: 1, Quantity: 1}},
	}, 1)
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestGetTransactionsFiltersByType(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "SKU-1", 1000)
	wh := seedWarehouse(t, db)
	seedStock(t, db, p.ID, wh.ID, 10)
	o := seedOrder(t, db, 0, order.OrderItem{ProductID: p.ID, Quantity: 2, Price: 1000})

	svc, _, _ := newService(db, testConfig())
	sale, err := svc.CreateSale(context.Background(), &CreateSaleRequest{
		OrderNumber: o.OrderNumber,
		WarehouseID: wh.ID,
	}, 1)
	require.NoError(t, err)

	_, err = svc.CreateReturn(context.Background(), &CreateReturnRequest{
		TransactionNumber: sale.TransactionNumber,
		Items:             []ReturnItemRequest{{ProductID: p.ID, Quantity: 2}},
	}, 1)
	require.NoError(t, err)

	resp, err := svc.GetTransactions(context.Background(), &ListRequest{Type: TypeSale})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)

	resp, err = svc.GetTransactions(context.Background(), &ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
}

func TestGetTransactionNotFound(t *testing.T) {
	db := setupTestDB(t)

	svc, _, _ := newService(db, testConfig())
	_, err := svc.GetTransaction(context.Background(), 42)
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
