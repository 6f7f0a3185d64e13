// internal/domain/inventory/item_service_test.go
package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/erp-backend/internal/config"
	"github.com/your-org/erp-backend/internal/domain/product"
	"github.com/your-org/erp-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

func newItemService(db *gorm.DB, cfg *config.Config) (*ItemService, *recordingCache, *recordingNotifier) {
	c := &recordingCache{}
	n := &recordingNotifier{}
	return NewItemService(db, cfg, c, n, testLog()), c, n
}

func TestCreateItemRecomputesProductStock(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "SKU-1")
	wh := seedWarehouse(t, db, "WH-A")

	svc, c, _ := newItemService(db, testConfig())
	item, err := svc.CreateItem(context.Background(), &CreateItemRequest{
		ProductID:   p.ID,
		WarehouseID: wh.ID,
		OnHand:      12,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, item.OnHand)

	var got product.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 12, got.Quantity)

	assert.Contains(t, c.patterns, "inventoryItems:all*")
}

func TestCreateItemRejectsDuplicatePair(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "SKU-1")
	wh := seedWarehouse(t, db, "WH-A")
	seedItem(t, db, p.ID, wh.ID, 0, 0, 0)

	svc, _, _ := newItemService(db, testConfig())
	_, err := svc.CreateItem(context.Background(), &CreateItemRequest{
		ProductID:   p.ID,
		WarehouseID: wh.ID,
	})
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestCreateItemConflictOnIndexViolation(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "SKU-1")
	wh := seedWarehouse(t, db, "WH-A")

	// A soft-deleted row is invisible to the existence check but still
	// holds the unique index, so the insert itself fails
	item := seedItem(t, db, p.ID, wh.ID, 0, 0, 0)
	require.NoError(t, db.Delete(item).Error)

	svc, _, _ := newItemService(db, testConfig())
	_, err := svc.CreateItem(context.Background(), &CreateItemRequest{
		ProductID:   p.ID,
		WarehouseID: wh.ID,
	})
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestCreateItemUnknownRelations(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "SKU-1")

	svc, _, _ := newItemService(db, testConfig())

	_, err := svc.CreateItem(context.Background(), &CreateItemRequest{ProductID: 999, WarehouseID: 1})
	require.Error(t, err)
	assert.Equal(t, "product not found", err.Error())

	_, err = svc.CreateItem(context.Background(), &CreateItemRequest{ProductID: p.ID, WarehouseID: 999})
	require.Error(t, err)
	assert.Equal(t, "warehouse not found", err.Error())
}

func TestUpdateItemCorrectsCounters(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "SKU-1")
	wh := seedWarehouse(t, db, "WH-A")
	item := seedItem(t, db, p.ID, wh.ID, 5, 1, 0)

	onHand := 20
	damaged := 2
	svc, _, _ := newItemService(db, testConfig())
	updated, err := svc.UpdateItem(context.Background(), item.ID, &UpdateItemRequest{
		OnHand:  &onHand,
		Damaged: &damaged,
	})
	require.NoError(t, err)
	assert.Equal(t, 20, updated.OnHand)
	assert.Equal(t, 1, updated.Reserved)
	assert.Equal(t, 2, updated.Damaged)

	var got product.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 20, got.Quantity)
}

func TestDeleteItemRecomputesProductStock(t *testing.T) {
	db := setupTestDB(t)
	p := seedProduct(t, db, "SKU-1")
	whA := seedWarehouse(t, db, "WH-A")
	whB := seedWarehouse(t, db, "WH-B")
	item := seedItem(t, db, p.ID, whA.ID, 5, 0, 0)
	seedItem(t, db, p.ID, whB.ID, 3, 0, 0)

	svc, _, _ := newItemService(db, testConfig())
	require.NoError(t, svc.DeleteItem(context.Background(), item.ID))

	var got product.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 3, got.Quantity)

	err := svc.DeleteItem(context.Background(), item.ID)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
