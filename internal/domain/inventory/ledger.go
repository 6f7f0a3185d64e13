// internal/domain/inventory/ledger.go
package inventory

import (
	"errors"
	"fmt"

	"github.com/your-org/erp-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Direction of a ledger delta
type Direction string

const (
	DirectionAdd      Direction = "add"
	DirectionSubtract Direction = "subtract"
)

// FindItem loads the inventory item for (product, warehouse) on the
// given handle, which may be a transaction
func FindItem(tx *gorm.DB, productID, warehouseID uint) (*InventoryItem, error) {
	var item InventoryItem
	err := tx.Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("inventory item not found for this product and warehouse")
		}
		return nil, fmt.Errorf("failed to load inventory item: %w", err)
	}
	return &item, nil
}

// ApplyDelta applies a single bucket change to the stock ledger,
// enforcing the floor at zero. It must run on the same transaction as
// any sibling ledger calls belonging to the same logical operation so
// that multi-item changes commit or roll back together.
func ApplyDelta(tx *gorm.DB, productID, warehouseID uint, bucket Bucket, quantity int, direction Direction) error {
	if !ValidBucket(bucket) {
		return apperrors.InvalidOperation("invalid stock bucket: %s", bucket)
	}

	item, err := FindItem(tx, productID, warehouseID)
	if err != nil {
		return err
	}

	current := item.BucketValue(bucket)
	updated := current + quantity
	if direction == DirectionSubtract {
		updated = current - quantity
	}
	if updated < 0 {
		return apperrors.InvalidOperation("quantity cannot be negative")
	}

	item.SetBucketValue(bucket, updated)
	if err := tx.Save(item).Error; err != nil {
		return fmt.Errorf("failed to update inventory item: %w", err)
	}

	return nil
}
