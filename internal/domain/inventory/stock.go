// internal/domain/inventory/stock.go
package inventory

import (
	"context"
	"fmt"

	"github.com/your-org/erp-backend/internal/domain/product"
	"github.com/your-org/erp-backend/internal/pkg/notify"
	"gorm.io/gorm"
)

// RecomputeProductStock sets Product.Quantity to the sum of on-hand
// stock across all warehouses. Called after every committed mutation
// that touched the product's ledger rows.
func RecomputeProductStock(db *gorm.DB, productID uint) error {
	var total int64
	err := db.Model(&InventoryItem{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(on_hand), 0)").
		Scan(&total).Error
	if err != nil {
		return fmt.Errorf("failed to sum on-hand stock: %w", err)
	}

	err = db.Model(&product.Product{}).
		Where("id = ?", productID).
		UpdateColumn("quantity", total).Error
	if err != nil {
		return fmt.Errorf("failed to update product stock: %w", err)
	}

	return nil
}

// CheckLowStock raises a low-stock notification when the product's
// aggregate quantity has fallen below the threshold. Best-effort.
func CheckLowStock(ctx context.Context, db *gorm.DB, notifier notify.Notifier, productID uint, threshold int) {
	var p product.Product
	if err := db.WithContext(ctx).First(&p, productID).Error; err != nil {
		return
	}

	if p.Quantity >= threshold {
		return
	}

	notifier.Notify(ctx, &notify.Notification{
		Title:      fmt.Sprintf("Low Stock: %s", p.Name),
		Message:    fmt.Sprintf("Quantity is %d. Please restock", p.Quantity),
		Module:     "wms",
		Importance: notify.ImportanceHigh,
	})
}
