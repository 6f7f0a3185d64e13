// internal/domain/purchase/compute.go
package purchase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ComputeTotals derives every line total, the subtotal and the order
// total from the line items. Called by the service layer before each
// persist; any caller-supplied totals are overwritten.
func ComputeTotals(po *PurchaseOrder) {
	var subTotal int64
	for i := range po.Items {
		po.Items[i].Total = int64(po.Items[i].Quantity) * po.Items[i].UnitPrice
		subTotal += po.Items[i].Total
	}
	po.SubTotal = subTotal
	po.TotalAmount = subTotal + po.Taxes + po.Shipping
}

// NextOrderNumber assigns the next sequential order number for the
// current year, format PO-YY-NNNN. The lookup runs inside the caller's
// transaction; concurrent same-year creates can still race, which the
// unique index on order_number turns into a storage conflict.
func NextOrderNumber(tx *gorm.DB, now time.Time) (string, error) {
	return nextSequentialNumber(tx, &PurchaseOrder{}, "order_number", "PO", now)
}

// nextSequentialNumber implements the shared find-last-and-increment
// numbering used by purchase orders and ledger transactions.
func nextSequentialNumber(tx *gorm.DB, model interface{}, column, prefix string, now time.Time) (string, error) {
	yearPrefix := fmt.Sprintf("%s-%s", prefix, now.Format("06"))

	var last string
	err := tx.Model(model).
		Where(column+" LIKE ?", yearPrefix+"%").
		Order("created_at DESC").
		Limit(1).
		Pluck(column, &last).Error
	if err != nil {
		return "", fmt.Errorf("failed to look up last %s number: %w", prefix, err)
	}

	next := 1
	if last != "" {
		parts := strings.Split(last, "-")
		if len(parts) == 3 {
			if n, err := strconv.Atoi(parts[2]); err == nil {
				next = n + 1
			}
		}
	}

	return fmt.Sprintf("%s-%04d", yearPrefix, next), nil
}
