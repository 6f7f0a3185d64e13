// internal/domain/transaction/entity.go
package transaction

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/your-org/erp-backend/internal/domain/order"
	"github.com/your-org/erp-backend/internal/domain/product"
	"github.com/your-org/erp-backend/internal/domain/warehouse"
	"gorm.io/gorm"
)

// Type of ledger transaction
type Type string

const (
	TypeSale   Type = "sale"
	TypeReturn Type = "return"
)

// Transaction is the immutable audit record of a sale or return
// event. A sale deducts on-hand stock for every line; a return
// restores it and links back to the original sale via ReturnOf.
type Transaction struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	TransactionNumber string         `gorm:"uniqueIndex;size:20" json:"transaction_number"`
	OrderID           *uint          `gorm:"index" json:"order_id,omitempty"` // Sales only
	WarehouseID       uint           `gorm:"not null;index" json:"warehouse_id"`
	Type              Type           `gorm:"not null;size:10" json:"type"`
	TotalAmount       int64          `gorm:"default:0" json:"total_amount"` // In cents
	ReturnOfID        *uint          `gorm:"index" json:"return_of_id,omitempty"`
	CreatedBy         uint           `gorm:"not null;index" json:"created_by"`
	IsReturned        bool           `gorm:"default:false" json:"is_returned"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Order     *order.Order        `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Warehouse warehouse.Warehouse `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"`
	ReturnOf  *Transaction        `gorm:"foreignKey:ReturnOfID" json:"return_of,omitempty"`
	Items     []TransactionItem   `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"items"`
}

// TransactionItem is one product line on a ledger transaction. Return
// lines carry the original sale's recorded price, not the current
// product price.
type TransactionItem struct {
	ID            uint  `gorm:"primaryKey" json:"id"`
	TransactionID uint  `gorm:"not null;index" json:"transaction_id"`
	ProductID     uint  `gorm:"not null;index" json:"product_id"`
	Quantity      int   `gorm:"not null" json:"quantity"`
	Price         int64 `gorm:"not null" json:"price"` // In cents

	// Relationships
	Product product.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// ItemFor returns the transaction line for a product, or nil when the
// product is not on the transaction
func (t *Transaction) ItemFor(productID uint) *TransactionItem {
	for i := range t.Items {
		if t.Items[i].ProductID == productID {
			return &t.Items[i]
		}
	}
	return nil
}

// NextTransactionNumber assigns the next sequential transaction number
// for the current year, format TN-YY-NNNN. The lookup runs inside the
// caller's transaction; concurrent same-year creates can still race,
// which the unique index on transaction_number turns into a storage
// conflict.
func NextTransactionNumber(tx *gorm.DB, now time.Time) (string, error) {
	yearPrefix := fmt.Sprintf("TN-%s", now.Format("06"))

	var last string
	err := tx.Model(&Transaction{}).
		Where("transaction_number LIKE ?", yearPrefix+"%").
		Order("created_at DESC").
		Limit(1).
		Pluck("transaction_number", &last).Error
	if err != nil {
		return "", fmt.Errorf("failed to look up last transaction number: %w", err)
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
