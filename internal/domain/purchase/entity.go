// internal/domain/purchase/entity.go
package purchase

import (
	"time"

	"github.com/your-org/erp-backend/internal/domain/product"
	"github.com/your-org/erp-backend/internal/domain/warehouse"
	"gorm.io/gorm"
)

// OrderStatus represents the purchase order lifecycle
type OrderStatus string

const (
	StatusDraft     OrderStatus = "draft"
	StatusPending   OrderStatus = "pending"
	StatusApproved  OrderStatus = "approved"
	StatusReceived  OrderStatus = "received"
	StatusClosed    OrderStatus = "closed"
	StatusCancelled OrderStatus = "cancelled"
)

// Supplier represents a purchase order counterparty
type Supplier struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	ContactInfo string         `gorm:"size:255" json:"contact_info"`
	Email       string         `gorm:"size:100" json:"email"`
	Phone       string         `gorm:"size:20" json:"phone"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// PurchaseOrder tracks ordered quantities per product against a
// supplier and a receiving warehouse. Monetary totals are always
// recomputed server-side from the line items.
type PurchaseOrder struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OrderNumber string         `gorm:"uniqueIndex;size:20" json:"order_number"`
	SupplierID  uint           `gorm:"not null;index" json:"supplier_id"`
	WarehouseID uint           `gorm:"not null;index" json:"warehouse_id"`
	OrderDate   time.Time      `json:"order_date"`
	Status      OrderStatus    `gorm:"size:20;default:'draft'" json:"status"`
	SubTotal    int64          `gorm:"default:0" json:"sub_total"`    // In cents
	Taxes       int64          `gorm:"default:0" json:"taxes"`        // In cents
	Shipping    int64          `gorm:"default:0" json:"shipping"`     // In cents
	TotalAmount int64          `gorm:"default:0" json:"total_amount"` // In cents
	Notes       string         `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Supplier  Supplier            `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Warehouse warehouse.Warehouse `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"`
	Items     []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// PurchaseOrderItem is one ordered line on a purchase order
type PurchaseOrderItem struct {
	ID              uint  `gorm:"primaryKey" json:"id"`
	PurchaseOrderID uint  `gorm:"not null;index" json:"purchase_order_id"`
	ProductID       uint  `gorm:"not null;index" json:"product_id"`
	Quantity        int   `gorm:"not null" json:"quantity"`
	UnitPrice       int64 `gorm:"not null" json:"unit_price"` // In cents
	Total           int64 `gorm:"default:0" json:"total"`     // In cents, derived

	// Relationships
	Product product.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// LineFor returns the order line for a product, or nil when the
// product is not on the order
func (po *PurchaseOrder) LineFor(productID uint) *PurchaseOrderItem {
	for i := range po.Items {
		if po.Items[i].ProductID == productID {
			return &po.Items[i]
		}
	}
	return nil
}
