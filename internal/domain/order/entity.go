// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/your-org/erp-backend/internal/domain/product"
	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is a fulfilled sales order. Checkout and payment are handled
// upstream; the transaction engine consumes orders by number to turn
// them into stock-deducting ledger transactions.
type Order struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OrderNumber string         `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID      *uint          `gorm:"index" json:"user_id"` // Nullable for guest orders
	Email       string         `gorm:"size:255" json:"email"`
	Status      OrderStatus    `gorm:"not null;default:'pending'" json:"status"`
	TotalAmount int64          `gorm:"not null" json:"total_amount"` // In cents
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is one purchased line on an order
type OrderItem struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	OrderID   uint  `gorm:"not null;index" json:"order_id"`
	ProductID uint  `gorm:"not null;index" json:"product_id"`
	Quantity  int   `gorm:"not null" json:"quantity"`
	Price     int64 `gorm:"not null" json:"price"` // In cents, at time of sale

	// Relationships
	Product product.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
