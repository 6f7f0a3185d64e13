// internal/domain/inventory/entity.go
package inventory

import (
	"time"

	"github.com/your-org/erp-backend/internal/domain/product"
	"github.com/your-org/erp-backend/internal/domain/purchase"
	"github.com/your-org/erp-backend/internal/domain/warehouse"
	"gorm.io/gorm"
)

// Bucket identifies one of the independent stock counters on an
// inventory item
type Bucket string

const (
	BucketOnHand   Bucket = "on_hand"
	BucketReserved Bucket = "reserved"
	BucketDamaged  Bucket = "damaged"
)

// ValidBucket reports whether b is a known stock bucket
func ValidBucket(b Bucket) bool {
	switch b {
	case BucketOnHand, BucketReserved, BucketDamaged:
		return true
	}
	return false
}

// MovementType represents the type of inventory movement
type MovementType string

const (
	MovementTypeIn         MovementType = "in"         // Receipt against a purchase order
	MovementTypeOut        MovementType = "out"        // Issue against a purchase order
	MovementTypeTransfer   MovementType = "transfer"   // Between warehouses
	MovementTypeReclassify MovementType = "reclassify" // Between buckets in one warehouse
	MovementTypeAdjust     MovementType = "adjust"     // Free-form correction
)

// InventoryItem holds the stock counters for a product in a warehouse.
// Counters are mutated only through the movement and transaction
// engines, never by read paths.
type InventoryItem struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProductID   uint           `gorm:"not null;uniqueIndex:idx_item_product_warehouse" json:"product_id"`
	WarehouseID uint           `gorm:"not null;uniqueIndex:idx_item_product_warehouse" json:"warehouse_id"`
	OnHand      int            `gorm:"not null;default:0" json:"on_hand"`
	Reserved    int            `gorm:"not null;default:0" json:"reserved"`
	Damaged     int            `gorm:"not null;default:0" json:"damaged"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Product   product.Product     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Warehouse warehouse.Warehouse `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"`
}

// BucketValue returns the current value of one stock counter
func (ii *InventoryItem) BucketValue(b Bucket) int {
	switch b {
	case BucketOnHand:
		return ii.OnHand
	case BucketReserved:
		return ii.Reserved
	case BucketDamaged:
		return ii.Damaged
	}
	return 0
}

// SetBucketValue overwrites one stock counter
func (ii *InventoryItem) SetBucketValue(b Bucket, value int) {
	switch b {
	case BucketOnHand:
		ii.OnHand = value
	case BucketReserved:
		ii.Reserved = value
	case BucketDamaged:
		ii.Damaged = value
	}
}

// InventoryMovement is the immutable audit record of one applied stock
// operation. Never updated or deleted.
type InventoryMovement struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	ProductID       uint         `gorm:"not null;index" json:"product_id"`
	Type            MovementType `gorm:"not null;size:20;index" json:"type"`
	Quantity        int          `gorm:"not null" json:"quantity"`
	WarehouseID     *uint        `gorm:"index" json:"warehouse_id,omitempty"`
	FromWarehouseID *uint        `gorm:"index" json:"from_warehouse_id,omitempty"`
	ToWarehouseID   *uint        `gorm:"index" json:"to_warehouse_id,omitempty"`
	SourceBucket    Bucket       `gorm:"size:20" json:"source_bucket,omitempty"`
	TargetBucket    Bucket       `gorm:"size:20" json:"target_bucket,omitempty"`
	PurchaseOrderID *uint        `gorm:"index" json:"purchase_order_id,omitempty"`
	Note            string       `gorm:"type:text" json:"note,omitempty"`
	CreatedBy       uint         `gorm:"index" json:"created_by"`
	CreatedAt       time.Time    `json:"created_at"`

	// Relationships
	Product       product.Product         `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Warehouse     *warehouse.Warehouse    `gorm:"foreignKey:WarehouseID" json:"warehouse,omitempty"`
	FromWarehouse *warehouse.Warehouse    `gorm:"foreignKey:FromWarehouseID" json:"from_warehouse,omitempty"`
	ToWarehouse   *warehouse.Warehouse    `gorm:"foreignKey:ToWarehouseID" json:"to_warehouse,omitempty"`
	PurchaseOrder *purchase.PurchaseOrder `gorm:"foreignKey:PurchaseOrderID" json:"purchase_order,omitempty"`
}
