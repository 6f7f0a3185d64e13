// internal/domain/inventory/movement_service.go
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/erp-backend/internal/config"
	"github.com/your-org/erp-backend/internal/domain/product"
	"github.com/your-org/erp-backend/internal/domain/purchase"
	"github.com/your-org/erp-backend/internal/domain/warehouse"
	"github.com/your-org/erp-backend/internal/infrastructure/cache"
	"github.com/your-org/erp-backend/internal/pkg/apperrors"
	"github.com/your-org/erp-backend/internal/pkg/notify"
	"gorm.io/gorm"
)

// MovementService validates and applies typed stock-changing
// operations against the ledger
type MovementService struct {
	db       *gorm.DB
	config   *config.Config
	cache    cache.Cache
	notifier notify.Notifier
	log      *logrus.Entry
}

// NewMovementService creates a new movement service
func NewMovementService(db *gorm.DB, cfg *config.Config, c cache.Cache, notifier notify.Notifier, log *logrus.Entry) *MovementService {
	return &MovementService{
		db:       db,
		config:   cfg,
		cache:    c,
		notifier: notifier,
		log:      log,
	}
}

// CreateMovementRequest represents a single stock movement. Which
// warehouse/bucket fields are required depends on the type.
type CreateMovementRequest struct {
	ProductID       uint         `json:"product_id" binding:"required"`
	Type            MovementType `json:"type" binding:"required,oneof=in out transfer reclassify adjust"`
	Quantity        int          `json:"quantity" binding:"required,gt=0"`
	WarehouseID     *uint        `json:"warehouse_id,omitempty"`
	FromWarehouseID *uint        `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   *uint        `json:"to_warehouse_id,omitempty"`
	SourceBucket    Bucket       `json:"source_bucket,omitempty"`
	TargetBucket    Bucket       `json:"target_bucket,omitempty"`
	PurchaseOrderID *uint        `json:"purchase_order_id,omitempty"`
	Note            string       `json:"note,omitempty"`
}

// MovementListRequest represents movement list query parameters
type MovementListRequest struct {
	Page      int          `form:"page,default=1"`
	Limit     int          `form:"limit,default=20"`
	Type      MovementType `form:"type"`
	ProductID uint         `form:"product_id"`
}

// MovementListResponse represents a paginated movement listing
type MovementListResponse struct {
	Movements []InventoryMovement `json:"movements"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	Limit     int                 `json:"limit"`
}

// CreateMovement validates and applies one typed stock operation. All
// sub-effects (both legs of a transfer, both buckets of a reclassify)
// commit or roll back as one unit together with the audit record and
// any purchase order status change.
func (s *MovementService) CreateMovement(ctx context.Context, req *CreateMovementRequest, userID uint) (*InventoryMovement, error) {
	var movement *InventoryMovement

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existingProduct product.Product
		if err := tx.First(&existingProduct, req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("product not found")
			}
			return fmt.Errorf("failed to load product: %w", err)
		}

		if err := s.checkWarehouses(tx, req); err != nil {
			return err
		}

		po, err := s.checkPurchaseOrder(tx, req)
		if err != nil {
			return err
		}

		if err := s.applyMovement(tx, req); err != nil {
			return err
		}

		// The receipt completes the purchase order. Done after the
		// ledger apply so a failed apply cannot flip the status.
		if req.Type == MovementTypeIn && po != nil {
			if err := tx.Model(po).Update("status", purchase.StatusReceived).Error; err != nil {
				return fmt.Errorf("failed to update purchase order status: %w", err)
			}
		}

		movement = &InventoryMovement{
			ProductID:       req.ProductID,
			Type:            req.Type,
			Quantity:        req.Quantity,
			WarehouseID:     req.WarehouseID,
			FromWarehouseID: req.FromWarehouseID,
			ToWarehouseID:   req.ToWarehouseID,
			SourceBucket:    req.SourceBucket,
			TargetBucket:    req.TargetBucket,
			PurchaseOrderID: req.PurchaseOrderID,
			Note:            req.Note,
			CreatedBy:       userID,
		}
		if err := tx.Create(movement).Error; err != nil {
			return fmt.Errorf("failed to record movement: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := RecomputeProductStock(s.db.WithContext(ctx), req.ProductID); err != nil {
		s.log.WithError(err).WithField("product_id", req.ProductID).Warn("Failed to recompute product stock")
	}

	s.cache.Invalidate(ctx,
		"inventoryMovements:all*",
		fmt.Sprintf("inventoryMovement:%d", movement.ID),
		"inventoryItems:all*",
		"products:all*",
		fmt.Sprintf("product:%d", req.ProductID),
	)

	CheckLowStock(ctx, s.db, s.notifier, req.ProductID, s.config.Inventory.LowStockThreshold)

	s.log.WithFields(logrus.Fields{
		"movement_id": movement.ID,
		"type":        movement.Type,
		"product_id":  movement.ProductID,
	}).Info("Inventory movement created")

	return movement, nil
}

// GetMovements retrieves movements with pagination
func (s *MovementService) GetMovements(ctx context.Context, req *MovementListRequest) (*MovementListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}

	key := fmt.Sprintf("inventoryMovements:all:p%d:l%d:t%s:pr%d", req.Page, req.Limit, req.Type, req.ProductID)
	var resp MovementListResponse
	err := s.cache.Cached(ctx, key, s.config.Cache.ListTTL, &resp, func() (interface{}, error) {
		var movements []InventoryMovement
		var total int64

		query := s.db.WithContext(ctx).Model(&InventoryMovement{}).
			Preload("Product").
			Preload("Warehouse").
			Preload("FromWarehouse").
			Preload("ToWarehouse").
			Preload("PurchaseOrder")
		if req.Type != "" {
			query = query.Where("type = ?", req.Type)
		}
		if req.ProductID > 0 {
			query = query.Where("product_id = ?", req.ProductID)
		}

		if err := query.Count(&total).Error; err != nil {
			return nil, fmt.Errorf("failed to count movements: %w", err)
		}

		offset := (req.Page - 1) * req.Limit
		if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&movements).Error; err != nil {
			return nil, fmt.Errorf("failed to retrieve movements: %w", err)
		}

		return &MovementListResponse{Movements: movements, Total: total, Page: req.Page, Limit: req.Limit}, nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetMovement retrieves a single movement by ID
func (s *MovementService) GetMovement(ctx context.Context, id uint) (*InventoryMovement, error) {
	key := fmt.Sprintf("inventoryMovement:%d", id)
	var movement InventoryMovement
	err := s.cache.Cached(ctx, key, s.config.Cache.ListTTL, &movement, func() (interface{}, error) {
		var result InventoryMovement
		err := s.db.WithContext(ctx).
			Preload("Product").
			Preload("Warehouse").
			Preload("FromWarehouse").
			Preload("ToWarehouse").
			Preload("PurchaseOrder").
			First(&result, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("inventory movement not found")
			}
			return nil, fmt.Errorf("failed to retrieve movement: %w", err)
		}
		return &result, nil
	})
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

// checkWarehouses verifies every warehouse referenced by the request
func (s *MovementService) checkWarehouses(tx *gorm.DB, req *CreateMovementRequest) error {
	check := func(id *uint, label string) error {
		if id == nil {
			return nil
		}
		var wh warehouse.Warehouse
		if err := tx.First(&wh, *id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("%s not found", label)
			}
			return fmt.Errorf("failed to load %s: %w", label, err)
		}
		return nil
	}

	if err := check(req.WarehouseID, "warehouse"); err != nil {
		return err
	}
	if err := check(req.FromWarehouseID, "source warehouse"); err != nil {
		return err
	}
	return check(req.ToWarehouseID, "destination warehouse")
}

// checkPurchaseOrder enforces the purchase order linkage rules for
// in/out movements: status gates, product-on-order, warehouse match
// and the cumulative received/issued quantity cap.
func (s *MovementService) checkPurchaseOrder(tx *gorm.DB, req *CreateMovementRequest) (*purchase.PurchaseOrder, error) {
	if req.Type != MovementTypeIn && req.Type != MovementTypeOut {
		return nil, nil
	}

	if req.PurchaseOrderID == nil {
		return nil, apperrors.InvalidOperation("purchase order is required for in/out movements")
	}
	if req.WarehouseID == nil {
		return nil, apperrors.InvalidOperation("warehouse is required for in/out movements")
	}

	var po purchase.PurchaseOrder
	if err := tx.Preload("Items").First(&po, *req.PurchaseOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("purchase order not found")
		}
		return nil, fmt.Errorf("failed to load purchase order: %w", err)
	}

	if req.Type == MovementTypeIn && (po.Status == purchase.StatusReceived || po.Status == purchase.StatusClosed) {
		return nil, apperrors.InvalidOperation("purchase order is already completed")
	}
	if req.Type == MovementTypeOut && po.Status == purchase.StatusClosed {
		return nil, apperrors.InvalidOperation("purchase order is closed")
	}

	line := po.LineFor(req.ProductID)
	if line == nil {
		return nil, apperrors.InvalidOperation("product not found in this purchase order")
	}

	if req.Type == MovementTypeIn && *req.WarehouseID != po.WarehouseID {
		return nil, apperrors.InvalidOperation("cannot receive into a different warehouse")
	}

	// Cumulative cap: prior movements of the same type for this PO and
	// product plus the requested quantity may not exceed the line.
	var moved int64
	err := tx.Model(&InventoryMovement{}).
		Where("purchase_order_id = ? AND product_id = ? AND type = ?", po.ID, req.ProductID, req.Type).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&moved).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum prior movements: %w", err)
	}

	if moved+int64(req.Quantity) > int64(line.Quantity) {
		verb := "receive"
		if req.Type == MovementTypeOut {
			verb = "move out"
		}
		return nil, apperrors.InvalidOperation("cannot %s more than ordered quantity", verb)
	}

	return &po, nil
}

// applyMovement dispatches the ledger effects for one movement type
func (s *MovementService) applyMovement(tx *gorm.DB, req *CreateMovementRequest) error {
	switch req.Type {
	case MovementTypeIn:
		if req.WarehouseID == nil {
			return apperrors.InvalidOperation("warehouse is required for in movements")
		}
		return ApplyDelta(tx, req.ProductID, *req.WarehouseID, BucketOnHand, req.Quantity, DirectionAdd)

	case MovementTypeOut:
		if req.WarehouseID == nil {
			return apperrors.InvalidOperation("warehouse is required for out movements")
		}
		return ApplyDelta(tx, req.ProductID, *req.WarehouseID, BucketOnHand, req.Quantity, DirectionSubtract)

	case MovementTypeTransfer:
		if req.FromWarehouseID == nil || req.ToWarehouseID == nil {
			return apperrors.InvalidOperation("transfer requires source and destination warehouses")
		}
		if *req.FromWarehouseID == *req.ToWarehouseID {
			return apperrors.InvalidOperation("source and destination warehouses must differ")
		}
		if err := ApplyDelta(tx, req.ProductID, *req.FromWarehouseID, BucketOnHand, req.Quantity, DirectionSubtract); err != nil {
			return err
		}
		return ApplyDelta(tx, req.ProductID, *req.ToWarehouseID, BucketOnHand, req.Quantity, DirectionAdd)

	case MovementTypeReclassify:
		if req.WarehouseID == nil {
			return apperrors.InvalidOperation("warehouse is required for reclassify movements")
		}
		if !ValidBucket(req.SourceBucket) || !ValidBucket(req.TargetBucket) {
			return apperrors.InvalidOperation("reclassify requires valid source and target buckets")
		}
		if req.SourceBucket == req.TargetBucket {
			return apperrors.InvalidOperation("source and target buckets must differ")
		}
		if err := ApplyDelta(tx, req.ProductID, *req.WarehouseID, req.SourceBucket, req.Quantity, DirectionSubtract); err != nil {
			return err
		}
		return ApplyDelta(tx, req.ProductID, *req.WarehouseID, req.TargetBucket, req.Quantity, DirectionAdd)

	case MovementTypeAdjust:
		if req.WarehouseID == nil {
			return apperrors.InvalidOperation("warehouse is required for adjust movements")
		}
		if !ValidBucket(req.SourceBucket) {
			return apperrors.InvalidOperation("adjust requires a valid source bucket")
		}
		return ApplyDelta(tx, req.ProductID, *req.WarehouseID, req.SourceBucket, req.Quantity, DirectionAdd)

	default:
		return apperrors.InvalidOperation("invalid movement type: %s", req.Type)
	}
}
