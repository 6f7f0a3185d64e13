// internal/domain/inventory/item_service.go
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/erp-backend/internal/config"
	"github.com/your-org/erp-backend/internal/domain/product"
	"github.com/your-org/erp-backend/internal/domain/warehouse"
	"github.com/your-org/erp-backend/internal/infrastructure/cache"
	"github.com/your-org/erp-backend/internal/pkg/apperrors"
	"github.com/your-org/erp-backend/internal/pkg/notify"
	"gorm.io/gorm"
)

// ItemService manages inventory item records; stock counters are only
// moved by the movement and transaction engines
type ItemService struct {
	db       *gorm.DB
	config   *config.Config
	cache    cache.Cache
	notifier notify.Notifier
	log      *logrus.Entry
}

// NewItemService creates a new inventory item service
func NewItemService(db *gorm.DB, cfg *config.Config, c cache.Cache, notifier notify.Notifier, log *logrus.Entry) *ItemService {
	return &ItemService{
		db:       db,
		config:   cfg,
		cache:    c,
		notifier: notifier,
		log:      log,
	}
}

// CreateItemRequest represents inventory item creation data
type CreateItemRequest struct {
	ProductID   uint `json:"product_id" binding:"required"`
	WarehouseID uint `json:"warehouse_id" binding:"required"`
	OnHand      int  `json:"on_hand" binding:"gte=0"`
	Reserved    int  `json:"reserved" binding:"gte=0"`
	Damaged     int  `json:"damaged" binding:"gte=0"`
}

// UpdateItemRequest represents a manual correction of stock counters
type UpdateItemRequest struct {
	OnHand   *int `json:"on_hand,omitempty" binding:"omitempty,gte=0"`
	Reserved *int `json:"reserved,omitempty" binding:"omitempty,gte=0"`
	Damaged  *int `json:"damaged,omitempty" binding:"omitempty,gte=0"`
}

// ItemListRequest represents inventory item list query parameters
type ItemListRequest struct {
	Page        int  `form:"page,default=1"`
	Limit       int  `form:"limit,default=20"`
	ProductID   uint `form:"product_id"`
	WarehouseID uint `form:"warehouse_id"`
}

// ItemListResponse represents a paginated inventory item listing
type ItemListResponse struct {
	Items []InventoryItem `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// CreateItem assigns stock counters to a (product, warehouse) pair for
// the first time. Duplicate pairs are rejected.
func (s *ItemService) CreateItem(ctx context.Context, req *CreateItemRequest) (*InventoryItem, error) {
	var p product.Product
	if err := s.db.WithContext(ctx).First(&p, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	var wh warehouse.Warehouse
	if err := s.db.WithContext(ctx).First(&wh, req.WarehouseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("warehouse not found")
		}
		return nil, fmt.Errorf("failed to load warehouse: %w", err)
	}

	var existing InventoryItem
	err := s.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", req.ProductID, req.WarehouseID).
		First(&existing).Error
	if err == nil {
		return nil, apperrors.Conflict("inventory item already exists for this product and warehouse")
	}

	item := &InventoryItem{
		ProductID:   req.ProductID,
		WarehouseID: req.WarehouseID,
		OnHand:      req.OnHand,
		Reserved:    req.Reserved,
		Damaged:     req.Damaged,
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		// The existence check above can lose the race against a
		// concurrent create, or against a soft-deleted row still
		// holding the unique index. Both are conflicts, not failures.
		var dup InventoryItem
		lookupErr := s.db.WithContext(ctx).Unscoped().
			Where("product_id = ? AND warehouse_id = ?", req.ProductID, req.WarehouseID).
			First(&dup).Error
		if lookupErr == nil {
			return nil, apperrors.Conflict("inventory item already exists for this product and warehouse")
		}
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}

	if err := RecomputeProductStock(s.db.WithContext(ctx), item.ProductID); err != nil {
		s.log.WithError(err).WithField("product_id", item.ProductID).Warn("Failed to recompute product stock")
	}

	s.invalidateItemCaches(ctx, item)
	s.log.WithField("inventory_item_id", item.ID).Info("Inventory item created")

	return item, nil
}

// GetItems retrieves inventory items with pagination
func (s *ItemService) GetItems(ctx context.Context, req *ItemListRequest) (*ItemListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}

	key := fmt.Sprintf("inventoryItems:all:p%d:l%d:pr%d:w%d", req.Page, req.Limit, req.ProductID, req.WarehouseID)
	var resp ItemListResponse
	err := s.cache.Cached(ctx, key, s.config.Cache.ListTTL, &resp, func() (interface{}, error) {
		var items []InventoryItem
		var total int64

		query := s.db.WithContext(ctx).Model(&InventoryItem{}).
			Preload("Product").
			Preload("Warehouse")
		if req.ProductID > 0 {
			query = query.Where("product_id = ?", req.ProductID)
		}
		if req.WarehouseID > 0 {
			query = query.Where("warehouse_id = ?", req.WarehouseID)
		}

		if err := query.Count(&total).Error; err != nil {
			return nil, fmt.Errorf("failed to count inventory items: %w", err)
		}

		offset := (req.Page - 1) * req.Limit
		if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&items).Error; err != nil {
			return nil, fmt.Errorf("failed to retrieve inventory items: %w", err)
		}

		return &ItemListResponse{Items: items, Total: total, Page: req.Page, Limit: req.Limit}, nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetItem retrieves one inventory item by ID
func (s *ItemService) GetItem(ctx context.Context, id uint) (*InventoryItem, error) {
	key := fmt.Sprintf("inventoryItem:%d", id)
	var item InventoryItem
	err := s.cache.Cached(ctx, key, s.config.Cache.ListTTL, &item, func() (interface{}, error) {
		var result InventoryItem
		err := s.db.WithContext(ctx).
			Preload("Product").
			Preload("Warehouse").
			First(&result, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("inventory item not found")
			}
			return nil, fmt.Errorf("failed to retrieve inventory item: %w", err)
		}
		return &result, nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItemFor retrieves the inventory item for a (product, warehouse)
// pair
func (s *ItemService) GetItemFor(ctx context.Context, productID, warehouseID uint) (*InventoryItem, error) {
	return FindItem(s.db.WithContext(ctx), productID, warehouseID)
}

// UpdateItem applies a manual correction to stock counters
func (s *ItemService) UpdateItem(ctx context.Context, id uint, req *UpdateItemRequest) (*InventoryItem, error) {
	var item InventoryItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("inventory item not found")
		}
		return nil, fmt.Errorf("failed to retrieve inventory item: %w", err)
	}

	if req.OnHand != nil {
		item.OnHand = *req.OnHand
	}
	if req.Reserved != nil {
		item.Reserved = *req.Reserved
	}
	if req.Damaged != nil {
		item.Damaged = *req.Damaged
	}

	if err := s.db.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}

	if err := RecomputeProductStock(s.db.WithContext(ctx), item.ProductID); err != nil {
		s.log.WithError(err).WithField("product_id", item.ProductID).Warn("Failed to recompute product stock")
	}

	s.invalidateItemCaches(ctx, &item)
	CheckLowStock(ctx, s.db, s.notifier, item.ProductID, s.config.Inventory.LowStockThreshold)
	s.log.WithField("inventory_item_id", item.ID).Info("Inventory item updated")

	return &item, nil
}

// DeleteItem removes an inventory item record
func (s *ItemService) DeleteItem(ctx context.Context, id uint) error {
	var item InventoryItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("inventory item not found")
		}
		return fmt.Errorf("failed to retrieve inventory item: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&item).Error; err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}

	if err := RecomputeProductStock(s.db.WithContext(ctx), item.ProductID); err != nil {
		s.log.WithError(err).WithField("product_id", item.ProductID).Warn("Failed to recompute product stock")
	}

	s.invalidateItemCaches(ctx, &item)
	s.log.WithField("inventory_item_id", id).Info("Inventory item deleted")

	return nil
}

func (s *ItemService) invalidateItemCaches(ctx context.Context, item *InventoryItem) {
	s.cache.Invalidate(ctx,
		"inventoryItems:all*",
		fmt.Sprintf("inventoryItem:%d", item.ID),
		"products:all*",
		fmt.Sprintf("product:%d", item.ProductID),
	)
}
