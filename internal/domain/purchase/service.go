// internal/domain/purchase/service.go
package purchase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/erp-backend/internal/config"
	"github.com/your-org/erp-backend/internal/domain/product"
	"github.com/your-org/erp-backend/internal/domain/warehouse"
	"github.com/your-org/erp-backend/internal/infrastructure/cache"
	"github.com/your-org/erp-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles supplier and purchase order business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	cache  cache.Cache
	log    *logrus.Entry
}

// NewService creates a new purchase service
func NewService(db *gorm.DB, cfg *config.Config, c cache.Cache, log *logrus.Entry) *Service {
	return &Service{
		db:     db,
		config: cfg,
		cache:  c,
		log:    log,
	}
}

// CreateSupplierRequest represents supplier creation data
type CreateSupplierRequest struct {
	Name        string `json:"name" binding:"required"`
	ContactInfo string `json:"contact_info"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

// UpdateSupplierRequest represents supplier update data
type UpdateSupplierRequest struct {
	Name        *string `json:"name,omitempty"`
	ContactInfo *string `json:"contact_info,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// OrderItemRequest is one purchase order line in a request body.
// Any client-supplied total is discarded.
type OrderItemRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
	UnitPrice int64 `json:"unit_price" binding:"required,gte=0"`
}

// CreateOrderRequest represents purchase order creation data
type CreateOrderRequest struct {
	SupplierID  uint               `json:"supplier_id" binding:"required"`
	WarehouseID uint               `json:"warehouse_id" binding:"required"`
	Status      OrderStatus        `json:"status" binding:"omitempty,oneof=draft pending approved cancelled"`
	Items       []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Taxes       int64              `json:"taxes" binding:"gte=0"`
	Shipping    int64              `json:"shipping" binding:"gte=0"`
	Notes       string             `json:"notes"`
}

// UpdateOrderRequest represents purchase order update data
type UpdateOrderRequest struct {
	Status   *OrderStatus       `json:"status,omitempty" binding:"omitempty,oneof=draft pending approved received closed cancelled"`
	Items    []OrderItemRequest `json:"items,omitempty" binding:"omitempty,min=1,dive"`
	Taxes    *int64             `json:"taxes,omitempty" binding:"omitempty,gte=0"`
	Shipping *int64             `json:"shipping,omitempty" binding:"omitempty,gte=0"`
	Notes    *string            `json:"notes,omitempty"`
}

// OrderListRequest represents purchase order list query parameters
type OrderListRequest struct {
	Page   int         `form:"page,default=1"`
	Limit  int         `form:"limit,default=20"`
	Status OrderStatus `form:"status"`
}

// OrderListResponse represents a paginated purchase order listing
type OrderListResponse struct {
	Orders []PurchaseOrder `json:"orders"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

// SUPPLIERS

// CreateSupplier creates a new supplier
func (s *Service) CreateSupplier(ctx context.Context, req *CreateSupplierRequest) (*Supplier, error) {
	supplier := &Supplier{
		Name:        req.Name,
		ContactInfo: req.ContactInfo,
		Email:       req.Email,
		Phone:       req.Phone,
		IsActive:    true,
	}

	if err := s.db.WithContext(ctx).Create(supplier).Error; err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}

	s.cache.Invalidate(ctx, "suppliers:all*")
	s.log.WithField("supplier_id", supplier.ID).Info("Supplier created")

	return supplier, nil
}

// GetSuppliers retrieves all active suppliers
func (s *Service) GetSuppliers(ctx context.Context) ([]Supplier, error) {
	var suppliers []Supplier
	err := s.cache.Cached(ctx, "suppliers:all", s.config.Cache.ListTTL, &suppliers, func() (interface{}, error) {
		var result []Supplier
		if err := s.db.WithContext(ctx).Where("is_active = ?", true).Find(&result).Error; err != nil {
			return nil, fmt.Errorf("failed to retrieve suppliers: %w", err)
		}
		return result, nil
	})
	return suppliers, err
}

// GetSupplier retrieves a supplier by ID
func (s *Service) GetSupplier(ctx context.Context, id uint) (*Supplier, error) {
	var supplier Supplier
	if err := s.db.WithContext(ctx).First(&supplier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("supplier not found")
		}
		return nil, fmt.Errorf("failed to retrieve supplier: %w", err)
	}
	return &supplier, nil
}

// UpdateSupplier updates supplier fields
func (s *Service) UpdateSupplier(ctx context.Context, id uint, req *UpdateSupplierRequest) (*Supplier, error) {
	supplier, err := s.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.ContactInfo != nil {
		updates["contact_info"] = *req.ContactInfo
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(supplier).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update supplier: %w", err)
		}
	}

	s.cache.Invalidate(ctx, "suppliers:all*")
	s.log.WithField("supplier_id", id).Info("Supplier updated")

	return supplier, nil
}

// DeleteSupplier soft-deletes a supplier
func (s *Service) DeleteSupplier(ctx context.Context, id uint) error {
	supplier, err := s.GetSupplier(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(supplier).Error; err != nil {
		return fmt.Errorf("failed to delete supplier: %w", err)
	}

	s.cache.Invalidate(ctx, "suppliers:all*")
	s.log.WithField("supplier_id", id).Info("Supplier deleted")

	return nil
}

// PURCHASE ORDERS

// CreateOrder creates a purchase order with server-computed totals and
// a generated sequential order number
func (s *Service) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*PurchaseOrder, error) {
	if err := s.validateRelations(ctx, req.SupplierID, req.WarehouseID, req.Items); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = StatusDraft
	}

	order := &PurchaseOrder{
		SupplierID:  req.SupplierID,
		WarehouseID: req.WarehouseID,
		OrderDate:   time.Now().UTC(),
		Status:      status,
		Taxes:       req.Taxes,
		Shipping:    req.Shipping,
		Notes:       req.Notes,
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, PurchaseOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	ComputeTotals(order)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := NextOrderNumber(tx, time.Now().UTC())
		if err != nil {
			return err
		}
		order.OrderNumber = number

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create purchase order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateOrderCaches(ctx, order)
	s.log.WithFields(logrus.Fields{
		"purchase_order_id": order.ID,
		"order_number":      order.OrderNumber,
	}).Info("Purchase order created")

	return order, nil
}

// GetOrders retrieves purchase orders with pagination
func (s *Service) GetOrders(ctx context.Context, req *OrderListRequest) (*OrderListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}

	key := fmt.Sprintf("purchaseOrders:all:p%d:l%d:s%s", req.Page, req.Limit, req.Status)
	var resp OrderListResponse
	err := s.cache.Cached(ctx, key, s.config.Cache.ListTTL, &resp, func() (interface{}, error) {
		var orders []PurchaseOrder
		var total int64

		query := s.db.WithContext(ctx).Model(&PurchaseOrder{}).
			Preload("Supplier").
			Preload("Items").
			Preload("Items.Product")
		if req.Status != "" {
			query = query.Where("status = ?", req.Status)
		}

		if err := query.Count(&total).Error; err != nil {
			return nil, fmt.Errorf("failed to count purchase orders: %w", err)
		}

		offset := (req.Page - 1) * req.Limit
		if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
			return nil, fmt.Errorf("failed to retrieve purchase orders: %w", err)
		}

		return &OrderListResponse{Orders: orders, Total: total, Page: req.Page, Limit: req.Limit}, nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOrder retrieves a purchase order by ID
func (s *Service) GetOrder(ctx context.Context, id uint) (*PurchaseOrder, error) {
	key := fmt.Sprintf("purchaseOrder:%d", id)
	var order PurchaseOrder
	err := s.cache.Cached(ctx, key, s.config.Cache.ListTTL, &order, func() (interface{}, error) {
		var result PurchaseOrder
		err := s.db.WithContext(ctx).
			Preload("Supplier").
			Preload("Warehouse").
			Preload("Items").
			Preload("Items.Product").
			First(&result, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("purchase order not found")
			}
			return nil, fmt.Errorf("failed to retrieve purchase order: %w", err)
		}
		return &result, nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrder updates a purchase order, recomputing totals whenever
// the lines or charges change
func (s *Service) UpdateOrder(ctx context.Context, id uint, req *UpdateOrderRequest) (*PurchaseOrder, error) {
	var order PurchaseOrder
	if err := s.db.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("purchase order not found")
		}
		return nil, fmt.Errorf("failed to retrieve purchase order: %w", err)
	}

	if req.Items != nil {
		items := make([]OrderItemRequest, len(req.Items))
		copy(items, req.Items)
		if err := s.validateRelations(ctx, order.SupplierID, order.WarehouseID, items); err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.Status != nil {
			order.Status = *req.Status
		}
		if req.Taxes != nil {
			order.Taxes = *req.Taxes
		}
		if req.Shipping != nil {
			order.Shipping = *req.Shipping
		}
		if req.Notes != nil {
			order.Notes = *req.Notes
		}

		if req.Items != nil {
			if err := tx.Where("purchase_order_id = ?", order.ID).Delete(&PurchaseOrderItem{}).Error; err != nil {
				return fmt.Errorf("failed to replace order items: %w", err)
			}
			order.Items = nil
			for _, item := range req.Items {
				order.Items = append(order.Items, PurchaseOrderItem{
					PurchaseOrderID: order.ID,
					ProductID:       item.ProductID,
					Quantity:        item.Quantity,
					UnitPrice:       item.UnitPrice,
				})
			}
		}

		ComputeTotals(&order)

		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&order).Error; err != nil {
			return fmt.Errorf("failed to update purchase order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateOrderCaches(ctx, &order)
	s.log.WithField("purchase_order_id", order.ID).Info("Purchase order updated")

	return &order, nil
}

// DeleteOrder soft-deletes a purchase order
func (s *Service) DeleteOrder(ctx context.Context, id uint) error {
	var order PurchaseOrder
	if err := s.db.WithContext(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("purchase order not found")
		}
		return fmt.Errorf("failed to retrieve purchase order: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&order).Error; err != nil {
		return fmt.Errorf("failed to delete purchase order: %w", err)
	}

	s.cache.Invalidate(ctx, "purchaseOrders:all*", fmt.Sprintf("purchaseOrder:%d", id))
	s.log.WithField("purchase_order_id", id).Info("Purchase order deleted")

	return nil
}

// validateRelations ensures the supplier, warehouse and every line's
// product exist before a purchase order touches them
func (s *Service) validateRelations(ctx context.Context, supplierID, warehouseID uint, items []OrderItemRequest) error {
	var supplier Supplier
	if err := s.db.WithContext(ctx).First(&supplier, supplierID).Error; err != nil {
		return apperrors.NotFound("supplier not found")
	}

	var wh warehouse.Warehouse
	if err := s.db.WithContext(ctx).First(&wh, warehouseID).Error; err != nil {
		return apperrors.NotFound("warehouse not found")
	}

	for _, item := range items {
		var p product.Product
		if err := s.db.WithContext(ctx).First(&p, item.ProductID).Error; err != nil {
			return apperrors.NotFound("product not found: %d", item.ProductID)
		}
	}

	return nil
}

func (s *Service) invalidateOrderCaches(ctx context.Context, order *PurchaseOrder) {
	patterns := []string{
		"purchaseOrders:all*",
		fmt.Sprintf("purchaseOrder:%d", order.ID),
		"products:all*",
	}
	for _, item := range order.Items {
		patterns = append(patterns, fmt.Sprintf("product:%d", item.ProductID))
	}
	s.cache.Invalidate(ctx, patterns...)
}
