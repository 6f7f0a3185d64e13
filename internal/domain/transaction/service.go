// internal/domain/transaction/service.go
package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/erp-backend/internal/config"
	"github.com/your-org/erp-backend/internal/domain/inventory"
	"github.com/your-org/erp-backend/internal/domain/order"
	"github.com/your-org/erp-backend/internal/domain/product"
	"github.com/your-org/erp-backend/internal/infrastructure/cache"
	"github.com/your-org/erp-backend/internal/pkg/apperrors"
	"github.com/your-org/erp-backend/internal/pkg/notify"
	"gorm.io/gorm"
)

// Service converts fulfilled sales orders into stock-deducting ledger
// transactions and handles returns against prior sales
type Service struct {
	db       *gorm.DB
	config   *config.Config
	cache    cache.Cache
	notifier notify.Notifier
	log      *logrus.Entry
}

// NewService creates a new transaction service
func NewService(db *gorm.DB, cfg *config.Config, c cache.Cache, notifier notify.Notifier, log *logrus.Entry) *Service {
	return &Service{
		db:       db,
		config:   cfg,
		cache:    c,
		notifier: notifier,
		log:      log,
	}
}

// CreateSaleRequest represents sale transaction creation data
type CreateSaleRequest struct {
	OrderNumber string `json:"order_number" binding:"required"`
	WarehouseID uint   `json:"warehouse_id" binding:"required"`
}

// ReturnItemRequest is one line of a return request
type ReturnItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// CreateReturnRequest represents return transaction creation data
type CreateReturnRequest struct {
	TransactionNumber string              `json:"transaction_number" binding:"required"`
	Items             []ReturnItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ListRequest represents transaction list query parameters
type ListRequest struct {
	Page  int  `form:"page,default=1"`
	Limit int  `form:"limit,default=20"`
	Type  Type `form:"type"`
}

// ListResponse represents a paginated transaction listing
type ListResponse struct {
	Transactions []Transaction `json:"transactions"`
	Total        int64         `json:"total"`
	Page         int           `json:"page"`
	Limit        int           `json:"limit"`
}

// CreateSale deducts on-hand stock for every line of a fulfilled
// order and records the sale. All deductions and the audit record
// commit or roll back as one unit; a single short line aborts the
// whole sale with no partial deduction.
func (s *Service) CreateSale(ctx context.Context, req *CreateSaleRequest, userID uint) (*Transaction, error) {
	var created *Transaction
	var orderDoc order.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Items").Where("order_number = ?", req.OrderNumber).First(&orderDoc).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("order not found")
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		for _, item := range orderDoc.Items {
			invItem, err := inventory.FindItem(tx, item.ProductID, req.WarehouseID)
			if err != nil {
				return err
			}
			if invItem.OnHand < item.Quantity {
				return apperrors.InvalidOperation("insufficient stock quantity")
			}
			if err := inventory.ApplyDelta(tx, item.ProductID, req.WarehouseID, inventory.BucketOnHand, item.Quantity, inventory.DirectionSubtract); err != nil {
				return err
			}
		}

		totalAmount := orderDoc.TotalAmount
		if totalAmount == 0 {
			for _, item := range orderDoc.Items {
				totalAmount += int64(item.Quantity) * item.Price
			}
		}

		number, err := NextTransactionNumber(tx, time.Now().UTC())
		if err != nil {
			return err
		}

		created = &Transaction{
			TransactionNumber: number,
			OrderID:           &orderDoc.ID,
			WarehouseID:       req.WarehouseID,
			Type:              TypeSale,
			TotalAmount:       totalAmount,
			CreatedBy:         userID,
		}
		for _, item := range orderDoc.Items {
			created.Items = append(created.Items, TransactionItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
			})
		}

		if err := tx.Create(created).Error; err != nil {
			return fmt.Errorf("failed to create sale transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, created, TypeSale)

	s.log.WithFields(logrus.Fields{
		"transaction_id":     created.ID,
		"transaction_number": created.TransactionNumber,
	}).Info("Sale transaction created")

	return created, nil
}

// CreateReturn restores stock for a prior sale and records the return.
// A sale can be returned at most once: the isReturned guard rejects a
// second return outright, even for different items.
func (s *Service) CreateReturn(ctx context.Context, req *CreateReturnRequest, userID uint) (*Transaction, error) {
	var created *Transaction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sale Transaction
		err := tx.Preload("Items").Where("transaction_number = ?", req.TransactionNumber).First(&sale).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("original sale transaction not found")
			}
			return fmt.Errorf("failed to load sale transaction: %w", err)
		}

		if sale.Type != TypeSale {
			return apperrors.InvalidOperation("only sale transactions can be returned")
		}
		if sale.IsReturned {
			return apperrors.InvalidOperation("this sale transaction has already been returned")
		}

		// Return lines must match sale lines and keep the sale's
		// recorded prices.
		returnItems := make([]TransactionItem, 0, len(req.Items))
		for _, retItem := range req.Items {
			originalItem := sale.ItemFor(retItem.ProductID)
			if originalItem == nil || retItem.Quantity > originalItem.Quantity {
				return apperrors.InvalidOperation("invalid return items or quantities")
			}
			returnItems = append(returnItems, TransactionItem{
				ProductID: retItem.ProductID,
				Quantity:  retItem.Quantity,
				Price:     originalItem.Price,
			})
		}

		for _, item := range returnItems {
			if err := inventory.ApplyDelta(tx, item.ProductID, sale.WarehouseID, inventory.BucketOnHand, item.Quantity, inventory.DirectionAdd); err != nil {
				return err
			}
		}

		var totalAmount int64
		for _, item := range returnItems {
			totalAmount += int64(item.Quantity) * item.Price
		}

		number, err := NextTransactionNumber(tx, time.Now().UTC())
		if err != nil {
			return err
		}

		created = &Transaction{
			TransactionNumber: number,
			WarehouseID:       sale.WarehouseID,
			Type:              TypeReturn,
			TotalAmount:       totalAmount,
			ReturnOfID:        &sale.ID,
			CreatedBy:         userID,
			Items:             returnItems,
		}
		if err := tx.Create(created).Error; err != nil {
			return fmt.Errorf("failed to create return transaction: %w", err)
		}

		if err := tx.Model(&sale).Update("is_returned", true).Error; err != nil {
			return fmt.Errorf("failed to flag sale as returned: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, created, TypeReturn)

	s.log.WithFields(logrus.Fields{
		"transaction_id":     created.ID,
		"transaction_number": created.TransactionNumber,
	}).Info("Return transaction created")

	return created, nil
}

// GetTransactions retrieves transactions with pagination
func (s *Service) GetTransactions(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}

	key := fmt.Sprintf("transactions:all:p%d:l%d:t%s", req.Page, req.Limit, req.Type)
	var resp ListResponse
	err := s.cache.Cached(ctx, key, s.config.Cache.ListTTL, &resp, func() (interface{}, error) {
		var transactions []Transaction
		var total int64

		query := s.db.WithContext(ctx).Model(&Transaction{}).
			Preload("Order").
			Preload("Warehouse").
			Preload("Items").
			Preload("Items.Product")
		if req.Type != "" {
			query = query.Where("type = ?", req.Type)
		}

		if err := query.Count(&total).Error; err != nil {
			return nil, fmt.Errorf("failed to count transactions: %w", err)
		}

		offset := (req.Page - 1) * req.Limit
		if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&transactions).Error; err != nil {
			return nil, fmt.Errorf("failed to retrieve transactions: %w", err)
		}

		return &ListResponse{Transactions: transactions, Total: total, Page: req.Page, Limit: req.Limit}, nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTransaction retrieves a single transaction by ID
func (s *Service) GetTransaction(ctx context.Context, id uint) (*Transaction, error) {
	key := fmt.Sprintf("transaction:%d", id)
	var t Transaction
	err := s.cache.Cached(ctx, key, s.config.Cache.ListTTL, &t, func() (interface{}, error) {
		var result Transaction
		err := s.db.WithContext(ctx).
			Preload("Order").
			Preload("Warehouse").
			Preload("ReturnOf").
			Preload("Items").
			Preload("Items.Product").
			First(&result, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("transaction not found")
			}
			return nil, fmt.Errorf("failed to retrieve transaction: %w", err)
		}
		return &result, nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// afterCommit recomputes derived product fields, invalidates read
// caches and raises low-stock notifications for every affected
// product. Runs strictly after a successful commit.
func (s *Service) afterCommit(ctx context.Context, t *Transaction, txType Type) {
	for _, item := range t.Items {
		if err := inventory.RecomputeProductStock(s.db.WithContext(ctx), item.ProductID); err != nil {
			s.log.WithError(err).WithField("product_id", item.ProductID).Warn("Failed to recompute product stock")
		}

		soldDelta := item.Quantity
		if txType == TypeReturn {
			soldDelta = -item.Quantity
		}
		err := s.db.WithContext(ctx).Model(&product.Product{}).
			Where("id = ?", item.ProductID).
			UpdateColumn("sold", gorm.Expr("sold + ?", soldDelta)).Error
		if err != nil {
			s.log.WithError(err).WithField("product_id", item.ProductID).Warn("Failed to update product sold count")
		}

		inventory.CheckLowStock(ctx, s.db, s.notifier, item.ProductID, s.config.Inventory.LowStockThreshold)
	}

	patterns := []string{
		"transactions:all*",
		fmt.Sprintf("transaction:%d", t.ID),
		"inventoryItems:all*",
		"products:all*",
	}
	for _, item := range t.Items {
		patterns = append(patterns, fmt.Sprintf("product:%d", item.ProductID))
	}
	s.cache.Invalidate(ctx, patterns...)
}
