// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/erp-backend/internal/config"
	"github.com/your-org/erp-backend/internal/infrastructure/cache"
	"github.com/your-org/erp-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles catalog reads for the inventory core
type Service struct {
	db     *gorm.DB
	config *config.Config
	cache  cache.Cache
	log    *logrus.Entry
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config, c cache.Cache, log *logrus.Entry) *Service {
	return &Service{
		db:     db,
		config: cfg,
		cache:  c,
		log:    log,
	}
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	SKU         string `json:"sku" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"required,gt=0"`
}

// UpdateProductRequest represents product update data
type UpdateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *int64  `json:"price,omitempty" binding:"omitempty,gt=0"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=20"`
}

// ProductListResponse represents a paginated product listing
type ProductListResponse struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}

// CreateProduct creates a new catalog product
func (s *Service) CreateProduct(ctx context.Context, req *CreateProductRequest) (*Product, error) {
	var existing Product
	if err := s.db.WithContext(ctx).Where("sku = ?", req.SKU).First(&existing).Error; err == nil {
		return nil, apperrors.Conflict("product with SKU %s already exists", req.SKU)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing product: %w", err)
	}

	p := &Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsActive:    true,
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.cache.Invalidate(ctx, "products:all*")
	s.log.WithFields(logrus.Fields{"product_id": p.ID, "sku": p.SKU}).Info("product created")
	return p, nil
}

// UpdateProduct updates catalog fields of a product
func (s *Service) UpdateProduct(ctx context.Context, id uint, req *UpdateProductRequest) (*Product, error) {
	var p Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.cache.Invalidate(ctx, "products:all*", fmt.Sprintf("product:%d", id))
	return &p, nil
}

// GetProducts retrieves active products with pagination
func (s *Service) GetProducts(ctx context.Context, req *ProductListRequest) (*ProductListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}

	key := fmt.Sprintf("products:all:p%d:l%d", req.Page, req.Limit)
	var resp ProductListResponse
	err := s.cache.Cached(ctx, key, s.config.Cache.ListTTL, &resp, func() (interface{}, error) {
		var products []Product
		var total int64

		query := s.db.WithContext(ctx).Model(&Product{}).Where("is_active = ?", true)
		if err := query.Count(&total).Error; err != nil {
			return nil, fmt.Errorf("failed to count products: %w", err)
		}

		offset := (req.Page - 1) * req.Limit
		if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
			return nil, fmt.Errorf("failed to retrieve products: %w", err)
		}

		return &ProductListResponse{
			Products: products,
			Total:    total,
			Page:     req.Page,
			Limit:    req.Limit,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	key := fmt.Sprintf("product:%d", id)
	var p Product
	err := s.cache.Cached(ctx, key, s.config.Cache.ListTTL, &p, func() (interface{}, error) {
		var result Product
		if err := s.db.WithContext(ctx).First(&result, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("product not found")
			}
			return nil, fmt.Errorf("failed to retrieve product: %w", err)
		}
		return &result, nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}
