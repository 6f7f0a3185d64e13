// internal/domain/warehouse/service.go
package warehouse

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

// Service handles warehouse business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	cache  cache.Cache
	log    *logrus.Entry
}

// NewService creates a new warehouse service
func NewService(db *gorm.DB, cfg *config.Config, c cache.Cache, log *logrus.Entry) *Service {
	return &Service{
		db:     db,
		config: cfg,
		cache:  c,
		log:    log,
	}
}

// CreateWarehouseRequest represents warehouse creation data
type CreateWarehouseRequest struct {
	Name      string `json:"name" binding:"required"`
	Code      string `json:"code" binding:"required"`
	Location  string `json:"location"`
	IsDefault bool   `json:"is_default"`
}

// UpdateWarehouseRequest represents warehouse update data
type UpdateWarehouseRequest struct {
	Name      *string `json:"name,omitempty"`
	Location  *string `json:"location,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
	IsDefault *bool   `json:"is_default,omitempty"`
}

// CreateWarehouse creates a new warehouse
func (s *Service) CreateWarehouse(ctx context.Context, req *CreateWarehouseRequest) (*Warehouse, error) {
	var existing Warehouse
	if err := s.db.WithContext(ctx).Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return nil, apperrors.Conflict("warehouse with code '%s' already exists", req.Code)
	}

	// Only one default warehouse at a time
	if req.IsDefault {
		s.db.WithContext(ctx).Model(&Warehouse{}).Where("is_default = ?", true).Update("is_default", false)
	}

	warehouse := &Warehouse{
		Name:      req.Name,
		Code:      req.Code,
		Location:  req.Location,
		IsDefault: req.IsDefault,
		IsActive:  true,
	}

	if err := s.db.WithContext(ctx).Create(warehouse).Error; err != nil {
		return nil, fmt.Errorf("failed to create warehouse: %w", err)
	}

	s.cache.Invalidate(ctx, "warehouses:all*")
	s.log.WithField("warehouse_id", warehouse.ID).Info("Warehouse created")

	return warehouse, nil
}

// GetWarehouses retrieves all active warehouses
func (s *Service) GetWarehouses(ctx context.Context) ([]Warehouse, error) {
	var warehouses []Warehouse
	err := s.cache.Cached(ctx, "warehouses:all", s.config.Cache.ListTTL, &warehouses, func() (interface{}, error) {
		var result []Warehouse
		if err := s.db.WithContext(ctx).Where("is_active = ?", true).Find(&result).Error; err != nil {
			return nil, fmt.Errorf("failed to retrieve warehouses: %w", err)
		}
		return result, nil
	})
	return warehouses, err
}

// GetWarehouse retrieves a warehouse by ID
func (s *Service) GetWarehouse(ctx context.Context, id uint) (*Warehouse, error) {
	var warehouse Warehouse
	if err := s.db.WithContext(ctx).First(&warehouse, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("warehouse not found")
		}
		return nil, fmt.Errorf("failed to retrieve warehouse: %w", err)
	}
	return &warehouse, nil
}

// GetDefaultWarehouse gets the default warehouse
func (s *Service) GetDefaultWarehouse(ctx context.Context) (*Warehouse, error) {
	var warehouse Warehouse
	if err := s.db.WithContext(ctx).Where("is_default = ? AND is_active = ?", true, true).First(&warehouse).Error; err != nil {
		return nil, apperrors.NotFound("default warehouse not found")
	}
	return &warehouse, nil
}

// UpdateWarehouse updates warehouse fields
func (s *Service) UpdateWarehouse(ctx context.Context, id uint, req *UpdateWarehouseRequest) (*Warehouse, error) {
	warehouse, err := s.GetWarehouse(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsDefault != nil {
		if *req.IsDefault {
			s.db.WithContext(ctx).Model(&Warehouse{}).Where("is_default = ?", true).Update("is_default", false)
		}
		updates["is_default"] = *req.IsDefault
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(warehouse).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update warehouse: %w", err)
		}
	}

	s.cache.Invalidate(ctx, "warehouses:all*", fmt.Sprintf("warehouse:%d", id))
	s.log.WithField("warehouse_id", id).Info("Warehouse updated")

	return warehouse, nil
}

// DeleteWarehouse soft-deletes a warehouse
func (s *Service) DeleteWarehouse(ctx context.Context, id uint) error {
	warehouse, err := s.GetWarehouse(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(warehouse).Error; err != nil {
		return fmt.Errorf("failed to delete warehouse: %w", err)
	}

	s.cache.Invalidate(ctx, "warehouses:all*", fmt.Sprintf("warehouse:%d", id))
	s.log.WithField("warehouse_id", id).Info("Warehouse deleted")

	return nil
}
