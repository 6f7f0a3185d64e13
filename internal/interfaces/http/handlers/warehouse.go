// internal/interfaces/http/handlers/warehouse.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/erp-backend/internal/config"
	"github.com/your-org/erp-backend/internal/domain/warehouse"
)

// WarehouseHandler handles warehouse endpoints
type WarehouseHandler struct {
	warehouseService *warehouse.Service
	config           *config.Config
}

// NewWarehouseHandler creates a new warehouse handler
func NewWarehouseHandler(svc *warehouse.Service, cfg *config.Config) *WarehouseHandler {
	return &WarehouseHandler{
		warehouseService: svc,
		config:           cfg,
	}
}

// CreateWarehouse handles POST /warehouses
func (h *WarehouseHandler) CreateWarehouse(c *gin.Context) {
	var req warehouse.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	wh, err := h.warehouseService.CreateWarehouse(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Warehouse created successfully",
		"data":    wh,
	})
}

// GetWarehouses handles GET /warehouses
func (h *WarehouseHandler) GetWarehouses(c *gin.Context) {
	warehouses, err := h.warehouseService.GetWarehouses(c.Request.Context())
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Warehouses retrieved successfully",
		"data":    warehouses,
	})
}

// GetDefaultWarehouse handles GET /warehouses/default
func (h *WarehouseHandler) GetDefaultWarehouse(c *gin.Context) {
	wh, err := h.warehouseService.GetDefaultWarehouse(c.Request.Context())
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Default warehouse retrieved successfully",
		"data":    wh,
	})
}

// GetWarehouse handles GET /warehouses/:id
func (h *WarehouseHandler) GetWarehouse(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	wh, err := h.warehouseService.GetWarehouse(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Warehouse retrieved successfully",
		"data":    wh,
	})
}

// UpdateWarehouse handles PUT /warehouses/:id
func (h *WarehouseHandler) UpdateWarehouse(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req warehouse.UpdateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	wh, err := h.warehouseService.UpdateWarehouse(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Warehouse updated successfully",
		"data":    wh,
	})
}

// DeleteWarehouse handles DELETE /warehouses/:id
func (h *WarehouseHandler) DeleteWarehouse(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.warehouseService.DeleteWarehouse(c.Request.Context(), id); err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Warehouse deleted successfully",
	})
}
