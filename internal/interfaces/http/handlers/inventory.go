// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/erp-backend/internal/config"
	"github.com/your-org/erp-backend/internal/domain/inventory"
	"github.com/your-org/erp-backend/internal/interfaces/http/middleware"
)

// InventoryHandler handles inventory item and stock movement endpoints
type InventoryHandler struct {
	items     *inventory.ItemService
	movements *inventory.MovementService
	config    *config.Config
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(items *inventory.ItemService, movements *inventory.MovementService, cfg *config.Config) *InventoryHandler {
	return &InventoryHandler{
		items:     items,
		movements: movements,
		config:    cfg,
	}
}

// INVENTORY ITEM ENDPOINTS

// CreateItem handles POST /inventory/items
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req inventory.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.items.CreateItem(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Inventory item created successfully",
		"data":    item,
	})
}

// GetItems handles GET /inventory/items
func (h *InventoryHandler) GetItems(c *gin.Context) {
	var req inventory.ItemListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.items.GetItems(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory items retrieved successfully",
		"data":    resp,
	})
}

// GetItem handles GET /inventory/items/:id
func (h *InventoryHandler) GetItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.items.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory item retrieved successfully",
		"data":    item,
	})
}

// UpdateItem handles PUT /inventory/items/:id
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req inventory.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.items.UpdateItem(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory item updated successfully",
		"data":    item,
	})
}

// DeleteItem handles DELETE /inventory/items/:id
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.items.DeleteItem(c.Request.Context(), id); err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory item deleted successfully",
	})
}

// STOCK MOVEMENT ENDPOINTS

// CreateMovement handles POST /inventory/movements
func (h *InventoryHandler) CreateMovement(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req inventory.CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	movement, err := h.movements.CreateMovement(c.Request.Context(), &req, userID)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Stock movement recorded successfully",
		"data":    movement,
	})
}

// GetMovements handles GET /inventory/movements
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	var req inventory.MovementListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.movements.GetMovements(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock movements retrieved successfully",
		"data":    resp,
	})
}

// GetMovement handles GET /inventory/movements/:id
func (h *InventoryHandler) GetMovement(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	movement, err := h.movements.GetMovement(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock movement retrieved successfully",
		"data":    movement,
	})
}
