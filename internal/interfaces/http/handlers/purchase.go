// internal/interfaces/http/handlers/purchase.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/erp-backend/internal/config"
	"github.com/your-org/erp-backend/internal/domain/purchase"
)

// PurchaseHandler handles supplier and purchase order endpoints
type PurchaseHandler struct {
	purchaseService *purchase.Service
	config          *config.Config
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(svc *purchase.Service, cfg *config.Config) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: svc,
		config:          cfg,
	}
}

// SUPPLIER ENDPOINTS

// CreateSupplier handles POST /suppliers
func (h *PurchaseHandler) CreateSupplier(c *gin.Context) {
	var req purchase.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	supplier, err := h.purchaseService.CreateSupplier(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Supplier created successfully",
		"data":    supplier,
	})
}

// GetSuppliers handles GET /suppliers
func (h *PurchaseHandler) GetSuppliers(c *gin.Context) {
	suppliers, err := h.purchaseService.GetSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Suppliers retrieved successfully",
		"data":    suppliers,
	})
}

// GetSupplier handles GET /suppliers/:id
func (h *PurchaseHandler) GetSupplier(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	supplier, err := h.purchaseService.GetSupplier(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier retrieved successfully",
		"data":    supplier,
	})
}

// UpdateSupplier handles PUT /suppliers/:id
func (h *PurchaseHandler) UpdateSupplier(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req purchase.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	supplier, err := h.purchaseService.UpdateSupplier(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier updated successfully",
		"data":    supplier,
	})
}

// DeleteSupplier handles DELETE /suppliers/:id
func (h *PurchaseHandler) DeleteSupplier(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.purchaseService.DeleteSupplier(c.Request.Context(), id); err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Supplier deleted successfully",
	})
}

// PURCHASE ORDER ENDPOINTS

// CreateOrder handles POST /purchase-orders
func (h *PurchaseHandler) CreateOrder(c *gin.Context) {
	var req purchase.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.purchaseService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Purchase order created successfully",
		"data":    order,
	})
}

// GetOrders handles GET /purchase-orders
func (h *PurchaseHandler) GetOrders(c *gin.Context) {
	var req purchase.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.purchaseService.GetOrders(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase orders retrieved successfully",
		"data":    resp,
	})
}

// GetOrder handles GET /purchase-orders/:id
func (h *PurchaseHandler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.purchaseService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase order retrieved successfully",
		"data":    order,
	})
}

// UpdateOrder handles PUT /purchase-orders/:id
func (h *PurchaseHandler) UpdateOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req purchase.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.purchaseService.UpdateOrder(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase order updated successfully",
		"data":    order,
	})
}

// DeleteOrder handles DELETE /purchase-orders/:id
func (h *PurchaseHandler) DeleteOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.purchaseService.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase order deleted successfully",
	})
}
