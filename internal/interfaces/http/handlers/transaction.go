// internal/interfaces/http/handlers/transaction.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/erp-backend/internal/config"
	"github.com/your-org/erp-backend/internal/domain/transaction"
	"github.com/your-org/erp-backend/internal/interfaces/http/middleware"
)

// TransactionHandler handles sale and return transaction endpoints
type TransactionHandler struct {
	transactionService *transaction.Service
	config             *config.Config
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(svc *transaction.Service, cfg *config.Config) *TransactionHandler {
	return &TransactionHandler{
		transactionService: svc,
		config:             cfg,
	}
}

// CreateSale handles POST /transactions/sales
func (h *TransactionHandler) CreateSale(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req transaction.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	txn, err := h.transactionService.CreateSale(c.Request.Context(), &req, userID)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Sale transaction created successfully",
		"data":    txn,
	})
}

// CreateReturn handles POST /transactions/returns
func (h *TransactionHandler) CreateReturn(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req transaction.CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	txn, err := h.transactionService.CreateReturn(c.Request.Context(), &req, userID)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Return transaction created successfully",
		"data":    txn,
	})
}

// GetTransactions handles GET /transactions
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	var req transaction.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.transactionService.GetTransactions(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Transactions retrieved successfully",
		"data":    resp,
	})
}

// GetTransaction handles GET /transactions/:id
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	txn, err := h.transactionService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.config, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Transaction retrieved successfully",
		"data":    txn,
	})
}
