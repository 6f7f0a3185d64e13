// internal/interfaces/http/handlers/common.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/erp-backend/internal/config"
	"github.com/your-org/erp-backend/internal/pkg/apperrors"
)

// respondError writes a JSON error response with the status mapped from the
// error. Internal error details are only exposed outside production.
func respondError(c *gin.Context, cfg *config.Config, err error) {
	status := apperrors.StatusFor(err)

	if appErr, ok := apperrors.As(err); ok {
		c.JSON(status, gin.H{
			"error": appErr.Message,
			"code":  string(appErr.Code),
		})
		return
	}

	if cfg.IsProduction() {
		c.JSON(status, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(status, gin.H{
		"error":   "Internal server error",
		"details": err.Error(),
	})
}

// respondBindError writes a 400 for malformed request bodies
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}

// parseIDParam parses a numeric path parameter
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return 0, false
	}
	return uint(value), true
}
