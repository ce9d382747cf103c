package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"gorm.io/gorm"
)

// PaymentFrontHandler serves the authenticated user's payment history.
type PaymentFrontHandler struct {
	db *gorm.DB
}

// NewPaymentFrontHandler constructs a PaymentFrontHandler.
func NewPaymentFrontHandler(db *gorm.DB) *PaymentFrontHandler {
	return &PaymentFrontHandler{db: db}
}

// List returns the caller's payments, optionally filtered by status.
func (h *PaymentFrontHandler) List(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	q := h.db.WithContext(c.Request.Context()).
		Model(&models.Payment{}).
		Where("user_id = ?", userID)
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		q = q.Where("status = ?", status)
	}

	var rows []models.Payment
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list payments failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":              row.ID,
			"subscription_id": row.SubscriptionID,
			"amount":          row.Amount,
			"currency":        row.Currency,
			"status":          row.Status,
			"reference":       row.Reference,
			"created_at":      row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"payments": out})
}
