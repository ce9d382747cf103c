package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"gorm.io/gorm"
)

// SubscriptionFrontHandler serves the authenticated user's EA subscriptions.
type SubscriptionFrontHandler struct {
	db *gorm.DB
}

// NewSubscriptionFrontHandler constructs a SubscriptionFrontHandler.
func NewSubscriptionFrontHandler(db *gorm.DB) *SubscriptionFrontHandler {
	return &SubscriptionFrontHandler{db: db}
}

// List returns the caller's subscriptions with their license keys.
func (h *SubscriptionFrontHandler) List(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var rows []models.Subscription
	if errFind := h.db.WithContext(c.Request.Context()).
		Preload("LicenseKeys").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list subscriptions failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		keys := make([]gin.H, 0, len(row.LicenseKeys))
		for _, key := range row.LicenseKeys {
			keys = append(keys, formatOwnLicenseKey(&key))
		}
		out = append(out, gin.H{
			"id":           row.ID,
			"package_name": row.PackageName,
			"ea_type":      row.EAType,
			"status":       row.Status,
			"max_accounts": row.MaxAccounts,
			"start_date":   row.StartDate,
			"end_date":     row.EndDate,
			"license_keys": keys,
			"created_at":   row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": out})
}

// formatOwnLicenseKey converts a license key into a customer-facing payload.
func formatOwnLicenseKey(key *models.LicenseKey) gin.H {
	return gin.H{
		"id":                key.ID,
		"subscription_id":   key.SubscriptionID,
		"key":               key.Key,
		"is_active":         key.IsActive,
		"broker_name":       key.BrokerName,
		"mt_account_number": key.MTAccountNumber,
		"activated_at":      key.ActivatedAt,
		"created_at":        key.CreatedAt,
	}
}
