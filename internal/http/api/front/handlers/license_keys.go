package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"gorm.io/gorm"
)

// LicenseKeyFrontHandler lets a customer view and activate their keys.
type LicenseKeyFrontHandler struct {
	db *gorm.DB
}

// NewLicenseKeyFrontHandler constructs a LicenseKeyFrontHandler.
func NewLicenseKeyFrontHandler(db *gorm.DB) *LicenseKeyFrontHandler {
	return &LicenseKeyFrontHandler{db: db}
}

// List returns all license keys across the caller's subscriptions.
func (h *LicenseKeyFrontHandler) List(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var rows []models.LicenseKey
	if errFind := h.db.WithContext(c.Request.Context()).
		Joins("JOIN subscriptions ON subscriptions.id = license_keys.subscription_id").
		Where("subscriptions.user_id = ?", userID).
		Order("license_keys.created_at DESC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list license keys failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, formatOwnLicenseKey(&row))
	}
	c.JSON(http.StatusOK, gin.H{"license_keys": out})
}

// activateRequest defines the request body for key activation.
type activateRequest struct {
	BrokerName      string `json:"broker_name"`
	MTAccountNumber string `json:"mt_account_number"`
}

// Activate records broker and account details against one of the caller's
// keys. The subscription's max_accounts bounds how many keys may carry
// activation details at once.
func (h *LicenseKeyFrontHandler) Activate(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	keyID, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var body activateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	brokerName := strings.TrimSpace(body.BrokerName)
	accountNumber := strings.TrimSpace(body.MTAccountNumber)
	if brokerName == "" || accountNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "broker_name and mt_account_number are required"})
		return
	}

	var key models.LicenseKey
	errFind := h.db.WithContext(c.Request.Context()).
		Joins("JOIN subscriptions ON subscriptions.id = license_keys.subscription_id").
		Where("license_keys.id = ? AND subscriptions.user_id = ?", keyID, userID).
		First(&key).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query license key failed"})
		return
	}
	if !key.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is disabled"})
		return
	}
	if key.ActivatedAt != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "key already activated"})
		return
	}

	var subscription models.Subscription
	if errFindSub := h.db.WithContext(c.Request.Context()).First(&subscription, key.SubscriptionID).Error; errFindSub != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query subscription failed"})
		return
	}
	if subscription.Status != models.SubscriptionStatusActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subscription is not active"})
		return
	}

	var activatedCount int64
	if errCount := h.db.WithContext(c.Request.Context()).
		Model(&models.LicenseKey{}).
		Where("subscription_id = ? AND activated_at IS NOT NULL", key.SubscriptionID).
		Count(&activatedCount).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count activations failed"})
		return
	}
	if activatedCount >= int64(subscription.MaxAccounts) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "activation limit reached for this subscription"})
		return
	}

	now := time.Now().UTC()
	if errSave := h.db.WithContext(c.Request.Context()).Model(&models.LicenseKey{}).Where("id = ?", key.ID).Updates(map[string]any{
		"broker_name":       brokerName,
		"mt_account_number": accountNumber,
		"activated_at":      now,
		"updated_at":        now,
	}).Error; errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "activate key failed"})
		return
	}

	key.BrokerName = brokerName
	key.MTAccountNumber = accountNumber
	key.ActivatedAt = &now
	c.JSON(http.StatusOK, formatOwnLicenseKey(&key))
}
