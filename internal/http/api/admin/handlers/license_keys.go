package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	dbutil "github.com/fxedge-labs/ea-portal/internal/db"
	"github.com/fxedge-labs/ea-portal/internal/licensekey"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"gorm.io/gorm"
)

// LicenseKeyHandler manages license key issuance and state toggling.
type LicenseKeyHandler struct {
	db        *gorm.DB
	generator licensekey.Generator
}

// NewLicenseKeyHandler constructs a LicenseKeyHandler.
func NewLicenseKeyHandler(db *gorm.DB, generator licensekey.Generator) *LicenseKeyHandler {
	return &LicenseKeyHandler{db: db, generator: generator}
}

// Generate issues a new license key bound to a subscription. The key string
// comes from the generator collaborator; a uniqueness clash at the storage
// layer surfaces as a conflict rather than being retried.
func (h *LicenseKeyHandler) Generate(c *gin.Context) {
	subscriptionID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var subscription models.Subscription
	if errFind := h.db.WithContext(c.Request.Context()).First(&subscription, subscriptionID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	key, errGenerate := h.generator.Generate()
	if errGenerate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate key failed"})
		return
	}

	now := time.Now().UTC()
	row := models.LicenseKey{
		SubscriptionID: subscriptionID,
		Key:            key,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&row).Error; errCreate != nil {
		if dbutil.IsUniqueViolation(errCreate) {
			c.JSON(http.StatusConflict, gin.H{"error": "key collision, retry generation"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create license key failed"})
		return
	}
	c.JSON(http.StatusCreated, formatLicenseKey(&row))
}

// List returns license keys, optionally filtered by subscription or state.
func (h *LicenseKeyHandler) List(c *gin.Context) {
	var (
		subscriptionQ = strings.TrimSpace(c.Query("subscription_id"))
		activeQ       = strings.TrimSpace(c.Query("is_active"))
	)

	q := h.db.WithContext(c.Request.Context()).Model(&models.LicenseKey{})
	if subscriptionQ != "" {
		if id, errParse := strconv.ParseUint(subscriptionQ, 10, 64); errParse == nil {
			q = q.Where("subscription_id = ?", id)
		}
	}
	if activeQ == "true" || activeQ == "1" {
		q = q.Where("is_active = ?", true)
	} else if activeQ == "false" || activeQ == "0" {
		q = q.Where("is_active = ?", false)
	}

	var rows []models.LicenseKey
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list license keys failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, formatLicenseKey(&row))
	}
	c.JSON(http.StatusOK, gin.H{"license_keys": out})
}

// Toggle flips the active flag on a license key. No other validation runs;
// the key string itself is immutable.
func (h *LicenseKeyHandler) Toggle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var row models.LicenseKey
	if errFind := h.db.WithContext(c.Request.Context()).First(&row, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.LicenseKey{}).Where("id = ?", id).
		Updates(map[string]any{"is_active": !row.IsActive, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_active": !row.IsActive})
}

// formatLicenseKey converts a license key into a response payload.
func formatLicenseKey(k *models.LicenseKey) gin.H {
	return gin.H{
		"id":                k.ID,
		"subscription_id":   k.SubscriptionID,
		"key":               k.Key,
		"is_active":         k.IsActive,
		"broker_name":       k.BrokerName,
		"mt_account_number": k.MTAccountNumber,
		"activated_at":      k.ActivatedAt,
		"created_at":        k.CreatedAt,
		"updated_at":        k.UpdatedAt,
	}
}
