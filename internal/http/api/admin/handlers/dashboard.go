package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"gorm.io/gorm"
)

// DashboardHandler serves the admin overview counters.
type DashboardHandler struct {
	db *gorm.DB
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// Overview returns entity counts and completed revenue. Each figure comes
// from its own query; the numbers are not a single snapshot and may drift
// relative to each other under concurrent writes.
func (h *DashboardHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()

	var userCount int64
	if errCount := h.db.WithContext(ctx).Model(&models.User{}).Count(&userCount).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dashboard query failed"})
		return
	}

	var subscriptionCount int64
	if errCount := h.db.WithContext(ctx).Model(&models.Subscription{}).Count(&subscriptionCount).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dashboard query failed"})
		return
	}

	var activeSubscriptionCount int64
	if errCount := h.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("status = ?", models.SubscriptionStatusActive).
		Count(&activeSubscriptionCount).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dashboard query failed"})
		return
	}

	var vpsCount int64
	if errCount := h.db.WithContext(ctx).Model(&models.VPSSubscription{}).Count(&vpsCount).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dashboard query failed"})
		return
	}

	var activeVPSCount int64
	if errCount := h.db.WithContext(ctx).Model(&models.VPSSubscription{}).
		Where("status = ?", models.VPSStatusActive).
		Count(&activeVPSCount).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dashboard query failed"})
		return
	}

	var paymentCount int64
	if errCount := h.db.WithContext(ctx).Model(&models.Payment{}).Count(&paymentCount).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dashboard query failed"})
		return
	}

	var pendingPaymentCount int64
	if errCount := h.db.WithContext(ctx).Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusPending).
		Count(&pendingPaymentCount).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dashboard query failed"})
		return
	}

	var totalRevenue float64
	if errSum := h.db.WithContext(ctx).Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totalRevenue).Error; errSum != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dashboard query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":                userCount,
		"subscriptions":        subscriptionCount,
		"active_subscriptions": activeSubscriptionCount,
		"vps_subscriptions":    vpsCount,
		"active_vps":           activeVPSCount,
		"payments":             paymentCount,
		"pending_payments":     pendingPaymentCount,
		"total_revenue":        totalRevenue,
	})
}
