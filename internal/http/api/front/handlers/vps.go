package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"github.com/fxedge-labs/ea-portal/internal/vps"
	"gorm.io/gorm"
)

// VPSFrontHandler serves the authenticated user's VPS leases.
type VPSFrontHandler struct {
	db *gorm.DB
}

// NewVPSFrontHandler constructs a VPSFrontHandler.
func NewVPSFrontHandler(db *gorm.DB) *VPSFrontHandler {
	return &VPSFrontHandler{db: db}
}

// List returns the caller's VPS leases with derived expiry state. The
// stored status is reported alongside the derived one and is never
// rewritten by this endpoint.
func (h *VPSFrontHandler) List(c *gin.Context) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var rows []models.VPSSubscription
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list vps failed"})
		return
	}

	now := time.Now().UTC()
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		days := vps.DaysRemaining(row.EndDate, now)
		out = append(out, gin.H{
			"id":               row.ID,
			"plan_name":        row.PlanName,
			"status":           row.Status,
			"effective_status": vps.EffectiveStatus(row.Status, row.EndDate, now),
			"days_remaining":   days,
			"classification":   vps.Classify(days),
			"remaining":        vps.Describe(days),
			"start_date":       row.StartDate,
			"end_date":         row.EndDate,
			"ip":               row.IP,
			"username":         row.Username,
			"password":         row.Password,
			"created_at":       row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"vps_subscriptions": out})
}
