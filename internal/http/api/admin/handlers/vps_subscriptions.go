package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"github.com/fxedge-labs/ea-portal/internal/vps"
	"gorm.io/gorm"
)

// VPSSubscriptionHandler manages admin CRUD endpoints for VPS leases.
type VPSSubscriptionHandler struct {
	db *gorm.DB
}

// NewVPSSubscriptionHandler constructs a VPSSubscriptionHandler.
func NewVPSSubscriptionHandler(db *gorm.DB) *VPSSubscriptionHandler {
	return &VPSSubscriptionHandler{db: db}
}

// createVPSSubscriptionRequest captures the payload for creating a lease.
type createVPSSubscriptionRequest struct {
	UserID    uint64  `json:"user_id"`    // Owning user ID.
	PlanID    *uint64 `json:"plan_id"`    // Optional catalog plan ID.
	PlanName  string  `json:"plan_name"`  // Plan name at time of lease.
	Status    string  `json:"status"`     // Optional initial status label.
	StartDate string  `json:"start_date"` // Optional lease start date.
	EndDate   string  `json:"end_date"`   // Lease end date.
	IP        string  `json:"ip"`         // Optional server IP.
	Username  string  `json:"username"`   // Optional server login.
	Password  string  `json:"password"`   // Optional server password.
	Notes     string  `json:"notes"`      // Operator notes.
}

// Create validates input and inserts a VPS lease.
func (h *VPSSubscriptionHandler) Create(c *gin.Context) {
	var body createVPSSubscriptionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	planName := strings.TrimSpace(body.PlanName)
	if planName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plan_name is required"})
		return
	}
	if strings.TrimSpace(body.EndDate) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date is required"})
		return
	}
	endDate, errParseEnd := parseDate(body.EndDate)
	if errParseEnd != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}

	now := time.Now().UTC()
	startDate := now
	if strings.TrimSpace(body.StartDate) != "" {
		parsed, errParseStart := parseDate(body.StartDate)
		if errParseStart != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
			return
		}
		startDate = parsed
	}

	status := strings.TrimSpace(body.Status)
	if status == "" {
		status = models.VPSStatusActive
	}
	if !models.ValidVPSStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active, suspended, or cancelled"})
		return
	}

	if body.PlanID != nil {
		var plan models.VPSPlan
		if errFind := h.db.WithContext(c.Request.Context()).First(&plan, *body.PlanID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query plan failed"})
			return
		}
	}

	lease := models.VPSSubscription{
		UserID:    body.UserID,
		PlanID:    body.PlanID,
		PlanName:  planName,
		Status:    status,
		StartDate: startDate,
		EndDate:   endDate,
		IP:        strings.TrimSpace(body.IP),
		Username:  strings.TrimSpace(body.Username),
		Password:  body.Password,
		Notes:     strings.TrimSpace(body.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&lease).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create vps subscription failed"})
		return
	}
	c.JSON(http.StatusCreated, formatVPSSubscription(&lease, now))
}

// List returns VPS leases with optional filters, newest first. Counts by
// stored status use the stored label; the per-row payload also carries the
// derived display status.
func (h *VPSSubscriptionHandler) List(c *gin.Context) {
	var (
		userIDQ = strings.TrimSpace(c.Query("user_id"))
		statusQ = strings.TrimSpace(c.Query("status"))
	)

	q := h.db.WithContext(c.Request.Context()).Model(&models.VPSSubscription{})
	if userIDQ != "" {
		if id, errParse := strconv.ParseUint(userIDQ, 10, 64); errParse == nil {
			q = q.Where("user_id = ?", id)
		}
	}
	if statusQ != "" {
		q = q.Where("status = ?", statusQ)
	}

	var rows []models.VPSSubscription
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list vps subscriptions failed"})
		return
	}
	now := time.Now().UTC()
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, formatVPSSubscription(&row, now))
	}
	c.JSON(http.StatusOK, gin.H{"vps_subscriptions": out})
}

// Get fetches a VPS lease by ID.
func (h *VPSSubscriptionHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var lease models.VPSSubscription
	if errFind := h.db.WithContext(c.Request.Context()).First(&lease, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, formatVPSSubscription(&lease, time.Now().UTC()))
}

// updateVPSSubscriptionRequest captures optional lease field updates.
type updateVPSSubscriptionRequest struct {
	PlanID    *uint64 `json:"plan_id"`    // Optional catalog plan ID.
	PlanName  *string `json:"plan_name"`  // Optional plan name.
	Status    *string `json:"status"`     // Optional status label.
	StartDate *string `json:"start_date"` // Optional start date.
	EndDate   *string `json:"end_date"`   // Optional end date.
	IP        *string `json:"ip"`         // Optional server IP.
	Username  *string `json:"username"`   // Optional server login.
	Password  *string `json:"password"`   // Optional server password.
	Notes     *string `json:"notes"`      // Optional operator notes.
}

// Update applies partial field updates to a VPS lease. Setting the status
// label here is the only way the stored label changes; expiry never does
// it implicitly.
func (h *VPSSubscriptionHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateVPSSubscriptionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if body.PlanID != nil {
		var plan models.VPSPlan
		if errFind := h.db.WithContext(c.Request.Context()).First(&plan, *body.PlanID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query plan failed"})
			return
		}
		updates["plan_id"] = *body.PlanID
	}
	if body.PlanName != nil {
		name := strings.TrimSpace(*body.PlanName)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "plan_name cannot be empty"})
			return
		}
		updates["plan_name"] = name
	}
	if body.Status != nil {
		if !models.ValidVPSStatus(*body.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		updates["status"] = *body.Status
	}
	if body.StartDate != nil {
		parsed, errParse := parseDate(*body.StartDate)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
			return
		}
		updates["start_date"] = parsed
	}
	if body.EndDate != nil {
		parsed, errParse := parseDate(*body.EndDate)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
			return
		}
		updates["end_date"] = parsed
	}
	if body.IP != nil {
		updates["ip"] = strings.TrimSpace(*body.IP)
	}
	if body.Username != nil {
		updates["username"] = strings.TrimSpace(*body.Username)
	}
	if body.Password != nil {
		updates["password"] = *body.Password
	}
	if body.Notes != nil {
		updates["notes"] = strings.TrimSpace(*body.Notes)
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.VPSSubscription{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes a VPS lease by ID.
func (h *VPSSubscriptionHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.VPSSubscription{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// formatVPSSubscription converts a lease into a response payload. The
// stored status and the derived display status are both present so screens
// can choose the one they need.
func formatVPSSubscription(s *models.VPSSubscription, now time.Time) gin.H {
	days := vps.DaysRemaining(s.EndDate, now)
	return gin.H{
		"id":               s.ID,
		"user_id":          s.UserID,
		"plan_id":          s.PlanID,
		"plan_name":        s.PlanName,
		"status":           s.Status,
		"effective_status": vps.EffectiveStatus(s.Status, s.EndDate, now),
		"days_remaining":   days,
		"classification":   vps.Classify(days),
		"remaining":        vps.Describe(days),
		"start_date":       s.StartDate,
		"end_date":         s.EndDate,
		"ip":               s.IP,
		"username":         s.Username,
		"password":         s.Password,
		"notes":            s.Notes,
		"created_at":       s.CreatedAt,
		"updated_at":       s.UpdatedAt,
	}
}
