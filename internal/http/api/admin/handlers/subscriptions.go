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

// SubscriptionHandler manages admin CRUD endpoints for EA subscriptions.
type SubscriptionHandler struct {
	db *gorm.DB
}

// NewSubscriptionHandler constructs a SubscriptionHandler.
func NewSubscriptionHandler(db *gorm.DB) *SubscriptionHandler {
	return &SubscriptionHandler{db: db}
}

// createSubscriptionRequest captures the payload for creating a subscription.
type createSubscriptionRequest struct {
	UserID      uint64 `json:"user_id"`      // Owning user ID.
	PackageName string `json:"package_name"` // Free-text package name.
	EAType      string `json:"ea_type"`      // EA product type.
	Status      string `json:"status"`       // Optional initial status label.
	StartDate   string `json:"start_date"`   // Optional start date.
	EndDate     string `json:"end_date"`     // Optional end date.
	MaxAccounts *int   `json:"max_accounts"` // Optional activation bound.
	Notes       string `json:"notes"`        // Operator notes.
}

// Create validates input and inserts a subscription.
func (h *SubscriptionHandler) Create(c *gin.Context) {
	var body createSubscriptionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	packageName := strings.TrimSpace(body.PackageName)
	if packageName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "package_name is required"})
		return
	}
	eaType := strings.TrimSpace(body.EAType)
	if !models.ValidEAType(eaType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ea_type must be icf, zb, or bundle"})
		return
	}

	status := strings.TrimSpace(body.Status)
	if status == "" {
		status = models.SubscriptionStatusPending
	}
	if !models.ValidSubscriptionStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	maxAccounts := 1
	if body.MaxAccounts != nil {
		if *body.MaxAccounts < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_accounts must be at least 1"})
			return
		}
		maxAccounts = *body.MaxAccounts
	}

	var startDate, endDate *time.Time
	if strings.TrimSpace(body.StartDate) != "" {
		parsed, errParse := parseDate(body.StartDate)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
			return
		}
		startDate = &parsed
	}
	if strings.TrimSpace(body.EndDate) != "" {
		parsed, errParse := parseDate(body.EndDate)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
			return
		}
		endDate = &parsed
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, body.UserID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query user failed"})
		return
	}

	now := time.Now().UTC()
	subscription := models.Subscription{
		UserID:      body.UserID,
		PackageName: packageName,
		EAType:      eaType,
		Status:      status,
		MaxAccounts: maxAccounts,
		StartDate:   startDate,
		EndDate:     endDate,
		Notes:       strings.TrimSpace(body.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&subscription).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create subscription failed"})
		return
	}
	c.JSON(http.StatusCreated, formatSubscription(&subscription, &user))
}

// List returns subscriptions with optional filters, newest first.
func (h *SubscriptionHandler) List(c *gin.Context) {
	var (
		userIDQ = strings.TrimSpace(c.Query("user_id"))
		statusQ = strings.TrimSpace(c.Query("status"))
		eaTypeQ = strings.TrimSpace(c.Query("ea_type"))
	)

	q := h.db.WithContext(c.Request.Context()).Model(&models.Subscription{}).Preload("User")
	if userIDQ != "" {
		if id, errParse := strconv.ParseUint(userIDQ, 10, 64); errParse == nil {
			q = q.Where("user_id = ?", id)
		}
	}
	if statusQ != "" {
		q = q.Where("status = ?", statusQ)
	}
	if eaTypeQ != "" {
		q = q.Where("ea_type = ?", eaTypeQ)
	}

	var rows []models.Subscription
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list subscriptions failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, formatSubscription(&row, &row.User))
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": out})
}

// Get fetches a subscription by ID.
func (h *SubscriptionHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var subscription models.Subscription
	if errFind := h.db.WithContext(c.Request.Context()).Preload("User").First(&subscription, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, formatSubscription(&subscription, &subscription.User))
}

// updateSubscriptionRequest captures optional subscription field updates.
type updateSubscriptionRequest struct {
	PackageName *string `json:"package_name"` // Optional package name.
	EAType      *string `json:"ea_type"`      // Optional EA product type.
	StartDate   *string `json:"start_date"`   // Optional start date ("" clears).
	EndDate     *string `json:"end_date"`     // Optional end date ("" clears).
	MaxAccounts *int    `json:"max_accounts"` // Optional activation bound.
	Notes       *string `json:"notes"`        // Optional operator notes.
}

// Update applies partial field updates to a subscription.
func (h *SubscriptionHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateSubscriptionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if body.PackageName != nil {
		name := strings.TrimSpace(*body.PackageName)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "package_name cannot be empty"})
			return
		}
		updates["package_name"] = name
	}
	if body.EAType != nil {
		if !models.ValidEAType(*body.EAType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ea_type"})
			return
		}
		updates["ea_type"] = *body.EAType
	}
	if body.StartDate != nil {
		if strings.TrimSpace(*body.StartDate) == "" {
			updates["start_date"] = nil
		} else {
			parsed, errParse := parseDate(*body.StartDate)
			if errParse != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
				return
			}
			updates["start_date"] = parsed
		}
	}
	if body.EndDate != nil {
		if strings.TrimSpace(*body.EndDate) == "" {
			updates["end_date"] = nil
		} else {
			parsed, errParse := parseDate(*body.EndDate)
			if errParse != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
				return
			}
			updates["end_date"] = parsed
		}
	}
	if body.MaxAccounts != nil {
		if *body.MaxAccounts < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_accounts must be at least 1"})
			return
		}
		updates["max_accounts"] = *body.MaxAccounts
	}
	if body.Notes != nil {
		updates["notes"] = strings.TrimSpace(*body.Notes)
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Subscription{}).Where("id = ?", id).Updates(updates)
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

// statusRequest carries a bare status label.
type statusRequest struct {
	Status string `json:"status"` // New status label.
}

// UpdateStatus overwrites the subscription status label unconditionally.
// Any known label may replace any other label; the status is bookkeeping,
// not a guarded workflow.
func (h *SubscriptionHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body statusRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !models.ValidSubscriptionStatus(body.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be pending, active, expired, or cancelled"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Subscription{}).Where("id = ?", id).
		Updates(map[string]any{"status": body.Status, "updated_at": time.Now().UTC()})
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

// formatSubscription converts a subscription into a response payload.
func formatSubscription(s *models.Subscription, owner *models.User) gin.H {
	out := gin.H{
		"id":           s.ID,
		"user_id":      s.UserID,
		"package_name": s.PackageName,
		"ea_type":      s.EAType,
		"status":       s.Status,
		"max_accounts": s.MaxAccounts,
		"start_date":   s.StartDate,
		"end_date":     s.EndDate,
		"notes":        s.Notes,
		"created_at":   s.CreatedAt,
		"updated_at":   s.UpdatedAt,
	}
	if owner != nil && owner.ID != 0 {
		out["user_email"] = owner.Email
		out["user_display_name"] = owner.DisplayName
	}
	return out
}
