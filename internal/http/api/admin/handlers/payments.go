package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentHandler manages the manually confirmed payment ledger.
type PaymentHandler struct {
	db *gorm.DB
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(db *gorm.DB) *PaymentHandler {
	return &PaymentHandler{db: db}
}

// createPaymentRequest captures the payload for recording a payment attempt.
type createPaymentRequest struct {
	UserID         uint64  `json:"user_id"`         // Paying user ID.
	SubscriptionID *uint64 `json:"subscription_id"` // Optional related subscription.
	Amount         float64 `json:"amount"`          // Payment amount.
	Currency       string  `json:"currency"`        // Optional ISO currency code.
	Status         string  `json:"status"`          // Optional initial status label.
	Reference      string  `json:"reference"`       // Optional external reference.
	Notes          string  `json:"notes"`           // Operator notes.
}

// Create records a payment attempt. Status defaults to pending; a blank
// reference gets a generated one so every row is traceable.
func (h *PaymentHandler) Create(c *gin.Context) {
	var body createPaymentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	if body.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	status := strings.TrimSpace(body.Status)
	if status == "" {
		status = models.PaymentStatusPending
	}
	if !models.ValidPaymentStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	currency := strings.ToUpper(strings.TrimSpace(body.Currency))
	if currency == "" {
		currency = "USD"
	}

	if body.SubscriptionID != nil {
		var subscription models.Subscription
		if errFind := h.db.WithContext(c.Request.Context()).First(&subscription, *body.SubscriptionID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query subscription failed"})
			return
		}
	}

	reference := strings.TrimSpace(body.Reference)
	if reference == "" {
		reference = uuid.NewString()
	}

	now := time.Now().UTC()
	payment := models.Payment{
		UserID:         body.UserID,
		SubscriptionID: body.SubscriptionID,
		Amount:         body.Amount,
		Currency:       currency,
		Status:         status,
		Reference:      reference,
		Notes:          strings.TrimSpace(body.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&payment).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create payment failed"})
		return
	}
	c.JSON(http.StatusCreated, formatPayment(&payment))
}

// List returns payments with optional filters, newest first.
func (h *PaymentHandler) List(c *gin.Context) {
	var (
		userIDQ = strings.TrimSpace(c.Query("user_id"))
		statusQ = strings.TrimSpace(c.Query("status"))
	)

	q := h.db.WithContext(c.Request.Context()).Model(&models.Payment{})
	if userIDQ != "" {
		if id, errParse := strconv.ParseUint(userIDQ, 10, 64); errParse == nil {
			q = q.Where("user_id = ?", id)
		}
	}
	if statusQ != "" {
		q = q.Where("status = ?", statusQ)
	}

	var rows []models.Payment
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list payments failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, formatPayment(&row))
	}
	c.JSON(http.StatusOK, gin.H{"payments": out})
}

// Get fetches a payment by ID.
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var payment models.Payment
	if errFind := h.db.WithContext(c.Request.Context()).First(&payment, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, formatPayment(&payment))
}

// UpdateStatus overwrites the payment status label unconditionally. Status
// is the only mutable business field after creation.
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
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
	if !models.ValidPaymentStatus(body.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be pending, completed, failed, or refunded"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Payment{}).Where("id = ?", id).
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

// Summary aggregates the ledger: total revenue counts only completed rows.
func (h *PaymentHandler) Summary(c *gin.Context) {
	var totalRevenue float64
	if errSum := h.db.WithContext(c.Request.Context()).Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totalRevenue).Error; errSum != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}

	type currencyRevenue struct {
		Currency string  `json:"currency"`
		Total    float64 `json:"total"`
	}
	var byCurrency []currencyRevenue
	if errGroup := h.db.WithContext(c.Request.Context()).Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusCompleted).
		Select("currency, COALESCE(SUM(amount), 0) AS total").
		Group("currency").
		Scan(&byCurrency).Error; errGroup != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var byStatus []statusCount
	if errCount := h.db.WithContext(c.Request.Context()).Model(&models.Payment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_revenue": totalRevenue,
		"by_currency":   byCurrency,
		"by_status":     byStatus,
	})
}

// formatPayment converts a payment into a response payload.
func formatPayment(p *models.Payment) gin.H {
	return gin.H{
		"id":              p.ID,
		"user_id":         p.UserID,
		"subscription_id": p.SubscriptionID,
		"amount":          p.Amount,
		"currency":        p.Currency,
		"status":          p.Status,
		"reference":       p.Reference,
		"notes":           p.Notes,
		"created_at":      p.CreatedAt,
		"updated_at":      p.UpdatedAt,
	}
}
