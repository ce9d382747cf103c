package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	dbutil "github.com/fxedge-labs/ea-portal/internal/db"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"gorm.io/gorm"
)

// InvestorAccountHandler manages the MT5 investor accounts shown as
// performance proof on the marketing pages.
type InvestorAccountHandler struct {
	db *gorm.DB
}

// NewInvestorAccountHandler constructs an InvestorAccountHandler.
func NewInvestorAccountHandler(db *gorm.DB) *InvestorAccountHandler {
	return &InvestorAccountHandler{db: db}
}

// investorAccountRequest captures an MT5 investor account payload.
type investorAccountRequest struct {
	AccountNumber    string `json:"account_number"`    // MT5 account number.
	Broker           string `json:"broker"`            // Broker name.
	Server           string `json:"server"`            // MT5 server name.
	InvestorPassword string `json:"investor_password"` // Read-only credential.
	EAType           string `json:"ea_type"`           // Demonstrated EA product.
	IsActive         *bool  `json:"is_active"`         // Optional visibility flag.
	SortOrder        int    `json:"sort_order"`        // Display order.
}

// Create validates input and inserts an investor account.
func (h *InvestorAccountHandler) Create(c *gin.Context) {
	var body investorAccountRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	accountNumber := strings.TrimSpace(body.AccountNumber)
	if accountNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account_number is required"})
		return
	}
	if strings.TrimSpace(body.InvestorPassword) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "investor_password is required"})
		return
	}
	if !models.ValidEAType(strings.TrimSpace(body.EAType)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ea_type must be icf, zb, or bundle"})
		return
	}

	isActive := true
	if body.IsActive != nil {
		isActive = *body.IsActive
	}

	now := time.Now().UTC()
	account := models.MT5InvestorAccount{
		AccountNumber:    accountNumber,
		Broker:           strings.TrimSpace(body.Broker),
		Server:           strings.TrimSpace(body.Server),
		InvestorPassword: strings.TrimSpace(body.InvestorPassword),
		EAType:           strings.TrimSpace(body.EAType),
		IsActive:         isActive,
		SortOrder:        body.SortOrder,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&account).Error; errCreate != nil {
		if dbutil.IsUniqueViolation(errCreate) {
			c.JSON(http.StatusConflict, gin.H{"error": "account number already listed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create investor account failed"})
		return
	}
	c.JSON(http.StatusCreated, formatInvestorAccount(&account))
}

// List returns all investor accounts ordered for display.
func (h *InvestorAccountHandler) List(c *gin.Context) {
	var rows []models.MT5InvestorAccount
	if errFind := h.db.WithContext(c.Request.Context()).
		Order("sort_order ASC, created_at DESC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list investor accounts failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, formatInvestorAccount(&row))
	}
	c.JSON(http.StatusOK, gin.H{"investor_accounts": out})
}

// updateInvestorAccountRequest captures optional field updates.
type updateInvestorAccountRequest struct {
	Broker           *string `json:"broker"`            // Optional broker name.
	Server           *string `json:"server"`            // Optional server name.
	InvestorPassword *string `json:"investor_password"` // Optional credential.
	EAType           *string `json:"ea_type"`           // Optional EA product.
	IsActive         *bool   `json:"is_active"`         // Optional visibility flag.
	SortOrder        *int    `json:"sort_order"`        // Optional display order.
}

// Update applies field updates to an investor account. The account number
// is the identity of the row and stays fixed.
func (h *InvestorAccountHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateInvestorAccountRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if body.Broker != nil {
		updates["broker"] = strings.TrimSpace(*body.Broker)
	}
	if body.Server != nil {
		updates["server"] = strings.TrimSpace(*body.Server)
	}
	if body.InvestorPassword != nil {
		password := strings.TrimSpace(*body.InvestorPassword)
		if password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "investor_password cannot be empty"})
			return
		}
		updates["investor_password"] = password
	}
	if body.EAType != nil {
		if !models.ValidEAType(*body.EAType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ea_type"})
			return
		}
		updates["ea_type"] = *body.EAType
	}
	if body.IsActive != nil {
		updates["is_active"] = *body.IsActive
	}
	if body.SortOrder != nil {
		updates["sort_order"] = *body.SortOrder
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.MT5InvestorAccount{}).Where("id = ?", id).Updates(updates)
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

// Delete removes an investor account by ID.
func (h *InvestorAccountHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.MT5InvestorAccount{}, id)
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

// formatInvestorAccount converts an investor account into a response payload.
func formatInvestorAccount(a *models.MT5InvestorAccount) gin.H {
	return gin.H{
		"id":                a.ID,
		"account_number":    a.AccountNumber,
		"broker":            a.Broker,
		"server":            a.Server,
		"investor_password": a.InvestorPassword,
		"ea_type":           a.EAType,
		"is_active":         a.IsActive,
		"sort_order":        a.SortOrder,
		"created_at":        a.CreatedAt,
		"updated_at":        a.UpdatedAt,
	}
}
