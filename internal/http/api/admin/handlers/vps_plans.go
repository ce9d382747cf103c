package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VPSPlanHandler manages admin CRUD endpoints for the VPS catalog.
type VPSPlanHandler struct {
	db *gorm.DB
}

// NewVPSPlanHandler constructs a VPSPlanHandler.
func NewVPSPlanHandler(db *gorm.DB) *VPSPlanHandler {
	return &VPSPlanHandler{db: db}
}

// planPriceTier defines one entry in the pricing payload.
type planPriceTier struct {
	Months int     `json:"months"` // Lease duration in months.
	Price  float64 `json:"price"`  // Price for the duration.
}

// normalizePlanPricing validates and normalizes the pricing JSON payload.
func normalizePlanPricing(raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return datatypes.JSON([]byte("[]")), nil
	}

	var tiers []planPriceTier
	if errUnmarshal := json.Unmarshal(raw, &tiers); errUnmarshal != nil {
		return nil, errors.New("invalid pricing")
	}
	cleaned := make([]planPriceTier, 0, len(tiers))
	for _, tier := range tiers {
		if tier.Months <= 0 || tier.Price < 0 {
			return nil, errors.New("invalid pricing")
		}
		cleaned = append(cleaned, tier)
	}
	rawPricing, errMarshal := json.Marshal(cleaned)
	if errMarshal != nil {
		return nil, errMarshal
	}
	return datatypes.JSON(rawPricing), nil
}

// normalizePlanSpecs validates the specs JSON payload is an object.
func normalizePlanSpecs(raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return datatypes.JSON([]byte("{}")), nil
	}
	var specs map[string]any
	if errUnmarshal := json.Unmarshal(raw, &specs); errUnmarshal != nil {
		return nil, errors.New("invalid specs")
	}
	rawSpecs, errMarshal := json.Marshal(specs)
	if errMarshal != nil {
		return nil, errMarshal
	}
	return datatypes.JSON(rawSpecs), nil
}

// createVPSPlanRequest captures the payload for creating a catalog plan.
type createVPSPlanRequest struct {
	Name        string          `json:"name"`        // Plan name.
	Description string          `json:"description"` // Plan description.
	Specs       json.RawMessage `json:"specs"`       // Hardware specs payload.
	Pricing     json.RawMessage `json:"pricing"`     // Duration pricing payload.
	IsPopular   bool            `json:"is_popular"`  // Marketing highlight flag.
	IsActive    *bool           `json:"is_active"`   // Optional active flag.
	SortOrder   int             `json:"sort_order"`  // Display order.
}

// Create validates input and inserts a catalog plan.
func (h *VPSPlanHandler) Create(c *gin.Context) {
	var body createVPSPlanRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	specs, errSpecs := normalizePlanSpecs(body.Specs)
	if errSpecs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid specs"})
		return
	}
	pricing, errPricing := normalizePlanPricing(body.Pricing)
	if errPricing != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pricing"})
		return
	}

	isActive := true
	if body.IsActive != nil {
		isActive = *body.IsActive
	}

	now := time.Now().UTC()
	plan := models.VPSPlan{
		Name:        strings.TrimSpace(body.Name),
		Description: body.Description,
		Specs:       specs,
		Pricing:     pricing,
		IsPopular:   body.IsPopular,
		IsActive:    isActive,
		SortOrder:   body.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&plan).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create plan failed"})
		return
	}
	c.JSON(http.StatusCreated, formatVPSPlan(&plan))
}

// List returns catalog plans, optionally filtered by active flag.
func (h *VPSPlanHandler) List(c *gin.Context) {
	activeQ := strings.TrimSpace(c.Query("is_active"))

	q := h.db.WithContext(c.Request.Context()).Model(&models.VPSPlan{})
	if activeQ == "true" || activeQ == "1" {
		q = q.Where("is_active = ?", true)
	} else if activeQ == "false" || activeQ == "0" {
		q = q.Where("is_active = ?", false)
	}

	var rows []models.VPSPlan
	if errFind := q.Order("sort_order ASC, created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list plans failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, formatVPSPlan(&row))
	}
	c.JSON(http.StatusOK, gin.H{"plans": out})
}

// Get fetches a catalog plan by ID.
func (h *VPSPlanHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var plan models.VPSPlan
	if errFind := h.db.WithContext(c.Request.Context()).First(&plan, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, formatVPSPlan(&plan))
}

// updateVPSPlanRequest captures optional catalog plan field updates.
type updateVPSPlanRequest struct {
	Name        *string          `json:"name"`        // Optional name.
	Description *string          `json:"description"` // Optional description.
	Specs       *json.RawMessage `json:"specs"`       // Optional specs payload.
	Pricing     *json.RawMessage `json:"pricing"`     // Optional pricing payload.
	IsPopular   *bool            `json:"is_popular"`  // Optional highlight flag.
	IsActive    *bool            `json:"is_active"`   // Optional active flag.
	SortOrder   *int             `json:"sort_order"`  // Optional display order.
}

// Update validates and applies catalog plan field updates.
func (h *VPSPlanHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateVPSPlanRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
			return
		}
		updates["name"] = name
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.Specs != nil {
		specs, errSpecs := normalizePlanSpecs(*body.Specs)
		if errSpecs != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid specs"})
			return
		}
		updates["specs"] = specs
	}
	if body.Pricing != nil {
		pricing, errPricing := normalizePlanPricing(*body.Pricing)
		if errPricing != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pricing"})
			return
		}
		updates["pricing"] = pricing
	}
	if body.IsPopular != nil {
		updates["is_popular"] = *body.IsPopular
	}
	if body.IsActive != nil {
		updates["is_active"] = *body.IsActive
	}
	if body.SortOrder != nil {
		updates["sort_order"] = *body.SortOrder
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.VPSPlan{}).Where("id = ?", id).Updates(updates)
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

// Delete removes a catalog plan by ID.
func (h *VPSPlanHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.VPSPlan{}, id)
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

// formatVPSPlan converts a catalog plan into a response payload.
func formatVPSPlan(p *models.VPSPlan) gin.H {
	return gin.H{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"specs":       p.Specs,
		"pricing":     p.Pricing,
		"is_popular":  p.IsPopular,
		"is_active":   p.IsActive,
		"sort_order":  p.SortOrder,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}
