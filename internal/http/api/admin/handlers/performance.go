package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PerformanceHandler manages the published performance figures: aggregate
// stats, monthly returns, and equity curve points per EA product.
type PerformanceHandler struct {
	db *gorm.DB
}

// NewPerformanceHandler constructs a PerformanceHandler.
func NewPerformanceHandler(db *gorm.DB) *PerformanceHandler {
	return &PerformanceHandler{db: db}
}

// statRequest captures an aggregate performance stat payload.
type statRequest struct {
	EAType         string  `json:"ea_type"`          // EA product type.
	TotalGainPct   float64 `json:"total_gain_pct"`   // Total gain percent.
	MonthlyAvgPct  float64 `json:"monthly_avg_pct"`  // Average monthly return percent.
	MaxDrawdownPct float64 `json:"max_drawdown_pct"` // Maximum drawdown percent.
	WinRatePct     float64 `json:"win_rate_pct"`     // Winning trade percent.
	ProfitFactor   float64 `json:"profit_factor"`    // Gross profit over gross loss.
	TotalTrades    int     `json:"total_trades"`     // Trade count.
}

// UpsertStat creates or replaces the aggregate stats row for an EA product.
// One row per product: repeated submissions overwrite the previous figures.
func (h *PerformanceHandler) UpsertStat(c *gin.Context) {
	var body statRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	eaType := strings.TrimSpace(body.EAType)
	if !models.ValidEAType(eaType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ea_type must be icf, zb, or bundle"})
		return
	}

	now := time.Now().UTC()
	stat := models.EAPerformanceStat{
		EAType:         eaType,
		TotalGainPct:   body.TotalGainPct,
		MonthlyAvgPct:  body.MonthlyAvgPct,
		MaxDrawdownPct: body.MaxDrawdownPct,
		WinRatePct:     body.WinRatePct,
		ProfitFactor:   body.ProfitFactor,
		TotalTrades:    body.TotalTrades,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	errUpsert := h.db.WithContext(c.Request.Context()).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ea_type"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_gain_pct", "monthly_avg_pct", "max_drawdown_pct",
			"win_rate_pct", "profit_factor", "total_trades", "updated_at",
		}),
	}).Create(&stat).Error
	if errUpsert != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save performance stats failed"})
		return
	}
	c.JSON(http.StatusOK, formatStat(&stat))
}

// ListStats returns aggregate stats for all EA products.
func (h *PerformanceHandler) ListStats(c *gin.Context) {
	var rows []models.EAPerformanceStat
	if errFind := h.db.WithContext(c.Request.Context()).Order("ea_type ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list performance stats failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, formatStat(&row))
	}
	c.JSON(http.StatusOK, gin.H{"stats": out})
}

// monthlyReturnRequest captures one month of realized return.
type monthlyReturnRequest struct {
	EAType    string  `json:"ea_type"`    // EA product type.
	Year      int     `json:"year"`       // Calendar year.
	Month     int     `json:"month"`      // Calendar month (1-12).
	ReturnPct float64 `json:"return_pct"` // Realized return percent.
}

// UpsertMonthlyReturn records a month's return, overwriting any existing
// figure for the same product and month.
func (h *PerformanceHandler) UpsertMonthlyReturn(c *gin.Context) {
	var body monthlyReturnRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	eaType := strings.TrimSpace(body.EAType)
	if !models.ValidEAType(eaType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ea_type must be icf, zb, or bundle"})
		return
	}
	if body.Year < 2000 || body.Year > 2100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year out of range"})
		return
	}
	if body.Month < 1 || body.Month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be 1-12"})
		return
	}

	now := time.Now().UTC()
	row := models.EAMonthlyReturn{
		EAType:    eaType,
		Year:      body.Year,
		Month:     body.Month,
		ReturnPct: body.ReturnPct,
		CreatedAt: now,
		UpdatedAt: now,
	}
	errUpsert := h.db.WithContext(c.Request.Context()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ea_type"}, {Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"return_pct", "updated_at"}),
	}).Create(&row).Error
	if errUpsert != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save monthly return failed"})
		return
	}
	c.JSON(http.StatusOK, formatMonthlyReturn(&row))
}

// ListMonthlyReturns returns monthly returns, optionally filtered by EA type.
func (h *PerformanceHandler) ListMonthlyReturns(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.EAMonthlyReturn{})
	if eaType := strings.TrimSpace(c.Query("ea_type")); eaType != "" {
		query = query.Where("ea_type = ?", eaType)
	}
	var rows []models.EAMonthlyReturn
	if errFind := query.Order("year ASC, month ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list monthly returns failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, formatMonthlyReturn(&row))
	}
	c.JSON(http.StatusOK, gin.H{"monthly_returns": out})
}

// equityPointRequest captures one equity curve sample.
type equityPointRequest struct {
	EAType     string  `json:"ea_type"`     // EA product type.
	RecordedAt string  `json:"recorded_at"` // Sample date.
	Equity     float64 `json:"equity"`      // Account equity at the sample.
}

// AddEquityPoint appends a sample to an EA product's equity curve.
func (h *PerformanceHandler) AddEquityPoint(c *gin.Context) {
	var body equityPointRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	eaType := strings.TrimSpace(body.EAType)
	if !models.ValidEAType(eaType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ea_type must be icf, zb, or bundle"})
		return
	}
	recordedAt, errParse := parseDate(body.RecordedAt)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recorded_at must be a valid date"})
		return
	}

	point := models.EAEquityPoint{
		EAType:     eaType,
		RecordedAt: recordedAt,
		Equity:     body.Equity,
		CreatedAt:  time.Now().UTC(),
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&point).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save equity point failed"})
		return
	}
	c.JSON(http.StatusCreated, formatEquityPoint(&point))
}

// ListEquityPoints returns equity curve samples for one EA product.
func (h *PerformanceHandler) ListEquityPoints(c *gin.Context) {
	eaType := strings.TrimSpace(c.Query("ea_type"))
	if !models.ValidEAType(eaType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ea_type must be icf, zb, or bundle"})
		return
	}
	var rows []models.EAEquityPoint
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("ea_type = ?", eaType).
		Order("recorded_at ASC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list equity points failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, formatEquityPoint(&row))
	}
	c.JSON(http.StatusOK, gin.H{"equity": out})
}

// DeleteEquityPoint removes one equity sample by ID.
func (h *PerformanceHandler) DeleteEquityPoint(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.EAEquityPoint{}, id)
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

// formatStat converts aggregate stats into a response payload.
func formatStat(s *models.EAPerformanceStat) gin.H {
	return gin.H{
		"id":               s.ID,
		"ea_type":          s.EAType,
		"total_gain_pct":   s.TotalGainPct,
		"monthly_avg_pct":  s.MonthlyAvgPct,
		"max_drawdown_pct": s.MaxDrawdownPct,
		"win_rate_pct":     s.WinRatePct,
		"profit_factor":    s.ProfitFactor,
		"total_trades":     s.TotalTrades,
		"updated_at":       s.UpdatedAt,
	}
}

// formatMonthlyReturn converts a monthly return into a response payload.
func formatMonthlyReturn(r *models.EAMonthlyReturn) gin.H {
	return gin.H{
		"id":         r.ID,
		"ea_type":    r.EAType,
		"year":       r.Year,
		"month":      r.Month,
		"return_pct": r.ReturnPct,
	}
}

// formatEquityPoint converts an equity sample into a response payload.
func formatEquityPoint(p *models.EAEquityPoint) gin.H {
	return gin.H{
		"id":          p.ID,
		"ea_type":     p.EAType,
		"recorded_at": p.RecordedAt,
		"equity":      p.Equity,
	}
}
