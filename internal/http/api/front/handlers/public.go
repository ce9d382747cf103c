package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"gorm.io/gorm"
)

// PublicHandler serves the unauthenticated marketing endpoints.
type PublicHandler struct {
	db *gorm.DB
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(db *gorm.DB) *PublicHandler {
	return &PublicHandler{db: db}
}

// Plans returns the active VPS plan catalog.
func (h *PublicHandler) Plans(c *gin.Context) {
	var rows []models.VPSPlan
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("is_active = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list plans failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":          row.ID,
			"name":        row.Name,
			"description": row.Description,
			"specs":       row.Specs,
			"pricing":     row.Pricing,
			"is_popular":  row.IsPopular,
		})
	}
	c.JSON(http.StatusOK, gin.H{"plans": out})
}

// Performance returns published stats, monthly returns, and the equity
// curve, optionally narrowed to one EA product.
func (h *PublicHandler) Performance(c *gin.Context) {
	ctx := c.Request.Context()
	eaType := strings.TrimSpace(c.Query("ea_type"))
	if eaType != "" && !models.ValidEAType(eaType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ea_type"})
		return
	}

	statsQuery := h.db.WithContext(ctx).Model(&models.EAPerformanceStat{})
	returnsQuery := h.db.WithContext(ctx).Model(&models.EAMonthlyReturn{})
	equityQuery := h.db.WithContext(ctx).Model(&models.EAEquityPoint{})
	if eaType != "" {
		statsQuery = statsQuery.Where("ea_type = ?", eaType)
		returnsQuery = returnsQuery.Where("ea_type = ?", eaType)
		equityQuery = equityQuery.Where("ea_type = ?", eaType)
	}

	var stats []models.EAPerformanceStat
	if errFind := statsQuery.Order("ea_type ASC").Find(&stats).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query performance failed"})
		return
	}
	var monthlyReturns []models.EAMonthlyReturn
	if errFind := returnsQuery.Order("year ASC, month ASC").Find(&monthlyReturns).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query performance failed"})
		return
	}
	var equity []models.EAEquityPoint
	if errFind := equityQuery.Order("recorded_at ASC").Find(&equity).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query performance failed"})
		return
	}

	statsOut := make([]gin.H, 0, len(stats))
	for _, stat := range stats {
		statsOut = append(statsOut, gin.H{
			"ea_type":          stat.EAType,
			"total_gain_pct":   stat.TotalGainPct,
			"monthly_avg_pct":  stat.MonthlyAvgPct,
			"max_drawdown_pct": stat.MaxDrawdownPct,
			"win_rate_pct":     stat.WinRatePct,
			"profit_factor":    stat.ProfitFactor,
			"total_trades":     stat.TotalTrades,
		})
	}
	returnsOut := make([]gin.H, 0, len(monthlyReturns))
	for _, row := range monthlyReturns {
		returnsOut = append(returnsOut, gin.H{
			"ea_type":    row.EAType,
			"year":       row.Year,
			"month":      row.Month,
			"return_pct": row.ReturnPct,
		})
	}
	equityOut := make([]gin.H, 0, len(equity))
	for _, row := range equity {
		equityOut = append(equityOut, gin.H{
			"ea_type":     row.EAType,
			"recorded_at": row.RecordedAt,
			"equity":      row.Equity,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":           statsOut,
		"monthly_returns": returnsOut,
		"equity":          equityOut,
	})
}

// InvestorAccounts returns the publicly listed read-only MT5 accounts.
func (h *PublicHandler) InvestorAccounts(c *gin.Context) {
	var rows []models.MT5InvestorAccount
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("is_active = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list investor accounts failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"account_number":    row.AccountNumber,
			"broker":            row.Broker,
			"server":            row.Server,
			"investor_password": row.InvestorPassword,
			"ea_type":           row.EAType,
		})
	}
	c.JSON(http.StatusOK, gin.H{"investor_accounts": out})
}
