package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/fxedge-labs/ea-portal/internal/config"
	handlers "github.com/fxedge-labs/ea-portal/internal/http/api/admin/handlers"
	"github.com/fxedge-labs/ea-portal/internal/licensekey"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"github.com/fxedge-labs/ea-portal/internal/roles"
	"github.com/fxedge-labs/ea-portal/internal/security"
	"gorm.io/gorm"
)

// RegisterAdminRoutes registers admin routes, middleware, and handlers.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig) {
	if r == nil || db == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(db)
	r.GET("/healthz", healthHandler.Healthz)

	adminGroup := r.Group("/v0/admin")

	staffOnly := adminGroup.Group("")
	staffOnly.Use(authMiddleware(db, jwtCfg))
	staffOnly.Use(requireElevated(db))

	dashboardHandler := handlers.NewDashboardHandler(db)
	staffOnly.GET("/dashboard", dashboardHandler.Overview)

	userHandler := handlers.NewUserHandler(db)
	staffOnly.POST("/users", userHandler.Create)
	staffOnly.GET("/users", userHandler.List)
	staffOnly.GET("/users/:id", userHandler.Get)
	staffOnly.PUT("/users/:id", userHandler.Update)
	staffOnly.POST("/users/:id/enable", userHandler.Enable)
	staffOnly.POST("/users/:id/disable", userHandler.Disable)

	subscriptionHandler := handlers.NewSubscriptionHandler(db)
	staffOnly.POST("/subscriptions", subscriptionHandler.Create)
	staffOnly.GET("/subscriptions", subscriptionHandler.List)
	staffOnly.GET("/subscriptions/:id", subscriptionHandler.Get)
	staffOnly.PUT("/subscriptions/:id", subscriptionHandler.Update)
	staffOnly.PUT("/subscriptions/:id/status", subscriptionHandler.UpdateStatus)

	licenseKeyHandler := handlers.NewLicenseKeyHandler(db, licensekey.NewGenerator())
	staffOnly.POST("/subscriptions/:id/license-keys", licenseKeyHandler.Generate)
	staffOnly.GET("/license-keys", licenseKeyHandler.List)
	staffOnly.POST("/license-keys/:id/toggle", licenseKeyHandler.Toggle)

	paymentHandler := handlers.NewPaymentHandler(db)
	staffOnly.POST("/payments", paymentHandler.Create)
	staffOnly.GET("/payments", paymentHandler.List)
	staffOnly.GET("/payments/summary", paymentHandler.Summary)
	staffOnly.GET("/payments/:id", paymentHandler.Get)
	staffOnly.PUT("/payments/:id/status", paymentHandler.UpdateStatus)

	vpsPlanHandler := handlers.NewVPSPlanHandler(db)
	staffOnly.POST("/vps-plans", vpsPlanHandler.Create)
	staffOnly.GET("/vps-plans", vpsPlanHandler.List)
	staffOnly.GET("/vps-plans/:id", vpsPlanHandler.Get)
	staffOnly.PUT("/vps-plans/:id", vpsPlanHandler.Update)
	staffOnly.DELETE("/vps-plans/:id", vpsPlanHandler.Delete)

	vpsSubscriptionHandler := handlers.NewVPSSubscriptionHandler(db)
	staffOnly.POST("/vps-subscriptions", vpsSubscriptionHandler.Create)
	staffOnly.GET("/vps-subscriptions", vpsSubscriptionHandler.List)
	staffOnly.GET("/vps-subscriptions/:id", vpsSubscriptionHandler.Get)
	staffOnly.PUT("/vps-subscriptions/:id", vpsSubscriptionHandler.Update)
	staffOnly.DELETE("/vps-subscriptions/:id", vpsSubscriptionHandler.Delete)

	investorAccountHandler := handlers.NewInvestorAccountHandler(db)
	staffOnly.POST("/investor-accounts", investorAccountHandler.Create)
	staffOnly.GET("/investor-accounts", investorAccountHandler.List)
	staffOnly.PUT("/investor-accounts/:id", investorAccountHandler.Update)
	staffOnly.DELETE("/investor-accounts/:id", investorAccountHandler.Delete)

	performanceHandler := handlers.NewPerformanceHandler(db)
	staffOnly.PUT("/performance/stats", performanceHandler.UpsertStat)
	staffOnly.GET("/performance/stats", performanceHandler.ListStats)
	staffOnly.PUT("/performance/monthly-returns", performanceHandler.UpsertMonthlyReturn)
	staffOnly.GET("/performance/monthly-returns", performanceHandler.ListMonthlyReturns)
	staffOnly.POST("/performance/equity", performanceHandler.AddEquityPoint)
	staffOnly.GET("/performance/equity", performanceHandler.ListEquityPoints)
	staffOnly.DELETE("/performance/equity/:id", performanceHandler.DeleteEquityPoint)

	settingHandler := handlers.NewSettingHandler(db)
	staffOnly.GET("/settings", settingHandler.List)
	staffOnly.PUT("/settings/:key", settingHandler.Upsert)
	staffOnly.DELETE("/settings/:key", settingHandler.Delete)

	// Role grants change who can reach this surface at all, so they are
	// held back from staff accounts.
	adminOnly := adminGroup.Group("")
	adminOnly.Use(authMiddleware(db, jwtCfg))
	adminOnly.Use(requireAdmin(db))

	roleHandler := handlers.NewRoleHandler(db)
	adminOnly.POST("/users/:id/roles", roleHandler.Grant)
	adminOnly.DELETE("/users/:id/roles/:role", roleHandler.Revoke)
}

// authMiddleware validates session JWTs and loads the calling user.
func authMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if claims.Scope != security.ScopeSession {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if !user.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account disabled"})
			return
		}

		c.Set("userID", user.ID)
		c.Set("userEmail", user.Email)
		c.Next()
	}
}

// requireElevated allows only users holding the admin or staff role. A
// resolver failure is reported as a server error, never as a silent deny.
func requireElevated(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint64("userID")
		set, errResolve := roles.Resolve(c.Request.Context(), db, userID)
		if errResolve != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "role lookup failed"})
			return
		}
		if !set.IsAdminOrStaff() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}

// requireAdmin allows only users holding the admin role.
func requireAdmin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint64("userID")
		set, errResolve := roles.Resolve(c.Request.Context(), db, userID)
		if errResolve != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "role lookup failed"})
			return
		}
		if !set.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}
