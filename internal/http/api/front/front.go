package front

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/fxedge-labs/ea-portal/internal/config"
	handlers "github.com/fxedge-labs/ea-portal/internal/http/api/front/handlers"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"github.com/fxedge-labs/ea-portal/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RegisterFrontRoutes registers the customer-facing and public routes.
func RegisterFrontRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {
	if r == nil || db == nil {
		return
	}

	webAuthn, errWebAuthn := security.NewWebAuthn(security.WebAuthnSettings{
		RPDisplayName: cfg.WebAuthn.RPDisplayName,
		RPID:          cfg.WebAuthn.RPID,
		RPOrigins:     cfg.WebAuthn.RPOrigins,
	})
	if errWebAuthn != nil {
		log.WithError(errWebAuthn).Warn("webauthn disabled: invalid relying-party settings")
		webAuthn = nil
	}
	sessions := security.NewSessionStore()

	publicHandler := handlers.NewPublicHandler(db)
	r.GET("/v0/plans", publicHandler.Plans)
	r.GET("/v0/performance", publicHandler.Performance)
	r.GET("/v0/investor-accounts", publicHandler.InvestorAccounts)

	authHandler := handlers.NewAuthHandler(db, cfg.JWT, webAuthn, sessions)
	authGroup := r.Group("/v0/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/login/totp", authHandler.LoginTOTP)
	authGroup.POST("/login/passkey/options", authHandler.LoginPasskeyOptions)
	authGroup.POST("/login/passkey/verify", authHandler.LoginPasskeyVerify)

	meGroup := r.Group("/v0/me")
	meGroup.Use(userAuthMiddleware(db, cfg.JWT))

	profileHandler := handlers.NewProfileHandler(db)
	meGroup.GET("", profileHandler.Me)
	meGroup.PUT("", profileHandler.Update)

	mfaHandler := handlers.NewMFAHandler(db, webAuthn, sessions)
	meGroup.GET("/mfa/status", mfaHandler.Status)
	meGroup.POST("/mfa/totp/prepare", mfaHandler.PrepareTOTP)
	meGroup.POST("/mfa/totp/confirm", mfaHandler.ConfirmTOTP)
	meGroup.POST("/mfa/totp/disable", mfaHandler.DisableTOTP)
	meGroup.POST("/mfa/passkey/options", mfaHandler.BeginPasskeyRegistration)
	meGroup.POST("/mfa/passkey/verify", mfaHandler.FinishPasskeyRegistration)
	meGroup.POST("/mfa/passkey/disable", mfaHandler.DisablePasskey)

	subscriptionHandler := handlers.NewSubscriptionFrontHandler(db)
	meGroup.GET("/subscriptions", subscriptionHandler.List)

	licenseKeyHandler := handlers.NewLicenseKeyFrontHandler(db)
	meGroup.GET("/license-keys", licenseKeyHandler.List)
	meGroup.POST("/license-keys/:id/activate", licenseKeyHandler.Activate)

	vpsHandler := handlers.NewVPSFrontHandler(db)
	meGroup.GET("/vps", vpsHandler.List)

	paymentHandler := handlers.NewPaymentFrontHandler(db)
	meGroup.GET("/payments", paymentHandler.List)
}

// userAuthMiddleware validates session JWTs and stores the user ID in the
// request context for the front handlers.
func userAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
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

		handlers.SetUserID(c, user.ID)
		c.Next()
	}
}
