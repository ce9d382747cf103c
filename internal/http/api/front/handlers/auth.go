package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/fxedge-labs/ea-portal/internal/config"
	dbutil "github.com/fxedge-labs/ea-portal/internal/db"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"github.com/fxedge-labs/ea-portal/internal/ratelimit"
	"github.com/fxedge-labs/ea-portal/internal/security"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"gorm.io/gorm"
)

// loginAttemptsPerMinute bounds credential checks per client IP.
const loginAttemptsPerMinute = 10

// AuthHandler handles registration and the login flow, including the
// second factor step for accounts with TOTP or a passkey enrolled.
type AuthHandler struct {
	db       *gorm.DB
	jwtCfg   config.JWTConfig
	webAuthn *webauthn.WebAuthn
	sessions *security.SessionStore
	limiter  *ratelimit.MemoryLimiter
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, wa *webauthn.WebAuthn, sessions *security.SessionStore) *AuthHandler {
	return &AuthHandler{
		db:       db,
		jwtCfg:   jwtCfg,
		webAuthn: wa,
		sessions: sessions,
		limiter:  ratelimit.NewMemoryLimiter(loginAttemptsPerMinute, time.Minute),
	}
}

// registerRequest defines the request body for account registration.
type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
}

// Register creates a customer account and returns a session token.
func (h *AuthHandler) Register(c *gin.Context) {
	var body registerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}
	if len(body.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
		return
	}

	hashed, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	now := time.Now().UTC()
	user := models.User{
		Email:       email,
		Password:    hashed,
		DisplayName: strings.TrimSpace(body.DisplayName),
		Phone:       strings.TrimSpace(body.Phone),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&user).Error; errCreate != nil {
		if dbutil.IsUniqueViolation(errCreate) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create account failed"})
		return
	}

	token, errToken := security.IssueToken(h.jwtCfg.Secret, h.jwtCfg.Expiry, user.ID, user.Email, security.ScopeSession)
	if errToken != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user_id": user.ID})
}

// loginRequest defines the request body for the first login step.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials. Accounts with a second factor enrolled get a
// short-lived MFA token instead of a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	if res := h.limiter.Allow("login:"+c.ClientIP(), time.Now().UTC()); !res.Allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts"})
		return
	}

	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))

	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).Where("email = ?", email).First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query user failed"})
		return
	}
	if !security.CheckPassword(user.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
		return
	}

	hasTOTP := user.TOTPSecret != ""
	hasPasskey := security.HasPasskey(&user)
	if hasTOTP || hasPasskey {
		mfaToken, errToken := security.IssueToken(h.jwtCfg.Secret, security.MFATokenExpiry, user.ID, user.Email, security.ScopeMFA)
		if errToken != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
			return
		}
		methods := make([]string, 0, 2)
		if hasTOTP {
			methods = append(methods, "totp")
		}
		if hasPasskey {
			methods = append(methods, "passkey")
		}
		c.JSON(http.StatusOK, gin.H{"mfa_required": true, "mfa_token": mfaToken, "methods": methods})
		return
	}

	token, errToken := security.IssueToken(h.jwtCfg.Secret, h.jwtCfg.Expiry, user.ID, user.Email, security.ScopeSession)
	if errToken != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user_id": user.ID})
}

// loginTOTPRequest defines the request body for the TOTP login step.
type loginTOTPRequest struct {
	MFAToken string `json:"mfa_token"`
	Code     string `json:"code"`
}

// LoginTOTP completes a pending login with a TOTP code.
func (h *AuthHandler) LoginTOTP(c *gin.Context) {
	var body loginTOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	user, ok := h.pendingUser(c, body.MFAToken)
	if !ok {
		return
	}
	if user.TOTPSecret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "totp not enrolled"})
		return
	}
	if !security.ValidateTOTP(strings.TrimSpace(body.Code), user.TOTPSecret) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid code"})
		return
	}

	token, errToken := security.IssueToken(h.jwtCfg.Secret, h.jwtCfg.Expiry, user.ID, user.Email, security.ScopeSession)
	if errToken != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user_id": user.ID})
}

// loginPasskeyOptionsRequest defines the request body for starting a
// passkey assertion.
type loginPasskeyOptionsRequest struct {
	MFAToken string `json:"mfa_token"`
}

// LoginPasskeyOptions starts a passkey assertion for a pending login.
func (h *AuthHandler) LoginPasskeyOptions(c *gin.Context) {
	if h.webAuthn == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "passkeys unavailable"})
		return
	}
	var body loginPasskeyOptionsRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	user, ok := h.pendingUser(c, body.MFAToken)
	if !ok {
		return
	}
	if !security.HasPasskey(user) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passkey not enrolled"})
		return
	}

	options, session, errBegin := h.webAuthn.BeginLogin(security.WebAuthnUser{User: user})
	if errBegin != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "begin passkey login failed"})
		return
	}
	ref := h.sessions.Put(user.ID, *session)
	c.JSON(http.StatusOK, gin.H{"options": options, "session": ref})
}

// LoginPasskeyVerify completes a pending login with a passkey assertion.
// The MFA token and ceremony reference travel in query parameters; the
// request body carries the raw authenticator response.
func (h *AuthHandler) LoginPasskeyVerify(c *gin.Context) {
	if h.webAuthn == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "passkeys unavailable"})
		return
	}

	user, ok := h.pendingUser(c, c.Query("mfa_token"))
	if !ok {
		return
	}

	sessionUserID, session, okSession := h.sessions.Take(strings.TrimSpace(c.Query("session")))
	if !okSession || sessionUserID != user.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown or expired passkey session"})
		return
	}

	parsed, errParse := protocol.ParseCredentialRequestResponseBody(c.Request.Body)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid passkey response"})
		return
	}

	credential, errValidate := h.webAuthn.ValidateLogin(security.WebAuthnUser{User: user}, session, parsed)
	if errValidate != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "passkey verification failed"})
		return
	}

	security.ApplyCredential(user, credential)
	if errSave := h.db.WithContext(c.Request.Context()).Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"passkey_sign_count": user.PasskeySignCount,
		"updated_at":         time.Now().UTC(),
	}).Error; errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update credential failed"})
		return
	}

	token, errToken := security.IssueToken(h.jwtCfg.Secret, h.jwtCfg.Expiry, user.ID, user.Email, security.ScopeSession)
	if errToken != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user_id": user.ID})
}

// pendingUser resolves an MFA-scope token to its user, writing the error
// response itself on failure.
func (h *AuthHandler) pendingUser(c *gin.Context, mfaToken string) (*models.User, bool) {
	claims, errJWT := security.ParseToken(h.jwtCfg.Secret, strings.TrimSpace(mfaToken))
	if errJWT != nil || claims.Scope != security.ScopeMFA {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid mfa token"})
		return nil, false
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; errFind != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return nil, false
	}
	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
		return nil, false
	}
	return &user, true
}
