package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"github.com/fxedge-labs/ea-portal/internal/security"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"gorm.io/gorm"
)

// totpIssuer appears in authenticator apps next to the account name.
const totpIssuer = "EA Portal"

// MFAHandler manages second-factor enrollment for the authenticated user.
type MFAHandler struct {
	db       *gorm.DB
	webAuthn *webauthn.WebAuthn
	sessions *security.SessionStore
}

// NewMFAHandler constructs an MFAHandler.
func NewMFAHandler(db *gorm.DB, wa *webauthn.WebAuthn, sessions *security.SessionStore) *MFAHandler {
	return &MFAHandler{db: db, webAuthn: wa, sessions: sessions}
}

// Status reports which second factors are enrolled.
func (h *MFAHandler) Status(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"totp":    user.TOTPSecret != "",
		"passkey": security.HasPasskey(user),
	})
}

// PrepareTOTP generates a fresh TOTP secret for enrollment. Nothing is
// persisted until the code is confirmed.
func (h *MFAHandler) PrepareTOTP(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if user.TOTPSecret != "" {
		c.JSON(http.StatusConflict, gin.H{"error": "totp already enrolled"})
		return
	}

	secret, url, errGenerate := security.GenerateTOTPSecret(totpIssuer, user.Email)
	if errGenerate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate totp secret failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"secret": secret, "url": url})
}

// confirmTOTPRequest defines the request body for confirming TOTP enrollment.
type confirmTOTPRequest struct {
	Secret string `json:"secret"`
	Code   string `json:"code"`
}

// ConfirmTOTP verifies a code against the prepared secret and enables TOTP.
func (h *MFAHandler) ConfirmTOTP(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if user.TOTPSecret != "" {
		c.JSON(http.StatusConflict, gin.H{"error": "totp already enrolled"})
		return
	}

	var body confirmTOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	secret := strings.TrimSpace(body.Secret)
	if secret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "secret is required"})
		return
	}
	if !security.ValidateTOTP(strings.TrimSpace(body.Code), secret) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid code"})
		return
	}

	if errSave := h.db.WithContext(c.Request.Context()).Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"totp_secret": secret,
		"updated_at":  time.Now().UTC(),
	}).Error; errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enable totp failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DisableTOTP removes the stored TOTP secret.
func (h *MFAHandler) DisableTOTP(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if user.TOTPSecret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "totp not enrolled"})
		return
	}
	if errSave := h.db.WithContext(c.Request.Context()).Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"totp_secret": "",
		"updated_at":  time.Now().UTC(),
	}).Error; errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "disable totp failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// BeginPasskeyRegistration starts a passkey enrollment ceremony.
func (h *MFAHandler) BeginPasskeyRegistration(c *gin.Context) {
	if h.webAuthn == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "passkeys unavailable"})
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	options, session, errBegin := h.webAuthn.BeginRegistration(security.WebAuthnUser{User: user})
	if errBegin != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "begin passkey registration failed"})
		return
	}
	ref := h.sessions.Put(user.ID, *session)
	c.JSON(http.StatusOK, gin.H{"options": options, "session": ref})
}

// FinishPasskeyRegistration verifies the attestation and stores the
// credential. The ceremony reference travels in the session query
// parameter; the body carries the raw authenticator response.
func (h *MFAHandler) FinishPasskeyRegistration(c *gin.Context) {
	if h.webAuthn == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "passkeys unavailable"})
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	sessionUserID, session, okSession := h.sessions.Take(strings.TrimSpace(c.Query("session")))
	if !okSession || sessionUserID != user.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown or expired passkey session"})
		return
	}

	parsed, errParse := protocol.ParseCredentialCreationResponseBody(c.Request.Body)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid passkey response"})
		return
	}

	credential, errCreate := h.webAuthn.CreateCredential(security.WebAuthnUser{User: user}, session, parsed)
	if errCreate != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passkey verification failed"})
		return
	}

	security.ApplyCredential(user, credential)
	if errSave := h.db.WithContext(c.Request.Context()).Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"passkey_id":              user.PasskeyID,
		"passkey_public_key":      user.PasskeyPublicKey,
		"passkey_sign_count":      user.PasskeySignCount,
		"passkey_backup_eligible": user.PasskeyBackupEligible,
		"passkey_backup_state":    user.PasskeyBackupState,
		"updated_at":              time.Now().UTC(),
	}).Error; errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store credential failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DisablePasskey removes the stored passkey credential.
func (h *MFAHandler) DisablePasskey(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if !security.HasPasskey(user) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passkey not enrolled"})
		return
	}

	security.ClearCredential(user)
	if errSave := h.db.WithContext(c.Request.Context()).Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"passkey_id":              user.PasskeyID,
		"passkey_public_key":      user.PasskeyPublicKey,
		"passkey_sign_count":      user.PasskeySignCount,
		"passkey_backup_eligible": user.PasskeyBackupEligible,
		"passkey_backup_state":    user.PasskeyBackupState,
		"updated_at":              time.Now().UTC(),
	}).Error; errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "remove credential failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// currentUser loads the authenticated user, writing the error response
// itself on failure.
func (h *MFAHandler) currentUser(c *gin.Context) (*models.User, bool) {
	userID := getUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; errFind != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return nil, false
	}
	return &user, true
}
