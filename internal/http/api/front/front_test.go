package front

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/fxedge-labs/ea-portal/internal/config"
	"github.com/fxedge-labs/ea-portal/internal/db"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"github.com/fxedge-labs/ea-portal/internal/security"
	"gorm.io/gorm"
)

func setupFrontEngine(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	conn, errOpen := db.Open("file:" + filepath.Join(t.TempDir(), "front.db"))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	cfg := &config.Config{}
	cfg.JWT = config.JWTConfig{Secret: "front-test-secret", Expiry: time.Hour}
	cfg.WebAuthn = config.WebAuthnConfig{
		RPDisplayName: "Test",
		RPID:          "localhost",
		RPOrigins:     []string{"http://localhost"},
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	RegisterFrontRoutes(engine, conn, cfg)
	return engine, conn
}

func frontJSON(t *testing.T, engine *gin.Engine, method, target, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var raw []byte
	if body != nil {
		var errMarshal error
		raw, errMarshal = json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal request: %v", errMarshal)
		}
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	out := map[string]any{}
	if len(rec.Body.Bytes()) > 0 {
		if errDecode := json.Unmarshal(rec.Body.Bytes(), &out); errDecode != nil {
			t.Fatalf("decode response: %v (body %q)", errDecode, rec.Body.String())
		}
	}
	return rec, out
}

func TestRegisterLoginAndProfile(t *testing.T) {
	engine, _ := setupFrontEngine(t)

	rec, body := frontJSON(t, engine, http.MethodPost, "/v0/auth/register", "", gin.H{
		"email":        "Trader@Example.com",
		"password":     "super-secret-1",
		"display_name": "Trader",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %v", rec.Code, body)
	}

	rec, body = frontJSON(t, engine, http.MethodPost, "/v0/auth/login", "", gin.H{
		"email":    "trader@example.com",
		"password": "super-secret-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %v", rec.Code, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login returned no token: %v", body)
	}

	rec, body = frontJSON(t, engine, http.MethodGet, "/v0/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, body %v", rec.Code, body)
	}
	if body["email"] != "trader@example.com" {
		t.Fatalf("me email = %v", body["email"])
	}
	if isAdmin, _ := body["is_admin"].(bool); isAdmin {
		t.Fatal("fresh account should not be admin")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	engine, _ := setupFrontEngine(t)

	rec, _ := frontJSON(t, engine, http.MethodPost, "/v0/auth/register", "", gin.H{
		"email":    "nope@example.com",
		"password": "super-secret-1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}
	rec, _ = frontJSON(t, engine, http.MethodPost, "/v0/auth/login", "", gin.H{
		"email":    "nope@example.com",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want 401", rec.Code)
	}
}

func TestActivateLicenseKey_BoundedByMaxAccounts(t *testing.T) {
	engine, conn := setupFrontEngine(t)

	rec, body := frontJSON(t, engine, http.MethodPost, "/v0/auth/register", "", gin.H{
		"email":    "activator@example.com",
		"password": "super-secret-1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}
	token, _ := body["token"].(string)
	userID := uint64(body["user_id"].(float64))

	subscription := models.Subscription{
		UserID:      userID,
		PackageName: "ICF Annual",
		EAType:      models.EATypeICF,
		Status:      models.SubscriptionStatusActive,
		MaxAccounts: 1,
	}
	if errCreate := conn.Create(&subscription).Error; errCreate != nil {
		t.Fatalf("create subscription: %v", errCreate)
	}
	first := models.LicenseKey{SubscriptionID: subscription.ID, Key: "EA-AAAAA-AAAAA-AAAAA-AAAAA", IsActive: true}
	second := models.LicenseKey{SubscriptionID: subscription.ID, Key: "EA-BBBBB-BBBBB-BBBBB-BBBBB", IsActive: true}
	if errCreate := conn.Create(&first).Error; errCreate != nil {
		t.Fatalf("create key: %v", errCreate)
	}
	if errCreate := conn.Create(&second).Error; errCreate != nil {
		t.Fatalf("create key: %v", errCreate)
	}

	activate := gin.H{"broker_name": "IC Markets", "mt_account_number": "123456"}
	rec, body = frontJSON(t, engine, http.MethodPost, fmt.Sprintf("/v0/me/license-keys/%d/activate", first.ID), token, activate)
	if rec.Code != http.StatusOK {
		t.Fatalf("first activation status = %d, body %v", rec.Code, body)
	}
	rec, body = frontJSON(t, engine, http.MethodPost, fmt.Sprintf("/v0/me/license-keys/%d/activate", second.ID), token, activate)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second activation status = %d, want 400 (limit reached), body %v", rec.Code, body)
	}
}

func TestPublicEndpoints_NoAuthRequired(t *testing.T) {
	engine, conn := setupFrontEngine(t)

	plan := models.VPSPlan{Name: "Starter 2GB", IsActive: true, Specs: []byte(`{}`), Pricing: []byte(`[]`)}
	if errCreate := conn.Create(&plan).Error; errCreate != nil {
		t.Fatalf("create plan: %v", errCreate)
	}

	rec, body := frontJSON(t, engine, http.MethodGet, "/v0/plans", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("plans status = %d", rec.Code)
	}
	plans, _ := body["plans"].([]any)
	if len(plans) != 1 {
		t.Fatalf("plan count = %d, want 1", len(plans))
	}

	rec, _ = frontJSON(t, engine, http.MethodGet, "/v0/performance", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("performance status = %d", rec.Code)
	}
	rec, _ = frontJSON(t, engine, http.MethodGet, "/v0/investor-accounts", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("investor accounts status = %d", rec.Code)
	}
}

func TestDisablePasskey_ClearsCredential(t *testing.T) {
	engine, conn := setupFrontEngine(t)

	signCount := uint32(7)
	eligible := true
	state := false
	hash, errHash := security.HashPassword("super-secret-1")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	user := models.User{
		Email:                 "passkey@example.com",
		Password:              hash,
		Active:                true,
		PasskeyID:             []byte("cred-id"),
		PasskeyPublicKey:      []byte("cred-pub"),
		PasskeySignCount:      &signCount,
		PasskeyBackupEligible: &eligible,
		PasskeyBackupState:    &state,
	}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}

	token, errToken := security.IssueToken("front-test-secret", time.Hour, user.ID, user.Email, security.ScopeSession)
	if errToken != nil {
		t.Fatalf("issue token: %v", errToken)
	}

	rec, body := frontJSON(t, engine, http.MethodPost, "/v0/me/mfa/passkey/disable", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("disable status = %d, body %v", rec.Code, body)
	}

	var reloaded models.User
	if errFind := conn.First(&reloaded, user.ID).Error; errFind != nil {
		t.Fatalf("reload user: %v", errFind)
	}
	if security.HasPasskey(&reloaded) {
		t.Fatalf("expected credential cleared, got id=%q", reloaded.PasskeyID)
	}
	if reloaded.PasskeySignCount != nil || reloaded.PasskeyBackupEligible != nil || reloaded.PasskeyBackupState != nil {
		t.Fatalf("expected passkey metadata cleared")
	}

	rec, body = frontJSON(t, engine, http.MethodPost, "/v0/me/mfa/passkey/disable", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second disable status = %d, want 400, body %v", rec.Code, body)
	}
}
