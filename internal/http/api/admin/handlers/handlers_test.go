package handlers

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
	"github.com/fxedge-labs/ea-portal/internal/db"
	"github.com/fxedge-labs/ea-portal/internal/licensekey"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, errOpen := db.Open("file:" + filepath.Join(t.TempDir(), "handlers.db"))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func createTestUser(t *testing.T, conn *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email, Password: "x", Active: true}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	return user
}

func jsonRequest(t *testing.T, engine *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal request: %v", errMarshal)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &out); errDecode != nil {
		t.Fatalf("decode response: %v (body %q)", errDecode, rec.Body.String())
	}
	return out
}

func TestPaymentSummary_CompletedOnly(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, "payer@example.com")

	amounts := []struct {
		amount float64
		status string
	}{
		{10, models.PaymentStatusCompleted},
		{5, models.PaymentStatusPending},
		{20, models.PaymentStatusCompleted},
	}
	for i, p := range amounts {
		payment := models.Payment{
			UserID:    user.ID,
			Amount:    p.amount,
			Currency:  "USD",
			Status:    p.status,
			Reference: fmt.Sprintf("ref-%d", i),
		}
		if errCreate := conn.Create(&payment).Error; errCreate != nil {
			t.Fatalf("create payment: %v", errCreate)
		}
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler := NewPaymentHandler(conn)
	engine.GET("/payments/summary", handler.Summary)

	rec := jsonRequest(t, engine, http.MethodGet, "/payments/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if total, _ := body["total_revenue"].(float64); total != 30 {
		t.Fatalf("total_revenue = %v, want 30", body["total_revenue"])
	}
}

func TestSubscriptionUpdateStatus_AnyLabelToAnyLabel(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, "labels@example.com")

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler := NewSubscriptionHandler(conn)
	engine.PUT("/subscriptions/:id/status", handler.UpdateStatus)

	labels := []string{
		models.SubscriptionStatusPending,
		models.SubscriptionStatusActive,
		models.SubscriptionStatusExpired,
		models.SubscriptionStatusCancelled,
	}
	for _, from := range labels {
		for _, to := range labels {
			subscription := models.Subscription{
				UserID:      user.ID,
				PackageName: "ICF Annual",
				EAType:      models.EATypeICF,
				Status:      from,
				MaxAccounts: 1,
			}
			if errCreate := conn.Create(&subscription).Error; errCreate != nil {
				t.Fatalf("create subscription: %v", errCreate)
			}

			target := fmt.Sprintf("/subscriptions/%d/status", subscription.ID)
			rec := jsonRequest(t, engine, http.MethodPut, target, gin.H{"status": to})
			if rec.Code != http.StatusOK {
				t.Fatalf("update %s -> %s status = %d, body %s", from, to, rec.Code, rec.Body.String())
			}

			var reloaded models.Subscription
			if errFind := conn.First(&reloaded, subscription.ID).Error; errFind != nil {
				t.Fatalf("reload subscription: %v", errFind)
			}
			if reloaded.Status != to {
				t.Fatalf("status after %s -> %s is %q", from, to, reloaded.Status)
			}
		}
	}
}

func TestPaymentUpdateStatus_AnyLabelToAnyLabel(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, "paylabels@example.com")

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler := NewPaymentHandler(conn)
	engine.PUT("/payments/:id/status", handler.UpdateStatus)

	labels := []string{
		models.PaymentStatusPending,
		models.PaymentStatusCompleted,
		models.PaymentStatusFailed,
		models.PaymentStatusRefunded,
	}
	for _, from := range labels {
		for _, to := range labels {
			payment := models.Payment{
				UserID:    user.ID,
				Amount:    49.99,
				Currency:  "USD",
				Status:    from,
				Reference: fmt.Sprintf("ref-%s-%s", from, to),
			}
			if errCreate := conn.Create(&payment).Error; errCreate != nil {
				t.Fatalf("create payment: %v", errCreate)
			}

			target := fmt.Sprintf("/payments/%d/status", payment.ID)
			rec := jsonRequest(t, engine, http.MethodPut, target, gin.H{"status": to})
			if rec.Code != http.StatusOK {
				t.Fatalf("update %s -> %s status = %d, body %s", from, to, rec.Code, rec.Body.String())
			}

			var reloaded models.Payment
			if errFind := conn.First(&reloaded, payment.ID).Error; errFind != nil {
				t.Fatalf("reload payment: %v", errFind)
			}
			if reloaded.Status != to {
				t.Fatalf("status after %s -> %s is %q", from, to, reloaded.Status)
			}
		}
	}
}

func TestSubscriptionUpdateStatus_RejectsUnknownLabel(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, "badlabel@example.com")
	subscription := models.Subscription{
		UserID:      user.ID,
		PackageName: "ZB Monthly",
		EAType:      models.EATypeZB,
		Status:      models.SubscriptionStatusActive,
		MaxAccounts: 1,
	}
	if errCreate := conn.Create(&subscription).Error; errCreate != nil {
		t.Fatalf("create subscription: %v", errCreate)
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler := NewSubscriptionHandler(conn)
	engine.PUT("/subscriptions/:id/status", handler.UpdateStatus)

	target := fmt.Sprintf("/subscriptions/%d/status", subscription.ID)
	rec := jsonRequest(t, engine, http.MethodPut, target, gin.H{"status": "paused"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown label status = %d, want 400", rec.Code)
	}
}

func TestLicenseKeyGenerate_TwoDistinctRows(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, "keys@example.com")
	subscription := models.Subscription{
		UserID:      user.ID,
		PackageName: "Bundle Annual",
		EAType:      models.EATypeBundle,
		Status:      models.SubscriptionStatusActive,
		MaxAccounts: 2,
	}
	if errCreate := conn.Create(&subscription).Error; errCreate != nil {
		t.Fatalf("create subscription: %v", errCreate)
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler := NewLicenseKeyHandler(conn, licensekey.NewGenerator())
	engine.POST("/subscriptions/:id/license-keys", handler.Generate)

	target := fmt.Sprintf("/subscriptions/%d/license-keys", subscription.ID)
	for i := 0; i < 2; i++ {
		rec := jsonRequest(t, engine, http.MethodPost, target, nil)
		if rec.Code != http.StatusCreated {
			t.Fatalf("generate #%d status = %d, body %s", i+1, rec.Code, rec.Body.String())
		}
	}

	var keys []models.LicenseKey
	if errFind := conn.Where("subscription_id = ?", subscription.ID).Find(&keys).Error; errFind != nil {
		t.Fatalf("list keys: %v", errFind)
	}
	if len(keys) != 2 {
		t.Fatalf("key count = %d, want 2", len(keys))
	}
	if keys[0].Key == keys[1].Key {
		t.Fatalf("generated keys are not distinct: %q", keys[0].Key)
	}
}

func TestVPSSubscriptionList_ReportsStoredAndDerivedStatus(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, "vps@example.com")

	now := time.Now().UTC()
	lease := models.VPSSubscription{
		UserID:    user.ID,
		PlanName:  "Trader 4GB",
		Status:    models.VPSStatusActive,
		StartDate: now.AddDate(0, -1, 0),
		EndDate:   now.AddDate(0, 0, -10),
	}
	if errCreate := conn.Create(&lease).Error; errCreate != nil {
		t.Fatalf("create lease: %v", errCreate)
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler := NewVPSSubscriptionHandler(conn)
	engine.GET("/vps-subscriptions", handler.List)

	rec := jsonRequest(t, engine, http.MethodGet, "/vps-subscriptions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	rows, _ := body["vps_subscriptions"].([]any)
	if len(rows) != 1 {
		t.Fatalf("row count = %d, want 1", len(rows))
	}
	row, _ := rows[0].(map[string]any)
	if row["status"] != models.VPSStatusActive {
		t.Fatalf("stored status = %v, want active", row["status"])
	}
	if row["effective_status"] != "expired" {
		t.Fatalf("effective_status = %v, want expired", row["effective_status"])
	}

	var reloaded models.VPSSubscription
	if errFind := conn.First(&reloaded, lease.ID).Error; errFind != nil {
		t.Fatalf("reload lease: %v", errFind)
	}
	if reloaded.Status != models.VPSStatusActive {
		t.Fatalf("listing rewrote stored status to %q", reloaded.Status)
	}
}

func TestVPSSubscriptionUpdate_ChecksPlanExists(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, "replan@example.com")

	now := time.Now().UTC()
	lease := models.VPSSubscription{
		UserID:    user.ID,
		PlanName:  "Starter 2GB",
		Status:    models.VPSStatusActive,
		StartDate: now,
		EndDate:   now.AddDate(0, 1, 0),
	}
	if errCreate := conn.Create(&lease).Error; errCreate != nil {
		t.Fatalf("create lease: %v", errCreate)
	}
	plan := models.VPSPlan{Name: "Pro 4GB", IsActive: true, Specs: []byte(`{}`), Pricing: []byte(`[]`)}
	if errCreate := conn.Create(&plan).Error; errCreate != nil {
		t.Fatalf("create plan: %v", errCreate)
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler := NewVPSSubscriptionHandler(conn)
	engine.PUT("/vps-subscriptions/:id", handler.Update)

	target := fmt.Sprintf("/vps-subscriptions/%d", lease.ID)
	rec := jsonRequest(t, engine, http.MethodPut, target, gin.H{"plan_id": plan.ID + 1000})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown plan status = %d, want 404, body %s", rec.Code, rec.Body.String())
	}

	rec = jsonRequest(t, engine, http.MethodPut, target, gin.H{"plan_id": plan.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("known plan status = %d, body %s", rec.Code, rec.Body.String())
	}

	var reloaded models.VPSSubscription
	if errFind := conn.First(&reloaded, lease.ID).Error; errFind != nil {
		t.Fatalf("reload lease: %v", errFind)
	}
	if reloaded.PlanID == nil || *reloaded.PlanID != plan.ID {
		t.Fatalf("plan_id not updated, got %v", reloaded.PlanID)
	}
}

func TestUserList_RoleLookupFailureIsNotNoRoles(t *testing.T) {
	conn := openTestDB(t)
	user := createTestUser(t, conn, "roles-down@example.com")
	assignment := models.UserRole{UserID: user.ID, Role: models.RoleStaff}
	if errCreate := conn.Create(&assignment).Error; errCreate != nil {
		t.Fatalf("create role: %v", errCreate)
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler := NewUserHandler(conn)
	engine.GET("/users", handler.List)

	rec := jsonRequest(t, engine, http.MethodGet, "/users", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	users, _ := body["users"].([]any)
	if len(users) != 1 {
		t.Fatalf("user count = %d, want 1", len(users))
	}
	roles, _ := users[0].(map[string]any)["roles"].([]any)
	if len(roles) != 1 {
		t.Fatalf("roles = %v, want one entry", roles)
	}

	// With the role table gone the lookup fails; the payload must carry
	// null rather than an empty list, so failure reads differently from
	// a user holding no roles.
	if errDrop := conn.Migrator().DropTable(&models.UserRole{}); errDrop != nil {
		t.Fatalf("drop table: %v", errDrop)
	}
	rec = jsonRequest(t, engine, http.MethodGet, "/users", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	body = decodeBody(t, rec)
	users, _ = body["users"].([]any)
	if len(users) != 1 {
		t.Fatalf("user count = %d, want 1", len(users))
	}
	if value, present := users[0].(map[string]any)["roles"]; !present || value != nil {
		t.Fatalf("roles = %v, want null on lookup failure", value)
	}
}
