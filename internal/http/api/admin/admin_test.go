package admin

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/fxedge-labs/ea-portal/internal/config"
	"github.com/fxedge-labs/ea-portal/internal/db"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"github.com/fxedge-labs/ea-portal/internal/security"
	"gorm.io/gorm"
)

const testSecret = "admin-route-test-secret"

func setupAdminEngine(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	conn, errOpen := db.Open("file:" + filepath.Join(t.TempDir(), "admin.db"))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	RegisterAdminRoutes(engine, conn, config.JWTConfig{Secret: testSecret, Expiry: time.Hour})
	return engine, conn
}

func createUserWithRoles(t *testing.T, conn *gorm.DB, email string, roleLabels ...string) (models.User, string) {
	t.Helper()
	user := models.User{Email: email, Password: "x", Active: true}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	for _, role := range roleLabels {
		grant := models.UserRole{UserID: user.ID, Role: role}
		if errGrant := conn.Create(&grant).Error; errGrant != nil {
			t.Fatalf("grant role %s: %v", role, errGrant)
		}
	}
	token, errToken := security.IssueToken(testSecret, time.Hour, user.ID, user.Email, security.ScopeSession)
	if errToken != nil {
		t.Fatalf("issue token: %v", errToken)
	}
	return user, token
}

func adminGet(engine *gin.Engine, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestAdminRoutes_RejectWithoutToken(t *testing.T) {
	engine, _ := setupAdminEngine(t)

	rec := adminGet(engine, "/v0/admin/dashboard", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAdminRoutes_RejectPlainUser(t *testing.T) {
	engine, conn := setupAdminEngine(t)
	_, token := createUserWithRoles(t, conn, "customer@example.com")

	rec := adminGet(engine, "/v0/admin/dashboard", token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestAdminRoutes_AllowStaff(t *testing.T) {
	engine, conn := setupAdminEngine(t)
	_, token := createUserWithRoles(t, conn, "staff@example.com", models.RoleStaff)

	rec := adminGet(engine, "/v0/admin/dashboard", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRoleManagement_StaffForbiddenAdminAllowed(t *testing.T) {
	engine, conn := setupAdminEngine(t)
	_, staffToken := createUserWithRoles(t, conn, "staff2@example.com", models.RoleStaff)
	_, adminToken := createUserWithRoles(t, conn, "admin@example.com", models.RoleAdmin)
	target, _ := createUserWithRoles(t, conn, "target@example.com")

	grant := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost,
			"/v0/admin/users/"+strconv.FormatUint(target.ID, 10)+"/roles",
			strings.NewReader(`{"role":"staff"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec
	}

	if rec := grant(staffToken); rec.Code != http.StatusForbidden {
		t.Fatalf("staff grant status = %d, want 403", rec.Code)
	}
	if rec := grant(adminToken); rec.Code != http.StatusCreated {
		t.Fatalf("admin grant status = %d, body %s", rec.Code, rec.Body.String())
	}
}
