package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fxedge-labs/ea-portal/internal/config"
	"github.com/fxedge-labs/ea-portal/internal/db"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"github.com/fxedge-labs/ea-portal/internal/roles"
	"gorm.io/gorm"
)

func openBootstrapDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, errOpen := db.Open("file:" + filepath.Join(t.TempDir(), "bootstrap.db"))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func TestEnsureAdmin_CreatesAccountAndRole(t *testing.T) {
	conn := openBootstrapDB(t)
	ctx := context.Background()

	cfg := config.AdminConfig{Email: "Admin@Example.com", Password: "bootstrap-secret"}
	if errEnsure := EnsureAdmin(ctx, conn, cfg); errEnsure != nil {
		t.Fatalf("ensure admin: %v", errEnsure)
	}

	var user models.User
	if errFind := conn.Where("email = ?", "admin@example.com").First(&user).Error; errFind != nil {
		t.Fatalf("find bootstrap user: %v", errFind)
	}
	set, errResolve := roles.Resolve(ctx, conn, user.ID)
	if errResolve != nil {
		t.Fatalf("resolve roles: %v", errResolve)
	}
	if !set.IsAdmin() {
		t.Fatal("bootstrap user should hold the admin role")
	}
}

func TestEnsureAdmin_NoopWhenAdminExists(t *testing.T) {
	conn := openBootstrapDB(t)
	ctx := context.Background()

	cfg := config.AdminConfig{Email: "first@example.com", Password: "bootstrap-secret"}
	if errEnsure := EnsureAdmin(ctx, conn, cfg); errEnsure != nil {
		t.Fatalf("ensure admin: %v", errEnsure)
	}
	cfg.Email = "second@example.com"
	if errEnsure := EnsureAdmin(ctx, conn, cfg); errEnsure != nil {
		t.Fatalf("ensure admin again: %v", errEnsure)
	}

	var secondCount int64
	if errCount := conn.Model(&models.User{}).Where("email = ?", "second@example.com").Count(&secondCount).Error; errCount != nil {
		t.Fatalf("count users: %v", errCount)
	}
	if secondCount != 0 {
		t.Fatal("second bootstrap account should not be created while an admin exists")
	}
}

func TestEnsureAdmin_NoCredentialsConfigured(t *testing.T) {
	conn := openBootstrapDB(t)

	if errEnsure := EnsureAdmin(context.Background(), conn, config.AdminConfig{}); errEnsure != nil {
		t.Fatalf("ensure admin without credentials: %v", errEnsure)
	}
	var userCount int64
	if errCount := conn.Model(&models.User{}).Count(&userCount).Error; errCount != nil {
		t.Fatalf("count users: %v", errCount)
	}
	if userCount != 0 {
		t.Fatalf("expected no users, got %d", userCount)
	}
}
