package roles

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fxedge-labs/ea-portal/internal/db"
	"github.com/fxedge-labs/ea-portal/internal/models"
)

func TestResolve_NoRows(t *testing.T) {
	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "roles-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	user := models.User{Email: "nobody@example.com", Password: "hash", Active: true}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}

	set, errResolve := Resolve(context.Background(), conn, user.ID)
	if errResolve != nil {
		t.Fatalf("resolve: %v", errResolve)
	}
	if set.IsAdmin() || set.IsStaff() || set.IsAdminOrStaff() {
		t.Fatalf("expected all predicates false for empty role set, got %v", set)
	}
}

func TestResolve_MultipleRoles(t *testing.T) {
	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "roles-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	user := models.User{Email: "ops@example.com", Password: "hash", Active: true}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	for _, role := range []string{models.RoleStaff, models.RoleUser} {
		assignment := models.UserRole{UserID: user.ID, Role: role}
		if errCreate := conn.Create(&assignment).Error; errCreate != nil {
			t.Fatalf("create role %s: %v", role, errCreate)
		}
	}

	set, errResolve := Resolve(context.Background(), conn, user.ID)
	if errResolve != nil {
		t.Fatalf("resolve: %v", errResolve)
	}
	if set.IsAdmin() {
		t.Fatalf("expected IsAdmin=false")
	}
	if !set.IsStaff() {
		t.Fatalf("expected IsStaff=true")
	}
	if !set.IsAdminOrStaff() {
		t.Fatalf("expected IsAdminOrStaff=true")
	}

	hasStaff, errHas := HasRole(context.Background(), conn, user.ID, models.RoleStaff)
	if errHas != nil {
		t.Fatalf("has role: %v", errHas)
	}
	if !hasStaff {
		t.Fatalf("expected HasRole(staff)=true")
	}
	hasAdmin, errHas := HasRole(context.Background(), conn, user.ID, models.RoleAdmin)
	if errHas != nil {
		t.Fatalf("has role: %v", errHas)
	}
	if hasAdmin {
		t.Fatalf("expected HasRole(admin)=false")
	}
}
