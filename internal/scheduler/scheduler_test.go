package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fxedge-labs/ea-portal/internal/db"
	"github.com/fxedge-labs/ea-portal/internal/models"
)

// The scan must never flip a stored status, even for leases long past
// their end date.
func TestScan_DoesNotMutateStoredStatus(t *testing.T) {
	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "scheduler-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	user := models.User{Email: "vps@example.com", Password: "hash", Active: true}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}

	now := time.Now().UTC()
	lease := models.VPSSubscription{
		UserID:    user.ID,
		PlanName:  "starter",
		Status:    models.VPSStatusActive,
		StartDate: now.AddDate(0, -2, 0),
		EndDate:   now.AddDate(0, 0, -10),
	}
	if errCreate := conn.Create(&lease).Error; errCreate != nil {
		t.Fatalf("create lease: %v", errCreate)
	}

	scanner := NewExpiryScanner(conn)
	if errScan := scanner.Scan(context.Background(), now); errScan != nil {
		t.Fatalf("scan: %v", errScan)
	}

	var reloaded models.VPSSubscription
	if errFind := conn.First(&reloaded, lease.ID).Error; errFind != nil {
		t.Fatalf("reload lease: %v", errFind)
	}
	if reloaded.Status != models.VPSStatusActive {
		t.Fatalf("scan mutated stored status: %q", reloaded.Status)
	}
}
