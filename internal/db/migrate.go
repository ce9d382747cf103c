package db

import (
	"errors"
	"fmt"

	"github.com/fxedge-labs/ea-portal/internal/models"
	"gorm.io/gorm"
)

// SettingSiteName is the settings key holding the public site name.
const SettingSiteName = "site-name"

// DefaultSiteName seeds the site name on first migration.
const DefaultSiteName = "EA Portal"

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite:
		return migrateSQLite(conn)
	case DialectPostgres, "":
		return migratePostgres(conn)
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}
}

// migratePostgres applies PostgreSQL schema updates and indexes.
func migratePostgres(conn *gorm.DB) error {
	if errAutoMigrate := autoMigrate(conn); errAutoMigrate != nil {
		return errAutoMigrate
	}
	if errIndex := conn.Exec(`
		CREATE INDEX IF NOT EXISTS idx_payments_status
		ON payments (status)
	`).Error; errIndex != nil {
		return fmt.Errorf("db: create payments status index: %w", errIndex)
	}
	if errIndex := conn.Exec(`
		CREATE INDEX IF NOT EXISTS idx_vps_subscriptions_end_date
		ON vps_subscriptions (end_date)
	`).Error; errIndex != nil {
		return fmt.Errorf("db: create vps end date index: %w", errIndex)
	}
	return ensureDefaultSettings(conn)
}

// migrateSQLite applies the SQLite schema used by tests and local runs.
func migrateSQLite(conn *gorm.DB) error {
	if errAutoMigrate := autoMigrate(conn); errAutoMigrate != nil {
		return errAutoMigrate
	}
	return ensureDefaultSettings(conn)
}

func autoMigrate(conn *gorm.DB) error {
	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.UserRole{},
		&models.Subscription{},
		&models.LicenseKey{},
		&models.Payment{},
		&models.VPSPlan{},
		&models.VPSSubscription{},
		&models.MT5InvestorAccount{},
		&models.EAPerformanceStat{},
		&models.EAMonthlyReturn{},
		&models.EAEquityPoint{},
		&models.Setting{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}
	return nil
}

// ensureDefaultSettings seeds settings rows the application expects.
func ensureDefaultSettings(conn *gorm.DB) error {
	var existing models.Setting
	errFind := conn.Where("key = ?", SettingSiteName).First(&existing).Error
	if errFind == nil {
		return nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fmt.Errorf("db: read site name setting: %w", errFind)
	}
	seed := models.Setting{Key: SettingSiteName, Value: DefaultSiteName}
	if errCreate := conn.Create(&seed).Error; errCreate != nil {
		return fmt.Errorf("db: seed site name setting: %w", errCreate)
	}
	return nil
}
