package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fxedge-labs/ea-portal/internal/config"
	"github.com/fxedge-labs/ea-portal/internal/models"
	"github.com/fxedge-labs/ea-portal/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// EnsureAdmin creates the bootstrap admin account from config when no user
// holds the admin role yet. With no credentials configured and no admin
// present, the server still starts; role grants then require direct
// database access.
func EnsureAdmin(ctx context.Context, conn *gorm.DB, cfg config.AdminConfig) error {
	var adminCount int64
	if errCount := conn.WithContext(ctx).Model(&models.UserRole{}).
		Where("role = ?", models.RoleAdmin).
		Count(&adminCount).Error; errCount != nil {
		return fmt.Errorf("app: count admins: %w", errCount)
	}
	if adminCount > 0 {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	if email == "" || strings.TrimSpace(cfg.Password) == "" {
		log.Warn("no admin account exists and no bootstrap credentials configured")
		return nil
	}

	hashed, errHash := security.HashPassword(cfg.Password)
	if errHash != nil {
		return fmt.Errorf("app: hash bootstrap password: %w", errHash)
	}

	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		var user models.User
		errFind := tx.Where("email = ?", email).First(&user).Error
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			user = models.User{
				Email:       email,
				Password:    hashed,
				DisplayName: "Administrator",
				Active:      true,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if errCreate := tx.Create(&user).Error; errCreate != nil {
				return fmt.Errorf("app: create bootstrap admin: %w", errCreate)
			}
		} else if errFind != nil {
			return fmt.Errorf("app: find bootstrap admin: %w", errFind)
		}

		grant := models.UserRole{UserID: user.ID, Role: models.RoleAdmin, CreatedAt: now}
		if errGrant := tx.Create(&grant).Error; errGrant != nil {
			return fmt.Errorf("app: grant bootstrap admin role: %w", errGrant)
		}
		log.WithField("email", email).Info("bootstrap admin account ready")
		return nil
	})
}
