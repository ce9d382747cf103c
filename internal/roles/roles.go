// Package roles resolves the capability of an authenticated principal from
// its role assignment rows. The resolver is read-only; a principal with no
// rows holds the plain user capability and every elevated predicate is
// false. Resolution always completes before any authorization decision is
// made, so callers never act on a partially loaded role set.
package roles

import (
	"context"

	"github.com/fxedge-labs/ea-portal/internal/models"
	"gorm.io/gorm"
)

// RoleSet is the set of role labels held by one user.
type RoleSet map[string]struct{}

// Has reports whether the set contains the role label.
func (s RoleSet) Has(role string) bool {
	_, ok := s[role]
	return ok
}

// IsAdmin reports whether the set grants admin capability.
func (s RoleSet) IsAdmin() bool { return s.Has(models.RoleAdmin) }

// IsStaff reports whether the set grants staff capability.
func (s RoleSet) IsStaff() bool { return s.Has(models.RoleStaff) }

// IsAdminOrStaff reports whether the set grants any elevated capability.
func (s RoleSet) IsAdminOrStaff() bool { return s.IsAdmin() || s.IsStaff() }

// Resolve loads all role rows for the user. An error means capability is
// unknown; callers must not treat it as "no roles".
func Resolve(ctx context.Context, conn *gorm.DB, userID uint64) (RoleSet, error) {
	var rows []models.UserRole
	if errFind := conn.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&rows).Error; errFind != nil {
		return nil, errFind
	}
	set := make(RoleSet, len(rows))
	for _, row := range rows {
		set[row.Role] = struct{}{}
	}
	return set, nil
}

// HasRole reports whether the user holds the given role.
func HasRole(ctx context.Context, conn *gorm.DB, userID uint64, role string) (bool, error) {
	var count int64
	if errCount := conn.WithContext(ctx).
		Model(&models.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error; errCount != nil {
		return false, errCount
	}
	return count > 0, nil
}
