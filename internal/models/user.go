package models

import "time"

// Role labels assignable to a user.
const (
	// RoleAdmin grants full administrative capability.
	RoleAdmin = "admin"
	// RoleStaff grants elevated operational capability.
	RoleStaff = "staff"
	// RoleUser is the plain customer capability.
	RoleUser = "user"
)

// User represents a customer or operator account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email       string `gorm:"type:text;not null;uniqueIndex"` // Unique login email.
	Password    string `gorm:"type:text;not null"`             // Hashed password.
	DisplayName string `gorm:"type:text"`                      // Display name.
	Phone       string `gorm:"type:text"`                      // Optional phone number.

	Active bool `gorm:"not null;default:true"` // Whether the user can sign in.

	TOTPSecret            string  `gorm:"type:text"`    // TOTP secret for MFA.
	PasskeyID             []byte  `gorm:"type:bytea"`   // WebAuthn credential ID.
	PasskeyPublicKey      []byte  `gorm:"type:bytea"`   // WebAuthn public key bytes.
	PasskeySignCount      *uint32 `gorm:"type:bigint"`  // WebAuthn signature counter.
	PasskeyBackupEligible *bool   `gorm:"type:boolean"` // WebAuthn backup eligibility flag.
	PasskeyBackupState    *bool   `gorm:"type:boolean"` // WebAuthn backup state flag.

	Subscriptions    []Subscription    `gorm:"foreignKey:UserID"` // Owned EA subscriptions.
	VPSSubscriptions []VPSSubscription `gorm:"foreignKey:UserID"` // Owned VPS subscriptions.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName keeps the table name used by the hosted schema.
func (User) TableName() string { return "profiles" }

// UserRole is a (user, role) assignment row. A user may hold several roles;
// absence of any row implies the plain user capability.
type UserRole struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;uniqueIndex:idx_user_roles_user_role"`           // Related user ID.
	Role   string `gorm:"type:text;not null;uniqueIndex:idx_user_roles_user_role"` // Role label.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// ValidRole reports whether the label is an assignable role.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStaff || role == RoleUser
}
