package models

import "time"

// EA product types sold by the portal.
const (
	// EATypeICF is the ICF Expert Advisor product.
	EATypeICF = "icf"
	// EATypeZB is the ZB Expert Advisor product.
	EATypeZB = "zb"
	// EATypeBundle covers both products under one subscription.
	EATypeBundle = "bundle"
)

// Subscription status labels. These are labels, not a workflow engine:
// any label may be overwritten with any other label.
const (
	// SubscriptionStatusPending marks a subscription awaiting activation.
	SubscriptionStatusPending = "pending"
	// SubscriptionStatusActive marks a running subscription.
	SubscriptionStatusActive = "active"
	// SubscriptionStatusExpired marks a subscription past its end date.
	SubscriptionStatusExpired = "expired"
	// SubscriptionStatusCancelled marks a cancelled subscription.
	SubscriptionStatusCancelled = "cancelled"
)

// Subscription ties an EA product license to a user.
type Subscription struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`    // Owning user ID.
	User   User   `gorm:"foreignKey:UserID"` // Owning user record.

	PackageName string `gorm:"type:text;not null"`                  // Free-text package name.
	EAType      string `gorm:"type:text;not null"`                  // EA product type (icf, zb, bundle).
	Status      string `gorm:"type:text;not null;default:pending"`  // Current status label.
	MaxAccounts int    `gorm:"not null;default:1"`                  // Activation bound on trading accounts.

	StartDate *time.Time `` // Optional start date.
	EndDate   *time.Time `` // Optional end date.

	Notes string `gorm:"type:text"` // Operator notes.

	LicenseKeys []LicenseKey `gorm:"foreignKey:SubscriptionID"` // Issued license keys.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// ValidEAType reports whether the label is a sellable EA product type.
func ValidEAType(eaType string) bool {
	return eaType == EATypeICF || eaType == EATypeZB || eaType == EATypeBundle
}

// ValidSubscriptionStatus reports whether the label is a known subscription status.
func ValidSubscriptionStatus(status string) bool {
	switch status {
	case SubscriptionStatusPending, SubscriptionStatusActive,
		SubscriptionStatusExpired, SubscriptionStatusCancelled:
		return true
	}
	return false
}
