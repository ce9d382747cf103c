package models

import "time"

// Payment status labels. Like subscription statuses these are labels with
// no enforced transition graph; an admin may overwrite any label with any
// other label.
const (
	// PaymentStatusPending marks a recorded but unconfirmed payment.
	PaymentStatusPending = "pending"
	// PaymentStatusCompleted marks a manually confirmed payment.
	PaymentStatusCompleted = "completed"
	// PaymentStatusFailed marks a failed payment attempt.
	PaymentStatusFailed = "failed"
	// PaymentStatusRefunded marks a refunded payment.
	PaymentStatusRefunded = "refunded"
)

// Payment records a payment attempt and its manually confirmed status.
type Payment struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`    // Paying user ID.
	User   User   `gorm:"foreignKey:UserID"` // Paying user record.

	SubscriptionID *uint64       `gorm:"index"`                     // Optional related subscription ID.
	Subscription   *Subscription `gorm:"foreignKey:SubscriptionID"` // Optional related subscription.

	Amount   float64 `gorm:"type:decimal(10,2);not null"`        // Payment amount.
	Currency string  `gorm:"type:text;not null;default:USD"`     // ISO currency code.
	Status   string  `gorm:"type:text;not null;default:pending"` // Current status label.

	Reference string `gorm:"type:text"` // External payment reference.
	Notes     string `gorm:"type:text"` // Operator notes.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// ValidPaymentStatus reports whether the label is a known payment status.
func ValidPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusPending, PaymentStatusCompleted,
		PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}
