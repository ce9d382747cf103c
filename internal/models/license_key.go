package models

import "time"

// LicenseKey is an opaque unique string permitting EA activation. The key
// string is immutable once created; only the active flag and the activation
// details recorded by the customer change afterwards.
type LicenseKey struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	SubscriptionID uint64       `gorm:"not null;index"`              // Bound subscription ID.
	Subscription   Subscription `gorm:"foreignKey:SubscriptionID"`   // Bound subscription record.

	Key      string `gorm:"type:text;not null;uniqueIndex"` // Opaque unique key string.
	IsActive bool   `gorm:"not null;default:true"`          // Whether the key may activate.

	BrokerName      string     `gorm:"type:text"` // Broker name recorded on activation.
	MTAccountNumber string     `gorm:"type:text"` // MT account number recorded on activation.
	ActivatedAt     *time.Time ``                 // When the customer activated the key.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
