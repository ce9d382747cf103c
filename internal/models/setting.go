package models

import "time"

// Setting is a key/value row for site-wide configuration edited by admins
// (site name, contact email, marketing copy toggles).
type Setting struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Key   string `gorm:"type:text;not null;uniqueIndex"` // Setting key.
	Value string `gorm:"type:text;not null"`             // Setting value.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
