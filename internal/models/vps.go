package models

import (
	"time"

	"gorm.io/datatypes"
)

// VPS subscription status labels. The stored label is never auto-corrected
// when the end date passes; expiry is derived at display time.
const (
	// VPSStatusActive marks a running VPS lease.
	VPSStatusActive = "active"
	// VPSStatusSuspended marks a suspended VPS lease.
	VPSStatusSuspended = "suspended"
	// VPSStatusCancelled marks a cancelled VPS lease.
	VPSStatusCancelled = "cancelled"
)

// VPSPlan is a catalog entry for a leasable VPS tier.
type VPSPlan struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string `gorm:"type:varchar(255);not null"` // Plan name.
	Description string `gorm:"type:text"`                  // Plan description.

	Specs   datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Hardware specs (cpu, ram, disk, bandwidth).
	Pricing datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Duration pricing list ({months, price}).

	IsPopular bool `gorm:"not null;default:false"` // Marketing highlight flag.
	IsActive  bool `gorm:"not null;default:true"`  // Whether the plan is offered.
	SortOrder int  `gorm:"not null;default:0"`     // Display ordering weight.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// VPSSubscription tracks a leased VPS as a billing and allocation record.
// Provisioning happens outside the system; staff fill in connection
// credentials by hand once the server exists.
type VPSSubscription struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`    // Owning user ID.
	User   User   `gorm:"foreignKey:UserID"` // Owning user record.

	PlanID *uint64  `gorm:"index"`             // Optional catalog plan ID.
	Plan   *VPSPlan `gorm:"foreignKey:PlanID"` // Optional catalog plan record.

	PlanName string `gorm:"type:text;not null"`                // Plan name at time of lease.
	Status   string `gorm:"type:text;not null;default:active"` // Stored status label.

	StartDate time.Time `gorm:"not null"` // Lease start date.
	EndDate   time.Time `gorm:"not null"` // Lease end date.

	IP       string `gorm:"type:text"` // Server IP once provisioned.
	Username string `gorm:"type:text"` // Server login once provisioned.
	Password string `gorm:"type:text"` // Server password once provisioned.

	Notes string `gorm:"type:text"` // Operator notes.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// ValidVPSStatus reports whether the label is a known VPS status.
func ValidVPSStatus(status string) bool {
	return status == VPSStatusActive || status == VPSStatusSuspended || status == VPSStatusCancelled
}
