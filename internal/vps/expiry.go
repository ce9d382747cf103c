// Package vps derives display state for VPS leases from their end dates.
// The stored status label is never rewritten here: a lease whose end date
// has passed keeps status "active" in the database and is only displayed
// as expired. Admin counts rely on the stored label, customer screens on
// the derived one.
package vps

import (
	"fmt"
	"math"
	"time"

	"github.com/fxedge-labs/ea-portal/internal/models"
)

// Classification labels for a lease's remaining time.
const (
	// ClassExpired marks a lease past its end date.
	ClassExpired = "expired"
	// ClassExpiresToday marks a lease ending within the current day.
	ClassExpiresToday = "expires_today"
	// ClassExpiringSoon marks a lease with 1-7 days left.
	ClassExpiringSoon = "expiring_soon"
	// ClassActive marks a lease with more than a week left.
	ClassActive = "active"
)

// DaysRemaining returns floor(end - now) in whole days. Negative values
// count days since expiry; the sign flips exactly at now == end.
func DaysRemaining(end, now time.Time) int {
	return int(math.Floor(end.Sub(now).Hours() / 24))
}

// Classify maps a remaining-day count to a classification label.
func Classify(days int) string {
	switch {
	case days < 0:
		return ClassExpired
	case days == 0:
		return ClassExpiresToday
	case days <= 7:
		return ClassExpiringSoon
	default:
		return ClassActive
	}
}

// Describe renders a human-readable remaining-time message.
func Describe(days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("expired %d days ago", -days)
	case days == 0:
		return "expires today"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}

// EffectiveStatus returns the status to display for a lease. A lease stored
// as active whose end date has passed displays as expired; every other
// combination displays the stored label unchanged.
func EffectiveStatus(stored string, end, now time.Time) string {
	if stored == models.VPSStatusActive && end.Before(now) {
		return ClassExpired
	}
	return stored
}
