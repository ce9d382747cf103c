// Package scheduler runs the periodic expiry scan. The scan only observes:
// it logs leases that are close to or past their end date so staff can act,
// and never rewrites a stored status label.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/fxedge-labs/ea-portal/internal/models"
	"github.com/fxedge-labs/ea-portal/internal/vps"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// expiringWindowDays is how far ahead the scan looks for upcoming expiries.
const expiringWindowDays = 7

// ExpiryScanner inspects VPS leases and EA subscriptions for expiry state.
type ExpiryScanner struct {
	db *gorm.DB
}

// NewExpiryScanner constructs an ExpiryScanner.
func NewExpiryScanner(conn *gorm.DB) *ExpiryScanner {
	return &ExpiryScanner{db: conn}
}

// Scan logs active VPS leases that are expiring within the window or are
// already past their end date, plus EA subscriptions past their end date
// that still carry the active label.
func (s *ExpiryScanner) Scan(ctx context.Context, now time.Time) error {
	windowEnd := now.AddDate(0, 0, expiringWindowDays)

	var leases []models.VPSSubscription
	if errFind := s.db.WithContext(ctx).
		Where("status = ? AND end_date <= ?", models.VPSStatusActive, windowEnd).
		Find(&leases).Error; errFind != nil {
		return fmt.Errorf("scheduler: scan vps leases: %w", errFind)
	}
	for _, lease := range leases {
		days := vps.DaysRemaining(lease.EndDate, now)
		entry := log.WithFields(log.Fields{
			"vps_subscription_id": lease.ID,
			"user_id":             lease.UserID,
			"plan":                lease.PlanName,
			"end_date":            lease.EndDate.Format(time.RFC3339),
		})
		if days < 0 {
			entry.Warnf("vps lease %s", vps.Describe(days))
			continue
		}
		entry.Infof("vps lease %s", vps.Describe(days))
	}

	var subscriptions []models.Subscription
	if errFind := s.db.WithContext(ctx).
		Where("status = ? AND end_date IS NOT NULL AND end_date < ?", models.SubscriptionStatusActive, now).
		Find(&subscriptions).Error; errFind != nil {
		return fmt.Errorf("scheduler: scan subscriptions: %w", errFind)
	}
	for _, subscription := range subscriptions {
		log.WithFields(log.Fields{
			"subscription_id": subscription.ID,
			"user_id":         subscription.UserID,
			"package":         subscription.PackageName,
		}).Warn("subscription past end date still marked active")
	}
	return nil
}

// Start schedules the daily expiry scan with the given cron spec and starts
// the cron runner. The returned cron is stopped when ctx is cancelled.
func Start(ctx context.Context, conn *gorm.DB, spec string) (*cron.Cron, error) {
	scanner := NewExpiryScanner(conn)
	runner := cron.New()
	if _, errAdd := runner.AddFunc(spec, func() {
		if errScan := scanner.Scan(ctx, time.Now().UTC()); errScan != nil {
			log.WithError(errScan).Error("expiry scan failed")
		}
	}); errAdd != nil {
		return nil, fmt.Errorf("scheduler: add expiry scan: %w", errAdd)
	}
	runner.Start()
	go func() {
		<-ctx.Done()
		runner.Stop()
	}()
	return runner, nil
}
