package jobs

import (
	"context"
	"fmt"
	"time"

	"licenseportal/internal/models"
	"licenseportal/internal/repositories"
	"licenseportal/internal/services"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const (
	reminderWindowDays = 30
	urgentWindowDays   = 7

	// expired licenses are only reported once they are a day past expiry
	expiredGracePeriod = 24 * time.Hour
	reminderDelay      = time.Minute
)

// ScanResult summarises one scanner run across all tenants.
type ScanResult struct {
	Tenants int `json:"tenants"`
	Scanned int `json:"scanned"`
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

func (r *ScanResult) String() string {
	return fmt.Sprintf("tenants=%d scanned=%d created=%d failed=%d", r.Tenants, r.Scanned, r.Created, r.Failed)
}

// RenewalScanner finds licenses close to or past expiry and queues
// notifications for their holders, one tenant at a time.
type RenewalScanner struct {
	tenants       repositories.TenantRepository
	licenses      repositories.LicenseRepository
	notifications services.NotificationService
	dispatcher    Dispatcher
	clock         clockwork.Clock
	log           zerolog.Logger
}

func NewRenewalScanner(store *repositories.Store, notifications services.NotificationService, dispatcher Dispatcher, clock clockwork.Clock, log zerolog.Logger) *RenewalScanner {
	return &RenewalScanner{
		tenants:       store.Tenants,
		licenses:      store.Licenses,
		notifications: notifications,
		dispatcher:    dispatcher,
		clock:         clock,
		log:           log.With().Str("component", "renewal-scanner").Logger(),
	}
}

// CheckExpiringLicenses sends a reminder for every active license expiring
// within 30 days and an additional urgent notice for those within 7 days.
func (s *RenewalScanner) CheckExpiringLicenses(ctx context.Context) (*ScanResult, error) {
	s.log.Info().Msg("checking for expiring licenses")
	tenants, err := s.tenants.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active tenants: %w", err)
	}

	result := &ScanResult{Tenants: len(tenants)}
	now := s.clock.Now().UTC()
	reminderCutoff := now.AddDate(0, 0, reminderWindowDays)
	urgentCutoff := now.AddDate(0, 0, urgentWindowDays)

	for _, tenant := range tenants {
		expiring, err := s.licenses.ListActiveExpiring(ctx, tenant.ID, now, reminderCutoff)
		if err != nil {
			return nil, fmt.Errorf("list expiring licenses for tenant %s: %w", tenant.ID, err)
		}
		result.Scanned += len(expiring)

		for _, license := range expiring {
			s.notify(ctx, result, license, expiringNotification(license, reminderWindowDays), reminderDelay)
		}
		for _, license := range expiring {
			if !license.ExpiresAt.After(urgentCutoff) {
				s.notify(ctx, result, license, expiringNotification(license, urgentWindowDays), reminderDelay)
			}
		}
	}

	s.log.Info().Int("tenants", result.Tenants).Int("licenses", result.Scanned).
		Int("notifications", result.Created).Int("failed", result.Failed).
		Msg("processed licenses expiring soon")
	return result, nil
}

// AutoRenewLicenses reports active licenses that expired at least a day ago.
// Licenses are left untouched; holders get a critical notification.
func (s *RenewalScanner) AutoRenewLicenses(ctx context.Context) (*ScanResult, error) {
	s.log.Info().Msg("checking for expired licenses")
	tenants, err := s.tenants.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active tenants: %w", err)
	}

	result := &ScanResult{Tenants: len(tenants)}
	cutoff := s.clock.Now().UTC().Add(-expiredGracePeriod)

	for _, tenant := range tenants {
		expired, err := s.licenses.ListActiveExpiredBefore(ctx, tenant.ID, cutoff)
		if err != nil {
			return nil, fmt.Errorf("list expired licenses for tenant %s: %w", tenant.ID, err)
		}
		result.Scanned += len(expired)
		for _, license := range expired {
			s.notify(ctx, result, license, expiredNotification(license), 0)
		}
	}

	s.log.Info().Int("tenants", result.Tenants).Int("licenses", result.Scanned).
		Int("notifications", result.Created).Int("failed", result.Failed).
		Msg("processed expired licenses")
	return result, nil
}

// notify stores n and queues its delivery. Failures are counted, not returned.
func (s *RenewalScanner) notify(ctx context.Context, result *ScanResult, license *models.License, n *models.Notification, delay time.Duration) {
	logger := s.log.With().
		Str("tenant_id", license.TenantID.String()).
		Str("license_number", license.LicenseNumber).
		Logger()

	if err := s.notifications.Create(ctx, license.TenantID, n); err != nil {
		result.Failed++
		logger.Error().Err(err).Msg("error creating license notification")
		return
	}
	result.Created++

	var err error
	if delay > 0 {
		err = s.dispatcher.ScheduleDispatch(ctx, license.TenantID, n.ID, delay)
	} else {
		err = s.dispatcher.EnqueueDispatch(ctx, license.TenantID, n.ID)
	}
	if err != nil {
		result.Failed++
		logger.Error().Err(err).Str("notification_id", n.ID.String()).Msg("error scheduling license notification")
		return
	}
	logger.Info().Str("notification_id", n.ID.String()).Str("type", string(n.Type)).Msg("scheduled license notification")
}

func expiringNotification(license *models.License, days int) *models.Notification {
	kind := models.NotificationTypeReminder
	if days <= urgentWindowDays {
		kind = models.NotificationTypeUrgent
	}
	ref := license.ID.String()
	return &models.Notification{
		Title: fmt.Sprintf("License Expiring in %d Days", days),
		Message: fmt.Sprintf("Your license %s for %s will expire in %d days on %s. Please renew your license to avoid interruption.",
			license.LicenseNumber, license.Type, days, license.ExpiresAt.Format(time.DateOnly)),
		Type:            kind,
		RecipientID:     license.ApplicantID,
		EntityReference: &ref,
	}
}

func expiredNotification(license *models.License) *models.Notification {
	ref := license.ID.String()
	return &models.Notification{
		Title: "License Expired",
		Message: fmt.Sprintf("Your license %s for %s expired on %s. Please contact your agency immediately to renew your license.",
			license.LicenseNumber, license.Type, license.ExpiresAt.Format(time.DateOnly)),
		Type:            models.NotificationTypeCritical,
		RecipientID:     license.ApplicantID,
		EntityReference: &ref,
	}
}
