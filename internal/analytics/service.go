package analytics

import (
	"context"
	"fmt"
	"time"

	"licenseportal/internal/caching"
	"licenseportal/internal/models"
	"licenseportal/internal/repositories"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const (
	dashboardTTL       = 5 * time.Minute
	expiringWindowDays = 30
)

// DashboardService handles calculation and caching of per-tenant dashboard counts
type DashboardService struct {
	applications repositories.ApplicationRepository
	licenses     repositories.LicenseRepository
	cache        caching.CacheService
	clock        clockwork.Clock
	log          zerolog.Logger
}

func NewDashboardService(store *repositories.Store, cache caching.CacheService, clock clockwork.Clock, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		applications: store.Applications,
		licenses:     store.Licenses,
		cache:        cache,
		clock:        clock,
		log:          log.With().Str("component", "dashboard").Logger(),
	}
}

// GetStats serves from cache when possible. Cache errors fall through to the database.
func (d *DashboardService) GetStats(ctx context.Context, tenantID uuid.UUID) (*models.DashboardStats, error) {
	if d.cache != nil {
		cached, err := d.cache.GetDashboardStats(ctx, tenantID)
		if err != nil {
			d.log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("dashboard cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	stats, err := d.CalculateStats(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		if err := d.cache.SetDashboardStats(ctx, tenantID, stats, dashboardTTL); err != nil {
			d.log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("dashboard cache write failed")
		}
	}
	return stats, nil
}

func (d *DashboardService) CalculateStats(ctx context.Context, tenantID uuid.UUID) (*models.DashboardStats, error) {
	now := d.clock.Now().UTC()

	apps, err := d.applications.CountByStatus(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}
	licenses, err := d.licenses.CountByStatus(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count licenses: %w", err)
	}
	expiring, err := d.licenses.CountActiveExpiring(ctx, tenantID, now, now.AddDate(0, 0, expiringWindowDays))
	if err != nil {
		return nil, fmt.Errorf("count expiring licenses: %w", err)
	}
	// Expiry is derived: a lapsed license keeps its Active status until renewed.
	lapsed, err := d.licenses.CountActiveLapsed(ctx, tenantID, now)
	if err != nil {
		return nil, fmt.Errorf("count lapsed licenses: %w", err)
	}

	return &models.DashboardStats{
		TenantID:             tenantID,
		PendingApplications:  apps[models.ApplicationStatusSubmitted],
		ApprovedApplications: apps[models.ApplicationStatusApproved],
		RejectedApplications: apps[models.ApplicationStatusRejected],
		ActiveLicenses:       licenses[models.LicenseStatusActive] - lapsed,
		ExpiredLicenses:      licenses[models.LicenseStatusExpired] + lapsed,
		ExpiringSoon:         expiring,
		LastUpdated:          now,
	}, nil
}

// Invalidate drops every cached value for the tenant
func (d *DashboardService) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	if d.cache == nil {
		return nil
	}
	return d.cache.InvalidateTenantCache(ctx, tenantID)
}
