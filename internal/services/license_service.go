package services

import (
	"context"
	"errors"
	"fmt"

	"licenseportal/internal/caching"
	"licenseportal/internal/common"
	"licenseportal/internal/models"
	"licenseportal/internal/repositories"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const (
	licenseTermYears  = 1
	maxRenewalMonths  = 120
	renewalNoteLayout = "2006-01-02"
)

// LicenseService is the license state machine. Issuance creates an Active
// license from an Approved application; renewal is an Active self-loop.
type LicenseService interface {
	Issue(ctx context.Context, tenantID, applicationID, issuerID uuid.UUID) (*models.License, error)
	Renew(ctx context.Context, tenantID, licenseID uuid.UUID, months int, notes string) (*models.License, error)
	Get(ctx context.Context, tenantID, licenseID uuid.UUID) (*models.License, error)
	GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*models.License, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.LicenseFilter) ([]*models.License, error)
	Certificate(ctx context.Context, tenantID, licenseID uuid.UUID) ([]byte, error)
}

type licenseService struct {
	licenses     repositories.LicenseRepository
	applications repositories.ApplicationRepository
	agencies     repositories.AgencyRepository
	users        repositories.UserRepository
	cache        caching.CacheService
	clock        clockwork.Clock
	log          zerolog.Logger
	suffix       randomSuffix
}

func NewLicenseService(store *repositories.Store, cache caching.CacheService, clock clockwork.Clock, log zerolog.Logger) LicenseService {
	return &licenseService{
		licenses:     store.Licenses,
		applications: store.Applications,
		agencies:     store.Agencies,
		users:        store.Users,
		cache:        cache,
		clock:        clock,
		log:          log.With().Str("component", "licenses").Logger(),
		suffix:       defaultRandomSuffix,
	}
}

func (s *licenseService) Issue(ctx context.Context, tenantID, applicationID, issuerID uuid.UUID) (*models.License, error) {
	app, err := s.applications.GetByID(ctx, tenantID, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationStatusApproved {
		return nil, fmt.Errorf("application must be approved before issuing license: %w", common.ErrInvalidState)
	}
	if err := s.ensureNotIssued(ctx, tenantID, app); err != nil {
		return nil, err
	}
	agency, err := s.agencies.GetByID(ctx, tenantID, app.AgencyID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	license := &models.License{
		Type:          app.LicenseType,
		Status:        models.LicenseStatusActive,
		ApplicationID: app.ID,
		ApplicantID:   app.ApplicantID,
		AgencyID:      app.AgencyID,
		IssuedBy:      &issuerID,
		IssuedAt:      now,
		ExpiresAt:     now.AddDate(licenseTermYears, 0, 0),
		Notes:         common.StringPtr("Issued from application " + app.ApplicationNumber),
	}

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		license.ID = uuid.Nil
		license.LicenseNumber = fmt.Sprintf("%s-%d-%d", agency.Code, now.Year(), s.suffix(10000, 99999))
		err = s.licenses.Create(ctx, tenantID, license)
		if !errors.Is(err, common.ErrConflict) {
			break
		}
		// The conflict may be a concurrent issuance for the same application.
		if issuedErr := s.ensureNotIssued(ctx, tenantID, app); issuedErr != nil {
			return nil, issuedErr
		}
	}
	if err != nil {
		return nil, fmt.Errorf("issue license: %w", err)
	}

	s.log.Info().
		Str("tenant_id", tenantID.String()).
		Str("license_number", license.LicenseNumber).
		Str("application_number", app.ApplicationNumber).
		Time("expires_at", license.ExpiresAt).
		Msg("license issued")
	invalidateTenant(ctx, s.cache, s.log, tenantID)
	return license, nil
}

func (s *licenseService) ensureNotIssued(ctx context.Context, tenantID uuid.UUID, app *models.LicenseApplication) error {
	existing, err := s.licenses.GetByApplicationID(ctx, tenantID, app.ID)
	switch {
	case err == nil:
		return fmt.Errorf("license %s already issued from application %s: %w",
			existing.LicenseNumber, app.ApplicationNumber, common.ErrInvalidState)
	case errors.Is(err, common.ErrNotFound):
		return nil
	default:
		return err
	}
}

// Renew recomputes the expiry from the renewal moment, not from the old
// expiry, so renewing early forfeits the remaining term.
func (s *licenseService) Renew(ctx context.Context, tenantID, licenseID uuid.UUID, months int, notes string) (*models.License, error) {
	if err := common.ValidatePositiveInteger(months, "renewal period months", maxRenewalMonths); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	license, err := s.licenses.GetByID(ctx, tenantID, licenseID)
	if err != nil {
		return nil, err
	}
	if license.Status != models.LicenseStatusActive {
		return nil, fmt.Errorf("only active licenses can be renewed: %w", common.ErrInvalidState)
	}

	now := s.clock.Now()
	license.ExpiresAt = now.AddDate(0, months, 0)
	license.RenewedAt = &now

	entry := "Renewed on " + now.Format(renewalNoteLayout) + "."
	if notes != "" {
		entry += " " + notes
	}
	if prev := common.SafeString(license.Notes); prev != "" {
		entry = prev + "\n" + entry
	}
	license.Notes = &entry

	if err := s.licenses.Update(ctx, tenantID, license); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("tenant_id", tenantID.String()).
		Str("license_number", license.LicenseNumber).
		Int("months", months).
		Time("expires_at", license.ExpiresAt).
		Msg("license renewed")
	invalidateTenant(ctx, s.cache, s.log, tenantID)
	return license, nil
}

func (s *licenseService) Get(ctx context.Context, tenantID, licenseID uuid.UUID) (*models.License, error) {
	return s.licenses.GetByID(ctx, tenantID, licenseID)
}

func (s *licenseService) GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*models.License, error) {
	return s.licenses.GetByNumber(ctx, tenantID, number)
}

func (s *licenseService) List(ctx context.Context, tenantID uuid.UUID, filter models.LicenseFilter) ([]*models.License, error) {
	return s.licenses.List(ctx, tenantID, filter)
}
