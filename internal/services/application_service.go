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
	"github.com/shopspring/decimal"
)

// ApplicationService is the application state machine:
// Submitted -> Approved | Rejected. Approved feeds license issuance.
type ApplicationService interface {
	Submit(ctx context.Context, tenantID uuid.UUID, req *SubmitApplicationRequest) (*models.LicenseApplication, error)
	Approve(ctx context.Context, tenantID, applicationID, reviewerID uuid.UUID, notes string) (*models.LicenseApplication, error)
	Reject(ctx context.Context, tenantID, applicationID, reviewerID uuid.UUID, reason string) (*models.LicenseApplication, error)
	MarkPaid(ctx context.Context, tenantID, applicationID uuid.UUID) (*models.LicenseApplication, error)
	Get(ctx context.Context, tenantID, applicationID uuid.UUID) (*models.LicenseApplication, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.ApplicationFilter) ([]*models.LicenseApplication, error)
}

type SubmitApplicationRequest struct {
	LicenseType string          `json:"license_type" validate:"required,max=100"`
	AgencyID    uuid.UUID       `json:"agency_id" validate:"required"`
	ApplicantID uuid.UUID       `json:"applicant_id" validate:"required"`
	Fee         decimal.Decimal `json:"fee"`
	Notes       string          `json:"notes" validate:"max=2000"`
}

type applicationService struct {
	applications repositories.ApplicationRepository
	agencies     repositories.AgencyRepository
	users        repositories.UserRepository
	cache        caching.CacheService
	clock        clockwork.Clock
	log          zerolog.Logger
	suffix       randomSuffix
}

func NewApplicationService(store *repositories.Store, cache caching.CacheService, clock clockwork.Clock, log zerolog.Logger) ApplicationService {
	return &applicationService{
		applications: store.Applications,
		agencies:     store.Agencies,
		users:        store.Users,
		cache:        cache,
		clock:        clock,
		log:          log.With().Str("component", "applications").Logger(),
		suffix:       defaultRandomSuffix,
	}
}

func (s *applicationService) Submit(ctx context.Context, tenantID uuid.UUID, req *SubmitApplicationRequest) (*models.LicenseApplication, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", common.ErrValidation)
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Fee.IsNegative() {
		return nil, fmt.Errorf("%w: fee cannot be negative", common.ErrValidation)
	}
	if _, err := s.agencies.GetByID(ctx, tenantID, req.AgencyID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, tenantID, req.ApplicantID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	app := &models.LicenseApplication{
		LicenseType:    req.LicenseType,
		Status:         models.ApplicationStatusSubmitted,
		ApplicantID:    req.ApplicantID,
		AgencyID:       req.AgencyID,
		SubmittedAt:    now,
		ReviewerNotes:  common.StringPtr(req.Notes),
		ApplicationFee: req.Fee,
		IsPaid:         false,
	}

	var err error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		app.ID = uuid.Nil
		app.ApplicationNumber = fmt.Sprintf("APP-%d-%d", now.Year(), s.suffix(1000, 9999))
		err = s.applications.Create(ctx, tenantID, app)
		if !errors.Is(err, common.ErrConflict) {
			break
		}
		s.log.Debug().Str("number", app.ApplicationNumber).Msg("application number collision, regenerating")
	}
	if err != nil {
		return nil, fmt.Errorf("submit application: %w", err)
	}

	s.log.Info().
		Str("tenant_id", tenantID.String()).
		Str("application_number", app.ApplicationNumber).
		Msg("application submitted")
	invalidateTenant(ctx, s.cache, s.log, tenantID)
	return app, nil
}

func (s *applicationService) Approve(ctx context.Context, tenantID, applicationID, reviewerID uuid.UUID, notes string) (*models.LicenseApplication, error) {
	return s.review(ctx, tenantID, applicationID, func(app *models.LicenseApplication) {
		now := s.clock.Now()
		app.Status = models.ApplicationStatusApproved
		app.ApprovedAt = &now
		app.ReviewedAt = &now
		app.ReviewerID = &reviewerID
		if notes != "" {
			app.ReviewerNotes = &notes
		}
	})
}

func (s *applicationService) Reject(ctx context.Context, tenantID, applicationID, reviewerID uuid.UUID, reason string) (*models.LicenseApplication, error) {
	return s.review(ctx, tenantID, applicationID, func(app *models.LicenseApplication) {
		now := s.clock.Now()
		app.Status = models.ApplicationStatusRejected
		app.RejectedAt = &now
		app.ReviewedAt = &now
		app.ReviewerID = &reviewerID
		app.RejectionReason = common.StringPtr(reason)
	})
}

// review applies a decision to a Submitted application. The store re-checks
// the status on write, so a concurrent decision loses with ErrInvalidState.
func (s *applicationService) review(ctx context.Context, tenantID, applicationID uuid.UUID, decide func(*models.LicenseApplication)) (*models.LicenseApplication, error) {
	app, err := s.applications.GetByID(ctx, tenantID, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationStatusSubmitted {
		return nil, fmt.Errorf("application %s is %s, expected %s: %w",
			app.ApplicationNumber, app.Status, models.ApplicationStatusSubmitted, common.ErrInvalidState)
	}

	decide(app)
	if err := s.applications.Update(ctx, tenantID, app, models.ApplicationStatusSubmitted); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("tenant_id", tenantID.String()).
		Str("application_number", app.ApplicationNumber).
		Str("status", string(app.Status)).
		Msg("application reviewed")
	invalidateTenant(ctx, s.cache, s.log, tenantID)
	return app, nil
}

// MarkPaid records a completed payment. Rejected applications cannot be paid.
func (s *applicationService) MarkPaid(ctx context.Context, tenantID, applicationID uuid.UUID) (*models.LicenseApplication, error) {
	app, err := s.applications.GetByID(ctx, tenantID, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status == models.ApplicationStatusRejected {
		return nil, fmt.Errorf("application %s is rejected: %w", app.ApplicationNumber, common.ErrInvalidState)
	}
	if app.IsPaid {
		return app, nil
	}
	app.IsPaid = true
	if err := s.applications.Update(ctx, tenantID, app, app.Status); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *applicationService) Get(ctx context.Context, tenantID, applicationID uuid.UUID) (*models.LicenseApplication, error) {
	return s.applications.GetByID(ctx, tenantID, applicationID)
}

func (s *applicationService) List(ctx context.Context, tenantID uuid.UUID, filter models.ApplicationFilter) ([]*models.LicenseApplication, error) {
	return s.applications.List(ctx, tenantID, filter)
}
