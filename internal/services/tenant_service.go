package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"licenseportal/internal/common"
	"licenseportal/internal/models"
	"licenseportal/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type TenantService interface {
	Provision(ctx context.Context, req *ProvisionTenantRequest) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetByDomain(ctx context.Context, domain string) (*models.Tenant, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type ProvisionTenantRequest struct {
	Name   string `json:"name" validate:"required,max=200"`
	Domain string `json:"domain" validate:"required,fqdn"`
	// SeedAgencies creates the standard issuing agencies in the new tenant
	SeedAgencies bool `json:"seed_agencies"`
}

// DefaultAgencies are created for new tenants that ask for seeding
var DefaultAgencies = []models.Agency{
	{Name: "Department of Health", Code: "HEALTH", Description: common.StringPtr("Health and food service licensing"), IsActive: true},
	{Name: "Department of Construction", Code: "CONSTRUCTION", Description: common.StringPtr("Building and contractor licensing"), IsActive: true},
	{Name: "Department of Finance", Code: "FINANCE", Description: common.StringPtr("Business and financial licensing"), IsActive: true},
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
	agencyRepo repositories.AgencyRepository
	log        zerolog.Logger
}

func NewTenantService(store *repositories.Store, log zerolog.Logger) TenantService {
	return &tenantService{
		tenantRepo: store.Tenants,
		agencyRepo: store.Agencies,
		log:        log.With().Str("component", "tenants").Logger(),
	}
}

func (s *tenantService) Provision(ctx context.Context, req *ProvisionTenantRequest) (*models.Tenant, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Domain) != req.Domain {
		return nil, fmt.Errorf("%w: domain cannot have spaces", common.ErrValidation)
	}

	tenant := &models.Tenant{
		Name:     req.Name,
		Domain:   strings.ToLower(req.Domain),
		IsActive: true,
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	if req.SeedAgencies {
		for _, def := range DefaultAgencies {
			agency := def
			if err := s.agencyRepo.Create(ctx, tenant.ID, &agency); err != nil && !errors.Is(err, common.ErrConflict) {
				return nil, fmt.Errorf("seed agency %s: %w", def.Code, err)
			}
		}
	}

	s.log.Info().Str("tenant_id", tenant.ID.String()).Str("domain", tenant.Domain).Msg("tenant provisioned")
	return tenant, nil
}

func (s *tenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.tenantRepo.GetByID(ctx, id)
}

func (s *tenantService) GetByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	if domain == "" {
		return nil, fmt.Errorf("%w: domain is required", common.ErrValidation)
	}
	return s.tenantRepo.GetByDomain(ctx, strings.ToLower(domain))
}

// SetActive toggles whether the renewal scans visit the tenant
func (s *tenantService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	tenant.IsActive = active
	return s.tenantRepo.Update(ctx, tenant)
}

func (s *tenantService) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	return s.tenantRepo.List(ctx, limit, offset)
}
