package services

import (
	"context"
	"strings"

	"licenseportal/internal/models"
	"licenseportal/internal/repositories"

	"github.com/google/uuid"
)

type AgencyService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req *CreateAgencyRequest) (*models.Agency, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Agency, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.Agency, error)
}

type CreateAgencyRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Code        string `json:"code" validate:"required,alphanum,max=20"`
	Description string `json:"description" validate:"max=1000"`
}

type agencyService struct {
	agencyRepo repositories.AgencyRepository
}

func NewAgencyService(store *repositories.Store) AgencyService {
	return &agencyService{agencyRepo: store.Agencies}
}

// Create registers an agency. Codes are stored upper case since they prefix
// license numbers.
func (s *agencyService) Create(ctx context.Context, tenantID uuid.UUID, req *CreateAgencyRequest) (*models.Agency, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	agency := &models.Agency{
		Name:     req.Name,
		Code:     strings.ToUpper(req.Code),
		IsActive: true,
	}
	if req.Description != "" {
		agency.Description = &req.Description
	}
	if err := s.agencyRepo.Create(ctx, tenantID, agency); err != nil {
		return nil, err
	}
	return agency, nil
}

func (s *agencyService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Agency, error) {
	return s.agencyRepo.GetByID(ctx, tenantID, id)
}

func (s *agencyService) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Agency, error) {
	return s.agencyRepo.List(ctx, tenantID)
}
