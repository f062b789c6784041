package services

import (
	"context"
	"fmt"
	"strings"

	"licenseportal/internal/common"
	"licenseportal/internal/models"
	"licenseportal/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, tenantID uuid.UUID, req *RegisterUserRequest) (*models.User, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error)
	Deactivate(ctx context.Context, tenantID, id uuid.UUID) error
}

type RegisterUserRequest struct {
	Email     string     `json:"email" validate:"required,email"`
	Password  string     `json:"password" validate:"required,min=8,max=72"`
	FirstName string     `json:"first_name" validate:"required,max=100"`
	LastName  string     `json:"last_name" validate:"required,max=100"`
	Role      string     `json:"role" validate:"required,oneof=Administrator AgencyStaff Applicant"`
	AgencyID  *uuid.UUID `json:"agency_id"`
}

type userService struct {
	userRepo   repositories.UserRepository
	agencyRepo repositories.AgencyRepository
	cost       int
}

func NewUserService(store *repositories.Store) UserService {
	return &userService{userRepo: store.Users, agencyRepo: store.Agencies, cost: bcrypt.DefaultCost}
}

func (s *userService) Register(ctx context.Context, tenantID uuid.UUID, req *RegisterUserRequest) (*models.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	role := models.Role(req.Role)
	if role == models.RoleAgencyStaff {
		if req.AgencyID == nil {
			return nil, fmt.Errorf("%w: agency staff must belong to an agency", common.ErrValidation)
		}
		if _, err := s.agencyRepo.GetByID(ctx, tenantID, *req.AgencyID); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		AgencyID:     req.AgencyID,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, tenantID, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, tenantID, id)
}

func (s *userService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error) {
	return s.userRepo.List(ctx, tenantID, limit, offset)
}

func (s *userService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return nil
	}
	user.IsActive = false
	return s.userRepo.Update(ctx, tenantID, user)
}
