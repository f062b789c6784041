package services

import (
	"context"
	"testing"

	"licenseportal/internal/common"
	"licenseportal/internal/models"
	"licenseportal/testhelpers"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type TenantServiceTestSuite struct {
	suite.Suite
	repos   *testhelpers.MockStore
	service TenantService
}

func (suite *TenantServiceTestSuite) SetupTest() {
	repos, store := testhelpers.NewMockStore()
	suite.repos = repos
	suite.service = NewTenantService(store, zerolog.Nop())
}

func (suite *TenantServiceTestSuite) TearDownTest() {
	suite.repos.AssertExpectations(suite.T())
}

func TestTenantServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TenantServiceTestSuite))
}

func (suite *TenantServiceTestSuite) TestProvision_SeedsAgencies() {
	ctx := context.Background()
	tenantID := uuid.New()
	suite.repos.Tenants.On("Create", ctx, mock.AnythingOfType("*models.Tenant")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Tenant).ID = tenantID
	})
	var codes []string
	suite.repos.Agencies.On("Create", ctx, tenantID, mock.AnythingOfType("*models.Agency")).Return(nil).Run(func(args mock.Arguments) {
		codes = append(codes, args.Get(2).(*models.Agency).Code)
	}).Times(3)

	tenant, err := suite.service.Provision(ctx, &ProvisionTenantRequest{Name: "State of Example", Domain: "Licensing.Example.gov", SeedAgencies: true})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "licensing.example.gov", tenant.Domain)
	assert.True(suite.T(), tenant.IsActive)
	assert.Equal(suite.T(), []string{"HEALTH", "CONSTRUCTION", "FINANCE"}, codes)
}

func (suite *TenantServiceTestSuite) TestProvision_ValidationEmptyName() {
	_, err := suite.service.Provision(context.Background(), &ProvisionTenantRequest{Domain: "example.gov"})
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *TenantServiceTestSuite) TestProvision_ValidationBadDomain() {
	_, err := suite.service.Provision(context.Background(), &ProvisionTenantRequest{Name: "Test", Domain: "not a domain"})
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *TenantServiceTestSuite) TestSetActive() {
	ctx := context.Background()
	tenant := &models.Tenant{ID: uuid.New(), Name: "County", Domain: "county.gov", IsActive: true}
	suite.repos.Tenants.On("GetByID", ctx, tenant.ID).Return(tenant, nil)
	suite.repos.Tenants.On("Update", ctx, tenant).Return(nil)

	suite.Require().NoError(suite.service.SetActive(ctx, tenant.ID, false))
	assert.False(suite.T(), tenant.IsActive)
}
