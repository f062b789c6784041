package testhelpers

import (
	"context"
	"io"
	"time"

	"licenseportal/internal/models"
	"licenseportal/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) ListActive(ctx context.Context) ([]*models.Tenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, tenantID uuid.UUID, user *models.User) error {
	args := m.Called(ctx, tenantID, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	args := m.Called(ctx, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, tenantID uuid.UUID, user *models.User) error {
	args := m.Called(ctx, tenantID, user)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

type MockAgencyRepository struct {
	mock.Mock
}

func (m *MockAgencyRepository) Create(ctx context.Context, tenantID uuid.UUID, agency *models.Agency) error {
	args := m.Called(ctx, tenantID, agency)
	return args.Error(0)
}

func (m *MockAgencyRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Agency, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agency), args.Error(1)
}

func (m *MockAgencyRepository) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*models.Agency, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agency), args.Error(1)
}

func (m *MockAgencyRepository) Update(ctx context.Context, tenantID uuid.UUID, agency *models.Agency) error {
	args := m.Called(ctx, tenantID, agency)
	return args.Error(0)
}

func (m *MockAgencyRepository) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Agency, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Agency), args.Error(1)
}

type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) Create(ctx context.Context, tenantID uuid.UUID, app *models.LicenseApplication) error {
	args := m.Called(ctx, tenantID, app)
	return args.Error(0)
}

func (m *MockApplicationRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.LicenseApplication, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LicenseApplication), args.Error(1)
}

func (m *MockApplicationRepository) List(ctx context.Context, tenantID uuid.UUID, filter models.ApplicationFilter) ([]*models.LicenseApplication, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LicenseApplication), args.Error(1)
}

func (m *MockApplicationRepository) Update(ctx context.Context, tenantID uuid.UUID, app *models.LicenseApplication, expected models.ApplicationStatus) error {
	args := m.Called(ctx, tenantID, app, expected)
	return args.Error(0)
}

func (m *MockApplicationRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[models.ApplicationStatus]int, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.ApplicationStatus]int), args.Error(1)
}

type MockLicenseRepository struct {
	mock.Mock
}

func (m *MockLicenseRepository) Create(ctx context.Context, tenantID uuid.UUID, license *models.License) error {
	args := m.Called(ctx, tenantID, license)
	return args.Error(0)
}

func (m *MockLicenseRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.License, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseRepository) GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*models.License, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseRepository) GetByApplicationID(ctx context.Context, tenantID, applicationID uuid.UUID) (*models.License, error) {
	args := m.Called(ctx, tenantID, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseRepository) List(ctx context.Context, tenantID uuid.UUID, filter models.LicenseFilter) ([]*models.License, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.License), args.Error(1)
}

func (m *MockLicenseRepository) Update(ctx context.Context, tenantID uuid.UUID, license *models.License) error {
	args := m.Called(ctx, tenantID, license)
	return args.Error(0)
}

func (m *MockLicenseRepository) ListActiveExpiring(ctx context.Context, tenantID uuid.UUID, after, until time.Time) ([]*models.License, error) {
	args := m.Called(ctx, tenantID, after, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.License), args.Error(1)
}

func (m *MockLicenseRepository) ListActiveExpiredBefore(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) ([]*models.License, error) {
	args := m.Called(ctx, tenantID, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.License), args.Error(1)
}

func (m *MockLicenseRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[models.LicenseStatus]int, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.LicenseStatus]int), args.Error(1)
}

func (m *MockLicenseRepository) CountActiveExpiring(ctx context.Context, tenantID uuid.UUID, after, until time.Time) (int, error) {
	args := m.Called(ctx, tenantID, after, until)
	return args.Int(0), args.Error(1)
}

func (m *MockLicenseRepository) CountActiveLapsed(ctx context.Context, tenantID uuid.UUID, now time.Time) (int, error) {
	args := m.Called(ctx, tenantID, now)
	return args.Int(0), args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, tenantID uuid.UUID, n *models.Notification) error {
	args := m.Called(ctx, tenantID, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Notification, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListForRecipient(ctx context.Context, tenantID, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	args := m.Called(ctx, tenantID, recipientID, unreadOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) Update(ctx context.Context, tenantID uuid.UUID, n *models.Notification) error {
	args := m.Called(ctx, tenantID, n)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (*models.DashboardStats, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

func (m *MockCacheService) SetDashboardStats(ctx context.Context, tenantID uuid.UUID, stats *models.DashboardStats, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, stats, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Send(ctx context.Context, recipient *models.User, n *models.Notification) error {
	args := m.Called(ctx, recipient, n)
	return args.Error(0)
}

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Upload(ctx context.Context, bucketName, objectName, contentType string, reader io.Reader, objectSize int64) error {
	args := m.Called(ctx, bucketName, objectName, contentType, reader, objectSize)
	return args.Error(0)
}

func (m *MockObjectStore) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

// MockStore wires a Store whose repositories are all testify mocks
type MockStore struct {
	Tenants       *MockTenantRepository
	Users         *MockUserRepository
	Agencies      *MockAgencyRepository
	Applications  *MockApplicationRepository
	Licenses      *MockLicenseRepository
	Notifications *MockNotificationRepository
}

func NewMockStore() (*MockStore, *repositories.Store) {
	m := &MockStore{
		Tenants:       &MockTenantRepository{},
		Users:         &MockUserRepository{},
		Agencies:      &MockAgencyRepository{},
		Applications:  &MockApplicationRepository{},
		Licenses:      &MockLicenseRepository{},
		Notifications: &MockNotificationRepository{},
	}
	return m, &repositories.Store{
		Tenants:       m.Tenants,
		Users:         m.Users,
		Agencies:      m.Agencies,
		Applications:  m.Applications,
		Licenses:      m.Licenses,
		Notifications: m.Notifications,
	}
}

func (m *MockStore) AssertExpectations(t mock.TestingT) {
	m.Tenants.AssertExpectations(t)
	m.Users.AssertExpectations(t)
	m.Agencies.AssertExpectations(t)
	m.Applications.AssertExpectations(t)
	m.Licenses.AssertExpectations(t)
	m.Notifications.AssertExpectations(t)
}
