package handlers

import (
	"context"
	"io"

	"licenseportal/internal/jobs/background"
	"licenseportal/internal/models"
	"licenseportal/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockApplicationService struct {
	mock.Mock
}

func (m *MockApplicationService) Submit(ctx context.Context, tenantID uuid.UUID, req *services.SubmitApplicationRequest) (*models.LicenseApplication, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LicenseApplication), args.Error(1)
}

func (m *MockApplicationService) Approve(ctx context.Context, tenantID, applicationID, reviewerID uuid.UUID, notes string) (*models.LicenseApplication, error) {
	args := m.Called(ctx, tenantID, applicationID, reviewerID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LicenseApplication), args.Error(1)
}

func (m *MockApplicationService) Reject(ctx context.Context, tenantID, applicationID, reviewerID uuid.UUID, reason string) (*models.LicenseApplication, error) {
	args := m.Called(ctx, tenantID, applicationID, reviewerID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LicenseApplication), args.Error(1)
}

func (m *MockApplicationService) MarkPaid(ctx context.Context, tenantID, applicationID uuid.UUID) (*models.LicenseApplication, error) {
	args := m.Called(ctx, tenantID, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LicenseApplication), args.Error(1)
}

func (m *MockApplicationService) Get(ctx context.Context, tenantID, applicationID uuid.UUID) (*models.LicenseApplication, error) {
	args := m.Called(ctx, tenantID, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LicenseApplication), args.Error(1)
}

func (m *MockApplicationService) List(ctx context.Context, tenantID uuid.UUID, filter models.ApplicationFilter) ([]*models.LicenseApplication, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LicenseApplication), args.Error(1)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, tenantID, applicationID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (*services.UploadedDocument, error) {
	args := m.Called(ctx, tenantID, applicationID, filename, contentType, reader, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.UploadedDocument), args.Error(1)
}

type MockLicenseService struct {
	mock.Mock
}

func (m *MockLicenseService) Issue(ctx context.Context, tenantID, applicationID, issuerID uuid.UUID) (*models.License, error) {
	args := m.Called(ctx, tenantID, applicationID, issuerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseService) Renew(ctx context.Context, tenantID, licenseID uuid.UUID, months int, notes string) (*models.License, error) {
	args := m.Called(ctx, tenantID, licenseID, months, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseService) Get(ctx context.Context, tenantID, licenseID uuid.UUID) (*models.License, error) {
	args := m.Called(ctx, tenantID, licenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseService) GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*models.License, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}

func (m *MockLicenseService) List(ctx context.Context, tenantID uuid.UUID, filter models.LicenseFilter) ([]*models.License, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.License), args.Error(1)
}

func (m *MockLicenseService) Certificate(ctx context.Context, tenantID, licenseID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, tenantID, licenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Create(ctx context.Context, tenantID uuid.UUID, n *models.Notification) error {
	args := m.Called(ctx, tenantID, n)
	return args.Error(0)
}

func (m *MockNotificationService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Notification, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationService) ListForRecipient(ctx context.Context, tenantID, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	args := m.Called(ctx, tenantID, recipientID, unreadOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, tenantID, id, recipientID uuid.UUID) (*models.Notification, error) {
	args := m.Called(ctx, tenantID, id, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationService) Send(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockStatsProvider struct {
	mock.Mock
}

func (m *MockStatsProvider) GetStats(ctx context.Context, tenantID uuid.UUID) (*models.DashboardStats, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

type MockJobRunner struct {
	mock.Mock
}

func (m *MockJobRunner) RunNow(ctx context.Context, name string) (*background.RunStatus, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*background.RunStatus), args.Error(1)
}

func (m *MockJobRunner) JobStatus() []background.JobInfo {
	args := m.Called()
	return args.Get(0).([]background.JobInfo)
}
