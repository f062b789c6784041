package jobs

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"licenseportal/internal/models"
	"licenseportal/internal/services"
	"licenseportal/testhelpers"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) ScheduleDispatch(ctx context.Context, tenantID, notificationID uuid.UUID, delay time.Duration) error {
	args := m.Called(ctx, tenantID, notificationID, delay)
	return args.Error(0)
}

func (m *MockDispatcher) EnqueueDispatch(ctx context.Context, tenantID, notificationID uuid.UUID) error {
	args := m.Called(ctx, tenantID, notificationID)
	return args.Error(0)
}

type RenewalScannerTestSuite struct {
	suite.Suite
	repos      *testhelpers.MockStore
	dispatcher *MockDispatcher
	clock      *clockwork.FakeClock
	scanner    *RenewalScanner
	tenant     *models.Tenant
	ctx        context.Context
	created    []*models.Notification
}

func (suite *RenewalScannerTestSuite) SetupTest() {
	repos, store := testhelpers.NewMockStore()
	suite.repos = repos
	suite.dispatcher = &MockDispatcher{}
	suite.clock = clockwork.NewFakeClockAt(time.Date(2026, 6, 1, 2, 0, 0, 0, time.UTC))
	notifications := services.NewNotificationService(store, &testhelpers.MockTransport{}, suite.clock, zerolog.Nop())
	suite.scanner = NewRenewalScanner(store, notifications, suite.dispatcher, suite.clock, zerolog.Nop())
	suite.tenant = &models.Tenant{ID: uuid.New(), Name: "State of Example", Domain: "example.gov", IsActive: true}
	suite.ctx = context.Background()
	suite.created = nil
}

func (suite *RenewalScannerTestSuite) TearDownTest() {
	suite.repos.AssertExpectations(suite.T())
	suite.dispatcher.AssertExpectations(suite.T())
}

func TestRenewalScannerTestSuite(t *testing.T) {
	suite.Run(t, new(RenewalScannerTestSuite))
}

func (suite *RenewalScannerTestSuite) license(number string, expiresIn time.Duration) *models.License {
	return &models.License{
		Base:          models.Base{ID: uuid.New(), TenantID: suite.tenant.ID},
		LicenseNumber: number,
		Type:          "Food Service",
		Status:        models.LicenseStatusActive,
		ApplicantID:   uuid.New(),
		ExpiresAt:     suite.clock.Now().Add(expiresIn),
	}
}

func (suite *RenewalScannerTestSuite) expectCreates() *mock.Call {
	return suite.repos.Notifications.On("Create", suite.ctx, suite.tenant.ID, mock.AnythingOfType("*models.Notification")).
		Return(nil).
		Run(func(args mock.Arguments) {
			n := args.Get(2).(*models.Notification)
			n.ID = uuid.New()
			suite.created = append(suite.created, n)
		})
}

func (suite *RenewalScannerTestSuite) TestCheckExpiring_ReminderAndUrgent() {
	now := suite.clock.Now()
	inTwentyDays := suite.license("HEALTH-2026-11111", 20*24*time.Hour)
	inFiveDays := suite.license("HEALTH-2026-22222", 5*24*time.Hour)

	suite.repos.Tenants.On("ListActive", suite.ctx).Return([]*models.Tenant{suite.tenant}, nil)
	suite.repos.Licenses.On("ListActiveExpiring", suite.ctx, suite.tenant.ID, now, now.AddDate(0, 0, 30)).
		Return([]*models.License{inFiveDays, inTwentyDays}, nil)
	suite.expectCreates()
	suite.dispatcher.On("ScheduleDispatch", suite.ctx, suite.tenant.ID, mock.AnythingOfType("uuid.UUID"), time.Minute).Return(nil).Times(3)

	result, err := suite.scanner.CheckExpiringLicenses(suite.ctx)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), &ScanResult{Tenants: 1, Scanned: 2, Created: 3}, result)

	suite.Require().Len(suite.created, 3)
	assert.Equal(suite.T(), "License Expiring in 30 Days", suite.created[0].Title)
	assert.Equal(suite.T(), models.NotificationTypeReminder, suite.created[0].Type)
	assert.Equal(suite.T(), inFiveDays.ApplicantID, suite.created[0].RecipientID)
	assert.Equal(suite.T(), "License Expiring in 30 Days", suite.created[1].Title)
	assert.Equal(suite.T(), inTwentyDays.ApplicantID, suite.created[1].RecipientID)

	urgent := suite.created[2]
	assert.Equal(suite.T(), "License Expiring in 7 Days", urgent.Title)
	assert.Equal(suite.T(), models.NotificationTypeUrgent, urgent.Type)
	assert.Equal(suite.T(),
		"Your license HEALTH-2026-22222 for Food Service will expire in 7 days on 2026-06-06. Please renew your license to avoid interruption.",
		urgent.Message)
	assert.Equal(suite.T(), inFiveDays.ID.String(), *urgent.EntityReference)
	assert.False(suite.T(), urgent.IsRead)
}

func (suite *RenewalScannerTestSuite) TestCheckExpiring_RepeatedRunsDuplicateNotices() {
	now := suite.clock.Now()
	lic := suite.license("HEALTH-2026-55555", 20*24*time.Hour)

	suite.repos.Tenants.On("ListActive", suite.ctx).Return([]*models.Tenant{suite.tenant}, nil).Twice()
	suite.repos.Licenses.On("ListActiveExpiring", suite.ctx, suite.tenant.ID, now, now.AddDate(0, 0, 30)).
		Return([]*models.License{lic}, nil).Twice()
	suite.expectCreates().Twice()
	suite.dispatcher.On("ScheduleDispatch", suite.ctx, suite.tenant.ID, mock.AnythingOfType("uuid.UUID"), time.Minute).Return(nil).Twice()

	for run := 0; run < 2; run++ {
		result, err := suite.scanner.CheckExpiringLicenses(suite.ctx)
		suite.Require().NoError(err)
		assert.Equal(suite.T(), 1, result.Created)
	}

	// no deduplication: the second run repeats the reminder
	suite.Require().Len(suite.created, 2)
	assert.NotEqual(suite.T(), suite.created[0].ID, suite.created[1].ID)
	assert.Equal(suite.T(), suite.created[0].Title, suite.created[1].Title)
	assert.Equal(suite.T(), *suite.created[0].EntityReference, *suite.created[1].EntityReference)
}

func (suite *RenewalScannerTestSuite) TestCheckExpiring_WindowIsThirtyUTCDays() {
	ny, err := time.LoadLocation("America/New_York")
	suite.Require().NoError(err)
	// clocks spring forward inside the window
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, ny))
	repos, store := testhelpers.NewMockStore()
	suite.repos = repos
	notifications := services.NewNotificationService(store, &testhelpers.MockTransport{}, clock, zerolog.Nop())
	scanner := NewRenewalScanner(store, notifications, suite.dispatcher, clock, zerolog.Nop())
	now := clock.Now()

	suite.repos.Tenants.On("ListActive", suite.ctx).Return([]*models.Tenant{suite.tenant}, nil)
	suite.repos.Licenses.On("ListActiveExpiring", suite.ctx, suite.tenant.ID,
		mock.MatchedBy(func(after time.Time) bool { return after.Location() == time.UTC && after.Equal(now) }),
		mock.MatchedBy(func(until time.Time) bool { return until.Sub(now) == 30*24*time.Hour }),
	).Return([]*models.License{}, nil)

	_, err = scanner.CheckExpiringLicenses(suite.ctx)
	suite.Require().NoError(err)
}

func (suite *RenewalScannerTestSuite) TestCheckExpiring_CreateFailureDoesNotAbort() {
	now := suite.clock.Now()
	first := suite.license("HEALTH-2026-11111", 12*24*time.Hour)
	second := suite.license("HEALTH-2026-33333", 25*24*time.Hour)

	suite.repos.Tenants.On("ListActive", suite.ctx).Return([]*models.Tenant{suite.tenant}, nil)
	suite.repos.Licenses.On("ListActiveExpiring", suite.ctx, suite.tenant.ID, now, now.AddDate(0, 0, 30)).
		Return([]*models.License{first, second}, nil)
	suite.repos.Notifications.On("Create", suite.ctx, suite.tenant.ID, mock.AnythingOfType("*models.Notification")).
		Return(errors.New("connection reset")).Once()
	suite.expectCreates()
	suite.dispatcher.On("ScheduleDispatch", suite.ctx, suite.tenant.ID, mock.AnythingOfType("uuid.UUID"), time.Minute).Return(nil).Once()

	result, err := suite.scanner.CheckExpiringLicenses(suite.ctx)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, result.Failed)
	assert.Equal(suite.T(), 1, result.Created)
	suite.Require().Len(suite.created, 1)
	assert.Contains(suite.T(), suite.created[0].Message, "HEALTH-2026-33333")
}

func (suite *RenewalScannerTestSuite) TestCheckExpiring_ScheduleFailureCounted() {
	now := suite.clock.Now()
	lic := suite.license("HEALTH-2026-44444", 10*24*time.Hour)

	suite.repos.Tenants.On("ListActive", suite.ctx).Return([]*models.Tenant{suite.tenant}, nil)
	suite.repos.Licenses.On("ListActiveExpiring", suite.ctx, suite.tenant.ID, now, now.AddDate(0, 0, 30)).
		Return([]*models.License{lic}, nil)
	suite.expectCreates()
	suite.dispatcher.On("ScheduleDispatch", suite.ctx, suite.tenant.ID, mock.AnythingOfType("uuid.UUID"), time.Minute).
		Return(errors.New("redis down"))

	result, err := suite.scanner.CheckExpiringLicenses(suite.ctx)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), &ScanResult{Tenants: 1, Scanned: 1, Created: 1, Failed: 1}, result)
}

func (suite *RenewalScannerTestSuite) TestCheckExpiring_TenantListFailureAborts() {
	suite.repos.Tenants.On("ListActive", suite.ctx).Return(nil, errors.New("db unavailable"))

	result, err := suite.scanner.CheckExpiringLicenses(suite.ctx)
	assert.Nil(suite.T(), result)
	assert.ErrorContains(suite.T(), err, "db unavailable")
}

func (suite *RenewalScannerTestSuite) TestCheckExpiring_LicenseQueryFailureAborts() {
	now := suite.clock.Now()
	suite.repos.Tenants.On("ListActive", suite.ctx).Return([]*models.Tenant{suite.tenant}, nil)
	suite.repos.Licenses.On("ListActiveExpiring", suite.ctx, suite.tenant.ID, now, now.AddDate(0, 0, 30)).
		Return(nil, errors.New("statement timeout"))

	_, err := suite.scanner.CheckExpiringLicenses(suite.ctx)
	assert.ErrorContains(suite.T(), err, "statement timeout")
}

func (suite *RenewalScannerTestSuite) TestCheckExpiring_ScansEveryActiveTenant() {
	now := suite.clock.Now()
	other := &models.Tenant{ID: uuid.New(), Name: "County", Domain: "county.gov", IsActive: true}
	suite.repos.Tenants.On("ListActive", suite.ctx).Return([]*models.Tenant{suite.tenant, other}, nil)
	suite.repos.Licenses.On("ListActiveExpiring", suite.ctx, suite.tenant.ID, now, now.AddDate(0, 0, 30)).Return([]*models.License{}, nil)
	suite.repos.Licenses.On("ListActiveExpiring", suite.ctx, other.ID, now, now.AddDate(0, 0, 30)).Return([]*models.License{}, nil)

	result, err := suite.scanner.CheckExpiringLicenses(suite.ctx)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), &ScanResult{Tenants: 2}, result)
}

func (suite *RenewalScannerTestSuite) TestAutoRenew_NotifiesExpiredHolders() {
	cutoff := suite.clock.Now().Add(-24 * time.Hour)
	expired := suite.license("CONSTRUCTION-2025-55555", -3*24*time.Hour)

	suite.repos.Tenants.On("ListActive", suite.ctx).Return([]*models.Tenant{suite.tenant}, nil)
	suite.repos.Licenses.On("ListActiveExpiredBefore", suite.ctx, suite.tenant.ID, cutoff).Return([]*models.License{expired}, nil)
	suite.expectCreates()
	suite.dispatcher.On("EnqueueDispatch", suite.ctx, suite.tenant.ID, mock.AnythingOfType("uuid.UUID")).Return(nil).Once()

	result, err := suite.scanner.AutoRenewLicenses(suite.ctx)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), &ScanResult{Tenants: 1, Scanned: 1, Created: 1}, result)

	suite.Require().Len(suite.created, 1)
	n := suite.created[0]
	assert.Equal(suite.T(), "License Expired", n.Title)
	assert.Equal(suite.T(), models.NotificationTypeCritical, n.Type)
	assert.Equal(suite.T(),
		"Your license CONSTRUCTION-2025-55555 for Food Service expired on 2026-05-29. Please contact your agency immediately to renew your license.",
		n.Message)
	assert.Equal(suite.T(), models.LicenseStatusActive, expired.Status)
	suite.repos.Licenses.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything, mock.Anything)
}
