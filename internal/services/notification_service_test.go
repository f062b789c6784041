package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"licenseportal/internal/common"
	"licenseportal/internal/models"
	"licenseportal/testhelpers"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type NotificationServiceTestSuite struct {
	suite.Suite
	repos     *testhelpers.MockStore
	transport *testhelpers.MockTransport
	clock     *clockwork.FakeClock
	service   NotificationService
	tenantID  uuid.UUID
	recipient *models.User
	ctx       context.Context
}

func (suite *NotificationServiceTestSuite) SetupTest() {
	repos, store := testhelpers.NewMockStore()
	suite.repos = repos
	suite.transport = &testhelpers.MockTransport{}
	suite.clock = clockwork.NewFakeClockAt(time.Date(2026, 7, 1, 2, 1, 0, 0, time.UTC))
	suite.service = NewNotificationService(store, suite.transport, suite.clock, zerolog.Nop())
	suite.tenantID = uuid.New()
	suite.recipient = &models.User{
		Base:      models.Base{ID: uuid.New(), TenantID: suite.tenantID},
		Email:     "dana.reyes@example.gov",
		FirstName: "Dana",
		LastName:  "Reyes",
		Role:      models.RoleApplicant,
		IsActive:  true,
	}
	suite.ctx = context.Background()
}

func (suite *NotificationServiceTestSuite) TearDownTest() {
	suite.repos.AssertExpectations(suite.T())
	suite.transport.AssertExpectations(suite.T())
}

func TestNotificationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(NotificationServiceTestSuite))
}

func (suite *NotificationServiceTestSuite) stored() *models.Notification {
	return &models.Notification{
		Base:        models.Base{ID: uuid.New(), TenantID: suite.tenantID},
		Title:       "License Expiring in 30 Days",
		Message:     "Your license HEALTH-2026-12345 for Food Service will expire in 30 days",
		Type:        models.NotificationTypeReminder,
		RecipientID: suite.recipient.ID,
	}
}

func (suite *NotificationServiceTestSuite) TestSend_Success() {
	n := suite.stored()
	suite.repos.Notifications.On("GetByID", suite.ctx, suite.tenantID, n.ID).Return(n, nil)
	suite.repos.Users.On("GetByID", suite.ctx, suite.tenantID, suite.recipient.ID).Return(suite.recipient, nil)
	suite.transport.On("Send", suite.ctx, suite.recipient, n).Return(nil)

	err := suite.service.Send(suite.ctx, suite.tenantID, n.ID)
	suite.Require().NoError(err)
	assert.False(suite.T(), n.IsRead)
	suite.repos.Notifications.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *NotificationServiceTestSuite) TestSend_NotificationMissing() {
	id := uuid.New()
	suite.repos.Notifications.On("GetByID", suite.ctx, suite.tenantID, id).Return(nil, common.ErrNotFound)

	err := suite.service.Send(suite.ctx, suite.tenantID, id)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *NotificationServiceTestSuite) TestSend_TransportFailure() {
	n := suite.stored()
	suite.repos.Notifications.On("GetByID", suite.ctx, suite.tenantID, n.ID).Return(n, nil)
	suite.repos.Users.On("GetByID", suite.ctx, suite.tenantID, suite.recipient.ID).Return(suite.recipient, nil)
	suite.transport.On("Send", suite.ctx, suite.recipient, n).Return(errors.New("smtp relay refused"))

	err := suite.service.Send(suite.ctx, suite.tenantID, n.ID)
	assert.ErrorIs(suite.T(), err, common.ErrTransport)
	assert.Contains(suite.T(), err.Error(), "smtp relay refused")
	assert.False(suite.T(), n.IsRead)
}

func (suite *NotificationServiceTestSuite) TestCreate_DefaultsAndUnread() {
	n := &models.Notification{Title: "Welcome", Message: "hello", RecipientID: suite.recipient.ID, IsRead: true}
	suite.repos.Notifications.On("Create", suite.ctx, suite.tenantID, n).Return(nil)

	suite.Require().NoError(suite.service.Create(suite.ctx, suite.tenantID, n))
	assert.Equal(suite.T(), models.NotificationTypeInfo, n.Type)
	assert.False(suite.T(), n.IsRead)
}

func (suite *NotificationServiceTestSuite) TestCreate_RequiresRecipient() {
	err := suite.service.Create(suite.ctx, suite.tenantID, &models.Notification{Title: "x"})
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *NotificationServiceTestSuite) TestMarkRead_Success() {
	n := suite.stored()
	suite.repos.Notifications.On("GetByID", suite.ctx, suite.tenantID, n.ID).Return(n, nil)
	suite.repos.Notifications.On("Update", suite.ctx, suite.tenantID, n).Return(nil)

	got, err := suite.service.MarkRead(suite.ctx, suite.tenantID, n.ID, suite.recipient.ID)
	suite.Require().NoError(err)
	assert.True(suite.T(), got.IsRead)
	assert.Equal(suite.T(), suite.clock.Now(), *got.ReadAt)
}

func (suite *NotificationServiceTestSuite) TestMarkRead_SomeoneElsesNotification() {
	n := suite.stored()
	suite.repos.Notifications.On("GetByID", suite.ctx, suite.tenantID, n.ID).Return(n, nil)

	_, err := suite.service.MarkRead(suite.ctx, suite.tenantID, n.ID, uuid.New())
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}
