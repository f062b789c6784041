package repositories

import (
	"context"
	"testing"
	"time"

	"licenseportal/internal/common"
	"licenseportal/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var applicationCols = []string{"id", "tenant_id", "application_number", "license_type", "status", "applicant_id",
	"agency_id", "reviewer_id", "submitted_at", "reviewed_at", "approved_at", "rejected_at", "issued_at",
	"reviewer_notes", "rejection_reason", "application_fee", "is_paid", "created_at", "updated_at"}

func applicationRow(a *models.LicenseApplication) []any {
	return []any{a.ID, a.TenantID, a.ApplicationNumber, a.LicenseType, a.Status, a.ApplicantID, a.AgencyID,
		a.ReviewerID, a.SubmittedAt, a.ReviewedAt, a.ApprovedAt, a.RejectedAt, a.IssuedAt,
		a.ReviewerNotes, a.RejectionReason, a.ApplicationFee, a.IsPaid, a.CreatedAt, a.UpdatedAt}
}

type ApplicationRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	clock    *clockwork.FakeClock
	repo     ApplicationRepository
	tenantID uuid.UUID
	ctx      context.Context
}

func (s *ApplicationRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(s.T(), err)
	s.mock = mock
	s.clock = clockwork.NewFakeClockAt(time.Date(2026, 5, 10, 14, 30, 0, 0, time.UTC))
	s.repo = NewApplicationRepo(mock, s.clock)
	s.tenantID = uuid.New()
	s.ctx = context.Background()
}

func (s *ApplicationRepoTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
	s.mock.Close()
}

func TestApplicationRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ApplicationRepoTestSuite))
}

func (s *ApplicationRepoTestSuite) newApplication() *models.LicenseApplication {
	return &models.LicenseApplication{
		Base:              models.Base{ID: uuid.New(), TenantID: s.tenantID, CreatedAt: s.clock.Now()},
		ApplicationNumber: "APP-2026-4821",
		LicenseType:       "Food Service",
		Status:            models.ApplicationStatusSubmitted,
		ApplicantID:       uuid.New(),
		AgencyID:          uuid.New(),
		SubmittedAt:       s.clock.Now(),
		ApplicationFee:    decimal.RequireFromString("150.00"),
	}
}

func (s *ApplicationRepoTestSuite) TestCreate() {
	app := s.newApplication()
	app.ID = uuid.Nil

	s.mock.ExpectExec(`INSERT INTO license_applications`).
		WithArgs(pgxmock.AnyArg(), s.tenantID, app.ApplicationNumber, app.LicenseType, app.Status, app.ApplicantID,
			app.AgencyID, app.SubmittedAt, app.ReviewerNotes, app.ApplicationFee, false, s.clock.Now()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	s.Require().NoError(s.repo.Create(s.ctx, s.tenantID, app))
	s.NotEqual(uuid.Nil, app.ID)
}

func (s *ApplicationRepoTestSuite) TestGetByID_ScansDecimalFee() {
	app := s.newApplication()
	s.mock.ExpectQuery(`FROM license_applications WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(s.tenantID, app.ID).
		WillReturnRows(pgxmock.NewRows(applicationCols).AddRow(applicationRow(app)...))

	got, err := s.repo.GetByID(s.ctx, s.tenantID, app.ID)
	s.Require().NoError(err)
	s.True(got.ApplicationFee.Equal(decimal.NewFromInt(150)))
	s.Equal(models.ApplicationStatusSubmitted, got.Status)
}

func (s *ApplicationRepoTestSuite) TestUpdate_GuardsExpectedStatus() {
	app := s.newApplication()
	app.Status = models.ApplicationStatusApproved

	s.mock.ExpectExec(`WHERE tenant_id = \$1 AND id = \$2 AND status = \$3`).
		WithArgs(s.tenantID, app.ID, models.ApplicationStatusSubmitted, models.ApplicationStatusApproved,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	s.NoError(s.repo.Update(s.ctx, s.tenantID, app, models.ApplicationStatusSubmitted))
}

func (s *ApplicationRepoTestSuite) TestUpdate_LostRaceIsInvalidState() {
	app := s.newApplication()
	stored := *app
	stored.Status = models.ApplicationStatusRejected
	app.Status = models.ApplicationStatusApproved

	s.mock.ExpectExec(`UPDATE license_applications`).
		WithArgs(s.tenantID, app.ID, models.ApplicationStatusSubmitted, pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	s.mock.ExpectQuery(`FROM license_applications WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(s.tenantID, app.ID).
		WillReturnRows(pgxmock.NewRows(applicationCols).AddRow(applicationRow(&stored)...))

	err := s.repo.Update(s.ctx, s.tenantID, app, models.ApplicationStatusSubmitted)
	s.ErrorIs(err, common.ErrInvalidState)
}

func (s *ApplicationRepoTestSuite) TestUpdate_MissingRowIsNotFound() {
	app := s.newApplication()

	s.mock.ExpectExec(`UPDATE license_applications`).
		WithArgs(s.tenantID, app.ID, models.ApplicationStatusSubmitted, pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	s.mock.ExpectQuery(`FROM license_applications`).
		WithArgs(s.tenantID, app.ID).
		WillReturnError(pgx.ErrNoRows)

	err := s.repo.Update(s.ctx, s.tenantID, app, models.ApplicationStatusSubmitted)
	s.ErrorIs(err, common.ErrNotFound)
}

func (s *ApplicationRepoTestSuite) TestList_NoFilters() {
	s.mock.ExpectQuery(`WHERE tenant_id = \$1\s+ORDER BY submitted_at DESC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs(s.tenantID, 20, 40).
		WillReturnRows(pgxmock.NewRows(applicationCols))

	got, err := s.repo.List(s.ctx, s.tenantID, models.ApplicationFilter{Limit: 20, Offset: 40})
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *ApplicationRepoTestSuite) TestCountByStatus_MissingTenant() {
	_, err := s.repo.CountByStatus(s.ctx, uuid.Nil)
	s.ErrorIs(err, common.ErrNotFound)
}
