package repositories

import (
	"context"
	"fmt"
	"strings"

	"licenseportal/internal/common"
	"licenseportal/internal/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type ApplicationRepository interface {
	Create(ctx context.Context, tenantID uuid.UUID, app *models.LicenseApplication) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.LicenseApplication, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.ApplicationFilter) ([]*models.LicenseApplication, error)
	// Update persists app only while the stored status still equals expected.
	Update(ctx context.Context, tenantID uuid.UUID, app *models.LicenseApplication, expected models.ApplicationStatus) error
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[models.ApplicationStatus]int, error)
}

type applicationRepo struct {
	db    DB
	clock clockwork.Clock
}

func NewApplicationRepo(db DB, clock clockwork.Clock) ApplicationRepository {
	return &applicationRepo{db: db, clock: clock}
}

const applicationColumns = `id, tenant_id, application_number, license_type, status, applicant_id, agency_id, reviewer_id,
	submitted_at, reviewed_at, approved_at, rejected_at, issued_at, reviewer_notes, rejection_reason,
	application_fee, is_paid, created_at, updated_at`

func scanApplication(row scanner) (*models.LicenseApplication, error) {
	a := &models.LicenseApplication{}
	err := row.Scan(&a.ID, &a.TenantID, &a.ApplicationNumber, &a.LicenseType, &a.Status, &a.ApplicantID, &a.AgencyID,
		&a.ReviewerID, &a.SubmittedAt, &a.ReviewedAt, &a.ApprovedAt, &a.RejectedAt, &a.IssuedAt,
		&a.ReviewerNotes, &a.RejectionReason, &a.ApplicationFee, &a.IsPaid, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r *applicationRepo) Create(ctx context.Context, tenantID uuid.UUID, app *models.LicenseApplication) error {
	if err := prepareCreate(tenantID, app, r.clock.Now()); err != nil {
		return err
	}
	query := `
		INSERT INTO license_applications (id, tenant_id, application_number, license_type, status, applicant_id, agency_id,
			submitted_at, reviewer_notes, application_fee, is_paid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, query, app.ID, app.TenantID, app.ApplicationNumber, app.LicenseType, app.Status,
		app.ApplicantID, app.AgencyID, app.SubmittedAt, app.ReviewerNotes, app.ApplicationFee, app.IsPaid, app.CreatedAt)
	return mapError(err)
}

func (r *applicationRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.LicenseApplication, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	query := `SELECT ` + applicationColumns + ` FROM license_applications WHERE tenant_id = $1 AND id = $2`
	a, err := scanApplication(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, fmt.Errorf("application %s: %w", id, err)
	}
	return a, nil
}

func (r *applicationRepo) List(ctx context.Context, tenantID uuid.UUID, filter models.ApplicationFilter) ([]*models.LicenseApplication, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	where := []string{"tenant_id = $1"}
	args := []any{tenantID}
	if filter.AgencyID != nil {
		args = append(args, *filter.AgencyID)
		where = append(where, fmt.Sprintf("agency_id = $%d", len(args)))
	}
	if filter.ApplicantID != nil {
		args = append(args, *filter.ApplicantID)
		where = append(where, fmt.Sprintf("applicant_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	limit, offset := page(filter.Limit, filter.Offset)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM license_applications
		WHERE %s
		ORDER BY submitted_at DESC
		LIMIT $%d OFFSET $%d
	`, applicationColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []*models.LicenseApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (r *applicationRepo) Update(ctx context.Context, tenantID uuid.UUID, app *models.LicenseApplication, expected models.ApplicationStatus) error {
	if err := prepareUpdate(tenantID, app, r.clock.Now()); err != nil {
		return err
	}
	query := `
		UPDATE license_applications
		SET status = $4, reviewer_id = $5, reviewed_at = $6, approved_at = $7, rejected_at = $8, issued_at = $9,
			reviewer_notes = $10, rejection_reason = $11, application_fee = $12, is_paid = $13, updated_at = $14
		WHERE tenant_id = $1 AND id = $2 AND status = $3
	`
	tag, err := r.db.Exec(ctx, query, tenantID, app.ID, expected, app.Status, app.ReviewerID, app.ReviewedAt,
		app.ApprovedAt, app.RejectedAt, app.IssuedAt, app.ReviewerNotes, app.RejectionReason,
		app.ApplicationFee, app.IsPaid, app.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row is gone or someone else moved it first.
		if _, getErr := r.GetByID(ctx, tenantID, app.ID); getErr != nil {
			return getErr
		}
		return fmt.Errorf("application %s is no longer %s: %w", app.ID, expected, common.ErrInvalidState)
	}
	return nil
}

func (r *applicationRepo) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[models.ApplicationStatus]int, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	query := `SELECT status, COUNT(*) FROM license_applications WHERE tenant_id = $1 GROUP BY status`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.ApplicationStatus]int)
	for rows.Next() {
		var status models.ApplicationStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
