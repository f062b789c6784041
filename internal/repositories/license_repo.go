package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"licenseportal/internal/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type LicenseRepository interface {
	Create(ctx context.Context, tenantID uuid.UUID, license *models.License) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.License, error)
	GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*models.License, error)
	GetByApplicationID(ctx context.Context, tenantID, applicationID uuid.UUID) (*models.License, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.LicenseFilter) ([]*models.License, error)
	Update(ctx context.Context, tenantID uuid.UUID, license *models.License) error
	// ListActiveExpiring returns Active licenses with after < expires_at <= until.
	ListActiveExpiring(ctx context.Context, tenantID uuid.UUID, after, until time.Time) ([]*models.License, error)
	// ListActiveExpiredBefore returns Active licenses with expires_at <= cutoff.
	ListActiveExpiredBefore(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) ([]*models.License, error)
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[models.LicenseStatus]int, error)
	CountActiveExpiring(ctx context.Context, tenantID uuid.UUID, after, until time.Time) (int, error)
	// CountActiveLapsed counts licenses still stored Active with expires_at <= now.
	CountActiveLapsed(ctx context.Context, tenantID uuid.UUID, now time.Time) (int, error)
}

type licenseRepo struct {
	db    DB
	clock clockwork.Clock
}

func NewLicenseRepo(db DB, clock clockwork.Clock) LicenseRepository {
	return &licenseRepo{db: db, clock: clock}
}

const licenseColumns = `id, tenant_id, license_number, type, status, application_id, applicant_id, agency_id, issued_by,
	issued_at, expires_at, renewed_at, notes, created_at, updated_at`

func scanLicense(row scanner) (*models.License, error) {
	l := &models.License{}
	err := row.Scan(&l.ID, &l.TenantID, &l.LicenseNumber, &l.Type, &l.Status, &l.ApplicationID, &l.ApplicantID,
		&l.AgencyID, &l.IssuedBy, &l.IssuedAt, &l.ExpiresAt, &l.RenewedAt, &l.Notes, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return l, nil
}

func (r *licenseRepo) Create(ctx context.Context, tenantID uuid.UUID, license *models.License) error {
	if err := prepareCreate(tenantID, license, r.clock.Now()); err != nil {
		return err
	}
	query := `
		INSERT INTO licenses (id, tenant_id, license_number, type, status, application_id, applicant_id, agency_id,
			issued_by, issued_at, expires_at, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.Exec(ctx, query, license.ID, license.TenantID, license.LicenseNumber, license.Type, license.Status,
		license.ApplicationID, license.ApplicantID, license.AgencyID, license.IssuedBy, license.IssuedAt,
		license.ExpiresAt, license.Notes, license.CreatedAt)
	return mapError(err)
}

func (r *licenseRepo) get(ctx context.Context, tenantID uuid.UUID, column string, value any) (*models.License, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE tenant_id = $1 AND ` + column + ` = $2`
	l, err := scanLicense(r.db.QueryRow(ctx, query, tenantID, value))
	if err != nil {
		return nil, fmt.Errorf("license %s=%v: %w", column, value, err)
	}
	return l, nil
}

func (r *licenseRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.License, error) {
	return r.get(ctx, tenantID, "id", id)
}

func (r *licenseRepo) GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*models.License, error) {
	return r.get(ctx, tenantID, "license_number", number)
}

func (r *licenseRepo) GetByApplicationID(ctx context.Context, tenantID, applicationID uuid.UUID) (*models.License, error) {
	return r.get(ctx, tenantID, "application_id", applicationID)
}

func (r *licenseRepo) List(ctx context.Context, tenantID uuid.UUID, filter models.LicenseFilter) ([]*models.License, error) {
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
		FROM licenses
		WHERE %s
		ORDER BY issued_at DESC
		LIMIT $%d OFFSET $%d
	`, licenseColumns, strings.Join(where, " AND "), len(args)-1, len(args))
	return r.list(ctx, query, args...)
}

func (r *licenseRepo) Update(ctx context.Context, tenantID uuid.UUID, license *models.License) error {
	if err := prepareUpdate(tenantID, license, r.clock.Now()); err != nil {
		return err
	}
	query := `
		UPDATE licenses
		SET status = $3, expires_at = $4, renewed_at = $5, notes = $6, updated_at = $7
		WHERE tenant_id = $1 AND id = $2
	`
	tag, err := r.db.Exec(ctx, query, tenantID, license.ID, license.Status, license.ExpiresAt,
		license.RenewedAt, license.Notes, license.UpdatedAt)
	return expectAffected(tag, err)
}

func (r *licenseRepo) ListActiveExpiring(ctx context.Context, tenantID uuid.UUID, after, until time.Time) ([]*models.License, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	query := `
		SELECT ` + licenseColumns + `
		FROM licenses
		WHERE tenant_id = $1 AND status = $2 AND expires_at > $3 AND expires_at <= $4
		ORDER BY expires_at ASC
	`
	return r.list(ctx, query, tenantID, models.LicenseStatusActive, after, until)
}

func (r *licenseRepo) ListActiveExpiredBefore(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) ([]*models.License, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	query := `
		SELECT ` + licenseColumns + `
		FROM licenses
		WHERE tenant_id = $1 AND status = $2 AND expires_at <= $3
		ORDER BY expires_at ASC
	`
	return r.list(ctx, query, tenantID, models.LicenseStatusActive, cutoff)
}

func (r *licenseRepo) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[models.LicenseStatus]int, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	query := `SELECT status, COUNT(*) FROM licenses WHERE tenant_id = $1 GROUP BY status`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.LicenseStatus]int)
	for rows.Next() {
		var status models.LicenseStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *licenseRepo) CountActiveExpiring(ctx context.Context, tenantID uuid.UUID, after, until time.Time) (int, error) {
	if err := requireTenant(tenantID); err != nil {
		return 0, err
	}
	query := `
		SELECT COUNT(*) FROM licenses
		WHERE tenant_id = $1 AND status = $2 AND expires_at > $3 AND expires_at <= $4
	`
	var n int
	if err := r.db.QueryRow(ctx, query, tenantID, models.LicenseStatusActive, after, until).Scan(&n); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

func (r *licenseRepo) CountActiveLapsed(ctx context.Context, tenantID uuid.UUID, now time.Time) (int, error) {
	if err := requireTenant(tenantID); err != nil {
		return 0, err
	}
	query := `SELECT COUNT(*) FROM licenses WHERE tenant_id = $1 AND status = $2 AND expires_at <= $3`
	var n int
	if err := r.db.QueryRow(ctx, query, tenantID, models.LicenseStatusActive, now).Scan(&n); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

func (r *licenseRepo) list(ctx context.Context, query string, args ...any) ([]*models.License, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var licenses []*models.License
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, l)
	}
	return licenses, rows.Err()
}
