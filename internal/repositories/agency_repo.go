package repositories

import (
	"context"
	"fmt"

	"licenseportal/internal/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type AgencyRepository interface {
	Create(ctx context.Context, tenantID uuid.UUID, agency *models.Agency) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Agency, error)
	GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*models.Agency, error)
	Update(ctx context.Context, tenantID uuid.UUID, agency *models.Agency) error
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.Agency, error)
}

type agencyRepo struct {
	db    DB
	clock clockwork.Clock
}

func NewAgencyRepo(db DB, clock clockwork.Clock) AgencyRepository {
	return &agencyRepo{db: db, clock: clock}
}

const agencyColumns = `id, tenant_id, name, code, description, is_active, created_at, updated_at`

func scanAgency(row scanner) (*models.Agency, error) {
	a := &models.Agency{}
	if err := row.Scan(&a.ID, &a.TenantID, &a.Name, &a.Code, &a.Description, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r *agencyRepo) Create(ctx context.Context, tenantID uuid.UUID, agency *models.Agency) error {
	if err := prepareCreate(tenantID, agency, r.clock.Now()); err != nil {
		return err
	}
	query := `
		INSERT INTO agencies (id, tenant_id, name, code, description, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, agency.ID, agency.TenantID, agency.Name, agency.Code,
		agency.Description, agency.IsActive, agency.CreatedAt)
	return mapError(err)
}

func (r *agencyRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Agency, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	query := `SELECT ` + agencyColumns + ` FROM agencies WHERE tenant_id = $1 AND id = $2`
	a, err := scanAgency(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, fmt.Errorf("agency %s: %w", id, err)
	}
	return a, nil
}

func (r *agencyRepo) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*models.Agency, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	query := `SELECT ` + agencyColumns + ` FROM agencies WHERE tenant_id = $1 AND code = $2`
	a, err := scanAgency(r.db.QueryRow(ctx, query, tenantID, code))
	if err != nil {
		return nil, fmt.Errorf("agency %q: %w", code, err)
	}
	return a, nil
}

func (r *agencyRepo) Update(ctx context.Context, tenantID uuid.UUID, agency *models.Agency) error {
	if err := prepareUpdate(tenantID, agency, r.clock.Now()); err != nil {
		return err
	}
	query := `
		UPDATE agencies
		SET name = $3, code = $4, description = $5, is_active = $6, updated_at = $7
		WHERE tenant_id = $1 AND id = $2
	`
	tag, err := r.db.Exec(ctx, query, tenantID, agency.ID, agency.Name, agency.Code,
		agency.Description, agency.IsActive, agency.UpdatedAt)
	return expectAffected(tag, err)
}

func (r *agencyRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Agency, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	query := `SELECT ` + agencyColumns + ` FROM agencies WHERE tenant_id = $1 ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agencies []*models.Agency
	for rows.Next() {
		a, err := scanAgency(rows)
		if err != nil {
			return nil, err
		}
		agencies = append(agencies, a)
	}
	return agencies, rows.Err()
}
