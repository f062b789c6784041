package repositories

import (
	"context"
	"fmt"

	"licenseportal/internal/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type UserRepository interface {
	Create(ctx context.Context, tenantID uuid.UUID, user *models.User) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error)
	Update(ctx context.Context, tenantID uuid.UUID, user *models.User) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error)
}

type userRepo struct {
	db    DB
	clock clockwork.Clock
}

func NewUserRepo(db DB, clock clockwork.Clock) UserRepository {
	return &userRepo{db: db, clock: clock}
}

const userColumns = `id, tenant_id, email, password_hash, first_name, last_name, role, agency_id, is_active, created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Role, &u.AgencyID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *userRepo) Create(ctx context.Context, tenantID uuid.UUID, user *models.User) error {
	if err := prepareCreate(tenantID, user, r.clock.Now()); err != nil {
		return err
	}
	query := `
		INSERT INTO users (id, tenant_id, email, password_hash, first_name, last_name, role, agency_id, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.TenantID, user.Email, user.PasswordHash, user.FirstName,
		user.LastName, user.Role, user.AgencyID, user.IsActive, user.CreatedAt)
	return mapError(err)
}

func (r *userRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND id = $2`
	u, err := scanUser(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	return u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND email = $2`
	u, err := scanUser(r.db.QueryRow(ctx, query, tenantID, email))
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", email, err)
	}
	return u, nil
}

func (r *userRepo) Update(ctx context.Context, tenantID uuid.UUID, user *models.User) error {
	if err := prepareUpdate(tenantID, user, r.clock.Now()); err != nil {
		return err
	}
	query := `
		UPDATE users
		SET first_name = $3, last_name = $4, role = $5, agency_id = $6, is_active = $7, password_hash = $8, updated_at = $9
		WHERE tenant_id = $1 AND id = $2
	`
	tag, err := r.db.Exec(ctx, query, tenantID, user.ID, user.FirstName, user.LastName, user.Role,
		user.AgencyID, user.IsActive, user.PasswordHash, user.UpdatedAt)
	return expectAffected(tag, err)
}

func (r *userRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	limit, offset = page(limit, offset)
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
