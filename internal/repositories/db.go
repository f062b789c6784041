package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"licenseportal/internal/common"
	"licenseportal/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonboulle/clockwork"
)

// DB is the subset of pgxpool.Pool the repositories use. pgxmock's pool
// satisfies it as well.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const uniqueViolation = "23505"

type scanner interface {
	Scan(dest ...any) error
}

// Store bundles the tenant-scoped repositories over a single connection pool.
type Store struct {
	Tenants       TenantRepository
	Users         UserRepository
	Agencies      AgencyRepository
	Applications  ApplicationRepository
	Licenses      LicenseRepository
	Notifications NotificationRepository
}

func NewStore(db DB, clock clockwork.Clock) *Store {
	return &Store{
		Tenants:       NewTenantRepo(db, clock),
		Users:         NewUserRepo(db, clock),
		Agencies:      NewAgencyRepo(db, clock),
		Applications:  NewApplicationRepo(db, clock),
		Licenses:      NewLicenseRepo(db, clock),
		Notifications: NewNotificationRepo(db, clock),
	}
}

// requireTenant rejects reads without a tenant scope. A missing scope looks
// exactly like a missing record.
func requireTenant(tenantID uuid.UUID) error {
	if tenantID == uuid.Nil {
		return fmt.Errorf("missing tenant scope: %w", common.ErrNotFound)
	}
	return nil
}

// prepareCreate stamps ownership, identity and creation time on a new record.
// Whatever tenant the caller put on the record is overwritten.
func prepareCreate(tenantID uuid.UUID, rec models.TenantRecord, now time.Time) error {
	if tenantID == uuid.Nil {
		return fmt.Errorf("create without tenant scope: %w", common.ErrInvalidOperation)
	}
	rec.AssignTenant(tenantID)
	if rec.RecordID() == uuid.Nil {
		rec.AssignID(uuid.New())
	}
	rec.SetCreated(now)
	return nil
}

// prepareUpdate refuses cross-tenant writes and stamps the update time
func prepareUpdate(tenantID uuid.UUID, rec models.TenantRecord, now time.Time) error {
	if tenantID == uuid.Nil || rec.OwnerTenant() != tenantID {
		return fmt.Errorf("record %s is not owned by tenant %s: %w", rec.RecordID(), tenantID, common.ErrInvalidOperation)
	}
	rec.SetUpdated(now)
	return nil
}

// mapError translates driver errors into the shared error kinds
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return common.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", common.ErrConflict, pgErr.ConstraintName)
	}
	return err
}

func expectAffected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// page applies the default and maximum page size
func page(limit, offset int) (int, int) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return 50, 0
	}
	return limit, offset
}
