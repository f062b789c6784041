package repositories

import (
	"context"
	"fmt"

	"licenseportal/internal/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type NotificationRepository interface {
	Create(ctx context.Context, tenantID uuid.UUID, n *models.Notification) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Notification, error)
	ListForRecipient(ctx context.Context, tenantID, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*models.Notification, error)
	// Update writes the read flag only; the rest of a notification is immutable.
	Update(ctx context.Context, tenantID uuid.UUID, n *models.Notification) error
}

type notificationRepo struct {
	db    DB
	clock clockwork.Clock
}

func NewNotificationRepo(db DB, clock clockwork.Clock) NotificationRepository {
	return &notificationRepo{db: db, clock: clock}
}

const notificationColumns = `id, tenant_id, title, message, type, recipient_id, entity_reference, is_read, read_at, created_at, updated_at`

func scanNotification(row scanner) (*models.Notification, error) {
	n := &models.Notification{}
	err := row.Scan(&n.ID, &n.TenantID, &n.Title, &n.Message, &n.Type, &n.RecipientID, &n.EntityReference,
		&n.IsRead, &n.ReadAt, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return n, nil
}

func (r *notificationRepo) Create(ctx context.Context, tenantID uuid.UUID, n *models.Notification) error {
	if err := prepareCreate(tenantID, n, r.clock.Now()); err != nil {
		return err
	}
	query := `
		INSERT INTO notifications (id, tenant_id, title, message, type, recipient_id, entity_reference, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query, n.ID, n.TenantID, n.Title, n.Message, n.Type, n.RecipientID,
		n.EntityReference, n.IsRead, n.CreatedAt)
	return mapError(err)
}

func (r *notificationRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Notification, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE tenant_id = $1 AND id = $2`
	n, err := scanNotification(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, fmt.Errorf("notification %s: %w", id, err)
	}
	return n, nil
}

func (r *notificationRepo) ListForRecipient(ctx context.Context, tenantID, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	limit, offset = page(limit, offset)
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE tenant_id = $1 AND recipient_id = $2 AND ($3::boolean = FALSE OR is_read = FALSE)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.Query(ctx, query, tenantID, recipientID, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *notificationRepo) Update(ctx context.Context, tenantID uuid.UUID, n *models.Notification) error {
	if err := prepareUpdate(tenantID, n, r.clock.Now()); err != nil {
		return err
	}
	query := `
		UPDATE notifications
		SET is_read = $3, read_at = $4, updated_at = $5
		WHERE tenant_id = $1 AND id = $2
	`
	tag, err := r.db.Exec(ctx, query, tenantID, n.ID, n.IsRead, n.ReadAt, n.UpdatedAt)
	return expectAffected(tag, err)
}
