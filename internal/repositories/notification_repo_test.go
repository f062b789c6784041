package repositories

import (
	"context"
	"testing"
	"time"

	"licenseportal/internal/common"
	"licenseportal/internal/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var notificationCols = []string{"id", "tenant_id", "title", "message", "type", "recipient_id", "entity_reference",
	"is_read", "read_at", "created_at", "updated_at"}

func TestNotificationRepo_CreateAndMarkRead(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	clock := clockwork.NewFakeClockAt(time.Date(2026, 6, 1, 2, 0, 0, 0, time.UTC))
	repo := NewNotificationRepo(mock, clock)
	tenantID := uuid.New()
	ref := "License:HEALTH-2026-12345"
	n := &models.Notification{
		Title:           "License Expiring in 30 Days",
		Message:         "body",
		Type:            models.NotificationTypeReminder,
		RecipientID:     uuid.New(),
		EntityReference: &ref,
	}

	mock.ExpectExec(`INSERT INTO notifications`).
		WithArgs(pgxmock.AnyArg(), tenantID, n.Title, n.Message, n.Type, n.RecipientID, &ref, false, clock.Now()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Create(context.Background(), tenantID, n))

	readAt := clock.Now()
	n.IsRead = true
	n.ReadAt = &readAt
	mock.ExpectExec(`UPDATE notifications\s+SET is_read = \$3, read_at = \$4, updated_at = \$5`).
		WithArgs(tenantID, n.ID, true, &readAt, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.Update(context.Background(), tenantID, n))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepo_ListForRecipient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationRepo(mock, clockwork.NewFakeClock())
	tenantID, recipient := uuid.New(), uuid.New()
	created := time.Date(2026, 6, 1, 2, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM notifications\s+WHERE tenant_id = \$1 AND recipient_id = \$2`).
		WithArgs(tenantID, recipient, true, 50, 0).
		WillReturnRows(pgxmock.NewRows(notificationCols).
			AddRow(uuid.New(), tenantID, "License Expired", "msg", models.NotificationTypeCritical, recipient,
				(*string)(nil), false, (*time.Time)(nil), created, (*time.Time)(nil)))

	got, err := repo.ListForRecipient(context.Background(), tenantID, recipient, true, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationTypeCritical, got[0].Type)
	assert.False(t, got[0].IsRead)
}

func TestNotificationRepo_GetByID_MissingTenant(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationRepo(mock, clockwork.NewFakeClock())
	_, err = repo.GetByID(context.Background(), uuid.Nil, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
