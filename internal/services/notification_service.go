package services

import (
	"context"
	"fmt"

	"licenseportal/internal/common"
	"licenseportal/internal/models"
	"licenseportal/internal/repositories"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// NotificationService owns the inbox records and their delivery
type NotificationService interface {
	Create(ctx context.Context, tenantID uuid.UUID, n *models.Notification) error
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Notification, error)
	ListForRecipient(ctx context.Context, tenantID, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, tenantID, id, recipientID uuid.UUID) (*models.Notification, error)
	// Send delivers a stored notification through the transport. The read
	// flag is left untouched.
	Send(ctx context.Context, tenantID, id uuid.UUID) error
}

type notificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	transport     NotificationTransport
	clock         clockwork.Clock
	log           zerolog.Logger
}

func NewNotificationService(store *repositories.Store, transport NotificationTransport, clock clockwork.Clock, log zerolog.Logger) NotificationService {
	return &notificationService{
		notifications: store.Notifications,
		users:         store.Users,
		transport:     transport,
		clock:         clock,
		log:           log.With().Str("component", "notifications").Logger(),
	}
}

func (s *notificationService) Create(ctx context.Context, tenantID uuid.UUID, n *models.Notification) error {
	if n.RecipientID == uuid.Nil || n.Title == "" {
		return fmt.Errorf("%w: notification needs a recipient and a title", common.ErrValidation)
	}
	if n.Type == "" {
		n.Type = models.NotificationTypeInfo
	}
	n.IsRead = false
	n.ReadAt = nil
	return s.notifications.Create(ctx, tenantID, n)
}

func (s *notificationService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Notification, error) {
	return s.notifications.GetByID(ctx, tenantID, id)
}

func (s *notificationService) ListForRecipient(ctx context.Context, tenantID, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	return s.notifications.ListForRecipient(ctx, tenantID, recipientID, unreadOnly, limit, offset)
}

// MarkRead only succeeds for the recipient; anyone else sees NotFound.
func (s *notificationService) MarkRead(ctx context.Context, tenantID, id, recipientID uuid.UUID) (*models.Notification, error) {
	n, err := s.notifications.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if n.RecipientID != recipientID {
		return nil, fmt.Errorf("notification %s: %w", id, common.ErrNotFound)
	}
	if n.IsRead {
		return n, nil
	}
	now := s.clock.Now()
	n.IsRead = true
	n.ReadAt = &now
	if err := s.notifications.Update(ctx, tenantID, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *notificationService) Send(ctx context.Context, tenantID, id uuid.UUID) error {
	n, err := s.notifications.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	recipient, err := s.users.GetByID(ctx, tenantID, n.RecipientID)
	if err != nil {
		return fmt.Errorf("recipient of notification %s: %w", id, err)
	}
	if err := s.transport.Send(ctx, recipient, n); err != nil {
		s.log.Warn().Err(err).
			Str("tenant_id", tenantID.String()).
			Str("notification_id", id.String()).
			Msg("notification delivery failed")
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	s.log.Info().
		Str("tenant_id", tenantID.String()).
		Str("notification_id", id.String()).
		Str("type", string(n.Type)).
		Msg("notification delivered")
	return nil
}
