package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"licenseportal/internal/common"
	"licenseportal/internal/services"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Task type definitions
const (
	TypeSendRenewalNotification = "notification:send_renewal"

	NotificationQueue = "notifications"
	// three delivery attempts in total
	dispatchMaxRetry = 2
)

// DispatchPayload defines the payload for notification delivery tasks
type DispatchPayload struct {
	TenantID       uuid.UUID `json:"tenant_id"`
	NotificationID uuid.UUID `json:"notification_id"`
}

// NewDispatchTask creates a delivery task for a stored notification
func NewDispatchTask(tenantID, notificationID uuid.UUID) (*asynq.Task, error) {
	data, err := json.Marshal(DispatchPayload{TenantID: tenantID, NotificationID: notificationID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSendRenewalNotification, data), nil
}

// Dispatcher hands stored notifications to the delivery queue.
type Dispatcher interface {
	ScheduleDispatch(ctx context.Context, tenantID, notificationID uuid.UUID, delay time.Duration) error
	EnqueueDispatch(ctx context.Context, tenantID, notificationID uuid.UUID) error
}

// taskEnqueuer is the part of *asynq.Client the dispatcher needs.
type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type AsynqDispatcher struct {
	client taskEnqueuer
	log    zerolog.Logger
}

func NewAsynqDispatcher(client taskEnqueuer, log zerolog.Logger) *AsynqDispatcher {
	return &AsynqDispatcher{client: client, log: log.With().Str("component", "dispatcher").Logger()}
}

func (d *AsynqDispatcher) ScheduleDispatch(ctx context.Context, tenantID, notificationID uuid.UUID, delay time.Duration) error {
	return d.enqueue(ctx, tenantID, notificationID, asynq.ProcessIn(delay))
}

func (d *AsynqDispatcher) EnqueueDispatch(ctx context.Context, tenantID, notificationID uuid.UUID) error {
	return d.enqueue(ctx, tenantID, notificationID)
}

func (d *AsynqDispatcher) enqueue(ctx context.Context, tenantID, notificationID uuid.UUID, extra ...asynq.Option) error {
	task, err := NewDispatchTask(tenantID, notificationID)
	if err != nil {
		return fmt.Errorf("build dispatch task: %w", err)
	}
	opts := append([]asynq.Option{asynq.Queue(NotificationQueue), asynq.MaxRetry(dispatchMaxRetry)}, extra...)
	info, err := d.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		d.log.Warn().Err(err).
			Str("tenant_id", tenantID.String()).
			Str("notification_id", notificationID.String()).
			Msg("enqueue notification dispatch failed")
		return fmt.Errorf("enqueue notification %s: %w", notificationID, err)
	}
	d.log.Debug().Str("task_id", info.ID).Str("notification_id", notificationID.String()).Msg("notification dispatch enqueued")
	return nil
}

// DispatchHandler delivers notifications pulled off the queue.
type DispatchHandler struct {
	notifications services.NotificationService
	log           zerolog.Logger
}

func NewDispatchHandler(notifications services.NotificationService, log zerolog.Logger) *DispatchHandler {
	return &DispatchHandler{notifications: notifications, log: log.With().Str("component", "dispatch").Logger()}
}

// ProcessTask implements asynq.Handler. Bad payloads and notifications
// that no longer exist are dropped without retry.
func (h *DispatchHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p DispatchPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		h.log.Error().Err(err).Msg("dispatch task payload invalid")
		return fmt.Errorf("decode dispatch payload: %w: %w", err, asynq.SkipRetry)
	}
	if p.TenantID == uuid.Nil || p.NotificationID == uuid.Nil {
		h.log.Error().Str("payload", string(t.Payload())).Msg("dispatch task missing ids")
		return fmt.Errorf("dispatch payload missing ids: %w", asynq.SkipRetry)
	}

	err := h.notifications.Send(ctx, p.TenantID, p.NotificationID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrNotFound):
		h.log.Warn().
			Str("tenant_id", p.TenantID.String()).
			Str("notification_id", p.NotificationID.String()).
			Msg("notification not found, dropping task")
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	default:
		return err
	}
}
