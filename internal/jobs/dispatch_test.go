package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"licenseportal/internal/common"
	"licenseportal/internal/models"
	"licenseportal/internal/services"
	"licenseportal/testhelpers"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (r *recordingEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.tasks = append(r.tasks, task)
	r.opts = append(r.opts, opts)
	return &asynq.TaskInfo{ID: uuid.NewString(), Queue: NotificationQueue}, nil
}

func optionValue(opts []asynq.Option, kind asynq.OptionType) (interface{}, bool) {
	for _, o := range opts {
		if o.Type() == kind {
			return o.Value(), true
		}
	}
	return nil, false
}

func TestAsynqDispatcher_ScheduleDispatch(t *testing.T) {
	enq := &recordingEnqueuer{}
	d := NewAsynqDispatcher(enq, zerolog.Nop())
	tenantID, id := uuid.New(), uuid.New()

	require.NoError(t, d.ScheduleDispatch(context.Background(), tenantID, id, time.Minute))
	require.Len(t, enq.tasks, 1)

	task := enq.tasks[0]
	assert.Equal(t, TypeSendRenewalNotification, task.Type())
	var p DispatchPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, DispatchPayload{TenantID: tenantID, NotificationID: id}, p)

	delay, ok := optionValue(enq.opts[0], asynq.ProcessInOpt)
	require.True(t, ok)
	assert.Equal(t, time.Minute, delay)
	queue, _ := optionValue(enq.opts[0], asynq.QueueOpt)
	assert.Equal(t, NotificationQueue, queue)
	retry, _ := optionValue(enq.opts[0], asynq.MaxRetryOpt)
	assert.Equal(t, 2, retry)
}

func TestAsynqDispatcher_EnqueueDispatchIsImmediate(t *testing.T) {
	enq := &recordingEnqueuer{}
	d := NewAsynqDispatcher(enq, zerolog.Nop())

	require.NoError(t, d.EnqueueDispatch(context.Background(), uuid.New(), uuid.New()))
	_, delayed := optionValue(enq.opts[0], asynq.ProcessInOpt)
	assert.False(t, delayed)
}

func TestAsynqDispatcher_EnqueueError(t *testing.T) {
	enq := &recordingEnqueuer{err: errors.New("redis: connection refused")}
	d := NewAsynqDispatcher(enq, zerolog.Nop())

	err := d.EnqueueDispatch(context.Background(), uuid.New(), uuid.New())
	assert.ErrorContains(t, err, "connection refused")
}

func newTestDispatchHandler(t *testing.T) (*DispatchHandler, *testhelpers.MockStore, *testhelpers.MockTransport) {
	t.Helper()
	repos, store := testhelpers.NewMockStore()
	transport := &testhelpers.MockTransport{}
	svc := services.NewNotificationService(store, transport, clockwork.NewFakeClock(), zerolog.Nop())
	return NewDispatchHandler(svc, zerolog.Nop()), repos, transport
}

func TestDispatchHandler_DeliversNotification(t *testing.T) {
	h, repos, transport := newTestDispatchHandler(t)
	ctx := context.Background()
	tenantID := uuid.New()
	user := &models.User{Base: models.Base{ID: uuid.New(), TenantID: tenantID}, Email: "holder@example.gov"}
	n := &models.Notification{Base: models.Base{ID: uuid.New(), TenantID: tenantID}, Title: "License Expired", RecipientID: user.ID}

	repos.Notifications.On("GetByID", ctx, tenantID, n.ID).Return(n, nil)
	repos.Users.On("GetByID", ctx, tenantID, user.ID).Return(user, nil)
	transport.On("Send", ctx, user, n).Return(nil)

	task, err := NewDispatchTask(tenantID, n.ID)
	require.NoError(t, err)
	require.NoError(t, h.ProcessTask(ctx, task))
	assert.False(t, n.IsRead)
	repos.AssertExpectations(t)
	transport.AssertExpectations(t)
}

func TestDispatchHandler_MissingNotificationSkipsRetry(t *testing.T) {
	h, repos, _ := newTestDispatchHandler(t)
	ctx := context.Background()
	tenantID, id := uuid.New(), uuid.New()
	repos.Notifications.On("GetByID", ctx, tenantID, id).Return(nil, common.ErrNotFound)

	task, err := NewDispatchTask(tenantID, id)
	require.NoError(t, err)
	err = h.ProcessTask(ctx, task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDispatchHandler_TransportFailureIsRetried(t *testing.T) {
	h, repos, transport := newTestDispatchHandler(t)
	ctx := context.Background()
	tenantID := uuid.New()
	user := &models.User{Base: models.Base{ID: uuid.New(), TenantID: tenantID}}
	n := &models.Notification{Base: models.Base{ID: uuid.New(), TenantID: tenantID}, Title: "x", RecipientID: user.ID}

	repos.Notifications.On("GetByID", ctx, tenantID, n.ID).Return(n, nil)
	repos.Users.On("GetByID", ctx, tenantID, user.ID).Return(user, nil)
	transport.On("Send", ctx, user, n).Return(errors.New("webhook returned status 503"))

	task, err := NewDispatchTask(tenantID, n.ID)
	require.NoError(t, err)
	err = h.ProcessTask(ctx, task)
	assert.ErrorIs(t, err, common.ErrTransport)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestDispatchHandler_MalformedPayload(t *testing.T) {
	h, _, _ := newTestDispatchHandler(t)

	err := h.ProcessTask(context.Background(), asynq.NewTask(TypeSendRenewalNotification, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = h.ProcessTask(context.Background(), asynq.NewTask(TypeSendRenewalNotification, []byte(`{}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
