package jobs

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// DispatchWorker runs the asynq server that drains the notification queue.
type DispatchWorker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
	log zerolog.Logger
}

// NewDispatchWorker creates an asynq server and registers handlers. Call Start to begin processing.
func NewDispatchWorker(redisOpt asynq.RedisConnOpt, concurrency int, handler *DispatchHandler, log zerolog.Logger) *DispatchWorker {
	log = log.With().Str("component", "dispatch-worker").Logger()
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{NotificationQueue: 1},
		Logger:      asynqLogger{log: log},
		LogLevel:    asynq.InfoLevel,
	})
	mux := asynq.NewServeMux()
	mux.Handle(TypeSendRenewalNotification, handler)
	return &DispatchWorker{srv: srv, mux: mux, log: log}
}

// Start processes tasks in the background.
func (w *DispatchWorker) Start() error {
	w.log.Info().Msg("starting notification dispatch worker")
	return w.srv.Start(w.mux)
}

func (w *DispatchWorker) Shutdown() {
	w.srv.Shutdown()
}

// asynqLogger routes asynq's internal logging through zerolog.
type asynqLogger struct {
	log zerolog.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
