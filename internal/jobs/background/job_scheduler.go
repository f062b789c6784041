package background

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"licenseportal/internal/common"
	"licenseportal/internal/config"
	"licenseportal/internal/jobs"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Run names, also used in lock keys and the admin job endpoint.
const (
	RunCheckExpiring = "check-expiring-licenses"
	RunAutoRenew     = "auto-renew-licenses"
)

// ErrRunInProgress is returned by RunNow when another instance holds the run lock.
var ErrRunInProgress = fmt.Errorf("%w: scan already running", common.ErrConflict)

// Scanner is the work the scheduler triggers.
type Scanner interface {
	CheckExpiringLicenses(ctx context.Context) (*jobs.ScanResult, error)
	AutoRenewLicenses(ctx context.Context) (*jobs.ScanResult, error)
}

type runFunc func(ctx context.Context) (*jobs.ScanResult, error)

// RunStatus records the outcome of the most recent execution of a run.
type RunStatus struct {
	Name       string           `json:"name"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Attempts   int              `json:"attempts"`
	Skipped    bool             `json:"skipped"`
	Result     *jobs.ScanResult `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
}

type JobInfo struct {
	Name    string     `json:"name"`
	NextRun *time.Time `json:"next_run,omitempty"`
	LastRun *RunStatus `json:"last_run,omitempty"`
}

// JobScheduler triggers the renewal scans once a day. Each run takes a
// per-day lock so only one instance executes it, and is retried a bounded
// number of times before being abandoned until the next trigger.
type JobScheduler struct {
	scheduler gocron.Scheduler
	locker    jobs.RunLocker
	clock     clockwork.Clock
	cfg       config.SchedulerConfig
	log       zerolog.Logger
	runs      map[string]runFunc
	scheduled map[string]gocron.Job
	lastRuns  map[string]*RunStatus
	mu        sync.RWMutex
}

// NewJobScheduler creates the scheduler and registers the daily scans.
func NewJobScheduler(scanner Scanner, locker jobs.RunLocker, clock clockwork.Clock, cfg config.SchedulerConfig, log zerolog.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithClock(clock),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		locker:    locker,
		clock:     clock,
		cfg:       cfg,
		log:       log.With().Str("component", "scheduler").Logger(),
		runs: map[string]runFunc{
			RunCheckExpiring: scanner.CheckExpiringLicenses,
			RunAutoRenew:     scanner.AutoRenewLicenses,
		},
		scheduled: make(map[string]gocron.Job),
		lastRuns:  make(map[string]*RunStatus),
	}

	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.log.Info().Int("jobs", len(js.scheduled)).Msg("starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	js.log.Info().Msg("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	at := map[string]string{
		RunCheckExpiring: js.cfg.CheckExpiringAt,
		RunAutoRenew:     js.cfg.AutoRenewAt,
	}
	for _, name := range []string{RunCheckExpiring, RunAutoRenew} {
		tod, err := config.ParseClock(at[name])
		if err != nil {
			return fmt.Errorf("schedule %s: %w", name, err)
		}
		runName := name
		job, err := js.scheduler.NewJob(
			gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(tod.Hour, tod.Minute, 0))),
			gocron.NewTask(func() {
				_, _ = js.execute(context.Background(), runName)
			}),
			gocron.WithName(runName),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("schedule %s: %w", name, err)
		}
		js.scheduled[name] = job
	}
	js.log.Info().Int("jobs", len(js.scheduled)).Msg("registered background jobs")
	return nil
}

// RunNow executes a run immediately under the same lock and retry policy as
// the scheduled trigger.
func (js *JobScheduler) RunNow(ctx context.Context, name string) (*RunStatus, error) {
	if _, ok := js.runs[name]; !ok {
		return nil, fmt.Errorf("job %q: %w", name, common.ErrNotFound)
	}
	return js.execute(ctx, name)
}

func (js *JobScheduler) execute(ctx context.Context, name string) (*RunStatus, error) {
	run := js.runs[name]
	status := &RunStatus{Name: name, StartedAt: js.clock.Now()}
	logger := js.log.With().Str("run", name).Logger()
	defer js.record(status)

	key := LockKey(name, status.StartedAt)
	unlock, acquired, err := js.locker.TryLock(ctx, key, js.cfg.LockTTL)
	if err != nil {
		status.FinishedAt = js.clock.Now()
		status.Error = err.Error()
		logger.Error().Err(err).Str("lock_key", key).Msg("could not acquire run lock")
		return status, err
	}
	if !acquired {
		status.FinishedAt = js.clock.Now()
		status.Skipped = true
		logger.Info().Str("lock_key", key).Msg("run already in progress elsewhere, skipping")
		return status, ErrRunInProgress
	}
	defer func() {
		if err := unlock(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("release run lock")
		}
	}()

	maxAttempts := js.cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		status.Attempts = attempt
		result, err := run(ctx)
		if err == nil {
			status.Result = result
			status.FinishedAt = js.clock.Now()
			logger.Info().Int("attempt", attempt).Stringer("result", result).Msg("run completed")
			return status, nil
		}
		lastErr = err
		logger.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", maxAttempts).Msg("run failed")

		if attempt < maxAttempts {
			if err := js.wait(ctx); err != nil {
				lastErr = errors.Join(lastErr, err)
				break
			}
		}
	}

	status.FinishedAt = js.clock.Now()
	status.Error = lastErr.Error()
	logger.Error().Err(lastErr).Int("attempts", status.Attempts).Msg("run abandoned until next trigger")
	return status, lastErr
}

func (js *JobScheduler) wait(ctx context.Context) error {
	if js.cfg.RetryDelay <= 0 {
		return nil
	}
	select {
	case <-js.clock.After(js.cfg.RetryDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (js *JobScheduler) record(status *RunStatus) {
	js.mu.Lock()
	defer js.mu.Unlock()
	js.lastRuns[status.Name] = status
}

// JobStatus returns information about scheduled jobs
func (js *JobScheduler) JobStatus() []JobInfo {
	js.mu.RLock()
	defer js.mu.RUnlock()

	infos := make([]JobInfo, 0, len(js.runs))
	for name := range js.runs {
		info := JobInfo{Name: name}
		if job, ok := js.scheduled[name]; ok {
			if next, err := job.NextRun(); err == nil && !next.IsZero() {
				info.NextRun = &next
			}
		}
		if last, ok := js.lastRuns[name]; ok {
			copied := *last
			info.LastRun = &copied
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// LockKey is the per-day lock taken by a run.
func LockKey(name string, at time.Time) string {
	return fmt.Sprintf("lock:renewal-scan:%s:%s", name, at.UTC().Format(time.DateOnly))
}
