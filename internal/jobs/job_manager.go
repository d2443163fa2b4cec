package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Schedules are six-field cron expressions (with seconds).
type Schedules struct {
	Expiry       string
	PenaltyPurge string
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewJobManager registers every job on one scheduler. An invalid schedule is
// reported here rather than at start.
func NewJobManager(
	schedules Schedules,
	expiryHandler ExpiryHandler,
	purgeHandler PurgeHandler,
	logger *zap.Logger,
) (*JobManager, error) {
	managerLogger := logger.With(zap.String("component", "job_manager"))
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.Recover(cronLogger{managerLogger}), cron.SkipIfStillRunning(cronLogger{managerLogger})),
	)

	if err := NewAppointmentExpiryJob(expiryHandler, schedules.Expiry, logger).Register(c); err != nil {
		return nil, fmt.Errorf("failed to schedule appointment expiry job %q: %w", schedules.Expiry, err)
	}
	if err := NewPenaltyPurgeJob(purgeHandler, schedules.PenaltyPurge, logger).Register(c); err != nil {
		return nil, fmt.Errorf("failed to schedule penalty purge job %q: %w", schedules.PenaltyPurge, err)
	}

	return &JobManager{cron: c, logger: managerLogger}, nil
}

// StartAll starts the scheduler in its own goroutine.
func (jm *JobManager) StartAll() {
	jm.cron.Start()
	jm.logger.Info("scheduled jobs started", zap.Int("jobs", len(jm.cron.Entries())))
}

// StopAll stops scheduling and waits for running jobs until ctx is done.
func (jm *JobManager) StopAll(ctx context.Context) {
	select {
	case <-jm.cron.Stop().Done():
		jm.logger.Info("scheduled jobs stopped")
	case <-ctx.Done():
		jm.logger.Warn("scheduled jobs still running at shutdown", zap.Error(ctx.Err()))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
