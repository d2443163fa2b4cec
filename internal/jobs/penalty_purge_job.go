package jobs

import (
	"context"
	"time"

	"hako/internal/core/application/usecases/commands"
	"hako/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PurgeHandler deletes expired penalties and reports how many were removed.
type PurgeHandler interface {
	Handle(ctx context.Context, cmd commands.PurgePenaltiesCommand) (int64, error)
}

// PenaltyPurgeJob periodically deletes penalties that no longer block bookings.
type PenaltyPurgeJob struct {
	handler  PurgeHandler
	schedule string
	timeout  time.Duration
	logger   *zap.Logger
}

func NewPenaltyPurgeJob(handler PurgeHandler, schedule string, logger *zap.Logger) *PenaltyPurgeJob {
	return &PenaltyPurgeJob{
		handler:  handler,
		schedule: schedule,
		timeout:  time.Minute,
		logger:   logger.With(zap.String("component", "penalty_purge_job")),
	}
}

func (j *PenaltyPurgeJob) Register(c *cron.Cron) error {
	_, err := c.AddFunc(j.schedule, func() {
		j.Run(context.Background())
	})
	return err
}

func (j *PenaltyPurgeJob) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	purged, err := j.handler.Handle(ctx, commands.NewPurgePenaltiesCommand())
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("purge_penalties").Inc()
		j.logger.Error("penalty purge failed", zap.Error(err))
		return
	}
	j.logger.Debug("expired penalties purged", zap.Int64("count", purged))
}
