package jobs

import (
	"context"
	"time"

	"hako/internal/core/application/usecases/commands"
	"hako/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ExpiryHandler runs one expiry sweep and reports how many appointments it closed.
type ExpiryHandler interface {
	Handle(ctx context.Context, cmd commands.ExpireAppointmentsCommand) (int, error)
}

// AppointmentExpiryJob periodically closes appointments whose slot passed
// without a pickup.
type AppointmentExpiryJob struct {
	handler  ExpiryHandler
	schedule string
	timeout  time.Duration
	logger   *zap.Logger
}

func NewAppointmentExpiryJob(handler ExpiryHandler, schedule string, logger *zap.Logger) *AppointmentExpiryJob {
	return &AppointmentExpiryJob{
		handler:  handler,
		schedule: schedule,
		timeout:  time.Minute,
		logger:   logger.With(zap.String("component", "appointment_expiry_job")),
	}
}

// Register adds the job to c.
func (j *AppointmentExpiryJob) Register(c *cron.Cron) error {
	_, err := c.AddFunc(j.schedule, func() {
		j.Run(context.Background())
	})
	return err
}

// Run performs one sweep.
func (j *AppointmentExpiryJob) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	expired, err := j.handler.Handle(ctx, commands.NewExpireAppointmentsCommand())
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("expire_appointments").Inc()
		j.logger.Error("appointment expiry sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		j.logger.Info("lapsed appointments expired", zap.Int("count", expired))
	}
}
