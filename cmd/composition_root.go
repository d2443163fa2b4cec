package cmd

import (
	"context"
	"fmt"

	http_adapter "hako/internal/adapters/in/http"
	kafka_adapter "hako/internal/adapters/out/kafka"
	postgres_adapter "hako/internal/adapters/out/postgres"
	redis_adapter "hako/internal/adapters/out/redis"
	"hako/internal/core/application/usecases/commands"
	"hako/internal/core/application/usecases/queries"
	"hako/internal/core/domain/services"
	"hako/internal/core/ports"
	"hako/internal/jobs"
	"hako/internal/pkg/clock"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompositionRoot wires adapters, use cases and jobs together.
type CompositionRoot struct {
	configs    Config
	gormDB     *gorm.DB
	uowFactory *postgres_adapter.GormUnitOfWorkFactory
	policy     services.ReservationPolicy
	clock      clock.Clock
	notifier   commands.BestEffortNotifier
	logger     *zap.Logger
}

func NewCompositionRoot(
	configs Config,
	gormDB *gorm.DB,
	policy services.ReservationPolicy,
	sinks []ports.AppointmentStatusSink,
	logger *zap.Logger,
) CompositionRoot {
	clk := clock.SystemClock{}
	return CompositionRoot{
		configs:    configs,
		gormDB:     gormDB,
		uowFactory: postgres_adapter.NewGormUnitOfWorkFactory(gormDB, logger.With(zap.String("component", "unit_of_work"))),
		policy:     policy,
		clock:      clk,
		notifier:   commands.NewBestEffortNotifier(logger.With(zap.String("component", "status_notifier")), clk, sinks...),
		logger:     logger,
	}
}

// NewStatusSinks connects the optional status sinks. Redis is enabled by
// REDIS_ADDR and Kafka by KAFKA_BROKERS. The returned func releases them.
func NewStatusSinks(ctx context.Context, configs Config, logger *zap.Logger) ([]ports.AppointmentStatusSink, func(), error) {
	var (
		sinks   []ports.AppointmentStatusSink
		closers []func() error
	)
	closeAll := func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				logger.Warn("failed to close status sink", zap.Error(err))
			}
		}
	}

	if configs.RedisAddr != "" {
		client, err := redis_adapter.NewClient(ctx, redis_adapter.Config{
			Addr:     configs.RedisAddr,
			Password: configs.RedisPassword,
			DB:       configs.RedisDB,
			TTL:      configs.RedisTTL,
		})
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, client.Close)
		sinks = append(sinks, redis_adapter.NewOccupancyProjector(client, configs.RedisTTL, logger))
		logger.Info("redis occupancy projection enabled", zap.String("addr", configs.RedisAddr))
	}

	if len(configs.KafkaBrokers) > 0 {
		producer, err := kafka_adapter.NewSyncProducer(kafka_adapter.Config{
			Brokers: configs.KafkaBrokers,
			Topic:   configs.KafkaAppointmentTopic,
			Retries: configs.KafkaRetries,
		})
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		publisher := kafka_adapter.NewStatusPublisher(producer, configs.KafkaAppointmentTopic, logger)
		closers = append(closers, publisher.Close)
		sinks = append(sinks, publisher)
		logger.Info("kafka status events enabled", zap.Strings("brokers", configs.KafkaBrokers))
	}

	return sinks, closeAll, nil
}

func (c *CompositionRoot) CreateCreateAppointmentCommandHandler() *commands.CreateAppointmentCommandHandler {
	h := commands.NewCreateAppointmentCommandHandler(c.appointmentUoWFactory(), c.policy, c.clock, c.notifier)
	return &h
}

func (c *CompositionRoot) CreateAddProductsCommandHandler() *commands.AddProductsCommandHandler {
	h := commands.NewAddProductsCommandHandler(c.appointmentUoWFactory(), c.policy, c.clock, c.notifier)
	return &h
}

func (c *CompositionRoot) CreateUpdateAppointmentCommandHandler() *commands.UpdateAppointmentCommandHandler {
	h := commands.NewUpdateAppointmentCommandHandler(c.appointmentUoWFactory(), c.policy, c.clock, c.notifier, c.logger)
	return &h
}

func (c *CompositionRoot) CreateConfirmAppointmentCommandHandler() *commands.ConfirmAppointmentCommandHandler {
	h := commands.NewConfirmAppointmentCommandHandler(c.appointmentUoWFactory(), c.policy, c.clock, c.notifier)
	return &h
}

func (c *CompositionRoot) CreateCancelAppointmentCommandHandler() *commands.CancelAppointmentCommandHandler {
	h := commands.NewCancelAppointmentCommandHandler(c.appointmentUoWFactory(), c.clock, c.notifier, c.logger)
	return &h
}

func (c *CompositionRoot) CreateCompleteAppointmentCommandHandler() *commands.CompleteAppointmentCommandHandler {
	h := commands.NewCompleteAppointmentCommandHandler(c.appointmentUoWFactory(), c.policy, c.clock, c.notifier, c.logger)
	return &h
}

func (c *CompositionRoot) CreateExpireAppointmentsCommandHandler() *commands.ExpireAppointmentsCommandHandler {
	h := commands.NewExpireAppointmentsCommandHandler(c.appointmentUoWFactory(), c.policy, c.clock, c.notifier, c.logger)
	return &h
}

func (c *CompositionRoot) CreateRegisterPaidOrderCommandHandler() *commands.RegisterPaidOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.CreateGorm()
	})
	h := commands.NewRegisterPaidOrderCommandHandler(f, c.clock)
	return &h
}

func (c *CompositionRoot) CreatePurgePenaltiesCommandHandler() *commands.PurgePenaltiesCommandHandler {
	var f commands.PenaltyUoWFactory = FuncPenaltyUoWFactory(func() commands.PenaltyUoW {
		return c.uowFactory.CreateGorm()
	})
	h := commands.NewPurgePenaltiesCommandHandler(f, c.clock)
	return &h
}

func (c *CompositionRoot) CreatePlanLockersQueryHandler() queries.PlanLockersQueryHandler {
	return queries.NewPlanLockersQueryHandler(c.gormDB, c.policy, c.clock, c.logger)
}

func (c *CompositionRoot) CreateCheckLockerAvailabilityQueryHandler() queries.CheckLockerAvailabilityQueryHandler {
	return queries.NewCheckLockerAvailabilityQueryHandler(c.gormDB, c.policy)
}

func (c *CompositionRoot) CreateGetUserAppointmentsQueryHandler() queries.GetUserAppointmentsQueryHandler {
	return queries.NewGetUserAppointmentsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAppointmentQueryHandler() queries.GetAppointmentQueryHandler {
	return queries.NewGetAppointmentQueryHandler(c.gormDB)
}

// CreateServer builds the HTTP server over every use case.
func (c *CompositionRoot) CreateServer() *http_adapter.Server {
	return http_adapter.NewServer(http_adapter.Handlers{
		CreateAppointment:   c.CreateCreateAppointmentCommandHandler(),
		AddProducts:         c.CreateAddProductsCommandHandler(),
		UpdateAppointment:   c.CreateUpdateAppointmentCommandHandler(),
		ConfirmAppointment:  c.CreateConfirmAppointmentCommandHandler(),
		CancelAppointment:   c.CreateCancelAppointmentCommandHandler(),
		CompleteAppointment: c.CreateCompleteAppointmentCommandHandler(),
		RegisterPaidOrder:   c.CreateRegisterPaidOrderCommandHandler(),
		PurgePenalties:      c.CreatePurgePenaltiesCommandHandler(),

		PlanLockers:             c.CreatePlanLockersQueryHandler(),
		CheckLockerAvailability: c.CreateCheckLockerAvailabilityQueryHandler(),
		GetUserAppointments:     c.CreateGetUserAppointmentsQueryHandler(),
		GetAppointment:          c.CreateGetAppointmentQueryHandler(),
	}, c.logger)
}

// CreateJobManager schedules the expiry sweep and the penalty purge.
func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	manager, err := jobs.NewJobManager(
		jobs.Schedules{Expiry: c.configs.ExpirySchedule, PenaltyPurge: c.configs.PenaltyPurgeSchedule},
		c.CreateExpireAppointmentsCommandHandler(),
		c.CreatePurgePenaltiesCommandHandler(),
		c.logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create job manager: %w", err)
	}
	return manager, nil
}

func (c *CompositionRoot) appointmentUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.CreateGorm()
	})
}

type FuncPenaltyUoWFactory func() commands.PenaltyUoW

func (f FuncPenaltyUoWFactory) Create() commands.PenaltyUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
