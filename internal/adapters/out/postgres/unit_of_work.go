// Package postgres provides the GORM implementation of the Unit of Work and
// the embedded schema migrations.
//
// A unit of work wraps one database transaction. Repositories obtained from it
// after Begin share that transaction, so an appointment, its units, its order
// and a penalty commit or roll back together.
//
// Usage:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer uow.Rollback(ctx)
//
//	appt, err := uow.AppointmentRepository().GetForUpdate(ctx, id)
//	// ... mutate and save units, the order and the appointment
//
//	return uow.Commit(ctx)
//
// Concurrency Considerations:
//   - Each UnitOfWork instance provides an isolated transaction
//   - Multiple goroutines should use separate UnitOfWork instances
//   - Rows read with GetForUpdate stay locked until Commit or Rollback
package postgres

import (
	"context"
	"fmt"

	"hako/internal/adapters/out/postgres/appointmentrepo"
	"hako/internal/adapters/out/postgres/orderrepo"
	"hako/internal/adapters/out/postgres/penaltyrepo"
	"hako/internal/adapters/out/postgres/unitrepo"
	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/ports"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// trackedAggregate is an aggregate written during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// GormUnitOfWorkFactory creates UnitOfWork instances using GORM database connections.
type GormUnitOfWorkFactory struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewGormUnitOfWorkFactory(db *gorm.DB, logger *zap.Logger) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db, logger: logger}
}

// Create produces a fresh unit of work with its own transaction state.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return f.CreateGorm()
}

// CreateGorm is Create with the concrete type, for callers that adapt the
// unit of work to narrower interfaces.
func (f *GormUnitOfWorkFactory) CreateGorm() *GormUnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		logger:            f.logger,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction and tracks the
// aggregates its repositories wrote.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	logger            *zap.Logger
	trackedAggregates []trackedAggregate
}

// Begin starts the transaction. Calling it twice does not nest transactions.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit returns gorm.ErrInvalidTransaction when no transaction is active.
// Tracked aggregates are logged once committed and then forgotten.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	if err == nil {
		uow.logCommitted()
	}
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

// Rollback returns gorm.ErrInvalidTransaction when no transaction is active,
// which is the case after a successful Commit.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

func (uow *GormUnitOfWork) ProductUnitRepository() ports.ProductUnitRepository {
	return unitrepo.NewGormProductUnitRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) AppointmentRepository() ports.AppointmentRepository {
	return appointmentrepo.NewGormAppointmentRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) PenaltyRepository() ports.PenaltyRepository {
	return penaltyrepo.NewGormPenaltyRepository(uow.conn(), uow)
}

// conn is the active transaction, or the plain connection before Begin.
func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// TrackAggregate registers an aggregate written by a repository.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

// TrackedIDs lists the identifiers of written aggregates in write order.
func (uow *GormUnitOfWork) TrackedIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(uow.trackedAggregates))
	for _, t := range uow.trackedAggregates {
		ids = append(ids, t.ID)
	}
	return ids
}

func (uow *GormUnitOfWork) logCommitted() {
	if uow.logger == nil || len(uow.trackedAggregates) == 0 {
		return
	}

	written := make([]string, 0, len(uow.trackedAggregates))
	for _, t := range uow.trackedAggregates {
		written = append(written, fmt.Sprintf("%T:%s", t.Aggregate, t.ID))
	}
	uow.logger.Debug("unit of work committed", zap.Strings("aggregates", written))
}
