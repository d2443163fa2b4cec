// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"hako/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// UnitRepoFactory provides access to product units within a transaction.
	UnitRepoFactory interface {
		ProductUnitRepository() ports.ProductUnitRepository
	}

	// AppointmentRepoFactory provides access to appointments within a transaction.
	AppointmentRepoFactory interface {
		AppointmentRepository() ports.AppointmentRepository
	}

	// OrderRepoFactory provides access to orders within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// PenaltyRepoFactory provides access to penalties within a transaction.
	PenaltyRepoFactory interface {
		PenaltyRepository() ports.PenaltyRepository
	}

	// PenaltyUoW manages transactions that only touch penalties.
	PenaltyUoW interface {
		TxManager
		PenaltyRepoFactory
	}

	// PenaltyUoWFactory creates new penalty unit of work instances.
	PenaltyUoWFactory interface {
		Create() PenaltyUoW
	}

	// OrderUoW manages transactions that register orders and their units.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
		UnitRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// UoW manages transactions across appointments, units, orders and penalties.
	// Every appointment transition uses it so that the appointment, its units
	// and the order bookkeeping commit or roll back together.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   appt, err := uow.AppointmentRepository().GetForUpdate(ctx, id)
	//   // ... mutate units and the order
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		UnitRepoFactory
		AppointmentRepoFactory
		OrderRepoFactory
		PenaltyRepoFactory
	}

	// UoWFactory creates new unit of work instances for appointment operations.
	UoWFactory interface {
		Create() UoW
	}
)
