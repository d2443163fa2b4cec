// Package ports defines the contracts between the pickup domain and its
// infrastructure: repositories, the unit of work, and status sinks.
package ports

import (
	"context"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/unit"
)

// UnitFilter selects product units by attribute. Zero fields are ignored.
type UnitFilter struct {
	OwnerID   kernel.UUID
	OrderID   kernel.UUID
	ProductID kernel.UUID
	Status    unit.Status
	Locker    *int
}

// ProductUnitRepository defines the persistence contract for product units.
type ProductUnitRepository interface {
	// Add persists a new unit.
	Add(ctx context.Context, u *unit.ProductUnit) error

	// Update persists status, locker and timestamps of an existing unit.
	Update(ctx context.Context, u *unit.ProductUnit) error

	// Get retrieves a unit by identifier.
	// Returns errs.ObjectNotFoundError when it does not exist.
	Get(ctx context.Context, id kernel.UUID) (*unit.ProductUnit, error)

	// GetForUpdate is Get with a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*unit.ProductUnit, error)

	// FindFirstForUpdate locks and returns the oldest unit matching filter.
	// Returns errs.ObjectNotFoundError when none matches.
	FindFirstForUpdate(ctx context.Context, filter UnitFilter) (*unit.ProductUnit, error)
}
