package ports

import (
	"context"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates
// together with their lines.
type OrderRepository interface {
	// Add persists a new order and its lines.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists status and line claims of an existing order.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by identifier.
	// Returns errs.ObjectNotFoundError when it does not exist.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate is Get with a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)
}
