package ports

import (
	"context"
	"time"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/penalty"
)

// PenaltyRepository defines the persistence contract for no-show penalties.
type PenaltyRepository interface {
	Add(ctx context.Context, p *penalty.Penalty) error

	// FindByUserAndDate returns the user's penalties for date created after since.
	FindByUserAndDate(ctx context.Context, userID kernel.UUID, date kernel.Date, since time.Time) ([]*penalty.Penalty, error)

	// DeleteCreatedBefore removes penalties created at or before cutoff and
	// returns how many were removed.
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
