package commands

import (
	"context"

	"hako/internal/core/domain/model/penalty"
	"hako/internal/pkg/clock"
	"hako/internal/pkg/metrics"
)

// PurgePenaltiesCommandHandler removes penalties older than penalty.Lifetime.
type PurgePenaltiesCommandHandler struct {
	uowFactory PenaltyUoWFactory
	clock      clock.Clock
}

func NewPurgePenaltiesCommandHandler(uowFactory PenaltyUoWFactory, clk clock.Clock) PurgePenaltiesCommandHandler {
	return PurgePenaltiesCommandHandler{
		uowFactory: uowFactory,
		clock:      clk,
	}
}

// Handle returns the number of deleted penalties.
func (h *PurgePenaltiesCommandHandler) Handle(ctx context.Context, cmd PurgePenaltiesCommand) (int64, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	deleted, err := uow.PenaltyRepository().DeleteCreatedBefore(ctx, penalty.PurgeBefore(h.clock.Now()))
	if err != nil {
		return 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	metrics.PenaltiesPurgedTotal.Add(float64(deleted))
	return deleted, nil
}
