package commands

import (
	"context"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/order"
	"hako/internal/core/domain/model/unit"
	"hako/internal/pkg/clock"
	"hako/internal/pkg/errs"
)

// RegisterPaidOrderCommandHandler stores a paid order and creates one
// available product unit per purchased quantity.
type RegisterPaidOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      clock.Clock
}

func NewRegisterPaidOrderCommandHandler(uowFactory OrderUoWFactory, clk clock.Clock) RegisterPaidOrderCommandHandler {
	return RegisterPaidOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clk,
	}
}

// Handle is restricted to administrators, the shop's integration identity.
func (h *RegisterPaidOrderCommandHandler) Handle(ctx context.Context, cmd RegisterPaidOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if !cmd.Actor().IsAdmin() {
		return errs.NewAccessDeniedError("order", cmd.OrderID().String())
	}

	paid := cmd.Lines()
	lines := make([]order.Line, 0, len(paid))
	for _, l := range paid {
		line, err := order.NewLine(l.ProductID, l.Quantity)
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}

	o, err := order.NewOrder(cmd.OrderID(), cmd.UserID(), lines)
	if err != nil {
		return err
	}
	if err = o.MarkPaid(h.clock.Now()); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	units := uow.ProductUnitRepository()
	for _, l := range paid {
		for range l.Quantity {
			u, unitErr := unit.NewProductUnit(
				kernel.NewUUID(), cmd.UserID(), cmd.OrderID(), l.ProductID, l.Variant, l.UnitDimensions(),
			)
			if unitErr != nil {
				return unitErr
			}
			if err = units.Add(ctx, u); err != nil {
				return err
			}
		}
	}

	return uow.Commit(ctx)
}
