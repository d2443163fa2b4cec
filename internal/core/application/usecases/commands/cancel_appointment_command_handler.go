package commands

import (
	"context"

	"hako/internal/pkg/clock"
	"hako/internal/pkg/errs"

	"go.uber.org/zap"
)

// CancelAppointmentCommandHandler cancels active appointments. Reserved units
// go back to available and the order claims are released.
type CancelAppointmentCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
	notifier   StatusNotifier
	logger     *zap.Logger
}

func NewCancelAppointmentCommandHandler(
	uowFactory UoWFactory,
	clk clock.Clock,
	notifier StatusNotifier,
	logger *zap.Logger,
) CancelAppointmentCommandHandler {
	return CancelAppointmentCommandHandler{
		uowFactory: uowFactory,
		clock:      clk,
		notifier:   notifier,
		logger:     logger,
	}
}

// Handle rejects a second cancel before any unit is touched. Cancelling a
// lapsed appointment is allowed.
func (h *CancelAppointmentCommandHandler) Handle(ctx context.Context, cmd CancelAppointmentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	appointments := uow.AppointmentRepository()
	appt, err := appointments.GetForUpdate(ctx, cmd.AppointmentID())
	if err != nil {
		return err
	}
	if !cmd.Actor().CanAccess(appt.UserID()) {
		return errs.NewAccessDeniedError("appointment", appt.ID().String())
	}

	previous := snapshotOf(appt)
	if err = appt.Cancel(h.clock.Now(), cmd.Actor().Role()); err != nil {
		return err
	}

	orders := uow.OrderRepository()
	o, err := loadOrderLenient(ctx, h.logger, orders, appt)
	if err != nil {
		return err
	}

	if err = settleItems(ctx, h.logger, "cancel", uow.ProductUnitRepository(), o, appt, releaseUnit); err != nil {
		return err
	}

	if o != nil {
		if err = orders.Update(ctx, o); err != nil {
			return err
		}
	}
	if err = appointments.Update(ctx, appt); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	countTransition(appt)
	h.notifier.Notify(ctx, appt, previous)
	return nil
}
