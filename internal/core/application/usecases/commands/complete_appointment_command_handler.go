package commands

import (
	"context"
	"errors"
	"fmt"

	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/domain/model/order"
	"hako/internal/core/domain/model/unit"
	"hako/internal/core/domain/services"
	"hako/internal/core/ports"
	"hako/internal/pkg/clock"
	"hako/internal/pkg/errs"

	"go.uber.org/zap"
)

// CompleteAppointmentCommandHandler records a pickup. Units become picked up
// and the order closes once no other active appointment collects from it and
// none of its units is still waiting for a booking.
type CompleteAppointmentCommandHandler struct {
	uowFactory UoWFactory
	policy     services.ReservationPolicy
	clock      clock.Clock
	notifier   StatusNotifier
	logger     *zap.Logger
}

func NewCompleteAppointmentCommandHandler(
	uowFactory UoWFactory,
	policy services.ReservationPolicy,
	clk clock.Clock,
	notifier StatusNotifier,
	logger *zap.Logger,
) CompleteAppointmentCommandHandler {
	return CompleteAppointmentCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
		clock:      clk,
		notifier:   notifier,
		logger:     logger,
	}
}

// Handle lets administrators complete appointments of past days; other
// callers are limited to today and later.
func (h *CompleteAppointmentCommandHandler) Handle(ctx context.Context, cmd CompleteAppointmentCommand) error {
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

	now := h.clock.Now()
	if !cmd.Actor().IsAdmin() && h.policy.IsBeforeToday(appt, now) {
		return errs.NewRuleViolatedErrorWithCause(
			"appointment_in_past",
			fmt.Errorf("appointment of %s can only be completed by an administrator", appt.Date()),
		)
	}

	previous := snapshotOf(appt)
	if err = appt.Complete(now); err != nil {
		return err
	}

	orders := uow.OrderRepository()
	o, err := loadOrderLenient(ctx, h.logger, orders, appt)
	if err != nil {
		return err
	}

	err = settleItems(ctx, h.logger, "complete", uow.ProductUnitRepository(), o, appt, func(u *unit.ProductUnit) (bool, error) {
		return true, u.PickUp(now)
	})
	if err != nil {
		return err
	}

	if o != nil {
		if err = h.closeOrderIfDone(ctx, appointments, uow.ProductUnitRepository(), o, appt); err != nil {
			return err
		}
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

// closeOrderIfDone marks the order picked up when the completed appointment
// was the last active one collecting from it and no unit of the order is
// left to book.
func (h *CompleteAppointmentCommandHandler) closeOrderIfDone(
	ctx context.Context,
	appointments ports.AppointmentRepository,
	units ports.ProductUnitRepository,
	o *order.Order,
	completed *appointment.Appointment,
) error {
	active, err := appointments.FindActiveByOrder(ctx, o.ID())
	if err != nil {
		return err
	}
	for _, a := range active {
		if !a.ID().IsEqual(completed.ID()) {
			return nil
		}
	}

	_, err = units.FindFirstForUpdate(ctx, ports.UnitFilter{OrderID: o.ID(), Status: unit.Available})
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, errs.ErrObjectNotFound):
		return err
	}

	if o.Status() != order.ReadyForPickup {
		h.logger.Warn("order not ready for pickup, leaving its status",
			zap.String("order_id", o.ID().String()),
			zap.String("status", o.Status().String()),
		)
		return nil
	}
	return o.MarkPickedUp()
}
