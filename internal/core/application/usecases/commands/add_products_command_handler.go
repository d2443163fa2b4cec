package commands

import (
	"context"

	"hako/internal/core/domain/services"
	"hako/internal/pkg/clock"
	"hako/internal/pkg/errs"
)

// AddProductsCommandHandler extends an active appointment with more units.
type AddProductsCommandHandler struct {
	uowFactory UoWFactory
	policy     services.ReservationPolicy
	clock      clock.Clock
	notifier   StatusNotifier
}

func NewAddProductsCommandHandler(
	uowFactory UoWFactory,
	policy services.ReservationPolicy,
	clk clock.Clock,
	notifier StatusNotifier,
) AddProductsCommandHandler {
	return AddProductsCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
		clock:      clk,
		notifier:   notifier,
	}
}

// Handle requires the appointment to belong to the caller, to be active and
// to start at least the lead time from now. The new lockers are checked
// against other appointments of the slot, ignoring this one.
func (h *AddProductsCommandHandler) Handle(ctx context.Context, cmd AddProductsCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	now := h.clock.Now()
	lockers := requestedLockers(cmd.Items())
	if err := h.policy.ValidateLockers(lockers); err != nil {
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

	userID := cmd.Actor().UserID()
	if !appt.IsOwnedBy(userID) {
		return errs.NewAccessDeniedError("appointment", appt.ID().String())
	}
	if err = ensureActive(appt, "extended"); err != nil {
		return err
	}
	if err = h.policy.ValidateLeadTime(appt.Date(), appt.TimeSlot(), now); err != nil {
		return err
	}

	self := appt.ID()
	if err = ensureNoLapsedAppointment(ctx, appointments, h.policy, userID, now, &self); err != nil {
		return err
	}
	if err = ensureLockersFree(ctx, appointments, appt.Date(), appt.TimeSlot(), lockers, &self); err != nil {
		return err
	}

	orders := uow.OrderRepository()
	o, err := loadOrderFor(ctx, orders, appt.OrderID(), userID)
	if err != nil {
		return err
	}

	items, err := reserveUnits(ctx, uow.ProductUnitRepository(), o, userID, cmd.Items(), now)
	if err != nil {
		return err
	}
	if err = appt.AddItems(items...); err != nil {
		return err
	}

	if err = orders.Update(ctx, o); err != nil {
		return err
	}
	if err = appointments.Update(ctx, appt); err != nil {
		return countConflict(err)
	}

	if err = uow.Commit(ctx); err != nil {
		return countConflict(err)
	}

	h.notifier.Notify(ctx, appt, nil)
	return nil
}
