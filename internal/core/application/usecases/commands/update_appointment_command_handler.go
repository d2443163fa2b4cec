package commands

import (
	"context"
	"errors"

	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/domain/model/order"
	"hako/internal/core/domain/model/unit"
	"hako/internal/core/domain/services"
	"hako/internal/core/ports"
	"hako/internal/pkg/clock"
	"hako/internal/pkg/errs"

	"go.uber.org/zap"
)

// UpdateAppointmentCommandHandler reschedules appointments.
type UpdateAppointmentCommandHandler struct {
	uowFactory UoWFactory
	policy     services.ReservationPolicy
	clock      clock.Clock
	notifier   StatusNotifier
	logger     *zap.Logger
}

func NewUpdateAppointmentCommandHandler(
	uowFactory UoWFactory,
	policy services.ReservationPolicy,
	clk clock.Clock,
	notifier StatusNotifier,
	logger *zap.Logger,
) UpdateAppointmentCommandHandler {
	return UpdateAppointmentCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
		clock:      clk,
		notifier:   notifier,
		logger:     logger,
	}
}

// Handle re-runs the booking window, lead time, penalty and locker checks
// for the new slot, excluding the appointment itself, then overwrites the
// slot and the relocated lockers. Only the owner may reschedule.
func (h *UpdateAppointmentCommandHandler) Handle(ctx context.Context, cmd UpdateAppointmentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	now := h.clock.Now()
	if err := h.policy.ValidateSchedule(cmd.Date(), cmd.TimeSlot(), now); err != nil {
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
	if err = ensureActive(appt, "rescheduled"); err != nil {
		return err
	}

	previous := snapshotOf(appt)
	if err = appt.Reschedule(cmd.Date(), cmd.TimeSlot()); err != nil {
		return err
	}
	for _, r := range cmd.Relocations() {
		if err = appt.RelocateItem(r.UnitID, r.Locker); err != nil {
			return err
		}
	}

	lockers := appt.LockerNumbers()
	if err = h.policy.ValidateLockers(lockers); err != nil {
		return err
	}

	self := appt.ID()
	if err = ensureNoActivePenalty(ctx, uow.PenaltyRepository(), userID, cmd.Date(), now); err != nil {
		return err
	}
	if err = ensureNoLapsedAppointment(ctx, appointments, h.policy, userID, now, &self); err != nil {
		return err
	}
	if err = ensureLockersFree(ctx, appointments, cmd.Date(), cmd.TimeSlot(), lockers, &self); err != nil {
		return err
	}

	if len(cmd.Relocations()) > 0 {
		if err = h.relocateUnits(ctx, uow, appt, cmd.Relocations()); err != nil {
			return err
		}
	}

	if err = appointments.Update(ctx, appt); err != nil {
		return countConflict(err)
	}
	if err = uow.Commit(ctx); err != nil {
		return countConflict(err)
	}

	h.notifier.Notify(ctx, appt, previous)
	return nil
}

// relocateUnits moves the reserved units and the order line lockers to the
// new locker numbers of the relocated items.
func (h *UpdateAppointmentCommandHandler) relocateUnits(
	ctx context.Context,
	uow UoW,
	appt *appointment.Appointment,
	relocations []PickupRequest,
) error {
	orders := uow.OrderRepository()
	o, err := loadOrderLenient(ctx, h.logger, orders, appt)
	if err != nil {
		return err
	}

	units := uow.ProductUnitRepository()
	for _, r := range relocations {
		item, _ := appt.Item(r.UnitID)
		if err = h.relocateUnit(ctx, units, appt, item, o); err != nil {
			return err
		}
	}

	if o == nil {
		return nil
	}
	return orders.Update(ctx, o)
}

func (h *UpdateAppointmentCommandHandler) relocateUnit(
	ctx context.Context,
	units ports.ProductUnitRepository,
	appt *appointment.Appointment,
	item appointment.PickupItem,
	o *order.Order,
) error {
	u, err := units.GetForUpdate(ctx, item.UnitID())
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		h.logger.Warn("relocated unit not found, skipping",
			zap.String("appointment_id", appt.ID().String()),
			zap.String("unit_id", item.UnitID().String()),
		)
	case err != nil:
		return err
	case u.Status() == unit.Reserved:
		if err = u.Relocate(item.Locker()); err != nil {
			return err
		}
		if err = units.Update(ctx, u); err != nil {
			return err
		}
	}

	if o != nil {
		if err = o.Relocate(item.ProductID(), item.Locker()); err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
			return err
		}
	}
	return nil
}
