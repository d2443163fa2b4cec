package commands

import (
	"context"

	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/domain/services"
	"hako/internal/pkg/clock"
	"hako/internal/pkg/metrics"
)

// CreateAppointmentCommandHandler books appointments. Units, order claims,
// the appointment and its locker claims are written in one transaction.
type CreateAppointmentCommandHandler struct {
	uowFactory UoWFactory
	policy     services.ReservationPolicy
	clock      clock.Clock
	notifier   StatusNotifier
}

func NewCreateAppointmentCommandHandler(
	uowFactory UoWFactory,
	policy services.ReservationPolicy,
	clk clock.Clock,
	notifier StatusNotifier,
) CreateAppointmentCommandHandler {
	return CreateAppointmentCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
		clock:      clk,
		notifier:   notifier,
	}
}

// Handle validates every booking rule before touching any state:
// booking window, lead time, locker range, active penalty, lapsed
// appointments and locker availability. Then it reserves the units.
func (h *CreateAppointmentCommandHandler) Handle(ctx context.Context, cmd CreateAppointmentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	now := h.clock.Now()
	lockers := requestedLockers(cmd.Items())
	if err := h.policy.ValidateSchedule(cmd.Date(), cmd.TimeSlot(), now); err != nil {
		return err
	}
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

	userID := cmd.Actor().UserID()
	appointments := uow.AppointmentRepository()

	if err := ensureNoActivePenalty(ctx, uow.PenaltyRepository(), userID, cmd.Date(), now); err != nil {
		return err
	}
	if err := ensureNoLapsedAppointment(ctx, appointments, h.policy, userID, now, nil); err != nil {
		return err
	}
	if err := ensureLockersFree(ctx, appointments, cmd.Date(), cmd.TimeSlot(), lockers, nil); err != nil {
		return err
	}

	orders := uow.OrderRepository()
	o, err := loadOrderFor(ctx, orders, cmd.OrderID(), userID)
	if err != nil {
		return err
	}

	items, err := reserveUnits(ctx, uow.ProductUnitRepository(), o, userID, cmd.Items(), now)
	if err != nil {
		return err
	}

	if err = o.PrepareForPickup(); err != nil {
		return err
	}
	if err = orders.Update(ctx, o); err != nil {
		return err
	}

	appt, err := appointment.NewAppointment(
		cmd.AppointmentID(), userID, cmd.OrderID(), cmd.Date(), cmd.TimeSlot(), items, now,
	)
	if err != nil {
		return err
	}
	if err = appointments.Add(ctx, appt); err != nil {
		return countConflict(err)
	}

	if err = uow.Commit(ctx); err != nil {
		return countConflict(err)
	}

	metrics.AppointmentsCreatedTotal.Inc()
	countTransition(appt)
	h.notifier.Notify(ctx, appt, nil)
	return nil
}
