package commands

import (
	"context"
	"fmt"

	"hako/internal/core/domain/services"
	"hako/internal/pkg/clock"
	"hako/internal/pkg/errs"
)

// ConfirmAppointmentCommandHandler moves appointments from scheduled to confirmed.
type ConfirmAppointmentCommandHandler struct {
	uowFactory UoWFactory
	policy     services.ReservationPolicy
	clock      clock.Clock
	notifier   StatusNotifier
}

func NewConfirmAppointmentCommandHandler(
	uowFactory UoWFactory,
	policy services.ReservationPolicy,
	clk clock.Clock,
	notifier StatusNotifier,
) ConfirmAppointmentCommandHandler {
	return ConfirmAppointmentCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
		clock:      clk,
		notifier:   notifier,
	}
}

func (h *ConfirmAppointmentCommandHandler) Handle(ctx context.Context, cmd ConfirmAppointmentCommand) error {
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
	if h.policy.IsLapsed(appt, now) {
		return errs.NewRuleViolatedErrorWithCause(
			"lapsed_appointment",
			fmt.Errorf("slot %s %s is over", appt.Date(), appt.TimeSlot()),
		)
	}
	if err = appt.Confirm(now); err != nil {
		return err
	}

	if err = appointments.Update(ctx, appt); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	countTransition(appt)
	h.notifier.Notify(ctx, appt, nil)
	return nil
}
