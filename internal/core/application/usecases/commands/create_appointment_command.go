package commands

import (
	"errors"
	"slices"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"
	"hako/internal/pkg/guard"
)

var (
	ErrCreateAppointmentCommandIsNotConstructed = errors.New(
		"CreateAppointmentCommand must be created via NewCreateAppointmentCommand constructor",
	)
)

// CreateAppointmentCommand books a pickup slot for units of one order.
//
// Example:
//
//	cmd, err := NewCreateAppointmentCommand(kernel.NewUUID(), actor, orderID, date, slot,
//	    []PickupRequest{{UnitID: unitID, Locker: 2}})
//	if err != nil {
//	    return fmt.Errorf("invalid booking: %w", err)
//	}
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to book: %w", err)
//	}
type CreateAppointmentCommand struct { //nolint:recvcheck //using for validation
	appointmentID kernel.UUID
	actor         kernel.Actor
	orderID       kernel.UUID
	date          kernel.Date
	timeSlot      kernel.TimeSlot
	items         []PickupRequest

	guard guard.ConstructorGuard
}

// NewCreateAppointmentCommand validates the request shape. Business rules
// (window, lead time, penalties, lockers) are checked by the handler.
func NewCreateAppointmentCommand(
	appointmentID kernel.UUID,
	actor kernel.Actor,
	orderID kernel.UUID,
	date kernel.Date,
	timeSlot kernel.TimeSlot,
	items []PickupRequest,
) (CreateAppointmentCommand, error) {
	cmd := CreateAppointmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	var errID, errOrder, errSchedule error
	if errID = appointmentID.Validate(); errID != nil {
		errID = errs.NewValueIsRequiredErrorWithCause("appointmentId", errID)
	}
	if errOrder = orderID.Validate(); errOrder != nil {
		errOrder = errs.NewValueIsRequiredErrorWithCause("orderId", errOrder)
	}
	if errSchedule = errors.Join(date.Validate(), timeSlot.Validate()); errSchedule != nil {
		errSchedule = errs.NewValueIsRequiredErrorWithCause("date/timeSlot", errSchedule)
	}
	if err := errors.Join(errID, actor.Validate(), errOrder, errSchedule, validatePickupRequests(items)); err != nil {
		return CreateAppointmentCommand{}, err
	}

	cmd.appointmentID = appointmentID
	cmd.actor = actor
	cmd.orderID = orderID
	cmd.date = date
	cmd.timeSlot = timeSlot
	cmd.items = slices.Clone(items)
	return cmd, nil
}

func (c CreateAppointmentCommand) Validate() error {
	return c.guard.Validate(ErrCreateAppointmentCommandIsNotConstructed)
}

func (c CreateAppointmentCommand) AppointmentID() kernel.UUID {
	return c.appointmentID
}

func (c CreateAppointmentCommand) Actor() kernel.Actor {
	return c.actor
}

func (c CreateAppointmentCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateAppointmentCommand) Date() kernel.Date {
	return c.date
}

func (c CreateAppointmentCommand) TimeSlot() kernel.TimeSlot {
	return c.timeSlot
}

func (c CreateAppointmentCommand) Items() []PickupRequest {
	return slices.Clone(c.items)
}
