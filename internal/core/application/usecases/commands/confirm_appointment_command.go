package commands

import (
	"errors"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"
	"hako/internal/pkg/guard"
)

var (
	ErrConfirmAppointmentCommandIsNotConstructed = errors.New(
		"ConfirmAppointmentCommand must be created via NewConfirmAppointmentCommand constructor",
	)
)

// ConfirmAppointmentCommand confirms a scheduled appointment.
type ConfirmAppointmentCommand struct { //nolint:recvcheck //using for validation
	appointmentID kernel.UUID
	actor         kernel.Actor

	guard guard.ConstructorGuard
}

func NewConfirmAppointmentCommand(appointmentID kernel.UUID, actor kernel.Actor) (ConfirmAppointmentCommand, error) {
	var errID error
	if errID = appointmentID.Validate(); errID != nil {
		errID = errs.NewValueIsRequiredErrorWithCause("appointmentId", errID)
	}
	if err := errors.Join(errID, actor.Validate()); err != nil {
		return ConfirmAppointmentCommand{}, err
	}

	return ConfirmAppointmentCommand{
		appointmentID: appointmentID,
		actor:         actor,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c ConfirmAppointmentCommand) Validate() error {
	return c.guard.Validate(ErrConfirmAppointmentCommandIsNotConstructed)
}

func (c ConfirmAppointmentCommand) AppointmentID() kernel.UUID {
	return c.appointmentID
}

func (c ConfirmAppointmentCommand) Actor() kernel.Actor {
	return c.actor
}
