package commands

import (
	"errors"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"
	"hako/internal/pkg/guard"
)

var (
	ErrCompleteAppointmentCommandIsNotConstructed = errors.New(
		"CompleteAppointmentCommand must be created via NewCompleteAppointmentCommand constructor",
	)
)

// CompleteAppointmentCommand records that the units of an appointment were collected.
type CompleteAppointmentCommand struct { //nolint:recvcheck //using for validation
	appointmentID kernel.UUID
	actor         kernel.Actor

	guard guard.ConstructorGuard
}

func NewCompleteAppointmentCommand(appointmentID kernel.UUID, actor kernel.Actor) (CompleteAppointmentCommand, error) {
	var errID error
	if errID = appointmentID.Validate(); errID != nil {
		errID = errs.NewValueIsRequiredErrorWithCause("appointmentId", errID)
	}
	if err := errors.Join(errID, actor.Validate()); err != nil {
		return CompleteAppointmentCommand{}, err
	}

	return CompleteAppointmentCommand{
		appointmentID: appointmentID,
		actor:         actor,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c CompleteAppointmentCommand) Validate() error {
	return c.guard.Validate(ErrCompleteAppointmentCommandIsNotConstructed)
}

func (c CompleteAppointmentCommand) AppointmentID() kernel.UUID {
	return c.appointmentID
}

func (c CompleteAppointmentCommand) Actor() kernel.Actor {
	return c.actor
}
