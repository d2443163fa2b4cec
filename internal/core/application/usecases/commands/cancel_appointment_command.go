package commands

import (
	"errors"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"
	"hako/internal/pkg/guard"
)

var (
	ErrCancelAppointmentCommandIsNotConstructed = errors.New(
		"CancelAppointmentCommand must be created via NewCancelAppointmentCommand constructor",
	)
)

// CancelAppointmentCommand cancels an active appointment on behalf of the owner or an administrator.
type CancelAppointmentCommand struct { //nolint:recvcheck //using for validation
	appointmentID kernel.UUID
	actor         kernel.Actor

	guard guard.ConstructorGuard
}

func NewCancelAppointmentCommand(appointmentID kernel.UUID, actor kernel.Actor) (CancelAppointmentCommand, error) {
	var errID error
	if errID = appointmentID.Validate(); errID != nil {
		errID = errs.NewValueIsRequiredErrorWithCause("appointmentId", errID)
	}
	if err := errors.Join(errID, actor.Validate()); err != nil {
		return CancelAppointmentCommand{}, err
	}

	return CancelAppointmentCommand{
		appointmentID: appointmentID,
		actor:         actor,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c CancelAppointmentCommand) Validate() error {
	return c.guard.Validate(ErrCancelAppointmentCommandIsNotConstructed)
}

func (c CancelAppointmentCommand) AppointmentID() kernel.UUID {
	return c.appointmentID
}

func (c CancelAppointmentCommand) Actor() kernel.Actor {
	return c.actor
}
