package commands

import (
	"errors"
	"slices"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"
	"hako/internal/pkg/guard"
)

var (
	ErrUpdateAppointmentCommandIsNotConstructed = errors.New(
		"UpdateAppointmentCommand must be created via NewUpdateAppointmentCommand constructor",
	)
)

// UpdateAppointmentCommand moves an appointment to another day and slot and
// optionally reassigns lockers of some of its units. It is also how a user
// re-reserves an appointment whose slot passed.
type UpdateAppointmentCommand struct { //nolint:recvcheck //using for validation
	appointmentID kernel.UUID
	actor         kernel.Actor
	date          kernel.Date
	timeSlot      kernel.TimeSlot
	relocations   []PickupRequest

	guard guard.ConstructorGuard
}

// NewUpdateAppointmentCommand builds the command. relocations may be empty;
// units not listed keep their lockers.
func NewUpdateAppointmentCommand(
	appointmentID kernel.UUID,
	actor kernel.Actor,
	date kernel.Date,
	timeSlot kernel.TimeSlot,
	relocations []PickupRequest,
) (UpdateAppointmentCommand, error) {
	var errID, errSchedule, errRelocations error
	if errID = appointmentID.Validate(); errID != nil {
		errID = errs.NewValueIsRequiredErrorWithCause("appointmentId", errID)
	}
	if errSchedule = errors.Join(date.Validate(), timeSlot.Validate()); errSchedule != nil {
		errSchedule = errs.NewValueIsRequiredErrorWithCause("date/timeSlot", errSchedule)
	}
	if len(relocations) > 0 {
		errRelocations = validatePickupRequests(relocations)
	}
	if err := errors.Join(errID, actor.Validate(), errSchedule, errRelocations); err != nil {
		return UpdateAppointmentCommand{}, err
	}

	return UpdateAppointmentCommand{
		appointmentID: appointmentID,
		actor:         actor,
		date:          date,
		timeSlot:      timeSlot,
		relocations:   slices.Clone(relocations),
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateAppointmentCommand) Validate() error {
	return c.guard.Validate(ErrUpdateAppointmentCommandIsNotConstructed)
}

func (c UpdateAppointmentCommand) AppointmentID() kernel.UUID {
	return c.appointmentID
}

func (c UpdateAppointmentCommand) Actor() kernel.Actor {
	return c.actor
}

func (c UpdateAppointmentCommand) Date() kernel.Date {
	return c.date
}

func (c UpdateAppointmentCommand) TimeSlot() kernel.TimeSlot {
	return c.timeSlot
}

func (c UpdateAppointmentCommand) Relocations() []PickupRequest {
	return slices.Clone(c.relocations)
}
