package queries

import (
	"errors"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"
	"hako/internal/pkg/guard"
)

var (
	ErrGetAppointmentQueryIsNotConstructed = errors.New(
		"GetAppointmentQuery must be created via NewGetAppointmentQuery constructor",
	)
)

// GetAppointmentQuery reads one appointment on behalf of actor.
type GetAppointmentQuery struct {
	actor         kernel.Actor
	appointmentID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetAppointmentQuery(actor kernel.Actor, appointmentID kernel.UUID) (GetAppointmentQuery, error) {
	var errID error
	if err := appointmentID.Validate(); err != nil {
		errID = errs.NewValueIsRequiredErrorWithCause("appointmentId", err)
	}
	if err := errors.Join(actor.Validate(), errID); err != nil {
		return GetAppointmentQuery{}, err
	}

	return GetAppointmentQuery{
		actor:         actor,
		appointmentID: appointmentID,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (q GetAppointmentQuery) Validate() error {
	return q.guard.Validate(ErrGetAppointmentQueryIsNotConstructed)
}

func (q GetAppointmentQuery) Actor() kernel.Actor {
	return q.actor
}

func (q GetAppointmentQuery) AppointmentID() kernel.UUID {
	return q.appointmentID
}
