package queries

import (
	"errors"
	"slices"

	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"
	"hako/internal/pkg/guard"
)

var (
	ErrGetUserAppointmentsQueryIsNotConstructed = errors.New(
		"GetUserAppointmentsQuery must be created via NewGetUserAppointmentsQuery constructor",
	)
)

// GetUserAppointmentsQuery lists the appointments of one user, optionally
// narrowed to some statuses. Users see their own appointments; admins see anyone's.
//
// Example:
//
//	query, err := NewGetUserAppointmentsQuery(actor, actor.UserID(),
//	    []appointment.Status{appointment.Scheduled, appointment.Confirmed})
//	if err != nil {
//	    return err
//	}
//	views, err := handler.Handle(ctx, query)
type GetUserAppointmentsQuery struct {
	actor    kernel.Actor
	userID   kernel.UUID
	statuses []appointment.Status

	guard guard.ConstructorGuard
}

func NewGetUserAppointmentsQuery(
	actor kernel.Actor,
	userID kernel.UUID,
	statuses []appointment.Status,
) (GetUserAppointmentsQuery, error) {
	var errUser error
	if err := userID.Validate(); err != nil {
		errUser = errs.NewValueIsRequiredErrorWithCause("userId", err)
	}
	errStatuses := make([]error, 0, len(statuses))
	for _, s := range statuses {
		errStatuses = append(errStatuses, s.Validate())
	}
	if err := errors.Join(actor.Validate(), errUser, errors.Join(errStatuses...)); err != nil {
		return GetUserAppointmentsQuery{}, err
	}

	return GetUserAppointmentsQuery{
		actor:    actor,
		userID:   userID,
		statuses: slices.Clone(statuses),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q GetUserAppointmentsQuery) Validate() error {
	return q.guard.Validate(ErrGetUserAppointmentsQueryIsNotConstructed)
}

func (q GetUserAppointmentsQuery) Actor() kernel.Actor {
	return q.actor
}

func (q GetUserAppointmentsQuery) UserID() kernel.UUID {
	return q.userID
}

// Statuses is empty when every status is requested.
func (q GetUserAppointmentsQuery) Statuses() []appointment.Status {
	return slices.Clone(q.statuses)
}
