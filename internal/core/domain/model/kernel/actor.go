package kernel

import (
	"errors"

	"hako/internal/pkg/errs"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	userID UUID
	role   Role
}

// NewActor builds an actor from a token subject and role.
func NewActor(userID UUID, role Role) (Actor, error) {
	var errUser error
	if err := userID.Validate(); err != nil {
		errUser = errs.NewValueIsRequiredErrorWithCause("actor.userId", err)
	}
	if err := errors.Join(errUser, role.Validate()); err != nil {
		return Actor{}, err
	}
	return Actor{userID: userID, role: role}, nil
}

func (a Actor) UserID() UUID {
	return a.userID
}

func (a Actor) Role() Role {
	return a.role
}

// IsAdmin reports whether the actor has elevated privileges.
func (a Actor) IsAdmin() bool {
	return a.role.IsElevated()
}

// CanAccess reports whether the actor may act on a resource owned by ownerID.
func (a Actor) CanAccess(ownerID UUID) bool {
	return a.IsAdmin() || a.userID.IsEqual(ownerID)
}

func (a Actor) Validate() error {
	if err := a.userID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("actor", err)
	}
	return a.role.Validate()
}
