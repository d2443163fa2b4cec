package commands

import (
	"errors"
	"slices"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"
	"hako/internal/pkg/guard"
)

var (
	ErrAddProductsCommandIsNotConstructed = errors.New(
		"AddProductsCommand must be created via NewAddProductsCommand constructor",
	)
)

// AddProductsCommand places more units of the same order into an existing appointment.
type AddProductsCommand struct { //nolint:recvcheck //using for validation
	appointmentID kernel.UUID
	actor         kernel.Actor
	items         []PickupRequest

	guard guard.ConstructorGuard
}

func NewAddProductsCommand(appointmentID kernel.UUID, actor kernel.Actor, items []PickupRequest) (AddProductsCommand, error) {
	var errID error
	if errID = appointmentID.Validate(); errID != nil {
		errID = errs.NewValueIsRequiredErrorWithCause("appointmentId", errID)
	}
	if err := errors.Join(errID, actor.Validate(), validatePickupRequests(items)); err != nil {
		return AddProductsCommand{}, err
	}

	return AddProductsCommand{
		appointmentID: appointmentID,
		actor:         actor,
		items:         slices.Clone(items),
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c AddProductsCommand) Validate() error {
	return c.guard.Validate(ErrAddProductsCommandIsNotConstructed)
}

func (c AddProductsCommand) AppointmentID() kernel.UUID {
	return c.appointmentID
}

func (c AddProductsCommand) Actor() kernel.Actor {
	return c.actor
}

func (c AddProductsCommand) Items() []PickupRequest {
	return slices.Clone(c.items)
}
