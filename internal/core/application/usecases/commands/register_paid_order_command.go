package commands

import (
	"errors"
	"fmt"
	"slices"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"
	"hako/internal/pkg/guard"
)

var (
	ErrRegisterPaidOrderCommandIsNotConstructed = errors.New(
		"RegisterPaidOrderCommand must be created via NewRegisterPaidOrderCommand constructor",
	)
)

// PaidLine is one purchased product. VariantDimensions, when set, overrides
// the catalog Dimensions for every unit of the line.
type PaidLine struct {
	ProductID         kernel.UUID
	Quantity          int
	Variant           string
	Dimensions        kernel.Dimensions
	VariantDimensions *kernel.Dimensions
}

// UnitDimensions is the size used for the units of the line.
func (l PaidLine) UnitDimensions() kernel.Dimensions {
	if l.VariantDimensions != nil {
		return *l.VariantDimensions
	}
	return l.Dimensions
}

// RegisterPaidOrderCommand records an order paid in the shop so that its
// units can be booked into lockers.
type RegisterPaidOrderCommand struct { //nolint:recvcheck //using for validation
	actor   kernel.Actor
	orderID kernel.UUID
	userID  kernel.UUID
	lines   []PaidLine

	guard guard.ConstructorGuard
}

func NewRegisterPaidOrderCommand(
	actor kernel.Actor,
	orderID, userID kernel.UUID,
	lines []PaidLine,
) (RegisterPaidOrderCommand, error) {
	var errOrder, errUser, errLines error
	if errOrder = orderID.Validate(); errOrder != nil {
		errOrder = errs.NewValueIsRequiredErrorWithCause("orderId", errOrder)
	}
	if errUser = userID.Validate(); errUser != nil {
		errUser = errs.NewValueIsRequiredErrorWithCause("userId", errUser)
	}
	errLines = validatePaidLines(lines)
	if err := errors.Join(actor.Validate(), errOrder, errUser, errLines); err != nil {
		return RegisterPaidOrderCommand{}, err
	}

	return RegisterPaidOrderCommand{
		actor:   actor,
		orderID: orderID,
		userID:  userID,
		lines:   slices.Clone(lines),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func validatePaidLines(lines []PaidLine) error {
	if len(lines) == 0 {
		return errs.NewValueIsRequiredError("lines")
	}
	for i, l := range lines {
		if err := l.ProductID.Validate(); err != nil {
			return errs.NewValueIsRequiredErrorWithCause(fmt.Sprintf("lines[%d].productId", i), err)
		}
		if l.Quantity < 1 {
			return errs.NewValueIsOutOfRangeError(fmt.Sprintf("lines[%d].quantity", i), l.Quantity, 1, "unbounded")
		}
		if err := l.UnitDimensions().Validate(); err != nil {
			return errs.NewValueIsRequiredErrorWithCause(fmt.Sprintf("lines[%d].dimensions", i), err)
		}
	}
	return nil
}

func (c RegisterPaidOrderCommand) Validate() error {
	return c.guard.Validate(ErrRegisterPaidOrderCommandIsNotConstructed)
}

func (c RegisterPaidOrderCommand) Actor() kernel.Actor {
	return c.actor
}

func (c RegisterPaidOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c RegisterPaidOrderCommand) UserID() kernel.UUID {
	return c.userID
}

func (c RegisterPaidOrderCommand) Lines() []PaidLine {
	return slices.Clone(c.lines)
}
