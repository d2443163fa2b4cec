package order

import (
	"errors"
	"fmt"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"
)

// Line is one purchased product of an order. Claimed counts the units of the
// product currently placed in lockers by active appointments; Locker is the
// last locker a unit of the line was assigned to and is cleared once nothing
// is claimed.
type Line struct {
	productID kernel.UUID
	quantity  int
	claimed   int
	locker    *int
}

// NewLine creates an unclaimed line.
func NewLine(productID kernel.UUID, quantity int) (Line, error) {
	return RestoreLine(productID, quantity, 0, nil)
}

// RestoreLine rebuilds a line from storage.
func RestoreLine(productID kernel.UUID, quantity, claimed int, locker *int) (Line, error) {
	var errProduct, errQuantity, errClaimed error
	if errProduct = productID.Validate(); errProduct != nil {
		errProduct = errs.NewValueIsRequiredErrorWithCause("productId", errProduct)
	}
	if quantity < 1 {
		errQuantity = errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "unbounded")
	}
	if claimed < 0 || claimed > quantity {
		errClaimed = errs.NewValueIsOutOfRangeError("claimed", claimed, 0, quantity)
	}
	if err := errors.Join(errProduct, errQuantity, errClaimed); err != nil {
		return Line{}, err
	}
	if (claimed == 0) != (locker == nil) {
		return Line{}, errs.NewValueIsInvalidErrorWithCause(
			"locker", fmt.Errorf("line with %d claimed units and locker %v", claimed, locker))
	}

	l := Line{productID: productID, quantity: quantity, claimed: claimed}
	if locker != nil {
		n := *locker
		l.locker = &n
	}
	return l, nil
}

func (l Line) ProductID() kernel.UUID {
	return l.productID
}

func (l Line) Quantity() int {
	return l.quantity
}

func (l Line) Claimed() int {
	return l.claimed
}

// Locker returns a copy of the assigned locker, nil when nothing is claimed.
func (l Line) Locker() *int {
	if l.locker == nil {
		return nil
	}
	n := *l.locker
	return &n
}
