package appointment

import (
	"errors"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"
	"hako/internal/pkg/guard"
)

var ErrPickupItemIsNotConstructed = errors.New("PickupItem must be created via NewPickupItem constructor")

// PickupItem is one unit placed in a locker for an appointment. Quantity is
// always one; several units of the same product are several items.
type PickupItem struct { //nolint:recvcheck //using for validation
	unitID     kernel.UUID
	productID  kernel.UUID
	locker     int
	dimensions *kernel.Dimensions

	guard guard.ConstructorGuard
}

// NewPickupItem creates an item. dimensions is an optional snapshot used for
// display and packing; nil when the unit size is unknown to the caller.
func NewPickupItem(unitID, productID kernel.UUID, locker int, dimensions *kernel.Dimensions) (PickupItem, error) {
	item := PickupItem{
		guard: guard.NewConstructorGuard(),
	}

	var errUnit, errProduct, errLocker error
	if errUnit = unitID.Validate(); errUnit != nil {
		errUnit = errs.NewValueIsRequiredErrorWithCause("unitId", errUnit)
	}
	if errProduct = productID.Validate(); errProduct != nil {
		errProduct = errs.NewValueIsRequiredErrorWithCause("productId", errProduct)
	}
	if locker < 1 {
		errLocker = errs.NewValueIsOutOfRangeError("locker", locker, 1, "locker count")
	}
	if err := errors.Join(errUnit, errProduct, errLocker); err != nil {
		return PickupItem{}, err
	}

	item.unitID = unitID
	item.productID = productID
	item.locker = locker
	if dimensions != nil {
		d := *dimensions
		item.dimensions = &d
	}
	return item, nil
}

func (i PickupItem) Validate() error {
	return i.guard.Validate(ErrPickupItemIsNotConstructed)
}

func (i PickupItem) UnitID() kernel.UUID {
	return i.unitID
}

func (i PickupItem) ProductID() kernel.UUID {
	return i.productID
}

func (i PickupItem) Locker() int {
	return i.locker
}

func (i PickupItem) Quantity() int {
	return 1
}

func (i PickupItem) Dimensions() *kernel.Dimensions {
	return i.dimensions
}

// withLocker returns a copy placed in another locker.
func (i PickupItem) withLocker(locker int) PickupItem {
	i.locker = locker
	return i
}
