package unit

import (
	"errors"
	"fmt"
	"time"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"
	"hako/internal/pkg/guard"
)

var (
	ErrProductUnitIsNotConstructed = errors.New("ProductUnit must be created via NewProductUnit constructor")
)

// ProductUnit is one physical item bought by a user. A paid order with quantity
// N produces N units; each is reserved into a locker independently.
//
// Invariants:
//   - Reserved units have an assigned locker and a reservation time
//   - Available and PickedUp units have no locker
//   - PickedUp units carry the pickup time
type ProductUnit struct {
	id         kernel.UUID
	ownerID    kernel.UUID
	orderID    kernel.UUID
	productID  kernel.UUID
	variant    string
	dimensions kernel.Dimensions
	status     Status
	locker     *int
	reservedAt *time.Time
	pickedUpAt *time.Time

	guard guard.ConstructorGuard
}

// NewProductUnit creates an Available unit.
//
// Parameters:
//   - id: unit identifier
//   - ownerID: user who bought it
//   - orderID: paid order it comes from
//   - productID: catalog product
//   - variant: optional variant label, empty for the base product
//   - dimensions: bounding box, from the variant when it overrides the product
//
// Example:
//
//	box, _ := kernel.NewDimensions(20, 10, 40)
//	u, err := unit.NewProductUnit(kernel.NewUUID(), userID, orderID, productID, "red-xl", box)
func NewProductUnit(
	id, ownerID, orderID, productID kernel.UUID,
	variant string,
	dimensions kernel.Dimensions,
) (*ProductUnit, error) {
	u := &ProductUnit{
		variant: variant,
		status:  Available,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		u.setID(id),
		u.setOwnerID(ownerID),
		u.setOrderID(orderID),
		u.setProductID(productID),
		u.setDimensions(dimensions),
	); err != nil {
		return nil, err
	}

	return u, nil
}

// RestoreProductUnit rebuilds a unit from storage and checks the status/locker invariants.
func RestoreProductUnit(
	id, ownerID, orderID, productID kernel.UUID,
	variant string,
	dimensions kernel.Dimensions,
	status Status,
	locker *int,
	reservedAt, pickedUpAt *time.Time,
) (*ProductUnit, error) {
	u, err := NewProductUnit(id, ownerID, orderID, productID, variant, dimensions)
	if err != nil {
		return nil, err
	}

	if err = status.Validate(); err != nil {
		return nil, err
	}
	if (status == Reserved) != (locker != nil) {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"locker", fmt.Errorf("%s unit with locker %v", status, locker))
	}

	u.status = status
	u.locker = locker
	u.reservedAt = reservedAt
	u.pickedUpAt = pickedUpAt
	return u, nil
}

func (u *ProductUnit) Validate() error {
	if u == nil {
		return ErrProductUnitIsNotConstructed
	}
	return u.guard.Validate(ErrProductUnitIsNotConstructed)
}

func (u *ProductUnit) IsEqual(other *ProductUnit) bool {
	return other != nil && u.id.IsEqual(other.id)
}

func (u *ProductUnit) ID() kernel.UUID {
	return u.id
}

func (u *ProductUnit) OwnerID() kernel.UUID {
	return u.ownerID
}

func (u *ProductUnit) OrderID() kernel.UUID {
	return u.orderID
}

func (u *ProductUnit) ProductID() kernel.UUID {
	return u.productID
}

func (u *ProductUnit) Variant() string {
	return u.variant
}

func (u *ProductUnit) Dimensions() kernel.Dimensions {
	return u.dimensions
}

// Volume is the volume of the unit's bounding box.
func (u *ProductUnit) Volume() float64 {
	return u.dimensions.Volume()
}

func (u *ProductUnit) Status() Status {
	return u.status
}

// Locker returns the assigned locker number, nil unless Reserved.
func (u *ProductUnit) Locker() *int {
	if u.locker == nil {
		return nil
	}
	n := *u.locker
	return &n
}

func (u *ProductUnit) ReservedAt() *time.Time {
	return u.reservedAt
}

func (u *ProductUnit) PickedUpAt() *time.Time {
	return u.pickedUpAt
}

// IsOwnedBy reports whether userID bought this unit.
func (u *ProductUnit) IsOwnedBy(userID kernel.UUID) bool {
	return u.ownerID.IsEqual(userID)
}

// Reserve binds an Available unit to a locker.
func (u *ProductUnit) Reserve(locker int, at time.Time) error {
	if locker < 1 {
		return errs.NewValueIsOutOfRangeError("locker", locker, 1, "locker count")
	}

	newStatus, err := u.status.Reserve()
	if err != nil {
		return err
	}

	u.status = newStatus
	u.locker = &locker
	u.reservedAt = &at
	return nil
}

// Relocate moves a Reserved unit to another locker, as when its appointment is rescheduled.
func (u *ProductUnit) Relocate(locker int) error {
	if u.status != Reserved {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%s unit cannot be relocated", u.status))
	}
	if locker < 1 {
		return errs.NewValueIsOutOfRangeError("locker", locker, 1, "locker count")
	}
	u.locker = &locker
	return nil
}

// Release returns a Reserved unit to Available and clears its locker.
func (u *ProductUnit) Release() error {
	newStatus, err := u.status.Release()
	if err != nil {
		return err
	}

	u.status = newStatus
	u.locker = nil
	u.reservedAt = nil
	return nil
}

// PickUp marks the unit as collected and clears its locker.
func (u *ProductUnit) PickUp(at time.Time) error {
	newStatus, err := u.status.PickUp()
	if err != nil {
		return err
	}

	u.status = newStatus
	u.locker = nil
	u.pickedUpAt = &at
	return nil
}

func (u *ProductUnit) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("id", err)
	}
	u.id = id
	return nil
}

func (u *ProductUnit) setOwnerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("ownerId", err)
	}
	u.ownerID = id
	return nil
}

func (u *ProductUnit) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	u.orderID = id
	return nil
}

func (u *ProductUnit) setProductID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("productId", err)
	}
	u.productID = id
	return nil
}

func (u *ProductUnit) setDimensions(d kernel.Dimensions) error {
	if err := d.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("dimensions", err)
	}
	u.dimensions = d
	return nil
}
