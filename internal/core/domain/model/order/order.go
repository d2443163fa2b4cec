package order

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"
	"hako/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Order is the purchase a user collects through pickup appointments. The
// pickup system only tracks its status and how many units of each line sit
// in lockers; catalog and payment data live elsewhere.
//
// Order follows these invariants:
//   - Must have a valid identifier and owner
//   - Has at least one line and a product appears on one line only
//   - Claimed units of a line never exceed its quantity
type Order struct {
	id     kernel.UUID
	userID kernel.UUID
	status Status
	lines  []Line
	paidAt *time.Time

	guard guard.ConstructorGuard
}

// NewOrder creates a Pending order.
//
// Example:
//
//	line, _ := order.NewLine(productID, 2)
//	o, err := order.NewOrder(kernel.NewUUID(), userID, []order.Line{line})
//	if err != nil {
//	    // Handle validation error
//	}
//	_ = o.MarkPaid(time.Now())
func NewOrder(id, userID kernel.UUID, lines []Line) (*Order, error) {
	o := &Order{
		status: Pending,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setUserID(userID),
		o.setLines(lines),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder rebuilds an order from storage.
func RestoreOrder(id, userID kernel.UUID, status Status, lines []Line, paidAt *time.Time) (*Order, error) {
	o, err := NewOrder(id, userID, lines)
	if err != nil {
		return nil, err
	}
	if err = status.Validate(); err != nil {
		return nil, err
	}

	o.status = status
	o.paidAt = paidAt
	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) UserID() kernel.UUID {
	return o.userID
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) PaidAt() *time.Time {
	return o.paidAt
}

// Lines returns a copy of the order lines.
func (o *Order) Lines() []Line {
	return slices.Clone(o.lines)
}

// Line returns the line of productID.
func (o *Order) Line(productID kernel.UUID) (Line, bool) {
	i := o.lineIndex(productID)
	if i < 0 {
		return Line{}, false
	}
	return o.lines[i], true
}

// IsOwnedBy reports whether userID placed the order.
func (o *Order) IsOwnedBy(userID kernel.UUID) bool {
	return o.userID.IsEqual(userID)
}

// MarkPaid records the payment.
func (o *Order) MarkPaid(at time.Time) error {
	newStatus, err := o.status.MarkPaid()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.paidAt = &at
	return nil
}

// PrepareForPickup moves a paid order to ReadyForPickup.
func (o *Order) PrepareForPickup() error {
	newStatus, err := o.status.PrepareForPickup()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// MarkPickedUp closes the order once all of its units were collected.
func (o *Order) MarkPickedUp() error {
	newStatus, err := o.status.MarkPickedUp()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// Cancel cancels an order that never reached a locker.
func (o *Order) Cancel() error {
	newStatus, err := o.status.Cancel()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// Claim counts one unit of productID as placed in locker.
func (o *Order) Claim(productID kernel.UUID, locker int) error {
	if !o.status.AcceptsPickup() {
		return transitionError(o.status, ReadyForPickup)
	}
	if locker < 1 {
		return errs.NewValueIsOutOfRangeError("locker", locker, 1, "locker count")
	}

	i := o.lineIndex(productID)
	if i < 0 {
		return errs.NewObjectNotFoundError("productId", productID.String())
	}

	l := &o.lines[i]
	if l.claimed >= l.quantity {
		return errs.NewRuleViolatedErrorWithCause(
			"order_line_claimed",
			fmt.Errorf("all %d units of product %s are already in lockers", l.quantity, productID),
		)
	}

	l.claimed++
	l.locker = &locker
	return nil
}

// Release gives back one claimed unit of productID. The locker is cleared when
// the last unit is released; releasing an unclaimed line is a no-op.
func (o *Order) Release(productID kernel.UUID) error {
	i := o.lineIndex(productID)
	if i < 0 {
		return errs.NewObjectNotFoundError("productId", productID.String())
	}

	l := &o.lines[i]
	if l.claimed == 0 {
		return nil
	}
	l.claimed--
	if l.claimed == 0 {
		l.locker = nil
	}
	return nil
}

// Relocate updates the locker of a claimed line.
func (o *Order) Relocate(productID kernel.UUID, locker int) error {
	if locker < 1 {
		return errs.NewValueIsOutOfRangeError("locker", locker, 1, "locker count")
	}

	i := o.lineIndex(productID)
	if i < 0 {
		return errs.NewObjectNotFoundError("productId", productID.String())
	}
	if o.lines[i].claimed == 0 {
		return nil
	}
	o.lines[i].locker = &locker
	return nil
}

func (o *Order) lineIndex(productID kernel.UUID) int {
	return slices.IndexFunc(o.lines, func(l Line) bool {
		return l.productID.IsEqual(productID)
	})
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("id", err)
	}
	o.id = id
	return nil
}

func (o *Order) setUserID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("userId", err)
	}
	o.userID = id
	return nil
}

func (o *Order) setLines(lines []Line) error {
	if len(lines) == 0 {
		return errs.NewValueIsRequiredError("lines")
	}

	seen := make(map[kernel.UUID]struct{}, len(lines))
	for i, l := range lines {
		if err := l.productID.Validate(); err != nil {
			return errs.NewValueIsRequiredErrorWithCause(fmt.Sprintf("lines[%d].productId", i), err)
		}
		if _, dup := seen[l.productID]; dup {
			return errs.NewValueIsInvalidErrorWithCause(
				fmt.Sprintf("lines[%d].productId", i), fmt.Errorf("product %s listed twice", l.productID))
		}
		seen[l.productID] = struct{}{}
	}

	o.lines = make([]Line, len(lines))
	for i, l := range lines {
		o.lines[i] = l
		o.lines[i].locker = l.Locker()
	}
	return nil
}
