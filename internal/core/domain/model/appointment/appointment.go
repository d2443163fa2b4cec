package appointment

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
	// ErrAppointmentIsNotConstructed is returned when an Appointment was not built
	// through NewAppointment or RestoreAppointment.
	ErrAppointmentIsNotConstructed = errors.New("Appointment must be created via NewAppointment constructor")
)

// Appointment is the aggregate root of a locker pickup: one user collecting
// units of one order from one or more lockers during one hour slot.
//
// Invariants:
//   - at least one item, and a unit appears at most once
//   - only active appointments (Scheduled, Confirmed) change their items or slot
//   - terminal states never change again
//   - cancelledBy is set exactly when the status is Cancelled
//
// Locker exclusivity across appointments is not an invariant of a single
// aggregate; the availability service and the locker claims in storage enforce it.
type Appointment struct {
	id          kernel.UUID
	userID      kernel.UUID
	orderID     kernel.UUID
	date        kernel.Date
	timeSlot    kernel.TimeSlot
	items       []PickupItem
	status      Status
	createdAt   time.Time
	confirmedAt *time.Time
	completedAt *time.Time
	cancelledAt *time.Time
	cancelledBy *kernel.Role
	noShowAt    *time.Time

	guard guard.ConstructorGuard
}

// NewAppointment books a Scheduled appointment.
//
// Parameters:
//   - id: appointment identifier
//   - userID: the user collecting the units
//   - orderID: the order the units come from
//   - date, timeSlot: the pickup window
//   - items: the units and their lockers, at least one
//   - createdAt: booking time
//
// Returns:
//   - *Appointment: the scheduled appointment
//   - error: joined validation errors naming each offending field
//
// Example:
//
//	item, _ := appointment.NewPickupItem(unitID, productID, 2, nil)
//	appt, err := appointment.NewAppointment(kernel.NewUUID(), userID, orderID, date, slot,
//	    []appointment.PickupItem{item}, time.Now())
func NewAppointment(
	id, userID, orderID kernel.UUID,
	date kernel.Date,
	timeSlot kernel.TimeSlot,
	items []PickupItem,
	createdAt time.Time,
) (*Appointment, error) {
	a := &Appointment{
		status:    Scheduled,
		createdAt: createdAt,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		a.setID(id),
		a.setUserID(userID),
		a.setOrderID(orderID),
		a.setSchedule(date, timeSlot),
		a.setItems(items),
	); err != nil {
		return nil, err
	}

	return a, nil
}

// RestoreAppointment rebuilds an appointment from storage.
func RestoreAppointment(
	id, userID, orderID kernel.UUID,
	date kernel.Date,
	timeSlot kernel.TimeSlot,
	items []PickupItem,
	status Status,
	createdAt time.Time,
	confirmedAt, completedAt, cancelledAt *time.Time,
	cancelledBy *kernel.Role,
	noShowAt *time.Time,
) (*Appointment, error) {
	a, err := NewAppointment(id, userID, orderID, date, timeSlot, items, createdAt)
	if err != nil {
		return nil, err
	}

	if err = status.Validate(); err != nil {
		return nil, err
	}
	if (status == Cancelled) != (cancelledBy != nil) {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"cancelledBy", fmt.Errorf("%s appointment with cancelledBy %v", status, cancelledBy))
	}

	a.status = status
	a.confirmedAt = confirmedAt
	a.completedAt = completedAt
	a.cancelledAt = cancelledAt
	a.cancelledBy = cancelledBy
	a.noShowAt = noShowAt
	return a, nil
}

// Validate ensures the appointment was built through its constructor.
func (a *Appointment) Validate() error {
	if a == nil {
		return ErrAppointmentIsNotConstructed
	}
	return a.guard.Validate(ErrAppointmentIsNotConstructed)
}

// IsEqual compares appointments by identifier.
func (a *Appointment) IsEqual(other *Appointment) bool {
	return other != nil && a.id.IsEqual(other.id)
}

func (a *Appointment) ID() kernel.UUID {
	return a.id
}

func (a *Appointment) UserID() kernel.UUID {
	return a.userID
}

func (a *Appointment) OrderID() kernel.UUID {
	return a.orderID
}

func (a *Appointment) Date() kernel.Date {
	return a.date
}

func (a *Appointment) TimeSlot() kernel.TimeSlot {
	return a.timeSlot
}

func (a *Appointment) Status() Status {
	return a.status
}

func (a *Appointment) CreatedAt() time.Time {
	return a.createdAt
}

func (a *Appointment) ConfirmedAt() *time.Time {
	return a.confirmedAt
}

func (a *Appointment) CompletedAt() *time.Time {
	return a.completedAt
}

func (a *Appointment) CancelledAt() *time.Time {
	return a.cancelledAt
}

// CancelledBy is the role that cancelled the appointment, nil unless Cancelled.
func (a *Appointment) CancelledBy() *kernel.Role {
	return a.cancelledBy
}

func (a *Appointment) NoShowAt() *time.Time {
	return a.noShowAt
}

// Items returns a copy of the pickup items in booking order.
func (a *Appointment) Items() []PickupItem {
	return slices.Clone(a.items)
}

// Item returns the pickup item of unitID.
func (a *Appointment) Item(unitID kernel.UUID) (PickupItem, bool) {
	for _, it := range a.items {
		if it.unitID.IsEqual(unitID) {
			return it, true
		}
	}
	return PickupItem{}, false
}

// LockerNumbers returns the distinct lockers used by the items, ascending.
func (a *Appointment) LockerNumbers() []int {
	lockers := make([]int, 0, len(a.items))
	for _, it := range a.items {
		lockers = append(lockers, it.locker)
	}
	slices.Sort(lockers)
	return slices.Compact(lockers)
}

// IsActive reports whether the appointment holds its lockers.
func (a *Appointment) IsActive() bool {
	return a.status.IsActive()
}

// IsOwnedBy reports whether userID booked the appointment.
func (a *Appointment) IsOwnedBy(userID kernel.UUID) bool {
	return a.userID.IsEqual(userID)
}

// StartsAt is the instant the slot opens in loc.
func (a *Appointment) StartsAt(loc *time.Location) time.Time {
	return a.timeSlot.StartOn(a.date, loc)
}

// HasLapsed reports whether an active appointment's slot is entirely in the past.
func (a *Appointment) HasLapsed(now time.Time, loc *time.Location, slotDuration time.Duration) bool {
	if !a.IsActive() {
		return false
	}
	return !now.Before(a.StartsAt(loc).Add(slotDuration))
}

// AddItems appends units to an active appointment.
func (a *Appointment) AddItems(items ...PickupItem) error {
	if !a.IsActive() {
		return transitionError(a.status, "extended")
	}
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}

	merged := append(slices.Clone(a.items), items...)
	if err := validateItems(merged); err != nil {
		return err
	}

	a.items = merged
	return nil
}

// Reschedule moves an active appointment to another day or slot.
func (a *Appointment) Reschedule(date kernel.Date, timeSlot kernel.TimeSlot) error {
	if !a.IsActive() {
		return transitionError(a.status, "rescheduled")
	}
	return a.setSchedule(date, timeSlot)
}

// RelocateItem moves the item of unitID into another locker.
func (a *Appointment) RelocateItem(unitID kernel.UUID, locker int) error {
	if !a.IsActive() {
		return transitionError(a.status, "rearranged")
	}
	if locker < 1 {
		return errs.NewValueIsOutOfRangeError("locker", locker, 1, "locker count")
	}

	for i, it := range a.items {
		if it.unitID.IsEqual(unitID) {
			a.items[i] = it.withLocker(locker)
			return nil
		}
	}
	return errs.NewObjectNotFoundError("unitId", unitID.String())
}

// Confirm acknowledges a Scheduled appointment.
func (a *Appointment) Confirm(at time.Time) error {
	newStatus, err := a.status.Confirm()
	if err != nil {
		return err
	}

	a.status = newStatus
	a.confirmedAt = &at
	return nil
}

// Complete records the pickup.
func (a *Appointment) Complete(at time.Time) error {
	newStatus, err := a.status.Complete()
	if err != nil {
		return err
	}

	a.status = newStatus
	a.completedAt = &at
	return nil
}

// Cancel releases the appointment on behalf of by. Cancelling twice is rejected.
func (a *Appointment) Cancel(at time.Time, by kernel.Role) error {
	if err := by.Validate(); err != nil {
		return err
	}

	newStatus, err := a.status.Cancel()
	if err != nil {
		return err
	}

	a.status = newStatus
	a.cancelledAt = &at
	a.cancelledBy = &by
	return nil
}

// MarkNoShow closes an appointment whose slot passed without pickup.
func (a *Appointment) MarkNoShow(at time.Time) error {
	newStatus, err := a.status.MarkNoShow()
	if err != nil {
		return err
	}

	a.status = newStatus
	a.noShowAt = &at
	return nil
}

func (a *Appointment) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("id", err)
	}
	a.id = id
	return nil
}

func (a *Appointment) setUserID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("userId", err)
	}
	a.userID = id
	return nil
}

func (a *Appointment) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	a.orderID = id
	return nil
}

func (a *Appointment) setSchedule(date kernel.Date, timeSlot kernel.TimeSlot) error {
	if err := errors.Join(date.Validate(), timeSlot.Validate()); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("date/timeSlot", err)
	}
	a.date = date
	a.timeSlot = timeSlot
	return nil
}

func (a *Appointment) setItems(items []PickupItem) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	if err := validateItems(items); err != nil {
		return err
	}
	a.items = slices.Clone(items)
	return nil
}

func validateItems(items []PickupItem) error {
	seen := make(map[kernel.UUID]struct{}, len(items))
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("items[%d]", i), err)
		}
		if _, dup := seen[it.unitID]; dup {
			return errs.NewValueIsInvalidErrorWithCause(
				fmt.Sprintf("items[%d].unitId", i), fmt.Errorf("unit %s listed twice", it.unitID))
		}
		seen[it.unitID] = struct{}{}
	}
	return nil
}
