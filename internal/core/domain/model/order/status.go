package order

import (
	"fmt"

	"hako/internal/pkg/errs"
)

// Status represents the lifecycle state of an order as seen by the pickup system.
//
// State transitions:
//
//	Pending ──> Paid ──> ReadyForPickup ──> PickedUp
//	   │         │
//	   └─────────┴──> Cancelled
//
// ReadyForPickup is reached when the first appointment claims units of the order.
// Booking further appointments keeps it there.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	Unknown Status = iota

	// Pending orders are not paid yet and have no product units.
	Pending

	// Paid orders have product units waiting to be scheduled.
	Paid

	// ReadyForPickup orders have at least one unit placed in a locker.
	ReadyForPickup

	// PickedUp is final: every unit of the order was collected.
	PickedUp

	// Cancelled is final.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "unknown",
		Pending:        "pending",
		Paid:           "paid",
		ReadyForPickup: "ready_for_pickup",
		PickedUp:       "picked_up",
		Cancelled:      "cancelled",
	}
}

// ParseStatus maps the stored name back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not an order status", s))
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if s < Pending || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// AcceptsPickup reports whether units of the order may be booked into lockers.
func (s Status) AcceptsPickup() bool {
	return s == Paid || s == ReadyForPickup
}

// MarkPaid transitions Pending to Paid.
func (s Status) MarkPaid() (Status, error) {
	if s != Pending {
		return 0, transitionError(s, Paid)
	}
	return Paid, nil
}

// PrepareForPickup transitions Paid to ReadyForPickup. It is a no-op when the
// order is already ReadyForPickup.
func (s Status) PrepareForPickup() (Status, error) {
	if !s.AcceptsPickup() {
		return 0, transitionError(s, ReadyForPickup)
	}
	return ReadyForPickup, nil
}

// MarkPickedUp transitions ReadyForPickup to PickedUp.
func (s Status) MarkPickedUp() (Status, error) {
	if s != ReadyForPickup {
		return 0, transitionError(s, PickedUp)
	}
	return PickedUp, nil
}

// Cancel transitions Pending or Paid to Cancelled.
func (s Status) Cancel() (Status, error) {
	if s != Pending && s != Paid {
		return 0, transitionError(s, Cancelled)
	}
	return Cancelled, nil
}

func transitionError(from, to Status) error {
	return errs.NewRuleViolatedErrorWithCause(
		"order_status",
		fmt.Errorf("%s order cannot become %s", from, to),
	)
}
