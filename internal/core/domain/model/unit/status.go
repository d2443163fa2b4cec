package unit

import (
	"fmt"

	"hako/internal/pkg/errs"
)

// Status is the lifecycle state of a product unit.
//
//	Available ──> Reserved ──> PickedUp
//	    ^            │
//	    └────────────┘  (appointment cancelled or expired)
//
// An Available unit may also be picked up directly when its appointment is
// completed through a stale reference.
type Status int

const (
	// Unknown is the zero value and is never valid.
	Unknown Status = iota

	// Available units belong to a paid order and are waiting for an appointment.
	Available

	// Reserved units sit in a locker for exactly one active appointment.
	Reserved

	// PickedUp units have left the locker. Final state.
	PickedUp
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Available: "available",
		Reserved:  "reserved",
		PickedUp:  "picked_up",
	}
}

// ParseStatus maps the wire name back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a unit status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if s < Available || s > PickedUp {
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

// Reserve moves Available to Reserved.
func (s Status) Reserve() (Status, error) {
	if s != Available {
		return s, errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%s unit cannot be reserved", s))
	}
	return Reserved, nil
}

// Release moves Reserved back to Available.
func (s Status) Release() (Status, error) {
	if s != Reserved {
		return s, errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%s unit cannot be released", s))
	}
	return Available, nil
}

// PickUp moves Reserved or Available to PickedUp.
func (s Status) PickUp() (Status, error) {
	if s != Reserved && s != Available {
		return s, errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%s unit cannot be picked up", s))
	}
	return PickedUp, nil
}
