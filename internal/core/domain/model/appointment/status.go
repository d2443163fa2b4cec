package appointment

import (
	"fmt"

	"hako/internal/pkg/errs"
)

// Status is the lifecycle state of a pickup appointment.
//
//	Scheduled ──> Confirmed ──┬──> Completed
//	    │             │       ├──> Cancelled
//	    └─────────────┴───────┴──> NoShow
//
// Scheduled and Confirmed are active: they hold their lockers for the slot.
// Completed, Cancelled and NoShow are terminal.
type Status int

const (
	// Unknown is the zero value and is never valid.
	Unknown Status = iota

	// Scheduled is the state right after booking.
	Scheduled

	// Confirmed means the user acknowledged the slot.
	Confirmed

	// Completed means the units were collected.
	Completed

	// Cancelled by the user or an administrator.
	Cancelled

	// NoShow is set by the expiry sweep once the slot passed without pickup.
	NoShow
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Scheduled: "scheduled",
		Confirmed: "confirmed",
		Completed: "completed",
		Cancelled: "cancelled",
		NoShow:    "no_show",
	}
}

// ActiveStatuses lists the statuses that occupy lockers.
func ActiveStatuses() []Status {
	return []Status{Scheduled, Confirmed}
}

// ParseStatus maps the wire name back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not an appointment status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if s < Scheduled || s > NoShow {
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

// IsActive reports whether the appointment still holds its lockers.
func (s Status) IsActive() bool {
	return s == Scheduled || s == Confirmed
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled || s == NoShow
}

// Confirm moves Scheduled to Confirmed.
func (s Status) Confirm() (Status, error) {
	if s != Scheduled {
		return s, transitionError(s, "confirmed")
	}
	return Confirmed, nil
}

// Complete moves an active status to Completed.
func (s Status) Complete() (Status, error) {
	if !s.IsActive() {
		return s, transitionError(s, "completed")
	}
	return Completed, nil
}

// Cancel moves an active status to Cancelled.
func (s Status) Cancel() (Status, error) {
	if !s.IsActive() {
		return s, transitionError(s, "cancelled")
	}
	return Cancelled, nil
}

// MarkNoShow moves an active status to NoShow.
func (s Status) MarkNoShow() (Status, error) {
	if !s.IsActive() {
		return s, transitionError(s, "marked as no show")
	}
	return NoShow, nil
}

func transitionError(from Status, action string) error {
	return errs.NewRuleViolatedErrorWithCause(
		"appointment_status",
		fmt.Errorf("%s appointment cannot be %s", from, action),
	)
}
