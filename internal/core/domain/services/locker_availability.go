package services

import (
	"fmt"
	"slices"
	"strings"

	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"
)

// Occupancy is the set of lockers one active appointment holds in a slot.
type Occupancy struct {
	AppointmentID kernel.UUID
	Date          kernel.Date
	TimeSlot      kernel.TimeSlot
	Lockers       []int
}

// OccupanciesOf converts appointments into occupancies, skipping inactive ones.
func OccupanciesOf(appointments []*appointment.Appointment) []Occupancy {
	out := make([]Occupancy, 0, len(appointments))
	for _, a := range appointments {
		if a == nil || !a.IsActive() {
			continue
		}
		out = append(out, Occupancy{
			AppointmentID: a.ID(),
			Date:          a.Date(),
			TimeSlot:      a.TimeSlot(),
			Lockers:       a.LockerNumbers(),
		})
	}
	return out
}

// AvailabilityRequest asks whether Lockers are free on Date at TimeSlot.
// Exclude, when set, ignores the lockers of that appointment so it can be
// rescheduled or extended without conflicting with itself.
type AvailabilityRequest struct {
	Date     kernel.Date
	TimeSlot kernel.TimeSlot
	Lockers  []int
	Exclude  *kernel.UUID
}

// Availability is the verdict for an AvailabilityRequest. Both lists are
// sorted ascending and hold each locker once.
type Availability struct {
	Available          bool
	OccupiedLockers    []int
	ConflictingLockers []int
}

// LockerConflictError reports lockers already held by another active appointment.
type LockerConflictError struct {
	Date     kernel.Date
	TimeSlot kernel.TimeSlot
	Lockers  []int
}

func NewLockerConflictError(date kernel.Date, slot kernel.TimeSlot, lockers []int) *LockerConflictError {
	return &LockerConflictError{Date: date, TimeSlot: slot, Lockers: slices.Clone(lockers)}
}

func (e *LockerConflictError) Error() string {
	parts := make([]string, len(e.Lockers))
	for i, l := range e.Lockers {
		parts[i] = fmt.Sprint(l)
	}
	return fmt.Sprintf("%s: lockers [%s] are already reserved on %s at %s",
		errs.ErrConflict, strings.Join(parts, ", "), e.Date, e.TimeSlot)
}

func (e *LockerConflictError) Unwrap() error {
	return errs.ErrConflict
}

// LockerAvailabilityValidator decides whether requested lockers are free in a
// slot. Locker numbers are global: a locker held by any user's active
// appointment is occupied for everyone.
//
// Example usage:
//
//	validator := services.NewLockerAvailabilityValidator()
//	availability := validator.Check(services.AvailabilityRequest{
//	    Date: date, TimeSlot: slot, Lockers: []int{1, 2},
//	}, services.OccupanciesOf(activeInSlot))
//	if err := availability.Err(date, slot); err != nil {
//	    return err
//	}
type LockerAvailabilityValidator struct{}

func NewLockerAvailabilityValidator() LockerAvailabilityValidator {
	return LockerAvailabilityValidator{}
}

// Check computes occupied and conflicting lockers. Occupancies on another date
// or slot, and the excluded appointment, are ignored.
func (LockerAvailabilityValidator) Check(req AvailabilityRequest, occupancies []Occupancy) Availability {
	occupied := make([]int, 0)
	for _, o := range occupancies {
		if !o.Date.IsEqual(req.Date) || !o.TimeSlot.IsEqual(req.TimeSlot) {
			continue
		}
		if req.Exclude != nil && o.AppointmentID.IsEqual(*req.Exclude) {
			continue
		}
		occupied = append(occupied, o.Lockers...)
	}
	slices.Sort(occupied)
	occupied = slices.Compact(occupied)

	conflicting := make([]int, 0)
	for _, l := range req.Lockers {
		if _, found := slices.BinarySearch(occupied, l); found {
			conflicting = append(conflicting, l)
		}
	}
	slices.Sort(conflicting)
	conflicting = slices.Compact(conflicting)

	return Availability{
		Available:          len(conflicting) == 0,
		OccupiedLockers:    occupied,
		ConflictingLockers: conflicting,
	}
}

// Err returns a LockerConflictError when the lockers are not available.
func (a Availability) Err(date kernel.Date, slot kernel.TimeSlot) error {
	if a.Available {
		return nil
	}
	return NewLockerConflictError(date, slot, a.ConflictingLockers)
}
