package queries

import (
	"errors"
	"slices"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"
	"hako/internal/pkg/guard"
)

var (
	ErrCheckLockerAvailabilityQueryIsNotConstructed = errors.New(
		"CheckLockerAvailabilityQuery must be created via NewCheckLockerAvailabilityQuery constructor",
	)
)

// CheckLockerAvailabilityQuery asks whether lockers are free in one slot.
//
// Example:
//
//	query, err := NewCheckLockerAvailabilityQuery(date, slot, []int{1, 2}, nil)
//	if err != nil {
//	    return err
//	}
//	availability, err := handler.Handle(ctx, query)
//	if !availability.Available {
//	    fmt.Println("taken:", availability.ConflictingLockers)
//	}
type CheckLockerAvailabilityQuery struct {
	date     kernel.Date
	timeSlot kernel.TimeSlot
	lockers  []int
	exclude  *kernel.UUID

	guard guard.ConstructorGuard
}

// NewCheckLockerAvailabilityQuery builds the query. exclude names an
// appointment whose own lockers must not count as occupied, nil otherwise.
func NewCheckLockerAvailabilityQuery(
	date kernel.Date,
	timeSlot kernel.TimeSlot,
	lockers []int,
	exclude *kernel.UUID,
) (CheckLockerAvailabilityQuery, error) {
	var errLockers, errExclude error
	if len(lockers) == 0 {
		errLockers = errs.NewValueIsRequiredError("lockers")
	}
	if exclude != nil {
		if err := exclude.Validate(); err != nil {
			errExclude = errs.NewValueIsInvalidErrorWithCause("exclude", err)
		}
	}
	if err := errors.Join(date.Validate(), timeSlot.Validate(), errLockers, errExclude); err != nil {
		return CheckLockerAvailabilityQuery{}, err
	}

	return CheckLockerAvailabilityQuery{
		date:     date,
		timeSlot: timeSlot,
		lockers:  slices.Clone(lockers),
		exclude:  exclude,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q CheckLockerAvailabilityQuery) Validate() error {
	return q.guard.Validate(ErrCheckLockerAvailabilityQueryIsNotConstructed)
}

func (q CheckLockerAvailabilityQuery) Date() kernel.Date {
	return q.date
}

func (q CheckLockerAvailabilityQuery) TimeSlot() kernel.TimeSlot {
	return q.timeSlot
}

func (q CheckLockerAvailabilityQuery) Lockers() []int {
	return slices.Clone(q.lockers)
}

func (q CheckLockerAvailabilityQuery) Exclude() *kernel.UUID {
	return q.exclude
}

// CheckLockerAvailabilityQueryResponse is the availability of a slot. Every
// locker list is ascending.
type CheckLockerAvailabilityQueryResponse struct {
	Date               kernel.Date
	TimeSlot           kernel.TimeSlot
	Available          bool
	OccupiedLockers    []int
	ConflictingLockers []int
	FreeLockers        []int
}
