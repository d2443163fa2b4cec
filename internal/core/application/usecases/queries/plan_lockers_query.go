package queries

import (
	"errors"
	"fmt"
	"slices"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/packing"
	"hako/internal/pkg/errs"
	"hako/internal/pkg/guard"
)

var (
	ErrPlanLockersQueryIsNotConstructed = errors.New(
		"PlanLockersQuery must be created via NewPlanLockersQuery constructor",
	)
)

// PlanLockersQuery asks how a set of available units would be packed into
// the free lockers of a slot. The plan reserves nothing; the caller books it
// with CreateAppointmentCommand.
//
// Example:
//
//	query, err := NewPlanLockersQuery(actor, date, slot, []kernel.UUID{unitA, unitB})
//	if err != nil {
//	    return err
//	}
//	plan, err := handler.Handle(ctx, query)
//	for _, l := range plan.Lockers {
//	    fmt.Println(l.Locker, len(l.Units))
//	}
type PlanLockersQuery struct {
	actor    kernel.Actor
	date     kernel.Date
	timeSlot kernel.TimeSlot
	unitIDs  []kernel.UUID

	guard guard.ConstructorGuard
}

func NewPlanLockersQuery(
	actor kernel.Actor,
	date kernel.Date,
	timeSlot kernel.TimeSlot,
	unitIDs []kernel.UUID,
) (PlanLockersQuery, error) {
	var errUnits error
	if len(unitIDs) == 0 {
		errUnits = errs.NewValueIsRequiredError("unitIds")
	}
	seen := make(map[kernel.UUID]struct{}, len(unitIDs))
	for i, id := range unitIDs {
		if err := id.Validate(); err != nil {
			errUnits = errors.Join(errUnits, errs.NewValueIsRequiredErrorWithCause(fmt.Sprintf("unitIds[%d]", i), err))
			continue
		}
		if _, dup := seen[id]; dup {
			errUnits = errors.Join(errUnits, errs.NewValueIsInvalidErrorWithCause(
				fmt.Sprintf("unitIds[%d]", i), fmt.Errorf("unit %s listed twice", id)))
		}
		seen[id] = struct{}{}
	}
	if err := errors.Join(actor.Validate(), date.Validate(), timeSlot.Validate(), errUnits); err != nil {
		return PlanLockersQuery{}, err
	}

	return PlanLockersQuery{
		actor:    actor,
		date:     date,
		timeSlot: timeSlot,
		unitIDs:  slices.Clone(unitIDs),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q PlanLockersQuery) Validate() error {
	return q.guard.Validate(ErrPlanLockersQueryIsNotConstructed)
}

func (q PlanLockersQuery) Actor() kernel.Actor {
	return q.actor
}

func (q PlanLockersQuery) Date() kernel.Date {
	return q.date
}

func (q PlanLockersQuery) TimeSlot() kernel.TimeSlot {
	return q.timeSlot
}

func (q PlanLockersQuery) UnitIDs() []kernel.UUID {
	return slices.Clone(q.unitIDs)
}

// PlannedUnit is a unit placed in a planned locker.
type PlannedUnit struct {
	UnitID      kernel.UUID
	ProductID   kernel.UUID
	Dimensions  kernel.Dimensions
	Position    packing.Position
	Orientation packing.Orientation
}

// PlannedLocker is the content one physical locker would receive.
type PlannedLocker struct {
	Locker    int
	Units     []PlannedUnit
	UsedSlots int
	FreeSlots int
}

// UnplannedUnit is a unit the engine could not place.
type UnplannedUnit struct {
	UnitID kernel.UUID
	Reason string
}

// PlanLockersQueryResponse is a packing plan over physical lockers. Rejected
// units are larger than any locker; Failed units found no space in the free
// lockers of the slot.
type PlanLockersQueryResponse struct {
	Date     kernel.Date
	TimeSlot kernel.TimeSlot
	Lockers  []PlannedLocker
	Rejected []UnplannedUnit
	Failed   []UnplannedUnit
	Metrics  packing.Metrics
}

// IsComplete reports whether every unit got a locker.
func (r PlanLockersQueryResponse) IsComplete() bool {
	return len(r.Rejected) == 0 && len(r.Failed) == 0
}
