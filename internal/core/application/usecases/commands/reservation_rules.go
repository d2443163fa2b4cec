package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/order"
	"hako/internal/core/domain/model/penalty"
	"hako/internal/core/domain/model/unit"
	"hako/internal/core/domain/services"
	"hako/internal/core/ports"
	"hako/internal/pkg/errs"
	"hako/internal/pkg/metrics"
)

// PickupRequest asks for one product unit to be placed in one locker.
type PickupRequest struct {
	UnitID kernel.UUID
	Locker int
}

func requestedLockers(requests []PickupRequest) []int {
	lockers := make([]int, len(requests))
	for i, r := range requests {
		lockers[i] = r.Locker
	}
	return lockers
}

func validatePickupRequests(requests []PickupRequest) error {
	if len(requests) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	seen := make(map[kernel.UUID]struct{}, len(requests))
	for i, r := range requests {
		if err := r.UnitID.Validate(); err != nil {
			return errs.NewValueIsRequiredErrorWithCause(fmt.Sprintf("items[%d].unitId", i), err)
		}
		if _, dup := seen[r.UnitID]; dup {
			return errs.NewValueIsInvalidErrorWithCause(
				fmt.Sprintf("items[%d].unitId", i), fmt.Errorf("unit %s requested twice", r.UnitID))
		}
		seen[r.UnitID] = struct{}{}
	}
	return nil
}

// ensureActive rejects changes to appointments that reached a terminal state.
func ensureActive(a *appointment.Appointment, action string) error {
	if !a.IsActive() {
		return errs.NewRuleViolatedErrorWithCause(
			"appointment_status",
			fmt.Errorf("%s appointment cannot be %s", a.Status(), action),
		)
	}
	return nil
}

// ensureNoActivePenalty rejects bookings on a day the user was penalized for.
func ensureNoActivePenalty(
	ctx context.Context,
	repo ports.PenaltyRepository,
	userID kernel.UUID,
	date kernel.Date,
	now time.Time,
) error {
	penalties, err := repo.FindByUserAndDate(ctx, userID, date, penalty.PurgeBefore(now))
	if err != nil {
		return err
	}
	for _, p := range penalties {
		if p.Blocks(date, now) {
			return errs.NewRuleViolatedErrorWithCause(
				"penalty_active",
				fmt.Errorf("missed appointment on %s blocks bookings until %s",
					date, p.ExpiresAt().Format(time.RFC3339)),
			)
		}
	}
	return nil
}

// ensureNoLapsedAppointment rejects users holding an active appointment whose
// slot already passed. exclude skips the appointment being changed.
func ensureNoLapsedAppointment(
	ctx context.Context,
	repo ports.AppointmentRepository,
	policy services.ReservationPolicy,
	userID kernel.UUID,
	now time.Time,
	exclude *kernel.UUID,
) error {
	active, err := repo.FindActiveByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, a := range active {
		if exclude != nil && a.ID().IsEqual(*exclude) {
			continue
		}
		if policy.IsLapsed(a, now) {
			return errs.NewRuleViolatedErrorWithCause(
				"lapsed_appointment",
				fmt.Errorf("appointment %s on %s at %s was not picked up, reschedule it first",
					a.ID(), a.Date(), a.TimeSlot()),
			)
		}
	}
	return nil
}

// ensureLockersFree runs the availability check against the active
// appointments of the slot.
func ensureLockersFree(
	ctx context.Context,
	repo ports.AppointmentRepository,
	date kernel.Date,
	slot kernel.TimeSlot,
	lockers []int,
	exclude *kernel.UUID,
) error {
	active, err := repo.FindActiveBySlot(ctx, date, slot)
	if err != nil {
		return err
	}

	availability := services.NewLockerAvailabilityValidator().Check(services.AvailabilityRequest{
		Date:     date,
		TimeSlot: slot,
		Lockers:  lockers,
		Exclude:  exclude,
	}, services.OccupanciesOf(active))

	if err = availability.Err(date, slot); err != nil {
		metrics.LockerConflictsTotal.Inc()
		return err
	}
	return nil
}

// countConflict records a claim conflict detected by storage.
func countConflict(err error) error {
	var conflict *services.LockerConflictError
	if errors.As(err, &conflict) {
		metrics.LockerConflictsTotal.Inc()
	}
	return err
}

// loadOrderFor locks the order of an appointment and checks it belongs to userID.
func loadOrderFor(ctx context.Context, repo ports.OrderRepository, orderID, userID kernel.UUID) (*order.Order, error) {
	o, err := repo.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(userID) {
		return nil, errs.NewAccessDeniedError("order", orderID.String())
	}
	return o, nil
}

// reserveUnits locks each requested unit, checks it can go into a locker of
// this order for this user, reserves it and claims it on the order.
func reserveUnits(
	ctx context.Context,
	repo ports.ProductUnitRepository,
	o *order.Order,
	userID kernel.UUID,
	requests []PickupRequest,
	now time.Time,
) ([]appointment.PickupItem, error) {
	items := make([]appointment.PickupItem, 0, len(requests))
	for _, r := range requests {
		u, err := repo.GetForUpdate(ctx, r.UnitID)
		if err != nil {
			return nil, err
		}
		if !u.IsOwnedBy(userID) {
			return nil, errs.NewAccessDeniedError("product unit", u.ID().String())
		}
		if !u.OrderID().IsEqual(o.ID()) {
			return nil, errs.NewRuleViolatedErrorWithCause(
				"unit_order_mismatch",
				fmt.Errorf("unit %s belongs to order %s, not %s", u.ID(), u.OrderID(), o.ID()),
			)
		}
		if u.Status() != unit.Available {
			return nil, errs.NewRuleViolatedErrorWithCause(
				"unit_not_available",
				fmt.Errorf("unit %s is %s", u.ID(), u.Status()),
			)
		}

		if err = u.Reserve(r.Locker, now); err != nil {
			return nil, err
		}
		if err = repo.Update(ctx, u); err != nil {
			return nil, err
		}
		if err = o.Claim(u.ProductID(), r.Locker); err != nil {
			return nil, err
		}

		dims := u.Dimensions()
		item, err := appointment.NewPickupItem(u.ID(), u.ProductID(), r.Locker, &dims)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
