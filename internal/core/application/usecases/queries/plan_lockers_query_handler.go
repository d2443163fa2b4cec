package queries

import (
	"context"
	"fmt"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/packing"
	"hako/internal/core/domain/model/unit"
	"hako/internal/core/domain/services"
	"hako/internal/pkg/clock"
	"hako/internal/pkg/errs"
	"hako/internal/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PlanLockersQueryHandler packs units into the lockers still free in a slot.
type PlanLockersQueryHandler struct {
	db     *gorm.DB
	policy services.ReservationPolicy
	clock  clock.Clock
	logger *zap.Logger
}

func NewPlanLockersQueryHandler(
	db *gorm.DB,
	policy services.ReservationPolicy,
	clk clock.Clock,
	logger *zap.Logger,
) PlanLockersQueryHandler {
	return PlanLockersQueryHandler{
		db:     db,
		policy: policy,
		clock:  clk,
		logger: logger.With(zap.String("component", "plan_lockers")),
	}
}

type plannableUnit struct {
	id         kernel.UUID
	ownerID    kernel.UUID
	productID  kernel.UUID
	dimensions kernel.Dimensions
	status     unit.Status
}

// Handle loads the units, checks they can be booked by the actor and runs the
// packing engine with at most as many virtual lockers as there are free
// physical ones. Virtual locker i is the i-th free locker in ascending order.
func (h PlanLockersQueryHandler) Handle(ctx context.Context, query PlanLockersQuery) (PlanLockersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return PlanLockersQueryResponse{}, err
	}
	if err := h.policy.ValidateSchedule(query.Date(), query.TimeSlot(), h.clock.Now()); err != nil {
		return PlanLockersQueryResponse{}, err
	}

	units, err := h.loadUnits(ctx, query.UnitIDs())
	if err != nil {
		return PlanLockersQueryResponse{}, err
	}
	items := make([]packing.Item, 0, len(units))
	for _, id := range query.UnitIDs() {
		u, ok := units[id]
		if !ok {
			return PlanLockersQueryResponse{}, errs.NewObjectNotFoundError("unitId", id)
		}
		if !query.Actor().CanAccess(u.ownerID) {
			return PlanLockersQueryResponse{}, errs.NewAccessDeniedError("unit", id)
		}
		if u.status != unit.Available {
			return PlanLockersQueryResponse{}, errs.NewRuleViolatedErrorWithCause(
				"unit_not_available", fmt.Errorf("unit %s is %s", id, u.status))
		}
		items = append(items, packing.Item{ID: id.String(), Dimensions: u.dimensions, Quantity: 1})
	}

	occupancies, err := slotOccupancies(ctx, h.db, query.Date(), query.TimeSlot())
	if err != nil {
		return PlanLockersQueryResponse{}, err
	}
	availability := services.NewLockerAvailabilityValidator().Check(services.AvailabilityRequest{
		Date:     query.Date(),
		TimeSlot: query.TimeSlot(),
	}, occupancies)
	free := freeLockers(h.policy.LockerCount(), availability.OccupiedLockers)
	if len(free) == 0 {
		return PlanLockersQueryResponse{}, errs.NewRuleViolatedErrorWithCause(
			"no_free_lockers", fmt.Errorf("every locker is reserved on %s at %s", query.Date(), query.TimeSlot()))
	}

	result, err := packing.NewEngine(packing.WithMaxLockers(len(free))).Pack(items)
	if err != nil {
		return PlanLockersQueryResponse{}, err
	}
	metrics.PackingScore.Observe(result.Metrics.Score)

	response, err := toPlan(result, free, units)
	if err != nil {
		return PlanLockersQueryResponse{}, err
	}
	response.Date = query.Date()
	response.TimeSlot = query.TimeSlot()

	if !response.IsComplete() {
		h.logger.Info("locker plan is incomplete",
			zap.String("date", query.Date().String()),
			zap.String("timeSlot", query.TimeSlot().String()),
			zap.Int("rejected", len(response.Rejected)),
			zap.Int("failed", len(response.Failed)),
		)
	}
	return response, nil
}

func (h PlanLockersQueryHandler) loadUnits(ctx context.Context, ids []kernel.UUID) (map[kernel.UUID]plannableUnit, error) {
	keys := make([]uuid.UUID, len(ids))
	for i, id := range ids {
		keys[i] = id.Bytes()
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			owner_id,
			product_id,
			length,
			width,
			height,
			status
		FROM product_units
		WHERE id IN ?
	`, keys).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	units := make(map[kernel.UUID]plannableUnit, len(ids))
	for rows.Next() {
		var id, ownerID, productID uuid.UUID
		var length, width, height float64
		var status int16

		if err = rows.Scan(&id, &ownerID, &productID, &length, &width, &height, &status); err != nil {
			return nil, err
		}

		var u plannableUnit
		if u.id, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if u.ownerID, err = kernel.UUIDFromBytes(ownerID[:]); err != nil {
			return nil, err
		}
		if u.productID, err = kernel.UUIDFromBytes(productID[:]); err != nil {
			return nil, err
		}
		if u.dimensions, err = kernel.NewDimensions(length, width, height); err != nil {
			return nil, err
		}
		u.status = unit.Status(status)
		units[u.id] = u
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return units, nil
}

// toPlan maps virtual locker i of result onto free[i]. The engine is capped at
// len(free) lockers, so an index past the end means the cap was not honoured.
func toPlan(result packing.Result, free []int, units map[kernel.UUID]plannableUnit) (PlanLockersQueryResponse, error) {
	plan := PlanLockersQueryResponse{
		Lockers:  make([]PlannedLocker, 0, len(result.Lockers)),
		Rejected: make([]UnplannedUnit, 0, len(result.Rejected)),
		Failed:   make([]UnplannedUnit, 0, len(result.Failed)),
		Metrics:  result.Metrics,
	}

	for _, layout := range result.Lockers {
		if layout.Index >= len(free) {
			return PlanLockersQueryResponse{}, fmt.Errorf("virtual locker %d has no free physical locker", layout.Index)
		}
		locker := PlannedLocker{
			Locker:    free[layout.Index],
			Units:     make([]PlannedUnit, 0, len(layout.Placements)),
			UsedSlots: layout.UsedSlots,
			FreeSlots: layout.FreeSlots,
		}
		for _, p := range layout.Placements {
			id, err := kernel.UUIDFromString(p.ItemID)
			if err != nil {
				return PlanLockersQueryResponse{}, err
			}
			locker.Units = append(locker.Units, PlannedUnit{
				UnitID:      id,
				ProductID:   units[id].productID,
				Dimensions:  p.Dimensions,
				Position:    p.Position,
				Orientation: p.Orientation,
			})
		}
		plan.Lockers = append(plan.Lockers, locker)
	}

	var err error
	if plan.Rejected, err = unplanned(plan.Rejected, result.Rejected); err != nil {
		return PlanLockersQueryResponse{}, err
	}
	if plan.Failed, err = unplanned(plan.Failed, result.Failed); err != nil {
		return PlanLockersQueryResponse{}, err
	}
	return plan, nil
}

func unplanned(dst []UnplannedUnit, src []packing.Unplaced) ([]UnplannedUnit, error) {
	for _, u := range src {
		id, err := kernel.UUIDFromString(u.ItemID)
		if err != nil {
			return nil, err
		}
		dst = append(dst, UnplannedUnit{UnitID: id, Reason: u.Reason})
	}
	return dst, nil
}
