package commands

import (
	"context"
	"errors"

	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/domain/model/order"
	"hako/internal/core/domain/model/unit"
	"hako/internal/core/ports"
	"hako/internal/pkg/errs"
	"hako/internal/pkg/metrics"

	"go.uber.org/zap"
)

// unitLookup finds the unit behind a pickup item. It returns
// errs.ErrObjectNotFound when it has no candidate.
type unitLookup struct {
	name string
	find func(ctx context.Context, repo ports.ProductUnitRepository, a *appointment.Appointment, item appointment.PickupItem) (*unit.ProductUnit, error)
}

// unitLookupChain is tried in order. Stored references can go stale when
// units are re-created by the catalog, so the later lookups fall back to the
// user's units of the same product.
var unitLookupChain = []unitLookup{
	{
		name: "reference",
		find: func(ctx context.Context, repo ports.ProductUnitRepository, _ *appointment.Appointment, item appointment.PickupItem) (*unit.ProductUnit, error) {
			u, err := repo.GetForUpdate(ctx, item.UnitID())
			if err != nil {
				return nil, err
			}
			if u.Status() != unit.Reserved {
				return nil, errs.NewObjectNotFoundError("reserved unit", item.UnitID().String())
			}
			return u, nil
		},
	},
	{
		name: "reserved_in_locker",
		find: func(ctx context.Context, repo ports.ProductUnitRepository, a *appointment.Appointment, item appointment.PickupItem) (*unit.ProductUnit, error) {
			locker := item.Locker()
			return repo.FindFirstForUpdate(ctx, ports.UnitFilter{
				OwnerID:   a.UserID(),
				ProductID: item.ProductID(),
				Status:    unit.Reserved,
				Locker:    &locker,
			})
		},
	},
	{
		name: "available_of_product",
		find: func(ctx context.Context, repo ports.ProductUnitRepository, a *appointment.Appointment, item appointment.PickupItem) (*unit.ProductUnit, error) {
			return repo.FindFirstForUpdate(ctx, ports.UnitFilter{
				OwnerID:   a.UserID(),
				ProductID: item.ProductID(),
				Status:    unit.Available,
			})
		},
	},
}

// resolveUnit walks unitLookupChain. A nil unit with a nil error means no
// lookup matched; infrastructure errors are returned as is.
func resolveUnit(
	ctx context.Context,
	repo ports.ProductUnitRepository,
	a *appointment.Appointment,
	item appointment.PickupItem,
) (*unit.ProductUnit, string, error) {
	for _, lookup := range unitLookupChain {
		u, err := lookup.find(ctx, repo, a, item)
		if err == nil {
			return u, lookup.name, nil
		}
		if !errors.Is(err, errs.ErrObjectNotFound) {
			return nil, lookup.name, err
		}
	}
	return nil, "", nil
}

// settleItems applies settle to the unit of every item and releases the
// order claim of the item. Units that cannot be resolved are logged and skipped.
func settleItems(
	ctx context.Context,
	logger *zap.Logger,
	operation string,
	repo ports.ProductUnitRepository,
	o *order.Order,
	a *appointment.Appointment,
	settle func(u *unit.ProductUnit) (bool, error),
) error {
	for _, item := range a.Items() {
		u, via, err := resolveUnit(ctx, repo, a, item)
		if err != nil {
			return err
		}

		if u == nil {
			metrics.UnresolvedUnitsTotal.WithLabelValues(operation).Inc()
			logger.Warn("pickup item unit not found, skipping",
				zap.String("operation", operation),
				zap.String("appointment_id", a.ID().String()),
				zap.String("unit_id", item.UnitID().String()),
				zap.String("product_id", item.ProductID().String()),
				zap.Int("locker", item.Locker()),
			)
		} else {
			if !u.ID().IsEqual(item.UnitID()) {
				logger.Info("pickup item resolved to another unit",
					zap.String("operation", operation),
					zap.String("lookup", via),
					zap.String("appointment_id", a.ID().String()),
					zap.String("unit_id", item.UnitID().String()),
					zap.String("resolved_unit_id", u.ID().String()),
				)
			}

			changed, settleErr := settle(u)
			if settleErr != nil {
				return settleErr
			}
			if changed {
				if err = repo.Update(ctx, u); err != nil {
					return err
				}
			}
		}

		if o != nil {
			if err = o.Release(item.ProductID()); err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
				return err
			}
		}
	}
	return nil
}

// releaseUnit returns a reserved unit to the shelf; available units are left alone.
func releaseUnit(u *unit.ProductUnit) (bool, error) {
	if u.Status() != unit.Reserved {
		return false, nil
	}
	return true, u.Release()
}

// loadOrderLenient returns nil when the order no longer exists so that a
// missing order does not block closing an appointment.
func loadOrderLenient(ctx context.Context, logger *zap.Logger, repo ports.OrderRepository, a *appointment.Appointment) (*order.Order, error) {
	o, err := repo.GetForUpdate(ctx, a.OrderID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		logger.Warn("appointment order not found, skipping order bookkeeping",
			zap.String("appointment_id", a.ID().String()),
			zap.String("order_id", a.OrderID().String()),
		)
		return nil, nil
	}
	return o, err
}
