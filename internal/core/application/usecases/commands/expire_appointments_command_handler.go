package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/penalty"
	"hako/internal/core/domain/services"
	"hako/internal/pkg/clock"
	"hako/internal/pkg/metrics"

	"go.uber.org/zap"
)

// ExpireAppointmentsCommandHandler marks lapsed appointments as no-show,
// releases their units and order claims, and penalizes the user for that day.
type ExpireAppointmentsCommandHandler struct {
	uowFactory UoWFactory
	policy     services.ReservationPolicy
	clock      clock.Clock
	notifier   StatusNotifier
	logger     *zap.Logger
}

func NewExpireAppointmentsCommandHandler(
	uowFactory UoWFactory,
	policy services.ReservationPolicy,
	clk clock.Clock,
	notifier StatusNotifier,
	logger *zap.Logger,
) ExpireAppointmentsCommandHandler {
	return ExpireAppointmentsCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
		clock:      clk,
		notifier:   notifier,
		logger:     logger,
	}
}

// Handle expires every lapsed appointment in its own transaction and returns
// how many were expired. A failure on one appointment does not stop the
// others; all failures are joined into the returned error.
func (h *ExpireAppointmentsCommandHandler) Handle(ctx context.Context, cmd ExpireAppointmentsCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	now := h.clock.Now()
	candidates, err := h.findLapsed(ctx, now)
	if err != nil {
		return 0, err
	}

	var (
		expired int
		failed  []error
	)
	for _, id := range candidates {
		if ctx.Err() != nil {
			failed = append(failed, ctx.Err())
			break
		}

		ok, expireErr := h.expire(ctx, id, now)
		if expireErr != nil {
			h.logger.Error("failed to expire appointment",
				zap.String("appointment_id", id.String()),
				zap.Error(expireErr),
			)
			failed = append(failed, fmt.Errorf("appointment %s: %w", id, expireErr))
			continue
		}
		if ok {
			expired++
		}
	}

	return expired, errors.Join(failed...)
}

func (h *ExpireAppointmentsCommandHandler) findLapsed(ctx context.Context, now time.Time) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	active, err := uow.AppointmentRepository().FindActiveOnOrBefore(ctx, h.policy.Today(now))
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(active))
	for _, a := range active {
		if h.policy.IsLapsed(a, now) {
			ids = append(ids, a.ID())
		}
	}
	return ids, nil
}

// expire re-reads the appointment under lock; it may have been completed or
// rescheduled since the scan.
func (h *ExpireAppointmentsCommandHandler) expire(ctx context.Context, id kernel.UUID, now time.Time) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	appointments := uow.AppointmentRepository()
	appt, err := appointments.GetForUpdate(ctx, id)
	if err != nil {
		return false, err
	}
	if !h.policy.IsLapsed(appt, now) {
		return false, nil
	}

	previous := snapshotOf(appt)
	if err = appt.MarkNoShow(now); err != nil {
		return false, err
	}

	orders := uow.OrderRepository()
	o, err := loadOrderLenient(ctx, h.logger, orders, appt)
	if err != nil {
		return false, err
	}
	if err = settleItems(ctx, h.logger, "expire", uow.ProductUnitRepository(), o, appt, releaseUnit); err != nil {
		return false, err
	}
	if o != nil {
		if err = orders.Update(ctx, o); err != nil {
			return false, err
		}
	}

	p, err := penalty.NewPenalty(kernel.NewUUID(), appt.UserID(), appt.Date(), now)
	if err != nil {
		return false, err
	}
	if err = uow.PenaltyRepository().Add(ctx, p); err != nil {
		return false, err
	}
	if err = appointments.Update(ctx, appt); err != nil {
		return false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	metrics.PenaltiesIssuedTotal.Inc()
	countTransition(appt)
	h.logger.Info("appointment expired",
		zap.String("appointment_id", appt.ID().String()),
		zap.String("user_id", appt.UserID().String()),
		zap.String("date", appt.Date().String()),
		zap.String("time_slot", appt.TimeSlot().String()),
	)
	h.notifier.Notify(ctx, appt, previous)
	return true, nil
}

