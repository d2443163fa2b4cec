package commands_test

import (
	"errors"
	"testing"
	"time"

	"hako/internal/core/application/usecases/commands"
	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/order"
	"hako/internal/core/domain/model/penalty"
	"hako/internal/core/domain/model/unit"
	"hako/internal/core/domain/services"
	"hako/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAppointmentCommandHandler_Handle_Success(t *testing.T) {
	w := newWorld(t)
	orderID, productID, unitIDs := w.paidOrder(w.user.UserID(), 2)

	id, err := w.create(w.user, orderID, 16, 10,
		commands.PickupRequest{UnitID: unitIDs[0], Locker: 1},
		commands.PickupRequest{UnitID: unitIDs[1], Locker: 2},
	)
	require.NoError(t, err)

	appt := w.store.appointment(id)
	require.NotNil(t, appt)
	assert.Equal(t, appointment.Scheduled, appt.Status())
	assert.Equal(t, []int{1, 2}, appt.LockerNumbers())
	assert.Equal(t, "2026-10-16", appt.Date().String())

	for i, unitID := range unitIDs {
		u := w.store.unit(unitID)
		assert.Equal(t, unit.Reserved, u.Status())
		assert.Equal(t, i+1, *u.Locker())
		assert.Equal(t, w.clock.Now(), *u.ReservedAt())
	}

	o := w.store.order(orderID)
	assert.Equal(t, order.ReadyForPickup, o.Status())
	line, ok := o.Line(productID)
	require.True(t, ok)
	assert.Equal(t, 2, line.Claimed())

	assert.Equal(t, []appointment.Status{appointment.Scheduled}, w.notifier.statuses())
}

func TestCreateAppointmentCommandHandler_Handle_LeadTime(t *testing.T) {
	w := newWorld(t)
	orderID, _, unitIDs := w.paidOrder(w.user.UserID(), 1)
	item := commands.PickupRequest{UnitID: unitIDs[0], Locker: 1}

	w.clock.Set(time.Date(2026, 10, 15, 9, 30, 0, 0, bogota))
	_, err := w.create(w.user, orderID, 15, 10, item)
	require.ErrorIs(t, err, errs.ErrRuleViolated)
	assert.Contains(t, err.Error(), "lead_time")
	assert.Equal(t, unit.Available, w.store.unit(unitIDs[0]).Status())

	w.clock.Set(time.Date(2026, 10, 15, 8, 30, 0, 0, bogota))
	_, err = w.create(w.user, orderID, 15, 10, item)
	require.NoError(t, err)
}

func TestCreateAppointmentCommandHandler_Handle_BookingWindow(t *testing.T) {
	w := newWorld(t)
	orderID, _, unitIDs := w.paidOrder(w.user.UserID(), 1)

	_, err := w.create(w.user, orderID, 23, 10, commands.PickupRequest{UnitID: unitIDs[0], Locker: 1})
	require.ErrorIs(t, err, errs.ErrRuleViolated)
	assert.Contains(t, err.Error(), "booking_window")
}

func TestCreateAppointmentCommandHandler_Handle_LockerConflict(t *testing.T) {
	w := newWorld(t)
	w.booked(16, 10, 2)

	other := w.actor(kernel.NewUUID())
	orderID, _, unitIDs := w.paidOrder(other.UserID(), 2)
	_, err := w.create(other, orderID, 16, 10,
		commands.PickupRequest{UnitID: unitIDs[0], Locker: 1},
		commands.PickupRequest{UnitID: unitIDs[1], Locker: 2},
	)

	require.ErrorIs(t, err, errs.ErrConflict)
	var conflict *services.LockerConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, []int{2}, conflict.Lockers)
	assert.Equal(t, unit.Available, w.store.unit(unitIDs[0]).Status())
	assert.Equal(t, order.Paid, w.store.order(orderID).Status())

	_, err = w.create(other, orderID, 16, 11,
		commands.PickupRequest{UnitID: unitIDs[0], Locker: 1},
		commands.PickupRequest{UnitID: unitIDs[1], Locker: 2},
	)
	require.NoError(t, err)
}

func TestCreateAppointmentCommandHandler_Handle_LockerOutOfRange(t *testing.T) {
	w := newWorld(t)
	orderID, _, unitIDs := w.paidOrder(w.user.UserID(), 1)

	_, err := w.create(w.user, orderID, 16, 10, commands.PickupRequest{UnitID: unitIDs[0], Locker: 13})
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestCreateAppointmentCommandHandler_Handle_ActivePenalty(t *testing.T) {
	w := newWorld(t)
	p, err := penalty.NewPenalty(kernel.NewUUID(), w.user.UserID(), w.date(16), w.clock.Now().Add(-time.Hour))
	require.NoError(t, err)
	w.store.putPenalty(p)
	orderID, _, unitIDs := w.paidOrder(w.user.UserID(), 1)
	item := commands.PickupRequest{UnitID: unitIDs[0], Locker: 1}

	_, err = w.create(w.user, orderID, 16, 10, item)
	require.ErrorIs(t, err, errs.ErrRuleViolated)
	assert.Contains(t, err.Error(), "penalty_active")

	_, err = w.create(w.user, orderID, 17, 10, item)
	require.NoError(t, err)
}

func TestCreateAppointmentCommandHandler_Handle_ExpiredPenaltyIsInert(t *testing.T) {
	w := newWorld(t)
	p, err := penalty.NewPenalty(kernel.NewUUID(), w.user.UserID(), w.date(16), w.clock.Now().Add(-penalty.Lifetime))
	require.NoError(t, err)
	w.store.putPenalty(p)
	orderID, _, unitIDs := w.paidOrder(w.user.UserID(), 1)

	_, err = w.create(w.user, orderID, 16, 10, commands.PickupRequest{UnitID: unitIDs[0], Locker: 1})
	require.NoError(t, err)
}

func TestCreateAppointmentCommandHandler_Handle_LapsedAppointmentBlocks(t *testing.T) {
	w := newWorld(t)
	w.booked(15, 10, 1)
	w.clock.Set(time.Date(2026, 10, 15, 11, 0, 0, 0, bogota))

	orderID, _, unitIDs := w.paidOrder(w.user.UserID(), 1)
	_, err := w.create(w.user, orderID, 16, 10, commands.PickupRequest{UnitID: unitIDs[0], Locker: 1})

	require.ErrorIs(t, err, errs.ErrRuleViolated)
	assert.Contains(t, err.Error(), "lapsed_appointment")
}

func TestCreateAppointmentCommandHandler_Handle_UnitChecks(t *testing.T) {
	t.Run("unit of another user", func(t *testing.T) {
		w := newWorld(t)
		orderID, _, _ := w.paidOrder(w.user.UserID(), 1)
		_, _, foreign := w.paidOrder(kernel.NewUUID(), 1)

		_, err := w.create(w.user, orderID, 16, 10, commands.PickupRequest{UnitID: foreign[0], Locker: 1})
		require.ErrorIs(t, err, errs.ErrAccessDenied)
	})

	t.Run("unit of another order", func(t *testing.T) {
		w := newWorld(t)
		orderID, _, _ := w.paidOrder(w.user.UserID(), 1)
		_, _, otherUnits := w.paidOrder(w.user.UserID(), 1)

		_, err := w.create(w.user, orderID, 16, 10, commands.PickupRequest{UnitID: otherUnits[0], Locker: 1})
		require.ErrorIs(t, err, errs.ErrRuleViolated)
		assert.Contains(t, err.Error(), "unit_order_mismatch")
	})

	t.Run("unit already reserved", func(t *testing.T) {
		w := newWorld(t)
		_, orderID, unitIDs := w.booked(16, 10, 1)

		_, err := w.create(w.user, orderID, 16, 11, commands.PickupRequest{UnitID: unitIDs[0], Locker: 1})
		require.ErrorIs(t, err, errs.ErrRuleViolated)
		assert.Contains(t, err.Error(), "unit_not_available")
	})

	t.Run("unknown unit", func(t *testing.T) {
		w := newWorld(t)
		orderID, _, _ := w.paidOrder(w.user.UserID(), 1)

		_, err := w.create(w.user, orderID, 16, 10, commands.PickupRequest{UnitID: kernel.NewUUID(), Locker: 1})
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

func TestNewCreateAppointmentCommand_InvalidInput(t *testing.T) {
	w := newWorld(t)
	unitID := kernel.NewUUID()

	_, err := commands.NewCreateAppointmentCommand(kernel.UUID{}, w.user, kernel.UUID{}, w.date(16), w.slot(10), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = commands.NewCreateAppointmentCommand(kernel.NewUUID(), w.user, kernel.NewUUID(), w.date(16), w.slot(10),
		[]commands.PickupRequest{{UnitID: unitID, Locker: 1}, {UnitID: unitID, Locker: 2}})
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	h := commands.NewCreateAppointmentCommandHandler(w.store, w.policy, w.clock, w.notifier)
	require.ErrorIs(t, h.Handle(t.Context(), commands.CreateAppointmentCommand{}),
		commands.ErrCreateAppointmentCommandIsNotConstructed)
}
