package appointment_test

import (
	"testing"
	"time"

	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bogota = time.FixedZone("COT", -5*60*60)

func item(t *testing.T, locker int) appointment.PickupItem {
	t.Helper()
	it, err := appointment.NewPickupItem(kernel.NewUUID(), kernel.NewUUID(), locker, nil)
	require.NoError(t, err)
	return it
}

func newAppointment(t *testing.T, items ...appointment.PickupItem) *appointment.Appointment {
	t.Helper()
	date, err := kernel.NewDate(2026, time.October, 16)
	require.NoError(t, err)
	slot, err := kernel.NewTimeSlot(10)
	require.NoError(t, err)

	a, err := appointment.NewAppointment(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), date, slot, items,
		time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return a
}

func TestNewAppointment(t *testing.T) {
	t.Run("starts scheduled", func(t *testing.T) {
		a := newAppointment(t, item(t, 3), item(t, 1), item(t, 3))

		require.NoError(t, a.Validate())
		assert.Equal(t, appointment.Scheduled, a.Status())
		assert.True(t, a.IsActive())
		assert.Equal(t, []int{1, 3}, a.LockerNumbers())
		assert.Len(t, a.Items(), 3)
		assert.Nil(t, a.CancelledBy())
	})

	t.Run("requires items", func(t *testing.T) {
		date, _ := kernel.NewDate(2026, time.October, 16)
		slot, _ := kernel.NewTimeSlot(10)

		_, err := appointment.NewAppointment(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), date, slot, nil, time.Now())
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "items")
	})

	t.Run("rejects a unit listed twice", func(t *testing.T) {
		it := item(t, 1)
		date, _ := kernel.NewDate(2026, time.October, 16)
		slot, _ := kernel.NewTimeSlot(10)

		_, err := appointment.NewAppointment(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), date, slot,
			[]appointment.PickupItem{it, it}, time.Now())
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("reports missing identifiers and schedule", func(t *testing.T) {
		_, err := appointment.NewAppointment(kernel.UUID{}, kernel.UUID{}, kernel.UUID{}, kernel.Date{}, kernel.TimeSlot{},
			[]appointment.PickupItem{item(t, 1)}, time.Now())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "userId")
		assert.Contains(t, err.Error(), "orderId")
		assert.Contains(t, err.Error(), "date/timeSlot")
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var a appointment.Appointment
		require.ErrorIs(t, a.Validate(), appointment.ErrAppointmentIsNotConstructed)
	})
}

func TestNewPickupItem(t *testing.T) {
	_, err := appointment.NewPickupItem(kernel.NewUUID(), kernel.NewUUID(), 0, nil)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	box, err := kernel.NewDimensions(10, 10, 10)
	require.NoError(t, err)
	it, err := appointment.NewPickupItem(kernel.NewUUID(), kernel.NewUUID(), 2, &box)
	require.NoError(t, err)
	assert.Equal(t, 1, it.Quantity())
	require.NotNil(t, it.Dimensions())
	assert.True(t, box.IsEqual(*it.Dimensions()))
}

func TestAppointment_Transitions(t *testing.T) {
	now := time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)

	t.Run("confirm then complete", func(t *testing.T) {
		a := newAppointment(t, item(t, 1))

		require.NoError(t, a.Confirm(now))
		assert.Equal(t, appointment.Confirmed, a.Status())
		assert.Equal(t, now, *a.ConfirmedAt())

		require.NoError(t, a.Complete(now))
		assert.Equal(t, appointment.Completed, a.Status())
		assert.False(t, a.IsActive())
	})

	t.Run("confirm twice is a rule violation", func(t *testing.T) {
		a := newAppointment(t, item(t, 1))
		require.NoError(t, a.Confirm(now))

		require.ErrorIs(t, a.Confirm(now), errs.ErrRuleViolated)
	})

	t.Run("cancel records who cancelled", func(t *testing.T) {
		a := newAppointment(t, item(t, 1))

		require.NoError(t, a.Cancel(now, kernel.RoleAdmin))
		assert.Equal(t, appointment.Cancelled, a.Status())
		require.NotNil(t, a.CancelledBy())
		assert.Equal(t, kernel.RoleAdmin, *a.CancelledBy())
		assert.Equal(t, now, *a.CancelledAt())
	})

	t.Run("second cancel fails and keeps the first record", func(t *testing.T) {
		a := newAppointment(t, item(t, 1))
		require.NoError(t, a.Cancel(now, kernel.RoleUser))

		err := a.Cancel(now.Add(time.Minute), kernel.RoleAdmin)
		require.ErrorIs(t, err, errs.ErrRuleViolated)
		assert.Equal(t, kernel.RoleUser, *a.CancelledBy())
		assert.Equal(t, now, *a.CancelledAt())
	})

	t.Run("terminal states are final", func(t *testing.T) {
		a := newAppointment(t, item(t, 1))
		require.NoError(t, a.MarkNoShow(now))
		assert.Equal(t, appointment.NoShow, a.Status())

		assert.ErrorIs(t, a.Confirm(now), errs.ErrRuleViolated)
		assert.ErrorIs(t, a.Complete(now), errs.ErrRuleViolated)
		assert.ErrorIs(t, a.Cancel(now, kernel.RoleAdmin), errs.ErrRuleViolated)
		assert.ErrorIs(t, a.MarkNoShow(now), errs.ErrRuleViolated)
		assert.ErrorIs(t, a.AddItems(item(t, 2)), errs.ErrRuleViolated)
	})
}

func TestAppointment_Changes(t *testing.T) {
	t.Run("add items keeps units unique", func(t *testing.T) {
		first := item(t, 1)
		a := newAppointment(t, first)

		require.NoError(t, a.AddItems(item(t, 2)))
		assert.Equal(t, []int{1, 2}, a.LockerNumbers())

		require.ErrorIs(t, a.AddItems(first), errs.ErrValueIsInvalid)
		assert.Len(t, a.Items(), 2)
	})

	t.Run("reschedule and relocate", func(t *testing.T) {
		it := item(t, 1)
		a := newAppointment(t, it)
		date, _ := kernel.NewDate(2026, time.October, 18)
		slot, _ := kernel.NewTimeSlot(14)

		require.NoError(t, a.Reschedule(date, slot))
		require.NoError(t, a.RelocateItem(it.UnitID(), 7))

		assert.True(t, a.Date().IsEqual(date))
		assert.True(t, a.TimeSlot().IsEqual(slot))
		got, ok := a.Item(it.UnitID())
		require.True(t, ok)
		assert.Equal(t, 7, got.Locker())
	})

	t.Run("relocating an unknown unit", func(t *testing.T) {
		a := newAppointment(t, item(t, 1))
		require.ErrorIs(t, a.RelocateItem(kernel.NewUUID(), 2), errs.ErrObjectNotFound)
	})

	t.Run("items copy does not leak", func(t *testing.T) {
		a := newAppointment(t, item(t, 1))
		items := a.Items()
		items[0] = item(t, 9)

		assert.Equal(t, []int{1}, a.LockerNumbers())
	})
}

func TestAppointment_HasLapsed(t *testing.T) {
	a := newAppointment(t, item(t, 1))
	start := a.StartsAt(bogota)
	assert.Equal(t, time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC), start.UTC())

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before start", start.Add(-time.Minute), false},
		{"during slot", start.Add(59 * time.Minute), false},
		{"exactly at end", start.Add(time.Hour), true},
		{"long after", start.Add(48 * time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.HasLapsed(tt.now, bogota, time.Hour))
		})
	}

	t.Run("terminal never lapses", func(t *testing.T) {
		done := newAppointment(t, item(t, 1))
		require.NoError(t, done.Complete(start))
		assert.False(t, done.HasLapsed(start.Add(48*time.Hour), bogota, time.Hour))
	})
}

func TestRestoreAppointment(t *testing.T) {
	date, _ := kernel.NewDate(2026, time.October, 16)
	slot, _ := kernel.NewTimeSlot(10)
	created := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	admin := kernel.RoleAdmin

	t.Run("cancelled requires cancelledBy", func(t *testing.T) {
		_, err := appointment.RestoreAppointment(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), date, slot,
			[]appointment.PickupItem{item(t, 1)}, appointment.Cancelled, created, nil, nil, &created, nil, nil)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("restores a cancelled appointment", func(t *testing.T) {
		a, err := appointment.RestoreAppointment(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), date, slot,
			[]appointment.PickupItem{item(t, 1)}, appointment.Cancelled, created, nil, nil, &created, &admin, nil)
		require.NoError(t, err)
		assert.Equal(t, appointment.Cancelled, a.Status())
		assert.Equal(t, kernel.RoleAdmin, *a.CancelledBy())
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := appointment.RestoreAppointment(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), date, slot,
			[]appointment.PickupItem{item(t, 1)}, appointment.Unknown, created, nil, nil, nil, nil, nil)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestParseStatus(t *testing.T) {
	for _, s := range []appointment.Status{
		appointment.Scheduled, appointment.Confirmed, appointment.Completed, appointment.Cancelled, appointment.NoShow,
	} {
		got, err := appointment.ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := appointment.ParseStatus("unknown")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
