package unit_test

import (
	"testing"
	"time"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/unit"
	"hako/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUnit(t *testing.T) *unit.ProductUnit {
	t.Helper()
	box, err := kernel.NewDimensions(20, 10, 40)
	require.NoError(t, err)

	u, err := unit.NewProductUnit(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), "", box)
	require.NoError(t, err)
	return u
}

func TestNewProductUnit(t *testing.T) {
	t.Run("starts available without locker", func(t *testing.T) {
		u := newUnit(t)

		require.NoError(t, u.Validate())
		assert.Equal(t, unit.Available, u.Status())
		assert.Nil(t, u.Locker())
		assert.InDelta(t, 8000.0, u.Volume(), 1e-9)
	})

	t.Run("reports every missing field", func(t *testing.T) {
		_, err := unit.NewProductUnit(kernel.UUID{}, kernel.UUID{}, kernel.NewUUID(), kernel.NewUUID(), "", kernel.Dimensions{})

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "id")
		assert.Contains(t, err.Error(), "ownerId")
		assert.Contains(t, err.Error(), "dimensions")
	})
}

func TestProductUnit_Lifecycle(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	t.Run("reserve then release", func(t *testing.T) {
		u := newUnit(t)

		require.NoError(t, u.Reserve(4, now))
		assert.Equal(t, unit.Reserved, u.Status())
		require.NotNil(t, u.Locker())
		assert.Equal(t, 4, *u.Locker())
		assert.Equal(t, now, *u.ReservedAt())

		require.NoError(t, u.Release())
		assert.Equal(t, unit.Available, u.Status())
		assert.Nil(t, u.Locker())
		assert.Nil(t, u.ReservedAt())
	})

	t.Run("reserve then pick up", func(t *testing.T) {
		u := newUnit(t)
		require.NoError(t, u.Reserve(1, now))

		require.NoError(t, u.PickUp(now.Add(time.Hour)))
		assert.Equal(t, unit.PickedUp, u.Status())
		assert.Nil(t, u.Locker())
		assert.Equal(t, now.Add(time.Hour), *u.PickedUpAt())
	})

	t.Run("cannot reserve twice", func(t *testing.T) {
		u := newUnit(t)
		require.NoError(t, u.Reserve(1, now))

		err := u.Reserve(2, now)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, 1, *u.Locker())
	})

	t.Run("cannot release an available unit", func(t *testing.T) {
		u := newUnit(t)
		require.ErrorIs(t, u.Release(), errs.ErrValueIsInvalid)
	})

	t.Run("picked up is final", func(t *testing.T) {
		u := newUnit(t)
		require.NoError(t, u.PickUp(now))

		require.Error(t, u.Reserve(1, now))
		require.Error(t, u.Release())
		require.Error(t, u.PickUp(now))
	})

	t.Run("locker numbers start at one", func(t *testing.T) {
		u := newUnit(t)
		require.ErrorIs(t, u.Reserve(0, now), errs.ErrValueIsOutOfRange)
	})

	t.Run("relocate only reserved units", func(t *testing.T) {
		u := newUnit(t)
		require.Error(t, u.Relocate(3))

		require.NoError(t, u.Reserve(1, now))
		require.NoError(t, u.Relocate(3))
		assert.Equal(t, 3, *u.Locker())
	})

	t.Run("locker accessor returns a copy", func(t *testing.T) {
		u := newUnit(t)
		require.NoError(t, u.Reserve(5, now))

		l := u.Locker()
		*l = 9
		assert.Equal(t, 5, *u.Locker())
	})
}

func TestRestoreProductUnit(t *testing.T) {
	box, _ := kernel.NewDimensions(10, 10, 10)
	locker := 2

	t.Run("reserved needs a locker", func(t *testing.T) {
		_, err := unit.RestoreProductUnit(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			"", box, unit.Reserved, nil, nil, nil)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("available must not hold a locker", func(t *testing.T) {
		_, err := unit.RestoreProductUnit(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			"", box, unit.Available, &locker, nil, nil)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("consistent reserved unit", func(t *testing.T) {
		u, err := unit.RestoreProductUnit(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			"blue", box, unit.Reserved, &locker, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "blue", u.Variant())
		assert.Equal(t, 2, *u.Locker())
	})
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "picked_up", unit.PickedUp.String())
	assert.Equal(t, "unknown", unit.Status(42).String())
	require.Error(t, unit.Unknown.Validate())

	s, err := unit.ParseStatus("reserved")
	require.NoError(t, err)
	assert.Equal(t, unit.Reserved, s)

	_, err = unit.ParseStatus("lost")
	require.Error(t, err)
}
