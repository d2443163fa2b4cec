package services_test

import (
	"testing"
	"time"

	"hako/internal/core/domain/services"
	"hako/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bogota = time.FixedZone("COT", -5*60*60)

func policy(t *testing.T) services.ReservationPolicy {
	t.Helper()
	p, err := services.NewReservationPolicy(bogota, time.Hour, 7, time.Hour, 12)
	require.NoError(t, err)
	return p
}

func TestReservationPolicy_ValidateLeadTime(t *testing.T) {
	p := policy(t)
	date := dateOf(t, 15)
	slot := slotOf(t, 10)
	start := time.Date(2026, 10, 15, 10, 0, 0, 0, bogota)

	tests := []struct {
		name    string
		now     time.Time
		wantErr bool
	}{
		{"30 minutes ahead is too late", start.Add(-30 * time.Minute), true},
		{"exactly the lead time is accepted", start.Add(-time.Hour), false},
		{"90 minutes ahead is accepted", start.Add(-90 * time.Minute), false},
		{"slot already started", start.Add(time.Minute), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.ValidateLeadTime(date, slot, tt.now)
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrRuleViolated)
				assert.Contains(t, err.Error(), "lead_time")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestReservationPolicy_ValidateBookingWindow(t *testing.T) {
	p := policy(t)
	// 23:30 in Bogota is already the 16th in UTC; today must still be the 15th.
	now := time.Date(2026, 10, 15, 23, 30, 0, 0, bogota)

	tests := []struct {
		name    string
		day     int
		wantErr bool
	}{
		{"yesterday", 14, true},
		{"today", 15, false},
		{"last day of the horizon", 22, false},
		{"beyond the horizon", 23, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.ValidateBookingWindow(dateOf(t, tt.day), now)
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrRuleViolated)
				assert.Contains(t, err.Error(), "booking_window")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestReservationPolicy_ValidateLockers(t *testing.T) {
	p := policy(t)

	require.NoError(t, p.ValidateLockers([]int{1, 12}))
	require.ErrorIs(t, p.ValidateLockers([]int{0}), errs.ErrValueIsOutOfRange)
	require.ErrorIs(t, p.ValidateLockers([]int{13}), errs.ErrValueIsOutOfRange)
	require.ErrorIs(t, p.ValidateLockers(nil), errs.ErrValueIsRequired)
}

func TestReservationPolicy_IsLapsed(t *testing.T) {
	p := policy(t)
	a := bookedAppointment(t, dateOf(t, 15), slotOf(t, 10), 1)
	end := time.Date(2026, 10, 15, 11, 0, 0, 0, bogota)

	assert.False(t, p.IsLapsed(a, end.Add(-time.Second)))
	assert.True(t, p.IsLapsed(a, end))
	assert.True(t, p.IsBeforeToday(a, end.Add(24*time.Hour)))
	assert.False(t, p.IsBeforeToday(a, end))
}

func TestNewReservationPolicy(t *testing.T) {
	_, err := services.NewReservationPolicy(nil, time.Hour, 7, 0, 12)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	_, err = services.NewReservationPolicy(nil, time.Hour, 7, time.Hour, 0)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	p := services.DefaultReservationPolicy()
	assert.Equal(t, 12, p.LockerCount())
	assert.Equal(t, time.Hour, p.LeadTime())
	assert.Equal(t, time.UTC, p.Location())
}
