package penalty_test

import (
	"testing"
	"time"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/penalty"
	"hako/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPenalty(t *testing.T) {
	t.Run("reports every missing field", func(t *testing.T) {
		_, err := penalty.NewPenalty(kernel.UUID{}, kernel.UUID{}, kernel.Date{}, time.Time{})

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		for _, field := range []string{"id", "userId", "date", "createdAt"} {
			assert.Contains(t, err.Error(), field)
		}
	})
}

func TestPenalty_Blocks(t *testing.T) {
	date, err := kernel.NewDate(2026, time.October, 15)
	require.NoError(t, err)
	created := time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC)

	p, err := penalty.NewPenalty(kernel.NewUUID(), kernel.NewUUID(), date, created)
	require.NoError(t, err)

	tests := []struct {
		name string
		date kernel.Date
		now  time.Time
		want bool
	}{
		{"same day right after", date, created.Add(time.Minute), true},
		{"same day one second before expiry", date, created.Add(penalty.Lifetime - time.Second), true},
		{"same day at expiry", date, created.Add(penalty.Lifetime), false},
		{"other day", date.AddDays(1), created.Add(time.Minute), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Blocks(tt.date, tt.now))
		})
	}

	assert.Equal(t, created.Add(24*time.Hour), p.ExpiresAt())
	assert.Equal(t, created, penalty.PurgeBefore(created.Add(penalty.Lifetime)))
}
