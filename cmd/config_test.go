package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 12, cfg.LockerCount)
		assert.Equal(t, 60*time.Minute, cfg.LeadTime)
		assert.Equal(t, 7, cfg.BookingHorizonDays)
		assert.Equal(t, time.Hour, cfg.SlotDuration)
		assert.Empty(t, cfg.KafkaBrokers)

		policy, err := cfg.ReservationPolicy()
		require.NoError(t, err)
		assert.Equal(t, 12, policy.LockerCount())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("LOCKER_COUNT", "24")
		t.Setenv("LEAD_TIME", "90m")
		t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 24, cfg.LockerCount)
		assert.Equal(t, 90*time.Minute, cfg.LeadTime)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	})

	t.Run("reports every malformed value", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		t.Setenv("LOCKER_COUNT", "twelve")
		t.Setenv("SLOT_DURATION", "1 hour")

		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LOCKER_COUNT")
		assert.Contains(t, err.Error(), "SLOT_DURATION")
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("unknown time zone", func(t *testing.T) {
		cfg := Config{TimeZone: "Mars/Olympus", LockerCount: 12, SlotDuration: time.Hour, BookingHorizonDays: 7}
		_, err := cfg.ReservationPolicy()
		require.Error(t, err)
	})
}
