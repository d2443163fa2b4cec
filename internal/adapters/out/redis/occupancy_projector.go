// Package redis projects locker occupancy into Redis hashes so that kiosks
// and the notification service can read a slot without touching PostgreSQL.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/ports"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const keyPrefix = "hako:occupancy"

// releaseOwned deletes the hash fields in ARGV[2..] whose value is ARGV[1],
// leaving lockers that another appointment already took.
var releaseOwned = redis.NewScript(`
local released = 0
for i = 2, #ARGV do
	if redis.call("HGET", KEYS[1], ARGV[i]) == ARGV[1] then
		released = released + redis.call("HDEL", KEYS[1], ARGV[i])
	end
end
return released
`)

// Config holds the connection settings of the projection.
type Config struct {
	Addr     string
	Password string
	DB       int
	// TTL bounds how long a slot hash outlives its last write.
	TTL time.Duration
}

// OccupancyProjector keeps one hash per slot, locker number to appointment id.
// It implements ports.AppointmentStatusSink.
type OccupancyProjector struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewClient opens a pooled client and pings it.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MaxRetries:   3,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func NewOccupancyProjector(client *redis.Client, ttl time.Duration, logger *zap.Logger) *OccupancyProjector {
	return &OccupancyProjector{
		client: client,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "occupancy_projector")),
	}
}

func (p *OccupancyProjector) Name() string {
	return "redis_occupancy"
}

// Publish releases the lockers the appointment held before the change and,
// while it is active, claims its current lockers.
func (p *OccupancyProjector) Publish(ctx context.Context, change ports.AppointmentChange) error {
	owner := change.AppointmentID.String()

	if change.Previous != nil {
		if err := p.release(ctx, SlotKey(change.Previous.Date, change.Previous.TimeSlot), owner, change.Previous.Lockers); err != nil {
			return err
		}
	}

	key := SlotKey(change.Date, change.TimeSlot)
	if !change.Status.IsActive() {
		return p.release(ctx, key, owner, change.Lockers)
	}
	if len(change.Lockers) == 0 {
		return nil
	}

	values := make(map[string]any, len(change.Lockers))
	for _, l := range change.Lockers {
		values[strconv.Itoa(l)] = owner
	}
	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values)
		if p.ttl > 0 {
			pipe.Expire(ctx, key, p.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis claim %s: %w", key, err)
	}

	p.logger.Debug("slot occupancy projected",
		zap.String("key", key),
		zap.String("appointment_id", owner),
		zap.Ints("lockers", change.Lockers),
	)
	return nil
}

// Occupancy returns the projected locker to appointment id map of a slot.
func (p *OccupancyProjector) Occupancy(ctx context.Context, date kernel.Date, slot kernel.TimeSlot) (map[int]string, error) {
	key := SlotKey(date, slot)
	raw, err := p.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read %s: %w", key, err)
	}

	occupancy := make(map[int]string, len(raw))
	for field, owner := range raw {
		locker, convErr := strconv.Atoi(field)
		if convErr != nil {
			p.logger.Warn("skipping malformed occupancy field", zap.String("key", key), zap.String("field", field))
			continue
		}
		occupancy[locker] = owner
	}
	return occupancy, nil
}

func (p *OccupancyProjector) release(ctx context.Context, key, owner string, lockers []int) error {
	if len(lockers) == 0 {
		return nil
	}

	args := make([]any, 0, len(lockers)+1)
	args = append(args, owner)
	for _, l := range lockers {
		args = append(args, strconv.Itoa(l))
	}
	if err := releaseOwned.Run(ctx, p.client, []string{key}, args...).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("redis release %s: %w", key, err)
	}
	return nil
}

// SlotKey is the hash holding the occupancy of one slot, for example
// "hako:occupancy:2026-10-16:10:00".
func SlotKey(date kernel.Date, slot kernel.TimeSlot) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, date, slot)
}

var _ ports.AppointmentStatusSink = (*OccupancyProjector)(nil)
