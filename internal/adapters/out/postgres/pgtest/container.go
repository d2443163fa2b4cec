// Package pgtest starts a throwaway PostgreSQL container with the service
// schema applied. It is used by the repository integration suites.
package pgtest

import (
	"context"
	"time"

	postgres_adapter "hako/internal/adapters/out/postgres"
	"hako/internal/core/domain/model/kernel"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database is a migrated database inside a running container.
type Database struct {
	Container *postgres.PostgresContainer
	DB        *gorm.DB
}

// Start runs postgres:15-alpine and applies the migrations.
func Start(ctx context.Context) (*Database, error) {
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, err
	}

	d := &Database{Container: container}
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = d.Terminate(ctx)
		return nil, err
	}

	d.DB, err = gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		_ = d.Terminate(ctx)
		return nil, err
	}

	migrator, err := postgres_adapter.NewMigrator(d.DB, zap.NewNop())
	if err != nil {
		_ = d.Terminate(ctx)
		return nil, err
	}
	if err = migrator.Run(ctx); err != nil {
		_ = d.Terminate(ctx)
		return nil, err
	}

	return d, nil
}

// Truncate empties every service table.
func (d *Database) Truncate() error {
	return d.DB.Exec(`TRUNCATE TABLE locker_claims, appointment_items, appointments,
		product_units, order_lines, orders, penalties`).Error
}

func (d *Database) Terminate(ctx context.Context) error {
	if d.Container == nil {
		return nil
	}
	return d.Container.Terminate(ctx)
}

// NopTracker satisfies the repositories' aggregate tracker.
type NopTracker struct{}

func (NopTracker) TrackAggregate(_ kernel.UUID, _ any) {}
