package storage

import (
	"context"
	"database/sql"
	"fmt"

	"ecom-auditor/internal/storage/migrations"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// migration is one goose command run against the embedded fee schedule
// migrations.
type migration struct {
	operation string
	start     string
	done      string
	run       func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error
}

var (
	migrateUp = migration{
		operation: "storage.RunMigrations",
		start:     "Running database migrations...",
		done:      "Database migrations completed successfully",
		run:       goose.UpContext,
	}
	migrateDown = migration{
		operation: "storage.RollbackMigration",
		start:     "Rolling back last migration...",
		done:      "Migration rollback completed",
		run:       goose.DownContext,
	}
	migrateStatus = migration{
		operation: "storage.Status",
		start:     "Checking migration status...",
		run:       goose.StatusContext,
	}
)

func (m migration) apply(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	logger.Info(m.start)

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%s: failed to set dialect: %w", m.operation, err)
	}
	if err := m.run(ctx, db, "."); err != nil {
		return fmt.Errorf("%s: %w", m.operation, err)
	}

	if m.done != "" {
		logger.Info(m.done)
	}
	return nil
}

// RunMigrations applies every pending fee schedule migration.
func RunMigrations(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	return migrateUp.apply(ctx, db, logger)
}

func RollbackMigration(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	return migrateDown.apply(ctx, db, logger)
}

// Status prints the applied and pending migrations through goose's logger.
func Status(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	return migrateStatus.apply(ctx, db, logger)
}
