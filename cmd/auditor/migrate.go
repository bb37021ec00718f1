package main

import (
	"context"
	"database/sql"
	"errors"

	"ecom-auditor/internal/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the fee schedule database",
}

func init() {
	migrateCmd.AddCommand(
		migrationCommand("up", "Apply all pending migrations", storage.RunMigrations),
		migrationCommand("down", "Roll back the last migration", storage.RollbackMigration),
		migrationCommand("status", "Show migration status", storage.Status),
	)
}

func migrationCommand(use, short string, run func(context.Context, *sql.DB, *zap.Logger) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if !cfg.Database.Enabled() {
				return errors.New("DB_HOST is not set")
			}

			store, err := storage.NewPostgresStorage(cmd.Context(), cfg.Database, nil, log)
			if err != nil {
				return err
			}
			defer store.Close()

			return run(cmd.Context(), store.DB(), log)
		},
	}
}
