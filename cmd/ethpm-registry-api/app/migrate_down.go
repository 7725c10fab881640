package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
)

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back database migrations",
	Long: `Roll back all applied database migrations. This is destructive: the
registry tables and all recorded releases are dropped.`,
	RunE: runMigrateDown,
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	m, cfg, err := migratorFromFlags(cmd)
	if err != nil {
		return err
	}

	ok, err := confirmMigration(cmd, cfg, "roll back ALL migrations on")
	if err != nil || !ok {
		return err
	}

	slog.Info("Rolling back database migrations...")
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}

	slog.Info("Migrations rolled back")
	return nil
}
