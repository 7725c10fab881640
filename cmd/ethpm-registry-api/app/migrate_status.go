package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
)

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current migration version",
	Long: `Show the schema version the database is currently at, and whether it
is in a dirty state from a failed migration. Read-only: no confirmation
is required.`,
	RunE: runMigrateStatus,
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	m, _, err := migratorFromFlags(cmd)
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		slog.Info("No migrations applied yet")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	slog.Info("Migration status", "version", version, "dirty", dirty)
	return nil
}
