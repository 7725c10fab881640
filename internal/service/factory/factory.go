// Package factory provides factory functions for creating service
// implementations.
package factory

import (
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ethpm/registry-server/internal/config"
	"github.com/ethpm/registry-server/internal/service"
	database "github.com/ethpm/registry-server/internal/service/db"
	"github.com/ethpm/registry-server/internal/service/inmemory"
)

// NewRegistryService creates a RegistryService based on the configured
// storage type.
//
// For memory storage it returns the mutex-guarded in-memory service. For
// postgres storage it returns the database-backed service; the pool
// parameter must not be nil in that case.
func NewRegistryService(
	cfg *config.Config,
	pool *pgxpool.Pool,
	notifier service.Notifier,
) (service.RegistryService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if notifier == nil {
		notifier = &service.LogNotifier{}
	}

	switch cfg.GetStorageType() {
	case config.StorageTypePostgres:
		if pool == nil {
			return nil, fmt.Errorf("database pool is required when storage type is postgres")
		}
		slog.Info("Creating database-backed registry service")
		return database.New(
			database.WithConnectionPool(pool),
			database.WithNotifier(notifier),
		)

	case config.StorageTypeMemory:
		slog.Info("Creating in-memory registry service")
		return inmemory.New(inmemory.WithNotifier(notifier)), nil

	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.GetStorageType())
	}
}
