// Package database provides a PostgreSQL-backed implementation of the
// RegistryService interface.
//
// Every mutating call runs inside one transaction and takes a row lock on
// the package record (SELECT ... FOR UPDATE), so mutations for a single
// package are serialized: exactly one of two racing first publishes claims
// ownership, and a rejected call commits nothing.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ethpm/registry-server/internal/registry"
	"github.com/ethpm/registry-server/internal/service"
	"github.com/ethpm/registry-server/internal/validators"
)

// uniqueViolation is the Postgres error code for unique constraint
// violations.
const uniqueViolation = "23505"

// dbService implements the RegistryService interface backed by PostgreSQL.
type dbService struct {
	pool     *pgxpool.Pool
	notifier service.Notifier
}

var _ service.RegistryService = (*dbService)(nil)

// Option is a functional option for configuring the dbService.
type Option func(*dbService)

// WithConnectionPool sets the pgx connection pool. Required.
func WithConnectionPool(pool *pgxpool.Pool) Option {
	return func(s *dbService) {
		s.pool = pool
	}
}

// WithNotifier sets the notifier that receives publish and transfer
// events. Defaults to a LogNotifier.
func WithNotifier(n service.Notifier) Option {
	return func(s *dbService) {
		s.notifier = n
	}
}

// New creates a new database-backed registry service.
func New(opts ...Option) (service.RegistryService, error) {
	s := &dbService{
		notifier: &service.LogNotifier{},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.pool == nil {
		return nil, fmt.Errorf("connection pool is required")
	}

	return s, nil
}

// CheckReadiness implements RegistryService.CheckReadiness.
func (s *dbService) CheckReadiness(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}
	return nil
}

// Publish implements RegistryService.Publish.
func (s *dbService) Publish(ctx context.Context, req service.PublishRequest) (*registry.Release, error) {
	if err := service.ValidatePublishRequest(req); err != nil {
		return nil, err
	}
	if !validators.IsValidPackageName(req.PackageName) {
		return nil, fmt.Errorf("%w: %s", service.ErrInvalidPackageName, req.PackageName)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	now := time.Now().UTC()

	// Claim the package if it is unowned. ON CONFLICT DO NOTHING blocks
	// behind a concurrent uncommitted claim, so the row lock below always
	// observes the winner's committed owner.
	_, err = tx.Exec(ctx,
		`INSERT INTO packages (name, owner, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)
		 ON CONFLICT (name) DO NOTHING`,
		req.PackageName, req.Caller, now)
	if err != nil {
		return nil, fmt.Errorf("failed to claim package: %w", err)
	}

	var owner string
	err = tx.QueryRow(ctx,
		`SELECT owner FROM packages WHERE name = $1 FOR UPDATE`,
		req.PackageName).Scan(&owner)
	if err != nil {
		return nil, fmt.Errorf("failed to lock package: %w", err)
	}
	if owner != req.Caller {
		return nil, fmt.Errorf("%w: %s", service.ErrUnauthorized, req.Caller)
	}

	release := &registry.Release{
		PackageName: req.PackageName,
		Version:     req.Version,
		ManifestURI: req.ManifestURI,
		PublishedBy: req.Caller,
		PublishedAt: now,
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO package_releases (package_name, version, manifest_uri, published_by, published_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		release.PackageName, release.Version, release.ManifestURI, release.PublishedBy, release.PublishedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s@%s",
				service.ErrVersionAlreadyExists, req.PackageName, req.Version)
		}
		return nil, fmt.Errorf("failed to insert release: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE packages SET updated_at = $2 WHERE name = $1`,
		req.PackageName, now)
	if err != nil {
		return nil, fmt.Errorf("failed to touch package: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.notifier.PackagePublished(ctx, service.NewPublishedEvent(release))

	return release, nil
}

// GetPackageURI implements RegistryService.GetPackageURI.
func (s *dbService) GetPackageURI(ctx context.Context, name, version string) (string, error) {
	release, err := s.GetRelease(ctx, name, version)
	if err != nil {
		return "", err
	}
	return release.ManifestURI, nil
}

// GetRelease implements RegistryService.GetRelease.
func (s *dbService) GetRelease(ctx context.Context, name, version string) (*registry.Release, error) {
	var release registry.Release
	err := s.pool.QueryRow(ctx,
		`SELECT package_name, version, manifest_uri, published_by, published_at
		 FROM package_releases
		 WHERE package_name = $1 AND version = $2`,
		name, version).Scan(
		&release.PackageName, &release.Version, &release.ManifestURI,
		&release.PublishedBy, &release.PublishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s@%s", service.ErrReleaseNotFound, name, version)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query release: %w", err)
	}
	return &release, nil
}

// PackageExists implements RegistryService.PackageExists.
func (s *dbService) PackageExists(ctx context.Context, name, version string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM package_releases WHERE package_name = $1 AND version = $2
		 )`,
		name, version).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query release existence: %w", err)
	}
	return exists, nil
}

// GetVersions implements RegistryService.GetVersions.
func (s *dbService) GetVersions(ctx context.Context, name string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT version FROM package_releases WHERE package_name = $1 ORDER BY seq`,
		name)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	versions := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read versions: %w", err)
	}
	return versions, nil
}

// GetOwner implements RegistryService.GetOwner.
func (s *dbService) GetOwner(ctx context.Context, name string) (string, error) {
	var owner string
	err := s.pool.QueryRow(ctx,
		`SELECT owner FROM packages WHERE name = $1`,
		name).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", service.ErrPackageNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query owner: %w", err)
	}
	return owner, nil
}

// ListPackages implements RegistryService.ListPackages.
func (s *dbService) ListPackages(
	ctx context.Context,
	opts ...service.Option[service.ListPackagesOptions],
) ([]string, error) {
	options := &service.ListPackagesOptions{}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	offset, err := service.DecodeCursor(options.Cursor)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor format: %w", err)
	}

	query := `SELECT name FROM packages ORDER BY created_at, name OFFSET $1`
	args := []any{offset}
	if options.Limit > 0 {
		query += ` LIMIT $2`
		args = append(args, options.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query packages: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan package name: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read packages: %w", err)
	}
	return names, nil
}

// TransferOwnership implements RegistryService.TransferOwnership.
func (s *dbService) TransferOwnership(
	ctx context.Context,
	req service.TransferRequest,
) (*registry.PackageOwnershipTransferred, error) {
	if req.NewOwner == "" {
		return nil, fmt.Errorf("%w: new owner is empty", service.ErrInvalidTransferTarget)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	var owner string
	err = tx.QueryRow(ctx,
		`SELECT owner FROM packages WHERE name = $1 FOR UPDATE`,
		req.PackageName).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", service.ErrPackageNotFound, req.PackageName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock package: %w", err)
	}
	if owner != req.Caller {
		return nil, fmt.Errorf("%w: %s", service.ErrUnauthorized, req.Caller)
	}

	_, err = tx.Exec(ctx,
		`UPDATE packages SET owner = $2, updated_at = $3 WHERE name = $1`,
		req.PackageName, req.NewOwner, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to update owner: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	event := service.NewTransferEvent(req.PackageName, owner, req.NewOwner)
	s.notifier.OwnershipTransferred(ctx, event)

	return &event, nil
}

// rollback rolls a transaction back, logging anything other than the
// expected already-closed error.
func rollback(ctx context.Context, tx pgx.Tx) {
	err := tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.WarnContext(ctx, "Failed to rollback transaction", "error", err)
	}
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
