// Package service provides the business logic for the ethPM registry API.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethpm/registry-server/internal/registry"
)

var (
	// ErrEmptyField is returned when a required field is missing.
	ErrEmptyField = errors.New("required field is empty")
	// ErrInvalidPackageName is returned when a package name fails the
	// package-name grammar.
	ErrInvalidPackageName = errors.New("invalid package name")
	// ErrUnauthorized is returned when the caller is not the recorded
	// owner of the package.
	ErrUnauthorized = errors.New("caller is not the package owner")
	// ErrVersionAlreadyExists is returned when attempting to publish a
	// (package, version) pair that already has a release.
	ErrVersionAlreadyExists = errors.New("version already exists")
	// ErrReleaseNotFound is returned when no release is recorded for a
	// (package, version) pair.
	ErrReleaseNotFound = errors.New("release not found")
	// ErrPackageNotFound is returned when a package has never been
	// published.
	ErrPackageNotFound = errors.New("package not found")
	// ErrInvalidTransferTarget is returned when an ownership transfer
	// names an empty target.
	ErrInvalidTransferTarget = errors.New("invalid transfer target")
)

// RegistryService defines the interface for registry operations.
//
// Mutating operations are atomic: any violated precondition aborts the
// whole call with no state change and no notification. Implementations
// must serialize mutating calls so that exactly one of two racing first
// publishes for the same package claims ownership.
type RegistryService interface {
	// CheckReadiness checks if the service is ready to serve requests.
	CheckReadiness(ctx context.Context) error

	// Publish records a release for a (package, version) pair. The first
	// successful publish for a package claims ownership for the caller;
	// afterwards only the owner may publish.
	Publish(ctx context.Context, req PublishRequest) (*registry.Release, error)

	// GetPackageURI returns the manifest URI recorded for the pair,
	// byte-for-byte as it was published.
	GetPackageURI(ctx context.Context, name, version string) (string, error)

	// GetRelease returns the full release record for the pair.
	GetRelease(ctx context.Context, name, version string) (*registry.Release, error)

	// PackageExists reports whether a release is recorded for the pair.
	PackageExists(ctx context.Context, name, version string) (bool, error)

	// GetVersions returns the version strings recorded for a package in
	// publish order. The list is empty, never nil, for unknown packages.
	GetVersions(ctx context.Context, name string) ([]string, error)

	// GetOwner returns the owner of a package, or ErrPackageNotFound if
	// the package has never been published.
	GetOwner(ctx context.Context, name string) (string, error)

	// ListPackages returns package names in creation order, subject to
	// cursor/limit pagination options.
	ListPackages(ctx context.Context, opts ...Option[ListPackagesOptions]) ([]string, error)

	// TransferOwnership replaces the owner of a package. Only the current
	// owner may transfer; existing releases are untouched.
	TransferOwnership(ctx context.Context, req TransferRequest) (*registry.PackageOwnershipTransferred, error)
}

// PublishRequest carries the inputs of a publish operation.
type PublishRequest struct {
	PackageName string
	Version     string
	ManifestURI string
	// Caller is the account submitting the publish, the on-chain
	// msg.sender analog.
	Caller string
}

// TransferRequest carries the inputs of an ownership transfer.
type TransferRequest struct {
	PackageName string
	NewOwner    string
	Caller      string
}

// Option is a function that sets an option for a list operation.
type Option[T ListPackagesOptions] func(*T) error

// ListPackagesOptions is the options for the ListPackages operation.
type ListPackagesOptions struct {
	Cursor string
	Limit  int
}

// WithCursor sets the cursor for the ListPackages operation.
func WithCursor(cursor string) Option[ListPackagesOptions] {
	return func(o *ListPackagesOptions) error {
		if cursor == "" {
			return fmt.Errorf("invalid cursor: %s", cursor)
		}
		o.Cursor = cursor
		return nil
	}
}

// WithLimit sets the limit for the ListPackages operation.
func WithLimit(limit int) Option[ListPackagesOptions] {
	return func(o *ListPackagesOptions) error {
		if limit <= 0 {
			return fmt.Errorf("invalid limit: %d", limit)
		}
		o.Limit = limit
		return nil
	}
}

// ValidatePublishRequest checks the field preconditions shared by every
// backend: all four fields must be non-empty. It returns the first
// violated precondition.
func ValidatePublishRequest(req PublishRequest) error {
	if req.PackageName == "" {
		return fmt.Errorf("%w: package name", ErrEmptyField)
	}
	if req.Version == "" {
		return fmt.Errorf("%w: version", ErrEmptyField)
	}
	if req.ManifestURI == "" {
		return fmt.Errorf("%w: manifest URI", ErrEmptyField)
	}
	if req.Caller == "" {
		return fmt.Errorf("%w: caller", ErrEmptyField)
	}
	return nil
}
