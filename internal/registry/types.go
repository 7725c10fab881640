package registry

import (
	"time"
)

// Package describes the ownership state of a package identity. A package
// springs into existence on its first successful release; there is no
// separate create operation and no delete operation.
type Package struct {
	// Name is the registry-wide unique package identifier.
	Name string `json:"name"`

	// Owner is the account authorized to publish releases and transfer
	// ownership. Assigned to the first successful publisher.
	Owner string `json:"owner"`

	// CreatedAt is when the first release was published.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the package record last changed (new release or
	// ownership transfer).
	UpdatedAt time.Time `json:"updated_at"`
}

// Release is the stored association between one (package, version) pair
// and its manifest reference. Releases are append-only: once recorded,
// a release is never overwritten or removed.
type Release struct {
	// PackageName is the owning package identity.
	PackageName string `json:"package_name"`

	// Version is the caller-supplied version string. Not required to be
	// strict semver, but unique per package for the lifetime of the
	// registry.
	Version string `json:"version"`

	// ManifestURI is the opaque, caller-supplied content-addressed
	// locator of the package manifest (e.g. an ipfs:// URI). Stored and
	// returned byte-for-byte.
	ManifestURI string `json:"manifest_uri"`

	// PublishedBy is the account that published this release.
	PublishedBy string `json:"published_by"`

	// PublishedAt is when the release was recorded.
	PublishedAt time.Time `json:"published_at"`
}

// PackagePublished is the notification record emitted on every successful
// publish.
type PackagePublished struct {
	EventID     string    `json:"event_id"`
	PackageName string    `json:"package_name"`
	Version     string    `json:"version"`
	ManifestURI string    `json:"manifest_uri"`
	PublishedBy string    `json:"published_by"`
	Timestamp   time.Time `json:"timestamp"`
}

// PackageOwnershipTransferred is the notification record emitted on every
// successful ownership transfer.
type PackageOwnershipTransferred struct {
	EventID       string    `json:"event_id"`
	PackageName   string    `json:"package_name"`
	PreviousOwner string    `json:"previous_owner"`
	NewOwner      string    `json:"new_owner"`
	Timestamp     time.Time `json:"timestamp"`
}
