package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ethpm/registry-server/internal/registry"
)

// Notifier receives the notification records emitted by successful
// mutating operations. Implementations must not block the calling
// operation; delivery happens after the state change has committed.
type Notifier interface {
	PackagePublished(ctx context.Context, event registry.PackagePublished)
	OwnershipTransferred(ctx context.Context, event registry.PackageOwnershipTransferred)
}

// NewPublishedEvent builds a PackagePublished record for a committed
// release, stamping it with a fresh event id.
func NewPublishedEvent(release *registry.Release) registry.PackagePublished {
	return registry.PackagePublished{
		EventID:     uuid.NewString(),
		PackageName: release.PackageName,
		Version:     release.Version,
		ManifestURI: release.ManifestURI,
		PublishedBy: release.PublishedBy,
		Timestamp:   release.PublishedAt,
	}
}

// NewTransferEvent builds a PackageOwnershipTransferred record.
func NewTransferEvent(name, previousOwner, newOwner string) registry.PackageOwnershipTransferred {
	return registry.PackageOwnershipTransferred{
		EventID:       uuid.NewString(),
		PackageName:   name,
		PreviousOwner: previousOwner,
		NewOwner:      newOwner,
		Timestamp:     time.Now().UTC(),
	}
}

// LogNotifier emits notification records as structured log entries.
type LogNotifier struct{}

var _ Notifier = (*LogNotifier)(nil)

// PackagePublished implements Notifier.PackagePublished.
func (*LogNotifier) PackagePublished(ctx context.Context, event registry.PackagePublished) {
	slog.InfoContext(ctx, "Package version published",
		"event_id", event.EventID,
		"package", event.PackageName,
		"version", event.Version,
		"manifest_uri", event.ManifestURI,
		"published_by", event.PublishedBy)
}

// OwnershipTransferred implements Notifier.OwnershipTransferred.
func (*LogNotifier) OwnershipTransferred(ctx context.Context, event registry.PackageOwnershipTransferred) {
	slog.InfoContext(ctx, "Package ownership transferred",
		"event_id", event.EventID,
		"package", event.PackageName,
		"previous_owner", event.PreviousOwner,
		"new_owner", event.NewOwner)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

var _ Notifier = (*NopNotifier)(nil)

// PackagePublished implements Notifier.PackagePublished.
func (*NopNotifier) PackagePublished(context.Context, registry.PackagePublished) {}

// OwnershipTransferred implements Notifier.OwnershipTransferred.
func (*NopNotifier) OwnershipTransferred(context.Context, registry.PackageOwnershipTransferred) {}
