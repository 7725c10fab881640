// Package inmemory provides an in-memory implementation of the
// RegistryService interface. It is the reference implementation of the
// registry state machine: one lock serializes all mutating calls, so the
// first-publish-claims-ownership and version-uniqueness invariants hold
// under concurrent requests.
package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethpm/registry-server/internal/registry"
	"github.com/ethpm/registry-server/internal/service"
	"github.com/ethpm/registry-server/internal/validators"
)

// packageState holds the per-package registry state: the owner, the
// append-only version index, and the release records keyed by version.
type packageState struct {
	info     registry.Package
	versions []string
	releases map[string]*registry.Release
}

// regSvc implements the RegistryService interface.
type regSvc struct {
	mu       sync.RWMutex // protects packages, order
	packages map[string]*packageState
	order    []string // package names in creation order

	notifier service.Notifier
	now      func() time.Time
}

var _ service.RegistryService = (*regSvc)(nil)

// Option is a functional option for configuring the regSvc.
type Option func(*regSvc)

// WithNotifier sets the notifier that receives publish and transfer
// events. Defaults to a LogNotifier.
func WithNotifier(n service.Notifier) Option {
	return func(s *regSvc) {
		s.notifier = n
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *regSvc) {
		s.now = now
	}
}

// New creates a new in-memory registry service.
func New(opts ...Option) service.RegistryService {
	s := &regSvc{
		packages: make(map[string]*packageState),
		notifier: &service.LogNotifier{},
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CheckReadiness implements RegistryService.CheckReadiness.
func (*regSvc) CheckReadiness(context.Context) error {
	return nil
}

// Publish implements RegistryService.Publish.
func (s *regSvc) Publish(ctx context.Context, req service.PublishRequest) (*registry.Release, error) {
	if err := service.ValidatePublishRequest(req); err != nil {
		return nil, err
	}
	if !validators.IsValidPackageName(req.PackageName) {
		return nil, fmt.Errorf("%w: %s", service.ErrInvalidPackageName, req.PackageName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()

	pkg, exists := s.packages[req.PackageName]
	if exists {
		// Authorization check before the uniqueness check so an
		// outsider cannot probe which versions exist.
		if pkg.info.Owner != req.Caller {
			return nil, fmt.Errorf("%w: %s", service.ErrUnauthorized, req.Caller)
		}
		if _, dup := pkg.releases[req.Version]; dup {
			return nil, fmt.Errorf("%w: %s@%s",
				service.ErrVersionAlreadyExists, req.PackageName, req.Version)
		}
	} else {
		// First publish claims ownership.
		pkg = &packageState{
			info: registry.Package{
				Name:      req.PackageName,
				Owner:     req.Caller,
				CreatedAt: now,
			},
			releases: make(map[string]*registry.Release),
		}
		s.packages[req.PackageName] = pkg
		s.order = append(s.order, req.PackageName)
	}

	release := &registry.Release{
		PackageName: req.PackageName,
		Version:     req.Version,
		ManifestURI: req.ManifestURI,
		PublishedBy: req.Caller,
		PublishedAt: now,
	}

	pkg.releases[req.Version] = release
	pkg.versions = append(pkg.versions, req.Version)
	pkg.info.UpdatedAt = now

	s.notifier.PackagePublished(ctx, service.NewPublishedEvent(release))

	return release, nil
}

// GetPackageURI implements RegistryService.GetPackageURI.
func (s *regSvc) GetPackageURI(ctx context.Context, name, version string) (string, error) {
	release, err := s.GetRelease(ctx, name, version)
	if err != nil {
		return "", err
	}
	return release.ManifestURI, nil
}

// GetRelease implements RegistryService.GetRelease.
func (s *regSvc) GetRelease(_ context.Context, name, version string) (*registry.Release, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pkg, ok := s.packages[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s@%s", service.ErrReleaseNotFound, name, version)
	}
	release, ok := pkg.releases[version]
	if !ok {
		return nil, fmt.Errorf("%w: %s@%s", service.ErrReleaseNotFound, name, version)
	}

	copied := *release
	return &copied, nil
}

// PackageExists implements RegistryService.PackageExists.
func (s *regSvc) PackageExists(_ context.Context, name, version string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pkg, ok := s.packages[name]
	if !ok {
		return false, nil
	}
	_, ok = pkg.releases[version]
	return ok, nil
}

// GetVersions implements RegistryService.GetVersions.
func (s *regSvc) GetVersions(_ context.Context, name string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pkg, ok := s.packages[name]
	if !ok {
		return []string{}, nil
	}

	versions := make([]string, len(pkg.versions))
	copy(versions, pkg.versions)
	return versions, nil
}

// GetOwner implements RegistryService.GetOwner.
func (s *regSvc) GetOwner(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pkg, ok := s.packages[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", service.ErrPackageNotFound, name)
	}
	return pkg.info.Owner, nil
}

// ListPackages implements RegistryService.ListPackages.
func (s *regSvc) ListPackages(
	_ context.Context,
	opts ...service.Option[service.ListPackagesOptions],
) ([]string, error) {
	options := &service.ListPackagesOptions{}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.order))
	copy(names, s.order)

	names, err := applyCursorPagination(names, options.Cursor)
	if err != nil {
		return nil, err
	}

	if options.Limit > 0 && len(names) > options.Limit {
		names = names[:options.Limit]
	}

	return names, nil
}

// TransferOwnership implements RegistryService.TransferOwnership.
func (s *regSvc) TransferOwnership(
	ctx context.Context,
	req service.TransferRequest,
) (*registry.PackageOwnershipTransferred, error) {
	if req.NewOwner == "" {
		return nil, fmt.Errorf("%w: new owner is empty", service.ErrInvalidTransferTarget)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pkg, ok := s.packages[req.PackageName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", service.ErrPackageNotFound, req.PackageName)
	}
	if pkg.info.Owner != req.Caller {
		return nil, fmt.Errorf("%w: %s", service.ErrUnauthorized, req.Caller)
	}

	previous := pkg.info.Owner
	pkg.info.Owner = req.NewOwner
	pkg.info.UpdatedAt = s.now().UTC()

	event := service.NewTransferEvent(req.PackageName, previous, req.NewOwner)
	s.notifier.OwnershipTransferred(ctx, event)

	return &event, nil
}

// applyCursorPagination applies cursor-based pagination to the name list.
func applyCursorPagination(names []string, cursor string) ([]string, error) {
	if cursor == "" {
		return names, nil
	}

	startIndex, err := service.DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor format: %w", err)
	}

	if startIndex >= len(names) {
		return []string{}, nil
	}
	return names[startIndex:], nil
}
