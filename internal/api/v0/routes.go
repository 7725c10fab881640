// Package v0 provides the REST API handlers for the ethPM registry.
package v0

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ethpm/registry-server/internal/api/common"
	"github.com/ethpm/registry-server/internal/service"
	"github.com/ethpm/registry-server/internal/telemetry"
	"github.com/ethpm/registry-server/internal/versions"
)

// CallerHeader carries the account identity of the caller, the on-chain
// msg.sender analog. Mutating requests without it are rejected.
const CallerHeader = "X-Registry-Account"

// PublishRequest is the JSON body of a publish call.
type PublishRequest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	ManifestURI string `json:"manifestUri"`
}

// TransferRequest is the JSON body of an ownership transfer call.
type TransferRequest struct {
	NewOwner string `json:"newOwner"`
}

// OwnerResponse is the response of an owner lookup.
type OwnerResponse struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

// VersionsResponse lists the versions of a package in publish order.
type VersionsResponse struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions"`
}

// ExistsResponse is the response of an existence check.
type ExistsResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Exists  bool   `json:"exists"`
}

// PackageListResponse is the paginated package name listing.
type PackageListResponse struct {
	Packages   []string `json:"packages"`
	NextCursor string   `json:"nextCursor,omitempty"`
}

// Routes defines the routes for the registry API with dependency injection.
type Routes struct {
	service service.RegistryService
	metrics *telemetry.Metrics
}

// NewRoutes creates a new Routes instance with the provided service.
// metrics may be nil, in which case operation counters are disabled.
func NewRoutes(svc service.RegistryService, metrics *telemetry.Metrics) *Routes {
	return &Routes{
		service: svc,
		metrics: metrics,
	}
}

// Router creates a new router for the registry API.
func Router(svc service.RegistryService, metrics *telemetry.Metrics) http.Handler {
	routes := NewRoutes(svc, metrics)

	r := chi.NewRouter()

	r.Post("/packages", routes.publish)
	r.Get("/packages", routes.listPackages)
	r.Route("/packages/{name}", func(r chi.Router) {
		r.Get("/owner", routes.getOwner)
		r.Put("/owner", routes.transferOwnership)
		r.Get("/latest", routes.getLatestRelease)
		r.Get("/versions", routes.getVersions)
		r.Get("/versions/{version}", routes.getRelease)
		r.Get("/versions/{version}/exists", routes.packageExists)
	})

	return r
}

// publish handles POST /api/v0/packages.
func (rr *Routes) publish(w http.ResponseWriter, r *http.Request) {
	caller := r.Header.Get(CallerHeader)
	if caller == "" {
		common.WriteErrorResponse(w, "missing "+CallerHeader+" header", http.StatusUnauthorized)
		return
	}

	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}

	release, err := rr.service.Publish(r.Context(), service.PublishRequest{
		PackageName: req.Name,
		Version:     req.Version,
		ManifestURI: req.ManifestURI,
		Caller:      caller,
	})
	if err != nil {
		rr.metrics.RecordPublish(outcomeFor(err))
		writeServiceError(w, err)
		return
	}

	rr.metrics.RecordPublish(telemetry.OutcomeSuccess)
	common.WriteJSONResponse(w, release, http.StatusCreated)
}

// listPackages handles GET /api/v0/packages.
func (rr *Routes) listPackages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	opts := []service.Option[service.ListPackagesOptions]{}
	cursor := query.Get("cursor")
	if cursor != "" {
		opts = append(opts, service.WithCursor(cursor))
	}

	limit := 0
	if limitStr := query.Get("limit"); limitStr != "" {
		limitVal, err := strconv.Atoi(limitStr)
		if err != nil || limitVal <= 0 {
			common.WriteErrorResponse(w, "Invalid limit parameter: must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = limitVal
		opts = append(opts, service.WithLimit(limit))
	}

	names, err := rr.service.ListPackages(r.Context(), opts...)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := PackageListResponse{Packages: names}
	if limit > 0 && len(names) == limit {
		start, err := service.DecodeCursor(cursor)
		if err == nil {
			resp.NextCursor = service.EncodeCursor(start + len(names))
		}
	}

	common.WriteJSONResponse(w, resp, http.StatusOK)
}

// getOwner handles GET /api/v0/packages/{name}/owner.
func (rr *Routes) getOwner(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	owner, err := rr.service.GetOwner(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	common.WriteJSONResponse(w, OwnerResponse{Name: name, Owner: owner}, http.StatusOK)
}

// transferOwnership handles PUT /api/v0/packages/{name}/owner.
func (rr *Routes) transferOwnership(w http.ResponseWriter, r *http.Request) {
	caller := r.Header.Get(CallerHeader)
	if caller == "" {
		common.WriteErrorResponse(w, "missing "+CallerHeader+" header", http.StatusUnauthorized)
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}

	event, err := rr.service.TransferOwnership(r.Context(), service.TransferRequest{
		PackageName: chi.URLParam(r, "name"),
		NewOwner:    req.NewOwner,
		Caller:      caller,
	})
	if err != nil {
		rr.metrics.RecordTransfer(outcomeFor(err))
		writeServiceError(w, err)
		return
	}

	rr.metrics.RecordTransfer(telemetry.OutcomeSuccess)
	common.WriteJSONResponse(w, event, http.StatusOK)
}

// getVersions handles GET /api/v0/packages/{name}/versions.
func (rr *Routes) getVersions(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	versions, err := rr.service.GetVersions(r.Context(), name)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	common.WriteJSONResponse(w, VersionsResponse{Name: name, Versions: versions}, http.StatusOK)
}

// getRelease handles GET /api/v0/packages/{name}/versions/{version}.
func (rr *Routes) getRelease(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	version := chi.URLParam(r, "version")

	release, err := rr.service.GetRelease(r.Context(), name, version)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	common.WriteJSONResponse(w, release, http.StatusOK)
}

// getLatestRelease handles GET /api/v0/packages/{name}/latest. The newest
// release is picked by semver when the version strings parse as semver,
// falling back to lexicographic order otherwise.
func (rr *Routes) getLatestRelease(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	vs, err := rr.service.GetVersions(r.Context(), name)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	latest := versions.Latest(vs)
	if latest == "" {
		common.WriteErrorResponse(w,
			service.ErrPackageNotFound.Error()+": "+name, http.StatusNotFound)
		return
	}

	release, err := rr.service.GetRelease(r.Context(), name, latest)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	common.WriteJSONResponse(w, release, http.StatusOK)
}

// packageExists handles GET /api/v0/packages/{name}/versions/{version}/exists.
func (rr *Routes) packageExists(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	version := chi.URLParam(r, "version")

	exists, err := rr.service.PackageExists(r.Context(), name, version)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	common.WriteJSONResponse(w, ExistsResponse{
		Name:    name,
		Version: version,
		Exists:  exists,
	}, http.StatusOK)
}

// writeServiceError maps service errors onto HTTP status codes, keeping
// the error strings stable so tooling can branch on cause.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyField),
		errors.Is(err, service.ErrInvalidPackageName),
		errors.Is(err, service.ErrInvalidTransferTarget):
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrUnauthorized):
		common.WriteErrorResponse(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, service.ErrVersionAlreadyExists):
		common.WriteErrorResponse(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrReleaseNotFound),
		errors.Is(err, service.ErrPackageNotFound):
		common.WriteErrorResponse(w, err.Error(), http.StatusNotFound)
	default:
		common.WriteErrorResponse(w, err.Error(), http.StatusInternalServerError)
	}
}

// outcomeFor classifies a service error for operation metrics.
func outcomeFor(err error) string {
	switch {
	case errors.Is(err, service.ErrEmptyField),
		errors.Is(err, service.ErrInvalidPackageName),
		errors.Is(err, service.ErrInvalidTransferTarget),
		errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrVersionAlreadyExists),
		errors.Is(err, service.ErrPackageNotFound):
		return telemetry.OutcomeRejected
	default:
		return telemetry.OutcomeError
	}
}

// HealthRouter creates a router for health check endpoints.
func HealthRouter(svc service.RegistryService) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		common.WriteJSONResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
	})

	r.Get("/readiness", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.CheckReadiness(r.Context()); err != nil {
			common.WriteErrorResponse(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		common.WriteJSONResponse(w, map[string]string{"status": "ready"}, http.StatusOK)
	})

	return r
}
