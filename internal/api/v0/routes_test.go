package v0_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpm/registry-server/internal/api"
	v0 "github.com/ethpm/registry-server/internal/api/v0"
	"github.com/ethpm/registry-server/internal/service"
	"github.com/ethpm/registry-server/internal/service/inmemory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	svc := inmemory.New(inmemory.WithNotifier(&service.NopNotifier{}))
	srv := httptest.NewServer(api.NewServer(svc))
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, caller, body string) *http.Response {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if caller != "" {
		req.Header.Set(v0.CallerHeader, caller)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func publishBody(name, version, uri string) string {
	b, _ := json.Marshal(v0.PublishRequest{Name: name, Version: version, ManifestURI: uri})
	return string(b)
}

func TestPublishEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	resp := doRequest(t, srv, http.MethodPost, "/api/v0/packages", "0xalice",
		publishBody("safe-math-lib", "1.0.0", "ipfs://QmSafeMath"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	release := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "safe-math-lib", release["package_name"])
	assert.Equal(t, "ipfs://QmSafeMath", release["manifest_uri"])
	assert.Equal(t, "0xalice", release["published_by"])
}

func TestPublishEndpointRejections(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	// Seed a package owned by alice.
	resp := doRequest(t, srv, http.MethodPost, "/api/v0/packages", "0xalice",
		publishBody("owned-pkg", "1.0.0", "ipfs://a"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	tests := []struct {
		name       string
		caller     string
		body       string
		wantStatus int
	}{
		{
			name:       "missing caller header",
			caller:     "",
			body:       publishBody("pkg", "1.0.0", "ipfs://x"),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed body",
			caller:     "0xalice",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty version",
			caller:     "0xalice",
			body:       publishBody("pkg", "", "ipfs://x"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid package name",
			caller:     "0xalice",
			body:       publishBody("Invalid_Name", "1.0.0", "ipfs://x"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate version",
			caller:     "0xalice",
			body:       publishBody("owned-pkg", "1.0.0", "ipfs://other"),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unauthorized caller",
			caller:     "0xbob",
			body:       publishBody("owned-pkg", "2.0.0", "ipfs://b"),
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := doRequest(t, srv, http.MethodPost, "/api/v0/packages", tt.caller, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decodeBody[map[string]string](t, resp)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestReadEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	for _, v := range []string{"1.0.0", "1.1.0", "2.0.0"} {
		resp := doRequest(t, srv, http.MethodPost, "/api/v0/packages", "0xalice",
			publishBody("pkg", v, "ipfs://"+v))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := doRequest(t, srv, http.MethodGet, "/api/v0/packages/pkg/versions", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	versions := decodeBody[v0.VersionsResponse](t, resp)
	assert.Equal(t, []string{"1.0.0", "1.1.0", "2.0.0"}, versions.Versions)

	resp = doRequest(t, srv, http.MethodGet, "/api/v0/packages/pkg/versions/1.1.0", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	release := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "ipfs://1.1.0", release["manifest_uri"])

	resp = doRequest(t, srv, http.MethodGet, "/api/v0/packages/pkg/versions/9.9.9", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, srv, http.MethodGet, "/api/v0/packages/pkg/versions/1.0.0/exists", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	exists := decodeBody[v0.ExistsResponse](t, resp)
	assert.True(t, exists.Exists)

	resp = doRequest(t, srv, http.MethodGet, "/api/v0/packages/pkg/versions/9.9.9/exists", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	exists = decodeBody[v0.ExistsResponse](t, resp)
	assert.False(t, exists.Exists)

	resp = doRequest(t, srv, http.MethodGet, "/api/v0/packages/pkg/latest", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	release = decodeBody[map[string]any](t, resp)
	assert.Equal(t, "2.0.0", release["version"])

	resp = doRequest(t, srv, http.MethodGet, "/api/v0/packages/ghost/latest", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, srv, http.MethodGet, "/api/v0/packages/pkg/owner", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	owner := decodeBody[v0.OwnerResponse](t, resp)
	assert.Equal(t, "0xalice", owner.Owner)

	resp = doRequest(t, srv, http.MethodGet, "/api/v0/packages/ghost/owner", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Versions of an unknown package are an empty list, not an error.
	resp = doRequest(t, srv, http.MethodGet, "/api/v0/packages/ghost/versions", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	versions = decodeBody[v0.VersionsResponse](t, resp)
	assert.Empty(t, versions.Versions)
}

func TestTransferEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	resp := doRequest(t, srv, http.MethodPost, "/api/v0/packages", "0xalice",
		publishBody("pkg", "1.0.0", "ipfs://a"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// No caller header.
	resp = doRequest(t, srv, http.MethodPut, "/api/v0/packages/pkg/owner", "",
		`{"newOwner":"0xbob"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Wrong caller.
	resp = doRequest(t, srv, http.MethodPut, "/api/v0/packages/pkg/owner", "0xeve",
		`{"newOwner":"0xbob"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Empty target.
	resp = doRequest(t, srv, http.MethodPut, "/api/v0/packages/pkg/owner", "0xalice",
		`{"newOwner":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Success.
	resp = doRequest(t, srv, http.MethodPut, "/api/v0/packages/pkg/owner", "0xalice",
		`{"newOwner":"0xbob"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	event := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "0xalice", event["previous_owner"])
	assert.Equal(t, "0xbob", event["new_owner"])
	assert.NotEmpty(t, event["event_id"])

	resp = doRequest(t, srv, http.MethodGet, "/api/v0/packages/pkg/owner", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	owner := decodeBody[v0.OwnerResponse](t, resp)
	assert.Equal(t, "0xbob", owner.Owner)
}

func TestListPackagesEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	for _, name := range []string{"pkg-a", "pkg-b", "pkg-c"} {
		resp := doRequest(t, srv, http.MethodPost, "/api/v0/packages", "0xalice",
			publishBody(name, "1.0.0", "ipfs://x"))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := doRequest(t, srv, http.MethodGet, "/api/v0/packages", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[v0.PackageListResponse](t, resp)
	assert.Equal(t, []string{"pkg-a", "pkg-b", "pkg-c"}, list.Packages)
	assert.Empty(t, list.NextCursor)

	resp = doRequest(t, srv, http.MethodGet, "/api/v0/packages?limit=2", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list = decodeBody[v0.PackageListResponse](t, resp)
	assert.Equal(t, []string{"pkg-a", "pkg-b"}, list.Packages)
	require.NotEmpty(t, list.NextCursor)

	resp = doRequest(t, srv, http.MethodGet, "/api/v0/packages?limit=2&cursor="+list.NextCursor, "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list = decodeBody[v0.PackageListResponse](t, resp)
	assert.Equal(t, []string{"pkg-c"}, list.Packages)

	resp = doRequest(t, srv, http.MethodGet, "/api/v0/packages?limit=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	resp := doRequest(t, srv, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, srv, http.MethodGet, "/readiness", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
