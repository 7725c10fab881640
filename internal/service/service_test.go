package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpm/registry-server/internal/registry"
)

func TestValidatePublishRequest(t *testing.T) {
	t.Parallel()

	valid := PublishRequest{
		PackageName: "pkg",
		Version:     "1.0.0",
		ManifestURI: "ipfs://Qm",
		Caller:      "0xalice",
	}
	require.NoError(t, ValidatePublishRequest(valid))

	tests := []struct {
		name   string
		mutate func(*PublishRequest)
	}{
		{"missing package name", func(r *PublishRequest) { r.PackageName = "" }},
		{"missing version", func(r *PublishRequest) { r.Version = "" }},
		{"missing manifest URI", func(r *PublishRequest) { r.ManifestURI = "" }},
		{"missing caller", func(r *PublishRequest) { r.Caller = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := valid
			tt.mutate(&req)
			err := ValidatePublishRequest(req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrEmptyField)
		})
	}
}

func TestListPackagesOptions(t *testing.T) {
	t.Parallel()

	opts := &ListPackagesOptions{}
	require.NoError(t, WithCursor("abc")(opts))
	require.NoError(t, WithLimit(10)(opts))
	assert.Equal(t, "abc", opts.Cursor)
	assert.Equal(t, 10, opts.Limit)

	assert.Error(t, WithCursor("")(opts))
	assert.Error(t, WithLimit(0)(opts))
	assert.Error(t, WithLimit(-1)(opts))
}

func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	for _, idx := range []int{0, 1, 42, 10000} {
		got, err := DecodeCursor(EncodeCursor(idx))
		require.NoError(t, err)
		assert.Equal(t, idx, got)
	}

	idx, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = DecodeCursor("!!!not-base64!!!")
	assert.Error(t, err)

	_, err = DecodeCursor(EncodeCursor(-5))
	assert.Error(t, err)
}

func TestEventConstructors(t *testing.T) {
	t.Parallel()

	release := &registry.Release{
		PackageName: "pkg",
		Version:     "1.0.0",
		ManifestURI: "ipfs://Qm",
		PublishedBy: "0xalice",
	}

	published := NewPublishedEvent(release)
	assert.NotEmpty(t, published.EventID)
	assert.Equal(t, "pkg", published.PackageName)
	assert.Equal(t, "ipfs://Qm", published.ManifestURI)

	transfer := NewTransferEvent("pkg", "0xalice", "0xbob")
	assert.NotEmpty(t, transfer.EventID)
	assert.Equal(t, "0xalice", transfer.PreviousOwner)
	assert.Equal(t, "0xbob", transfer.NewOwner)
	assert.False(t, transfer.Timestamp.IsZero())
	assert.NotEqual(t, published.EventID, transfer.EventID)
}
