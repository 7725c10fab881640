package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpm/registry-server/internal/config"
)

func TestBuildServiceMemory(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Storage: config.StorageConfig{Type: config.StorageTypeMemory}}

	svc, cleanup, err := buildService(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	assert.NotNil(t, svc)
	assert.NoError(t, svc.CheckReadiness(context.Background()))
}

func TestNewRootCmdHasSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "version")
	assert.Contains(t, names, "migrate")
}
