package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateUpDown(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, _, cleanupFunc := SetupTestDB(t)
	t.Cleanup(cleanupFunc)

	// SetupTestDB already ran the migrations: the tables exist.
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'packages')`,
	).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists)

	// Roll back and reapply.
	err = MigrateDown(ctx, db)
	require.NoError(t, err)

	err = db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'package_releases')`,
	).Scan(&exists)
	require.NoError(t, err)
	assert.False(t, exists)

	err = MigrateUp(ctx, db)
	require.NoError(t, err)

	// Schema enforces (package, version) uniqueness.
	_, err = db.Exec(ctx,
		`INSERT INTO packages (name, owner, created_at, updated_at) VALUES ('pkg', '0xalice', now(), now())`)
	require.NoError(t, err)
	_, err = db.Exec(ctx,
		`INSERT INTO package_releases (package_name, version, manifest_uri, published_by, published_at)
		 VALUES ('pkg', '1.0.0', 'ipfs://a', '0xalice', now())`)
	require.NoError(t, err)
	_, err = db.Exec(ctx,
		`INSERT INTO package_releases (package_name, version, manifest_uri, published_by, published_at)
		 VALUES ('pkg', '1.0.0', 'ipfs://b', '0xalice', now())`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "package_releases_package_version_key")
}
