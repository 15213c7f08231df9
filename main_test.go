package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/isdelr/mediaverse-be/internal/config"
	"github.com/isdelr/mediaverse-be/internal/storage"
	"github.com/isdelr/mediaverse-be/internal/store/memstore"
	"github.com/isdelr/mediaverse-be/internal/store/sqlstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	st, err := openStore(ctx, &config.Config{StoreDriver: config.StoreMemory})
	require.NoError(t, err)
	assert.IsType(t, &memstore.Store{}, st)

	st, err = openStore(ctx, &config.Config{
		StoreDriver:  config.StoreSQLite,
		DatabasePath: filepath.Join(t.TempDir(), "app.db"),
	})
	require.NoError(t, err)
	assert.IsType(t, &sqlstore.Store{}, st)

	levels, err := st.Levels().List(ctx)
	require.NoError(t, err)
	assert.Len(t, levels, 4)
	require.NoError(t, st.Close(ctx))

	_, err = openStore(ctx, &config.Config{StoreDriver: "redis"})
	assert.Error(t, err)
}

func TestOpenFileStore(t *testing.T) {
	ctx := context.Background()

	files, err := openFileStore(ctx, &config.Config{UploadDriver: config.UploadLocal, UploadDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStore{}, files)

	_, err = openFileStore(ctx, &config.Config{UploadDriver: "ftp"})
	assert.Error(t, err)
}
