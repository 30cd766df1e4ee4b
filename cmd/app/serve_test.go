package main

import (
	"context"
	"mockserver/internal/config"
	"mockserver/internal/core/domain"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = `{"books": [{"id": "1", "title": "Go"}], "profile": {"name": "x"}}`

func testConfig(t *testing.T, backend config.StoreBackend) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.StoreBackend = backend
	cfg.DataFile = filepath.Join(dir, "db.json")
	cfg.SQLiteFile = filepath.Join(dir, "db.sqlite")
	cfg.WatchData = false

	require.NoError(t, os.WriteFile(cfg.DataFile, []byte(seed), 0644))
	return cfg
}

func TestNewRepository(t *testing.T) {
	testCases := map[string]struct {
		backend       config.StoreBackend
		wantFileWrite bool
	}{
		"json backend writes the data file": {
			backend:       config.BackendJSON,
			wantFileWrite: true,
		},
		"sqlite backend imports the data file": {
			backend:       config.BackendSQLite,
			wantFileWrite: false,
		},
		"memory backend never writes": {
			backend:       config.BackendMemory,
			wantFileWrite: false,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(t, tc.backend)
			ctx := context.Background()

			repo, watcher, cleanup, err := newRepository(ctx, cfg, nil)
			require.NoError(t, err)
			defer cleanup()
			require.NoError(t, watcher.Watch(ctx))

			assert.Equal(t, []string{"books"}, repo.ListResources(ctx))

			item, err := domain.ParseItem([]byte(`{"id":"2","title":"Zig"}`))
			require.NoError(t, err)
			require.NoError(t, repo.Append(ctx, "books", item))

			onDisk, err := os.ReadFile(cfg.DataFile)
			require.NoError(t, err)
			if tc.wantFileWrite {
				assert.Contains(t, string(onDisk), "Zig")
			} else {
				assert.Equal(t, seed, string(onDisk))
			}
		})
	}
}

func TestNewRepositoryPipeMode(t *testing.T) {
	cfg := config.Default()
	cfg.OpMode = config.ModePipe

	piped, err := domain.ParseDataset([]byte(`{"tags": []}`))
	require.NoError(t, err)

	repo, _, cleanup, err := newRepository(context.Background(), cfg, piped)
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, []string{"tags"}, repo.ListResources(context.Background()))
}

func TestSqliteKeepsExistingRows(t *testing.T) {
	cfg := testConfig(t, config.BackendSQLite)
	ctx := context.Background()

	repo, _, cleanup, err := newRepository(ctx, cfg, nil)
	require.NoError(t, err)
	item, err := domain.ParseItem([]byte(`{"id":"2"}`))
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, "books", item))
	cleanup()

	// a second start must not re-import the data file over the database
	repo, _, cleanup, err = newRepository(ctx, cfg, nil)
	require.NoError(t, err)
	defer cleanup()

	books, ok := repo.Get(ctx, "books")
	assert.True(t, ok)
	assert.Len(t, books, 2)
}
