package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquiplanner/internal/config"
	"liquiplanner/internal/storage"
)

func TestFactoryCreateBackend(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		cfg  Config
	}{
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "l.db")}},
		{"file", Config{Type: FileBackend, DataDirectory: filepath.Join(dir, "files")}},
		{"memory", Config{Type: MemoryBackend}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			res, err := NewFactory(nil).CreateBackend(ctx, tc.cfg)
			require.NoError(t, err)
			t.Cleanup(func() { res.Close() })

			require.NoError(t, res.KV.Set(ctx, storage.DefaultKey, "[]"))
			v, found, err := res.KV.Get(ctx, storage.DefaultKey)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "[]", v)
		})
	}
}

func TestFactoryRejectsInvalidConfig(t *testing.T) {
	f := NewFactory(nil)
	for _, cfg := range []Config{
		{Type: "postgres"},
		{Type: SQLiteBackend},
		{Type: FileBackend},
	} {
		_, err := f.CreateBackend(context.Background(), cfg)
		assert.Error(t, err, "%+v", cfg)
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{DataBackend: "file", DataDir: "./data", SQLiteDBPath: "x.db"})
	require.NoError(t, err)
	assert.Equal(t, FileBackend, cfg.Type)
	assert.Equal(t, "./data", cfg.DataDirectory)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)
	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}

func TestBackendTypeStrings(t *testing.T) {
	assert.Equal(t, []string{"sqlite", "file", "memory"}, GetBackendTypeStrings())
}
