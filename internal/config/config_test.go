package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/ginjaninja78/ligaconv/internal/storage"
	"github.com/ginjaninja78/ligaconv/internal/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, ".", c.InputDir)
	assert.Equal(t, "./output", c.OutputDir)
	assert.Equal(t, "liga_{timestamp}_{uuid}.txt", c.OutputNameFormat)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 4, c.MaxConcurrency)
	assert.Equal(t, ",", c.CSV.Delimiter)
	assert.Equal(t, "file", c.Session.Backend)
	assert.Equal(t, "mtg-converter-session", c.Session.Key)
	assert.Equal(t, "1.0.0", c.Session.Version)
	assert.Equal(t, filepath.Join(".ligaconv", "session.db"), c.Session.SQLitePath)

	opts, err := c.DefaultOptions()
	require.NoError(t, err)
	assert.Equal(t, types.DefaultOptions(), opts)
}

func TestLoadMainConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("partial_file_gets_defaults", func(t *testing.T) {
		path := writeFile(t, dir, "partial.yaml", `
log_level: debug
session:
  backend: sqlite
  dir: /tmp/state
defaults:
  condition: SP
  force_condition: true
`)
		c, err := LoadMainConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "debug", c.LogLevel)
		assert.Equal(t, "sqlite", c.Session.Backend)
		assert.Equal(t, filepath.Join("/tmp/state", "session.db"), c.Session.SQLitePath)
		assert.Equal(t, "mtg-converter-session", c.Session.Key)

		opts, err := c.DefaultOptions()
		require.NoError(t, err)
		assert.Equal(t, types.ConversionOptions{Condition: types.ConditionSP, ForceCondition: true}, opts)

		assert.Equal(t, storage.Options{
			Backend:    "sqlite",
			Dir:        "/tmp/state",
			SQLitePath: filepath.Join("/tmp/state", "session.db"),
			RedisURL:   "redis://localhost:6379/0",
		}, c.StorageOptions())
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := LoadMainConfig(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid_yaml", func(t *testing.T) {
		path := writeFile(t, dir, "broken.yaml", "log_level: [")
		_, err := LoadMainConfig(path)
		assert.Error(t, err)
	})

	t.Run("invalid_values", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
		}{
			{"log_level", "log_level: loud\n"},
			{"backend", "session:\n  backend: etcd\n"},
			{"condition", "defaults:\n  condition: mint\n"},
			{"concurrency", "max_concurrency: -2\n"},
			{"name_format", "output_name_format: out/{uuid}.txt\n"},
			{"delimiter", "csv:\n  delimiter: \"::\"\n"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				path := writeFile(t, dir, tt.name+".yaml", tt.content)
				_, err := LoadMainConfig(path)
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalid))
			})
		}
	})
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	require.NoError(t, Default().Write(path))

	loaded, err := LoadMainConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), loaded)

	t.Run("refuses_overwrite", func(t *testing.T) {
		assert.Error(t, Default().Write(path))
	})
}

func TestViper(t *testing.T) {
	t.Run("defaults_without_file", func(t *testing.T) {
		t.Chdir(t.TempDir())

		v := NewViper()
		require.NoError(t, ReadFile(v, ""))

		c, err := FromViper(v)
		require.NoError(t, err)
		assert.Equal(t, Default(), c)
	})

	t.Run("explicit_file_must_exist", func(t *testing.T) {
		v := NewViper()
		assert.Error(t, ReadFile(v, filepath.Join(t.TempDir(), "missing.yaml")))
	})

	t.Run("env_overrides_file", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "config.yaml", "log_level: warn\nsession:\n  backend: sqlite\n")
		t.Setenv("LIGACONV_SESSION_BACKEND", "memory")
		t.Setenv("LIGACONV_MAX_CONCURRENCY", "8")

		v := NewViper()
		require.NoError(t, ReadFile(v, path))

		c, err := FromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "warn", c.LogLevel)
		assert.Equal(t, "memory", c.Session.Backend)
		assert.Equal(t, 8, c.MaxConcurrency)
	})

	t.Run("override_wins", func(t *testing.T) {
		v := NewViper()
		v.Set("defaults.condition", "hp")

		c, err := FromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "hp", c.Defaults.Condition)
		assert.Equal(t, types.ConditionHP.Label(), types.Condition(c.Defaults.Condition).Label())
	})
}

func TestSessionSettings(t *testing.T) {
	c := Default()
	c.Session.Key = "k"
	c.Session.Version = "2.0.0"

	s := c.SessionSettings()
	assert.Equal(t, "k", s.Key)
	assert.Equal(t, "2.0.0", s.Version)
}
