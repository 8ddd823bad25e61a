package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("Quantidade,Card (EN),Edicao (Sigla)\n"), 0o644))
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.csv"))
	touch(t, filepath.Join(dir, "b.csv"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "exports", "2024", "c.csv"))
	touch(t, filepath.Join(dir, "exports", "d.CSV.bak"))

	fm := NewFileManager(dir, filepath.Join(dir, "out"))

	t.Run("plain_paths_keep_order", func(t *testing.T) {
		got, err := fm.ExpandInputs([]string{"b.csv", "a.csv"})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "b.csv"), filepath.Join(dir, "a.csv")}, got)
	})

	t.Run("non_csv_plain_path_passes_through", func(t *testing.T) {
		got, err := fm.ExpandInputs([]string{"notes.txt"})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "notes.txt")}, got)
	})

	t.Run("glob", func(t *testing.T) {
		got, err := fm.ExpandInputs([]string{"*.csv"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")}, got)
	})

	t.Run("double_star", func(t *testing.T) {
		got, err := fm.ExpandInputs([]string{"**/*.csv"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			filepath.Join(dir, "a.csv"),
			filepath.Join(dir, "b.csv"),
			filepath.Join(dir, "exports", "2024", "c.csv"),
		}, got)
	})

	t.Run("directory", func(t *testing.T) {
		got, err := fm.ExpandInputs([]string{"exports"})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "exports", "2024", "c.csv")}, got)
	})

	t.Run("duplicates_listed_once", func(t *testing.T) {
		got, err := fm.ExpandInputs([]string{"a.csv", "*.csv", filepath.Join(dir, "a.csv")})
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, filepath.Join(dir, "a.csv"), got[0])
	})

	t.Run("glob_without_matches", func(t *testing.T) {
		got, err := fm.ExpandInputs([]string{"*.json"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("missing_path", func(t *testing.T) {
		_, err := fm.ExpandInputs([]string{"missing.csv"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("bad_pattern", func(t *testing.T) {
		_, err := fm.ExpandInputs([]string{"[.csv"})
		assert.Error(t, err)
	})
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("liga_{timestamp}_{uuid}.txt", nil)
	assert.Regexp(t, regexp.MustCompile(`^liga_\d{8}_\d{6}_[0-9a-f-]{36}\.txt$`), name)

	assert.Equal(t, "collection.txt", GenerateOutputFileName("{name}", map[string]string{"name": "collection"}))
	assert.NotEqual(t, GenerateOutputFileName("{uuid}", nil), GenerateOutputFileName("{uuid}", nil))
}

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()
	fm := NewFileManager(dir, filepath.Join(dir, "nested", "out"))

	path, err := fm.WriteOutput("liga.txt", "4 Lightning Bolt [EDICAO=M10]")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nested", "out", "liga.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "4 Lightning Bolt [EDICAO=M10]", string(data))
}
