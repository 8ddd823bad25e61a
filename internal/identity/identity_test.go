package identity

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/ligaconv/internal/types"
)

func TestIdentify(t *testing.T) {
	meta := types.FileMeta{Name: "collection.csv", LastModified: 1700000000000, Size: 2048}

	t.Run("format", func(t *testing.T) {
		assert.Equal(t, "collection.csv-1700000000000-2048", Identify(meta))
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Identify(meta), Identify(meta))
	})

	t.Run("differs_on_any_field", func(t *testing.T) {
		base := Identify(meta)
		renamed := meta
		renamed.Name = "other.csv"
		touched := meta
		touched.LastModified++
		grown := meta
		grown.Size++

		assert.NotEqual(t, base, Identify(renamed))
		assert.NotEqual(t, base, Identify(touched))
		assert.NotEqual(t, base, Identify(grown))
	})

	t.Run("dashed_name_splits_from_the_right", func(t *testing.T) {
		dashed := types.FileMeta{Name: "my-deck-2024.csv", LastModified: 17, Size: 9}
		id := Identify(dashed)

		i := strings.LastIndex(id, Separator)
		j := strings.LastIndex(id[:i], Separator)
		assert.Equal(t, "my-deck-2024.csv", id[:j])
		assert.Equal(t, "17", id[j+1:i])
		assert.Equal(t, "9", id[i+1:])
	})

	t.Run("metadata_collision_is_same_file", func(t *testing.T) {
		// Content is never inspected, so equal metadata means equal id.
		other := types.FileMeta{Name: meta.Name, LastModified: meta.LastModified, Size: meta.Size}
		assert.Equal(t, Identify(meta), Identify(other))
	})
}

func TestMetaFromFileInfo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cards.csv")
	require.NoError(t, os.WriteFile(path, []byte("Quantidade\n1\n"), 0o644))

	mtime := time.UnixMilli(1710000000123)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	info, err := os.Stat(path)
	require.NoError(t, err)

	meta := MetaFromFileInfo(path, info)
	assert.Equal(t, "cards.csv", meta.Name)
	assert.Equal(t, int64(1710000000123), meta.LastModified)
	assert.Equal(t, int64(13), meta.Size)
}
