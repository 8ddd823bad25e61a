package ingest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/ginjaninja78/ligaconv/internal/csvparser"
	"github.com/ginjaninja78/ligaconv/internal/identity"
	"github.com/ginjaninja78/ligaconv/internal/types"
)

func setupTestLogger(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

const exportHeader = "Quantidade,Card (EN),Edicao (Sigla),Extras\n"

func upload(name string, modified int64, body string) NewUpload {
	content := exportHeader + body
	return FromBytes(types.FileMeta{Name: name, LastModified: modified, Size: int64(len(content))}, []byte(content))
}

// countingUpload wraps an upload and counts how often it is opened.
func countingUpload(u NewUpload, opens *int, mu *sync.Mutex) NewUpload {
	open := u.Open
	u.Open = func(ctx context.Context) (io.ReadCloser, error) {
		mu.Lock()
		*opens++
		mu.Unlock()
		return open(ctx)
	}
	return u
}

func newTestStore() *Store {
	return New(csvparser.DefaultSettings(), 4)
}

func TestIngest(t *testing.T) {
	ctx := setupTestLogger(t)

	t.Run("new_files_are_included", func(t *testing.T) {
		store := newTestStore()
		a := upload("a.csv", 1, "4,Lightning Bolt,M21,foil\n")

		added := store.Ingest(ctx, []Candidate{a})
		require.Len(t, added, 1)
		assert.Equal(t, identity.Identify(a.Meta), added[0].ID)
		assert.Equal(t, "a.csv", added[0].Name)
		assert.True(t, added[0].Included)
		assert.False(t, added[0].IsRestored)
		require.Len(t, added[0].Records, 1)
		assert.Equal(t, "Lightning Bolt", added[0].Records[0].CardName())
	})

	t.Run("idempotent_reingestion", func(t *testing.T) {
		store := newTestStore()
		var opens int
		var mu sync.Mutex
		a := countingUpload(upload("a.csv", 1, "1,Opt,XLN,\n"), &opens, &mu)

		first := store.Ingest(ctx, []Candidate{a})
		second := store.Ingest(ctx, []Candidate{a})

		assert.Len(t, first, 1)
		assert.Empty(t, second)
		assert.NotNil(t, second)
		assert.Equal(t, 1, store.Len())
		assert.Equal(t, 1, opens, "already tracked file must not be re-read")
	})

	t.Run("duplicates_within_batch", func(t *testing.T) {
		store := newTestStore()
		a := upload("a.csv", 1, "1,Opt,XLN,\n")

		added := store.Ingest(ctx, []Candidate{a, a})
		assert.Len(t, added, 1)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("additive_merge", func(t *testing.T) {
		store := newTestStore()
		a1 := upload("a1.csv", 1, "1,Opt,XLN,\n")
		a2 := upload("a2.csv", 2, "2,Shock,M19,\n")
		b1 := upload("b1.csv", 3, "3,Duress,M19,\n")

		store.Ingest(ctx, []Candidate{a1, a2})
		before := store.Snapshot()
		store.Ingest(ctx, []Candidate{b1})
		after := store.Snapshot()

		require.Len(t, after, 3)
		assert.Equal(t, before, after[:2], "existing entries must be unchanged")
		assert.Equal(t, identity.Identify(b1.Meta), after[2].ID)
	})

	t.Run("result_order_follows_candidates", func(t *testing.T) {
		store := newTestStore()
		var candidates []Candidate
		for i := 0; i < 10; i++ {
			candidates = append(candidates, upload("f"+string(rune('a'+i))+".csv", int64(i), "1,Opt,XLN,\n"))
		}

		added := store.Ingest(ctx, candidates)
		require.Len(t, added, 10)
		for i, e := range added {
			assert.Equal(t, "f"+string(rune('a'+i))+".csv", e.Name)
		}
	})

	t.Run("rejects_non_csv", func(t *testing.T) {
		store := newTestStore()
		added := store.Ingest(ctx, []Candidate{upload("notes.txt", 1, "1,Opt,XLN,\n")})
		assert.Empty(t, added)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("decode_failure_omits_only_that_file", func(t *testing.T) {
		store := newTestStore()
		good := upload("good.csv", 1, "1,Opt,XLN,\n")
		bad := FromBytes(types.FileMeta{Name: "bad.csv", LastModified: 2, Size: 9}, []byte("a,b\n1,2,3\n"))

		added := store.Ingest(ctx, []Candidate{bad, good})
		require.Len(t, added, 1)
		assert.Equal(t, "good.csv", added[0].Name)
		assert.False(t, store.Processing())
	})

	t.Run("read_failure_omits_only_that_file", func(t *testing.T) {
		store := newTestStore()
		good := upload("good.csv", 1, "1,Opt,XLN,\n")
		broken := NewUpload{
			Meta: types.FileMeta{Name: "broken.csv", LastModified: 5, Size: 1},
			Open: func(ctx context.Context) (io.ReadCloser, error) {
				return nil, errors.New("device not ready")
			},
		}

		added := store.Ingest(ctx, []Candidate{broken, good})
		require.Len(t, added, 1)
		assert.Equal(t, "good.csv", added[0].Name)
	})

	t.Run("all_fail_adds_nothing", func(t *testing.T) {
		store := newTestStore()
		broken := NewUpload{Meta: types.FileMeta{Name: "x.csv", Size: 1}}

		added := store.Ingest(ctx, []Candidate{broken})
		assert.Empty(t, added)
		assert.Equal(t, 0, store.Len())
		assert.False(t, store.Processing())
	})

	t.Run("already_tracked_is_kept_without_reading", func(t *testing.T) {
		store := newTestStore()
		restored := types.FileEntry{
			ID:         "old.csv-1-10",
			Name:       "old.csv",
			Records:    []types.Record{{types.FieldQuantity: "1", types.FieldCardName: "Opt"}},
			Included:   false,
			IsRestored: true,
		}
		store.Restore([]types.FileEntry{restored})

		added := store.Ingest(ctx, []Candidate{AlreadyTracked{ID: restored.ID}, AlreadyTracked{ID: "missing"}})
		assert.Empty(t, added)
		assert.Equal(t, []types.FileEntry{restored}, store.Snapshot())
	})

	t.Run("empty_batch_resolves_processing", func(t *testing.T) {
		store := newTestStore()
		added := store.Ingest(ctx, nil)
		assert.Empty(t, added)
		assert.False(t, store.Processing())
	})
}

func TestIngestProcessingFlag(t *testing.T) {
	ctx := setupTestLogger(t)
	store := newTestStore()

	release := make(chan struct{})
	started := make(chan struct{})
	content := exportHeader + "1,Opt,XLN,\n"
	slow := NewUpload{
		Meta: types.FileMeta{Name: "slow.csv", LastModified: 1, Size: int64(len(content))},
		Open: func(ctx context.Context) (io.ReadCloser, error) {
			close(started)
			<-release
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}

	done := make(chan []types.FileEntry)
	go func() {
		done <- store.Ingest(ctx, []Candidate{slow})
	}()

	<-started
	assert.True(t, store.Processing())
	assert.Equal(t, 0, store.Len(), "entry must not be visible before it is complete")

	close(release)
	select {
	case added := <-done:
		assert.Len(t, added, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("ingest did not finish")
	}
	assert.False(t, store.Processing())
	assert.Equal(t, 1, store.Len())
}

func TestConcurrentIngestNeverDuplicates(t *testing.T) {
	ctx := setupTestLogger(t)
	store := newTestStore()
	a := upload("a.csv", 1, "1,Opt,XLN,\n")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Ingest(ctx, []Candidate{a})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.Len())
}

func TestToggle(t *testing.T) {
	ctx := setupTestLogger(t)
	store := newTestStore()
	a := upload("a.csv", 1, "1,Opt,XLN,\n")
	b := upload("b.csv", 2, "1,Shock,M19,\n")
	store.Ingest(ctx, []Candidate{a, b})

	t.Run("flips_only_target", func(t *testing.T) {
		require.True(t, store.Toggle(a.ID()))

		entryA, _ := store.Get(a.ID())
		entryB, _ := store.Get(b.ID())
		assert.False(t, entryA.Included)
		assert.True(t, entryB.Included)

		require.True(t, store.Toggle(a.ID()))
		entryA, _ = store.Get(a.ID())
		assert.True(t, entryA.Included)
	})

	t.Run("unknown_id_is_noop", func(t *testing.T) {
		before := store.Snapshot()
		assert.False(t, store.Toggle("nope"))
		assert.Equal(t, before, store.Snapshot())
	})
}

func TestRestoreAndReset(t *testing.T) {
	store := newTestStore()
	entries := []types.FileEntry{
		{ID: "a.csv-1-10", Name: "a.csv", Records: []types.Record{{types.FieldCardName: "Opt"}}, Included: false},
		{ID: "b.csv-2-20", Name: "b.csv", Records: []types.Record{}, Included: true, IsRestored: true},
	}

	t.Run("restore_fidelity", func(t *testing.T) {
		store.Restore(entries)
		assert.Equal(t, entries, store.Snapshot())
	})

	t.Run("just_restored_consumed_once", func(t *testing.T) {
		assert.True(t, store.ConsumeJustRestored())
		assert.False(t, store.ConsumeJustRestored())
	})

	t.Run("snapshot_is_a_copy", func(t *testing.T) {
		snap := store.Snapshot()
		snap[0].Included = true
		snap[0].Records[0] = types.Record{}
		assert.Equal(t, entries, store.Snapshot())
	})

	t.Run("reset_empties", func(t *testing.T) {
		store.Reset()
		assert.Empty(t, store.Snapshot())
		assert.Equal(t, 0, store.Len())
	})
}

func TestFromPath(t *testing.T) {
	ctx := setupTestLogger(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "collection.csv")
	require.NoError(t, os.WriteFile(path, []byte(exportHeader+"2,Opt,XLN,\n"), 0o644))

	u, err := FromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "collection.csv", u.Meta.Name)

	store := newTestStore()
	added := store.Ingest(ctx, []Candidate{u})
	require.Len(t, added, 1)
	assert.Equal(t, "2", added[0].Records[0].Quantity())

	_, err = FromPath(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	_, err = FromPath(dir)
	assert.Error(t, err)
}
