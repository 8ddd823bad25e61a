// =============================================================================
// ligaconv - File Ingestion Store
// =============================================================================
//
// Store owns the authoritative list of tracked files. It is the only place the
// list is mutated and exposes four operations on it:
//
//   Ingest  - read + decode new uploads and append them (strictly additive)
//   Toggle  - flip the inclusion flag of one file
//   Restore - replace the list verbatim with a saved snapshot
//   Reset   - empty the list
//
// Every operation applies its change under the write lock in one step, so a
// Snapshot never observes a half-updated list and an entry is either present
// with all its records or not present at all.
//
// INGESTION:
//   Reads within one Ingest call run in parallel (errgroup, bounded by the
//   configured concurrency). The call returns after every read has settled.
//   A file that fails to read or decode is logged and left out; the rest of
//   the batch is unaffected.
//
// =============================================================================

package ingest

import (
	"bytes"
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/ligaconv/internal/csvparser"
	"github.com/ginjaninja78/ligaconv/internal/types"
)

// Per-file failure kinds. Both cause the file to be omitted from the batch.
var (
	ErrRead   = errors.Base("read error")
	ErrDecode = errors.Base("decode error")
)

// Store holds the tracked files.
type Store struct {
	mu           sync.RWMutex
	entries      []types.FileEntry
	justRestored bool

	// inflight counts Ingest calls currently reading or decoding.
	inflight atomic.Int32

	settings       csvparser.Settings
	maxConcurrency int
}

// New creates an empty store.
//
// PARAMETERS:
//   - settings: CSV tokenizer settings used for every decoded file.
//   - maxConcurrency: Upper bound on parallel reads per Ingest call.
//     Zero or negative means unbounded.
func New(settings csvparser.Settings, maxConcurrency int) *Store {
	return &Store{
		settings:       settings,
		maxConcurrency: maxConcurrency,
	}
}

// =============================================================================
// READ PATH
// =============================================================================

// Snapshot returns a copy of the tracked list in order.
func (s *Store) Snapshot() []types.FileEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyEntries(s.entries)
}

// Len returns the number of tracked files.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Get returns the tracked entry with the given id.
func (s *Store) Get(id string) (types.FileEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.ID == id {
			return copyEntry(e), true
		}
	}
	return types.FileEntry{}, false
}

// Has reports whether id is tracked.
func (s *Store) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Processing reports whether any Ingest call is still reading or decoding.
func (s *Store) Processing() bool {
	return s.inflight.Load() > 0
}

// ConsumeJustRestored reports whether Restore ran since the last call, and
// clears the flag.
func (s *Store) ConsumeJustRestored() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.justRestored
	s.justRestored = false
	return v
}

// =============================================================================
// MUTATIONS
// =============================================================================

// pendingFile is a NewUpload selected for reading.
type pendingFile struct {
	id     string
	upload NewUpload
}

// Ingest processes a batch of candidates and returns the entries it added.
//
// PROCESSING RULES:
//   - AlreadyTracked with a known id: kept as is, nothing is read.
//   - AlreadyTracked with an unknown id: logged and skipped.
//   - NewUpload without a .csv extension: logged and skipped.
//   - NewUpload whose id is tracked, or repeated in this batch: skipped.
//   - Every other NewUpload is read and decoded; success appends an entry
//     with Included=true, failure is logged and omits that file.
//
// RETURNS:
//   - The newly appended entries in candidate order (never nil).
func (s *Store) Ingest(ctx context.Context, candidates []Candidate) []types.FileEntry {
	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	logger := zerolog.Ctx(ctx)
	tracked := s.trackedIDs()

	seen := make(map[string]bool)
	var pending []pendingFile

	for _, c := range candidates {
		switch c := c.(type) {
		case AlreadyTracked:
			if tracked[c.ID] {
				logger.Debug().Str("file_id", c.ID).Msg("keeping already tracked file")
			} else {
				logger.Warn().Str("file_id", c.ID).Msg("already tracked reference not found, skipping")
			}

		case NewUpload:
			id := c.ID()
			switch {
			case !hasAcceptedExtension(c.Meta.Name):
				logger.Warn().Str("file", c.Meta.Name).Msg("not a .csv file, skipping")
			case tracked[id]:
				logger.Debug().Str("file_id", id).Msg("file already tracked, skipping")
			case seen[id]:
				logger.Debug().Str("file_id", id).Msg("duplicate file in batch, skipping")
			default:
				seen[id] = true
				pending = append(pending, pendingFile{id: id, upload: c})
			}
		}
	}

	if len(pending) == 0 {
		return []types.FileEntry{}
	}

	results := s.readAll(ctx, pending)

	s.mu.Lock()
	current := make(map[string]bool, len(s.entries))
	for _, e := range s.entries {
		current[e.ID] = true
	}
	added := make([]types.FileEntry, 0, len(results))
	for _, entry := range results {
		if entry == nil {
			continue
		}
		// Another Ingest call may have inserted the same id meanwhile.
		if current[entry.ID] {
			continue
		}
		current[entry.ID] = true
		s.entries = append(s.entries, *entry)
		added = append(added, copyEntry(*entry))
	}
	s.mu.Unlock()

	if len(added) == 0 {
		logger.Warn().Int("files", len(pending)).Msg("no files could be ingested")
	} else {
		logger.Info().Int("added", len(added)).Int("requested", len(pending)).Msg("files ingested")
	}

	return added
}

// readAll reads and decodes pending files in parallel. The result slice is
// aligned with pending; failed files are nil.
func (s *Store) readAll(ctx context.Context, pending []pendingFile) []*types.FileEntry {
	logger := zerolog.Ctx(ctx)
	results := make([]*types.FileEntry, len(pending))

	var g errgroup.Group
	if s.maxConcurrency > 0 {
		g.SetLimit(s.maxConcurrency)
	}

	for i, p := range pending {
		g.Go(func() error {
			records, err := s.readFile(ctx, p.upload)
			if err != nil {
				logger.Error().Err(err).Str("file", p.upload.Meta.Name).Str("file_id", p.id).Msg("error processing file")
				return nil
			}
			results[i] = &types.FileEntry{
				ID:       p.id,
				Name:     p.upload.Meta.Name,
				Records:  records,
				Included: true,
			}
			return nil
		})
	}

	// Goroutines never return errors; failures are recorded as nil results.
	_ = g.Wait()

	return results
}

// readFile reads the full content of one upload and decodes it.
func (s *Store) readFile(ctx context.Context, upload NewUpload) ([]types.Record, error) {
	if upload.Open == nil {
		return nil, errors.WithDetails(ErrRead, "reason", "no content stream")
	}

	rc, err := upload.Open(ctx)
	if err != nil {
		return nil, errors.Errorf("%w: %s", ErrRead, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Errorf("%w: %s", ErrRead, err)
	}

	records, err := csvparser.Parse(bytes.NewReader(data), s.settings)
	if err != nil {
		return nil, errors.Errorf("%w: %s", ErrDecode, err)
	}

	return records, nil
}

// Toggle flips Included for the entry with the given id. It reports whether
// the id was found; unknown ids are a no-op.
func (s *Store) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].Included = !s.entries[i].Included
			return true
		}
	}
	return false
}

// Restore replaces the tracked list with entries, keeping their Included and
// IsRestored values, and marks the store as just restored.
func (s *Store) Restore(entries []types.FileEntry) {
	restored := copyEntries(entries)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = restored
	s.justRestored = true
}

// Reset empties the tracked list.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) trackedIDs() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[string]bool, len(s.entries))
	for _, e := range s.entries {
		ids[e.ID] = true
	}
	return ids
}

func copyEntries(entries []types.FileEntry) []types.FileEntry {
	out := make([]types.FileEntry, len(entries))
	for i, e := range entries {
		out[i] = copyEntry(e)
	}
	return out
}

// copyEntry copies the record slice header; Records themselves are immutable.
func copyEntry(e types.FileEntry) types.FileEntry {
	if e.Records != nil {
		records := make([]types.Record, len(e.Records))
		copy(records, e.Records)
		e.Records = records
	}
	return e
}
