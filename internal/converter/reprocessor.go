package converter

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/ligaconv/internal/types"
)

// IncludedRecords concatenates the records of every included file, in file
// list order. Excluded files contribute nothing.
func IncludedRecords(files []types.FileEntry) []types.Record {
	var records []types.Record
	for _, f := range files {
		if !f.Included {
			continue
		}
		records = append(records, f.Records...)
	}
	return records
}

// Reprocessor keeps the rendered output for the current files and options.
// Call Recompute after every change to the tracked list or the options.
type Reprocessor struct {
	mu     sync.RWMutex
	output string
	runs   int
}

// NewReprocessor returns a Reprocessor with empty output.
func NewReprocessor() *Reprocessor {
	return &Reprocessor{}
}

// Recompute renders the included records of files and stores the result.
func (r *Reprocessor) Recompute(ctx context.Context, files []types.FileEntry, options types.ConversionOptions) string {
	records := IncludedRecords(files)
	output := RenderAll(records, options)

	r.mu.Lock()
	r.output = output
	r.runs++
	r.mu.Unlock()

	zerolog.Ctx(ctx).Debug().
		Int("files", len(files)).
		Int("records", len(records)).
		Msg("output recomputed")

	return output
}

// Output returns the most recently rendered text.
func (r *Reprocessor) Output() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.output
}

// Runs returns how many times Recompute has been called.
func (r *Reprocessor) Runs() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.runs
}
