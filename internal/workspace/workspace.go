// =============================================================================
// ligaconv - Workspace
// =============================================================================
//
// The workspace ties the tracked file list, the conversion options, the
// rendered output and the persisted session together.
//
// STARTUP PROTOCOL:
//   1. Open loads the stored session, if any.
//   2. With a stored session the workspace waits for a decision. Until then
//      Ingest, Toggle and SetOptions fail with ErrDecisionPending.
//   3. RestoreSession seeds files and options from the stored session as
//      they are (nothing is re-read). StartNewSession clears storage and
//      starts from the configured defaults.
//
// CHANGE FAN-OUT:
//   Every change to the tracked list or the options recomputes the output
//   and saves the session. The change produced by a restore itself is not
//   saved again, since storage already holds exactly that state.
//
// =============================================================================

package workspace

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/ginjaninja78/ligaconv/internal/converter"
	"github.com/ginjaninja78/ligaconv/internal/ingest"
	"github.com/ginjaninja78/ligaconv/internal/session"
	"github.com/ginjaninja78/ligaconv/internal/types"
	"github.com/ginjaninja78/ligaconv/internal/validation"
)

var (
	// ErrDecisionPending is returned by mutations while a stored session
	// waits for RestoreSession or StartNewSession.
	ErrDecisionPending = errors.Base("restore decision pending")

	// ErrNotFound is returned for an unknown file id.
	ErrNotFound = errors.Base("file not found")

	// ErrNoStoredSession is returned by RestoreSession when there is nothing
	// to restore.
	ErrNoStoredSession = errors.Base("no stored session")
)

// State is the decision state of a workspace.
type State int

const (
	// StateReady accepts changes.
	StateReady State = iota

	// StateDecisionPending waits for RestoreSession or StartNewSession.
	StateDecisionPending
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateDecisionPending:
		return "decision-pending"
	default:
		return "unknown"
	}
}

// Workspace is the single owner of the session state for one run.
type Workspace struct {
	mu sync.Mutex

	files       *ingest.Store
	sessions    *session.Store
	reprocessor *converter.Reprocessor

	defaults types.ConversionOptions
	options  types.ConversionOptions
	state    State
	pending  *session.SessionData
}

// Open creates a workspace over files and sessions. defaults seeds the
// options of a new session.
func Open(ctx context.Context, files *ingest.Store, sessions *session.Store, defaults types.ConversionOptions) *Workspace {
	w := &Workspace{
		files:       files,
		sessions:    sessions,
		reprocessor: converter.NewReprocessor(),
		defaults:    defaults,
		options:     defaults,
		state:       StateReady,
	}

	if stored := sessions.Load(ctx); stored != nil {
		zerolog.Ctx(ctx).Info().
			Int("files", len(stored.FileEntries)).
			Int64("timestamp", stored.Timestamp).
			Msg("found stored session")
		w.pending = stored
		w.state = StateDecisionPending
	}

	return w
}

// State returns the decision state.
func (w *Workspace) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// PendingSession returns the stored session awaiting a decision, or nil.
func (w *Workspace) PendingSession() *session.SessionData {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}

// RestoreSession adopts the stored session.
func (w *Workspace) RestoreSession(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateDecisionPending || w.pending == nil {
		return errors.WithStack(ErrNoStoredSession)
	}

	stored := w.pending
	w.pending = nil
	w.state = StateReady

	w.files.Restore(stored.FileEntries)
	w.options = stored.Options

	zerolog.Ctx(ctx).Info().Int("files", len(stored.FileEntries)).Msg("session restored")

	w.changed(ctx)
	return nil
}

// StartNewSession discards the stored session and resets to the defaults.
// It is also valid when no decision is pending.
func (w *Workspace) StartNewSession(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.sessions.Clear(ctx)
	w.pending = nil
	w.state = StateReady

	w.files.Reset()
	w.options = w.defaults
	w.reprocessor.Recompute(ctx, nil, w.options)

	zerolog.Ctx(ctx).Info().Msg("started new session")
}

// Classify turns uploads into ingestion candidates: uploads whose id is
// already tracked become AlreadyTracked references.
func (w *Workspace) Classify(uploads []ingest.NewUpload) []ingest.Candidate {
	candidates := make([]ingest.Candidate, 0, len(uploads))
	for _, u := range uploads {
		if id := u.ID(); w.files.Has(id) {
			candidates = append(candidates, ingest.AlreadyTracked{ID: id})
			continue
		}
		candidates = append(candidates, u)
	}
	return candidates
}

// Ingest adds uploads to the tracked list and returns the new entries.
func (w *Workspace) Ingest(ctx context.Context, uploads []ingest.NewUpload) ([]types.FileEntry, error) {
	if err := w.ready(); err != nil {
		return nil, err
	}

	added := w.files.Ingest(ctx, w.Classify(uploads))
	if len(added) == 0 {
		return added, nil
	}

	logger := zerolog.Ctx(ctx)
	for _, finding := range validation.ValidateAll(added).Errors {
		level := zerolog.WarnLevel
		if finding.Severity == validation.SeverityError {
			level = zerolog.ErrorLevel
		}
		logger.WithLevel(level).
			Str("file", finding.FileName).
			Int("row", finding.RowNumber).
			Str("field", finding.Field).
			Msg(finding.Message)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.changed(ctx)

	return added, nil
}

// Toggle flips inclusion of the file with the given id.
func (w *Workspace) Toggle(ctx context.Context, id string) error {
	if err := w.ready(); err != nil {
		return err
	}

	if !w.files.Toggle(id) {
		return errors.WithDetails(ErrNotFound, "id", id)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.changed(ctx)

	return nil
}

// SetOptions replaces the conversion options.
func (w *Workspace) SetOptions(ctx context.Context, options types.ConversionOptions) error {
	if err := w.ready(); err != nil {
		return err
	}
	if err := options.Validate(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if options == w.options {
		return nil
	}
	w.options = options
	w.changed(ctx)

	return nil
}

// Options returns the current conversion options.
func (w *Workspace) Options() types.ConversionOptions {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.options
}

// Files returns a copy of the tracked list.
func (w *Workspace) Files() []types.FileEntry {
	return w.files.Snapshot()
}

// Output returns the rendered text for the current state.
func (w *Workspace) Output() string {
	return w.reprocessor.Output()
}

// Processing reports whether an ingestion is running.
func (w *Workspace) Processing() bool {
	return w.files.Processing()
}

// HasStoredSession reports whether a usable session is in storage.
func (w *Workspace) HasStoredSession(ctx context.Context) bool {
	return w.sessions.HasStoredSession(ctx)
}

// Validate checks the records of every tracked file.
func (w *Workspace) Validate() *validation.ValidationResult {
	return validation.ValidateAll(w.files.Snapshot())
}

func (w *Workspace) ready() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateDecisionPending {
		return errors.WithStack(ErrDecisionPending)
	}
	return nil
}

// changed recomputes the output and persists the session. Callers hold w.mu.
func (w *Workspace) changed(ctx context.Context) {
	files := w.files.Snapshot()
	w.reprocessor.Recompute(ctx, files, w.options)

	if w.files.ConsumeJustRestored() {
		zerolog.Ctx(ctx).Debug().Msg("skipping save right after restore")
		return
	}

	w.sessions.Save(ctx, files, w.options)
}
