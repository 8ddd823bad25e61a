package cmd

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/ginjaninja78/ligaconv/internal/ingest"
	"github.com/ginjaninja78/ligaconv/internal/session"
	"github.com/ginjaninja78/ligaconv/internal/storage"
	"github.com/ginjaninja78/ligaconv/internal/workspace"
)

// decision answers the restore question for a pending session.
type decision int

const (
	decideRestore decision = iota
	decideNew
)

// askDecision is replaced in tests.
var askDecision = promptDecision

// openWorkspace opens the session storage and the workspace. With settle set,
// a pending restore decision is answered before returning. The caller must
// call the returned close func.
func openWorkspace(cmd *cobra.Command, settle bool) (*workspace.Workspace, func(), error) {
	ctx := cmd.Context()

	backend, err := storage.Open(ctx, appConfig.StorageOptions())
	if err != nil {
		return nil, nil, errors.Errorf("failed to open session storage: %w", err)
	}
	closeBackend := func() {
		if err := backend.Close(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("error closing session storage")
		}
	}

	defaults, err := appConfig.DefaultOptions()
	if err != nil {
		closeBackend()
		return nil, nil, err
	}

	files := ingest.New(appConfig.CSV, appConfig.MaxConcurrency)
	sessions := session.New(backend, appConfig.SessionSettings())
	ws := workspace.Open(ctx, files, sessions, defaults)

	if settle && ws.State() == workspace.StateDecisionPending {
		d, err := decide(ctx, ws.PendingSession())
		if err != nil {
			closeBackend()
			return nil, nil, err
		}
		switch d {
		case decideRestore:
			if err := ws.RestoreSession(ctx); err != nil {
				closeBackend()
				return nil, nil, err
			}
		case decideNew:
			ws.StartNewSession(ctx)
		}
	}

	return ws, closeBackend, nil
}

// decide picks restore or new from the flags, a prompt, or the
// non-interactive default (restore).
func decide(ctx context.Context, pending *session.SessionData) (decision, error) {
	switch {
	case restoreFlag:
		return decideRestore, nil
	case newFlag:
		return decideNew, nil
	case !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()):
		zerolog.Ctx(ctx).Debug().Msg("not a terminal, restoring stored session")
		return decideRestore, nil
	default:
		return askDecision(pending)
	}
}

func promptDecision(pending *session.SessionData) (decision, error) {
	restore, err := pterm.DefaultInteractiveConfirm.
		WithDefaultText(pterm.Sprintf("A previous session with %d file(s) was found. Restore it?", len(pending.FileEntries))).
		WithDefaultValue(true).
		Show()
	if err != nil {
		return decideRestore, errors.Errorf("failed to read answer: %w", err)
	}
	if restore {
		return decideRestore, nil
	}
	return decideNew, nil
}
