// =============================================================================
// ligaconv - Add Command
// =============================================================================
//
// This file defines the 'add' command, which tracks collection exports in the
// current session.
//
// COMMAND USAGE:
//   ligaconv add <paths|dirs|globs>... [--restore|--new]
//
// PROCESSING PIPELINE:
//   1. Expand the arguments into file paths (relative to input_dir)
//   2. Stat each file to build its identity
//   3. Ingest: files already tracked are kept, new ones are read and decoded
//      in parallel, files that fail to decode are skipped
//   4. Recompute the output and save the session
//   5. Print a summary
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/ginjaninja78/ligaconv/internal/ingest"
	"github.com/ginjaninja78/ligaconv/internal/validation"
	"github.com/ginjaninja78/ligaconv/pkg/utils"
)

var addCmd = &cobra.Command{
	Use:   "add <paths|dirs|globs>...",
	Short: "Track collection export files",
	Long: `Add reads collection exports and tracks them in the session.

Arguments can be files, directories (every .csv below them is added) or
glob patterns such as "exports/**/*.csv". Relative arguments are resolved
against input_dir.

Adding a file that is already tracked does nothing, so the same command can be
repeated safely. Files that are not .csv or that cannot be decoded are
skipped with a warning.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	fm := utils.NewFileManager(appConfig.InputDir, appConfig.OutputDir)
	paths, err := fm.ExpandInputs(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no input files matched")
	}

	uploads := make([]ingest.NewUpload, 0, len(paths))
	for _, path := range paths {
		upload, err := ingest.FromPath(path)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("skipping input")
			continue
		}
		uploads = append(uploads, upload)
	}

	ws, closeWorkspace, err := openWorkspace(cmd, true)
	if err != nil {
		return err
	}
	defer closeWorkspace()

	added, err := ws.Ingest(ctx, uploads)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, entry := range added {
		fmt.Fprintf(out, "%s %s (%d records)\n", color.GreenString("+"), entry.Name, len(entry.Records))
	}

	skipped := len(paths) - len(added)
	fmt.Fprintf(out, "Added %s file(s), %d skipped, %d tracked\n",
		color.New(color.Bold).Sprint(len(added)), skipped, len(ws.Files()))

	if len(added) > 0 {
		result := validation.ValidateAll(added)
		if len(result.Errors) > 0 {
			fmt.Fprintf(out, "%s %d error(s), %d warning(s)\n",
				color.YellowString("!"), result.ErrorCount, result.WarningCount)
			fmt.Fprint(out, validation.FormatErrors(result.Errors))
		}
	}

	return nil
}
