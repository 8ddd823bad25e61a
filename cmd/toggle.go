package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/ligaconv/internal/types"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle <id|index>...",
	Short: "Include or exclude tracked files",
	Long: `Toggle flips whether a tracked file feeds the output. Files are named by
their id or by their 1-based position in 'ligaconv list'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ws, closeWorkspace, err := openWorkspace(cmd, true)
		if err != nil {
			return err
		}
		defer closeWorkspace()

		ids := make(map[string]bool, len(args))
		for _, arg := range args {
			id := resolveFileID(ws.Files(), arg)
			if err := ws.Toggle(ctx, id); err != nil {
				return err
			}
			ids[id] = true
		}

		out := cmd.OutOrStdout()
		for _, f := range ws.Files() {
			if ids[f.ID] {
				fmt.Fprintf(out, "%s: included=%s\n", f.Name, includedMark(f.Included))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}

// resolveFileID maps a 1-based list position to its id. Anything else is
// taken as an id.
func resolveFileID(files []types.FileEntry, arg string) string {
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(files) {
		return files[n-1].ID
	}
	return arg
}
