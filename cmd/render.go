// =============================================================================
// ligaconv - Render Command
// =============================================================================
//
// This file defines the 'render' command, which prints the converted list for
// every included file under the current options.
//
// COMMAND USAGE:
//   ligaconv render          # print to stdout
//   ligaconv render --out    # write to output_dir/<output_name_format>
//
// OUTPUT FORMAT (one line per record, in file and row order):
//   {qty} {card} [QUALIDADE=code] [EDICAO=set] [EXTRAS=extras]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/ligaconv/pkg/utils"
)

// writeOut writes the output to a file instead of stdout.
var writeOut bool

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the converted list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ws, closeWorkspace, err := openWorkspace(cmd, true)
		if err != nil {
			return err
		}
		defer closeWorkspace()

		output := ws.Output()

		if !writeOut {
			if output != "" {
				fmt.Fprintln(cmd.OutOrStdout(), output)
			}
			return nil
		}

		fm := utils.NewFileManager(appConfig.InputDir, appConfig.OutputDir)
		name := utils.GenerateOutputFileName(appConfig.OutputNameFormat, nil)

		path, err := fm.WriteOutput(name, output)
		if err != nil {
			return err
		}

		zerolog.Ctx(ctx).Info().Str("path", path).Msg("output written")
		pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Wrote %s", path)
		return nil
	},
}

func init() {
	renderCmd.Flags().BoolVar(&writeOut, "out", false, "Write the output to a file in output_dir")
	rootCmd.AddCommand(renderCmd)
}
