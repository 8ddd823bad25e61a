package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/ligaconv/internal/spreadsheet"
)

var exportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export tracked files and converted lines to a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, closeWorkspace, err := openWorkspace(cmd, true)
		if err != nil {
			return err
		}
		defer closeWorkspace()

		if err := spreadsheet.Export(args[0], ws.Files(), ws.Options()); err != nil {
			return err
		}

		pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Exported %d file(s) to %s", len(ws.Files()), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
