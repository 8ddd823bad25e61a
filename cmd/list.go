package cmd

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/ligaconv/internal/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked files and the current options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, closeWorkspace, err := openWorkspace(cmd, true)
		if err != nil {
			return err
		}
		defer closeWorkspace()

		out := cmd.OutOrStdout()
		files := ws.Files()

		if len(files) == 0 {
			fmt.Fprintln(out, "No files tracked. Use 'ligaconv add' to add some.")
		} else {
			data := pterm.TableData{{"#", "Included", "Name", "Records", "ID"}}
			for i, f := range files {
				data = append(data, []string{
					strconv.Itoa(i + 1),
					includedMark(f.Included),
					f.Name,
					strconv.Itoa(len(f.Records)),
					f.ID,
				})
			}
			if err := pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(out).Render(); err != nil {
				return err
			}
		}

		fmt.Fprintln(out)
		printOptions(cmd, ws.Options())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func includedMark(included bool) string {
	if included {
		return color.GreenString("yes")
	}
	return color.HiBlackString("no")
}

func printOptions(cmd *cobra.Command, opts types.ConversionOptions) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Condition:       %s (%s)\n", opts.Condition, opts.Condition.Label())
	fmt.Fprintf(out, "Force condition: %t\n", opts.ForceCondition)
	fmt.Fprintf(out, "Ignore edition:  %t\n", opts.IgnoreEdition)
}
