package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/ligaconv/internal/types"
)

var (
	optCondition      string
	optForceCondition bool
	optIgnoreEdition  bool
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Show or change the conversion options",
	Long: `Options shows the conversion options. Any flag given changes that option
and leaves the others as they are.

Conditions: nm (Near Mint), sp (Slightly Played), mp (Moderately Played),
hp (Heavily Played), dm (Damaged). The condition is only written when
--force-condition is on.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ws, closeWorkspace, err := openWorkspace(cmd, true)
		if err != nil {
			return err
		}
		defer closeWorkspace()

		opts := ws.Options()
		flags := cmd.Flags()

		if flags.Changed("condition") {
			condition, err := types.ParseCondition(optCondition)
			if err != nil {
				return err
			}
			opts.Condition = condition
		}
		if flags.Changed("force-condition") {
			opts.ForceCondition = optForceCondition
		}
		if flags.Changed("ignore-edition") {
			opts.IgnoreEdition = optIgnoreEdition
		}

		if err := ws.SetOptions(ctx, opts); err != nil {
			return err
		}

		printOptions(cmd, ws.Options())
		return nil
	},
}

func init() {
	optionsCmd.Flags().StringVar(&optCondition, "condition", "", "Condition code: nm, sp, mp, hp, dm")
	optionsCmd.Flags().BoolVar(&optForceCondition, "force-condition", false, "Write the condition on every line")
	optionsCmd.Flags().BoolVar(&optIgnoreEdition, "ignore-edition", false, "Leave the edition out of every line")

	rootCmd.AddCommand(optionsCmd)
}
