package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the session and start a new one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, closeWorkspace, err := openWorkspace(cmd, false)
		if err != nil {
			return err
		}
		defer closeWorkspace()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if !ws.HasStoredSession(ctx) {
			pterm.Info.WithWriter(out).Println("No stored session, starting fresh")
		}
		ws.StartNewSession(ctx)

		pterm.Info.WithWriter(out).Println("Started a new session")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
