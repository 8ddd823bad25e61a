// =============================================================================
// ligaconv - Config Command
// =============================================================================
//
// COMMAND USAGE:
//   ligaconv config init [path]       # write the defaults (default: config.yaml)
//   ligaconv config validate [path]   # load and check a config file
//   ligaconv config show              # print the effective configuration
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/ligaconv/internal/config"
)

const defaultConfigPath = "config.yaml"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a configuration file with the default values",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := defaultConfigPath
		if len(args) == 1 {
			path = args[0]
		}

		if err := config.Default().Write(path); err != nil {
			return err
		}

		pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Wrote %s", path)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check a configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := defaultConfigPath
		switch {
		case len(args) == 1:
			path = args[0]
		case cfgFile != "":
			path = cfgFile
		}

		if _, err := config.LoadMainConfig(path); err != nil {
			return err
		}

		pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("%s is valid", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := appConfig.Encode()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configValidateCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
