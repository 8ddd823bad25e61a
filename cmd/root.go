// =============================================================================
// ligaconv - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (ligaconv)
//   ├── addCmd     (ligaconv add <paths|globs>...)
//   ├── listCmd    (ligaconv list)
//   ├── toggleCmd  (ligaconv toggle <id|index>...)
//   ├── optionsCmd (ligaconv options)
//   ├── renderCmd  (ligaconv render)
//   ├── exportCmd  (ligaconv export <file.xlsx>)
//   ├── resetCmd   (ligaconv reset)
//   ├── configCmd  (ligaconv config init|validate|show)
//   └── versionCmd (ligaconv version)
//
// CONFIGURATION:
//   Before any command runs, the root command:
//   1. Loads the configuration (file, LIGACONV_* env, flags) through viper
//   2. Sets up logging and stores the logger in the command context
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ginjaninja78/ligaconv/internal/config"
	"github.com/ginjaninja78/ligaconv/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file. Empty means config.yaml
// in the working directory, if present.
var cfgFile string

// verbose enables debug logging.
var verbose bool

// restoreFlag and newFlag answer the restore decision without a prompt.
var (
	restoreFlag bool
	newFlag     bool
)

// appConfig is the configuration loaded for this run.
var appConfig *config.Config

// logCloser releases the log file, if any.
var logCloser io.Closer

// v holds the merged configuration sources.
var v = config.NewViper()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ligaconv",
	Short: "ligaconv - Convert MTG collection exports to the LigaMagic list format",
	Long: `ligaconv converts card collection exports (.csv) into the line format
accepted by LigaMagic's list import.

Files added with 'ligaconv add' are tracked in a session that survives between
runs. Each file can be included or excluded, and the conversion options apply
to every included file.

Example Usage:
  ligaconv add exports/*.csv           # Track files
  ligaconv options --force-condition --condition sp
  ligaconv render                      # Print the converted list
  ligaconv render --out                # Write it to the output directory
  ligaconv reset                       # Start over`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},

	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "Path to the configuration file (default is ./config.yaml when present)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("backend", "", "Session storage backend: file, memory, sqlite, redis")
	flags.BoolVar(&restoreFlag, "restore", false, "Restore the stored session without asking")
	flags.BoolVar(&newFlag, "new", false, "Discard the stored session without asking")

	rootCmd.MarkFlagsMutuallyExclusive("restore", "new")

	bindFlags(v)
}

// bindFlags maps command line flags onto configuration keys.
func bindFlags(v *viper.Viper) {
	flags := rootCmd.PersistentFlags()
	v.BindPFlag("log_level", flags.Lookup("log-level"))
	v.BindPFlag("session.backend", flags.Lookup("backend"))
}

// initConfig loads the configuration and sets up logging for the command.
func initConfig(cmd *cobra.Command) error {
	if err := config.ReadFile(v, cfgFile); err != nil {
		return err
	}

	loaded, err := config.FromViper(v)
	if err != nil {
		return err
	}
	appConfig = loaded

	logger, closer, err := logging.Setup(logging.Settings{
		Level:   appConfig.LogLevel,
		File:    appConfig.LogFile,
		Verbose: verbose,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	logCloser = closer

	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug().Str("config", used).Msg("using config file")
	}

	cmd.SetContext(logger.WithContext(cmd.Context()))
	return nil
}
