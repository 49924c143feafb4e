// Package harness is the command-line front end a kestrel test binary
// embeds. A test binary registers its suites, then hands control to
// Execute, which exposes run, list, watch, and version subcommands over
// the registered suites.
package harness

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/AbdelazizMoustafa10m/kestrel/internal/config"
	"github.com/AbdelazizMoustafa10m/kestrel/internal/logging"
)

// Global flag values accessible to all subcommands.
var (
	flagVerbose  bool
	flagQuiet    bool
	flagConfig   string
	flagNoColor  bool
	flagReporter string
	flagFilters  []string
)

// rootCmd is the base command for a kestrel test binary.
var rootCmd = &cobra.Command{
	Use:   "kestrel",
	Short: "Cooperative test runner",
	Long: `Kestrel runs the test suites registered in this binary. Tests execute
cooperatively on a single scheduler: a test may suspend for asynchronous
work and resume when its continuation completes, and fixtures wrap tests
without caring whether the wrapped work is synchronous.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	// With no subcommand, run the suites once. Help is still available
	// via `--help` / `-h`.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd)
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Check env vars for flags not explicitly set on command line.
		if !cmd.Flags().Changed("verbose") && os.Getenv("KESTREL_VERBOSE") != "" {
			flagVerbose = true
		}
		if !cmd.Flags().Changed("quiet") && os.Getenv("KESTREL_QUIET") != "" {
			flagQuiet = true
		}
		if !cmd.Flags().Changed("no-color") && (os.Getenv("NO_COLOR") != "" || os.Getenv("KESTREL_NO_COLOR") != "") {
			flagNoColor = true
		}

		// Initialize logging.
		jsonFormat := os.Getenv("KESTREL_LOG_FORMAT") == "json"
		logging.Setup(flagVerbose, flagQuiet, jsonFormat)

		// Handle --no-color: disable colored output.
		if flagNoColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose (debug) output (env: KESTREL_VERBOSE)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress all output except errors (env: KESTREL_QUIET)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to kestrel.toml config file")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output (env: KESTREL_NO_COLOR, NO_COLOR)")
	rootCmd.PersistentFlags().StringVar(&flagReporter, "reporter", "", "Report format: console or json")
	rootCmd.PersistentFlags().StringSliceVar(&flagFilters, "filter", nil, "Run only suites matching these patterns (repeatable)")
}

// loadConfig resolves the effective configuration: kestrel.toml layered
// under any flags set on fs.
func loadConfig(fs *pflag.FlagSet) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flagConfig != "" {
		cfg, _, err = config.LoadFromFile(flagConfig)
	} else {
		cfg, _, err = config.Load(".")
	}
	if err != nil {
		return nil, err
	}
	applyFlags(fs, cfg)
	return cfg, nil
}

// applyFlags overrides config values with flags the user set explicitly.
// Unset flags leave the file's values alone.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("reporter") {
		cfg.Runner.Reporter = flagReporter
	}
	if fs.Changed("filter") {
		cfg.Runner.Filters = flagFilters
	}
	if flagNoColor {
		cfg.Runner.NoColor = true
	}
}

// Execute runs the root command and returns the exit code. A run with
// failures or errors exits non-zero even when the command itself
// succeeded.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if _, ok := err.(*runFailedError); !ok {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

// NewRootCmd returns a fresh instance of the root command for external
// tooling such as the shell completion and man page generators. It
// carries the same persistent flags as the global rootCmd, registered
// against local values so the generators never disturb a live run.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           rootCmd.Use,
		Short:         rootCmd.Short,
		Long:          rootCmd.Long,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose (debug) output (env: KESTREL_VERBOSE)")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors (env: KESTREL_QUIET)")
	cmd.PersistentFlags().String("config", "", "Path to kestrel.toml config file")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output (env: KESTREL_NO_COLOR, NO_COLOR)")
	cmd.PersistentFlags().String("reporter", "", "Report format: console or json")
	cmd.PersistentFlags().StringSlice("filter", nil, "Run only suites matching these patterns (repeatable)")

	for _, child := range rootCmd.Commands() {
		cmd.AddCommand(child)
	}
	return cmd
}
