package harness

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/kestrel/engine"
	"github.com/AbdelazizMoustafa10m/kestrel/internal/config"
	"github.com/AbdelazizMoustafa10m/kestrel/internal/logging"
	"github.com/AbdelazizMoustafa10m/kestrel/report"
	"github.com/AbdelazizMoustafa10m/kestrel/suite"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the registered suites once",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// runFailedError marks a completed run whose summary carries failures or
// errors. Execute maps it to exit code 1 without printing it again; the
// reporter already showed the summary.
type runFailedError struct {
	counters engine.Counters
}

func (e *runFailedError) Error() string {
	return fmt.Sprintf("%d failed, %d errors", e.counters.Fail, e.counters.Error)
}

func runOnce(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	suites, err := suite.Match(cfg.Runner.Filters)
	if err != nil {
		return err
	}

	counters, err := runSuites(cfg, suites, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if counters.Failed() {
		return &runFailedError{counters: counters}
	}
	return nil
}

// runSuites executes suites under a fresh environment and blocks until
// the run's terminal event has been reported.
func runSuites(cfg *config.Config, suites []*suite.Suite, out io.Writer) (engine.Counters, error) {
	env := engine.NewEnv(engine.WithLogger(logging.New("engine")))
	if err := installReporter(cfg, env, out); err != nil {
		return engine.Counters{}, err
	}

	namespaces := make([]*engine.Namespace, 0, len(suites))
	for _, s := range suites {
		if err := s.Bind(env); err != nil {
			return engine.Counters{}, err
		}
		namespaces = append(namespaces, s.Namespace())
	}

	sched := engine.NewScheduler(env)
	done := make(chan engine.Counters, 1)
	err := engine.RunTests(env, sched, func(c engine.Counters) { done <- c }, namespaces...)
	if err != nil {
		return engine.Counters{}, err
	}
	return <-done, nil
}

func installReporter(cfg *config.Config, env *engine.Env, out io.Writer) error {
	switch cfg.Runner.Reporter {
	case "", "console":
		var opts []report.ConsoleOption
		if cfg.Runner.NoColor {
			opts = append(opts, report.WithoutColor())
		}
		report.NewConsole(out, opts...).Install(env.Dispatch())
	case "json":
		report.NewJSON(out).Install(env.Dispatch())
	default:
		return fmt.Errorf("unknown reporter %q (expected console or json)", cfg.Runner.Reporter)
	}
	return nil
}
