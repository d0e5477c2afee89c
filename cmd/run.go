package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/manav03panchal/dailyclocks/internal/config"
	"github.com/manav03panchal/dailyclocks/internal/daemon"
	"github.com/manav03panchal/dailyclocks/internal/logging"
	"github.com/manav03panchal/dailyclocks/internal/output"
	"github.com/manav03panchal/dailyclocks/internal/runtime"
)

// Run command flags.
var (
	runFlagStop   bool
	runFlagStatus bool
)

// runMetrics counts the completions of the runner started by this process.
var runMetrics *daemon.Metrics

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Keep timers ticking in the foreground",
	Long: `Keep timers ticking and the midnight rollover scheduled without a
dashboard open. Completion alerts fire from this process. Only one runner
may be active; while it runs, other commands that touch the timers wait
for it to stop.

Examples:
  dailyclocks run
  dailyclocks run --status
  dailyclocks run --stop`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runFlagStop, "stop", false, "Stop the active runner")
	runCmd.Flags().BoolVar(&runFlagStatus, "status", false, "Show whether a runner is active")
	runCmd.MarkFlagsMutuallyExclusive("stop", "status")

	runtimeHooks["run"] = func(opts *runtime.Options) {
		if opts.Clock == nil {
			opts.Clock = clockwork.NewRealClock()
		}
		runMetrics = daemon.NewMetrics(opts.Clock)
		opts.WrapSink = runMetrics.Sink
	}

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	switch {
	case runFlagStop:
		return runStopRunner(cmd)
	case runFlagStatus:
		return runRunnerStatus(cmd)
	}

	runner := daemon.NewRunner(ctx.Registry, daemon.Options{
		Fs:             ctx.Fs,
		Clock:          ctx.Clock,
		PollSpec:       ctx.Config.Scheduler.PollSpec,
		RolloverWindow: ctx.Config.Scheduler.RolloverWindow,
		KillTimeout:    ctx.Config.Daemon.KillTimeout,
		Version:        Version,
		Metrics:        runMetrics,
	})

	runCtx, stop := signal.NotifyContext(ctx.Ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !ctx.IsJSON() {
		ctx.CLIFormatter().Success("Runner started. Press Ctrl+C to stop.")
	}
	if err := runner.Run(runCtx); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(runner.Metrics().Snapshot())
	}
	snap := runner.Metrics().Snapshot()
	ctx.CLIFormatter().Muted(fmt.Sprintf("Runner stopped after %d polls, %d completions, %d rollovers.",
		snap.PollsTotal, snap.CompletionsTotal, snap.RolloversTotal))
	return nil
}

// controlRunner builds a runner handle for another process's runner. It
// never opens the store, which that runner holds.
func controlRunner() (*daemon.Runner, error) {
	path := flagConfig
	if path == "" {
		path = config.DefaultFilePath()
	}
	cfg, err := config.Load(afero.NewOsFs(), path)
	if err != nil {
		return nil, err
	}
	return daemon.NewRunner(nil, daemon.Options{
		KillTimeout: cfg.Daemon.KillTimeout,
		Version:     Version,
	}), nil
}

func runStopRunner(cmd *cobra.Command) error {
	runner, err := controlRunner()
	if err != nil {
		return err
	}

	f := standaloneFormatter(cmd)
	err = runner.Stop(logging.NewRequestContext())
	switch {
	case errors.Is(err, daemon.ErrNotRunning):
		if f.Format == output.FormatJSON {
			return f.JSON(map[string]any{"status": "not_running"})
		}
		output.NewCLIFormatter(f).Muted("No runner is active.")
		return nil
	case err != nil:
		return err
	}

	if f.Format == output.FormatJSON {
		return f.JSON(map[string]any{"status": "stopped"})
	}
	output.NewCLIFormatter(f).Success("Runner stopped.")
	return nil
}

func runRunnerStatus(cmd *cobra.Command) error {
	runner, err := controlRunner()
	if err != nil {
		return err
	}

	status := runner.Status()
	f := standaloneFormatter(cmd)
	if f.Format == output.FormatJSON {
		return f.JSON(status)
	}

	cli := output.NewCLIFormatter(f)
	if !status.Running {
		cli.Muted("No runner is active.")
		return nil
	}

	cli.Success(fmt.Sprintf("Runner active (pid %d)", status.PID))
	if status.Uptime != "" {
		f.Printf("  uptime:  %s\n", status.Uptime)
	}
	if status.Health != nil {
		f.Printf("  health:  %s\n", status.Health.Status)
		if status.Health.RunningTimer != "" {
			f.Printf("  running: %s\n", status.Health.RunningTimer)
		}
	}
	if status.Metrics != nil {
		f.Printf("  polls:   %d\n", status.Metrics.PollsTotal)
		f.Printf("  done:    %d\n", status.Metrics.CompletionsTotal)
		if status.Metrics.ErrorsTotal > 0 {
			cli.Warning(fmt.Sprintf("  errors:  %d (last: %s)", status.Metrics.ErrorsTotal, status.Metrics.LastError))
		}
	}
	return nil
}

// standaloneFormatter builds a formatter from the global flags for commands
// that run without a runtime context.
func standaloneFormatter(cmd *cobra.Command) *output.Formatter {
	f := output.NewFormatter()
	f.Writer = cmd.OutOrStdout()
	f.Format = output.ParseFormat(flagFormat)
	f.ColorMode = output.ParseColorMode(flagColor)
	return f
}
