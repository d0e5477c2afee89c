package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/dailyclocks/internal/model"
	"github.com/manav03panchal/dailyclocks/internal/timer"
)

// watchCmd represents the watch command.
var watchCmd = &cobra.Command{
	Use:     "watch [TIMER]",
	Aliases: []string{"w"},
	Short:   "Show a live countdown",
	Long: `Show a live countdown with a progress bar until the timer finishes.
Without an argument the running timer is watched.

Keys:
  space  start or pause
  q      quit (the timer keeps its state)

Examples:
  dailyclocks watch
  dailyclocks watch Focus`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeTimers,
	RunE:              runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	var (
		t  model.Timer
		ok bool
	)
	if len(args) == 0 {
		t, ok = ctx.RunningTimer()
		if !ok {
			ctx.CLIFormatter().Muted("No timer is running. Name one: dailyclocks watch <timer>")
			return nil
		}
	} else {
		var err error
		if t, ok, err = resolveTimer(args[0]); err != nil || !ok {
			return err
		}
	}

	sched, err := ctx.StartBackground()
	if err != nil {
		return err
	}
	defer sched.Stop()

	runCtx, stop := signal.NotifyContext(ctx.Ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	display := timer.NewCountdownDisplay()
	display.Writer = cmd.OutOrStdout()
	display.UseColor = ctx.Formatter.IsColorEnabled()

	w := timer.NewWatcher(ctx.Registry, t.ID, ctx.Clock, ctx.Config.Timer.TickInterval)
	w.SetDisplay(display)
	w.Input = cmd.InOrStdin()
	return w.Run(runCtx)
}
