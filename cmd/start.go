package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/dailyclocks/internal/model"
)

// startCmd represents the start command.
var startCmd = &cobra.Command{
	Use:     "start TIMER",
	Aliases: []string{"s", "resume"},
	Short:   "Start or resume a timer",
	Long: `Start or resume a timer by id, id prefix or label. Only one timer runs
at a time: starting while another runs does nothing until that one is
paused or finishes.

Examples:
  dailyclocks start Focus
  dailyclocks start 0193a1b2`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTimers,
	RunE:              runStart,
}

// pauseCmd represents the pause command.
var pauseCmd = &cobra.Command{
	Use:     "pause [TIMER]",
	Aliases: []string{"p", "stop"},
	Short:   "Pause a running timer",
	Long: `Pause a timer, keeping its remaining time. Without an argument the
running timer is paused.

Examples:
  dailyclocks pause
  dailyclocks pause Focus`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeTimers,
	RunE:              runPause,
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(pauseCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	t, ok, err := resolveTimer(args[0])
	if err != nil || !ok {
		return err
	}

	if running, ok := ctx.RunningTimer(); ok && running.ID != t.ID {
		if ctx.IsJSON() {
			return ctx.JSONFormatter().PrintTimerAction("busy", running, running.ID)
		}
		ctx.CLIFormatter().Warning("Another timer is running: " + running.Label)
		ctx.CLIFormatter().Muted("Pause it first with 'dailyclocks pause'")
		return nil
	}

	status := "started"
	switch {
	case t.State == model.StateCompleted:
		status = "completed"
	case t.IsRunning():
		status = "already_running"
	}
	if err := ctx.Registry.Start(ctx.Ctx, t.ID); err != nil {
		return err
	}
	return printAction(status, t.ID)
}

func runPause(cmd *cobra.Command, args []string) error {
	var (
		t  model.Timer
		ok bool
	)
	if len(args) == 0 {
		t, ok = ctx.RunningTimer()
		if !ok {
			if ctx.IsJSON() {
				return ctx.JSONFormatter().PrintError("not_running", "no timer is running", "")
			}
			ctx.CLIFormatter().Muted("No timer is running.")
			return nil
		}
	} else {
		var err error
		if t, ok, err = resolveTimer(args[0]); err != nil || !ok {
			return err
		}
	}

	status := "paused"
	if !t.IsRunning() {
		status = "not_running"
	}
	if err := ctx.Registry.Pause(ctx.Ctx, t.ID); err != nil {
		return err
	}
	return printAction(status, t.ID)
}
