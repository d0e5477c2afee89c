package cmd

import (
	"github.com/spf13/cobra"
)

// removeCmd represents the remove command.
var removeCmd = &cobra.Command{
	Use:     "remove TIMER",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a timer and record it in the history",
	Long: `Remove a timer. The time spent on it so far is added to today's
history.

Examples:
  dailyclocks remove Focus
  dailyclocks rm 0193a1b2`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTimers,
	RunE:              runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	t, ok, err := resolveTimer(args[0])
	if err != nil || !ok {
		return err
	}

	activeID := ctx.Registry.ActiveTimerID()
	if err := ctx.Registry.Remove(ctx.Ctx, t.ID); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintTimerAction("removed", t, activeID)
	}
	ctx.CLIFormatter().PrintRemoved(t)
	return nil
}
