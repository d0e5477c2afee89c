package cmd

import (
	"github.com/spf13/cobra"
)

// listCmd represents the list command.
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "status"},
	Short:   "List timers",
	Long: `List every timer with its remaining time and state. This is also what
dailyclocks shows when run without a command.

Examples:
  dailyclocks list
  dailyclocks ls --format json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	timers := ctx.Registry.Timers()
	activeID := ctx.Registry.ActiveTimerID()

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintTimers(timers, activeID)
	}
	ctx.CLIFormatter().PrintTimers(timers, activeID)
	return nil
}
