package cmd

import (
	"github.com/spf13/cobra"

	apperrors "github.com/manav03panchal/dailyclocks/internal/errors"
	"github.com/manav03panchal/dailyclocks/internal/history"
	"github.com/manav03panchal/dailyclocks/internal/parser"
)

// History command flags.
var historyFlagSince string

// historyCmd represents the history command.
var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"h", "log"},
	Short:   "Show time spent per timer, grouped by day",
	Long: `Show the history of finished and removed timers, newest day first.
Entries for the same label on the same day are merged.

Examples:
  dailyclocks history
  dailyclocks history --since yesterday
  dailyclocks history --since "last monday"
  dailyclocks history --since 2026-03-01`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyFlagSince, "since", "s", "", "Only show entries since this date")
	historyCmd.RegisterFlagCompletionFunc("since", completeSince)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	entries := ctx.Registry.History()

	if historyFlagSince != "" {
		since, err := parser.ParseSince(historyFlagSince, ctx.Clock.Now())
		if err != nil {
			var perr *parser.TimeParseError
			if apperrors.As(err, &perr) {
				return perr.ToUserError()
			}
			return err
		}
		entries = history.Since(entries, since)
	}

	groups := history.GroupByDate(entries)
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintHistory(groups)
	}
	ctx.CLIFormatter().PrintHistory(groups)
	return nil
}
