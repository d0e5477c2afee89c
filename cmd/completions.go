package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/dailyclocks/internal/timer"
)

// completeTimers completes the first argument with timer labels, described
// by their remaining time and state.
func completeTimers(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 || ctx == nil || ctx.Registry == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for _, t := range ctx.Registry.Timers() {
		if strings.HasPrefix(strings.ToLower(t.Label), strings.ToLower(toComplete)) {
			completions = append(completions,
				t.Label+"\t"+timer.FormatClock(t.Remaining)+" "+timer.StateLabel(t))
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// completeDurations suggests common durations for add's second argument.
func completeDurations(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	durations := []string{
		"5m\tshort break",
		"15m\tlong break",
		"25m\tpomodoro",
		"45m\tdeep work",
		"1h\tone hour",
	}

	var filtered []string
	for _, d := range durations {
		if strings.HasPrefix(strings.Split(d, "\t")[0], toComplete) {
			filtered = append(filtered, d)
		}
	}
	return filtered, cobra.ShellCompDirectiveNoFileComp
}

// completeSince suggests --since expressions.
func completeSince(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	ranges := []string{
		"today\tsince midnight",
		"yesterday\tsince yesterday",
		"this week\tsince the start of the week",
		"last week\tsince the start of last week",
		"this month\tsince the 1st",
	}

	var filtered []string
	for _, r := range ranges {
		if strings.HasPrefix(strings.Split(r, "\t")[0], toComplete) {
			filtered = append(filtered, r)
		}
	}
	return filtered, cobra.ShellCompDirectiveNoFileComp
}
