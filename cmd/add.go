package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/manav03panchal/dailyclocks/internal/errors"
	"github.com/manav03panchal/dailyclocks/internal/model"
	"github.com/manav03panchal/dailyclocks/internal/parser"
)

// Add command flags.
var (
	addFlagHours   int
	addFlagMinutes int
	addFlagSeconds int
	addFlagID      string
)

// addCmd represents the add command.
var addCmd = &cobra.Command{
	Use:     "add LABEL [DURATION]",
	Aliases: []string{"new", "a"},
	Short:   "Add a countdown timer",
	Long: `Add a named countdown timer. The duration is either an expression
(25m, 1h30m, 1.5h, 90s, 01:30:00, or a bare number of minutes) or the
--hours, --minutes and --seconds components.

Examples:
  dailyclocks add Focus 25m
  dailyclocks add "Deep work" 1h30m
  dailyclocks add Tea --minutes 4 --seconds 30`,
	Args:              cobra.RangeArgs(1, 2),
	ValidArgsFunction: completeDurations,
	RunE:              runAdd,
}

func init() {
	addCmd.Flags().IntVar(&addFlagHours, "hours", 0, "Hours component")
	addCmd.Flags().IntVar(&addFlagMinutes, "minutes", 0, "Minutes component")
	addCmd.Flags().IntVar(&addFlagSeconds, "seconds", 0, "Seconds component")
	addCmd.Flags().StringVar(&addFlagID, "id", "", "Use this id instead of a generated one")

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	label := strings.TrimSpace(args[0])
	if label == "" {
		return apperrors.InvalidInput(apperrors.ErrEmptyLabel, "label", args[0])
	}

	secs, err := addDuration(cmd, args)
	if err != nil {
		return err
	}

	var t model.Timer
	if addFlagID != "" {
		t, err = ctx.Registry.AddTimerWithID(ctx.Ctx, addFlagID, label, secs)
	} else {
		t, err = ctx.Registry.AddTimer(ctx.Ctx, label, secs)
	}
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintTimerAction("added", t, ctx.Registry.ActiveTimerID())
	}
	ctx.CLIFormatter().PrintTimerAdded(t)
	return nil
}

// addDuration reads the duration from the argument or, when absent, from
// the component flags. Giving both is an error.
func addDuration(cmd *cobra.Command, args []string) (int, error) {
	components := cmd.Flags().Changed("hours") || cmd.Flags().Changed("minutes") || cmd.Flags().Changed("seconds")

	switch {
	case len(args) == 2 && components:
		return 0, apperrors.NewUserError(
			"duration given twice",
			"Use either a duration argument or --hours/--minutes/--seconds",
		)
	case len(args) == 2:
		secs, err := parser.TotalSeconds(args[1])
		if err != nil {
			var perr *parser.TimeParseError
			if apperrors.As(err, &perr) {
				return 0, perr.ToUserError()
			}
			return 0, err
		}
		return secs, nil
	case components:
		return parser.FromComponents(addFlagHours, addFlagMinutes, addFlagSeconds)
	}

	return 0, apperrors.NewUserError(
		"missing duration",
		"Try 'dailyclocks add Focus 25m' or 'dailyclocks add Focus --minutes 25'",
	)
}
