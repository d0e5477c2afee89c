package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/manav03panchal/dailyclocks/internal/errors"
)

// Reset command flags.
var resetFlagAll bool

// resetCmd represents the reset command.
var resetCmd = &cobra.Command{
	Use:   "reset [TIMER]",
	Short: "Reset a timer to its full duration",
	Long: `Reset a timer to its full duration and pause it. With --all every
timer that has not finished is reset.

Examples:
  dailyclocks reset Focus
  dailyclocks reset --all`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeTimers,
	RunE:              runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetFlagAll, "all", "a", false, "Reset every timer")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	if resetFlagAll {
		if len(args) > 0 {
			return apperrors.NewUserError("reset takes a timer or --all, not both", "")
		}
		n, err := ctx.Registry.ResetAll(ctx.Ctx)
		if err != nil {
			return err
		}
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]any{"status": "reset", "count": n})
		}
		ctx.CLIFormatter().Success(fmt.Sprintf("Reset %d timers", n))
		return nil
	}

	if len(args) == 0 {
		return apperrors.NewUserError("no timer given", "Name a timer or use --all")
	}

	t, ok, err := resolveTimer(args[0])
	if err != nil || !ok {
		return err
	}
	if err := ctx.Registry.Reset(ctx.Ctx, t.ID); err != nil {
		return err
	}
	return printAction("reset", t.ID)
}
