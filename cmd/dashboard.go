package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/dailyclocks/internal/logging"
	"github.com/manav03panchal/dailyclocks/internal/tui"
)

// dashboardCmd represents the dashboard command.
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash", "d", "tui"},
	Short:   "Open the interactive TUI dashboard",
	Long: `Open an interactive terminal dashboard with a Timers tab and a
History tab. Timers keep ticking while it is open, and are reset
after local midnight.

Keyboard Controls:
  a      - Add a timer
  s      - Start the selected timer
  p      - Pause the selected timer
  r / R  - Reset the selected timer / all timers
  x      - Remove the selected timer
  tab    - Switch between Timers and History
  q      - Quit dashboard

Examples:
  dailyclocks dashboard
  dailyclocks dash`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	sched, err := ctx.StartBackground()
	if err != nil {
		return err
	}
	defer sched.Stop()

	// Log lines would tear the alternate screen.
	if !flagDebug {
		logging.Discard()
	}

	return tui.Run(tui.DashboardConfig{
		Ctx:             ctx.Ctx,
		Registry:        ctx.Registry,
		RefreshInterval: ctx.Config.Dashboard.RefreshInterval,
	})
}
