package cmd

import (
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/manav03panchal/dailyclocks/internal/config"
	"github.com/manav03panchal/dailyclocks/internal/logging"
	"github.com/manav03panchal/dailyclocks/internal/notify"
	"github.com/manav03panchal/dailyclocks/internal/output"
	"github.com/manav03panchal/dailyclocks/internal/validate"
)

// Notify command flags.
var notifyTestFlagLabel string

// notifyCmd represents the notify command.
var notifyCmd = &cobra.Command{
	Use:     "notify",
	Aliases: []string{"alert"},
	Short:   "Check completion alerts",
	Long: `Check the completion alerts configured under notify: the terminal
bell, the audio tone and the webhook.

Examples:
  dailyclocks notify test
  dailyclocks notify test --label "Deep work"`,
	Annotations: map[string]string{annotationRuntime: runtimeNone},
}

// notifyTestCmd fires a completion alert.
var notifyTestCmd = &cobra.Command{
	Use:         "test",
	Short:       "Fire a completion alert as if a timer finished",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationRuntime: runtimeNone},
	RunE:        runNotifyTest,
}

func init() {
	notifyTestCmd.Flags().StringVarP(&notifyTestFlagLabel, "label", "l", "Test timer", "Label in the alert")
	notifyCmd.AddCommand(notifyTestCmd)
	rootCmd.AddCommand(notifyCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(afero.NewOsFs(), configFilePath())
	if err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	reqCtx := logging.NewRequestContext()
	f := standaloneFormatter(cmd)
	cli := output.NewCLIFormatter(f)

	local := config.DefaultRuntimeConfig()
	local.Notify = cfg.Notify
	local.Notify.WebhookURL = ""
	notify.FromConfig(local, os.Stderr, clock).NotifyCompletion(reqCtx, notifyTestFlagLabel)

	result := map[string]any{
		"bell":  cfg.Notify.Bell,
		"audio": cfg.Notify.Audio,
	}

	if cfg.Notify.WebhookURL != "" {
		if err := validate.URL(cfg.Notify.WebhookURL); err != nil {
			return err
		}
		sink := notify.NewWebhookSink(cfg.Notify, notify.NewHTTPClient(cfg.HTTP), clock)
		if err := sink.Send(reqCtx, notifyTestFlagLabel); err != nil {
			result["webhook"] = err.Error()
			if f.Format != output.FormatJSON {
				cli.Error("Webhook failed: " + err.Error())
			}
		} else {
			result["webhook"] = "delivered"
			if f.Format != output.FormatJSON {
				cli.Success("Webhook delivered to " + logging.MaskURL(cfg.Notify.WebhookURL))
			}
		}
	}

	if f.Format == output.FormatJSON {
		return f.JSON(result)
	}
	if !cfg.Notify.Bell && !cfg.Notify.Audio && cfg.Notify.WebhookURL == "" {
		cli.Muted("No alerts are enabled.")
		return nil
	}
	cli.Success("Alert sent for " + notifyTestFlagLabel)
	return nil
}
