package cmd

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/manav03panchal/dailyclocks/internal/config"
	"github.com/manav03panchal/dailyclocks/internal/output"
)

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"cfg", "settings"},
	Short:   "Inspect application configuration",
	Long: `Inspect the effective configuration: defaults, then the YAML config
file, then DAILYCLOCKS_* environment overrides.

Examples:
  dailyclocks config show
  dailyclocks config show --format json
  dailyclocks config path`,
	Annotations: map[string]string{annotationRuntime: runtimeNone},
}

// configShowCmd prints the effective configuration.
var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Print the effective configuration",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationRuntime: runtimeNone},
	RunE:        runConfigShow,
}

// configPathCmd prints the config file location.
var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file location",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationRuntime: runtimeNone},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(configFilePath())
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func configFilePath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.DefaultFilePath()
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(afero.NewOsFs(), configFilePath())
	if err != nil {
		return err
	}

	f := standaloneFormatter(cmd)
	if f.Format == output.FormatJSON {
		return f.JSON(cfg)
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	f.Print(string(data))
	return nil
}
