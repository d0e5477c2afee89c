// Package cmd provides the CLI commands for dailyclocks.
//
// This software is a derivative work based on Zeit (https://github.com/mrusme/zeit)
// Original work copyright (c) マリウス (mrusme)
// Modifications copyright (c) Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/dailyclocks/internal/logging"
	"github.com/manav03panchal/dailyclocks/internal/output"
	"github.com/manav03panchal/dailyclocks/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagColor  string
	flagDebug  bool
	flagConfig string
	flagDB     string
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// Commands annotated with annotationRuntime: runtimeNone never open the
// store, so they work while a runner or dashboard holds it.
const (
	annotationRuntime = "runtime"
	runtimeNone       = "none"
)

// runtimeHooks adjust the runtime options of a command before the context
// is built, keyed by command name.
var runtimeHooks = map[string]func(*runtime.Options){}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dailyclocks",
	Short: "Several named countdown timers, one running at a time",
	Long: `Dailyclocks keeps a set of named countdown timers. Only one runs at a
time; finished and removed timers land in a daily history that resets at
local midnight.

Examples:
  dailyclocks add Focus 25m
  dailyclocks start Focus
  dailyclocks watch
  dailyclocks pause
  dailyclocks history --since yesterday
  dailyclocks dashboard`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagDebug {
			logging.InitDebug()
		}

		if skipRuntime(cmd) {
			return nil
		}

		opts := runtime.DefaultOptions()
		if flagConfig != "" {
			opts.ConfigPath = flagConfig
		}
		opts.DBPath = flagDB
		opts.Format = output.ParseFormat(flagFormat)
		opts.ColorMode = output.ParseColorMode(flagColor)
		opts.Debug = flagDebug
		opts.Writer = cmd.OutOrStdout()
		if hook, ok := runtimeHooks[cmd.Name()]; ok {
			hook(&opts)
		}

		var err error
		ctx, err = runtime.New(opts)
		if cmd.Name() == cobra.ShellCompRequestCmd {
			// Completions degrade to none when the store is busy.
			return nil
		}
		return err
	},
	RunE: runList,
}

// skipRuntime reports whether cmd runs without the store.
func skipRuntime(cmd *cobra.Command) bool {
	switch {
	case cmd.Annotations[annotationRuntime] == runtimeNone:
		return true
	case cmd.Name() == "help":
		return true
	case cmd == runCmd:
		return runFlagStop || runFlagStatus
	}
	return false
}

// Execute runs the root command and closes the runtime context, if one was
// opened, before returning.
func Execute() error {
	err := rootCmd.Execute()
	if ctx != nil {
		if cerr := ctx.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Config file (default $XDG_CONFIG_HOME/dailyclocks/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "",
		"Database directory, or :memory: for a throwaway store")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Annotations: map[string]string{annotationRuntime: runtimeNone},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("dailyclocks %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
		cmd.Println("")
		cmd.Println("Based on Zeit (https://github.com/mrusme/zeit)")
		cmd.Println("Licensed under SEGV License v1.0")
	},
}

// Die prints an error and exits.
func Die(err error) {
	if flagFormat == string(output.FormatJSON) {
		f := output.NewFormatter()
		f.Format = output.FormatJSON
		output.NewJSONFormatter(f).PrintError("error", err.Error(), runtime.GetSuggestion(err))
	} else {
		os.Stderr.WriteString("Error: " + runtime.FormatError(err) + "\n")
	}
	os.Exit(1)
}
