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
	"github.com/spf13/cobra"
)

// completionCmd represents the completion command.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for dailyclocks.

To load completions:

Bash:
  $ source <(dailyclocks completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ dailyclocks completion bash > /etc/bash_completion.d/dailyclocks
  # macOS:
  $ dailyclocks completion bash > $(brew --prefix)/etc/bash_completion.d/dailyclocks

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ dailyclocks completion zsh > "${fpath[1]}/_dailyclocks"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ dailyclocks completion fish | source

  # To load completions for each session, execute once:
  $ dailyclocks completion fish > ~/.config/fish/completions/dailyclocks.fish

PowerShell:
  PS> dailyclocks completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	Annotations:           map[string]string{annotationRuntime: runtimeNone},
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(out)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
