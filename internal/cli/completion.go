package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcore/pkg/edge"
)

var shells = []string{"bash", "zsh", "fish", "powershell"}

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for flowcore and print it to stdout.

  $ source <(flowcore completion bash)
  $ flowcore completion zsh > "${fpath[1]}/_flowcore"
  $ flowcore completion fish | source
  PS> flowcore completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// registerValueCompletions wires fixed-value flags to shell completion.
func registerValueCompletions(root *cobra.Command) {
	values := map[string]map[string][]string{
		"route":  {"type": edge.Types},
		"export": {"format": {formatDOT, formatSVG}},
	}
	for _, cmd := range root.Commands() {
		for flag, vals := range values[cmd.Name()] {
			_ = cmd.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions(vals, cobra.ShellCompDirectiveNoFileComp))
		}
	}
}
