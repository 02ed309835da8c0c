package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/marklet/pkg/command"
	"tableflip.dev/marklet/pkg/runner/dispatch"
)

func addCommand(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "command <name>",
		Short: "Dispatch a keyboard shortcut command",
		Long: `Dispatch a shortcut command the way a global hotkey would. Bind your
desktop's hotkeys to these invocations; the shortcut mode decides whether a
run-slot command runs its bookmarklet or opens the launcher.`,
		Example: `
marklet command open-launcher
marklet command run-slot-1
`,
		ValidArgs: command.Names(),
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()
			s := dispatch.Command{
				Service: e.Service,
				Name:    args[0],
				Format:  output.Format(),
				Out:     cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	topLevel.AddCommand(cmd)
}
