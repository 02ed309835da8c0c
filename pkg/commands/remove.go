package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/marklet/pkg/commands/options"
	"tableflip.dev/marklet/pkg/runner/remove"
	"tableflip.dev/marklet/pkg/snake"
)

func addRemove(topLevel *cobra.Command) {
	co := &options.ConfirmOptions{}

	cmd := &cobra.Command{
		Use:     "rm <id> [id...]",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete bookmarklets and clear their shortcut slots",
		Example: `
marklet rm 2f1c...
marklet rm -y 2f1c... 9a0b...
`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: idCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !co.Yes {
				ok, err := snake.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete %d bookmarklet(s)", len(args)))
				if err != nil {
					return output.HandleError(err)
				}
				if !ok {
					return nil
				}
			}
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()
			s := remove.Remove{
				Service: e.Service,
				IDs:     args,
				Format:  output.Format(),
				Out:     cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddConfirmArgs(cmd, co)
	topLevel.AddCommand(cmd)
}
