package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/marklet/pkg/commands/options"
	"tableflip.dev/marklet/pkg/runner/run"
	"tableflip.dev/marklet/pkg/snake"
)

func addRun(topLevel *cobra.Command) {
	co := &options.ConfirmOptions{}

	cmd := &cobra.Command{
		Use:   "run <id>",
		Short: "Run a bookmarklet in the browser's active tab",
		Long: `Run a bookmarklet in the active tab of the browser. The browser is reached
over the DevTools protocol; set browser.debuggerURL to attach to a running
browser, otherwise one is launched.`,
		Example: `
marklet run 2f1c...
marklet run -y 2f1c... --json
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: idCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()
			s := run.Run{
				Service: e.Service,
				ID:      args[0],
				Yes:     co.Yes,
				Confirm: func(name string) (bool, error) {
					return snake.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Run %s", name))
				},
				Format: output.Format(),
				Out:    cmd.OutOrStdout(),
			}
			err = s.Do(cmd.Context())
			if errors.Is(err, run.ErrCancelled) {
				return nil
			}
			return output.HandleError(err)
		},
	}

	options.AddConfirmArgs(cmd, co)
	topLevel.AddCommand(cmd)
}
