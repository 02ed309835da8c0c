package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/marklet/pkg/runner/show"
)

func addShow(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a bookmarklet and its code",
		Example: `
marklet show 2f1c...
marklet show 2f1c... --yaml
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: idCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()
			s := show.Show{
				Service: e.Service,
				ID:      args[0],
				Format:  output.Format(),
				Out:     cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	topLevel.AddCommand(cmd)
}
