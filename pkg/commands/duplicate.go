package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/marklet/pkg/runner/duplicate"
)

func addDuplicate(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "dup <id>",
		Aliases: []string{"duplicate", "copy"},
		Short:   `Copy a bookmarklet as "<name> (copy)"`,
		Example: `
marklet dup 2f1c...
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: idCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()
			s := duplicate.Duplicate{
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
