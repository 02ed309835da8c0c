package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/marklet/pkg/commands/options"
	"tableflip.dev/marklet/pkg/runner/list"
	"tableflip.dev/marklet/pkg/timeutil"
)

func addList(topLevel *cobra.Command) {
	lo := &options.ListOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved bookmarklets",
		Example: `
marklet list
marklet list -q css --show-id
marklet list --unused 4w
marklet list --launcher --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var unused time.Duration
			if lo.Unused != "" {
				d, err := timeutil.ParseWindow(lo.Unused)
				if err != nil {
					return output.HandleError(err)
				}
				unused = d
			}
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()
			s := list.List{
				Service:  e.Service,
				Query:    lo.Query,
				ShowID:   lo.ShowID,
				Launcher: lo.Launch,
				Unused:   unused,
				Format:   output.Format(),
				Out:      cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddListArgs(cmd, lo)
	topLevel.AddCommand(cmd)
}
