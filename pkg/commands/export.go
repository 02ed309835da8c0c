package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/marklet/pkg/commands/options"
	"tableflip.dev/marklet/pkg/runner/transfer"
)

func addExport(topLevel *cobra.Command) {
	eo := &options.ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every bookmarklet as a versioned JSON snapshot",
		Example: `
marklet export > bookmarklets.json
marklet export -z -o backup.json.gz
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()
			s := transfer.Export{
				Service: e.Service,
				File:    eo.File,
				Gzip:    eo.Gzip,
				Out:     cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddExportArgs(cmd, eo)
	topLevel.AddCommand(cmd)
}
