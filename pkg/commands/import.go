package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/marklet/pkg/commands/options"
	"tableflip.dev/marklet/pkg/records"
	"tableflip.dev/marklet/pkg/runner/transfer"
)

func addImport(topLevel *cobra.Command) {
	imo := &options.ImportOptions{}

	cmd := &cobra.Command{
		Use:   "import <file|glob|-> [...]",
		Short: "Load bookmarklets from an export",
		Long: `Load bookmarklets from one or more export snapshots. Gzip compressed files
are detected automatically. With --mode=replace the first file replaces the
stored collection and any further files are merged into it.`,
		Example: `
marklet import bookmarklets.json
marklet import --mode merge 'backups/**/*.json.gz'
curl -s https://example.com/marks.json | marklet import -
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := records.ParseImportMode(imo.Mode)
			if err != nil {
				return output.HandleError(err)
			}
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()
			s := transfer.Import{
				Service: e.Service,
				Paths:   args,
				Mode:    mode,
				In:      cmd.InOrStdin(),
				Format:  output.Format(),
				Out:     cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddImportArgs(cmd, imo)
	topLevel.AddCommand(cmd)
}
