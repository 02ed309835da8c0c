package options

import (
	"github.com/spf13/cobra"
)

// ExportOptions
type ExportOptions struct {
	File string
	Gzip bool
}

func AddExportArgs(cmd *cobra.Command, o *ExportOptions) {
	cmd.Flags().StringVarP(&o.File, "out", "o", "",
		"Write to a file instead of stdout.")
	cmd.Flags().BoolVarP(&o.Gzip, "gzip", "z", false,
		"Compress the export with gzip.")
}

// ImportOptions
type ImportOptions struct {
	Mode string
}

func AddImportArgs(cmd *cobra.Command, o *ImportOptions) {
	cmd.Flags().StringVarP(&o.Mode, "mode", "m", "replace",
		`How to combine with existing bookmarklets: "replace" or "merge".`)
}
