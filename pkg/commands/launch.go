package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/marklet/pkg/launcher"
)

func addLaunch(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "launch",
		Aliases: []string{"launcher", "ui"},
		Short:   "Open the interactive launcher",
		Long: `Open the launcher: type to filter by name or tag, enter runs the selection
in the active tab, ctrl+o opens the options surface and esc quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()
			return output.HandleError(launcher.Run(cmd.Context(), e.Service, e.Persistence))
		},
	}

	topLevel.AddCommand(cmd)
}
