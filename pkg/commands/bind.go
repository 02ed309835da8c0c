package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/marklet/pkg/runner/prefs"
	"tableflip.dev/marklet/pkg/settings"
)

func addBind(topLevel *cobra.Command) {
	clearSlot := false

	cmd := &cobra.Command{
		Use:       "bind <slot> [id]",
		Short:     "Assign a bookmarklet to a shortcut slot",
		ValidArgs: settings.Slots,
		Example: `
marklet bind 1 2f1c...
marklet bind 1 --clear
`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			switch {
			case clearSlot && len(args) == 2:
				return output.HandleError(errors.New("--clear takes no id"))
			case !clearSlot && len(args) == 1:
				return output.HandleError(errors.New("requires an id, or --clear"))
			case len(args) == 2:
				id = args[1]
			}

			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()
			s := prefs.Bind{
				Service: e.Service,
				Slot:    args[0],
				ID:      id,
				Format:  output.Format(),
				Out:     cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	cmd.Flags().BoolVar(&clearSlot, "clear", false, "Unbind the slot.")
	topLevel.AddCommand(cmd)
}
