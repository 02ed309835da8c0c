package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/marklet/pkg/runner/prefs"
	"tableflip.dev/marklet/pkg/settings"
	"tableflip.dev/marklet/pkg/snake"
)

func addSettings(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "settings",
		Aliases: []string{"config"},
		Short:   "Show the shortcut settings",
		Example: `
marklet settings
marklet settings --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()
			s := prefs.Get{
				Service: e.Service,
				Format:  output.Format(),
				Out:     cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	addSettingsSet(cmd)
	topLevel.AddCommand(cmd)
}

func addSettingsSet(parent *cobra.Command) {
	var (
		mode     string
		confirm  string
		maxItems int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the shortcut settings",
		Long: `Change the shortcut settings. Only the flags that are given are changed.

Modes:
  launcher  every slot shortcut opens the launcher
  direct    a slot shortcut runs its bound bookmarklet
  both      run the bound bookmarklet, or open the launcher when unbound`,
		Example: `
marklet settings set --mode direct
marklet settings set --confirm-before-run on --launcher-max-items 10
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var patch settings.Patch
			flags := cmd.Flags()
			if flags.Changed("mode") {
				m, err := settings.ParseMode(mode)
				if err != nil {
					return output.HandleError(err)
				}
				patch.ShortcutMode = &m
			}
			if flags.Changed("confirm-before-run") {
				b, err := snake.ParseBool(confirm)
				if err != nil {
					return output.HandleError(err)
				}
				patch.ConfirmBeforeRun = &b
			}
			if flags.Changed("launcher-max-items") {
				patch.LauncherMaxItems = &maxItems
			}

			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()
			s := prefs.Set{
				Service: e.Service,
				Patch:   patch,
				Format:  output.Format(),
				Out:     cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", `Shortcut mode: "launcher", "direct" or "both".`)
	cmd.Flags().StringVar(&confirm, "confirm-before-run", "", "Ask before running a bookmarklet (true/false, yes/no, on/off).")
	cmd.Flags().IntVar(&maxItems, "launcher-max-items", settings.DefaultLauncherMaxItems, "Most bookmarklets the launcher lists; 0 lists all.")
	_ = cmd.RegisterFlagCompletionFunc("mode", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		modes := make([]string, 0, len(settings.Modes))
		for _, m := range settings.Modes {
			modes = append(modes, string(m))
		}
		return modes, cobra.ShellCompDirectiveNoFileComp
	})

	parent.AddCommand(cmd)
}
