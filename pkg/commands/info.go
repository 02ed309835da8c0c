package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tableflip.dev/marklet/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Where bookmarklets are stored and how marklet is configured.",
		Example: `
marklet info
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()
			s := info.Info{
				Config:  e.Config,
				Service: e.Service,
				Values: [][2]string{
					{"serve.addr", viper.GetString("serve.addr")},
					{"browser", browserTarget()},
					{"surfaces.launcher", orUnset(viper.GetString("surfaces.launcher"))},
					{"surfaces.options", orUnset(viper.GetString("surfaces.options"))},
				},
				Out: cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	topLevel.AddCommand(cmd)
}

func browserTarget() string {
	if u := viper.GetString("browser.debuggerURL"); u != "" {
		return "attach " + u
	}
	if bin := viper.GetString("browser.bin"); bin != "" {
		return "launch " + bin
	}
	return "launch (auto)"
}

func orUnset(s string) string {
	if s == "" {
		return "not set"
	}
	return s
}
