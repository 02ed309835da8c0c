package commands

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/marklet/pkg/records"
	"tableflip.dev/marklet/pkg/settings"
	"tableflip.dev/marklet/pkg/store"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(marklet completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(marklet completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletionV2(os.Stdout, true)
		},
	}

	topLevel.AddCommand(cmd)
}

// idCompletions completes bookmarklet ids, described by name.
func idCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	p, err := store.Load(cfg)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	all, err := records.New(p, settings.New(p)).ListAll(context.Background())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, b := range all {
		if strings.HasPrefix(b.ID, toComplete) {
			out = append(out, b.ID+"\t"+b.Name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
