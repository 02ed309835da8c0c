package options

import (
	"github.com/spf13/cobra"
)

// ListOptions
type ListOptions struct {
	Query  string
	ShowID bool
	Launch bool
	Unused string
}

func AddListArgs(cmd *cobra.Command, o *ListOptions) {
	cmd.Flags().StringVarP(&o.Query, "query", "q", "",
		"Only show bookmarklets whose name or tags contain this text.")
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show the ID of each bookmarklet.")
	cmd.Flags().BoolVar(&o.Launch, "launcher", false,
		"Use launcher order and the launcherMaxItems cap.")
	cmd.Flags().StringVar(&o.Unused, "unused", "",
		`Only show bookmarklets not run within a window, example: --unused=4w.`)
}
