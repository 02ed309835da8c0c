package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/marklet/pkg/bookmarklet"
	"tableflip.dev/marklet/pkg/commands/options"
	"tableflip.dev/marklet/pkg/records"
	"tableflip.dev/marklet/pkg/runner/edit"
)

func addEdit(topLevel *cobra.Command) {
	bo := &options.BookmarkletOptions{}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a bookmarklet",
		Long: `Change the name, tags, favorite flag or code of a bookmarklet. Only the
flags that are given are changed; --tags="" clears the tags.`,
		Example: `
marklet edit 2f1c... --name "Reader view"
marklet edit 2f1c... --favorite=false
marklet edit 2f1c... --file reader.js
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: idCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch records.Patch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &bo.Name
			}
			if flags.Changed("tags") {
				patch.Tags = bookmarklet.ParseTags(bo.Tags)
			}
			if flags.Changed("favorite") {
				patch.Favorite = &bo.Favorite
			}
			code, ok, err := bo.ReadCode(cmd.InOrStdin())
			if err != nil {
				return output.HandleError(err)
			}
			if ok {
				patch.Code = &code
			}

			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()
			s := edit.Edit{
				Service: e.Service,
				ID:      args[0],
				Patch:   patch,
				Format:  output.Format(),
				Out:     cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddBookmarkletArgs(cmd, bo)
	topLevel.AddCommand(cmd)
}
