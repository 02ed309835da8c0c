package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/marklet/pkg/commands/options"
	"tableflip.dev/marklet/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command) {
	bo := &options.BookmarkletOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a new bookmarklet",
		Example: `
marklet add --name "Dark mode" --tags css,theme --code "javascript:document.body.style.filter='invert(1)'"
marklet add --name "Word count" --file wordcount.js
pbpaste | marklet add --name "From clipboard" --file -
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			code, ok, err := bo.ReadCode(cmd.InOrStdin())
			if err != nil {
				return output.HandleError(err)
			}
			if !ok {
				return output.HandleError(errors.New("requires --code or --file"))
			}
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()
			s := add.Add{
				Service:  e.Service,
				Name:     bo.Name,
				Tags:     bo.Tags,
				Code:     code,
				Favorite: bo.Favorite,
				Format:   output.Format(),
				Out:      cmd.OutOrStdout(),
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddBookmarkletArgs(cmd, bo)
	topLevel.AddCommand(cmd)
}
