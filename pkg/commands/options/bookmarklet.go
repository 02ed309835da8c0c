package options

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// BookmarkletOptions holds the editable fields of a bookmarklet.
type BookmarkletOptions struct {
	Name     string
	Tags     string
	Code     string
	CodeFile string
	Favorite bool
}

func AddBookmarkletArgs(cmd *cobra.Command, o *BookmarkletOptions) {
	cmd.Flags().StringVarP(&o.Name, "name", "n", "",
		"Display name.")
	cmd.Flags().StringVarP(&o.Tags, "tags", "t", "",
		`Comma separated tags, example: --tags="css,reading".`)
	cmd.Flags().StringVarP(&o.Code, "code", "c", "",
		"JavaScript source; a javascript: URL is accepted.")
	cmd.Flags().StringVarP(&o.CodeFile, "file", "f", "",
		`Read the code from a file, or "-" for stdin.`)
	cmd.Flags().BoolVar(&o.Favorite, "favorite", false,
		"Pin to the top of the launcher.")
}

// ReadCode returns the code from --code or --file. ok is false when neither
// was given.
func (o *BookmarkletOptions) ReadCode(stdin io.Reader) (code string, ok bool, err error) {
	if o.Code != "" && o.CodeFile != "" {
		return "", false, errors.New("--code and --file are mutually exclusive")
	}
	if o.Code != "" {
		return o.Code, true, nil
	}
	if o.CodeFile == "" {
		return "", false, nil
	}
	var b []byte
	if o.CodeFile == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(o.CodeFile)
	}
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}
