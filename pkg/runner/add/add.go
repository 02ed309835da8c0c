// Package add saves a new bookmarklet.
package add

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/bookmarklet"
	"tableflip.dev/marklet/pkg/printers"
	"tableflip.dev/marklet/pkg/records"
)

type Add struct {
	Service  *app.Service
	Name     string
	Tags     string
	Code     string
	Favorite bool
	Format   string
	Out      io.Writer
}

func (a *Add) Do(ctx context.Context) error {
	if a.Service == nil {
		return errors.New("can not add, no service")
	}
	if strings.TrimSpace(a.Code) == "" {
		return errors.New("can not add, no code")
	}
	b, err := a.Service.Records.Create(ctx, records.Payload{
		Name:     a.Name,
		Tags:     bookmarklet.ParseTags(a.Tags),
		Favorite: a.Favorite,
		Code:     a.Code,
	})
	if err != nil {
		return err
	}
	if a.Format != "" {
		return printers.Encode(printers.Output(a.Out), a.Format, b)
	}
	_, err = fmt.Fprintf(printers.Output(a.Out), "Saved %q as %s\n", b.Name, b.ID)
	return err
}
