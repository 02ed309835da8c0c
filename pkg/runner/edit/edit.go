// Package edit applies a partial update to a bookmarklet.
package edit

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/printers"
	"tableflip.dev/marklet/pkg/records"
)

type Edit struct {
	Service *app.Service
	ID      string
	Patch   records.Patch
	Format  string
	Out     io.Writer
}

func (e *Edit) Do(ctx context.Context) error {
	if e.Service == nil {
		return errors.New("can not edit, no service")
	}
	p := e.Patch
	if p.Name == nil && p.Tags == nil && p.Favorite == nil && p.Code == nil {
		return errors.New("nothing to change, set at least one of --name, --tags, --favorite, --code")
	}
	b, err := e.Service.Records.Update(ctx, e.ID, p)
	if err != nil {
		return err
	}
	if e.Format != "" {
		return printers.Encode(printers.Output(e.Out), e.Format, b)
	}
	_, err = fmt.Fprintf(printers.Output(e.Out), "Updated %q\n", b.Name)
	return err
}
