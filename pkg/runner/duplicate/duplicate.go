// Package duplicate copies a bookmarklet.
package duplicate

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/printers"
)

type Duplicate struct {
	Service *app.Service
	ID      string
	Format  string
	Out     io.Writer
}

func (d *Duplicate) Do(ctx context.Context) error {
	if d.Service == nil {
		return errors.New("can not duplicate, no service")
	}
	b, err := d.Service.Records.Duplicate(ctx, d.ID)
	if err != nil {
		return err
	}
	if d.Format != "" {
		return printers.Encode(printers.Output(d.Out), d.Format, b)
	}
	_, err = fmt.Fprintf(printers.Output(d.Out), "Saved %q as %s\n", b.Name, b.ID)
	return err
}
