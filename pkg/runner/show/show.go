// Package show prints a single bookmarklet.
package show

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/printers"
	"tableflip.dev/marklet/pkg/records"
)

type Show struct {
	Service *app.Service
	ID      string
	Format  string
	Out     io.Writer
}

func (s *Show) Do(ctx context.Context) error {
	if s.Service == nil {
		return errors.New("can not show, no service")
	}
	b, ok, err := s.Service.Records.Get(ctx, s.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", records.ErrNotFound, s.ID)
	}
	if s.Format != "" {
		return printers.Encode(printers.Output(s.Out), s.Format, b)
	}
	current, err := s.Service.Settings.Get(ctx)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: s.Out}
	pp.Bookmarklet(b, current)
	return nil
}
