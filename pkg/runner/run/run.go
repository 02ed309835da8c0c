// Package run executes a bookmarklet in the active tab.
package run

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/engine"
	"tableflip.dev/marklet/pkg/printers"
	"tableflip.dev/marklet/pkg/records"
)

// ConfirmFunc asks whether to run the named bookmarklet.
type ConfirmFunc func(name string) (bool, error)

type Run struct {
	Service *app.Service
	ID      string
	// Yes skips the confirmBeforeRun prompt.
	Yes     bool
	Confirm ConfirmFunc
	Format  string
	Out     io.Writer
}

// ErrCancelled is returned when the confirmation is declined.
var ErrCancelled = errors.New("run cancelled")

func (r *Run) Do(ctx context.Context) error {
	if r.Service == nil {
		return errors.New("can not run, no service")
	}

	if !r.Yes {
		if err := r.confirm(ctx); err != nil {
			return err
		}
	}

	outcome := r.Service.RunByID(ctx, r.ID)
	if r.Format != "" {
		return printers.Encode(printers.Output(r.Out), r.Format, outcome)
	}
	if !outcome.OK {
		return failure(outcome)
	}
	pp := printers.PrettyPrint{Out: r.Out}
	pp.Outcome(outcome)
	return nil
}

func (r *Run) confirm(ctx context.Context) error {
	current, err := r.Service.Settings.Get(ctx)
	if err != nil {
		return err
	}
	if !current.ConfirmBeforeRun || r.Confirm == nil {
		return nil
	}
	b, ok, err := r.Service.Records.Get(ctx, r.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", records.ErrNotFound, r.ID)
	}
	yes, err := r.Confirm(b.Name)
	if err != nil {
		return err
	}
	if !yes {
		return ErrCancelled
	}
	return nil
}

func failure(o engine.Outcome) error {
	if o.Err == nil {
		return errors.New(o.Message)
	}
	return fmt.Errorf("%s: %w", o.Message, o.Err)
}
