// Package prefs reads and changes shortcut settings.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/printers"
	"tableflip.dev/marklet/pkg/settings"
)

// Get prints the effective settings.
type Get struct {
	Service *app.Service
	Format  string
	Out     io.Writer
}

func (g *Get) Do(ctx context.Context) error {
	if g.Service == nil {
		return errors.New("can not read settings, no service")
	}
	current, err := g.Service.Settings.Get(ctx)
	if err != nil {
		return err
	}
	return show(g.Out, g.Format, current)
}

// Set merges Patch into the stored settings.
type Set struct {
	Service *app.Service
	Patch   settings.Patch
	Format  string
	Out     io.Writer
}

func (s *Set) Do(ctx context.Context) error {
	if s.Service == nil {
		return errors.New("can not change settings, no service")
	}
	next, err := s.Service.Settings.Update(ctx, s.Patch)
	if err != nil {
		return err
	}
	return show(s.Out, s.Format, next)
}

// Bind assigns a bookmarklet to a slot; an empty ID clears the slot.
type Bind struct {
	Service *app.Service
	Slot    string
	ID      string
	Format  string
	Out     io.Writer
}

func (b *Bind) Do(ctx context.Context) error {
	if b.Service == nil {
		return errors.New("can not bind, no service")
	}
	next, err := b.Service.BindSlot(ctx, b.Slot, b.ID)
	if err != nil {
		return err
	}
	if b.Format != "" {
		return printers.Encode(printers.Output(b.Out), b.Format, next)
	}
	if b.ID == "" {
		_, err = fmt.Fprintf(printers.Output(b.Out), "Slot %s cleared\n", b.Slot)
	} else {
		_, err = fmt.Fprintf(printers.Output(b.Out), "Slot %s runs %s\n", b.Slot, b.ID)
	}
	return err
}

func show(out io.Writer, format string, s settings.Settings) error {
	if format != "" {
		return printers.Encode(printers.Output(out), format, s)
	}
	pp := printers.PrettyPrint{Out: out}
	pp.Settings(s)
	return nil
}
