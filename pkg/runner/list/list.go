// Package list prints stored bookmarklets.
package list

import (
	"context"
	"errors"
	"io"
	"time"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/bookmarklet"
	"tableflip.dev/marklet/pkg/printers"
)

type List struct {
	Service *app.Service
	Query   string
	ShowID  bool
	// Launcher selects launcher order and the launcherMaxItems cap instead
	// of storage order.
	Launcher bool
	// Unused keeps only bookmarklets not run within this window.
	Unused time.Duration
	Format string
	Out    io.Writer
}

func (l *List) Do(ctx context.Context) error {
	if l.Service == nil {
		return errors.New("can not list, no service")
	}

	var items []bookmarklet.Bookmarklet
	var err error
	if l.Launcher {
		items, err = l.Service.Launcher(ctx, l.Query)
	} else {
		items, err = l.Service.Records.ListAll(ctx)
		items = bookmarklet.Filter(items, l.Query)
	}
	if err != nil {
		return err
	}
	if l.Unused > 0 {
		items = unusedFor(items, l.Unused, time.Now())
	}

	if l.Format != "" {
		if items == nil {
			items = []bookmarklet.Bookmarklet{}
		}
		return printers.Encode(printers.Output(l.Out), l.Format, items)
	}

	pp := printers.PrettyPrint{ShowID: l.ShowID, Out: l.Out}
	pp.TitleWithCount("Bookmarklets", len(items))
	pp.Bookmarklets(items...)
	return nil
}

func unusedFor(items []bookmarklet.Bookmarklet, window time.Duration, now time.Time) []bookmarklet.Bookmarklet {
	out := make([]bookmarklet.Bookmarklet, 0, len(items))
	for _, b := range items {
		if !b.Used() || now.Sub(b.LastUsedAt.Time) >= window {
			out = append(out, b)
		}
	}
	return out
}
