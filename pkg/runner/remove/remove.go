// Package remove deletes bookmarklets.
package remove

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/printers"
)

type Remove struct {
	Service *app.Service
	IDs     []string
	Format  string
	Out     io.Writer
}

type result struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func (r *Remove) Do(ctx context.Context) error {
	if r.Service == nil {
		return errors.New("can not remove, no service")
	}
	results := make([]result, 0, len(r.IDs))
	for _, id := range r.IDs {
		deleted, err := r.Service.Records.Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("remove %s: %w", id, err)
		}
		results = append(results, result{ID: id, Deleted: deleted})
	}
	if r.Format != "" {
		return printers.Encode(printers.Output(r.Out), r.Format, results)
	}
	for _, res := range results {
		if res.Deleted {
			_, _ = fmt.Fprintf(printers.Output(r.Out), "Deleted %s\n", res.ID)
		} else {
			_, _ = fmt.Fprintf(printers.Output(r.Out), "No bookmarklet %s\n", res.ID)
		}
	}
	return nil
}
