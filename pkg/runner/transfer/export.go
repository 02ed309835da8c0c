// Package transfer writes and reads bookmarklet backups.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/printers"
)

type Export struct {
	Service *app.Service
	// File is the destination; empty writes to Out.
	File string
	Gzip bool
	Out  io.Writer
}

func (e *Export) Do(ctx context.Context) (err error) {
	if e.Service == nil {
		return errors.New("can not export, no service")
	}
	snap, err := e.Service.Records.Export(ctx)
	if err != nil {
		return err
	}

	w := printers.Output(e.Out)
	if e.File != "" {
		f, err := os.Create(e.File)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	if e.Gzip {
		zw := gzip.NewWriter(w)
		defer func() {
			if cerr := zw.Close(); err == nil {
				err = cerr
			}
		}()
		w = zw
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
