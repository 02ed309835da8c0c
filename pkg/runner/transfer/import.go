package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/gzip"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/printers"
	"tableflip.dev/marklet/pkg/records"
)

type Import struct {
	Service *app.Service
	// Paths are files or glob patterns ("backups/**/*.json"); "-" reads In.
	Paths  []string
	Mode   records.ImportMode
	In     io.Reader
	Format string
	Out    io.Writer
}

type result struct {
	Source   string `json:"source"`
	Imported int    `json:"imported"`
}

func (i *Import) Do(ctx context.Context) error {
	if i.Service == nil {
		return errors.New("can not import, no service")
	}
	sources, err := i.expand()
	if err != nil {
		return err
	}

	results := make([]result, 0, len(sources))
	mode := i.Mode
	for _, src := range sources {
		data, err := i.read(src)
		if err != nil {
			return err
		}
		n, err := i.Service.Records.Import(ctx, data, mode)
		if err != nil {
			return fmt.Errorf("import %s: %w", src, err)
		}
		results = append(results, result{Source: src, Imported: n})
		// Later files add to the first one instead of replacing it.
		mode = records.ImportMerge
	}

	if i.Format != "" {
		return printers.Encode(printers.Output(i.Out), i.Format, results)
	}
	for _, r := range results {
		_, _ = fmt.Fprintf(printers.Output(i.Out), "Imported %d from %s\n", r.Imported, r.Source)
	}
	return nil
}

func (i *Import) expand() ([]string, error) {
	if len(i.Paths) == 0 {
		return []string{"-"}, nil
	}
	var out []string
	for _, p := range i.Paths {
		if p == "-" {
			out = append(out, p)
			continue
		}
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, fmt.Errorf("import: bad pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("import: no files match %q", p)
		}
		out = append(out, matches...)
	}
	return out, nil
}

var gzipMagic = []byte{0x1f, 0x8b}

// read loads src, transparently decompressing gzip.
func (i *Import) read(src string) ([]byte, error) {
	var data []byte
	var err error
	if src == "-" {
		if i.In == nil {
			return nil, errors.New("import: no input")
		}
		data, err = io.ReadAll(i.In)
	} else {
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	if !bytes.HasPrefix(data, gzipMagic) {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("import: %s: %w", src, err)
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
