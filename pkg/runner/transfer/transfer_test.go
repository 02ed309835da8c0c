package transfer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/records"
	"tableflip.dev/marklet/pkg/settings"
	"tableflip.dev/marklet/pkg/store"
)

func newService(t *testing.T) *app.Service {
	t.Helper()
	p, err := store.Load(store.StaticConfig{Path: t.TempDir(), MaxBytes: store.DefaultMaxItemBytes})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	ss := settings.New(p)
	return &app.Service{Records: records.New(p, ss), Settings: ss}
}

func TestGzipRoundTrip(t *testing.T) {
	ctx := context.Background()
	from := newService(t)
	for _, name := range []string{"one", "two"} {
		if _, err := from.Records.Create(ctx, records.Payload{Name: name, Code: "1"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	file := filepath.Join(t.TempDir(), "backup.json.gz")
	if err := (&Export{Service: from, File: file, Gzip: true}).Do(ctx); err != nil {
		t.Fatalf("export: %v", err)
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(raw, gzipMagic) {
		t.Fatalf("expected gzip output")
	}

	to := newService(t)
	var out bytes.Buffer
	if err := (&Import{Service: to, Paths: []string{file}, Mode: records.ImportReplace, Out: &out}).Do(ctx); err != nil {
		t.Fatalf("import: %v", err)
	}
	all, err := to.Records.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 imported, got %d", len(all))
	}
	if !strings.Contains(out.String(), "Imported 2") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestImportGlobMergesLaterFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	files := map[string]string{
		"a.json":        `{"items":[{"id":"a","name":"A","code":"1"}]}`,
		"nested/b.json": `{"items":[{"id":"b","name":"B","code":"2"}]}`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	svc := newService(t)
	imp := &Import{
		Service: svc,
		Paths:   []string{filepath.Join(dir, "**", "*.json")},
		Mode:    records.ImportReplace,
		Out:     &bytes.Buffer{},
	}
	if err := imp.Do(ctx); err != nil {
		t.Fatalf("import: %v", err)
	}
	all, err := svc.Records.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both files to survive, got %d", len(all))
	}
}

func TestImportNoMatch(t *testing.T) {
	imp := &Import{Service: newService(t), Paths: []string{filepath.Join(t.TempDir(), "*.json")}}
	if err := imp.Do(context.Background()); err == nil {
		t.Fatalf("expected error for empty glob")
	}
}

func TestImportStdin(t *testing.T) {
	svc := newService(t)
	in := strings.NewReader(`{"version":1,"items":[{"name":"From stdin","code":"x"}]}`)
	if err := (&Import{Service: svc, Paths: []string{"-"}, In: in, Mode: records.ImportMerge, Out: &bytes.Buffer{}}).Do(context.Background()); err != nil {
		t.Fatalf("import: %v", err)
	}
	all, _ := svc.Records.ListAll(context.Background())
	if len(all) != 1 || all[0].Name != "From stdin" {
		t.Fatalf("unexpected items %+v", all)
	}
}
