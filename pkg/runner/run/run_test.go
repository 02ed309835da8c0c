package run

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/engine"
	"tableflip.dev/marklet/pkg/records"
	"tableflip.dev/marklet/pkg/settings"
	"tableflip.dev/marklet/pkg/store"
)

type tab struct {
	url  string
	runs int
}

func (t *tab) ID() string  { return "tab" }
func (t *tab) URL() string { return t.url }
func (t *tab) Evaluate(context.Context, string, string) (json.RawMessage, error) {
	t.runs++
	return json.RawMessage(`"42"`), nil
}

type source struct{ t *tab }

func (s source) ActiveTab(context.Context) (engine.Tab, error) { return s.t, nil }

func setup(t *testing.T, url string, confirm bool) (*app.Service, *tab, string) {
	t.Helper()
	color.NoColor = true
	p, err := store.Load(store.StaticConfig{Path: t.TempDir(), MaxBytes: store.DefaultMaxItemBytes})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	ss := settings.New(p)
	tb := &tab{url: url}
	svc := &app.Service{Records: records.New(p, ss), Settings: ss, Engine: engine.New(source{t: tb})}
	ctx := context.Background()
	if _, err := ss.Update(ctx, settings.Patch{ConfirmBeforeRun: &confirm}); err != nil {
		t.Fatalf("update: %v", err)
	}
	b, err := svc.Records.Create(ctx, records.Payload{Name: "Answer", Code: "return 42"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return svc, tb, b.ID
}

func TestRunPrintsOutput(t *testing.T) {
	svc, tb, id := setup(t, "https://example.com", false)
	var buf bytes.Buffer
	r := Run{Service: svc, ID: id, Out: &buf}
	if err := r.Do(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if tb.runs != 1 {
		t.Fatalf("expected one evaluation, got %d", tb.runs)
	}
	if got := buf.String(); !strings.Contains(got, "Bookmarklet executed.") || !strings.Contains(got, "42") {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestRunDeclined(t *testing.T) {
	svc, tb, id := setup(t, "https://example.com", true)
	asked := ""
	r := Run{Service: svc, ID: id, Out: &bytes.Buffer{}, Confirm: func(name string) (bool, error) {
		asked = name
		return false, nil
	}}
	if err := r.Do(context.Background()); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if asked != "Answer" || tb.runs != 0 {
		t.Fatalf("expected prompt for Answer and no run, asked=%q runs=%d", asked, tb.runs)
	}
}

func TestRunYesSkipsPrompt(t *testing.T) {
	svc, tb, id := setup(t, "https://example.com", true)
	r := Run{Service: svc, ID: id, Yes: true, Out: &bytes.Buffer{}, Confirm: func(string) (bool, error) {
		t.Fatalf("prompt should be skipped")
		return false, nil
	}}
	if err := r.Do(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if tb.runs != 1 {
		t.Fatalf("expected one evaluation, got %d", tb.runs)
	}
}

func TestRunRestrictedFails(t *testing.T) {
	svc, _, id := setup(t, "arc://settings", false)
	r := Run{Service: svc, ID: id, Out: &bytes.Buffer{}}
	err := r.Do(context.Background())
	if !errors.Is(err, engine.ErrRestrictedPage) {
		t.Fatalf("expected ErrRestrictedPage, got %v", err)
	}
}

func TestRunJSONReportsFailure(t *testing.T) {
	svc, _, _ := setup(t, "https://example.com", false)
	var buf bytes.Buffer
	r := Run{Service: svc, ID: "missing", Format: "json", Out: &buf}
	if err := r.Do(context.Background()); err != nil {
		t.Fatalf("json output should not return an error: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["ok"] != false || got["message"] != "Bookmarklet not found." {
		t.Fatalf("unexpected payload %v", got)
	}
}
