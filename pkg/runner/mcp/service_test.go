package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/engine"
	"tableflip.dev/marklet/pkg/records"
	"tableflip.dev/marklet/pkg/settings"
	"tableflip.dev/marklet/pkg/store"
)

type staticTab struct{}

func (staticTab) ID() string  { return "tab" }
func (staticTab) URL() string { return "https://example.com/" }
func (staticTab) Evaluate(context.Context, string, string) (json.RawMessage, error) {
	return json.RawMessage("null"), nil
}

type staticSource struct{}

func (staticSource) ActiveTab(context.Context) (engine.Tab, error) { return staticTab{}, nil }

func newTestService(t *testing.T) *Service {
	t.Helper()
	p, err := store.Load(store.StaticConfig{Path: t.TempDir(), MaxBytes: store.DefaultMaxItemBytes})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	ss := settings.New(p)
	return NewService(&app.Service{
		Records:  records.New(p, ss),
		Settings: ss,
		Engine:   engine.New(staticSource{}),
	})
}

func TestServiceCreateParsesTags(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	dto, err := svc.Create(ctx, CreateOptions{Name: "Dark", Tags: "css, theme, css", Code: "javascript:void(0)"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if diff := cmp.Diff([]string{"css", "theme"}, dto.Tags); diff != "" {
		t.Fatalf("unexpected tags (-want +got):\n%s", diff)
	}
	if dto.Code != "void(0)" {
		t.Fatalf("expected normalized code, got %q", dto.Code)
	}
	if dto.ID == "" {
		t.Fatalf("expected generated id")
	}
}

func TestServiceCreateRequiresCode(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Create(context.Background(), CreateOptions{Name: "Empty", Code: "  "}); err == nil {
		t.Fatalf("expected error for empty code")
	}
}

func TestServiceListOmitsCodeAndShowsSlots(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	dto, err := svc.Create(ctx, CreateOptions{Name: "Bound", Code: "1"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.BindSlot(ctx, "3", dto.ID); err != nil {
		t.Fatalf("BindSlot failed: %v", err)
	}

	items, err := svc.ListBookmarklets(ctx, "", 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	if items[0].Code != "" || items[0].CodeBytes != 1 {
		t.Fatalf("expected code omitted with size kept, got %+v", items[0])
	}
	if diff := cmp.Diff([]string{"3"}, items[0].BoundSlots); diff != "" {
		t.Fatalf("unexpected slots (-want +got):\n%s", diff)
	}
}

func TestServiceRunStampsUsage(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	dto, err := svc.Create(ctx, CreateOptions{Name: "Run", Code: "1"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	outcome, err := svc.Run(ctx, dto.ID)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !outcome.OK {
		t.Fatalf("expected success, got %+v", outcome)
	}
	got, err := svc.BookmarkletByID(ctx, dto.ID)
	if err != nil {
		t.Fatalf("BookmarkletByID failed: %v", err)
	}
	if got.LastUsed == "" {
		t.Fatalf("expected lastUsed to be set")
	}
}

func TestServiceBookmarkletNotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.BookmarkletByID(context.Background(), "missing")
	if !errors.Is(err, ErrBookmarkletNotFound) {
		t.Fatalf("expected ErrBookmarkletNotFound, got %v", err)
	}
}

func TestServiceRunCommandUnbound(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	mode := settings.ModeDirect
	if _, err := svc.App.Settings.Update(ctx, settings.Patch{ShortcutMode: &mode}); err != nil {
		t.Fatalf("update: %v", err)
	}
	res, err := svc.RunCommand(ctx, "run-slot-1")
	if err != nil {
		t.Fatalf("RunCommand failed: %v", err)
	}
	if res.Action != "none" || res.Message == "" {
		t.Fatalf("unexpected result %+v", res)
	}
}
