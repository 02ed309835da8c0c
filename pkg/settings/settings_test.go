package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tableflip.dev/marklet/pkg/store"
)

func newTestStore(t *testing.T) (*Store, store.Persistence) {
	t.Helper()
	p, err := store.Load(store.StaticConfig{Path: t.TempDir(), MaxBytes: store.DefaultMaxItemBytes})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	return New(p), p
}

func modePtr(m Mode) *Mode { return &m }
func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestGetDefaults(t *testing.T) {
	s, _ := newTestStore(t)
	got, err := s.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(Defaults(), got); diff != "" {
		t.Fatalf("unexpected defaults (-want +got):\n%s", diff)
	}
}

func TestGetFillsMissingSlotsOnly(t *testing.T) {
	s, p := newTestStore(t)
	ctx := context.Background()
	raw := map[string]any{
		"shortcutMode": "direct",
		"slotBindings": map[string]string{"2": "abc"},
	}
	if err := p.Set(ctx, store.Sync, Key, raw); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := Defaults()
	want.ShortcutMode = ModeDirect
	want.SlotBindings["2"] = "abc"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected settings (-want +got):\n%s", diff)
	}
}

func TestUpdateMergesSlotBindings(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Update(ctx, Patch{SlotBindings: map[string]string{"1": "a", "3": "c"}}); err != nil {
		t.Fatalf("first update: %v", err)
	}
	got, err := s.Update(ctx, Patch{
		SlotBindings:     map[string]string{"2": "b"},
		ShortcutMode:     modePtr(ModeBoth),
		ConfirmBeforeRun: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}

	want := Settings{
		ShortcutMode:     ModeBoth,
		SlotBindings:     map[string]string{"1": "a", "2": "b", "3": "c", "4": ""},
		ConfirmBeforeRun: true,
		LauncherMaxItems: DefaultLauncherMaxItems,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected settings (-want +got):\n%s", diff)
	}

	reloaded, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(want, reloaded); diff != "" {
		t.Fatalf("persisted settings differ (-want +got):\n%s", diff)
	}
}

func TestUpdateRejectsInvalid(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	tests := map[string]Patch{
		"mode":  {ShortcutMode: modePtr("sometimes")},
		"slot":  {SlotBindings: map[string]string{"5": "x"}},
		"limit": {LauncherMaxItems: intPtr(-1)},
	}
	for name, patch := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Update(ctx, patch); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestClearBinding(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Update(ctx, Patch{SlotBindings: map[string]string{"1": "r", "2": "other", "4": "r"}}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.ClearBinding(ctx, "r"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := map[string]string{"1": "", "2": "other", "3": "", "4": ""}
	if diff := cmp.Diff(want, got.SlotBindings); diff != "" {
		t.Fatalf("unexpected bindings (-want +got):\n%s", diff)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		if got, err := ParseMode(string(m)); err != nil || got != m {
			t.Fatalf("ParseMode(%q) = %q, %v", m, got, err)
		}
	}
	if _, err := ParseMode("LAUNCHER"); err == nil {
		t.Fatalf("modes are case sensitive")
	}
}
