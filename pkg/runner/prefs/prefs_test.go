package prefs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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

func TestSetThenGetJSON(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	mode := settings.ModeBoth
	max := 5
	if err := (&Set{Service: svc, Patch: settings.Patch{ShortcutMode: &mode, LauncherMaxItems: &max}, Out: &bytes.Buffer{}}).Do(ctx); err != nil {
		t.Fatalf("set: %v", err)
	}

	var buf bytes.Buffer
	if err := (&Get{Service: svc, Format: "json", Out: &buf}).Do(ctx); err != nil {
		t.Fatalf("get: %v", err)
	}
	var got settings.Settings
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ShortcutMode != settings.ModeBoth || got.LauncherMaxItems != 5 {
		t.Fatalf("unexpected settings %+v", got)
	}
	if len(got.SlotBindings) != len(settings.Slots) {
		t.Fatalf("expected every slot present, got %v", got.SlotBindings)
	}
}

func TestSetRejectsInvalid(t *testing.T) {
	svc := newService(t)
	mode := settings.Mode("sometimes")
	err := (&Set{Service: svc, Patch: settings.Patch{ShortcutMode: &mode}}).Do(context.Background())
	if !errors.Is(err, settings.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestBindMissingBookmarklet(t *testing.T) {
	svc := newService(t)
	err := (&Bind{Service: svc, Slot: "1", ID: "ghost", Out: &bytes.Buffer{}}).Do(context.Background())
	if !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
