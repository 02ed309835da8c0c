package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tableflip.dev/marklet/pkg/bookmarklet"
	"tableflip.dev/marklet/pkg/settings"
	"tableflip.dev/marklet/pkg/store"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newPersistence(t *testing.T) store.Persistence {
	t.Helper()
	p, err := store.Load(store.StaticConfig{Path: t.TempDir(), MaxBytes: store.DefaultMaxItemBytes})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	return p
}

func newTestStore(t *testing.T) (*Store, *settings.Store) {
	t.Helper()
	p := newPersistence(t)
	ss := settings.New(p)
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	return New(p, ss, WithClock(clock.Now)), ss
}

func mustCreate(t *testing.T, s *Store, p Payload) bookmarklet.Bookmarklet {
	t.Helper()
	b, err := s.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("create %q: %v", p.Name, err)
	}
	return b
}

func names(items []bookmarklet.Bookmarklet) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

func TestCreateNormalizesAndPrepends(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first := mustCreate(t, s, Payload{Name: " First ", Tags: []string{"a", "a", " b ", ""}, Code: "javascript:alert(%221%22)"})
	if first.Name != "First" {
		t.Fatalf("unexpected name %q", first.Name)
	}
	if diff := cmp.Diff([]string{"a", "b"}, first.Tags); diff != "" {
		t.Fatalf("unexpected tags (-want +got):\n%s", diff)
	}
	if first.Code != `alert("1")` {
		t.Fatalf("unexpected code %q", first.Code)
	}
	if first.Used() {
		t.Fatalf("new record must not be marked used")
	}
	if !first.CreatedAt.Equal(first.UpdatedAt.Time) {
		t.Fatalf("createdAt and updatedAt should match on create")
	}

	mustCreate(t, s, Payload{Name: "Second"})

	all, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff([]string{"Second", "First"}, names(all)); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}

	got, ok, err := s.Get(ctx, first.ID)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(first, got); diff != "" {
		t.Fatalf("stored record differs (-want +got):\n%s", diff)
	}
}

func TestGetMissing(t *testing.T) {
	s, _ := newTestStore(t)
	_, ok, err := s.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected absence")
	}
}

func TestListAllMissingCode(t *testing.T) {
	p := newPersistence(t)
	ctx := context.Background()
	doc := map[string]any{"items": []map[string]any{{"id": "x", "name": "Orphan"}}}
	if err := p.Set(ctx, store.Sync, MetaKey, doc); err != nil {
		t.Fatalf("seed: %v", err)
	}
	all, err := New(p, nil).ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].Code != "" || all[0].Name != "Orphan" {
		t.Fatalf("unexpected records %+v", all)
	}
}

func TestUpdate(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	b := mustCreate(t, s, Payload{Name: "Old", Tags: []string{"keep"}, Code: "1"})
	if err := s.TouchUsage(ctx, b.ID); err != nil {
		t.Fatalf("touch: %v", err)
	}
	touched, _, _ := s.Get(ctx, b.ID)

	name := "  New  "
	got, err := s.Update(ctx, b.ID, Patch{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "New" {
		t.Fatalf("unexpected name %q", got.Name)
	}
	if diff := cmp.Diff([]string{"keep"}, got.Tags); diff != "" {
		t.Fatalf("tags should be untouched (-want +got):\n%s", diff)
	}
	if got.Code != "1" {
		t.Fatalf("code should be untouched, got %q", got.Code)
	}
	if !got.LastUsedAt.Equal(touched.LastUsedAt.Time) {
		t.Fatalf("lastUsedAt should be preserved")
	}
	if !got.UpdatedAt.After(touched.UpdatedAt.Time) {
		t.Fatalf("updatedAt should advance")
	}

	code := "javascript:void(0)"
	got, err = s.Update(ctx, b.ID, Patch{Code: &code, Tags: []string{}})
	if err != nil {
		t.Fatalf("update code: %v", err)
	}
	if got.Code != "void(0)" || len(got.Tags) != 0 {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestUpdateNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	name := "x"
	if _, err := s.Update(context.Background(), "nope", Patch{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteIsIdempotentAndClearsBindings(t *testing.T) {
	s, ss := newTestStore(t)
	ctx := context.Background()
	r := mustCreate(t, s, Payload{Name: "R"})
	other := mustCreate(t, s, Payload{Name: "Other"})

	if _, err := ss.Update(ctx, settings.Patch{SlotBindings: map[string]string{"1": r.ID, "3": r.ID, "2": other.ID}}); err != nil {
		t.Fatalf("bind: %v", err)
	}

	removed, err := s.Delete(ctx, r.ID)
	if err != nil || !removed {
		t.Fatalf("first delete: removed=%v err=%v", removed, err)
	}
	removed, err = s.Delete(ctx, r.ID)
	if err != nil || removed {
		t.Fatalf("second delete: removed=%v err=%v", removed, err)
	}

	cfg, err := ss.Get(ctx)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	want := map[string]string{"1": "", "2": other.ID, "3": "", "4": ""}
	if diff := cmp.Diff(want, cfg.SlotBindings); diff != "" {
		t.Fatalf("unexpected bindings (-want +got):\n%s", diff)
	}

	all, _ := s.ListAll(ctx)
	if diff := cmp.Diff([]string{"Other"}, names(all)); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
}

func TestDuplicate(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	src := mustCreate(t, s, Payload{Name: "Source", Tags: []string{"t"}, Favorite: true, Code: "x()"})

	dup, err := s.Duplicate(ctx, src.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if dup.ID == src.ID {
		t.Fatalf("duplicate must get a fresh id")
	}
	if dup.Name != "Source (copy)" || dup.Favorite || dup.Code != "x()" {
		t.Fatalf("unexpected duplicate %+v", dup)
	}
	if diff := cmp.Diff(src.Tags, dup.Tags); diff != "" {
		t.Fatalf("tags differ (-want +got):\n%s", diff)
	}

	if _, err := s.Duplicate(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTouchUsage(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	b := mustCreate(t, s, Payload{Name: "T"})

	if err := s.TouchUsage(ctx, "missing"); err != nil {
		t.Fatalf("touching a missing id should be a no-op, got %v", err)
	}
	if err := s.TouchUsage(ctx, b.ID); err != nil {
		t.Fatalf("touch: %v", err)
	}
	got, _, _ := s.Get(ctx, b.ID)
	if !got.Used() {
		t.Fatalf("expected lastUsedAt to be set")
	}
	if !got.LastUsedAt.Equal(got.UpdatedAt.Time) {
		t.Fatalf("lastUsedAt and updatedAt should match after touch")
	}
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	b := mustCreate(t, s, Payload{Name: "C"})

	var wg sync.WaitGroup
	fav := true
	name := "Renamed"
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := s.Update(ctx, b.ID, Patch{Favorite: &fav}); err != nil {
			t.Errorf("update favorite: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := s.Update(ctx, b.ID, Patch{Name: &name}); err != nil {
			t.Errorf("update name: %v", err)
		}
	}()
	wg.Wait()

	got, _, _ := s.Get(ctx, b.ID)
	if !got.Favorite || got.Name != "Renamed" {
		t.Fatalf("one writer's change was lost: %+v", got)
	}
}

// failingCode fails every write to the local partition.
type failingCode struct {
	store.Persistence
}

func (f failingCode) Set(ctx context.Context, p store.Partition, key string, v interface{}) error {
	if p == store.Local {
		return errors.New("disk full")
	}
	return f.Persistence.Set(ctx, p, key, v)
}

func TestCodeWriteFailureRollsBackMetadata(t *testing.T) {
	p := newPersistence(t)
	ctx := context.Background()
	ok := New(p, nil)
	kept := mustCreate(t, ok, Payload{Name: "Kept", Code: "1"})

	s := New(failingCode{Persistence: p}, nil)
	if _, err := s.Create(ctx, Payload{Name: "Lost", Code: "2"}); err == nil {
		t.Fatalf("expected code write error")
	}

	all, err := ok.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].ID != kept.ID || all[0].Code != "1" {
		t.Fatalf("metadata was not rolled back: %+v", all)
	}
}

func TestQuotaSurfacesFromCreate(t *testing.T) {
	p, err := store.Load(store.StaticConfig{Path: t.TempDir(), MaxBytes: 600})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	s := New(p, nil)
	ctx := context.Background()
	var lastErr error
	for i := 0; i < 10 && lastErr == nil; i++ {
		_, lastErr = s.Create(ctx, Payload{Name: fmt.Sprintf("bookmarklet %d", i)})
	}
	if !errors.Is(lastErr, store.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", lastErr)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, Payload{Name: "One", Tags: []string{"x"}, Code: "one()"})
	mustCreate(t, s, Payload{Name: "Two", Favorite: true, Code: "two()"})
	before, _ := s.ListAll(ctx)

	snap, err := s.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if snap.Version != ExportVersion || snap.ExportedAt.IsZero() {
		t.Fatalf("unexpected snapshot header %+v", snap)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	mustCreate(t, s, Payload{Name: "Extra"})
	n, err := s.Import(ctx, data, ImportReplace)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 processed, got %d", n)
	}

	after, _ := s.ListAll(ctx)
	type view struct {
		ID, Name, Code string
		Tags           []string
	}
	project := func(items []bookmarklet.Bookmarklet) []view {
		out := make([]view, len(items))
		for i, b := range items {
			out[i] = view{ID: b.ID, Name: b.Name, Code: b.Code, Tags: b.Tags}
		}
		return out
	}
	if diff := cmp.Diff(project(before), project(after)); diff != "" {
		t.Fatalf("round trip changed records (-want +got):\n%s", diff)
	}
}

func TestImportReplaceClearsDroppedBindings(t *testing.T) {
	s, ss := newTestStore(t)
	ctx := context.Background()
	dropped := mustCreate(t, s, Payload{Name: "Dropped"})
	kept := mustCreate(t, s, Payload{Name: "Kept"})

	if _, err := ss.Update(ctx, settings.Patch{SlotBindings: map[string]string{"1": dropped.ID, "2": kept.ID}}); err != nil {
		t.Fatalf("bind: %v", err)
	}

	doc := fmt.Sprintf(`{"items":[{"id":%q,"name":"Kept"},{"id":"other","name":"Other"}]}`, kept.ID)
	if _, err := s.Import(ctx, []byte(doc), ImportReplace); err != nil {
		t.Fatalf("import: %v", err)
	}

	if _, ok, _ := s.Get(ctx, dropped.ID); ok {
		t.Fatalf("dropped record still present")
	}
	cfg, err := ss.Get(ctx)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	want := map[string]string{"1": "", "2": kept.ID, "3": "", "4": ""}
	if diff := cmp.Diff(want, cfg.SlotBindings); diff != "" {
		t.Fatalf("unexpected bindings (-want +got):\n%s", diff)
	}
}

func TestImportMerge(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	existing := mustCreate(t, s, Payload{Name: "Existing", Code: "old()"})

	doc := fmt.Sprintf(`{"items":[
		{"id":%q,"name":"Overwritten","code":"javascript:new()","createdAt":"2020-01-01T00:00:00Z","updatedAt":"2020-01-01T00:00:00Z"},
		{"id":"fresh","name":"Fresh","tags":"a, b","favorite":1}
	]}`, existing.ID)

	n, err := s.Import(ctx, []byte(doc), ImportMerge)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 processed, got %d", n)
	}

	all, _ := s.ListAll(ctx)
	if diff := cmp.Diff([]string{"Overwritten", "Fresh"}, names(all)); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
	if all[0].Code != "new()" {
		t.Fatalf("code not overwritten: %q", all[0].Code)
	}
	if all[0].UpdatedAt.Year() == 2020 {
		t.Fatalf("merged record should get a fresh updatedAt")
	}
	if !all[1].Favorite || len(all[1].Tags) != 2 {
		t.Fatalf("lenient fields not coerced: %+v", all[1])
	}
}

func TestImportLenientItems(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	n, err := s.Import(ctx, []byte(`{"items":[{}, 42, {"id":7,"name":"   ","tags":null}]}`), ImportReplace)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 processed, got %d", n)
	}
	all, _ := s.ListAll(ctx)
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	for _, b := range all {
		if b.ID == "" || b.Name != bookmarklet.DefaultName || b.Tags == nil || b.CreatedAt.IsZero() {
			t.Fatalf("item not defaulted: %+v", b)
		}
	}
	if all[2].ID != "7" {
		t.Fatalf("numeric id should be stringified, got %q", all[2].ID)
	}
}

func TestImportInvalidFormat(t *testing.T) {
	s, _ := newTestStore(t)
	mustCreate(t, s, Payload{Name: "Safe"})
	for _, doc := range []string{`[]`, `{}`, `{"items":{}}`, `{"items":null}`, `not json`} {
		if _, err := s.Import(context.Background(), []byte(doc), ImportReplace); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("import %s: expected ErrInvalidFormat, got %v", doc, err)
		}
	}
	all, _ := s.ListAll(context.Background())
	if len(all) != 1 {
		t.Fatalf("rejected import must not touch the collection")
	}
}

func TestParseImportMode(t *testing.T) {
	if m, err := ParseImportMode(""); err != nil || m != ImportReplace {
		t.Fatalf("blank should mean replace, got %q %v", m, err)
	}
	if m, err := ParseImportMode("Merge"); err != nil || m != ImportMerge {
		t.Fatalf("unexpected %q %v", m, err)
	}
	if _, err := ParseImportMode("append"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}
