// Package settings owns the persisted shortcut configuration.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tableflip.dev/marklet/pkg/store"
)

// Key is where the settings document lives in the sync partition.
const Key = "bookmarklet_settings_v1"

// DefaultLauncherMaxItems caps the launcher list when nothing is configured.
const DefaultLauncherMaxItems = 30

// ErrInvalid is returned for a settings patch carrying an unknown mode or slot.
var ErrInvalid = errors.New("settings: invalid value")

// Mode governs what a slot shortcut does.
type Mode string

const (
	// ModeLauncher always opens the launcher.
	ModeLauncher Mode = "launcher"
	// ModeDirect runs the bound bookmarklet, or reports that none is bound.
	ModeDirect Mode = "direct"
	// ModeBoth runs the bound bookmarklet and falls back to the launcher.
	ModeBoth Mode = "both"
)

// Modes lists the valid shortcut modes.
var Modes = []Mode{ModeLauncher, ModeDirect, ModeBoth}

// Slots are the shortcut slot keys in order.
var Slots = []string{"1", "2", "3", "4"}

// ParseMode validates s as a shortcut mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown shortcut mode %q", ErrInvalid, s)
}

// ValidSlot reports whether slot is one of Slots.
func ValidSlot(slot string) bool {
	for _, s := range Slots {
		if s == slot {
			return true
		}
	}
	return false
}

// Settings is the shortcut configuration with every default applied.
type Settings struct {
	ShortcutMode     Mode              `json:"shortcutMode"`
	SlotBindings     map[string]string `json:"slotBindings"`
	ConfirmBeforeRun bool              `json:"confirmBeforeRun"`
	LauncherMaxItems int               `json:"launcherMaxItems"`
}

// Binding returns the record id bound to slot, or "".
func (s Settings) Binding(slot string) string {
	return s.SlotBindings[slot]
}

// Defaults returns the settings used before anything is stored.
func Defaults() Settings {
	bindings := make(map[string]string, len(Slots))
	for _, slot := range Slots {
		bindings[slot] = ""
	}
	return Settings{
		ShortcutMode:     ModeLauncher,
		SlotBindings:     bindings,
		ConfirmBeforeRun: false,
		LauncherMaxItems: DefaultLauncherMaxItems,
	}
}

// Patch is a partial update. Nil fields are left alone; SlotBindings is
// merged key by key.
type Patch struct {
	ShortcutMode     *Mode             `json:"shortcutMode,omitempty"`
	SlotBindings     map[string]string `json:"slotBindings,omitempty"`
	ConfirmBeforeRun *bool             `json:"confirmBeforeRun,omitempty"`
	LauncherMaxItems *int              `json:"launcherMaxItems,omitempty"`
}

// stored is the on-disk document; pointers distinguish absent from zero.
type stored struct {
	ShortcutMode     *Mode             `json:"shortcutMode,omitempty"`
	SlotBindings     map[string]string `json:"slotBindings,omitempty"`
	ConfirmBeforeRun *bool             `json:"confirmBeforeRun,omitempty"`
	LauncherMaxItems *int              `json:"launcherMaxItems,omitempty"`
}

// Store reads and merges settings. Mutations are serialized within a process.
type Store struct {
	p  store.Persistence
	mu sync.Mutex
}

// New returns a Store over p.
func New(p store.Persistence) *Store {
	return &Store{p: p}
}

// Get returns the stored settings with defaults filled in per field and per
// slot.
func (s *Store) Get(ctx context.Context) (Settings, error) {
	var raw stored
	if _, err := s.p.Get(ctx, store.Sync, Key, &raw); err != nil {
		return Settings{}, fmt.Errorf("settings: load: %w", err)
	}
	return withDefaults(raw), nil
}

func withDefaults(raw stored) Settings {
	out := Defaults()
	if raw.ShortcutMode != nil && *raw.ShortcutMode != "" {
		out.ShortcutMode = *raw.ShortcutMode
	}
	for slot, id := range raw.SlotBindings {
		out.SlotBindings[slot] = id
	}
	if raw.ConfirmBeforeRun != nil {
		out.ConfirmBeforeRun = *raw.ConfirmBeforeRun
	}
	if raw.LauncherMaxItems != nil {
		out.LauncherMaxItems = *raw.LauncherMaxItems
	}
	return out
}

// Update merges patch into the current settings, persists and returns the
// result.
func (s *Store) Update(ctx context.Context, patch Patch) (Settings, error) {
	if err := patch.validate(); err != nil {
		return Settings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Get(ctx)
	if err != nil {
		return Settings{}, err
	}
	next := merge(current, patch)
	if err := s.save(ctx, next); err != nil {
		return Settings{}, err
	}
	return next, nil
}

// ClearBinding blanks every slot bound to id.
func (s *Store) ClearBinding(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Get(ctx)
	if err != nil {
		return err
	}
	changed := false
	for slot, bound := range current.SlotBindings {
		if bound == id {
			current.SlotBindings[slot] = ""
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.save(ctx, current)
}

func (s *Store) save(ctx context.Context, next Settings) error {
	if err := s.p.Set(ctx, store.Sync, Key, next); err != nil {
		return fmt.Errorf("settings: save: %w", err)
	}
	return nil
}

func merge(current Settings, patch Patch) Settings {
	next := current
	next.SlotBindings = make(map[string]string, len(current.SlotBindings))
	for slot, id := range current.SlotBindings {
		next.SlotBindings[slot] = id
	}
	if patch.ShortcutMode != nil {
		next.ShortcutMode = *patch.ShortcutMode
	}
	for slot, id := range patch.SlotBindings {
		next.SlotBindings[slot] = id
	}
	if patch.ConfirmBeforeRun != nil {
		next.ConfirmBeforeRun = *patch.ConfirmBeforeRun
	}
	if patch.LauncherMaxItems != nil {
		next.LauncherMaxItems = *patch.LauncherMaxItems
	}
	return next
}

func (p Patch) validate() error {
	if p.ShortcutMode != nil {
		if _, err := ParseMode(string(*p.ShortcutMode)); err != nil {
			return err
		}
	}
	for slot := range p.SlotBindings {
		if !ValidSlot(slot) {
			return fmt.Errorf("%w: unknown slot %q", ErrInvalid, slot)
		}
	}
	if p.LauncherMaxItems != nil && *p.LauncherMaxItems < 0 {
		return fmt.Errorf("%w: launcherMaxItems must not be negative", ErrInvalid)
	}
	return nil
}
