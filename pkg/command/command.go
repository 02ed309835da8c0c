// Package command maps a fired shortcut command to the action it requests.
package command

import (
	"fmt"
	"strings"

	"tableflip.dev/marklet/pkg/settings"
)

// Shortcut command identifiers.
const (
	OpenLauncher = "open-launcher"
	OpenOptions  = "open-options"
	RunSlot      = "run-slot-"
)

// Names lists every command identifier that can be bound to a keystroke.
func Names() []string {
	names := []string{OpenLauncher, OpenOptions}
	for _, slot := range settings.Slots {
		names = append(names, RunSlot+slot)
	}
	return names
}

// Action is what a command resolves to. The set is closed: Launcher, Options,
// Run and None.
type Action interface {
	// Type is the lower-case tag used on the wire.
	Type() string
	isAction()
}

// Launcher opens the quick-launch list.
type Launcher struct{}

// Options opens the management surface.
type Options struct{}

// Run executes the bookmarklet with BookmarkletID.
type Run struct {
	BookmarkletID string `json:"bookmarkletId"`
}

// None does nothing; Message explains why when there is a reason to tell.
type None struct {
	Message string `json:"message,omitempty"`
}

func (Launcher) Type() string { return "launcher" }
func (Options) Type() string  { return "options" }
func (Run) Type() string      { return "run" }
func (None) Type() string     { return "none" }

func (Launcher) isAction() {}
func (Options) isAction()  {}
func (Run) isAction()      {}
func (None) isAction()     {}

// Resolve returns the action for name under s. It has no side effects.
func Resolve(name string, s settings.Settings) Action {
	switch name {
	case OpenLauncher:
		return Launcher{}
	case OpenOptions:
		return Options{}
	}

	slot, ok := slotOf(name)
	if !ok {
		return None{}
	}

	mode := s.ShortcutMode
	if mode == "" {
		mode = settings.ModeLauncher
	}
	if mode == settings.ModeLauncher {
		return Launcher{}
	}

	if id := s.Binding(slot); id != "" {
		return Run{BookmarkletID: id}
	}
	if mode == settings.ModeBoth {
		return Launcher{}
	}
	return None{Message: fmt.Sprintf("No bookmarklet is assigned to slot %s.", slot)}
}

// slotOf extracts N from run-slot-N; N must be a known slot.
func slotOf(name string) (string, bool) {
	if !strings.HasPrefix(name, RunSlot) {
		return "", false
	}
	slot := strings.TrimPrefix(name, RunSlot)
	if !settings.ValidSlot(slot) {
		return "", false
	}
	return slot, true
}
