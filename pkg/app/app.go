// Package app is the background dispatcher. It turns shortcut commands and
// inter-process requests into record lookups, script runs and surface opens.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"tableflip.dev/marklet/pkg/bookmarklet"
	"tableflip.dev/marklet/pkg/command"
	"tableflip.dev/marklet/pkg/engine"
	"tableflip.dev/marklet/pkg/records"
	"tableflip.dev/marklet/pkg/settings"
)

const msgNotFound = "Bookmarklet not found."

// Service provides the operations shared by the daemon, the MCP server and
// the CLI.
type Service struct {
	Records  *records.Store
	Settings *settings.Store
	Engine   *engine.Engine
	Surfaces Surfaces
	Log      *zap.Logger
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// Dispatch reports what a command did. Outcome is set for run actions.
type Dispatch struct {
	Action  command.Action  `json:"-"`
	Outcome *engine.Outcome `json:"outcome,omitempty"`
}

// HandleCommand resolves the shortcut command name against the current
// settings and performs the resulting action.
func (s *Service) HandleCommand(ctx context.Context, name string) (Dispatch, error) {
	current, err := s.Settings.Get(ctx)
	if err != nil {
		return Dispatch{}, err
	}
	action := command.Resolve(name, current)
	log := s.logger().With(zap.String("command", name), zap.String("action", action.Type()))

	switch a := action.(type) {
	case command.Launcher:
		if err := s.openLauncher(ctx); err != nil {
			return Dispatch{Action: a}, err
		}
		return Dispatch{Action: a}, nil
	case command.Options:
		if err := s.openOptions(ctx); err != nil {
			return Dispatch{Action: a}, err
		}
		return Dispatch{Action: a}, nil
	case command.Run:
		outcome := s.RunByID(ctx, a.BookmarkletID)
		if !outcome.OK {
			log.Warn("run failed", zap.String("id", a.BookmarkletID), zap.String("message", outcome.Message))
		}
		return Dispatch{Action: a, Outcome: &outcome}, nil
	case command.None:
		if a.Message != "" {
			log.Info(a.Message)
		}
		return Dispatch{Action: a}, nil
	default:
		return Dispatch{Action: action}, fmt.Errorf("app: unhandled action %T", action)
	}
}

// openLauncher falls back to the options surface when the launcher cannot
// be shown.
func (s *Service) openLauncher(ctx context.Context) error {
	if s.Surfaces == nil {
		return ErrNoSurface
	}
	if err := s.Surfaces.OpenLauncher(ctx); err != nil {
		s.logger().Debug("launcher unavailable, opening options", zap.Error(err))
		return s.openOptions(ctx)
	}
	return nil
}

func (s *Service) openOptions(ctx context.Context) error {
	if s.Surfaces == nil {
		return ErrNoSurface
	}
	return s.Surfaces.OpenOptions(ctx)
}

// RunByID runs the bookmarklet with id against the active tab and stamps its
// usage on success. Failures are reported in the Outcome.
func (s *Service) RunByID(ctx context.Context, id string) engine.Outcome {
	b, ok, err := s.Records.Get(ctx, id)
	if err != nil {
		return engine.Failed(err.Error(), err)
	}
	if !ok {
		return engine.Failed(msgNotFound, fmt.Errorf("%w: %s", records.ErrNotFound, id))
	}

	outcome := s.Engine.RunActive(ctx, b)
	if !outcome.OK {
		return outcome
	}
	if err := s.Records.TouchUsage(ctx, id); err != nil {
		s.logger().Warn("could not record usage", zap.String("id", id), zap.Error(err))
	}
	return outcome
}

// BindSlot assigns slot to the bookmarklet with id; an empty id unbinds.
func (s *Service) BindSlot(ctx context.Context, slot, id string) (settings.Settings, error) {
	if !settings.ValidSlot(slot) {
		return settings.Settings{}, fmt.Errorf("%w: unknown slot %q", settings.ErrInvalid, slot)
	}
	if id != "" {
		_, ok, err := s.Records.Get(ctx, id)
		if err != nil {
			return settings.Settings{}, err
		}
		if !ok {
			return settings.Settings{}, fmt.Errorf("%w: %s", records.ErrNotFound, id)
		}
	}
	return s.Settings.Update(ctx, settings.Patch{SlotBindings: map[string]string{slot: id}})
}

// Launcher returns bookmarklets in launcher order, filtered by query and
// capped at the configured launcherMaxItems (0 means no cap).
func (s *Service) Launcher(ctx context.Context, query string) ([]bookmarklet.Bookmarklet, error) {
	all, err := s.Records.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	items := bookmarklet.Filter(bookmarklet.SortForLauncher(all), query)
	if max := current.LauncherMaxItems; max > 0 && len(items) > max {
		items = items[:max]
	}
	return items, nil
}

// ErrNoSurface is returned when a surface is requested but none is configured.
var ErrNoSurface = errors.New("app: no surface configured")
