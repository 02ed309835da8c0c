// Package mcp provides the Model Context Protocol server integration for marklet.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/bookmarklet"
	"tableflip.dev/marklet/pkg/command"
	"tableflip.dev/marklet/pkg/engine"
	"tableflip.dev/marklet/pkg/records"
	"tableflip.dev/marklet/pkg/settings"
)

// Service adapts the dispatcher to transport-friendly results for the MCP server.
type Service struct {
	App *app.Service
}

// ErrBookmarkletNotFound is returned when an id does not name a stored bookmarklet.
var ErrBookmarkletNotFound = errors.New("bookmarklet not found")

// CreateOptions captures the parameters used to create a new bookmarklet.
type CreateOptions struct {
	Name     string
	Tags     string
	Code     string
	Favorite bool
}

// BookmarkletDTO is a transport-friendly projection of a bookmarklet.
type BookmarkletDTO struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Tags       []string `json:"tags"`
	Favorite   bool     `json:"favorite"`
	Code       string   `json:"code,omitempty"`
	CodeBytes  int      `json:"codeBytes"`
	Created    string   `json:"created"`
	Updated    string   `json:"updated"`
	LastUsed   string   `json:"lastUsed,omitempty"`
	BoundSlots []string `json:"boundSlots,omitempty"`
}

// CommandResult reports what a shortcut command did.
type CommandResult struct {
	Command string          `json:"command"`
	Action  string          `json:"action"`
	Message string          `json:"message,omitempty"`
	Outcome *engine.Outcome `json:"outcome,omitempty"`
}

// NewService builds a service wrapper around the dispatcher.
func NewService(svc *app.Service) *Service {
	return &Service{App: svc}
}

func (s *Service) ready() error {
	if s.App == nil || s.App.Records == nil || s.App.Settings == nil {
		return errors.New("dispatcher is not configured")
	}
	return nil
}

// ListBookmarklets returns bookmarklets in launcher order matching query, at
// most limit of them when limit is positive. Code is omitted.
func (s *Service) ListBookmarklets(ctx context.Context, query string, limit int) ([]BookmarkletDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	all, err := s.App.Records.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.App.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	items := bookmarklet.Filter(bookmarklet.SortForLauncher(all), query)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]BookmarkletDTO, 0, len(items))
	for _, b := range items {
		dto := toDTO(b, current)
		dto.Code = ""
		out = append(out, dto)
	}
	return out, nil
}

// BookmarkletByID returns one bookmarklet including its code.
func (s *Service) BookmarkletByID(ctx context.Context, id string) (*BookmarkletDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	b, ok, err := s.App.Records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBookmarkletNotFound, id)
	}
	current, err := s.App.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	dto := toDTO(b, current)
	return &dto, nil
}

// Create persists a new bookmarklet.
func (s *Service) Create(ctx context.Context, opts CreateOptions) (*BookmarkletDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.Code) == "" {
		return nil, errors.New("code is required")
	}
	b, err := s.App.Records.Create(ctx, records.Payload{
		Name:     opts.Name,
		Tags:     bookmarklet.ParseTags(opts.Tags),
		Favorite: opts.Favorite,
		Code:     opts.Code,
	})
	if err != nil {
		return nil, err
	}
	dto := toDTO(b, settings.Defaults())
	return &dto, nil
}

// Delete removes a bookmarklet; it reports whether one was removed.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	return s.App.Records.Delete(ctx, id)
}

// Run executes a bookmarklet against the active tab.
func (s *Service) Run(ctx context.Context, id string) (engine.Outcome, error) {
	if err := s.ready(); err != nil {
		return engine.Outcome{}, err
	}
	if s.App.Engine == nil {
		return engine.Outcome{}, errors.New("execution engine is not configured")
	}
	return s.App.RunByID(ctx, id), nil
}

// RunCommand dispatches a shortcut command.
func (s *Service) RunCommand(ctx context.Context, name string) (*CommandResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	d, err := s.App.HandleCommand(ctx, name)
	if err != nil {
		return nil, err
	}
	res := &CommandResult{Command: name, Action: d.Action.Type(), Outcome: d.Outcome}
	if none, ok := d.Action.(command.None); ok {
		res.Message = none.Message
	}
	return res, nil
}

// Settings returns the effective settings.
func (s *Service) Settings(ctx context.Context) (settings.Settings, error) {
	if err := s.ready(); err != nil {
		return settings.Settings{}, err
	}
	return s.App.Settings.Get(ctx)
}

// BindSlot binds slot to id, or unbinds it when id is empty.
func (s *Service) BindSlot(ctx context.Context, slot, id string) (settings.Settings, error) {
	if err := s.ready(); err != nil {
		return settings.Settings{}, err
	}
	return s.App.BindSlot(ctx, slot, id)
}

func toDTO(b bookmarklet.Bookmarklet, current settings.Settings) BookmarkletDTO {
	dto := BookmarkletDTO{
		ID:        b.ID,
		Name:      b.Name,
		Tags:      b.Tags,
		Favorite:  b.Favorite,
		Code:      b.Code,
		CodeBytes: len(b.Code),
		Created:   b.CreatedAt.String(),
		Updated:   b.UpdatedAt.String(),
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	if b.Used() {
		dto.LastUsed = b.LastUsedAt.String()
	}
	for _, slot := range settings.Slots {
		if current.Binding(slot) == b.ID {
			dto.BoundSlots = append(dto.BoundSlots, slot)
		}
	}
	return dto
}
