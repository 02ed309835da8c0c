// Package rodtab finds and drives browser tabs over the DevTools protocol.
package rodtab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"

	"tableflip.dev/marklet/pkg/engine"
)

// Config selects the browser to attach to.
type Config struct {
	// DebuggerURL is a DevTools endpoint: a ws:// URL, an http:// URL or a
	// bare port. When empty a browser is launched.
	DebuggerURL string
	// Bin is the browser binary used when launching.
	Bin      string
	Headless bool
}

// Source is an engine.TabSource backed by go-rod.
type Source struct {
	cfg Config
	log *zap.Logger

	mu      sync.Mutex
	browser *rod.Browser
	// launched is set when the browser was started by us and may be closed.
	launched bool
}

// New returns a Source that connects lazily on first use.
func New(cfg Config, log *zap.Logger) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	return &Source{cfg: cfg, log: log}
}

// connect attaches once and reuses the connection; per-call contexts are
// applied with Context so a cancelled request does not drop the browser.
func (s *Source) connect() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		if _, err := s.browser.Version(); err == nil {
			return s.browser, nil
		}
		s.log.Warn("stale browser connection, reconnecting")
		_ = s.release()
	}

	controlURL, err := s.controlURL()
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("rodtab: connect to browser: %w", err)
	}
	s.log.Debug("connected to browser", zap.String("url", controlURL))
	s.browser = browser
	s.launched = s.cfg.DebuggerURL == ""
	return browser, nil
}

func (s *Source) controlURL() (string, error) {
	if s.cfg.DebuggerURL != "" {
		u, err := launcher.ResolveURL(s.cfg.DebuggerURL)
		if err != nil {
			return "", fmt.Errorf("rodtab: resolve %s: %w", s.cfg.DebuggerURL, err)
		}
		return u, nil
	}
	l := launcher.New().Headless(s.cfg.Headless)
	if s.cfg.Bin != "" {
		l = l.Bin(s.cfg.Bin)
	}
	u, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("rodtab: launch browser: %w", err)
	}
	return u, nil
}

// ActiveTab returns the first page whose document is visible, or the first
// page when none reports visibility.
func (s *Source) ActiveTab(ctx context.Context) (engine.Tab, error) {
	browser, err := s.connect()
	if err != nil {
		return nil, err
	}
	pages, err := browser.Context(ctx).Pages()
	if err != nil {
		return nil, fmt.Errorf("rodtab: list pages: %w", err)
	}
	if len(pages) == 0 {
		return nil, engine.ErrNoActiveTab
	}

	chosen := pages[0]
	for _, page := range pages {
		res, err := page.Context(ctx).Evaluate(&rod.EvalOptions{
			JS:      `() => document.visibilityState`,
			ByValue: true,
		})
		if err == nil && res != nil && res.Value.Str() == "visible" {
			chosen = page
			break
		}
	}
	return newTab(ctx, chosen)
}

// Close disconnects from the browser, closing it only if it was launched here.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.release()
}

// release drops the connection. An attached browser belongs to the user and
// is left running.
func (s *Source) release() error {
	if s.browser == nil {
		return nil
	}
	var err error
	if s.launched {
		err = s.browser.Close()
	}
	s.browser = nil
	s.launched = false
	return err
}

type tab struct {
	page *rod.Page
	id   string
	url  string
}

func newTab(ctx context.Context, page *rod.Page) (*tab, error) {
	info, err := page.Context(ctx).Info()
	if err != nil {
		return nil, fmt.Errorf("rodtab: page info: %w", err)
	}
	return &tab{page: page, id: string(page.TargetID), url: info.URL}, nil
}

func (t *tab) ID() string  { return t.id }
func (t *tab) URL() string { return t.url }

func (t *tab) Evaluate(ctx context.Context, fn string, arg string) (json.RawMessage, error) {
	res, err := t.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:          fn,
		JSArgs:      []interface{}{arg},
		ByValue:     true,
		UserGesture: true,
	})
	if err != nil {
		return nil, pageError(err)
	}
	if res == nil {
		return json.RawMessage("null"), nil
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// pageError turns an exception thrown by the page into an engine.ScriptError.
// Transport and context errors are returned unchanged.
func pageError(err error) error {
	var evalErr *rod.EvalError
	if !errors.As(err, &evalErr) || evalErr.RuntimeExceptionDetails == nil {
		return err
	}
	d := evalErr.RuntimeExceptionDetails
	if d.Exception != nil && d.Exception.Description != "" {
		return &engine.ScriptError{Description: d.Exception.Description}
	}
	if d.Text != "" {
		return &engine.ScriptError{Description: d.Text}
	}
	return &engine.ScriptError{Description: "Uncaught exception"}
}
