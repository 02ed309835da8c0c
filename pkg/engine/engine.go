// Package engine runs a bookmarklet inside the page of a browser tab.
//
// Code is evaluated in the page's main world so it sees and can change the
// live page. Strategies are tried in order until one succeeds: "function"
// wraps the code as a function body and captures its return value;
// "script-tag" injects a script element for code that is not valid as a
// function body and cannot report a value.
//
// The engine never touches storage. Failures come back as an Outcome, not as
// a Go error, so a caller can render them directly.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tableflip.dev/marklet/pkg/bookmarklet"
)

// Mode names the strategy that ran the code.
type Mode string

const (
	ModeFunction  Mode = "function"
	ModeScriptTag Mode = "script-tag"
)

var (
	ErrNoActiveTab      = errors.New("engine: no active tab")
	ErrRestrictedPage   = errors.New("engine: restricted page")
	ErrInjectionFailure = errors.New("engine: injection failed")
)

const (
	msgExecuted   = "Bookmarklet executed."
	msgNoTab      = "Active tab not found."
	msgRestricted = "This page does not allow script execution (arc://, chrome://, etc.)."
	msgFailed     = "Execution failed"
)

// RestrictedPrefixes are URL prefixes on which injection is refused.
var RestrictedPrefixes = []string{
	"chrome://",
	"chrome-extension://",
	"edge://",
	"about:",
	"arc://",
}

// IsRestricted reports whether url is blank or starts with a restricted prefix.
func IsRestricted(url string) bool {
	if url == "" {
		return true
	}
	for _, prefix := range RestrictedPrefixes {
		if strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return false
}

// Tab is an addressable browser tab.
type Tab interface {
	ID() string
	URL() string
	// Evaluate calls the JavaScript function expression fn with arg in the
	// page's main world and returns its JSON encoded result.
	Evaluate(ctx context.Context, fn string, arg string) (json.RawMessage, error)
}

// TabSource finds the tab currently in view.
type TabSource interface {
	// ActiveTab returns ErrNoActiveTab when there is none.
	ActiveTab(ctx context.Context) (Tab, error)
}

// ScriptError is an exception thrown by the page while evaluating code. Only
// a ScriptError lets the next strategy run; any other Evaluate error, such as
// a lost connection or a cancelled context, ends the run.
type ScriptError struct {
	Description string
}

func (e *ScriptError) Error() string { return e.Description }

// Outcome reports a run. Err wraps ErrNoActiveTab, ErrRestrictedPage or
// ErrInjectionFailure when OK is false.
type Outcome struct {
	OK      bool    `json:"ok"`
	Message string  `json:"message,omitempty"`
	Mode    Mode    `json:"mode,omitempty"`
	Output  *string `json:"output,omitempty"`
	Err     error   `json:"-"`
}

// MarshalJSON always writes output for a successful run, as null when the
// code produced no value. Other replies omit it.
func (o Outcome) MarshalJSON() ([]byte, error) {
	type plain Outcome
	if !o.OK || o.Mode == "" {
		return json.Marshal(plain(o))
	}
	return json.Marshal(struct {
		plain
		Output *string `json:"output"`
	}{plain(o), o.Output})
}

// Failed builds an Outcome that reports err with a user-facing message.
func Failed(message string, err error) Outcome {
	return Outcome{OK: false, Message: message, Err: err}
}

// Strategy is one way of getting code to run in a page.
type Strategy struct {
	Mode Mode
	Run  func(ctx context.Context, tab Tab, code string) (*string, error)
}

const functionJS = `(code) => {
	const fn = new Function(code);
	const output = fn.call(window);
	return output === undefined ? null : String(output);
}`

const scriptTagJS = `(code) => {
	const script = document.createElement("script");
	script.textContent = code;
	(document.head || document.documentElement).appendChild(script);
	script.remove();
	return null;
}`

// FunctionStrategy invokes the code as a function body with window as this.
var FunctionStrategy = Strategy{
	Mode: ModeFunction,
	Run: func(ctx context.Context, tab Tab, code string) (*string, error) {
		raw, err := tab.Evaluate(ctx, functionJS, code)
		if err != nil {
			return nil, err
		}
		return decodeOutput(raw)
	},
}

// ScriptTagStrategy appends and immediately removes a script element.
var ScriptTagStrategy = Strategy{
	Mode: ModeScriptTag,
	Run: func(ctx context.Context, tab Tab, code string) (*string, error) {
		if _, err := tab.Evaluate(ctx, scriptTagJS, code); err != nil {
			return nil, err
		}
		return nil, nil
	},
}

// DefaultStrategies is the order used by New.
func DefaultStrategies() []Strategy {
	return []Strategy{FunctionStrategy, ScriptTagStrategy}
}

func decodeOutput(raw json.RawMessage) (*string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out *string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("engine: decode output: %w", err)
	}
	return out, nil
}

// Engine runs bookmarklets.
type Engine struct {
	tabs       TabSource
	strategies []Strategy
	log        *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithStrategies replaces DefaultStrategies.
func WithStrategies(s ...Strategy) Option {
	return func(e *Engine) {
		e.strategies = s
	}
}

// WithLogger sets the logger used for strategy diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New returns an Engine that finds tabs through tabs.
func New(tabs TabSource, opts ...Option) *Engine {
	e := &Engine{
		tabs:       tabs,
		strategies: DefaultStrategies(),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunActive runs b against the tab currently in view.
func (e *Engine) RunActive(ctx context.Context, b bookmarklet.Bookmarklet) Outcome {
	if e.tabs == nil {
		return Failed(msgNoTab, ErrNoActiveTab)
	}
	tab, err := e.tabs.ActiveTab(ctx)
	if err != nil {
		if errors.Is(err, ErrNoActiveTab) {
			return Failed(msgNoTab, err)
		}
		return Failed(err.Error(), fmt.Errorf("%w: %v", ErrNoActiveTab, err))
	}
	return e.Run(ctx, b, tab)
}

// Run runs b against tab.
func (e *Engine) Run(ctx context.Context, b bookmarklet.Bookmarklet, tab Tab) Outcome {
	if tab == nil || tab.ID() == "" {
		return Failed(msgNoTab, ErrNoActiveTab)
	}
	if IsRestricted(tab.URL()) {
		return Failed(msgRestricted, fmt.Errorf("%w: %s", ErrRestrictedPage, tab.URL()))
	}

	var errs []error
	for _, s := range e.strategies {
		output, err := s.Run(ctx, tab, b.Code)
		if err == nil {
			e.log.Debug("bookmarklet executed",
				zap.String("id", b.ID), zap.String("tab", tab.ID()), zap.String("mode", string(s.Mode)))
			return Outcome{OK: true, Message: msgExecuted, Mode: s.Mode, Output: output}
		}
		e.log.Debug("strategy failed",
			zap.String("id", b.ID), zap.String("mode", string(s.Mode)), zap.Error(err))
		errs = append(errs, err)
		var thrown *ScriptError
		if !errors.As(err, &thrown) {
			break
		}
	}

	if len(errs) == 0 {
		return Failed(msgFailed, ErrInjectionFailure)
	}
	message := msgFailed
	for i := len(errs) - 1; i >= 0; i-- {
		if m := errs[i].Error(); m != "" {
			message = m
			break
		}
	}
	return Failed(message, fmt.Errorf("%w: %w", ErrInjectionFailure, errs[len(errs)-1]))
}
