package rodtab

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"tableflip.dev/marklet/pkg/engine"
)

func TestActiveTabUnreachableDebugger(t *testing.T) {
	s := New(Config{DebuggerURL: "127.0.0.1:1"}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.ActiveTab(ctx); err == nil {
		t.Fatalf("expected an error for an unreachable debugger")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close without a connection: %v", err)
	}
}

func TestPageError(t *testing.T) {
	thrown := &rod.EvalError{RuntimeExceptionDetails: &proto.RuntimeExceptionDetails{
		Text:      "Uncaught",
		Exception: &proto.RuntimeRemoteObject{Description: "ReferenceError: x is not defined"},
	}}
	var script *engine.ScriptError
	if err := pageError(fmt.Errorf("eval: %w", thrown)); !errors.As(err, &script) || script.Description != "ReferenceError: x is not defined" {
		t.Fatalf("expected a script error, got %v", err)
	}

	textOnly := &rod.EvalError{RuntimeExceptionDetails: &proto.RuntimeExceptionDetails{Text: "Uncaught SyntaxError"}}
	if err := pageError(textOnly); !errors.As(err, &script) || script.Description != "Uncaught SyntaxError" {
		t.Fatalf("expected the exception text, got %v", err)
	}

	for _, transport := range []error{context.Canceled, errors.New("websocket: close 1006")} {
		if err := pageError(transport); err != transport {
			t.Fatalf("expected %v unchanged, got %v", transport, err)
		}
	}
}
