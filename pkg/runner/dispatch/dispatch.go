// Package dispatch triggers a shortcut command from the command line, for
// window managers and hotkey daemons.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/command"
	"tableflip.dev/marklet/pkg/engine"
	"tableflip.dev/marklet/pkg/printers"
)

type Command struct {
	Service *app.Service
	Name    string
	Format  string
	Out     io.Writer
}

type reply struct {
	Command string          `json:"command"`
	Action  string          `json:"action"`
	Message string          `json:"message,omitempty"`
	Outcome *engine.Outcome `json:"outcome,omitempty"`
}

func (c *Command) Do(ctx context.Context) error {
	if c.Service == nil {
		return errors.New("can not dispatch, no service")
	}
	d, err := c.Service.HandleCommand(ctx, c.Name)
	if err != nil {
		return err
	}

	r := reply{Command: c.Name, Action: d.Action.Type(), Outcome: d.Outcome}
	if none, ok := d.Action.(command.None); ok {
		r.Message = none.Message
	}
	if c.Format != "" {
		return printers.Encode(printers.Output(c.Out), c.Format, r)
	}

	switch {
	case d.Outcome != nil:
		pp := printers.PrettyPrint{Out: c.Out}
		pp.Outcome(*d.Outcome)
	case r.Message != "":
		_, _ = fmt.Fprintln(printers.Output(c.Out), r.Message)
	}
	return nil
}
