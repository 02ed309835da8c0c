package app

import (
	"context"
	"fmt"
	"os/exec"
)

// Surfaces opens the presentation surfaces.
type Surfaces interface {
	OpenLauncher(ctx context.Context) error
	OpenOptions(ctx context.Context) error
}

// CommandSurfaces opens surfaces by starting shell commands, such as a
// terminal running "marklet launch".
type CommandSurfaces struct {
	Launcher string
	Options  string
	Shell    string
}

func (c CommandSurfaces) OpenLauncher(ctx context.Context) error {
	return c.start(ctx, "launcher", c.Launcher)
}

func (c CommandSurfaces) OpenOptions(ctx context.Context) error {
	return c.start(ctx, "options", c.Options)
}

// start does not wait for the command; a surface outlives the request.
func (c CommandSurfaces) start(_ context.Context, name, line string) error {
	if line == "" {
		return fmt.Errorf("%w: %s", ErrNoSurface, name)
	}
	shell := c.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	cmd := exec.Command(shell, "-c", line)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("app: open %s: %w", name, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
