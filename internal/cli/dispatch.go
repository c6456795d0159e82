// Package cli handles command-line parsing and dispatch.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"projectmd/internal/commands"
	"projectmd/internal/config"
	"projectmd/internal/exitcode"
)

// Dispatcher parses arguments and routes them to commands.
type Dispatcher struct {
	registry *commands.Registry
	factory  commands.Factory
}

// NewDispatcher creates a dispatcher with the given registry and backend
// factory.
func NewDispatcher(registry *commands.Registry, factory commands.Factory) *Dispatcher {
	return &Dispatcher{registry: registry, factory: factory}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args prints usage.
	if len(args) == 0 {
		return d.dispatch(ctx, "help", nil, out, errOut)
	}

	name := args[0]
	if strings.HasPrefix(name, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}

	return d.dispatch(ctx, name, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, name string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(name)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // errors are reported below

	var projectFile, token string
	var quiet, debug bool
	fs.StringVar(&projectFile, "project-file", "", "")
	fs.StringVar(&token, "token", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		return reportFlagError(errOut, err)
	}

	positional := fs.Args()
	if len(positional) > 0 && strings.HasPrefix(positional[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positional[0])
		return exitcode.UserError
	}

	cfg := config.New(projectFile)
	cfg.Token = token
	cfg.Quiet = quiet
	cfg.Debug = debug

	if cmd.NeedsToken() && cfg.ResolveToken() == "" {
		fmt.Fprintf(errOut, "error: tracker token required (set %s or use --token)\n", config.TokenEnv)
		return exitcode.ConfigError
	}

	return cmd.Run(ctx, cfg, d.factory, positional, out, errOut)
}

// reportFlagError rewrites stdlib flag errors into the CLI's own error
// shape.
func reportFlagError(errOut io.Writer, err error) int {
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "flag provided but not defined: "):
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", strings.TrimPrefix(msg, "flag provided but not defined: "))
	case strings.Contains(msg, "flag needs an argument"):
		fmt.Fprintf(errOut, "error: %s\n", strings.TrimPrefix(msg, "flag "))
	default:
		fmt.Fprintf(errOut, "error: %s\n", msg)
	}
	return exitcode.UserError
}
