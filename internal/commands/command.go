// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"projectmd/internal/backend"
	"projectmd/internal/config"
	"projectmd/internal/project"
)

// Factory creates a Backend for a parsed project configuration. Commands
// call it only after the project document has been read and validated,
// since the repository comes from the document's front matter.
type Factory func(ctx context.Context, cfg *config.Config, pc project.Config) (backend.Backend, error)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsToken reports whether the command requires a tracker token.
	// The dispatcher rejects such commands up front when no token is
	// available.
	NeedsToken() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command. factory is nil only for commands that
	// never touch the backend. Returns the exit code.
	Run(ctx context.Context, cfg *config.Config, factory Factory, args []string, out, errOut io.Writer) int
}
