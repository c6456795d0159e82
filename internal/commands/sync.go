package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"projectmd/internal/config"
	"projectmd/internal/engine"
	"projectmd/internal/exitcode"
	"projectmd/internal/output"
	"projectmd/internal/project"
)

// supportedBackend is the only tracker the project front matter may name.
const supportedBackend = "github"

func init() {
	Register(&SyncCmd{})
}

// SyncCmd implements the sync command.
type SyncCmd struct {
	dryRun bool
}

// SetDryRun sets the dry-run flag (for testing).
func (c *SyncCmd) SetDryRun(v bool) { c.dryRun = v }

func (c *SyncCmd) Name() string      { return "sync" }
func (c *SyncCmd) Aliases() []string { return nil }
func (c *SyncCmd) Synopsis() string  { return "Create or update tracker issues for all tasks" }
func (c *SyncCmd) Usage() string     { return "projectmd sync [common flags] [--dry-run]" }
func (c *SyncCmd) NeedsToken() bool  { return true }

func (c *SyncCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.dryRun, "dry-run", false, "")
}

func (c *SyncCmd) Run(ctx context.Context, cfg *config.Config, factory Factory, args []string, out, errOut io.Writer) int {
	doc, code := loadDocument(cfg, errOut)
	if doc == nil {
		return code
	}

	if doc.Config.Backend != supportedBackend {
		fmt.Fprintf(errOut, "error: unsupported backend: %s (only %q is supported)\n", doc.Config.Backend, supportedBackend)
		return exitcode.ConfigError
	}

	if c.dryRun {
		output.FormatDryRun(out, doc)
		return exitcode.Success
	}

	b, err := factory(ctx, cfg, doc.Config)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.ConfigError
	}

	eng := engine.New(b, cfg.Root())
	result, err := eng.Sync(ctx, cfg.ProjectFile)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		output.FormatSummary(out, result)
	}

	// Per-task errors surface in the exit code, but only after the full
	// summary has been reported.
	if result.HasErrors() {
		return exitcode.BackendError
	}
	return exitcode.Success
}

// loadDocument reads and parses the project document. On failure it
// reports to errOut and returns a nil document with the exit code.
func loadDocument(cfg *config.Config, errOut io.Writer) (*project.Document, int) {
	raw, err := os.ReadFile(cfg.ProjectFile)
	if err != nil {
		fmt.Fprintf(errOut, "error: cannot read %s: %v\n", cfg.ProjectFile, err)
		return nil, exitcode.UserError
	}

	doc, err := project.ParseDocument(string(raw))
	if err != nil {
		fmt.Fprintf(errOut, "error: %s: %v\n", cfg.ProjectFile, err)
		return nil, exitcode.UserError
	}
	return doc, exitcode.Success
}
