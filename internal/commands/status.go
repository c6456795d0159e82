package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"projectmd/internal/backend"
	"projectmd/internal/config"
	"projectmd/internal/exitcode"
	"projectmd/internal/output"
	"projectmd/internal/project"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd implements the status command.
type StatusCmd struct {
	verbose bool
}

// SetVerbose sets the verbose flag (for testing).
func (c *StatusCmd) SetVerbose(v bool) { c.verbose = v }

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return []string{"st"} }
func (c *StatusCmd) Synopsis() string  { return "Show the status of all tasks" }
func (c *StatusCmd) Usage() string     { return "projectmd status [common flags] [--verbose]" }
func (c *StatusCmd) NeedsToken() bool  { return false }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "verbose", false, "")
	fs.BoolVar(&c.verbose, "v", false, "")
}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, factory Factory, args []string, out, errOut io.Writer) int {
	doc, code := loadDocument(cfg, errOut)
	if doc == nil {
		return code
	}

	fmt.Fprintf(out, "Project: %s\n", cfg.ProjectFile)
	fmt.Fprintf(out, "Backend: %s\n", doc.Config.Backend)
	fmt.Fprintf(out, "Repo: %s\n", doc.Config.Repo)
	fmt.Fprintf(out, "\nTasks (%d):\n\n", len(doc.Tasks))

	for _, task := range doc.Tasks {
		output.FormatTaskLine(out, task)
		if c.verbose {
			c.printTaskDetails(out, cfg, task)
		}
	}

	// With a token available, report live issue counts. A missing token
	// just skips the section; status never requires auth.
	if cfg.ResolveToken() != "" && doc.Config.Backend == supportedBackend && factory != nil {
		if code := c.printLiveCounts(ctx, cfg, factory, doc, out, errOut); code != exitcode.Success {
			return code
		}
	}

	return exitcode.Success
}

// printTaskDetails reads the referenced task file for extra detail.
// Unreadable or malformed task files are skipped silently; status is a
// report, not a validator.
func (c *StatusCmd) printTaskDetails(out io.Writer, cfg *config.Config, task project.TaskItem) {
	raw, err := os.ReadFile(filepath.Join(cfg.Root(), task.Path))
	if err != nil {
		return
	}
	tf, err := project.ParseTaskFile(string(raw))
	if err != nil {
		return
	}

	fmt.Fprintf(out, "       Title: %s\n", tf.Title)
	if tf.Config.Type != "" {
		fmt.Fprintf(out, "       Type: %s\n", tf.Config.Type)
	}
	if len(tf.Config.Tags) > 0 {
		fmt.Fprintf(out, "       Tags: %s\n", strings.Join(tf.Config.Tags, ", "))
	}
	fmt.Fprintln(out)
}

func (c *StatusCmd) printLiveCounts(ctx context.Context, cfg *config.Config, factory Factory, doc *project.Document, out, errOut io.Writer) int {
	b, err := factory(ctx, cfg, doc.Config)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.ConfigError
	}

	fmt.Fprintf(out, "\nFetching live status from %s...\n\n", doc.Config.Backend)

	issues, err := b.List(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	var open, closed int
	for _, issue := range issues {
		switch issue.State {
		case backend.StateOpen:
			open++
		case backend.StateClosed:
			closed++
		}
	}

	fmt.Fprintf(out, "Total issues in repository: %d\n", len(issues))
	fmt.Fprintf(out, "  Open: %d\n", open)
	fmt.Fprintf(out, "  Closed: %d\n", closed)
	return exitcode.Success
}
