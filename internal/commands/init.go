package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"projectmd/internal/config"
	"projectmd/internal/exitcode"
)

func init() {
	Register(&InitCmd{})
}

// InitCmd implements the init command: it scaffolds a project document
// and an example task file in the current directory.
type InitCmd struct {
	backend string
	repo    string
}

// SetRepo sets the repo flag (for testing).
func (c *InitCmd) SetRepo(repo string) { c.repo = repo }

// SetBackend sets the backend flag (for testing).
func (c *InitCmd) SetBackend(backend string) { c.backend = backend }

func (c *InitCmd) Name() string      { return "init" }
func (c *InitCmd) Aliases() []string { return nil }
func (c *InitCmd) Synopsis() string  { return "Initialize a new project document" }
func (c *InitCmd) Usage() string {
	return "projectmd init [common flags] --repo <owner/name> [--backend github]"
}
func (c *InitCmd) NeedsToken() bool { return false }

func (c *InitCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.backend, "backend", supportedBackend, "")
	fs.StringVar(&c.repo, "repo", "", "")
}

func (c *InitCmd) Run(ctx context.Context, cfg *config.Config, factory Factory, args []string, out, errOut io.Writer) int {
	if c.repo == "" {
		fmt.Fprintln(errOut, "error: --repo is required")
		return exitcode.UserError
	}

	projectFile := cfg.ProjectFile
	if _, err := os.Stat(projectFile); err == nil {
		fmt.Fprintf(errOut, "error: %s already exists\n", projectFile)
		return exitcode.UserError
	}

	document := fmt.Sprintf(`backend: %s
repo: %s
---

# My Project

Project description goes here.

## Tasks

* [new] - tasks/example.md - Example task

`, c.backend, c.repo)

	if err := os.WriteFile(projectFile, []byte(document), 0644); err != nil {
		fmt.Fprintf(errOut, "error: cannot write %s: %v\n", projectFile, err)
		return exitcode.UserError
	}

	tasksDir := filepath.Join(cfg.Root(), "tasks")
	if err := os.MkdirAll(tasksDir, 0755); err != nil {
		fmt.Fprintf(errOut, "error: cannot create %s: %v\n", tasksDir, err)
		return exitcode.UserError
	}

	examplePath := filepath.Join(tasksDir, "example.md")
	if err := os.WriteFile(examplePath, []byte(exampleTask), 0644); err != nil {
		fmt.Fprintf(errOut, "error: cannot write %s: %v\n", examplePath, err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "Initialized %s with %s backend\n", projectFile, c.backend)
		fmt.Fprintf(out, "Repository: %s\n", c.repo)
		fmt.Fprintln(out, "\nCreated:")
		fmt.Fprintf(out, "  - %s\n", projectFile)
		fmt.Fprintf(out, "  - %s\n", examplePath)
		fmt.Fprintln(out, "\nNext steps:")
		fmt.Fprintf(out, "  1. Edit %s and %s\n", projectFile, examplePath)
		fmt.Fprintf(out, "  2. Set %s\n", config.TokenEnv)
		fmt.Fprintln(out, "  3. Run: projectmd sync")
	}
	return exitcode.Success
}

const exampleTask = `---
type: task
tags: [example]
---
# Example task

This is an example task file. Edit this to describe your task.

## Details

You can use full markdown here to describe:
- What needs to be done
- Why it's important
- Any technical details

When you run ` + "`projectmd sync`" + `, this will be created as an issue in your backend.
`
