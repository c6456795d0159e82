package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"projectmd/internal/config"
	"projectmd/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "projectmd help" }
func (c *HelpCmd) NeedsToken() bool  { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, factory Factory, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  projectmd sync [common flags] [--dry-run]            Create or update issues for all tasks
  projectmd status [common flags] [--verbose]          Show the status of all tasks
  projectmd watch [common flags] [--debounce <dur>]    Watch for changes and sync continuously
  projectmd init [common flags] --repo <owner/name> [--backend github]
  projectmd help
  projectmd version

Common flags:
  --project-file <path>   Project document (default: project.md)
  --token <token>         Tracker access token (default: $GITHUB_TOKEN)
  --quiet                 Suppress informational output
  --debug                 Print debug logs to stderr
`
