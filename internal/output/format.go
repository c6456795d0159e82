// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"

	"projectmd/internal/engine"
	"projectmd/internal/project"
)

// FormatSummary writes the full sync summary: created, updated, skipped
// and errored tasks, then the total. Sections with no entries are
// omitted; errors never suppress the reporting of successes.
func FormatSummary(w io.Writer, result *engine.Result) {
	fmt.Fprintln(w, "\n=== Sync Summary ===")

	if len(result.Created) > 0 {
		fmt.Fprintf(w, "\nCreated (%d):\n", len(result.Created))
		for _, c := range result.Created {
			fmt.Fprintf(w, "  - %s -> issue #%d\n", c.Path, c.Number)
		}
	}

	if len(result.Updated) > 0 {
		fmt.Fprintf(w, "\nUpdated (%d):\n", len(result.Updated))
		for _, u := range result.Updated {
			fmt.Fprintf(w, "  - %s -> issue #%d\n", u.Path, u.Number)
		}
	}

	if len(result.Skipped) > 0 {
		fmt.Fprintf(w, "\nSkipped (%d):\n", len(result.Skipped))
		for _, path := range result.Skipped {
			fmt.Fprintf(w, "  - %s\n", path)
		}
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  - %s: %s\n", e.Path, e.Err)
		}
	}

	fmt.Fprintf(w, "\nTotal: %d tasks processed\n", result.Total())
}

// FormatDryRun writes the plan a sync run would execute, without any
// backend calls or file writes happening.
func FormatDryRun(w io.Writer, doc *project.Document) {
	fmt.Fprintln(w, "DRY RUN: no changes will be made")
	fmt.Fprintf(w, "\nWould sync %d tasks to %s/%s:\n\n", len(doc.Tasks), doc.Config.Backend, doc.Config.Repo)

	for _, task := range doc.Tasks {
		if n, ok := task.Status.IssueNumber(); ok {
			fmt.Fprintf(w, "  [UPDATE] #%d %s - %s\n", n, task.Path, task.Description)
		} else {
			fmt.Fprintf(w, "  [CREATE] %s - %s\n", task.Path, task.Description)
		}
	}
}

// FormatTaskLine writes one task status line.
func FormatTaskLine(w io.Writer, task project.TaskItem) {
	if n, ok := task.Status.IssueNumber(); ok {
		fmt.Fprintf(w, "  [#%d] %s - %s\n", n, task.Path, task.Description)
	} else {
		fmt.Fprintf(w, "  [NEW] %s - %s\n", task.Path, task.Description)
	}
}
