// Package engine reconciles the tasks declared in a project document
// against the issue tracker, one task at a time.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"projectmd/internal/backend"
	"projectmd/internal/project"
)

// action is the per-task reconciliation outcome.
type action int

const (
	actionCreated action = iota
	actionUpdated
	actionSkipped
)

// Engine drives one sync pass. Tasks are processed strictly in document
// order; no two backend calls or file rewrites ever overlap.
type Engine struct {
	backend backend.Backend
	root    string

	// now is the clock used for stamping timestamps.
	now func() time.Time
}

// New creates an engine rooted at the directory task paths are relative to.
func New(b backend.Backend, root string) *Engine {
	return &Engine{backend: b, root: root, now: time.Now}
}

// Sync reads and parses the project document, reconciles every task, and
// patches the document with the numbers of newly created issues.
//
// A read or parse failure of the document itself, or a failed document
// rewrite at the end, fails the whole call. Everything else — unreadable
// task files, parse failures, backend errors — is recorded per task and
// never stops the iteration.
func (e *Engine) Sync(ctx context.Context, projectFile string) (*Result, error) {
	raw, err := os.ReadFile(projectFile)
	if err != nil {
		return nil, fmt.Errorf("cannot read project document: %w", err)
	}

	doc, err := project.ParseDocument(string(raw))
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, item := range doc.Tasks {
		act, number, err := e.syncTask(ctx, item)
		if err != nil {
			result.Errors = append(result.Errors, TaskError{Path: item.Path, Err: err})
			continue
		}
		switch act {
		case actionCreated:
			result.Created = append(result.Created, IssueRef{Path: item.Path, Number: number})
		case actionUpdated:
			result.Updated = append(result.Updated, IssueRef{Path: item.Path, Number: number})
		case actionSkipped:
			result.Skipped = append(result.Skipped, item.Path)
		}
	}

	if len(result.Created) > 0 {
		if err := e.patchDocument(projectFile, string(raw), result.Created); err != nil {
			return result, err
		}
	}

	return result, nil
}

// syncTask reconciles a single task item against the backend.
func (e *Engine) syncTask(ctx context.Context, item project.TaskItem) (action, int, error) {
	path := filepath.Join(e.root, item.Path)

	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot read task file: %w", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot read task file: %w", err)
	}
	content := string(raw)

	tf, err := project.ParseTaskFile(content)
	if err != nil {
		return 0, 0, err
	}

	labels := tf.Config.Tags
	if labels == nil {
		labels = []string{}
	}

	if item.Status.IsNew() {
		issue, err := e.backend.Create(ctx, tf.Title, tf.Body, labels)
		if err != nil {
			return 0, 0, err
		}

		cfg := tf.Config
		cfg.IssueID = issue.Number
		now := e.now()
		if cfg.CreatedAt.IsZero() {
			cfg.CreatedAt = now
		}
		cfg.UpdatedAt = now
		if err := e.rewriteTaskFile(path, content, cfg, now); err != nil {
			return 0, 0, err
		}
		return actionCreated, issue.Number, nil
	}

	number, _ := item.Status.IssueNumber()

	// The document is the source of truth for identity: reconcile a
	// mismatched or absent issue_id before anything else.
	if tf.Config.IssueID != number {
		cfg := tf.Config
		cfg.IssueID = number
		rewritten, err := project.RenderTaskFile(cfg, content)
		if err != nil {
			return 0, 0, err
		}
		if err := os.WriteFile(path, []byte(rewritten), 0644); err != nil {
			return 0, 0, fmt.Errorf("cannot write task file: %w", err)
		}
		content = rewritten
		tf.Config.IssueID = number
	}

	// Change-detection gate: a stored updated_at at or past the mtime
	// observed when the file was read means nothing changed since the
	// last sync.
	if !tf.Config.UpdatedAt.IsZero() && !tf.Config.UpdatedAt.Before(info.ModTime()) {
		return actionSkipped, number, nil
	}

	issue, err := e.backend.Update(ctx, number, tf.Title, tf.Body, labels)
	if err != nil {
		return 0, 0, err
	}

	cfg := tf.Config
	now := e.now()
	cfg.UpdatedAt = now
	if err := e.rewriteTaskFile(path, content, cfg, now); err != nil {
		return 0, 0, err
	}
	return actionUpdated, issue.Number, nil
}

// rewriteTaskFile splices the mutated front matter back into the file,
// leaving the body untouched. The file's mtime is aligned with the
// stamped updated_at; otherwise the write itself would always postdate
// the stamp and the change-detection gate could never settle a task the
// engine just rewrote.
func (e *Engine) rewriteTaskFile(path, content string, cfg project.TaskFileConfig, stamp time.Time) error {
	rewritten, err := project.RenderTaskFile(cfg, content)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(rewritten), 0644); err != nil {
		return fmt.Errorf("cannot write task file: %w", err)
	}
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		return fmt.Errorf("cannot set task file times: %w", err)
	}
	return nil
}

// patchDocument replaces "* [new] - <path> -" with "* [#N] - <path> -"
// for every created task. This is an exact textual substitution: every
// other byte of the document, including descriptions and surrounding
// prose, is preserved.
func (e *Engine) patchDocument(projectFile, content string, created []IssueRef) error {
	for _, c := range created {
		pattern := fmt.Sprintf("* [new] - %s -", c.Path)
		replacement := fmt.Sprintf("* [#%d] - %s -", c.Number, c.Path)
		content = strings.ReplaceAll(content, pattern, replacement)
	}
	if err := os.WriteFile(projectFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("cannot write project document: %w", err)
	}
	return nil
}
