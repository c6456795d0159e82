// Package project defines the data model for project documents and task
// files, plus the parsers that build it from hand-edited text.
package project

import "time"

// Config is the YAML front matter of the project document.
// Unrecognized keys land in Extra and survive a parse/rewrite round trip
// (key ordering is not preserved).
type Config struct {
	Backend string         `yaml:"backend"`
	Repo    string         `yaml:"repo"`
	Extra   map[string]any `yaml:",inline"`
}

// TaskStatus is either New (no issue yet) or Existing with an issue number.
// Issue numbers are always >= 1; the zero value is New.
type TaskStatus struct {
	number int
}

// NewStatus returns the status for a task with no tracked issue.
func NewStatus() TaskStatus { return TaskStatus{} }

// ExistingStatus returns the status for a task tracked as issue n.
func ExistingStatus(n int) TaskStatus { return TaskStatus{number: n} }

// IsNew reports whether the task has no tracked issue.
func (s TaskStatus) IsNew() bool { return s.number == 0 }

// IssueNumber returns the tracked issue number, if any.
func (s TaskStatus) IssueNumber() (int, bool) {
	if s.number == 0 {
		return 0, false
	}
	return s.number, true
}

// TaskItem is one task bullet from the project document.
type TaskItem struct {
	Status      TaskStatus
	Path        string // relative to the project document
	Description string // display text, never sent to the backend
}

// TaskFileConfig is the YAML front matter of a single task file.
// IssueID of zero means the task has not been created in the backend yet.
type TaskFileConfig struct {
	IssueID   int            `yaml:"issue_id,omitempty"`
	Type      string         `yaml:"type,omitempty"`
	Tags      []string       `yaml:"tags,omitempty"`
	CreatedAt time.Time      `yaml:"created_at,omitempty"`
	UpdatedAt time.Time      `yaml:"updated_at,omitempty"`
	Extra     map[string]any `yaml:",inline"`
}

// TaskFile is a parsed task file.
type TaskFile struct {
	Config TaskFileConfig
	Title  string // text of the first level-1 heading, marker stripped
	Body   string // everything after the heading, trimmed of blank lines
}

// Document is a parsed project document.
type Document struct {
	Config Config
	Tasks  []TaskItem
}
