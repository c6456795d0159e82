package engine

// IssueRef ties a task path to the issue it was reconciled against.
type IssueRef struct {
	Path   string
	Number int
}

// TaskError records a per-task failure that did not stop the run.
type TaskError struct {
	Path string
	Err  error
}

// Result aggregates the outcome of one sync pass in document order.
type Result struct {
	Created []IssueRef
	Updated []IssueRef
	Skipped []string
	Errors  []TaskError
}

// Total returns the number of tasks processed.
func (r *Result) Total() int {
	return len(r.Created) + len(r.Updated) + len(r.Skipped) + len(r.Errors)
}

// HasErrors reports whether any task failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }
