// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unreadable or
	// malformed project document).
	UserError = 1

	// ConfigError indicates a configuration error (unsupported backend,
	// missing token, bad repo shape).
	ConfigError = 2

	// BackendError indicates a backend/API/network error, including a
	// sync that completed with per-task errors.
	BackendError = 3
)
