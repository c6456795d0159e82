// Package config holds the runtime settings shared by all commands.
package config

import (
	"os"
	"path/filepath"
)

const (
	// DefaultProjectFile is the project document looked up when no
	// --project-file flag is given.
	DefaultProjectFile = "project.md"

	// TokenEnv is the environment variable consulted when no --token
	// flag is given.
	TokenEnv = "GITHUB_TOKEN"
)

// Config holds settings assembled from common flags and the environment.
type Config struct {
	// ProjectFile is the path to the project document.
	ProjectFile string

	// Token is the tracker access token from the --token flag.
	// Empty means fall back to the environment.
	Token string

	// Quiet suppresses informational output.
	Quiet bool

	// Debug enables debug logging to stderr.
	Debug bool
}

// New creates a Config for the given project file path, defaulting to
// DefaultProjectFile when empty.
func New(projectFile string) *Config {
	if projectFile == "" {
		projectFile = DefaultProjectFile
	}
	return &Config{ProjectFile: projectFile}
}

// Root returns the directory task paths are resolved against.
func (c *Config) Root() string {
	return filepath.Dir(c.ProjectFile)
}

// ResolveToken returns the tracker token from the flag or environment,
// or empty if neither is set.
func (c *Config) ResolveToken() string {
	if c.Token != "" {
		return c.Token
	}
	return os.Getenv(TokenEnv)
}
