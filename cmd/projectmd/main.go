// Package main is the entry point for the projectmd CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"projectmd/internal/backend"
	"projectmd/internal/backend/github"
	"projectmd/internal/cli"
	"projectmd/internal/commands"
	"projectmd/internal/config"
	"projectmd/internal/project"
)

func main() {
	// Create context that cancels on interrupt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Backend factory: the repository comes from the project document's
	// front matter, the token from the flag or environment.
	factory := func(ctx context.Context, cfg *config.Config, pc project.Config) (backend.Backend, error) {
		token := cfg.ResolveToken()
		if token == "" {
			return nil, fmt.Errorf("tracker token required (set %s or use --token)", config.TokenEnv)
		}
		return github.New(ctx, token, pc.Repo)
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)
	os.Exit(dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}
