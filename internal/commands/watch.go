package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"projectmd/internal/config"
	"projectmd/internal/engine"
	"projectmd/internal/exitcode"
)

func init() {
	Register(&WatchCmd{})
}

// WatchCmd implements the watch command: it re-runs sync whenever the
// project document or a referenced task file changes. Syncs never
// overlap; events arriving during a sync coalesce into the next pass.
type WatchCmd struct {
	debounce time.Duration
}

func (c *WatchCmd) Name() string      { return "watch" }
func (c *WatchCmd) Aliases() []string { return nil }
func (c *WatchCmd) Synopsis() string  { return "Watch for changes and sync continuously" }
func (c *WatchCmd) Usage() string     { return "projectmd watch [common flags] [--debounce <duration>]" }
func (c *WatchCmd) NeedsToken() bool  { return true }

func (c *WatchCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.DurationVar(&c.debounce, "debounce", 500*time.Millisecond, "")
}

func (c *WatchCmd) Run(ctx context.Context, cfg *config.Config, factory Factory, args []string, out, errOut io.Writer) int {
	doc, code := loadDocument(cfg, errOut)
	if doc == nil {
		return code
	}
	if doc.Config.Backend != supportedBackend {
		fmt.Fprintf(errOut, "error: unsupported backend: %s (only %q is supported)\n", doc.Config.Backend, supportedBackend)
		return exitcode.ConfigError
	}

	b, err := factory(ctx, cfg, doc.Config)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.ConfigError
	}
	eng := engine.New(b, cfg.Root())

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(errOut, "error: cannot start watcher: %v\n", err)
		return exitcode.UserError
	}
	defer watcher.Close()

	if err := c.watchDirs(watcher, cfg); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "Watching %s (Ctrl-C to stop)\n", cfg.ProjectFile)
	}

	// Initial pass, then react to events.
	c.runSync(ctx, eng, cfg, out, errOut)

	timer := time.NewTimer(c.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return exitcode.Success

		case event, ok := <-watcher.Events:
			if !ok {
				return exitcode.Success
			}
			if !relevantEvent(event) {
				continue
			}
			if cfg.Debug {
				fmt.Fprintf(errOut, "debug: fs event: %s\n", event)
			}
			if pending {
				timer.Reset(c.debounce)
				continue
			}
			pending = true
			timer.Reset(c.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return exitcode.Success
			}
			fmt.Fprintf(errOut, "error: watcher: %v\n", err)

		case <-timer.C:
			pending = false
			c.runSync(ctx, eng, cfg, out, errOut)
			// The task set may have changed; pick up new directories.
			if err := c.watchDirs(watcher, cfg); err != nil && cfg.Debug {
				fmt.Fprintf(errOut, "debug: %v\n", err)
			}
		}
	}
}

// runSync executes one sequential sync pass and reports a one-line
// summary. The engine's own rewrites re-trigger the watcher, but the
// follow-up pass settles as all-skipped through the change-detection
// gate.
func (c *WatchCmd) runSync(ctx context.Context, eng *engine.Engine, cfg *config.Config, out, errOut io.Writer) {
	result, err := eng.Sync(ctx, cfg.ProjectFile)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return
	}

	changed := len(result.Created)+len(result.Updated)+len(result.Errors) > 0
	if cfg.Quiet && !changed {
		return
	}
	fmt.Fprintf(out, "synced: %d created, %d updated, %d skipped, %d errors\n",
		len(result.Created), len(result.Updated), len(result.Skipped), len(result.Errors))
	for _, e := range result.Errors {
		fmt.Fprintf(errOut, "error: %s: %v\n", e.Path, e.Err)
	}
}

// watchDirs (re-)registers the project directory and every directory
// holding a referenced task file. Adding an already-watched directory is
// a no-op for fsnotify.
func (c *WatchCmd) watchDirs(watcher *fsnotify.Watcher, cfg *config.Config) error {
	if err := watcher.Add(cfg.Root()); err != nil {
		return fmt.Errorf("cannot watch %s: %w", cfg.Root(), err)
	}

	doc, code := loadDocument(cfg, io.Discard)
	if doc == nil {
		return fmt.Errorf("cannot reload %s (exit %d)", cfg.ProjectFile, code)
	}

	seen := map[string]bool{cfg.Root(): true}
	for _, task := range doc.Tasks {
		dir := filepath.Dir(filepath.Join(cfg.Root(), task.Path))
		if seen[dir] {
			continue
		}
		seen[dir] = true
		// Missing directories are reported per task by the engine; the
		// watcher just skips them.
		if err := watcher.Add(dir); err != nil {
			continue
		}
	}
	return nil
}

// relevantEvent reports whether an fsnotify event should trigger a sync.
func relevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return strings.HasSuffix(event.Name, ".md")
}
