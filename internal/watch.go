package internal

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/gnoswap-labs/dissect/internal/types"
)

// RuleLoader reads a rule file and returns its default separator and rules.
type RuleLoader func(path string) (separator string, rules []tt.ConfigRule, err error)

const reloadDelay = 100 * time.Millisecond

// WatchRules reloads the engine whenever the rule file at path changes. It
// blocks until ctx is done. A rule file that fails to load is logged and the
// previous rules stay active.
func (e *Engine) WatchRules(ctx context.Context, path string, load RuleLoader) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	// editors often replace the file, so watch the directory
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("error adding directory to watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// wait for a while after file change to consider multiple changes as one
			time.Sleep(reloadDelay)
			e.reload(target, load)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if e.logger != nil {
				e.logger.Error("watcher error", zap.Error(err))
			}
		}
	}
}

func (e *Engine) reload(path string, load RuleLoader) {
	separator, rules, err := load(path)
	if err == nil {
		err = e.Reload(separator, rules)
	}
	if e.logger == nil {
		return
	}
	if err != nil {
		e.logger.Error("error reloading rules", zap.String("path", path), zap.Error(err))
		return
	}
	e.logger.Info("rules reloaded", zap.String("path", path), zap.Int("rules", len(rules)))
}
