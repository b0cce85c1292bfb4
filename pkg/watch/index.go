// Package watch notices when the set of tracked files may have changed.
//
// It never watches working-tree files; that is the external watch tool's job.
// It only watches the git directory for rewrites of the index, which is where
// `git add`, `git rm` and checkouts leave their mark.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/yaklabco/watchtest/internal/log"
)

// IndexFileName is the name of git's staging-area file inside the git dir.
const IndexFileName = "index"

// IndexWatcher reports debounced changes to a repository's index file.
type IndexWatcher struct {
	gitDir    string
	debounce  time.Duration
	fsWatcher *fsnotify.Watcher
}

// NewIndexWatcher starts watching gitDir. Git replaces the index by renaming
// index.lock over it, so the directory is watched rather than the file.
func NewIndexWatcher(gitDir string, debounce time.Duration) (*IndexWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := fsWatcher.Add(gitDir); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("watching git directory %q: %w", gitDir, err)
	}

	return &IndexWatcher{
		gitDir:    gitDir,
		debounce:  debounce,
		fsWatcher: fsWatcher,
	}, nil
}

// Run calls onChange after each burst of index updates, until ctx is done or
// the watcher is closed. onChange runs on a timer goroutine.
func (w *IndexWatcher) Run(ctx context.Context, onChange func()) error {
	debouncer := NewDebouncer(w.debounce, func(path string) {
		slog.Debug("git index changed", slog.String(log.Path, path))
		onChange()
	})
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if !IsIndexEvent(event) {
				continue
			}
			debouncer.Trigger(event.Name)

		case watchErr, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("index watcher error", slog.String(log.Dir, w.gitDir), slog.Any(log.Error, watchErr))
		}
	}
}

// Close stops watching.
func (w *IndexWatcher) Close() error {
	return w.fsWatcher.Close()
}

// IsIndexEvent reports whether event rewrote the index itself (rather than
// index.lock or some other file in the git directory).
func IsIndexEvent(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != IndexFileName {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}
