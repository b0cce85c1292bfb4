package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/yaklabco/watchtest/internal/log"
	"github.com/yaklabco/watchtest/pkg/watch"
)

// RunWithRestarts runs the pipeline and restarts it whenever the set of
// tracked files changes, since the watch tool only ever watches the files it
// was handed at start. It returns when the watch tool exits on its own or ctx
// is done.
func RunWithRestarts(ctx context.Context, pipeline *Pipeline, debounce time.Duration) error {
	gitDir, err := pipeline.Git.GitDir(ctx)
	if err != nil {
		return err
	}

	indexWatcher, err := watch.NewIndexWatcher(gitDir, debounce)
	if err != nil {
		return err
	}
	defer func() { _ = indexWatcher.Close() }()
	slog.Debug("watching git index", slog.String(log.Dir, gitDir), slog.Duration(log.Debounce, debounce))

	current, err := pipeline.Tracked(ctx)
	if err != nil {
		return err
	}

	changes := make(chan struct{}, 1)
	go func() {
		_ = indexWatcher.Run(ctx, func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
	}()

	for {
		runCtx, stop := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			done <- pipeline.Run(runCtx)
		}()

		restarting := false
	wait:
		for {
			select {
			case err := <-done:
				stop()
				if !restarting || ctx.Err() != nil {
					return err
				}
				break wait

			case <-changes:
				if restarting {
					continue
				}
				fresh, err := pipeline.Tracked(ctx)
				if err != nil {
					slog.Warn("re-listing tracked files failed", slog.Any(log.Error, err))
					continue
				}
				added, removed := lo.Difference(fresh, current)
				if len(added) == 0 && len(removed) == 0 {
					slog.Debug("tracked files unchanged", slog.Int(log.Count, len(fresh)))
					continue
				}
				current = fresh
				restarting = true
				log.SimpleConsoleLogger.Print(restartNotice(pipeline.WatchCmd, len(added), len(removed)))
				stop()
			}
		}
	}
}

func restartNotice(watchCmd string, added, removed int) string {
	return fmt.Sprintf("tracked files changed (+%d -%d), restarting %s", added, removed, watchCmd)
}
