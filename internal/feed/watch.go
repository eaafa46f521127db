package feed

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Mr-Dark-debug/covidash/internal/logger"
)

// DebounceDelay is how long a file must stay quiet before a change fires.
const DebounceDelay = 500 * time.Millisecond

// Watch calls fn after the file changes, coalescing bursts of writes (an
// editor save is usually several events) into one call. The parent
// directory is watched so atomic renames are seen too. Watch returns once
// the watcher is running; it stops when ctx is cancelled. The returned
// channel closes after the watcher has exited and any fn call already in
// progress has returned.
func (s *FileSource) Watch(ctx context.Context, log logger.Logger, fn func()) (<-chan struct{}, error) {
	if log == nil {
		log = logger.Discard
	}
	absPath, err := filepath.Abs(s.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", s.Path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(absPath), err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer watcher.Close()

		// inflight counts armed timers and running callbacks.
		var inflight sync.WaitGroup
		var timer *time.Timer
		defer func() {
			if timer != nil && timer.Stop() {
				inflight.Done()
			}
			inflight.Wait()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				name, _ := filepath.Abs(event.Name)
				if name != absPath {
					continue
				}
				if timer != nil && timer.Stop() {
					inflight.Done()
				}
				inflight.Add(1)
				timer = time.AfterFunc(DebounceDelay, func() {
					defer inflight.Done()
					if ctx.Err() != nil {
						return
					}
					log.Info("summary file changed", "path", absPath)
					fn()
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("file watcher error", "err", err)
			}
		}
	}()

	log.Info("watching summary file", "path", absPath)
	return done, nil
}
