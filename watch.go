package allcities

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

// Watch reloads the published set whenever the snapshot file is replaced,
// for instance by an update run from another process. It blocks until ctx
// is done or the watcher fails.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating snapshot watcher")
	}
	defer watcher.Close()

	// Watch the directory: SaveSnapshot renames a new file into place, which
	// a watch on the file itself would not follow.
	if err := os.MkdirAll(s.cfg.DataDir, 0755); err != nil {
		return errors.Wrap(err, "creating data directory")
	}
	if err := watcher.Add(s.cfg.DataDir); err != nil {
		return errors.Wrapf(err, "watching %s", s.cfg.DataDir)
	}

	reload := make(chan struct{}, 1)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != SnapshotFile {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			s.log.Debugw("snapshot changed", "op", event.Op.String())
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(s.cfg.ReloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			if err := s.Reload(); err != nil {
				s.log.Warnw("snapshot reload failed, keeping current data", "error", err)
				continue
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warnw("snapshot watcher error", "error", err)
		}
	}
}
