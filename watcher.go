// Optional filesystem watcher reporting external modifications of the
// store file, so callers know when to re-sync with Load.

package docstore

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// selfEventWindow is how long after one of our own flushes events on the
// store file are attributed to that flush and dropped. Best effort:
// fsnotify does not report which process wrote.
const selfEventWindow = 500 * time.Millisecond

func (s *Store) startWatcher() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.path, err)
	}
	// Watch the parent directory, not the file: flushes rename a fresh
	// file over the path, and a watch pinned to the old inode would go
	// silent after the first flush.
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch %s: %w", s.path, err)
	}
	s.watcher = w
	s.changes = make(chan struct{}, 1)
	s.watchDone = make(chan struct{})
	go s.watchFile()
	return nil
}

// Changes reports modifications of the store file made outside this store
// when [Options.Watch] is set, coalescing bursts into one notification.
// Callers typically respond with [Store.Load]. Close closes the channel.
// Returns nil when the watcher is disabled.
func (s *Store) Changes() <-chan struct{} {
	return s.changes
}

func (s *Store) watchFile() {
	defer close(s.watchDone)
	defer close(s.changes)
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != s.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if time.Since(time.Unix(0, s.lastFlush.Load())) < selfEventWindow {
				continue
			}
			s.logger.Warn("Store file modified externally", "path", s.path, "op", ev.Op.String())
			select {
			case s.changes <- struct{}{}:
			default:
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("Error watching store file", "path", s.path, "err", err)
		}
	}
}
