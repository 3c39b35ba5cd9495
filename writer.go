// Background write-back: one goroutine per read-write store.

package docstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// writeBack blocks on the wake channel while the store is clean and
// persists snapshots while it is dirty. It exits after a final drain when
// Close signals stop, so no acknowledged write is left behind.
func (s *Store) writeBack() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			s.flushPending()
			return
		case <-s.wake:
			s.flushPending()
		}
	}
}

// flushPending persists until the store is clean or a flush fails. The
// snapshot and the dirty flag are taken together under mu, so a Write that
// lands mid-flush is simply picked up by the next iteration, never lost.
func (s *Store) flushPending() {
	for {
		s.mu.Lock()
		if !s.dirty {
			s.mu.Unlock()
			return
		}
		snapshot := s.doc
		s.dirty = false
		s.flushing = true
		s.mu.Unlock()

		err := s.persist(snapshot)

		s.mu.Lock()
		s.flushing = false
		if err != nil {
			// Keep the data dirty so the same (or a newer) document is
			// retried on the next wake, or during the final drain in Close.
			s.dirty = true
			s.flushErr = fmt.Errorf("%w: %v", ErrFlushFailed, err)
			s.cond.Broadcast()
			s.mu.Unlock()
			s.logger.Error("Flush failed", "path", s.path, "err", err)
			return
		}
		s.flushErr = nil
		s.cond.Broadcast()
		s.mu.Unlock()
	}
}

// persist replaces the file with compress(marshal(doc)) by writing a
// temporary file in the same directory and renaming it over the store
// path, so a failure or crash mid-flush leaves the previously flushed
// image intact. A nil document produces an empty file.
//
// The session handle is swapped to the renamed file. Load and Close wait
// out the flush under mu before touching the handle, so the swap needs no
// extra locking.
func (s *Store) persist(doc any) error {
	s.lastFlush.Store(time.Now().UnixNano())
	var raw []byte
	if doc != nil {
		data, err := s.codec.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}
		if raw, err = s.comp.Compress(data); err != nil {
			return fmt.Errorf("failed to compress document: %w", err)
		}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".docstore-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	// CreateTemp creates 0o600; the store file is world-readable.
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}

	f, err := os.OpenFile(s.path, os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("failed to reopen %s: %w", s.path, err)
	}
	old := s.f
	s.f = f
	_ = old.Close()
	s.lastFlush.Store(time.Now().UnixNano())
	return nil
}
