package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Store owns one file and its in-memory document. Create with [Open], use
// from any goroutine, release with [Store.Close].
type Store struct {
	path     string
	mode     Mode
	codec    Codec
	comp     Compression
	logger   *slog.Logger
	registry *Registry
	f        *os.File

	// mu guards doc, dirty, flushing, flushErr and closed as one unit so
	// the write-back goroutine never observes a document inconsistent with
	// the dirty flag. cond is broadcast on every state change.
	mu       sync.Mutex
	cond     *sync.Cond
	doc      any
	dirty    bool
	flushing bool
	flushErr error
	closed   bool

	wake chan struct{} // cap 1, coalesces write notifications
	stop chan struct{}
	done chan struct{}

	watcher   *fsnotify.Watcher
	changes   chan struct{}
	watchDone chan struct{}
	lastFlush atomic.Int64 // UnixNano of the most recent own flush
}

// Open opens the document store at path. A nil opts is equivalent to the
// zero [Options]. In [ReadWrite] mode a missing file is created along with
// its parent directories and the write-back goroutine is started.
//
// An existing file is read before it is ever written; its previous content
// becomes the initial document. An empty file yields an absent (nil)
// document.
func Open(path string, opts *Options) (*Store, error) {
	if opts == nil {
		opts = &Options{}
	}
	switch opts.Mode {
	case ReadOnly, ReadWrite:
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(opts.Mode))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	fi, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if opts.Mode == ReadOnly {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, abs)
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", abs, err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to stat %s: %w", abs, err)
	case !fi.Mode().IsRegular():
		return nil, fmt.Errorf("%w: %s", ErrNotAFile, abs)
	}

	var f *os.File
	if opts.Mode == ReadWrite {
		// No O_TRUNC: an existing store must be read before it is written.
		f, err = os.OpenFile(abs, os.O_RDWR|os.O_CREATE, 0o644)
	} else {
		f, err = os.Open(abs)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", abs, err)
	}

	reg := opts.Registry
	if reg == nil {
		reg = defaultRegistry
	}
	if !reg.register(abs) {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyOpen, abs)
	}

	s := &Store{
		path:     abs,
		mode:     opts.Mode,
		codec:    opts.Codec,
		comp:     opts.Compression,
		logger:   opts.Logger,
		registry: reg,
		f:        f,
	}
	if s.codec == nil {
		s.codec = JSON{}
	}
	if s.comp == nil {
		s.comp = Zstd{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.cond = sync.NewCond(&s.mu)

	doc, err := s.readFile()
	if err != nil {
		_ = f.Close()
		reg.unregister(abs)
		return nil, err
	}
	s.doc = doc

	if opts.Watch {
		if err := s.startWatcher(); err != nil {
			_ = f.Close()
			reg.unregister(abs)
			return nil, err
		}
	}
	if opts.Mode == ReadWrite {
		s.wake = make(chan struct{}, 1)
		s.stop = make(chan struct{})
		s.done = make(chan struct{})
		go s.writeBack()
	}
	return s, nil
}

// Path returns the absolute path of the store file.
func (s *Store) Path() string {
	return s.path
}

// Mode returns the access mode the store was opened with.
func (s *Store) Mode() Mode {
	return s.mode
}

// Read returns the current in-memory document, or nil when absent. It never
// blocks on I/O. The returned value shares structure with the stored
// document: treat it as read-only and use [Store.Write] to replace it.
func (s *Store) Read() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Write replaces the in-memory document and marks it for persistence. It
// returns once the replacement is visible to the write-back goroutine; the
// actual flush happens asynchronously. Rapid successive writes coalesce:
// only the most recent document reaches disk.
func (s *Store) Write(doc any) error {
	if s.mode != ReadWrite {
		return fmt.Errorf("%w: %s", ErrReadOnly, s.path)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.doc = doc
	s.dirty = true
	// A newer document supersedes a previously failed snapshot: the
	// retry's outcome, not the stale failure, is what Flush and Err must
	// report from here on.
	s.flushErr = nil
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// Load re-reads the file and replaces the in-memory document, re-syncing
// after an external modification. Any unflushed Write is discarded: a flush
// already in progress is allowed to finish first, then the on-disk state
// wins. A pending flush error is cleared since memory and disk agree again.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for s.flushing {
		s.cond.Wait()
	}
	// Close may have won the race while we waited out the flush; the file
	// handle is no longer ours to read.
	if s.closed {
		return ErrClosed
	}
	doc, err := s.readFile()
	if err != nil {
		return err
	}
	s.doc = doc
	s.dirty = false
	s.flushErr = nil
	s.cond.Broadcast()
	return nil
}

// Flush blocks until every pending write has been durably persisted, the
// context is done, or a flush has failed. On a [ReadOnly] store it returns
// nil immediately.
func (s *Store) Flush(ctx context.Context) error {
	if s.mode != ReadWrite {
		return nil
	}
	cancelWake := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	})
	defer cancelWake()

	s.mu.Lock()
	defer s.mu.Unlock()
	for (s.dirty || s.flushing) && s.flushErr == nil && !s.closed && ctx.Err() == nil {
		s.cond.Wait()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed {
		return ErrClosed
	}
	return s.flushErr
}

// Err returns the most recent background flush failure, wrapped in
// [ErrFlushFailed], or nil. It is cleared by the next successful flush, by
// [Store.Load], and by a [Store.Write] that supersedes the failed snapshot.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushErr
}

// Close drains any pending write, stops the write-back goroutine and the
// watcher, releases the file handle and the path registration. If the final
// flush fails its error is returned; the data is then lost. The store is
// unusable afterwards: all further operations return [ErrClosed].
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()

	var err error
	if s.mode == ReadWrite {
		close(s.stop)
		<-s.done
		s.mu.Lock()
		err = s.flushErr
		s.mu.Unlock()
	}
	if s.watcher != nil {
		_ = s.watcher.Close()
		<-s.watchDone
	}
	if cerr := s.f.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close %s: %w", s.path, cerr)
	}
	s.registry.unregister(s.path)
	return err
}

// readFile reads and decodes the whole file through the session handle.
// Callers hold mu, except during construction before the store is shared.
func (s *Store) readFile() (any, error) {
	if _, err := s.f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek %s: %w", s.path, err)
	}
	raw, err := io.ReadAll(s.f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	data, err := s.comp.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	var doc any
	if err := s.codec.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	return doc, nil
}
