package docstore

import "log/slog"

// Mode selects what a [Store] is allowed to do with its file.
type Mode int

const (
	// ReadOnly opens an existing file for reading. Write returns
	// ErrReadOnly and no write-back goroutine is started.
	ReadOnly Mode = iota
	// ReadWrite opens the file for reading and writing, creating it and
	// any missing parent directories if needed.
	ReadWrite
)

// String returns the mode name for logs and error messages.
func (m Mode) String() string {
	switch m {
	case ReadOnly:
		return "read-only"
	case ReadWrite:
		return "read-write"
	default:
		return "invalid"
	}
}

// Options configures a [Store]. The zero value is valid: read-only, JSON
// serialization, zstd compression, default logger and registry, no watcher.
type Options struct {
	// Mode is the access mode, ReadOnly by default.
	Mode Mode

	// Codec serializes the document. Defaults to [JSON].
	Codec Codec

	// Compression compresses the serialized document. Defaults to [Zstd].
	Compression Compression

	// Logger receives background flush failures and watcher diagnostics.
	// Defaults to [slog.Default].
	Logger *slog.Logger

	// Registry enforces single ownership per path. Defaults to a
	// package-level process-wide registry.
	Registry *Registry

	// Watch starts a filesystem watcher on the store file. Modifications
	// made by other processes are reported on [Store.Changes] so the
	// caller can decide to call [Store.Load].
	Watch bool
}
