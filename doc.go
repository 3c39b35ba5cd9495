// Package docstore provides a concurrent, single-file, JSON-like document
// store with asynchronous write-back.
//
// # Overview
//
// The package centers around [Store], which keeps one document fully in
// memory and persists it to a single file. Reads and writes never touch
// disk: [Store.Write] replaces the in-memory document and marks it dirty,
// and a background goroutine serializes, compresses and writes it out.
// [Store.Close] drains any pending write before releasing the file, so no
// acknowledged write is lost.
//
// # Concurrency
//
// A Store is safe for concurrent use by multiple goroutines. The document
// and the dirty flag are guarded by a single mutex so the write-back
// goroutine always observes a consistent pair. The goroutine blocks on a
// wake channel while idle; there is no polling.
//
// At most one live Store per path exists in a process, enforced by
// [Registry]. This does not protect against other processes opening the
// same file.
//
// # File Format
//
// The file holds compress(marshal(document)) as raw bytes, with no header
// or checksum. An empty file represents an absent document. The entire
// document is rewritten on every flush, into a temporary file that is
// renamed over the store path, so an interrupted flush leaves the previous
// image intact. Marshaling defaults to JSON and compression to zstd; both
// are replaceable through [Options].
package docstore
