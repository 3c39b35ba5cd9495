package docstore

import "errors"

var (
	// ErrInvalidMode is returned by Open when the access mode is not one of
	// ReadOnly or ReadWrite.
	ErrInvalidMode = errors.New("invalid access mode")
	// ErrNotExist is returned by Open in ReadOnly mode when the file does
	// not exist.
	ErrNotExist = errors.New("store file does not exist")
	// ErrNotAFile is returned by Open when the path exists but is not a
	// regular file.
	ErrNotAFile = errors.New("path is not a regular file")
	// ErrAlreadyOpen is returned by Open when another live Store in this
	// process owns the path.
	ErrAlreadyOpen = errors.New("path is already open")
	// ErrCorrupt is returned when the file contents cannot be decompressed
	// or decoded.
	ErrCorrupt = errors.New("corrupt store")
	// ErrReadOnly is returned by Write on a ReadOnly store.
	ErrReadOnly = errors.New("store is read-only")
	// ErrFlushFailed wraps a background persistence failure. Check with
	// [Store.Err] or the error returned by [Store.Close].
	ErrFlushFailed = errors.New("flush failed")
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store is closed")
)
