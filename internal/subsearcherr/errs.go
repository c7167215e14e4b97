// Package subsearcherr defines the error taxonomy shared by the writer and
// reader halves of the index: a small set of sentinels callers can match
// with errors.Is, with everything else wrapped via fmt.Errorf for context.
package subsearcherr

import "errors"

var (
	// ErrNotFound is returned when a reader is opened against a path that
	// does not exist.
	ErrNotFound = errors.New("subsearch: index file not found")

	// ErrCorruptIndex is returned when a chunk record fails a length or
	// checksum check.
	ErrCorruptIndex = errors.New("subsearch: corrupt index")

	// ErrSizeLimit is returned when a chunk would grow past the 32-bit
	// offset space the suffix array relies on.
	ErrSizeLimit = errors.New("subsearch: chunk exceeds 32-bit offset limit")

	// ErrInvalidArgument is returned for bad constructor arguments, empty
	// entries, and entries containing the sentinel byte.
	ErrInvalidArgument = errors.New("subsearch: invalid argument")

	// ErrClosed is returned by any operation on a writer that has already
	// been finalized.
	ErrClosed = errors.New("subsearch: writer already finalized")
)
