// Package reader opens an index file built by package writer and answers
// substring queries against it. A Reader is read-only and safe for
// concurrent use by multiple goroutines: all query operations work over
// an immutable memory-mapped view of the file and hold no mutable state
// of their own.
package reader

import (
	"bytes"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/sirupsen/logrus"

	"github.com/wavenator-labs/subsearch/internal/chunk"
	"github.com/wavenator-labs/subsearch/internal/dispatch"
	"github.com/wavenator-labs/subsearch/internal/subsearcherr"
)

// Reader answers substring queries over a finalized index file.
type Reader struct {
	f   *os.File
	mm  mmap.MMap
	log *logrus.Logger

	chunks      []chunk.Record
	workerCount int
}

// Option configures a Reader at construction time.
type Option func(*Reader)

// WithWorkerCount overrides the parallel search worker pool size.
// n <= 0 (the default) uses runtime.GOMAXPROCS(0).
func WithWorkerCount(n int) Option {
	return func(r *Reader) { r.workerCount = n }
}

// WithLogger sets the logger used for corruption diagnostics. Defaults
// to logrus.StandardLogger().
func WithLogger(l *logrus.Logger) Option {
	return func(r *Reader) { r.log = l }
}

// New opens path read-only and parses its chunk directory eagerly: one
// linear pass over the memory-mapped file reading each record's length
// prefixes, CRC, and Bloom block.
func New(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("reader: %w: %s", subsearcherr.ErrNotFound, path)
		}
		return nil, fmt.Errorf("reader: open %s: %w", path, err)
	}

	r := &Reader{
		f:   f,
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("reader: stat %s: %w", path, err)
	}

	if info.Size() == 0 {
		return r, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("reader: mmap %s: %w", path, err)
	}
	r.mm = m

	var off int64
	for off < int64(len(m)) {
		rec, next, err := chunk.DecodeAt(m, off)
		if err != nil {
			r.log.WithError(err).Error("subsearch: corrupt chunk record")
			_ = m.Unmap()
			_ = f.Close()
			return nil, err
		}
		r.chunks = append(r.chunks, rec)
		off = next
	}

	return r, nil
}

// Close releases the memory mapping and closes the underlying file.
func (r *Reader) Close() error {
	var mmErr error
	if r.mm != nil {
		mmErr = r.mm.Unmap()
	}
	closeErr := r.f.Close()
	if mmErr != nil {
		return fmt.Errorf("reader: unmap: %w", mmErr)
	}
	if closeErr != nil {
		return fmt.Errorf("reader: close: %w", closeErr)
	}
	return nil
}

func validateQuery(substring []byte) (ok bool, err error) {
	if len(substring) == 0 {
		return false, fmt.Errorf("reader: %w: empty query", subsearcherr.ErrInvalidArgument)
	}
	if bytes.IndexByte(substring, sentinel) != -1 {
		// A query containing the sentinel can never match: the
		// sentinel appears only as entry boundaries, never inside an
		// entry's bytes. Spec defines this case as empty results, no
		// error.
		return false, nil
	}
	return true, nil
}

// Search returns every stored entry containing substring as a
// contiguous byte subsequence, in unspecified order. It is an alias for
// SearchParallel.
func (r *Reader) Search(substring string) ([]string, error) {
	return r.SearchParallel(substring)
}

// SearchMultiple runs Search once per entry of substrings, in order,
// and concatenates the results. It performs no deduplication across
// different queries.
func (r *Reader) SearchMultiple(substrings []string) ([]string, error) {
	var out []string
	for _, s := range substrings {
		res, err := r.Search(s)
		if err != nil {
			return nil, err
		}
		out = append(out, res...)
	}
	return out, nil
}

// SearchSequential searches chunks in file order on the calling
// goroutine.
func (r *Reader) SearchSequential(substring string) ([]string, error) {
	q := []byte(substring)
	searchable, err := validateQuery(q)
	if err != nil {
		return nil, err
	}
	if !searchable {
		return nil, nil
	}

	perChunk, err := dispatch.Sequential(len(r.chunks), func(i int) ([]string, error) {
		return chunkSearch(r.chunks[i], q), nil
	})
	if err != nil {
		return nil, err
	}
	return flatten(perChunk), nil
}

// SearchParallel dispatches one task per chunk to a bounded worker pool
// and concatenates results in chunk order.
func (r *Reader) SearchParallel(substring string) ([]string, error) {
	q := []byte(substring)
	searchable, err := validateQuery(q)
	if err != nil {
		return nil, err
	}
	if !searchable {
		return nil, nil
	}

	perChunk, err := dispatch.Parallel(len(r.chunks), r.workerCount, func(i int) ([]string, error) {
		return chunkSearch(r.chunks[i], q), nil
	})
	if err != nil {
		return nil, err
	}
	return flatten(perChunk), nil
}

// CountEntries returns the number of distinct entries in the index that
// contain substring at least once.
func (r *Reader) CountEntries(substring string) (int, error) {
	q := []byte(substring)
	searchable, err := validateQuery(q)
	if err != nil {
		return 0, err
	}
	if !searchable {
		return 0, nil
	}

	counts, err := dispatch.Parallel(len(r.chunks), r.workerCount, func(i int) (int, error) {
		return chunkCountEntries(r.chunks[i], q), nil
	})
	if err != nil {
		return 0, err
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	return total, nil
}

// CountOccurrences returns the total number of occurrences of substring
// across all entries, counting overlapping occurrences the same way a
// left-to-right scan advancing by one byte on each match would.
func (r *Reader) CountOccurrences(substring string) (int, error) {
	q := []byte(substring)
	searchable, err := validateQuery(q)
	if err != nil {
		return 0, err
	}
	if !searchable {
		return 0, nil
	}

	counts, err := dispatch.Parallel(len(r.chunks), r.workerCount, func(i int) (int, error) {
		return chunkCountOccurrences(r.chunks[i], q), nil
	})
	if err != nil {
		return 0, err
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	return total, nil
}

func flatten(perChunk [][]string) []string {
	total := 0
	for _, c := range perChunk {
		total += len(c)
	}
	if total == 0 {
		return nil
	}
	out := make([]string, 0, total)
	for _, c := range perChunk {
		out = append(out, c...)
	}
	return out
}
