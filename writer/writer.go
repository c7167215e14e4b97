// Package writer accumulates entries into sentinel-separated chunk
// buffers and flushes each chunk — suffix array and all — to an index
// file once it crosses a configured size threshold. It is the write side
// of the chunked suffix-array substring index; see package reader for
// the query side.
package writer

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/wavenator-labs/subsearch/internal/subsearcherr"
)

// sentinel is the byte that separates entries within a chunk's text
// blob and terminates the blob itself. It must be strictly smaller than
// any byte inside an entry, which is why entries containing it are
// rejected outright rather than accepted with undefined search
// semantics.
const sentinel = 0x00

// Writer builds an index file one entry at a time. It is not safe for
// concurrent use from multiple goroutines — like the source format's
// single-writer contract, callers must serialize their own calls, though
// the Writer does serialize the background chunk-building goroutine
// against its own state internally.
type Writer struct {
	mu  sync.Mutex
	buf []byte

	maxChunkLen  int
	bloomEnabled bool
	log          *logrus.Logger

	f    *os.File
	jobs chan flushJob
	wg   sync.WaitGroup

	bgErrMu sync.Mutex
	bgErr   error

	closed atomic.Bool
}

// New opens path for exclusive write (truncating any existing file) and
// returns a Writer ready to accept entries.
func New(path string, opts ...Option) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("writer: open %s: %w", path, err)
	}

	w := &Writer{
		maxChunkLen:  DefaultMaxChunkLen,
		bloomEnabled: true,
		log:          logrus.StandardLogger(),
		f:            f,
		jobs:         make(chan flushJob, 1),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.maxChunkLen <= 0 || w.maxChunkLen > math.MaxUint32 {
		_ = f.Close()
		return nil, fmt.Errorf("writer: %w: max chunk len %d must be in (0, 2^32)", subsearcherr.ErrInvalidArgument, w.maxChunkLen)
	}

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

func (w *Writer) setBgErr(err error) {
	w.bgErrMu.Lock()
	defer w.bgErrMu.Unlock()
	if w.bgErr == nil {
		w.bgErr = err
	}
}

func (w *Writer) takeBgErr() error {
	w.bgErrMu.Lock()
	defer w.bgErrMu.Unlock()
	return w.bgErr
}

// AddEntry appends text to the current chunk buffer, followed by the
// sentinel byte, and triggers an asynchronous flush if the buffer now
// exceeds the configured threshold. An entry is never split across
// chunks; one larger than the threshold is flushed together with
// whatever the buffer already held.
//
// An empty entry is rejected with ErrInvalidArgument: it can never be
// the unique maximal match for any query and is indistinguishable on
// replay from two adjacent sentinels.
func (w *Writer) AddEntry(text []byte) error {
	if w.closed.Load() {
		return subsearcherr.ErrClosed
	}
	if err := w.takeBgErr(); err != nil {
		return err
	}

	if len(text) == 0 {
		return fmt.Errorf("writer: %w: empty entry", subsearcherr.ErrInvalidArgument)
	}
	for _, b := range text {
		if b == sentinel {
			return fmt.Errorf("writer: %w: entry contains sentinel byte", subsearcherr.ErrInvalidArgument)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if uint64(len(w.buf))+uint64(len(text))+1 >= uint64(math.MaxUint32) {
		return fmt.Errorf("writer: %w", subsearcherr.ErrSizeLimit)
	}

	w.buf = append(w.buf, text...)
	w.buf = append(w.buf, sentinel)

	if len(w.buf) > w.maxChunkLen {
		flushing := w.buf
		w.buf = nil
		if err := w.enqueue(flushing, false); err != nil {
			return err
		}
	}

	return nil
}

// AddEntriesFromFileLines reads path as UTF-8 text and calls AddEntry
// once per line with the line terminator stripped, skipping empty
// lines.
func (w *Writer) AddEntriesFromFileLines(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("writer: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), w.maxChunkLen)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := w.AddEntry(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("writer: read %s: %w", path, err)
	}

	return nil
}

// DumpData forces a flush of the current chunk buffer, if non-empty,
// and blocks until that chunk is fully written to disk.
func (w *Writer) DumpData() error {
	if w.closed.Load() {
		return subsearcherr.ErrClosed
	}
	if err := w.takeBgErr(); err != nil {
		return err
	}

	w.mu.Lock()
	flushing := w.buf
	w.buf = nil
	w.mu.Unlock()

	return w.enqueue(flushing, true)
}

// Finalize flushes any pending chunk, drains the background builder
// goroutine, and closes the file. The Writer must not be used
// afterwards; further calls return ErrClosed.
func (w *Writer) Finalize() error {
	if w.closed.Swap(true) {
		return subsearcherr.ErrClosed
	}

	w.mu.Lock()
	flushing := w.buf
	w.buf = nil
	w.mu.Unlock()

	flushErr := w.enqueue(flushing, true)

	close(w.jobs)
	w.wg.Wait()

	closeErr := w.f.Close()

	if flushErr != nil {
		return flushErr
	}
	if err := w.takeBgErr(); err != nil {
		return err
	}
	if closeErr != nil {
		return fmt.Errorf("writer: close: %w", closeErr)
	}
	return nil
}
