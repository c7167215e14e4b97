package writer

import (
	"fmt"
	"time"

	"github.com/wavenator-labs/subsearch/internal/chunk"
	"github.com/wavenator-labs/subsearch/internal/sarray"
	"github.com/wavenator-labs/subsearch/internal/trigram"
)

// flushJob is one completed chunk buffer handed to the background
// builder goroutine. done is non-nil when the caller (DumpData,
// Finalize) needs to block until the chunk is actually on disk; it is
// nil for the ordinary threshold-triggered flush, which is fire-and
// forget from AddEntry's point of view — the next chunk starts
// accumulating immediately while this one is built and written.
type flushJob struct {
	buf  []byte
	done chan error
}

// loop is the single builder goroutine: it owns the file handle for
// writing and runs suffix-array construction off the caller's goroutine,
// the "single-slot pipeline" the design notes call for. It never writes
// two chunks concurrently, so record order in the file always matches
// flush order.
func (w *Writer) loop() {
	defer w.wg.Done()

	for job := range w.jobs {
		err := w.buildAndWrite(job.buf)
		if err != nil {
			w.log.WithError(err).Error("subsearch: chunk flush failed")
			w.setBgErr(err)
		}
		if job.done != nil {
			job.done <- err
		}
	}
}

func (w *Writer) buildAndWrite(buf []byte) error {
	start := time.Now()

	sa := sarray.Build(buf)

	var filter *trigram.Filter
	if w.bloomEnabled {
		filter = trigram.Build(buf)
	}

	n, err := chunk.Encode(w.f, chunk.Record{Text: buf, SA: sa, Filter: filter})
	if err != nil {
		return fmt.Errorf("writer: flush chunk: %w", err)
	}

	w.log.WithFields(map[string]any{
		"bytes":    n,
		"text_len": len(buf),
		"elapsed":  time.Since(start),
	}).Debug("subsearch: chunk flushed")

	return nil
}

// enqueue hands buf to the builder goroutine. When sync is true it blocks
// until the chunk is fully written and returns any error from doing so;
// otherwise it returns as soon as the job is accepted onto the
// single-slot channel (blocking only if the previous chunk hasn't
// finished writing yet).
func (w *Writer) enqueue(buf []byte, sync bool) error {
	if len(buf) == 0 {
		return nil
	}

	job := flushJob{buf: buf}
	if sync {
		job.done = make(chan error, 1)
	}

	w.jobs <- job

	if sync {
		return <-job.done
	}
	return nil
}
