package writer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wavenator-labs/subsearch/internal/chunk"
	"github.com/wavenator-labs/subsearch/internal/subsearcherr"
)

func tempIndexPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "output.idx")
}

func readAllChunks(t *testing.T, path string) []chunk.Record {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	var recs []chunk.Record
	var off int64
	for off < int64(len(data)) {
		rec, next, err := chunk.DecodeAt(data, off)
		if err != nil {
			t.Fatalf("DecodeAt at %d: %v", off, err)
		}
		recs = append(recs, rec)
		off = next
	}
	return recs
}

func TestAddEntryRejectsEmpty(t *testing.T) {
	w, err := New(tempIndexPath(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Finalize()

	if err := w.AddEntry(nil); !errors.Is(err, subsearcherr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestAddEntryRejectsSentinel(t *testing.T) {
	w, err := New(tempIndexPath(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Finalize()

	if err := w.AddEntry([]byte("a\x00b")); !errors.Is(err, subsearcherr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestFinalizeIsNotIdempotent(t *testing.T) {
	path := tempIndexPath(t)
	w, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.AddEntry([]byte("hello")); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if err := w.Finalize(); !errors.Is(err, subsearcherr.ErrClosed) {
		t.Fatalf("expected ErrClosed on second Finalize, got %v", err)
	}
	if err := w.AddEntry([]byte("x")); !errors.Is(err, subsearcherr.ErrClosed) {
		t.Fatalf("expected ErrClosed on AddEntry after Finalize, got %v", err)
	}
}

func TestSingleChunkWhenUnderThreshold(t *testing.T) {
	path := tempIndexPath(t)
	w, err := New(path, WithMaxChunkLen(1<<20))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, e := range []string{"one", "two", "three"} {
		if err := w.AddEntry([]byte(e)); err != nil {
			t.Fatalf("AddEntry(%q): %v", e, err)
		}
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	recs := readAllChunks(t, path)
	if len(recs) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(recs))
	}
	if !bytes.Equal(recs[0].Text, []byte("one\x00two\x00three\x00")) {
		t.Fatalf("unexpected chunk text: %q", recs[0].Text)
	}
}

func TestLowThresholdProducesMultipleChunks(t *testing.T) {
	path := tempIndexPath(t)
	w, err := New(path, WithMaxChunkLen(8))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, e := range []string{"abcd", "efgh", "ijkl"} {
		if err := w.AddEntry([]byte(e)); err != nil {
			t.Fatalf("AddEntry(%q): %v", e, err)
		}
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	recs := readAllChunks(t, path)
	if len(recs) < 2 {
		t.Fatalf("expected at least 2 chunks with a low threshold, got %d", len(recs))
	}

	var all []byte
	for _, r := range recs {
		all = append(all, r.Text...)
	}
	if !bytes.Equal(all, []byte("abcd\x00efgh\x00ijkl\x00")) {
		t.Fatalf("unexpected concatenated text: %q", all)
	}
}

func TestDumpDataForcesFlush(t *testing.T) {
	path := tempIndexPath(t)
	w, err := New(path, WithMaxChunkLen(1<<20))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := w.AddEntry([]byte("pending")); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if err := w.DumpData(); err != nil {
		t.Fatalf("DumpData: %v", err)
	}

	recs := readAllChunks(t, path)
	if len(recs) != 1 {
		t.Fatalf("expected DumpData to flush a chunk immediately, got %d chunks", len(recs))
	}

	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
}

func TestAddEntriesFromFileLinesSkipsEmpty(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(inputPath, []byte("one\n\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	path := tempIndexPath(t)
	w, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := w.AddEntriesFromFileLines(inputPath); err != nil {
		t.Fatalf("AddEntriesFromFileLines: %v", err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	recs := readAllChunks(t, path)
	if len(recs) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(recs))
	}
	if !bytes.Equal(recs[0].Text, []byte("one\x00two\x00three\x00")) {
		t.Fatalf("unexpected chunk text: %q", recs[0].Text)
	}
}

func TestNewRejectsBadThreshold(t *testing.T) {
	if _, err := New(tempIndexPath(t), WithMaxChunkLen(0)); !errors.Is(err, subsearcherr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
