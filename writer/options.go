package writer

import "github.com/sirupsen/logrus"

// DefaultMaxChunkLen is the threshold used when New is not given
// WithMaxChunkLen: 512 MiB, matching the index format's documented
// default and comfortably under the 2^32 offset ceiling suffix-array
// positions must fit in.
const DefaultMaxChunkLen = 512 << 20

// Option configures a Writer at construction time, following the same
// functional-option shape the teacher uses for its segment manager
// (WithMaxSegmentSize).
type Option func(*Writer)

// WithMaxChunkLen overrides DefaultMaxChunkLen. A chunk buffer is flushed
// once its size after an append exceeds this threshold. Entries are never
// split across chunks: the entry that pushes the buffer past the threshold
// is flushed in the same chunk as the entries already buffered.
func WithMaxChunkLen(n int) Option {
	return func(w *Writer) { w.maxChunkLen = n }
}

// WithLogger sets the logger used for flush/corruption diagnostics.
// Defaults to logrus.StandardLogger().
func WithLogger(l *logrus.Logger) Option {
	return func(w *Writer) { w.log = l }
}

// WithBloomFilter controls whether a trigram Bloom prefilter is built and
// persisted alongside each chunk's suffix array. Defaults to true.
func WithBloomFilter(enabled bool) Option {
	return func(w *Writer) { w.bloomEnabled = enabled }
}
