// Package trigram provides a per-chunk q-gram Bloom prefilter: every
// overlapping 3-byte window of a chunk's text is added to a Bloom filter
// at flush time. At query time, any query of length >= 3 whose own
// trigrams are not all present in the filter cannot occur in the chunk,
// letting the reader skip the chunk's suffix array entirely. This is the
// same shape of optimization pg_trgm and trigram code search indexes use,
// adapted to a Bloom filter instead of a posting list because the index
// format here is append-only and never needs to enumerate which chunks
// contain a given trigram — only to answer "could this chunk contain it".
package trigram

import (
	"bytes"
	"fmt"

	"github.com/bits-and-blooms/bloom/v3"
)

const size = 3

// Filter wraps a bloom.BloomFilter sized for the trigrams of one chunk.
type Filter struct {
	bf *bloom.BloomFilter
}

// Build returns a Filter populated with every overlapping 3-byte window
// of text, or nil if text is shorter than 3 bytes (nothing to filter on).
func Build(text []byte) *Filter {
	if len(text) < size {
		return nil
	}

	n := len(text) - size + 1
	bf := bloom.NewWithEstimates(uint(n), 0.01)
	for i := 0; i < n; i++ {
		bf.Add(text[i : i+size])
	}
	return &Filter{bf: bf}
}

// MayContain reports whether query could occur in the chunk the filter
// was built from. Queries shorter than 3 bytes always return true: they
// have no trigram to test, so the filter cannot rule them out.
func (f *Filter) MayContain(query []byte) bool {
	if f == nil || len(query) < size {
		return true
	}
	for i := 0; i+size <= len(query); i++ {
		if !f.bf.Test(query[i : i+size]) {
			return false
		}
	}
	return true
}

// MarshalBinary serializes the filter using bloom.BloomFilter's own
// WriteTo format (k, m, and the packed bit array), so UnmarshalBinary
// can hand the bytes straight to ReadFrom.
func (f *Filter) MarshalBinary() ([]byte, error) {
	if f == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	if _, err := f.bf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("trigram: marshal: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary parses a block produced by MarshalBinary.
func UnmarshalBinary(b []byte) (*Filter, error) {
	bf := &bloom.BloomFilter{}
	if _, err := bf.ReadFrom(bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("trigram: unmarshal: %w", err)
	}
	return &Filter{bf: bf}, nil
}
