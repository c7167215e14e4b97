package reader

import (
	"bytes"

	"github.com/wavenator-labs/subsearch/internal/chunk"
)

const sentinel = 0x00

// prefixCompare compares the suffix of text starting at pos against
// query, truncated to len(query) bytes. It returns -1/0/1 the way
// bytes.Compare would on that truncated window — except when the
// suffix runs out of bytes before query does, which always reports -1:
// a string is lexicographically smaller than any longer string it is a
// genuine prefix of.
func prefixCompare(text []byte, pos int, query []byte) int {
	n := len(text)
	for i, qb := range query {
		p := pos + i
		if p >= n {
			return -1
		}
		tb := text[p]
		switch {
		case tb < qb:
			return -1
		case tb > qb:
			return 1
		}
	}
	return 0
}

// matchRange returns [lo, hi) over sa such that sa[lo:hi] are exactly
// the suffixes whose first len(query) bytes equal query, via the two
// binary searches spec's per-chunk algorithm calls for.
func matchRange(text []byte, sa []uint32, query []byte) (lo, hi int) {
	n := len(sa)

	lo = sortSearch(n, func(i int) bool {
		return prefixCompare(text, int(sa[i]), query) >= 0
	})
	hi = sortSearch(n, func(i int) bool {
		return prefixCompare(text, int(sa[i]), query) > 0
	})
	return lo, hi
}

// sortSearch is the half-open [0, n) lower-bound search spec mandates:
// the smallest index in [0, n] for which pred holds, given pred is
// false then true over the range (pred monotone non-decreasing).
func sortSearch(n int, pred func(i int) bool) int {
	lo, hi := 0, n
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if pred(mid) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// entryBounds locates the sentinel positions enclosing byte offset p:
// l is the nearest sentinel at a position <= p-1 (or -1 if none), r is
// the nearest sentinel at a position >= p. The entry is text[l+1:r].
func entryBounds(text []byte, p int) (l, r int) {
	l = bytes.LastIndexByte(text[:p], sentinel)
	r = p + bytes.IndexByte(text[p:], sentinel)
	return l, r
}

// chunkMatch holds the per-chunk search outcome before entry recovery:
// the half-open SA index range of the hit, or an empty range if the
// trigram prefilter already ruled the chunk out.
func chunkMatch(rec chunk.Record, query []byte) (lo, hi int) {
	if rec.Filter != nil && !rec.Filter.MayContain(query) {
		return 0, 0
	}
	return matchRange(rec.Text, rec.SA, query)
}

// chunkSearch returns the deduplicated entries in rec that contain
// query, recovered from every SA hit's enclosing sentinel boundaries.
func chunkSearch(rec chunk.Record, query []byte) []string {
	lo, hi := chunkMatch(rec, query)
	if hi <= lo {
		return nil
	}

	seen := make(map[int]struct{}, hi-lo)
	out := make([]string, 0, hi-lo)
	for i := lo; i < hi; i++ {
		p := int(rec.SA[i])
		l, r := entryBounds(rec.Text, p)
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, string(rec.Text[l+1:r]))
	}
	return out
}

// chunkCountEntries returns the number of distinct entries in rec that
// contain query at least once, without materializing their bytes.
func chunkCountEntries(rec chunk.Record, query []byte) int {
	lo, hi := chunkMatch(rec, query)
	if hi <= lo {
		return 0
	}

	seen := make(map[int]struct{}, hi-lo)
	for i := lo; i < hi; i++ {
		p := int(rec.SA[i])
		l, _ := entryBounds(rec.Text, p)
		seen[l] = struct{}{}
	}
	return len(seen)
}

// chunkCountOccurrences returns hi - lo directly: every SA index in the
// matched range corresponds to exactly one occurrence of query.
func chunkCountOccurrences(rec chunk.Record, query []byte) int {
	lo, hi := chunkMatch(rec, query)
	if hi <= lo {
		return 0
	}
	return hi - lo
}
