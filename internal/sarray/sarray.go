// Package sarray builds suffix arrays over byte buffers.
//
// Build uses prefix doubling: it first ranks every suffix by its single
// leading byte, then at each round refines a rank per suffix from the
// previous round's (rank[i], rank[i+k]) pair, resorting the whole array by
// that pair with two passes of counting sort rather than a comparison sort.
// Each round is O(n); the ranks stop refining once every suffix has a
// unique rank or the prefix length reaches n, which takes at most
// ceil(log2 n) rounds, giving O(n log n) overall — well inside the budget a
// few hundred megabytes of chunk text needs.
package sarray

// Build returns SA such that T[SA[i]:] < T[SA[i+1]:] lexicographically for
// every valid i. T must have length < 2^32; callers enforce the chunk size
// limit, Build itself does not re-check it.
func Build(t []byte) []uint32 {
	n := len(t)
	if n == 0 {
		return []uint32{}
	}

	sa := make([]int32, n)
	rank := make([]int32, n)
	for i := 0; i < n; i++ {
		sa[i] = int32(i)
	}

	tmp := make([]int32, n)

	// The doubling loop's counting sort buckets on rank+1 in [0, n+1), so
	// rank must start dense in [0, n) rather than as raw byte values —
	// otherwise a byte at or above n buckets past the end of counts.
	// Derive the initial dense rank with one counting sort over the byte
	// alphabet (fixed 256 buckets), then compress runs of equal bytes to
	// consecutive ranks.
	byteOrder := countingSortByByte(sa, tmp, t)
	rank[byteOrder[0]] = 0
	for i := 1; i < n; i++ {
		prev, cur := byteOrder[i-1], byteOrder[i]
		if t[prev] != t[cur] {
			rank[cur] = rank[prev] + 1
		} else {
			rank[cur] = rank[prev]
		}
	}
	sa = byteOrder

	for k := 1; ; k *= 2 {
		// Sort by the second half of the key (rank[i+k], or "before
		// everything" when i+k is out of range) first, then stably by
		// the first half. Two stable counting-sort passes over a
		// composite key give the same order as one pass over the pair.
		secondKey := func(i int32) int32 {
			j := int(i) + k
			if j >= n {
				return -1
			}
			return rank[j]
		}

		sa = countingSortBy(sa, tmp, n, func(i int32) int32 { return secondKey(i) + 1 })
		sa = countingSortBy(sa, tmp, n, func(i int32) int32 { return rank[i] + 1 })

		newRank := make([]int32, n)
		newRank[sa[0]] = 0
		distinct := 1
		for i := 1; i < n; i++ {
			prev, cur := sa[i-1], sa[i]
			if rank[prev] != rank[cur] || secondKey(prev) != secondKey(cur) {
				distinct++
				newRank[cur] = newRank[prev] + 1
			} else {
				newRank[cur] = newRank[prev]
			}
		}
		rank = newRank

		if distinct == n || k >= n {
			break
		}
	}

	out := make([]uint32, n)
	for i, p := range sa {
		out[i] = uint32(p)
	}
	return out
}

// countingSortBy stably sorts src by key(elem) into a fresh slice, using
// buf as scratch space. key must return a value in [0, n] — that range
// covers a rank (0..n-1) after callers shift "out of range" (-1) to 0 and
// every real rank up by one.
func countingSortBy(src []int32, buf []int32, n int, key func(int32) int32) []int32 {
	counts := make([]int32, n+2)
	for _, v := range src {
		counts[key(v)+1]++
	}
	for i := 1; i < len(counts); i++ {
		counts[i] += counts[i-1]
	}
	for _, v := range src {
		k := key(v)
		buf[counts[k]] = v
		counts[k]++
	}
	copy(src, buf[:n])
	return src
}

// countingSortByByte stably sorts the suffix-start indices in src by their
// leading byte t[src[i]], over the fixed 256-value byte alphabet. This is
// the seed step Build uses to get an initial dense rank before prefix
// doubling begins, since the doubling rounds' own counting sort assumes
// ranks already lie in [0, n) and a raw byte value can exceed that.
func countingSortByByte(src []int32, buf []int32, t []byte) []int32 {
	const alphabet = 256
	var counts [alphabet + 1]int32
	for _, v := range src {
		counts[int(t[v])+1]++
	}
	for i := 1; i < len(counts); i++ {
		counts[i] += counts[i-1]
	}
	for _, v := range src {
		b := t[v]
		buf[counts[b]] = v
		counts[b]++
	}
	copy(src, buf)
	return src
}
