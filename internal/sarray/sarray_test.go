package sarray

import (
	"bytes"
	"math/rand"
	"sort"
	"testing"
)

// naiveSA builds a suffix array by brute-force comparison sort, used
// only as a reference oracle in tests.
func naiveSA(t []byte) []uint32 {
	n := len(t)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return bytes.Compare(t[idx[a]:], t[idx[b]:]) < 0
	})
	out := make([]uint32, n)
	for i, p := range idx {
		out[i] = uint32(p)
	}
	return out
}

func assertSA(t *testing.T, text []byte) {
	t.Helper()
	got := Build(text)
	want := naiveSA(text)
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("mismatch at %d: got %v want %v (text=%q)", i, got, want, text)
		}
	}
}

func TestBuildSmall(t *testing.T) {
	cases := []string{
		"\x00",
		"a\x00",
		"banana\x00",
		"aaaa\x00",
		"one\x00two\x00three\x00",
		"ten\x00tenten\x00",
	}
	for _, c := range cases {
		assertSA(t, []byte(c))
	}
}

// TestBuildHighByteValues exercises suffixes whose leading byte value is
// >= n, the case that overflows a naively byte-ranged initial rank.
func TestBuildHighByteValues(t *testing.T) {
	assertSA(t, []byte{0xFF, 0x00})
	assertSA(t, []byte{0xFF, 0xFE, 0xFF, 0x00})
	assertSA(t, []byte("诶比西"))
}

func TestBuildRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []byte("abc")

	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(200)
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = alphabet[rng.Intn(len(alphabet))]
		}
		buf = append(buf, 0x00)
		assertSA(t, buf)
	}
}

func TestBuildEmpty(t *testing.T) {
	got := Build(nil)
	if len(got) != 0 {
		t.Fatalf("expected empty SA, got %v", got)
	}
}

func TestSAIsSorted(t *testing.T) {
	text := []byte("mississippi\x00")
	sa := Build(text)
	for i := 0; i+1 < len(sa); i++ {
		a := text[sa[i]:]
		b := text[sa[i+1]:]
		if bytes.Compare(a, b) >= 0 {
			t.Fatalf("suffixes not strictly increasing at %d: %q >= %q", i, a, b)
		}
	}
}
