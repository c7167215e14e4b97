package trigram

import "testing"

func TestBuildNilForShortText(t *testing.T) {
	if f := Build([]byte("ab")); f != nil {
		t.Fatalf("expected nil filter for text shorter than 3 bytes, got %v", f)
	}
}

func TestMayContainShortQueryAlwaysTrue(t *testing.T) {
	f := Build([]byte("hello world\x00"))
	if !f.MayContain([]byte("h")) {
		t.Fatal("queries shorter than 3 bytes must never be ruled out")
	}
	if !f.MayContain(nil) {
		t.Fatal("empty query must never be ruled out")
	}
}

func TestMayContainPositive(t *testing.T) {
	f := Build([]byte("the quick brown fox\x00"))
	for _, q := range []string{"the", "quick", "brown fox", "fox"} {
		if !f.MayContain([]byte(q)) {
			t.Fatalf("expected MayContain(%q) to be true", q)
		}
	}
}

func TestMayContainNegative(t *testing.T) {
	f := Build([]byte("abcdefg\x00"))
	if f.MayContain([]byte("xyz")) {
		t.Fatal("expected a trigram absent from the text to rule the chunk out")
	}
}

func TestRoundTrip(t *testing.T) {
	f := Build([]byte("mississippi\x00"))
	b, err := f.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	f2, err := UnmarshalBinary(b)
	if err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if !f2.MayContain([]byte("iss")) {
		t.Fatal("round-tripped filter lost a real trigram")
	}
	if f2.MayContain([]byte("zzz")) {
		t.Fatal("round-tripped filter gained a false trigram")
	}
}

func TestNilFilterMarshalsEmpty(t *testing.T) {
	var f *Filter
	b, err := f.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(b) != 0 {
		t.Fatalf("expected empty block for a nil filter, got %d bytes", len(b))
	}
}
