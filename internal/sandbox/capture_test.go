package sandbox

import "testing"

func TestCaptureBufferKeepsOrder(t *testing.T) {
	b := NewCaptureBuffer(0)
	b.Append("one\n")
	b.Append("two\n")
	b.Append("three\n")

	if got := b.String(); got != "one\ntwo\nthree\n" {
		t.Errorf("String() = %q", got)
	}
	if b.Len() != 14 {
		t.Errorf("Len() = %d, want 14", b.Len())
	}
	if b.Truncated() {
		t.Error("unexpected truncation")
	}
}

func TestCaptureBufferTruncatesOnRuneBoundary(t *testing.T) {
	b := NewCaptureBuffer(4)
	b.Append("ab")
	b.Append("cé\n") // 'é' straddles the limit
	b.Append("more")

	frags := b.Fragments()
	if len(frags) != 2 || frags[1] != "c" {
		t.Fatalf("Fragments() = %q", frags)
	}
	if want := "abc\n" + TruncatedMarker; b.String() != want {
		t.Errorf("String() = %q, want %q", b.String(), want)
	}
}
