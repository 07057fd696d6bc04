package sandbox

import (
	"strings"
	"unicode/utf8"
)

// TruncatedMarker ends output that hit the capture limit.
const TruncatedMarker = "... (output truncated)"

// CaptureBuffer collects printed fragments in call order.
type CaptureBuffer struct {
	fragments []string
	size      int
	limit     int
	truncated bool
}

// NewCaptureBuffer returns a buffer holding at most limit bytes; 0 means no limit.
func NewCaptureBuffer(limit int) *CaptureBuffer {
	return &CaptureBuffer{limit: limit}
}

// Append adds a fragment. Once the limit is reached further fragments are dropped.
func (b *CaptureBuffer) Append(s string) {
	if b.truncated {
		return
	}
	if b.limit > 0 && b.size+len(s) > b.limit {
		room := b.limit - b.size
		for room > 0 && !utf8.RuneStart(s[room]) {
			room--
		}
		if room > 0 {
			b.fragments = append(b.fragments, s[:room])
			b.size += room
		}
		b.truncated = true
		return
	}
	b.fragments = append(b.fragments, s)
	b.size += len(s)
}

// Fragments returns a copy of the appended fragments.
func (b *CaptureBuffer) Fragments() []string {
	out := make([]string, len(b.fragments))
	copy(out, b.fragments)
	return out
}

// Len returns the number of captured bytes.
func (b *CaptureBuffer) Len() int { return b.size }

// Truncated reports whether output was dropped.
func (b *CaptureBuffer) Truncated() bool { return b.truncated }

func (b *CaptureBuffer) String() string {
	s := strings.Join(b.fragments, "")
	if b.truncated {
		s += "\n" + TruncatedMarker
	}
	return s
}
