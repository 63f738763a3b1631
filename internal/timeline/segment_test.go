package timeline

import (
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxBytes  int
		want      []string
		truncated bool
	}{
		{
			name:     "two lines",
			text:     "Hello\nWorld",
			maxBytes: 100,
			want:     []string{"Hello", "World"},
		},
		{
			name:     "empty lines preserved",
			text:     "A\n\n\nB",
			maxBytes: 100,
			want:     []string{"A", "", "", "B"},
		},
		{
			name:     "trailing newline yields empty segment",
			text:     "A\n",
			maxBytes: 100,
			want:     []string{"A", ""},
		},
		{
			name:     "empty text",
			text:     "",
			maxBytes: 100,
			want:     []string{""},
		},
		{
			name:      "oversize segment stops segmentation",
			text:      "ok\nway too long\nnever seen",
			maxBytes:  5,
			want:      []string{"ok"},
			truncated: true,
		},
		{
			name:      "oversize first segment keeps nothing",
			text:      "way too long\nok",
			maxBytes:  5,
			truncated: true,
		},
		{
			name:      "exactly at limit is oversize",
			text:      "abcde",
			maxBytes:  5,
			truncated: true,
		},
		{
			name:     "one under limit passes",
			text:     "abcd",
			maxBytes: 5,
			want:     []string{"abcd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, truncated := Split(tt.text, tt.maxBytes)

			if truncated != tt.truncated {
				t.Errorf("truncated = %v, want %v", truncated, tt.truncated)
			}
			if len(segments) != len(tt.want) {
				t.Fatalf("got %d segments, want %d", len(segments), len(tt.want))
			}
			for i, seg := range segments {
				if seg.Text != tt.want[i] {
					t.Errorf("segment %d = %q, want %q", i, seg.Text, tt.want[i])
				}
				if seg.Index != i {
					t.Errorf("segment %d has index %d", i, seg.Index)
				}
				if seg.ByteLen != len(tt.want[i]) {
					t.Errorf("segment %d byte length = %d, want %d", i, seg.ByteLen, len(tt.want[i]))
				}
			}
		})
	}
}

func TestSplitMultibyte(t *testing.T) {
	// byte length, not rune count, decides the hard stop
	text := "héllo"
	if len(text) != 6 {
		t.Fatalf("expected 6 bytes, got %d", len(text))
	}

	if _, truncated := Split(text, 6); !truncated {
		t.Errorf("6-byte segment with limit 6 should truncate")
	}
	if _, truncated := Split(text, 7); truncated {
		t.Errorf("6-byte segment with limit 7 should pass")
	}
}
