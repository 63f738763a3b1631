package timeline

// Segment is one line-bounded unit of narration text.
type Segment struct {
	Index   int
	Text    string
	ByteLen int
}

// Split divides text on line breaks into ordered segments. A segment
// whose UTF-8 byte length reaches maxBytes is a hard stop: it and
// everything after it are discarded and truncated is reported, so the
// caller can keep the artifacts produced for earlier segments.
func Split(text string, maxBytes int) (segments []Segment, truncated bool) {
	start := 0
	index := 0

	for start <= len(text) {
		end := indexNewline(text, start)

		line := text[start:end]
		if len(line) >= maxBytes {
			return segments, true
		}

		segments = append(segments, Segment{
			Index:   index,
			Text:    line,
			ByteLen: len(line),
		})
		index++

		if end == len(text) {
			break
		}
		start = end + 1
	}

	return segments, false
}

func indexNewline(text string, start int) int {
	for i := start; i < len(text); i++ {
		if text[i] == '\n' {
			return i
		}
	}
	return len(text)
}
