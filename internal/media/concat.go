package media

import (
	"fmt"
	"os"
	"strings"
)

// ConcatList builds an ffmpeg concat-demuxer list file. Entries are
// emitted in playback order; a duration line applies to the file line
// written before it.
type ConcatList struct {
	sb strings.Builder
}

func (l *ConcatList) File(path string) {
	fmt.Fprintf(&l.sb, "file '%s'\n", path)
}

func (l *ConcatList) Duration(seconds float64) {
	fmt.Fprintf(&l.sb, "duration %.2f\n", seconds)
}

// Hold emits the zero-duration sentinel: the preceding file is shown
// until the end of the stream.
func (l *ConcatList) Hold() {
	l.sb.WriteString("duration 0\n")
}

func (l *ConcatList) String() string {
	return l.sb.String()
}

func (l *ConcatList) WriteTo(path string) error {
	if err := os.WriteFile(path, []byte(l.sb.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list %s: %w", path, err)
	}
	return nil
}
