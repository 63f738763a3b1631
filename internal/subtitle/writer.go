package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// writes the track to an SRT file
func WriteSRT(track *Track, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var sb strings.Builder
	for _, cue := range track.Cues {
		// index (1-based)
		sb.WriteString(fmt.Sprintf("%d\n", cue.Index))

		// timestamps: 00:00:00,000 --> 00:00:00,000
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			FormatSRTTime(cue.StartTime),
			FormatSRTTime(cue.EndTime)))

		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}

	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

// FormatSRTTime renders a duration as HH:MM:SS,mmm.
func FormatSRTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
