package subtitle

import (
	"time"
)

// one timed cue on an item's narration timeline
type Cue struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// ordered cue list for one item
type Track struct {
	Cues []Cue
}

// appends a cue with the next 1-based index
func (t *Track) Append(start, end time.Duration, text string) {
	t.Cues = append(t.Cues, Cue{
		Index:     len(t.Cues) + 1,
		StartTime: start,
		EndTime:   end,
		Text:      text,
	})
}

func (t *Track) Len() int {
	return len(t.Cues)
}
