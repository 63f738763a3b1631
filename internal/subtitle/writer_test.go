package subtitle

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFormatSRTTime(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"zero", 0, "00:00:00,000"},
		{"milliseconds", 250 * time.Millisecond, "00:00:00,250"},
		{"seconds", 7*time.Second + 42*time.Millisecond, "00:00:07,042"},
		{"minutes", 3*time.Minute + 15*time.Second, "00:03:15,000"},
		{"hours", 2*time.Hour + 4*time.Minute + 9*time.Second + 999*time.Millisecond, "02:04:09,999"},
		{"minute rollover", 61 * time.Second, "00:01:01,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSRTTime(tt.duration); got != tt.want {
				t.Errorf("FormatSRTTime(%v) = %q, want %q", tt.duration, got, tt.want)
			}
		})
	}
}

func TestWriteSRT(t *testing.T) {
	track := &Track{}
	track.Append(0, 2*time.Second, "Hello")
	track.Append(3*time.Second, 4500*time.Millisecond, "World")

	path := filepath.Join(t.TempDir(), "out", "subtitle.srt")
	if err := WriteSRT(track, path); err != nil {
		t.Fatalf("WriteSRT failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	want := "1\n" +
		"00:00:00,000 --> 00:00:02,000\n" +
		"Hello\n\n" +
		"2\n" +
		"00:00:03,000 --> 00:00:04,500\n" +
		"World\n\n"
	if string(data) != want {
		t.Errorf("unexpected SRT content:\n%s\nwant:\n%s", data, want)
	}
}

func TestWriteSRTEmptyTrack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subtitle.srt")
	if err := WriteSRT(&Track{}, path); err != nil {
		t.Fatalf("WriteSRT failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty file, got %q", data)
	}
}

func TestTrackAppendIndexes(t *testing.T) {
	track := &Track{}
	track.Append(0, time.Second, "a")
	track.Append(time.Second, 2*time.Second, "b")
	track.Append(2*time.Second, 3*time.Second, "c")

	for i, cue := range track.Cues {
		if cue.Index != i+1 {
			t.Errorf("cue %d has index %d", i, cue.Index)
		}
	}
	if track.Len() != 3 {
		t.Errorf("Len() = %d, want 3", track.Len())
	}
}
