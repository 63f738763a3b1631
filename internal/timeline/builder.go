// Package timeline turns an item's narration text into time-aligned
// audio, cue, and manifest artifacts. The cursor only ever advances,
// and only after the audio that justifies the advance exists on disk.
package timeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"storyreel/internal/logging"
	"storyreel/internal/store"
	"storyreel/internal/subtitle"
)

// synthesizes one text segment into an audio file
type Synthesizer interface {
	Synthesize(ctx context.Context, pathPrefix, text string) (string, error)
}

// measures the playback length of an audio file
type Prober interface {
	Duration(path string) (time.Duration, error)
}

// concatenates and transcodes the finished manifest
type AudioFinisher interface {
	ConcatCopy(listPath, outPath string) error
	TranscodeAAC(inPath, outPath string) error
}

// one entry of the audio-concatenation manifest, in playback order
type ManifestEntry struct {
	Path    string
	Silence bool
}

// Result holds one item's finished timeline.
type Result struct {
	Track     subtitle.Track
	Manifest  []ManifestEntry
	Total     time.Duration
	Segments  int
	AudioDone int
	Truncated bool
}

// Builder accumulates segment audio and silence gaps into a running
// cursor, emitting cues and manifest entries in lock-step.
type Builder struct {
	synth       Synthesizer
	prober      Prober
	logger      *logging.Logger
	silencePath string
	silenceUnit time.Duration
	maxBytes    int
}

func NewBuilder(synth Synthesizer, prober Prober, logger *logging.Logger, silencePath string, maxBytes int) *Builder {
	return &Builder{
		synth:       synth,
		prober:      prober,
		logger:      logger,
		silencePath: silencePath,
		silenceUnit: time.Second,
		maxBytes:    maxBytes,
	}
}

// Build segments text, synthesizes each non-empty segment into dir,
// and returns the assembled timeline. A failed synthesis skips that
// segment's cue and manifest entry; a probe failure is fatal to the
// item because the cursor cannot advance by an unknown length.
func (b *Builder) Build(ctx context.Context, dir, text string) (*Result, error) {
	segments, truncated := Split(text, b.maxBytes)
	if truncated {
		b.logger.Warnw("Segment over byte limit, stopping segmentation",
			"limit", b.maxBytes,
			"kept_segments", len(segments),
		)
	}

	res := &Result{
		Segments:  len(segments),
		Truncated: truncated,
	}

	var cursor time.Duration
	pendingSilence := false
	synthIndex := 0

	for _, seg := range segments {
		if seg.Text == "" {
			// an empty line becomes one silence unit before the next
			// narrated segment; silence never leads the manifest, so
			// nothing is pending until some audio exists
			if res.AudioDone > 0 {
				pendingSilence = true
			}
			continue
		}

		prefix := filepath.Join(dir, strconv.Itoa(synthIndex))
		synthIndex++

		audioPath, err := b.synth.Synthesize(ctx, prefix, seg.Text)
		if err != nil {
			b.logger.Warnw("Segment synthesis unavailable, skipping",
				"segment", seg.Index,
				"error", err,
			)
			continue
		}

		length, err := b.prober.Duration(audioPath)
		if err != nil {
			return nil, fmt.Errorf("measure %s: %w", audioPath, err)
		}

		if pendingSilence {
			cursor += b.silenceUnit
			res.Manifest = append(res.Manifest, ManifestEntry{Path: b.silencePath, Silence: true})
			pendingSilence = false
		}

		start := cursor
		cursor += length

		res.Track.Append(start, cursor, seg.Text)
		res.Manifest = append(res.Manifest, ManifestEntry{Path: audioPath})
		res.AudioDone++
	}

	res.Total = cursor
	return res, nil
}

// Finalize turns the manifest into the item's delivery audio file
// (<dir>/audio.m4a). Zero synthesized segments mean the item has no
// narration track and "" is returned. A manifest of exactly one audio
// file is transcoded directly; any other shape runs the concat pass,
// because playback must contain every manifest entry, silence
// included, for the cue offsets to line up.
func Finalize(fin AudioFinisher, dir string, res *Result) (string, error) {
	if res.AudioDone == 0 {
		return "", nil
	}

	finalPath := filepath.Join(dir, "audio.m4a")
	if cached, ok := store.Cached(filepath.Join(dir, "audio"), ".m4a"); ok {
		return cached, nil
	}

	if len(res.Manifest) == 1 && !res.Manifest[0].Silence {
		if err := fin.TranscodeAAC(res.Manifest[0].Path, finalPath); err != nil {
			return "", err
		}
		return finalPath, nil
	}

	listPath := filepath.Join(dir, "audio.txt")
	if err := WriteManifest(res.Manifest, listPath); err != nil {
		return "", err
	}

	concatPath := filepath.Join(dir, "audio.mp3")
	if err := fin.ConcatCopy(listPath, concatPath); err != nil {
		return "", err
	}

	if err := fin.TranscodeAAC(concatPath, finalPath); err != nil {
		return "", err
	}

	return finalPath, nil
}
