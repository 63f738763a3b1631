package compose

import (
	"fmt"
	"path/filepath"
	"time"

	"storyreel/internal/logging"
	"storyreel/internal/media"
	"storyreel/internal/store"
)

// position of a slide within the show; edge slides get asymmetric
// duration handling so players do not drop the opening or closing
// frame
type SlidePosition int

const (
	SlideOnly SlidePosition = iota
	SlideFirst
	SlideMiddle
	SlideLast
)

// clips with no narration are held for this long
const fallbackClipSeconds = 1.0

// Composer produces one item's video track, without audio.
type Composer struct {
	tool       *media.Tool
	logger     *logging.Logger
	width      int
	height     int
	background string // scaled fallback background, empty when unset
	videoPath  string // pre-supplied video track, empty for slideshows
}

func NewComposer(tool *media.Tool, logger *logging.Logger, width, height int, background, videoPath string) *Composer {
	return &Composer{
		tool:       tool,
		logger:     logger,
		width:      width,
		height:     height,
		background: background,
		videoPath:  videoPath,
	}
}

// BuildPlan lays the eligible slides out on a concat list. Every
// slide owns total/slotCount seconds: the first is repeated behind a
// zero-duration marker, and the last holds to the end of the stream.
func BuildPlan(eligible []string, slotCount int, total time.Duration) *media.ConcatList {
	list := &media.ConcatList{}
	if len(eligible) == 0 || slotCount == 0 {
		return list
	}

	share := total.Seconds() / float64(slotCount)

	for i, path := range eligible {
		switch position(i, len(eligible)) {
		case SlideOnly, SlideFirst:
			list.File(path)
			list.Hold()
			list.File(path)
		case SlideMiddle, SlideLast:
			list.Duration(share)
			list.File(path)
		}
	}

	if len(eligible) > 1 {
		last := eligible[len(eligible)-1]
		list.Hold()
		list.File(last)
	}

	return list
}

func position(i, count int) SlidePosition {
	switch {
	case count == 1:
		return SlideOnly
	case i == 0:
		return SlideFirst
	case i == count-1:
		return SlideLast
	default:
		return SlideMiddle
	}
}

// VideoTrack renders dir/image.mp4 for the item: the supplied video
// when one is configured, a slideshow when images are eligible, or a
// looped background clip otherwise.
func (c *Composer) VideoTrack(dir string, slots []ImageSlot, total time.Duration) (string, error) {
	outPath := filepath.Join(dir, "image.mp4")
	if cached, ok := store.Cached(filepath.Join(dir, "image"), ".mp4"); ok {
		return cached, nil
	}

	seconds := total.Seconds()
	if seconds <= 0 {
		seconds = fallbackClipSeconds
	}

	if c.videoPath != "" {
		if err := c.tool.FitVideo(c.videoPath, outPath, c.width, c.height, seconds); err != nil {
			return "", err
		}
		return outPath, nil
	}

	var eligible []string
	for _, slot := range slots {
		if slot.LocalPath != "" {
			eligible = append(eligible, slot.LocalPath)
		}
	}

	if len(eligible) == 0 {
		if c.background == "" {
			return "", fmt.Errorf("no eligible images and no background configured")
		}
		if err := c.tool.LoopImage(c.background, outPath, seconds); err != nil {
			return "", err
		}
		return outPath, nil
	}

	listPath := filepath.Join(dir, "image.txt")
	plan := BuildPlan(eligible, len(slots), total)
	if err := plan.WriteTo(listPath); err != nil {
		return "", err
	}

	if err := c.tool.ConcatSlides(listPath, outPath, c.width, c.height); err != nil {
		return "", err
	}

	return outPath, nil
}
