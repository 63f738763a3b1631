package compose

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"storyreel/internal/logging"
	"storyreel/internal/media"
	"storyreel/internal/store"
	"storyreel/internal/subtitle"
)

// Assembler merges one item's audio, video track, subtitles, and
// title overlay into a single clip. Every step is skippable; skipped
// steps pass the previous artifact through instead of re-encoding.
type Assembler struct {
	tool   *media.Tool
	logger *logging.Logger
	font   string // title font file, empty disables the title overlay
}

func NewAssembler(tool *media.Tool, logger *logging.Logger, font string) *Assembler {
	return &Assembler{tool: tool, logger: logger, font: font}
}

// Assemble produces dir/video.mp4, the finished clip for one item.
// narrationAudio may be empty (no narration track was produced) and
// title may be empty (unnamed item, no overlay).
func (a *Assembler) Assemble(dir, title, narrationAudio, videoTrack string, track *subtitle.Track) (string, error) {
	clipPath := filepath.Join(dir, "video.mp4")
	if cached, ok := store.Cached(filepath.Join(dir, "video"), ".mp4"); ok {
		return cached, nil
	}

	// 1. mux narration onto the video track
	basePath := videoTrack
	if narrationAudio != "" {
		basePath = filepath.Join(dir, "temp.mp4")
		a.logger.Infow("Muxing narration", "video", videoTrack, "audio", narrationAudio)
		if err := a.tool.Mux(videoTrack, narrationAudio, basePath); err != nil {
			return "", err
		}
	}

	// 2. burn the title box
	titledPath := basePath
	if title != "" && a.font != "" {
		titledPath = filepath.Join(dir, "title.mp4")
		a.logger.Infow("Adding title", "title", title)
		if err := a.tool.DrawTitle(basePath, titledPath, a.font, title); err != nil {
			return "", err
		}
	}

	// 3+4. convert the cue file and burn it in
	if track.Len() > 0 {
		srtPath := filepath.Join(dir, "subtitle.srt")
		assPath := filepath.Join(dir, "subtitle.ass")
		a.logger.Infow("Burning subtitles", "cues", track.Len())
		if err := a.tool.ConvertSubtitle(srtPath, assPath); err != nil {
			return "", err
		}
		if err := a.tool.BurnSubtitle(titledPath, assPath, clipPath); err != nil {
			return "", err
		}
		return clipPath, nil
	}

	// no cues: adopt the previous artifact unchanged
	if err := adopt(titledPath, clipPath); err != nil {
		return "", err
	}
	return clipPath, nil
}

// adopt moves or copies an intermediate artifact into place without
// re-encoding it.
func adopt(src, dst string) error {
	if src == dst {
		return nil
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyFile(src, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return nil
}
