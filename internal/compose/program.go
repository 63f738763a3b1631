package compose

import (
	"path/filepath"

	"storyreel/internal/logging"
	"storyreel/internal/media"
)

// number of separator repetitions between consecutive clips
const separatorRepeat = 2

// Program orders the finished item clips into the deliverable.
type Program struct {
	tool    *media.Tool
	logger  *logging.Logger
	dataDir string
	logo    string // scaled logo image, empty disables the overlay
}

func NewProgram(tool *media.Tool, logger *logging.Logger, dataDir, logo string) *Program {
	return &Program{tool: tool, logger: logger, dataDir: dataDir, logo: logo}
}

// BuildProgramList interleaves clips with two separator repetitions;
// no separator follows the final clip. An empty separator path skips
// the interleaving entirely.
func BuildProgramList(clips []string, separator string) *media.ConcatList {
	list := &media.ConcatList{}
	for i, clip := range clips {
		list.File(clip)
		if separator == "" || i == len(clips)-1 {
			continue
		}
		for r := 0; r < separatorRepeat; r++ {
			list.File(separator)
		}
	}
	return list
}

// Concat stream-copies all clips (with separators) into outPath,
// compositing the logo when one is configured. Zero clips are a
// no-op: no output file is produced.
func (p *Program) Concat(clips []string, separator, outPath string) error {
	if len(clips) == 0 {
		p.logger.Warnw("No clips produced, skipping program output")
		return nil
	}

	listPath := filepath.Join(p.dataDir, "video.txt")
	if err := BuildProgramList(clips, separator).WriteTo(listPath); err != nil {
		return err
	}

	mergedPath := filepath.Join(p.dataDir, "all.mp4")
	p.logger.Infow("Concatenating program", "clips", len(clips), "output", mergedPath)
	if err := p.tool.ConcatCopy(listPath, mergedPath); err != nil {
		return err
	}

	if p.logo != "" {
		p.logger.Infow("Compositing logo", "logo", p.logo)
		return p.tool.Overlay(mergedPath, p.logo, outPath, 10, 10)
	}

	return adopt(mergedPath, outPath)
}
