package media

import (
	"fmt"
	"os"
	"os/exec"
)

// resolves the ffmpeg and ffprobe executables: explicit environment
// override first, then PATH lookup
func resolveBinaries() (ffmpegPath, ffprobePath string, err error) {
	ffmpegPath = os.Getenv("STORYREEL_FFMPEG_PATH")
	ffprobePath = os.Getenv("STORYREEL_FFPROBE_PATH")

	if ffmpegPath == "" {
		found, lookErr := exec.LookPath("ffmpeg")
		if lookErr != nil {
			return "", "", fmt.Errorf("ffmpeg not found: %w", lookErr)
		}
		ffmpegPath = found
	}

	if ffprobePath == "" {
		found, lookErr := exec.LookPath("ffprobe")
		if lookErr != nil {
			return "", "", fmt.Errorf("ffprobe not found: %w", lookErr)
		}
		ffprobePath = found
	}

	return ffmpegPath, ffprobePath, nil
}
