// Package media binds the pipeline to ffmpeg and ffprobe. Every
// invocation is built from typed argument maps, never from
// interpolated command strings.
package media

import (
	"fmt"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Tool runs ffmpeg/ffprobe operations against resolved binaries.
type Tool struct {
	ffmpegPath  string
	ffprobePath string
}

func NewTool() (*Tool, error) {
	ffmpegPath, ffprobePath, err := resolveBinaries()
	if err != nil {
		return nil, err
	}
	return &Tool{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}, nil
}

func (t *Tool) run(stream *ffmpeg.Stream) error {
	return stream.OverWriteOutput().SetFfmpegPath(t.ffmpegPath).Silent(true).Run()
}

// LoopImage renders a still image into a video clip of the given
// length.
func (t *Tool) LoopImage(imagePath, outPath string, seconds float64) error {
	err := t.run(ffmpeg.Input(imagePath, ffmpeg.KwArgs{"loop": 1}).
		Output(outPath, ffmpeg.KwArgs{
			"c:v":     "libx264",
			"t":       fmt.Sprintf("%.2f", seconds),
			"pix_fmt": "yuv420p",
		}))
	if err != nil {
		return fmt.Errorf("loop image %s: %w", imagePath, err)
	}
	return nil
}

// ConcatCopy joins the files of a concat list without re-encoding.
func (t *Tool) ConcatCopy(listPath, outPath string) error {
	err := t.run(ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": 0}).
		Output(outPath, ffmpeg.KwArgs{"c": "copy"}))
	if err != nil {
		return fmt.Errorf("concat %s: %w", listPath, err)
	}
	return nil
}

// ConcatSlides renders a slideshow concat list, rescaling to the
// output dimensions.
func (t *Tool) ConcatSlides(listPath, outPath string, width, height int) error {
	err := t.run(ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": 0}).
		Output(outPath, ffmpeg.KwArgs{
			"s":       fmt.Sprintf("%dx%d", width, height),
			"vsync":   "vfr",
			"pix_fmt": "yuv420p",
		}))
	if err != nil {
		return fmt.Errorf("concat slides %s: %w", listPath, err)
	}
	return nil
}

// Mux copies the video stream of one file and the audio stream of
// another into a single container.
func (t *Tool) Mux(videoPath, audioPath, outPath string) error {
	video := ffmpeg.Input(videoPath)
	audio := ffmpeg.Input(audioPath)

	err := t.run(ffmpeg.Output([]*ffmpeg.Stream{video, audio}, outPath, ffmpeg.KwArgs{
		"c":   "copy",
		"map": []string{"0:v:0", "1:a:0"},
	}))
	if err != nil {
		return fmt.Errorf("mux %s + %s: %w", videoPath, audioPath, err)
	}
	return nil
}

// Silence generates a mono mp3 of digital silence.
func (t *Tool) Silence(outPath string, seconds float64) error {
	err := t.run(ffmpeg.Input("anullsrc=r=22050:cl=mono", ffmpeg.KwArgs{"f": "lavfi"}).
		Output(outPath, ffmpeg.KwArgs{
			"t":      fmt.Sprintf("%.2f", seconds),
			"q:a":    9,
			"acodec": "libmp3lame",
		}))
	if err != nil {
		return fmt.Errorf("generate silence: %w", err)
	}
	return nil
}

// TranscodeAAC converts an audio file to the m4a delivery codec.
func (t *Tool) TranscodeAAC(inPath, outPath string) error {
	err := t.run(ffmpeg.Input(inPath).
		Output(outPath, ffmpeg.KwArgs{
			"vn":     "",
			"acodec": "aac",
			"strict": "-2",
			"bsf:a":  "aac_adtstoasc",
		}))
	if err != nil {
		return fmt.Errorf("transcode %s: %w", inPath, err)
	}
	return nil
}

// DrawTitle burns a centered title box onto the top of the video.
func (t *Tool) DrawTitle(inPath, outPath, fontPath, title string) error {
	drawtext := fmt.Sprintf(
		"fontfile=%s: text='%s': fontcolor=white: fontsize=48: box=1: "+
			"boxcolor=black@0.5: boxborderw=5: x=(w-text_w)/2: y=20",
		fontPath, escapeDrawText(title))

	err := t.run(ffmpeg.Input(inPath).
		Output(outPath, ffmpeg.KwArgs{
			"max_muxing_queue_size": 10240,
			"vf":                    "drawtext=" + drawtext,
			"codec:a":               "copy",
		}))
	if err != nil {
		return fmt.Errorf("draw title on %s: %w", inPath, err)
	}
	return nil
}

// ConvertSubtitle transcodes a cue file between subtitle formats,
// chosen by the output extension (srt -> ass for the burn-in step).
func (t *Tool) ConvertSubtitle(inPath, outPath string) error {
	err := t.run(ffmpeg.Input(inPath).Output(outPath))
	if err != nil {
		return fmt.Errorf("convert subtitle %s: %w", inPath, err)
	}
	return nil
}

// BurnSubtitle renders an ASS subtitle track into the video frames.
func (t *Tool) BurnSubtitle(videoPath, assPath, outPath string) error {
	err := t.run(ffmpeg.Input(videoPath).
		Output(outPath, ffmpeg.KwArgs{
			"max_muxing_queue_size": 2048,
			"vf":                    fmt.Sprintf("ass=%s", assPath),
		}))
	if err != nil {
		return fmt.Errorf("burn subtitle into %s: %w", videoPath, err)
	}
	return nil
}

// Overlay composites an image onto a video at a fixed position.
func (t *Tool) Overlay(videoPath, imagePath, outPath string, x, y int) error {
	base := ffmpeg.Input(videoPath)
	logo := ffmpeg.Input(imagePath)

	err := t.run(ffmpeg.Filter([]*ffmpeg.Stream{base, logo}, "overlay",
		ffmpeg.Args{}, ffmpeg.KwArgs{"x": x, "y": y}).
		Output(outPath, ffmpeg.KwArgs{"max_muxing_queue_size": 10240}))
	if err != nil {
		return fmt.Errorf("overlay %s onto %s: %w", imagePath, videoPath, err)
	}
	return nil
}

// OverlayCentered composites an image centered over a background.
func (t *Tool) OverlayCentered(backgroundPath, imagePath, outPath string) error {
	bg := ffmpeg.Input(backgroundPath)
	img := ffmpeg.Input(imagePath)

	err := t.run(ffmpeg.Filter([]*ffmpeg.Stream{bg, img}, "overlay",
		ffmpeg.Args{}, ffmpeg.KwArgs{
			"x": "(main_w-overlay_w)/2",
			"y": "(main_h-overlay_h)/2",
		}).
		Output(outPath))
	if err != nil {
		return fmt.Errorf("overlay %s onto %s: %w", imagePath, backgroundPath, err)
	}
	return nil
}

// Scale resizes an image to exactly width x height.
func (t *Tool) Scale(inPath, outPath string, width, height int) error {
	err := t.run(ffmpeg.Input(inPath).
		Output(outPath, ffmpeg.KwArgs{
			"vf": fmt.Sprintf("scale=%d:%d", width, height),
		}))
	if err != nil {
		return fmt.Errorf("scale %s: %w", inPath, err)
	}
	return nil
}

// ScaleFit shrinks an image to fit inside width x height, keeping
// aspect ratio and leaving the shorter side free.
func (t *Tool) ScaleFit(inPath, outPath string, width, height int) error {
	vf := fmt.Sprintf(
		"scale='if(gt(a,%[1]d/%[2]d),%[1]d,-1)':'if(gt(a,%[1]d/%[2]d),-1,%[2]d)'",
		width, height)

	err := t.run(ffmpeg.Input(inPath).
		Output(outPath, ffmpeg.KwArgs{"vf": vf}))
	if err != nil {
		return fmt.Errorf("scale fit %s: %w", inPath, err)
	}
	return nil
}

// ScalePad letterboxes an image into exactly width x height.
func (t *Tool) ScalePad(inPath, outPath string, width, height int) error {
	vf := fmt.Sprintf(
		"scale=%[1]d:%[2]d:force_original_aspect_ratio=decrease,"+
			"pad=%[1]d:%[2]d:(ow-iw)/2:(oh-ih)/2",
		width, height)

	err := t.run(ffmpeg.Input(inPath).
		Output(outPath, ffmpeg.KwArgs{"vf": vf}))
	if err != nil {
		return fmt.Errorf("scale pad %s: %w", inPath, err)
	}
	return nil
}

// FitVideo rescales a supplied video track to the output dimensions
// and trims it to the given length, dropping any embedded audio.
func (t *Tool) FitVideo(inPath, outPath string, width, height int, seconds float64) error {
	err := t.run(ffmpeg.Input(inPath).
		Output(outPath, ffmpeg.KwArgs{
			"an":      "",
			"t":       fmt.Sprintf("%.2f", seconds),
			"s":       fmt.Sprintf("%dx%d", width, height),
			"pix_fmt": "yuv420p",
		}))
	if err != nil {
		return fmt.Errorf("fit video %s: %w", inPath, err)
	}
	return nil
}

func escapeDrawText(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '\'', ':', '\\', '%':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
