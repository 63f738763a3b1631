// Package pipeline drives one render run: configuration, shared
// assets, the per-item timeline/composition/assembly sequence, and
// the final program concatenation. Items run strictly one at a time,
// in source order; a failed item is reported and the remaining items
// still run.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"storyreel/internal/compose"
	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/media"
	"storyreel/internal/netfetch"
	"storyreel/internal/speech"
	"storyreel/internal/store"
	"storyreel/internal/subtitle"
	"storyreel/internal/timeline"
)

// attempts per network fetch before an asset is declared unavailable
const defaultRetries = 3

type Options struct {
	ConfigPath  string
	SpeechPath  string
	ContentPath string

	VideoPath  string // pre-supplied video track, replaces slideshows
	OutputPath string // final program path, defaults into the data dir

	Provider speech.Provider
	APIKey   string
	Offline  bool

	Logger *logging.Logger
}

// outcome of one content item
type ItemReport struct {
	Name      string
	Dir       string
	Clip      string
	Segments  int
	Cues      int
	Narration time.Duration
	Err       error
}

// outcome of the whole run
type RunReport struct {
	Items  []ItemReport
	Output string
}

func (r *RunReport) Failed() int {
	failed := 0
	for _, item := range r.Items {
		if item.Err != nil {
			failed++
		}
	}
	return failed
}

// Run executes the full render pipeline.
func Run(ctx context.Context, opts Options) (*RunReport, error) {
	logger := opts.Logger
	logger.Infow("Starting run", "now", time.Now().Format("2006-01-02 15:04:05"))

	props, err := config.LoadProperties(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	outputRoot := props.Get(config.KeyOutputPath)
	if outputRoot == "" {
		return nil, fmt.Errorf("property %q is not set in %s", config.KeyOutputPath, opts.ConfigPath)
	}

	st, err := store.Open(outputRoot, time.Now())
	if err != nil {
		return nil, err
	}

	// one writer per tree: the cache contract has no answer for
	// interleaved producers
	lock := flock.New(st.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another run is already writing to %s", outputRoot)
	}
	defer func() { _ = lock.Unlock() }()

	speechCfg, err := config.LoadSpeech(opts.SpeechPath)
	if err != nil {
		return nil, err
	}

	doc, err := config.LoadContent(opts.ContentPath)
	if err != nil {
		return nil, err
	}

	tool, err := media.NewTool()
	if err != nil {
		return nil, err
	}

	fetch := netfetch.NewClient(!opts.Offline, defaultRetries)

	provider := opts.Provider
	if provider == "" {
		provider = speech.ProviderRemote
	}
	synth, err := speech.Factory(ctx, provider, speech.Options{
		Config:  speechCfg,
		Fetch:   fetch,
		APIKey:  opts.APIKey,
		Offline: opts.Offline,
	})
	if err != nil {
		return nil, err
	}
	if err := synth.SetLanguage(doc.Language); err != nil {
		return nil, err
	}

	assets, err := prepareAssets(tool, logger, st, doc, props)
	if err != nil {
		return nil, err
	}

	fetcher := compose.NewImageFetcher(fetch, tool, logger, doc.Width, doc.Height, assets.Background)
	composer := compose.NewComposer(tool, logger, doc.Width, doc.Height, assets.Background, opts.VideoPath)
	assembler := compose.NewAssembler(tool, logger, assets.Font)

	report := &RunReport{}
	var clips []string

	for i, item := range doc.Contents {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		synth.NextVoice()

		itemReport := renderItem(ctx, itemDeps{
			doc:       doc,
			item:      item,
			store:     st,
			synth:     synth,
			tool:      tool,
			fetcher:   fetcher,
			composer:  composer,
			assembler: assembler,
			assets:    assets,
			maxBytes:  speechCfg.MaxLength,
			logger:    logger,
		})
		if itemReport.Err != nil {
			logger.Errorw("Item failed",
				"index", i,
				"name", itemReport.Name,
				"error", itemReport.Err,
			)
		} else {
			clips = append(clips, itemReport.Clip)
		}

		report.Items = append(report.Items, itemReport)
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(st.DataDir(), "final.mp4")
	}

	program := compose.NewProgram(tool, logger, st.DataDir(), assets.Logo)
	if err := program.Concat(clips, assets.Separator, outputPath); err != nil {
		return report, err
	}

	if len(clips) > 0 {
		report.Output = outputPath
		logger.Infow("Run finished", "output", outputPath, "items", len(clips))
	}

	return report, nil
}

type itemDeps struct {
	doc       *config.ContentDocument
	item      config.ContentItem
	store     *store.Store
	synth     speech.Synthesizer
	tool      *media.Tool
	fetcher   *compose.ImageFetcher
	composer  *compose.Composer
	assembler *compose.Assembler
	assets    *sharedAssets
	maxBytes  int
	logger    *logging.Logger
}

// renderItem runs segmentation, synthesis, the timeline, the video
// track, and assembly for one content item. All failures are local to
// the item.
func renderItem(ctx context.Context, deps itemDeps) ItemReport {
	report := ItemReport{}

	name, err := deps.doc.ItemName(deps.item)
	if err != nil {
		report.Err = err
		return report
	}
	text, err := deps.doc.ItemText(deps.item)
	if err != nil {
		report.Err = err
		return report
	}
	report.Name = name

	dir, err := deps.store.ItemDir(name, text)
	if err != nil {
		report.Err = err
		return report
	}
	report.Dir = dir

	deps.logger.Infow("Rendering item", "name", name, "dir", dir)

	builder := timeline.NewBuilder(deps.synth, deps.tool, deps.logger, deps.assets.SilenceMP3, deps.maxBytes)
	result, err := builder.Build(ctx, dir, text)
	if err != nil {
		report.Err = err
		return report
	}
	report.Segments = result.Segments
	report.Cues = result.Track.Len()
	report.Narration = result.Total

	if err := subtitle.WriteSRT(&result.Track, filepath.Join(dir, "subtitle.srt")); err != nil {
		report.Err = err
		return report
	}

	narration, err := timeline.Finalize(deps.tool, dir, result)
	if err != nil {
		report.Err = err
		return report
	}

	slots, err := deps.fetcher.Fetch(ctx, dir, deps.item.ImageURLs)
	if err != nil {
		report.Err = err
		return report
	}

	videoTrack, err := deps.composer.VideoTrack(dir, slots, result.Total)
	if err != nil {
		report.Err = err
		return report
	}

	clip, err := deps.assembler.Assemble(dir, name, narration, videoTrack, &result.Track)
	if err != nil {
		report.Err = err
		return report
	}

	report.Clip = clip
	return report
}
