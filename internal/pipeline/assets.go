package pipeline

import (
	"path/filepath"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/media"
	"storyreel/internal/store"
)

// assets shared by every item of one run
type sharedAssets struct {
	Font       string // title font file
	Background string // background scaled to output dimensions
	Logo       string // logo scaled to its configured dimensions
	SilenceMP3 string // one second of silence, concat codec
	SilenceM4A string // one second of silence, delivery codec
	Separator  string // inter-clip separator, empty when unavailable
}

// prepareAssets resolves fonts/background/logo (content description
// first, properties fallback), scales them into the run's data dir,
// and builds the silence and separator artifacts.
func prepareAssets(tool *media.Tool, logger *logging.Logger, st *store.Store, doc *config.ContentDocument, props config.Properties) (*sharedAssets, error) {
	dataDir := st.DataDir()
	assets := &sharedAssets{}

	assets.Font = doc.Font
	if assets.Font == "" {
		assets.Font = props.Get(config.KeyFontPath)
	}

	background := doc.Background
	if background == "" {
		background = props.Get(config.KeyBackgroundPath)
	}
	if background != "" {
		scaled := filepath.Join(dataDir, "background.jpg")
		if _, ok := store.Cached(filepath.Join(dataDir, "background"), ".jpg"); !ok {
			logger.Infow("Scaling background", "source", background)
			if err := tool.Scale(background, scaled, doc.Width, doc.Height); err != nil {
				return nil, err
			}
		}
		assets.Background = scaled
	}

	logo := doc.Logo
	if logo == "" {
		logo = props.Get(config.KeyLogoPath)
	}
	if logo != "" {
		if doc.LogoWidth <= 0 || doc.LogoHeight <= 0 {
			logger.Warnw("Logo configured without valid dimensions, skipping",
				"width", doc.LogoWidth,
				"height", doc.LogoHeight,
			)
		} else {
			scaled := filepath.Join(dataDir, "logo.jpg")
			if _, ok := store.Cached(filepath.Join(dataDir, "logo"), ".jpg"); !ok {
				logger.Infow("Scaling logo", "source", logo)
				if err := tool.Scale(logo, scaled, doc.LogoWidth, doc.LogoHeight); err != nil {
					return nil, err
				}
			}
			assets.Logo = scaled
		}
	}

	assets.SilenceMP3 = filepath.Join(dataDir, "silence.mp3")
	if _, ok := store.Cached(filepath.Join(dataDir, "silence"), ".mp3"); !ok {
		logger.Infow("Generating silence unit")
		if err := tool.Silence(assets.SilenceMP3, 1.0); err != nil {
			return nil, err
		}
	}

	assets.SilenceM4A = filepath.Join(dataDir, "silence.m4a")
	if _, ok := store.Cached(filepath.Join(dataDir, "silence"), ".m4a"); !ok {
		if err := tool.TranscodeAAC(assets.SilenceMP3, assets.SilenceM4A); err != nil {
			return nil, err
		}
	}

	if assets.Background != "" {
		separator, err := buildSeparator(tool, logger, dataDir, assets)
		if err != nil {
			return nil, err
		}
		assets.Separator = separator
	} else {
		logger.Warnw("No background configured, clips will not be separated")
	}

	return assets, nil
}

// buildSeparator makes the short filler clip placed between item
// clips: one second of looping background muxed with silence.
func buildSeparator(tool *media.Tool, logger *logging.Logger, dataDir string, assets *sharedAssets) (string, error) {
	separator := filepath.Join(dataDir, "separator.mp4")
	if cached, ok := store.Cached(filepath.Join(dataDir, "separator"), ".mp4"); ok {
		return cached, nil
	}

	loop := filepath.Join(dataDir, "image.mp4")
	logger.Infow("Building separator clip")
	if err := tool.LoopImage(assets.Background, loop, 1.0); err != nil {
		return "", err
	}
	if err := tool.Mux(loop, assets.SilenceM4A, separator); err != nil {
		return "", err
	}

	return separator, nil
}
