// Package compose builds the visual half of an item: fetched image
// slots, the slideshow (or supplied video) track, and the merged clip,
// then concatenates all clips into the final program.
package compose

import (
	"context"
	"fmt"
	"path/filepath"

	"storyreel/internal/logging"
	"storyreel/internal/media"
	"storyreel/internal/netfetch"
	"storyreel/internal/store"
)

// one image position of an item; a failed fetch leaves LocalPath
// empty but the slot keeps its place for duration proportioning
type ImageSlot struct {
	Index     int
	LocalPath string
}

// ImageFetcher resolves image URLs into normalized per-item JPEG
// artifacts of the output dimensions.
type ImageFetcher struct {
	fetch      *netfetch.Client
	tool       *media.Tool
	logger     *logging.Logger
	width      int
	height     int
	background string // scaled background image, empty when unset
}

func NewImageFetcher(fetch *netfetch.Client, tool *media.Tool, logger *logging.Logger, width, height int, background string) *ImageFetcher {
	return &ImageFetcher{
		fetch:      fetch,
		tool:       tool,
		logger:     logger,
		width:      width,
		height:     height,
		background: background,
	}
}

// Fetch downloads and normalizes every URL into dir. Slots are 1:1
// with the input URLs; unavailable or unsupported assets leave their
// slot empty. A failed normalization pass is fatal to the item.
func (f *ImageFetcher) Fetch(ctx context.Context, dir string, urls []string) ([]ImageSlot, error) {
	slots := make([]ImageSlot, len(urls))

	for i, url := range urls {
		slots[i] = ImageSlot{Index: i}
		if url == "" {
			continue
		}

		original, err := f.download(ctx, dir, i, url)
		if err != nil {
			f.logger.Warnw("Image unavailable, slot left empty",
				"index", i,
				"url", url,
				"error", err,
			)
			continue
		}

		normalized, err := f.normalize(dir, i, original)
		if err != nil {
			return nil, err
		}
		slots[i].LocalPath = normalized
	}

	return slots, nil
}

func (f *ImageFetcher) download(ctx context.Context, dir string, index int, url string) (string, error) {
	prefix := filepath.Join(dir, fmt.Sprintf("%d.original", index))

	if cached, ok := store.Cached(prefix, ".png", ".jpg", ".gif"); ok {
		return cached, nil
	}

	return f.fetch.Save(ctx, prefix, url)
}

func (f *ImageFetcher) normalize(dir string, index int, original string) (string, error) {
	outPath := filepath.Join(dir, fmt.Sprintf("%d.jpg", index))
	if cached, ok := store.Cached(filepath.Join(dir, fmt.Sprintf("%d", index)), ".jpg"); ok {
		return cached, nil
	}

	if f.background != "" {
		scalePath := filepath.Join(dir, fmt.Sprintf("%d.scale.jpg", index))
		if err := f.tool.ScaleFit(original, scalePath, f.width, f.height); err != nil {
			return "", err
		}
		if err := f.tool.OverlayCentered(f.background, scalePath, outPath); err != nil {
			return "", err
		}
		return outPath, nil
	}

	if err := f.tool.ScalePad(original, outPath, f.width, f.height); err != nil {
		return "", err
	}
	return outPath, nil
}
