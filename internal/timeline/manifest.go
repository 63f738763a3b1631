package timeline

import (
	"storyreel/internal/media"
)

// WriteManifest renders the manifest as an ffmpeg concat list, one
// file line per entry in playback order.
func WriteManifest(entries []ManifestEntry, path string) error {
	var list media.ConcatList
	for _, entry := range entries {
		list.File(entry.Path)
	}
	return list.WriteTo(path)
}
