package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xvanov/clipforge/internal/media"
	"github.com/xvanov/clipforge/internal/timeline"
)

const (
	manifestHeader   = "ffconcat version 1.0"
	manifestFileName = "concat.txt"
)

// SelectMainTrack picks the track whose clips are linearized into the export:
// the main track with the most clips. With several equally-populated main
// tracks the first in input order wins.
func SelectMainTrack(tracks []timeline.Track) (timeline.Track, error) {
	var (
		selected timeline.Track
		found    bool
	)
	for _, track := range tracks {
		if track.Type != timeline.TrackMain {
			continue
		}
		if !found || len(track.Clips) > len(selected.Clips) {
			selected = track
			found = true
		}
	}
	if !found {
		return timeline.Track{}, ErrNoMainTrack
	}
	return selected, nil
}

type manifestEntry struct {
	path     string
	inPoint  float64
	outPoint float64
}

// BuildManifest flattens the main track into an ffconcat manifest under
// scratchDir and returns the manifest path. Every clip is resolved against
// the library before anything is written: a missing asset fails the whole
// operation without leaving a partial manifest behind.
func BuildManifest(tracks []timeline.Track, library *media.Library, scratchDir string) (string, error) {
	track, err := SelectMainTrack(tracks)
	if err != nil {
		return "", err
	}

	clips := make([]timeline.Clip, len(track.Clips))
	copy(clips, track.Clips)
	sort.SliceStable(clips, func(i, j int) bool {
		return clips[i].StartTime < clips[j].StartTime
	})

	entries := make([]manifestEntry, 0, len(clips))
	for _, clip := range clips {
		asset, ok := library.Lookup(clip.AssetID)
		if !ok {
			return "", &MediaNotFoundError{AssetID: clip.AssetID}
		}
		entries = append(entries, manifestEntry{
			path:     asset.PlaybackPath(),
			inPoint:  clip.InPoint,
			outPoint: clip.OutPoint,
		})
	}

	var b strings.Builder
	b.WriteString(manifestHeader)
	b.WriteByte('\n')
	for _, entry := range entries {
		fmt.Fprintf(&b, "file '%s'\n", escapeManifestPath(entry.path))
		fmt.Fprintf(&b, "inpoint %.6f\n", entry.inPoint)
		fmt.Fprintf(&b, "outpoint %.6f\n", entry.outPoint)
	}

	manifestPath := filepath.Join(scratchDir, manifestFileName)
	if err := os.WriteFile(manifestPath, []byte(b.String()), 0o644); err != nil {
		return "", Wrap(ErrTransient, "write manifest", "", err)
	}
	return manifestPath, nil
}

// escapeManifestPath escapes single quotes for the ffconcat file directive:
// ' becomes '\'' so the consumer recovers the literal path.
func escapeManifestPath(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}
