package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xvanov/clipforge/internal/media"
	"github.com/xvanov/clipforge/internal/timeline"
)

func testLibrary() *media.Library {
	return media.NewLibrary([]media.Asset{
		{ID: "a", SourcePath: "/media/a.mp4", Duration: 10},
		{ID: "b", SourcePath: "/media/b.mp4", Duration: 10},
		{ID: "c", SourcePath: "/media/c.mp4", Duration: 10},
	})
}

func TestBuildManifestOrdersByStartTime(t *testing.T) {
	tracks := []timeline.Track{{
		ID:   "t1",
		Type: timeline.TrackMain,
		Clips: []timeline.Clip{
			{ID: "c2", AssetID: "b", StartTime: 5, InPoint: 0, OutPoint: 5},
			{ID: "c3", AssetID: "c", StartTime: 10, InPoint: 2, OutPoint: 4},
			{ID: "c1", AssetID: "a", StartTime: 0, InPoint: 1, OutPoint: 6},
		},
	}}

	path, err := BuildManifest(tracks, testLibrary(), t.TempDir())
	if err != nil {
		t.Fatalf("BuildManifest returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")

	want := []string{
		"ffconcat version 1.0",
		"file '/media/a.mp4'",
		"inpoint 1.000000",
		"outpoint 6.000000",
		"file '/media/b.mp4'",
		"inpoint 0.000000",
		"outpoint 5.000000",
		"file '/media/c.mp4'",
		"inpoint 2.000000",
		"outpoint 4.000000",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i, line := range want {
		if lines[i] != line {
			t.Errorf("line %d: expected %q, got %q", i, line, lines[i])
		}
	}
}

func TestBuildManifestEscapesQuotes(t *testing.T) {
	library := media.NewLibrary([]media.Asset{
		{ID: "q", SourcePath: "/media/my'clip.mp4"},
	})
	tracks := []timeline.Track{{
		Type:  timeline.TrackMain,
		Clips: []timeline.Clip{{AssetID: "q", OutPoint: 1}},
	}}

	path, err := BuildManifest(tracks, library, t.TempDir())
	if err != nil {
		t.Fatalf("BuildManifest returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}
	if !strings.Contains(string(data), `file '/media/my'\''clip.mp4'`) {
		t.Fatalf("expected escaped quote in manifest, got:\n%s", data)
	}
}

func TestBuildManifestPrefersProxyPath(t *testing.T) {
	library := media.NewLibrary([]media.Asset{
		{ID: "p", SourcePath: "/media/raw.mov", ProxyPath: "/proxies/raw.mp4"},
	})
	tracks := []timeline.Track{{
		Type:  timeline.TrackMain,
		Clips: []timeline.Clip{{AssetID: "p", OutPoint: 2}},
	}}

	path, err := BuildManifest(tracks, library, t.TempDir())
	if err != nil {
		t.Fatalf("BuildManifest returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}
	if !strings.Contains(string(data), "/proxies/raw.mp4") {
		t.Fatalf("expected proxy path in manifest, got:\n%s", data)
	}
	if strings.Contains(string(data), "/media/raw.mov") {
		t.Fatalf("source path should not appear when a proxy exists:\n%s", data)
	}
}

func TestBuildManifestMissingAssetWritesNothing(t *testing.T) {
	tracks := []timeline.Track{{
		Type: timeline.TrackMain,
		Clips: []timeline.Clip{
			{AssetID: "a", OutPoint: 1},
			{AssetID: "missing", StartTime: 1, OutPoint: 1},
		},
	}}
	scratch := t.TempDir()

	_, err := BuildManifest(tracks, testLibrary(), scratch)
	var notFound *MediaNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected MediaNotFoundError, got %v", err)
	}
	if notFound.AssetID != "missing" {
		t.Errorf("expected missing asset id, got %q", notFound.AssetID)
	}
	if _, statErr := os.Stat(filepath.Join(scratch, manifestFileName)); !os.IsNotExist(statErr) {
		t.Fatal("manifest file should not exist after a resolution failure")
	}
}

func TestBuildManifestNoMainTrack(t *testing.T) {
	tracks := []timeline.Track{{
		Type:  timeline.TrackOverlay,
		Clips: []timeline.Clip{{AssetID: "a", OutPoint: 1}},
	}}
	if _, err := BuildManifest(tracks, testLibrary(), t.TempDir()); !errors.Is(err, ErrNoMainTrack) {
		t.Fatalf("expected ErrNoMainTrack, got %v", err)
	}
}

func TestSelectMainTrackMostClips(t *testing.T) {
	tracks := []timeline.Track{
		{ID: "small", Type: timeline.TrackMain, Clips: []timeline.Clip{{AssetID: "a"}}},
		{ID: "overlay", Type: timeline.TrackOverlay, Clips: []timeline.Clip{{AssetID: "a"}, {AssetID: "b"}, {AssetID: "c"}}},
		{ID: "big", Type: timeline.TrackMain, Clips: []timeline.Clip{{AssetID: "a"}, {AssetID: "b"}}},
	}
	track, err := SelectMainTrack(tracks)
	if err != nil {
		t.Fatalf("SelectMainTrack returned error: %v", err)
	}
	if track.ID != "big" {
		t.Fatalf("expected most-populated main track, got %q", track.ID)
	}
}

func TestSelectMainTrackTieKeepsFirst(t *testing.T) {
	tracks := []timeline.Track{
		{ID: "first", Type: timeline.TrackMain, Clips: []timeline.Clip{{AssetID: "a"}}},
		{ID: "second", Type: timeline.TrackMain, Clips: []timeline.Clip{{AssetID: "b"}}},
	}
	track, err := SelectMainTrack(tracks)
	if err != nil {
		t.Fatalf("SelectMainTrack returned error: %v", err)
	}
	if track.ID != "first" {
		t.Fatalf("expected first track on a tie, got %q", track.ID)
	}
}
