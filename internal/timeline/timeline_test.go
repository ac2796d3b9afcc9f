package timeline

import "testing"

func clipAt(start, in, out float64) Clip {
	return Clip{StartTime: start, InPoint: in, OutPoint: out}
}

func TestTrackDurationSequentialClips(t *testing.T) {
	track := Track{Type: TrackMain, Clips: []Clip{
		clipAt(0, 0, 5),
		clipAt(10, 0, 3),
	}}
	if got := track.Duration(); got != 13 {
		t.Fatalf("expected duration 13, got %v", got)
	}
}

func TestTrackDurationUsesTrimWindow(t *testing.T) {
	track := Track{Type: TrackMain, Clips: []Clip{clipAt(0, 2, 8)}}
	if got := track.Duration(); got != 6 {
		t.Fatalf("expected trimmed duration 6, got %v", got)
	}
}

func TestTrackDurationEmpty(t *testing.T) {
	if got := (Track{}).Duration(); got != 0 {
		t.Fatalf("expected empty track duration 0, got %v", got)
	}
}

func TestTotalDurationPicksLongestTrack(t *testing.T) {
	tracks := []Track{
		{Type: TrackMain, Clips: []Clip{clipAt(0, 0, 10)}},
		{Type: TrackOverlay, Clips: []Clip{clipAt(0, 0, 15)}},
	}
	if got := TotalDuration(tracks); got != 15 {
		t.Fatalf("expected total duration 15, got %v", got)
	}
}

func TestTotalDurationEmptyTimeline(t *testing.T) {
	if got := TotalDuration(nil); got != 0 {
		t.Fatalf("expected 0 for empty timeline, got %v", got)
	}
}

func TestTotalDurationWithGaps(t *testing.T) {
	tracks := []Track{{Type: TrackMain, Clips: []Clip{
		clipAt(0, 0, 3),
		clipAt(10, 0, 5),
	}}}
	if got := TotalDuration(tracks); got != 15 {
		t.Fatalf("expected total duration 15 across gap, got %v", got)
	}
}
