package timeline

// TrackType identifies how a track participates in rendering.
type TrackType string

const (
	// TrackMain marks the track whose clips are linearized into the export.
	TrackMain TrackType = "main"
	// TrackOverlay marks supplementary tracks excluded from the export pipeline.
	TrackOverlay TrackType = "overlay"
)

// Clip places a trimmed window of a media asset on the timeline. The trim
// window (InPoint, OutPoint) selects the sub-range of the source used by the
// clip; StartTime is the clip's position on the timeline in seconds.
type Clip struct {
	ID         string  `json:"id"`
	AssetID    string  `json:"media_clip_id"`
	TrackID    string  `json:"track_id"`
	StartTime  float64 `json:"start_time"`
	InPoint    float64 `json:"in_point"`
	OutPoint   float64 `json:"out_point"`
	LayerOrder int     `json:"layer_order"`
}

// Duration returns the length of the trim window.
func (c Clip) Duration() float64 {
	return c.OutPoint - c.InPoint
}

// EndTime returns the timeline position where the clip stops playing.
func (c Clip) EndTime() float64 {
	return c.StartTime + c.Duration()
}

// Track is an ordered collection of clips. Clips within a track may overlap
// in time; the export pipeline emits them in start-time order without
// resolving overlaps.
type Track struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Type    TrackType `json:"type"`
	Order   int       `json:"order"`
	Clips   []Clip    `json:"clips"`
	Visible bool      `json:"visible"`
	Locked  bool      `json:"locked"`
	Volume  float64   `json:"volume"`
}

// Duration returns the end time of the last-ending clip, 0 for an empty track.
func (t Track) Duration() float64 {
	var max float64
	for _, clip := range t.Clips {
		if end := clip.EndTime(); end > max {
			max = end
		}
	}
	return max
}

// TotalDuration returns the longest track duration across the timeline.
// Defined for all inputs, including empty track lists; clip validation is the
// caller's concern.
func TotalDuration(tracks []Track) float64 {
	var max float64
	for _, track := range tracks {
		if d := track.Duration(); d > max {
			max = d
		}
	}
	return max
}
