// Package timeline models the editable multi-clip timeline: tracks, clip
// placements with trim windows, and duration arithmetic used by the export
// pipeline.
package timeline
