// Package export renders the timeline into a single output video. It flattens
// the main track into an ffconcat manifest, synthesizes the ffmpeg invocation
// from user settings, supervises the encoder process, extracts progress from
// its diagnostic output, and drives the job state machine including
// cancellation and cleanup.
package export
