package events

import "context"

// ProgressEvent is a point-in-time estimate of render completion.
type ProgressEvent struct {
	JobID        string  `json:"job_id"`
	Progress     float64 `json:"progress"`
	CurrentFrame int64   `json:"current_frame"`
	TotalFrames  int64   `json:"total_frames"`
	FPS          float64 `json:"fps"`
	ETASeconds   int64   `json:"eta_seconds"`
}

// CompleteEvent announces a finished render.
type CompleteEvent struct {
	JobID      string `json:"job_id"`
	OutputPath string `json:"output_path"`
}

// ErrorEvent announces a failed render.
type ErrorEvent struct {
	JobID string `json:"job_id"`
	Error string `json:"error"`
}

// CancelledEvent announces a caller-cancelled render.
type CancelledEvent struct {
	JobID string `json:"job_id"`
}

// Emitter receives export job notifications. Implementations must be safe for
// concurrent use; the supervisor calls them from per-job goroutines.
type Emitter interface {
	ExportProgress(ctx context.Context, event ProgressEvent)
	ExportComplete(ctx context.Context, event CompleteEvent)
	ExportError(ctx context.Context, event ErrorEvent)
	ExportCancelled(ctx context.Context, event CancelledEvent)
}

// Noop discards all events.
type Noop struct{}

func (Noop) ExportProgress(context.Context, ProgressEvent)   {}
func (Noop) ExportComplete(context.Context, CompleteEvent)   {}
func (Noop) ExportError(context.Context, ErrorEvent)         {}
func (Noop) ExportCancelled(context.Context, CancelledEvent) {}

var _ Emitter = Noop{}
