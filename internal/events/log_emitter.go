package events

import (
	"context"
	"sync"

	"log/slog"

	"github.com/xvanov/clipforge/internal/logging"
)

// LogEmitter mirrors export events into structured logs. Progress events are
// sampled per job so a render does not flood the log with one line per frame
// batch.
type LogEmitter struct {
	logger *slog.Logger

	mu       sync.Mutex
	samplers map[string]*logging.ProgressSampler
}

// NewLogEmitter builds a LogEmitter with the given base logger.
func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	return &LogEmitter{
		logger:   logging.NewComponentLogger(logger, "events"),
		samplers: make(map[string]*logging.ProgressSampler),
	}
}

func (e *LogEmitter) sampler(jobID string) *logging.ProgressSampler {
	e.mu.Lock()
	defer e.mu.Unlock()
	sampler, ok := e.samplers[jobID]
	if !ok {
		sampler = logging.NewProgressSampler(5)
		e.samplers[jobID] = sampler
	}
	return sampler
}

func (e *LogEmitter) forget(jobID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.samplers, jobID)
}

func (e *LogEmitter) ExportProgress(ctx context.Context, event ProgressEvent) {
	if !e.sampler(event.JobID).ShouldLog(event.Progress * 100) {
		return
	}
	e.logger.Info("export progress",
		logging.String(logging.FieldJobID, event.JobID),
		logging.Float64("progress", event.Progress),
		logging.Int64("current_frame", event.CurrentFrame),
		logging.Int64("total_frames", event.TotalFrames),
		logging.Float64("fps", event.FPS),
		logging.Int64("eta_seconds", event.ETASeconds),
	)
}

func (e *LogEmitter) ExportComplete(ctx context.Context, event CompleteEvent) {
	e.forget(event.JobID)
	e.logger.Info("export complete",
		logging.String(logging.FieldJobID, event.JobID),
		logging.String(logging.FieldOutputPath, event.OutputPath),
	)
}

func (e *LogEmitter) ExportError(ctx context.Context, event ErrorEvent) {
	e.forget(event.JobID)
	e.logger.Error("export failed",
		logging.String(logging.FieldJobID, event.JobID),
		logging.String("error", event.Error),
	)
}

func (e *LogEmitter) ExportCancelled(ctx context.Context, event CancelledEvent) {
	e.forget(event.JobID)
	e.logger.Info("export cancelled",
		logging.String(logging.FieldJobID, event.JobID),
	)
}

var _ Emitter = (*LogEmitter)(nil)
