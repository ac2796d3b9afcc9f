package export

import "time"

// Status is the lifecycle stage of an export job.
type Status string

const (
	StatusPreparing Status = "preparing"
	StatusRendering Status = "rendering"
	StatusComplete  Status = "complete"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusComplete, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// canTransition is the single authority on job state changes. Terminal
// states are final, which is what makes cancellation stick even when the
// process exits afterwards.
func canTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	switch to {
	case StatusRendering:
		return from == StatusPreparing
	case StatusComplete:
		return from == StatusRendering
	case StatusFailed:
		return from == StatusPreparing || from == StatusRendering
	case StatusCancelled:
		return true
	}
	return false
}

// Job is the externally visible record of an export.
type Job struct {
	ID         string    `json:"id"`
	OutputPath string    `json:"output_path"`
	Status     Status    `json:"status"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}
