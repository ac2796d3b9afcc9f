// Package api defines the JSON payloads shared by the daemon's HTTP API and
// the CLI client.
package api

import "github.com/xvanov/clipforge/internal/export"

// ExportRequest asks the daemon to render a project file.
type ExportRequest struct {
	ProjectPath string           `json:"project_path"`
	OutputPath  string           `json:"output_path"`
	Settings    *export.Settings `json:"settings,omitempty"`
}

// ExportResponse acknowledges an accepted export.
type ExportResponse struct {
	JobID string `json:"job_id"`
}

// JobListResponse carries the job history, newest first.
type JobListResponse struct {
	Jobs []export.Job `json:"jobs"`
}

// JobResponse carries one job record.
type JobResponse struct {
	Job export.Job `json:"job"`
}

// DaemonStatus summarizes daemon runtime information.
type DaemonStatus struct {
	Running      bool   `json:"running"`
	PID          int    `json:"pid"`
	JobDBPath    string `json:"job_db_path"`
	LockFilePath string `json:"lock_file_path"`
	ActiveJobs   int    `json:"active_jobs"`
}

// ErrorResponse carries a transport-level failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}
