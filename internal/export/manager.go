package export

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xvanov/clipforge/internal/config"
	"github.com/xvanov/clipforge/internal/events"
	"github.com/xvanov/clipforge/internal/logging"
	"github.com/xvanov/clipforge/internal/media"
	"github.com/xvanov/clipforge/internal/timeline"
)

// commandContext allows tests to substitute the spawned process.
var commandContext = exec.CommandContext

const (
	// stopGracePeriod is how long a cancelled process gets to exit on its
	// own before being killed.
	stopGracePeriod = 3 * time.Second

	errorTailLines = 10
	tailCapacity   = 50

	scanBufferSize = 1 << 20
)

// Recorder persists job snapshots. The manager calls it on creation and on
// every terminal transition.
type Recorder interface {
	Record(ctx context.Context, job Job) error
}

// Request describes one export to run.
type Request struct {
	Tracks     []timeline.Track
	Library    *media.Library
	OutputPath string
	Settings   Settings
}

type handle struct {
	job     Job
	process *os.Process
}

// Manager owns the set of running export jobs. It builds the segment
// manifest and encoder command for each request, supervises the spawned
// process, and routes lifecycle notifications through the configured
// emitter.
type Manager struct {
	mu   sync.Mutex
	jobs map[string]*handle

	emitter     events.Emitter
	recorder    Recorder
	logger      *slog.Logger
	binary      string
	scratchRoot string

	wg sync.WaitGroup
}

// NewManager builds a manager from daemon configuration. emitter and
// recorder may be nil.
func NewManager(cfg *config.Config, emitter events.Emitter, recorder Recorder, logger *slog.Logger) *Manager {
	if emitter == nil {
		emitter = events.Noop{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		jobs:        make(map[string]*handle),
		emitter:     emitter,
		recorder:    recorder,
		logger:      logging.NewComponentLogger(logger, "export"),
		binary:      cfg.FFmpegBinary(),
		scratchRoot: cfg.Paths.ScratchDir,
	}
}

// Create validates the request, prepares the manifest and command, registers
// the job, and starts rendering in the background. It returns the job id as
// soon as the job is registered.
func (m *Manager) Create(ctx context.Context, req Request) (string, error) {
	if err := req.Settings.Validate(); err != nil {
		return "", Wrap(ErrValidation, "create export", "", err)
	}
	if req.OutputPath == "" {
		return "", Wrap(ErrValidation, "create export", "output path is required", nil)
	}
	outDir := filepath.Dir(req.OutputPath)
	if info, err := os.Stat(outDir); err != nil || !info.IsDir() {
		return "", Wrap(ErrValidation, "create export", fmt.Sprintf("output directory does not exist: %s", outDir), nil)
	}

	id := uuid.NewString()
	scratch := filepath.Join(m.scratchRoot, "export-"+id)
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return "", Wrap(ErrTransient, "create export", "creating scratch directory", err)
	}

	manifestPath, err := BuildManifest(req.Tracks, req.Library, scratch)
	if err != nil {
		os.RemoveAll(scratch)
		return "", err
	}
	spec := BuildCommand(m.binary, manifestPath, req.OutputPath, req.Settings)
	totalDuration := timeline.TotalDuration(req.Tracks)

	job := Job{
		ID:         id,
		OutputPath: req.OutputPath,
		Status:     StatusPreparing,
		CreatedAt:  time.Now().UTC(),
	}

	m.mu.Lock()
	m.jobs[id] = &handle{job: job}
	m.mu.Unlock()

	m.record(ctx, job)
	m.logger.Info("export job created",
		logging.String(logging.FieldJobID, id),
		logging.String(logging.FieldOutputPath, req.OutputPath),
		logging.Float64("total_duration", totalDuration))

	runCtx := context.WithoutCancel(ctx)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(runCtx, id, spec, scratch, totalDuration)
	}()

	return id, nil
}

// run supervises one encoder process from spawn to terminal state.
func (m *Manager) run(ctx context.Context, id string, spec ProcessSpec, scratch string, totalDuration float64) {
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			m.logger.Warn("scratch cleanup failed",
				logging.String(logging.FieldJobID, id),
				logging.Error(err))
		}
	}()

	cmd := commandContext(ctx, spec.Binary, spec.Args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		m.finish(ctx, id, StatusFailed, Wrap(ErrExternalTool, "start export", "opening stderr pipe", err))
		return
	}
	// ffmpeg writes status lines to stderr; merge stdout into the same
	// stream so nothing is lost.
	cmd.Stdout = cmd.Stderr

	if err := cmd.Start(); err != nil {
		m.finish(ctx, id, StatusFailed, Wrap(ErrExternalTool, "start export", "spawning encoder", err))
		return
	}

	if !m.setRendering(id, cmd.Process) {
		// Cancelled before the process registered.
		stopProcess(cmd.Process, m.logger, id)
		cmd.Wait()
		return
	}

	tail := make([]string, 0, tailCapacity)
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), scanBufferSize)
	for scanner.Scan() {
		line := scanner.Text()
		tail = append(tail, line)
		if len(tail) > tailCapacity {
			tail = tail[1:]
		}
		if progress, ok := ParseProgress(line, totalDuration); ok {
			m.emitter.ExportProgress(ctx, events.ProgressEvent{
				JobID:        id,
				Progress:     progress.Progress,
				CurrentFrame: progress.CurrentFrame,
				TotalFrames:  progress.TotalFrames,
				FPS:          progress.FPS,
				ETASeconds:   progress.ETASeconds,
			})
		}
	}

	err = cmd.Wait()
	if err != nil {
		message := errorTail(tail)
		m.finish(ctx, id, StatusFailed, Wrap(ErrExternalTool, "export", message, err))
		return
	}
	m.finish(ctx, id, StatusComplete, nil)
}

// errorTail condenses the final encoder output lines into one message.
func errorTail(lines []string) string {
	if len(lines) > errorTailLines {
		lines = lines[len(lines)-errorTailLines:]
	}
	trimmed := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			trimmed = append(trimmed, line)
		}
	}
	if len(trimmed) == 0 {
		return "encoder exited with error"
	}
	return strings.Join(trimmed, "\n")
}

// setRendering transitions the job to rendering and attaches the process
// handle. It reports false when the job no longer accepts the transition,
// which means it was cancelled during preparation.
func (m *Manager) setRendering(id string, proc *os.Process) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.jobs[id]
	if !ok || !canTransition(h.job.Status, StatusRendering) {
		return false
	}
	h.job.Status = StatusRendering
	h.process = proc
	return true
}

// finish moves a job to a terminal state and emits the matching event. A job
// already terminal, or removed by cancellation, is left untouched.
func (m *Manager) finish(ctx context.Context, id string, status Status, cause error) {
	m.mu.Lock()
	h, ok := m.jobs[id]
	if !ok || !canTransition(h.job.Status, status) {
		m.mu.Unlock()
		return
	}
	h.job.Status = status
	h.job.FinishedAt = time.Now().UTC()
	if cause != nil {
		h.job.Error = cause.Error()
	}
	h.process = nil
	job := h.job
	m.mu.Unlock()

	switch status {
	case StatusComplete:
		m.logger.Info("export complete",
			logging.String(logging.FieldJobID, id),
			logging.String(logging.FieldOutputPath, job.OutputPath))
		m.emitter.ExportComplete(ctx, events.CompleteEvent{JobID: id, OutputPath: job.OutputPath})
	case StatusFailed:
		m.logger.Error("export failed",
			logging.String(logging.FieldJobID, id),
			logging.Error(cause))
		m.emitter.ExportError(ctx, events.ErrorEvent{JobID: id, Error: job.Error})
	}
	m.record(ctx, job)
}

// Cancel stops a running job. The job is removed from the active set under
// the cancelled status before the process is signalled, so the supervisor's
// exit path cannot reclassify it. Partial output is deleted best-effort.
func (m *Manager) Cancel(ctx context.Context, id string) error {
	m.mu.Lock()
	h, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return ErrJobNotFound
	}
	if h.job.Status.Terminal() {
		status := h.job.Status
		m.mu.Unlock()
		return Wrap(ErrValidation, "cancel export", fmt.Sprintf("job already %s", status), nil)
	}
	h.job.Status = StatusCancelled
	h.job.FinishedAt = time.Now().UTC()
	proc := h.process
	job := h.job
	delete(m.jobs, id)
	m.mu.Unlock()

	if proc != nil {
		stopProcess(proc, m.logger, id)
	}
	if err := os.Remove(job.OutputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		m.logger.Warn("partial output cleanup failed",
			logging.String(logging.FieldJobID, id),
			logging.Error(err))
	}

	m.logger.Info("export cancelled", logging.String(logging.FieldJobID, id))
	m.emitter.ExportCancelled(ctx, events.CancelledEvent{JobID: id})
	m.record(ctx, job)
	return nil
}

// stopProcess asks the encoder to exit and kills it after a grace period.
func stopProcess(proc *os.Process, logger *slog.Logger, id string) {
	if proc == nil {
		return
	}
	if runtime.GOOS == "windows" {
		proc.Kill()
		return
	}
	if err := proc.Signal(os.Interrupt); err != nil {
		proc.Kill()
		return
	}
	go func() {
		time.Sleep(stopGracePeriod)
		if err := proc.Kill(); err == nil {
			logger.Warn("encoder killed after grace period",
				logging.String(logging.FieldJobID, id))
		}
	}()
}

// Job returns a snapshot of one active job.
func (m *Manager) Job(id string) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return h.job, nil
}

// Jobs returns snapshots of all active jobs, newest first.
func (m *Manager) Jobs() []Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs := make([]Job, 0, len(m.jobs))
	for _, h := range m.jobs {
		jobs = append(jobs, h.job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs
}

// Wait blocks until all supervised jobs have finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) record(ctx context.Context, job Job) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.Record(ctx, job); err != nil {
		m.logger.Warn("recording job state failed",
			logging.String(logging.FieldJobID, job.ID),
			logging.Error(err))
	}
}
