package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xvanov/clipforge/internal/config"
	"github.com/xvanov/clipforge/internal/events"
	"github.com/xvanov/clipforge/internal/media"
	"github.com/xvanov/clipforge/internal/timeline"
)

type capturingEmitter struct {
	progress  chan events.ProgressEvent
	complete  chan events.CompleteEvent
	errored   chan events.ErrorEvent
	cancelled chan events.CancelledEvent
}

func newCapturingEmitter() *capturingEmitter {
	return &capturingEmitter{
		progress:  make(chan events.ProgressEvent, 64),
		complete:  make(chan events.CompleteEvent, 4),
		errored:   make(chan events.ErrorEvent, 4),
		cancelled: make(chan events.CancelledEvent, 4),
	}
}

func (e *capturingEmitter) ExportProgress(_ context.Context, ev events.ProgressEvent) {
	select {
	case e.progress <- ev:
	default:
	}
}

func (e *capturingEmitter) ExportComplete(_ context.Context, ev events.CompleteEvent) {
	e.complete <- ev
}

func (e *capturingEmitter) ExportError(_ context.Context, ev events.ErrorEvent) {
	e.errored <- ev
}

func (e *capturingEmitter) ExportCancelled(_ context.Context, ev events.CancelledEvent) {
	e.cancelled <- ev
}

type memoryRecorder struct {
	mu       sync.Mutex
	statuses map[string][]Status
}

func newMemoryRecorder() *memoryRecorder {
	return &memoryRecorder{statuses: make(map[string][]Status)}
}

func (r *memoryRecorder) Record(_ context.Context, job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[job.ID] = append(r.statuses[job.ID], job.Status)
	return nil
}

func (r *memoryRecorder) history(id string) []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Status(nil), r.statuses[id]...)
}

func installHelperCommand(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "CLIPFORGE_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func testManager(t *testing.T, emitter events.Emitter, recorder Recorder) *Manager {
	t.Helper()
	cfg := &config.Config{}
	cfg.Paths.ScratchDir = t.TempDir()
	return NewManager(cfg, emitter, recorder, nil)
}

func testRequest(t *testing.T) Request {
	t.Helper()
	library := media.NewLibrary([]media.Asset{
		{ID: "a", SourcePath: "/media/a.mp4", Duration: 10},
	})
	tracks := []timeline.Track{{
		ID:    "t1",
		Type:  timeline.TrackMain,
		Clips: []timeline.Clip{{ID: "c1", AssetID: "a", InPoint: 0, OutPoint: 10}},
	}}
	return Request{
		Tracks:     tracks,
		Library:    library,
		OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
		Settings:   DefaultSettings(),
	}
}

func TestManagerCreateRejectsMissingOutputDir(t *testing.T) {
	m := testManager(t, nil, nil)
	req := testRequest(t)
	req.OutputPath = "/definitely/not/a/dir/out.mp4"

	if _, err := m.Create(context.Background(), req); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestManagerCreateRejectsBadSettings(t *testing.T) {
	m := testManager(t, nil, nil)
	req := testRequest(t)
	req.Settings.Codec = "av1"

	if _, err := m.Create(context.Background(), req); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestManagerSuccessfulExport(t *testing.T) {
	installHelperCommand(t, "success")
	emitter := newCapturingEmitter()
	recorder := newMemoryRecorder()
	m := testManager(t, emitter, recorder)

	id, err := m.Create(context.Background(), testRequest(t))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	select {
	case ev := <-emitter.complete:
		if ev.JobID != id {
			t.Errorf("complete event carries job %q, want %q", ev.JobID, id)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for completion event")
	}
	m.Wait()

	select {
	case ev := <-emitter.progress:
		if ev.CurrentFrame == 0 {
			t.Error("progress event should carry a frame counter")
		}
	default:
		t.Error("expected at least one progress event")
	}

	job, err := m.Job(id)
	if err != nil {
		t.Fatalf("Job returned error: %v", err)
	}
	if job.Status != StatusComplete {
		t.Errorf("expected complete status, got %s", job.Status)
	}
	if job.FinishedAt.IsZero() {
		t.Error("finished timestamp should be set")
	}

	history := recorder.history(id)
	if len(history) < 2 || history[0] != StatusPreparing || history[len(history)-1] != StatusComplete {
		t.Errorf("unexpected recorded history %v", history)
	}

	entries, err := os.ReadDir(m.scratchRoot)
	if err != nil {
		t.Fatalf("reading scratch root: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch directory should be cleaned up, found %d entries", len(entries))
	}
}

func TestManagerFailedExportCarriesErrorTail(t *testing.T) {
	installHelperCommand(t, "failure")
	emitter := newCapturingEmitter()
	m := testManager(t, emitter, nil)

	id, err := m.Create(context.Background(), testRequest(t))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	select {
	case ev := <-emitter.errored:
		if !strings.Contains(ev.Error, "No such file or directory") {
			t.Errorf("error event should carry the encoder tail, got %q", ev.Error)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for error event")
	}
	m.Wait()

	job, err := m.Job(id)
	if err != nil {
		t.Fatalf("Job returned error: %v", err)
	}
	if job.Status != StatusFailed {
		t.Errorf("expected failed status, got %s", job.Status)
	}
}

func TestManagerCancelStopsJob(t *testing.T) {
	installHelperCommand(t, "hang")
	emitter := newCapturingEmitter()
	recorder := newMemoryRecorder()
	m := testManager(t, emitter, recorder)

	req := testRequest(t)
	if err := os.WriteFile(req.OutputPath, []byte("partial"), 0o644); err != nil {
		t.Fatalf("seeding partial output: %v", err)
	}

	id, err := m.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	select {
	case <-emitter.progress:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for the render to start")
	}

	if err := m.Cancel(context.Background(), id); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	m.Wait()

	select {
	case ev := <-emitter.cancelled:
		if ev.JobID != id {
			t.Errorf("cancelled event carries job %q, want %q", ev.JobID, id)
		}
	default:
		t.Fatal("expected a cancelled event")
	}
	select {
	case <-emitter.complete:
		t.Fatal("a cancelled job must not complete")
	default:
	}

	if _, err := m.Job(id); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("cancelled job should leave the active set, got %v", err)
	}
	if _, err := os.Stat(req.OutputPath); !os.IsNotExist(err) {
		t.Error("partial output should be removed on cancel")
	}

	history := recorder.history(id)
	if len(history) == 0 || history[len(history)-1] != StatusCancelled {
		t.Errorf("unexpected recorded history %v", history)
	}
}

func TestManagerCancelUnknownJob(t *testing.T) {
	m := testManager(t, nil, nil)
	if err := m.Cancel(context.Background(), "nope"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestManagerSpawnFailure(t *testing.T) {
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "/nonexistent/encoder")
	}
	t.Cleanup(func() {
		commandContext = original
	})

	emitter := newCapturingEmitter()
	m := testManager(t, emitter, nil)

	id, err := m.Create(context.Background(), testRequest(t))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	select {
	case <-emitter.errored:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for spawn failure event")
	}
	m.Wait()

	job, err := m.Job(id)
	if err != nil {
		t.Fatalf("Job returned error: %v", err)
	}
	if job.Status != StatusFailed {
		t.Errorf("expected failed status, got %s", job.Status)
	}
	if !strings.Contains(job.Error, "spawning encoder") {
		t.Errorf("job error should describe the spawn failure, got %q", job.Error)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("CLIPFORGE_HELPER_MODE") {
	case "success":
		fmt.Fprintln(os.Stderr, "frame=   60 fps= 30 q=28.0 size=     256kB time=00:00:02.00 bitrate=1048.6kbits/s speed=1.01x")
		fmt.Fprintln(os.Stderr, "frame=  150 fps= 30 q=28.0 size=     640kB time=00:00:05.00 bitrate=1048.6kbits/s speed=1.01x")
		fmt.Fprintln(os.Stderr, "frame=  300 fps= 30 q=28.0 size=    1280kB time=00:00:10.00 bitrate=1048.6kbits/s speed=1.01x")
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "ffmpeg version n7.0")
		fmt.Fprintln(os.Stderr, "/media/a.mp4: No such file or directory")
		os.Exit(1)
	case "hang":
		fmt.Fprintln(os.Stderr, "frame=   30 fps= 30 q=28.0 size=     128kB time=00:00:01.00 bitrate=1048.6kbits/s speed=1.01x")
		time.Sleep(30 * time.Second)
		os.Exit(0)
	default:
		os.Exit(0)
	}
}
