// Package daemon runs the export service: a single-instance background
// process exposing the job manager over a local HTTP API.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"github.com/xvanov/clipforge/internal/config"
	"github.com/xvanov/clipforge/internal/export"
	"github.com/xvanov/clipforge/internal/jobstore"
	"github.com/xvanov/clipforge/internal/logging"
)

// Daemon coordinates the export manager and enforces single-instance
// execution through a lock file.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	manager *export.Manager
	store   *jobstore.Store

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	JobDBPath    string
	LockFilePath string
	ActiveJobs   int
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, manager *export.Manager, store *jobstore.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || manager == nil || store == nil {
		return nil, errors.New("daemon requires config, manager, and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "clipforged.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		manager:  manager,
		store:    store,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = srv
	return d, nil
}

// Start acquires the instance lock and brings up the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another clipforge daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if d.api != nil {
		if err := d.api.start(runCtx); err != nil {
			_ = d.lock.Unlock()
			cancel()
			d.cancel = nil
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API, waits for running exports, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.api != nil {
		d.api.stop()
	}
	d.manager.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports runtime information for the status endpoint and CLI.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		JobDBPath:    d.store.Path(),
		LockFilePath: d.lockPath,
		ActiveJobs:   len(d.manager.Jobs()),
	}
}
