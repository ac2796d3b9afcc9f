package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/xvanov/clipforge/internal/api"
	"github.com/xvanov/clipforge/internal/config"
	"github.com/xvanov/clipforge/internal/export"
	"github.com/xvanov/clipforge/internal/jobstore"
	"github.com/xvanov/clipforge/internal/logging"
	"github.com/xvanov/clipforge/internal/project"
)

type apiServer struct {
	bind   string
	token  string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		token:  strings.TrimSpace(cfg.Paths.APIToken),
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.requireAuth(srv.handleStatus))
	mux.HandleFunc("/api/export", srv.requireAuth(srv.handleExport))
	mux.HandleFunc("/api/jobs", srv.requireAuth(srv.handleJobs))
	mux.HandleFunc("/api/jobs/", srv.requireAuth(srv.handleJob))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// requireAuth enforces the bearer token when one is configured.
func (s *apiServer) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	if s.token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header != "Bearer "+s.token {
			s.writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next(w, r)
	}
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		JobDBPath:    status.JobDBPath,
		LockFilePath: status.LockFilePath,
		ActiveJobs:   status.ActiveJobs,
	})
}

func (s *apiServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ProjectPath) == "" || strings.TrimSpace(req.OutputPath) == "" {
		s.writeError(w, http.StatusBadRequest, "project_path and output_path are required")
		return
	}

	proj, err := project.Load(req.ProjectPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.writeError(w, http.StatusNotFound, "project file not found")
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings := proj.ExportSettings
	if req.Settings != nil {
		settings = *req.Settings
	}

	id, err := s.daemon.manager.Create(r.Context(), export.Request{
		Tracks:     proj.Tracks,
		Library:    proj.Library(),
		OutputPath: req.OutputPath,
		Settings:   settings,
	})
	if err != nil {
		var notFound *export.MediaNotFoundError
		switch {
		case errors.Is(err, export.ErrValidation),
			errors.Is(err, export.ErrNoMainTrack),
			errors.As(err, &notFound):
			s.writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.ExportResponse{JobID: id})
}

func (s *apiServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jobs, err := s.daemon.store.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// Active jobs carry fresher state in memory than the last recorded
	// snapshot.
	for i, job := range jobs {
		if live, liveErr := s.daemon.manager.Job(job.ID); liveErr == nil {
			jobs[i] = live
		}
	}
	s.writeJSON(w, http.StatusOK, api.JobListResponse{Jobs: jobs})
}

func (s *apiServer) handleJob(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if rest == "" {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	if id, ok := strings.CutSuffix(rest, "/cancel"); ok {
		s.handleCancel(w, r, id)
		return
	}
	if strings.Contains(rest, "/") {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if job, err := s.daemon.manager.Job(rest); err == nil {
		s.writeJSON(w, http.StatusOK, api.JobResponse{Job: job})
		return
	}
	job, err := s.daemon.store.Get(r.Context(), rest)
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.JobResponse{Job: job})
}

func (s *apiServer) handleCancel(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.daemon.manager.Cancel(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, export.ErrJobNotFound):
			s.writeError(w, http.StatusNotFound, "job not found")
		case errors.Is(err, export.ErrValidation):
			s.writeError(w, http.StatusConflict, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return logging.NewComponentLogger(s.logger, "api-server")
	}
	return logging.NewNop()
}
