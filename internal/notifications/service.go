// Package notifications pushes export lifecycle notices to an ntfy topic.
package notifications

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/xvanov/clipforge/internal/config"
	"github.com/xvanov/clipforge/internal/events"
	"github.com/xvanov/clipforge/internal/logging"
)

const userAgent = "ClipForge/0.1.0"

// NewEmitter builds an ntfy-backed emitter when a topic is configured and a
// noop emitter otherwise. Progress events are never pushed; only terminal
// transitions produce a notification.
func NewEmitter(cfg *config.Config, logger *slog.Logger) events.Emitter {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return events.Noop{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ntfyEmitter{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		logger:   logging.NewComponentLogger(logger, "notifications"),
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyEmitter struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

func (n *ntfyEmitter) ExportProgress(context.Context, events.ProgressEvent) {}

func (n *ntfyEmitter) ExportComplete(ctx context.Context, event events.CompleteEvent) {
	n.push(ctx, payload{
		title:    "ClipForge - Export Complete",
		message:  fmt.Sprintf("Export finished: %s", filepath.Base(event.OutputPath)),
		tags:     []string{"clipforge", "export", "completed"},
		priority: "high",
	})
}

func (n *ntfyEmitter) ExportError(ctx context.Context, event events.ErrorEvent) {
	message := strings.TrimSpace(event.Error)
	if message == "" {
		message = "unknown error"
	}
	n.push(ctx, payload{
		title:    "ClipForge - Export Failed",
		message:  fmt.Sprintf("Export failed: %s", firstLine(message)),
		tags:     []string{"clipforge", "export", "error"},
		priority: "high",
	})
}

func (n *ntfyEmitter) ExportCancelled(ctx context.Context, event events.CancelledEvent) {
	n.push(ctx, payload{
		title:   "ClipForge - Export Cancelled",
		message: fmt.Sprintf("Export cancelled: %s", event.JobID),
		tags:    []string{"clipforge", "export", "cancelled"},
	})
}

// push delivers one notification. Failures are logged rather than returned;
// a dead notification channel must not affect the export pipeline.
func (n *ntfyEmitter) push(ctx context.Context, data payload) {
	if err := n.send(ctx, data); err != nil {
		n.logger.Warn("notification delivery failed", logging.Error(err))
	}
}

func (n *ntfyEmitter) send(ctx context.Context, data payload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
