// Package client is a thin HTTP client for the daemon API, used by the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xvanov/clipforge/internal/api"
	"github.com/xvanov/clipforge/internal/config"
	"github.com/xvanov/clipforge/internal/export"
)

// ErrDaemonUnavailable indicates the daemon API could not be reached.
var ErrDaemonUnavailable = errors.New("daemon unavailable")

// Client talks to a running daemon.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client from configuration.
func New(cfg *config.Config) *Client {
	return &Client{
		baseURL: "http://" + strings.TrimSpace(cfg.Paths.APIBind),
		token:   strings.TrimSpace(cfg.Paths.APIToken),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Status fetches daemon runtime information.
func (c *Client) Status(ctx context.Context) (api.DaemonStatus, error) {
	var status api.DaemonStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &status)
	return status, err
}

// Export submits an export request and returns the accepted job id.
func (c *Client) Export(ctx context.Context, req api.ExportRequest) (string, error) {
	var resp api.ExportResponse
	if err := c.do(ctx, http.MethodPost, "/api/export", req, &resp); err != nil {
		return "", err
	}
	return resp.JobID, nil
}

// Jobs fetches the job history, newest first.
func (c *Client) Jobs(ctx context.Context) ([]export.Job, error) {
	var resp api.JobListResponse
	if err := c.do(ctx, http.MethodGet, "/api/jobs", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

// Job fetches one job record.
func (c *Client) Job(ctx context.Context, id string) (export.Job, error) {
	var resp api.JobResponse
	if err := c.do(ctx, http.MethodGet, "/api/jobs/"+id, nil, &resp); err != nil {
		return export.Job{}, err
	}
	return resp.Job, nil
}

// Cancel stops a running job.
func (c *Client) Cancel(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/jobs/"+id+"/cancel", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDaemonUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr api.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("daemon returned %d", resp.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
