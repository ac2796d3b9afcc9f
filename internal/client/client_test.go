package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xvanov/clipforge/internal/api"
	"github.com/xvanov/clipforge/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Paths.APIBind = strings.TrimPrefix(server.URL, "http://")
	cfg.Paths.APIToken = token
	return New(&cfg)
}

func TestClientExportSendsTokenAndDecodesJobID(t *testing.T) {
	var gotAuth, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(api.ExportResponse{JobID: "job-42"})
	}, "secret")

	id, err := c.Export(context.Background(), api.ExportRequest{
		ProjectPath: "/projects/demo.json",
		OutputPath:  "/exports/demo.mp4",
	})
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if id != "job-42" {
		t.Errorf("unexpected job id %q", id)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("expected bearer token, got %q", gotAuth)
	}
	if gotPath != "/api/export" {
		t.Errorf("unexpected path %q", gotPath)
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: "job not found"})
	}, "")

	err := c.Cancel(context.Background(), "nope")
	if err == nil || !strings.Contains(err.Error(), "job not found") {
		t.Fatalf("expected the API error message, got %v", err)
	}
}

func TestClientUnreachableDaemon(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.APIBind = "127.0.0.1:1"
	c := New(&cfg)

	if _, err := c.Status(context.Background()); !errors.Is(err, ErrDaemonUnavailable) {
		t.Fatalf("expected ErrDaemonUnavailable, got %v", err)
	}
}
