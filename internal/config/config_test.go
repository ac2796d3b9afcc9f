package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xvanov/clipforge/internal/config"
)

func TestLoadReturnsDefaultsWhenFileMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "config.toml")
	cfg, path, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if path != missing {
		t.Fatalf("expected resolved path %q, got %q", missing, path)
	}
	if cfg.FFmpegBinary() != "ffmpeg" {
		t.Fatalf("expected default ffmpeg binary, got %q", cfg.FFmpegBinary())
	}
	if cfg.Paths.APIBind != "127.0.0.1:7519" {
		t.Fatalf("unexpected default api bind %q", cfg.Paths.APIBind)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`scratch_dir = "` + filepath.Join(dir, "scratch") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		`api_bind = "127.0.0.1:9000"`,
		"[ffmpeg]",
		`binary = "/opt/ffmpeg/bin/ffmpeg"`,
		"[logging]",
		`level = "DEBUG"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary %q", cfg.FFmpegBinary())
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized level debug, got %q", cfg.Logging.Level)
	}
	if cfg.JobDBPath() != filepath.Join(dir, "logs", "jobs.db") {
		t.Fatalf("unexpected job db path %q", cfg.JobDBPath())
	}
}

func TestLoadRejectsBadBind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[paths]\napi_bind = \"not-a-bind\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for malformed api_bind")
	}
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[ffmpeg]") {
		t.Fatal("expected sample config to document the ffmpeg section")
	}
}
