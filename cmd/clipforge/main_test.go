package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootShowsHelp(t *testing.T) {
	out, err := runCLI(t)
	if err != nil {
		t.Fatalf("root command returned error: %v", err)
	}
	for _, sub := range []string{"export", "jobs", "cancel", "status", "config"} {
		if !strings.Contains(out, sub) {
			t.Errorf("help output should mention %q:\n%s", sub, out)
		}
	}
}

func TestExportRequiresFlags(t *testing.T) {
	if _, err := runCLI(t, "export"); err == nil {
		t.Fatal("export without --project and --output should fail")
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init returned error: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Errorf("output should name the written file:\n%s", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("reading sample config: %v", err)
	}
	if !strings.Contains(string(data), "[paths]") {
		t.Errorf("sample config should contain a paths section:\n%s", data)
	}

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("second init without --overwrite should fail")
	}
	if _, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("init with --overwrite returned error: %v", err)
	}
}
