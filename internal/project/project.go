// Package project reads and writes editor project files. A project file is a
// single JSON document holding the timeline, the imported media library, and
// the last-used export settings.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/xvanov/clipforge/internal/export"
	"github.com/xvanov/clipforge/internal/media"
	"github.com/xvanov/clipforge/internal/timeline"
)

const currentVersion = "1.0.0"

// Project is the on-disk editor document.
type Project struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	CreatedAt      time.Time        `json:"created_at"`
	ModifiedAt     time.Time        `json:"modified_at"`
	Version        string           `json:"version"`
	Tracks         []timeline.Track `json:"tracks"`
	MediaLibrary   []media.Asset    `json:"media_library"`
	ExportSettings export.Settings  `json:"export_settings"`
}

// New creates an empty project with a single main track and default export
// settings.
func New(name string) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:         uuid.NewString(),
		Name:       name,
		CreatedAt:  now,
		ModifiedAt: now,
		Version:    currentVersion,
		Tracks: []timeline.Track{{
			ID:      uuid.NewString(),
			Name:    "Main Track",
			Type:    timeline.TrackMain,
			Visible: true,
			Volume:  1,
		}},
		ExportSettings: export.DefaultSettings(),
	}
}

// Load reads a project document from disk.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse project %s: %w", path, err)
	}
	if p.Version == "" {
		p.Version = currentVersion
	}
	return &p, nil
}

// Save writes the project atomically: a temp file in the target directory is
// renamed over the destination so a crash never leaves a truncated document.
func (p *Project) Save(path string) error {
	p.ModifiedAt = time.Now().UTC()
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".project-*.json")
	if err != nil {
		return fmt.Errorf("create temp project file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write project: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close project file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace project file: %w", err)
	}
	return nil
}

// Library indexes the project's media list for clip resolution.
func (p *Project) Library() *media.Library {
	return media.NewLibrary(p.MediaLibrary)
}
