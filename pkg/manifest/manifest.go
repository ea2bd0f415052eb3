package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Run records one transformation run and the report it produced.
type Run struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
	Report  string `yaml:"report" json:"report"`
}

// Manifest tracks the lifecycle of recorded transformation runs.
type Manifest struct {
	CurrentVersion  string `yaml:"current_version" json:"current_version"`
	PreviousVersion string `yaml:"previous_version" json:"previous_version"`
	Runs            []Run  `yaml:"runs" json:"runs"`
}

// Load reads a manifest from the provided path. If the file does not exist,
// an empty manifest is returned.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	return &m, nil
}

// Save writes the manifest to the provided path, creating parent directories as needed.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// AddRun records a run, updating version pointers and de-duplicating
// existing entries that share the same name and version.
func (m *Manifest) AddRun(r Run) {
	if m.CurrentVersion != "" && m.CurrentVersion != r.Version {
		m.PreviousVersion = m.CurrentVersion
	}
	m.CurrentVersion = r.Version

	for i := range m.Runs {
		if m.Runs[i].Name == r.Name && m.Runs[i].Version == r.Version {
			m.Runs[i] = r
			return
		}
	}

	m.Runs = append(m.Runs, r)
}

// ReportFile returns the report path associated with the provided version, if present.
func (m *Manifest) ReportFile(version string) string {
	for _, r := range m.Runs {
		if r.Version == version {
			return r.Report
		}
	}
	return ""
}
