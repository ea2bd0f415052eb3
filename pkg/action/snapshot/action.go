package snapshot

import (
	"fmt"
	"os"

	"github.com/google/go-cmp/cmp"

	"github.com/classweave/classweave/pkg/manifest"
)

// List returns all runs recorded in the manifest.
func List(manifestPath string) (*manifest.Manifest, error) {
	return manifest.Load(manifestPath)
}

// DiffCurrentWithPrevious loads the manifest, locates the current and
// previous run reports, and returns a textual diff of their contents:
// what the latest annotation changes did to the generated member surface.
func DiffCurrentWithPrevious(manifestPath string) (string, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return "", err
	}

	if m.CurrentVersion == "" || m.PreviousVersion == "" {
		return "", fmt.Errorf("no current/previous runs recorded")
	}

	currentPath := m.ReportFile(m.CurrentVersion)
	previousPath := m.ReportFile(m.PreviousVersion)

	if currentPath == "" || previousPath == "" {
		return "", fmt.Errorf("run reports not found in manifest")
	}

	current, err := os.ReadFile(currentPath)
	if err != nil {
		return "", fmt.Errorf("read current report: %w", err)
	}

	previous, err := os.ReadFile(previousPath)
	if err != nil {
		return "", fmt.Errorf("read previous report: %w", err)
	}

	return cmp.Diff(string(previous), string(current)), nil
}
