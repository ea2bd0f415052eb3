package process

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	proc "github.com/classweave/classweave/internal/processor"
	"github.com/classweave/classweave/pkg/manifest"
	"github.com/classweave/classweave/pkg/processor"
)

// Run executes a full collect-then-transform pass over the class directory.
// When a manifest path is configured, the run report is written next to the
// manifest and recorded under the given version.
func Run(opts *processor.Options, version string, log *slog.Logger) (*proc.Report, error) {
	opts.Normalize()

	p := proc.New(opts, log)
	report, runErr := p.Run()

	if report != nil && opts.ManifestPath != "" {
		if err := record(opts, version, report, log); err != nil {
			log.Warn("failed to record run in manifest", "manifest", opts.ManifestPath, "error", err)
		}
	}

	return report, runErr
}

// record persists the report and registers it in the manifest.
func record(opts *processor.Options, version string, report *proc.Report, log *slog.Logger) error {
	m, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	dir := filepath.Dir(opts.ManifestPath)
	reportPath := filepath.Join(dir, fmt.Sprintf("report-%s.yaml", version))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(reportPath, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	m.AddRun(manifest.Run{
		Name:    filepath.Base(opts.ClassDir),
		Version: version,
		Report:  reportPath,
	})
	if err := m.Save(opts.ManifestPath); err != nil {
		return err
	}

	log.Info("run recorded", "manifest", opts.ManifestPath, "version", version, "report", reportPath)
	return nil
}
