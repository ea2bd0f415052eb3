package stubs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/classweave/classweave/internal/classfile"
	"github.com/classweave/classweave/internal/gostubs"
	"github.com/classweave/classweave/internal/model"
	proc "github.com/classweave/classweave/internal/processor"
	"github.com/classweave/classweave/pkg/processor"
)

// Generate collects the annotated classes under the class directory and
// renders their Go mirror stubs to the configured output file.
func Generate(opts *processor.Options, log *slog.Logger) (string, error) {
	opts.Normalize()

	p := proc.New(opts, log)
	if err := p.Collect(); err != nil {
		return "", err
	}

	infos := make([]*model.ClassInfo, 0, len(p.Pending()))
	for _, pend := range p.Pending() {
		cf, err := classfile.ParseFile(pend.Path)
		if err != nil {
			log.Warn("skipping class for stub generation", "path", pend.Path, "error", err)
			continue
		}
		info, err := model.Build(cf)
		if err != nil {
			log.Warn("skipping unindexable class", "path", pend.Path, "error", err)
			continue
		}
		infos = append(infos, info)
	}
	if len(infos) == 0 {
		return "", fmt.Errorf("no annotated classes under %s", opts.ClassDir)
	}

	f := gostubs.New(opts.StubsPackage).File(infos)

	if err := os.MkdirAll(opts.StubsDir, 0o755); err != nil {
		return "", fmt.Errorf("create stubs directory: %w", err)
	}
	outFile := filepath.Clean(filepath.Join(opts.StubsDir, opts.StubsFile))
	ff, err := os.OpenFile(outFile, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("open stubs file: %w", err)
	}
	defer ff.Close()

	if err := f.Render(ff); err != nil {
		return "", fmt.Errorf("render stubs: %w", err)
	}

	log.Info("stubs generated", "file", outFile, "classes", len(infos))
	return outFile, nil
}
