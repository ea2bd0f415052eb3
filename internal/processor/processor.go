// Package processor orchestrates a whole run: collect the annotated
// classes under the output directory, then transform each exactly once.
// A class is never rewritten until collection is complete.
package processor

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/classweave/classweave/internal/bytecode"
	"github.com/classweave/classweave/internal/classfile"
	"github.com/classweave/classweave/internal/transform"
	popts "github.com/classweave/classweave/pkg/processor"
)

// State is the processor lifecycle phase.
type State int

const (
	StateCollecting State = iota
	StateTransforming
	StateDone
)

// Pending is one annotated class awaiting transformation.
type Pending struct {
	Path        string
	ClassName   string // internal name
	Annotations []string
}

// ClassReport records the outcome for one class.
type ClassReport struct {
	ClassName   string   `yaml:"class" json:"class"`
	Path        string   `yaml:"path" json:"path"`
	Annotations []string `yaml:"annotations,omitempty" json:"annotations,omitempty"`
	Added       []string `yaml:"added,omitempty" json:"added,omitempty"`
	Error       string   `yaml:"error,omitempty" json:"error,omitempty"`
}

// Report summarizes a run.
type Report struct {
	Classes []ClassReport `yaml:"classes" json:"classes"`
	Skipped int           `yaml:"skipped,omitempty" json:"skipped,omitempty"`
	Failed  int           `yaml:"failed,omitempty" json:"failed,omitempty"`
}

// Processor walks a class-output tree and rewrites annotated classes in place.
type Processor struct {
	opts        *popts.Options
	transformer *transform.Transformer
	log         *slog.Logger

	state   State
	pending []Pending
	seen    map[string]bool // distinct class names; a class is transformed once
	skipped int
}

// New builds a processor with the default handler registry.
func New(opts *popts.Options, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		opts:        opts,
		transformer: transform.New(bytecode.NewRegistry(), opts.Packages, log),
		log:         log,
		state:       StateCollecting,
		seen:        make(map[string]bool),
	}
}

// State returns the current lifecycle phase.
func (p *Processor) State() State { return p.state }

// Pending returns the classes collected so far.
func (p *Processor) Pending() []Pending { return p.pending }

// Collect scans the class directory and gathers annotated classes into the
// pending set. Unreadable class files are skipped with a warning; on a
// fresh build the compiler may simply not have emitted them yet.
func (p *Processor) Collect() error {
	if p.state != StateCollecting {
		return fmt.Errorf("collect called in state %d", p.state)
	}

	err := filepath.WalkDir(p.opts.ClassDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == p.opts.ClassDir {
				return err // the root must be scannable
			}
			p.log.Warn("skipping unreadable path", "path", path, "error", err)
			p.skipped++
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".class") {
			return nil
		}

		cf, err := classfile.ParseFile(path)
		if err != nil {
			p.log.Warn("skipping unreadable class file", "path", path, "error", err)
			p.skipped++
			return nil
		}

		className, err := cf.ClassName()
		if err != nil {
			p.log.Warn("skipping class with unresolvable name", "path", path, "error", err)
			p.skipped++
			return nil
		}
		if p.seen[className] {
			return nil
		}

		annotations, err := p.transformer.Annotations(cf)
		if err != nil {
			p.log.Warn("skipping class with malformed annotations", "path", path, "error", err)
			p.skipped++
			return nil
		}
		if len(annotations) == 0 {
			return nil
		}

		p.seen[className] = true
		p.pending = append(p.pending, Pending{Path: path, ClassName: className, Annotations: annotations})
		p.log.Debug("collected annotated class", "class", className, "annotations", annotations)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning %s: %w", p.opts.ClassDir, err)
	}

	p.state = StateTransforming
	return nil
}

// TransformAll processes every pending class exactly once. A failure is
// scoped to its class: it is logged, recorded in the report, and the
// remaining classes still run; the returned error marks the overall run
// as failed when any class failed.
func (p *Processor) TransformAll() (*Report, error) {
	if p.state != StateTransforming {
		return nil, fmt.Errorf("transform called in state %d", p.state)
	}

	report := &Report{Skipped: p.skipped}
	for _, pend := range p.pending {
		cr := ClassReport{ClassName: pend.ClassName, Path: pend.Path, Annotations: pend.Annotations}

		if err := p.transformOne(pend, &cr); err != nil {
			cr.Error = err.Error()
			report.Failed++
			p.log.Error("class transformation failed",
				"class", pend.ClassName, "path", pend.Path, "error", err)
		}
		report.Classes = append(report.Classes, cr)
	}

	p.state = StateDone
	if report.Failed > 0 {
		return report, fmt.Errorf("transformation failed for %d of %d classes", report.Failed, len(p.pending))
	}
	return report, nil
}

func (p *Processor) transformOne(pend Pending, cr *ClassReport) error {
	src, err := os.ReadFile(pend.Path)
	if err != nil {
		return fmt.Errorf("reading class: %w", err)
	}

	res, err := p.transformer.Transform(src)
	if err != nil {
		return err
	}
	cr.Added = res.Added

	if !res.Changed {
		p.log.Debug("class already complete, nothing to write", "class", pend.ClassName)
		return nil
	}
	if p.opts.DryRun {
		p.log.Info("dry run, not writing class", "class", pend.ClassName, "added", res.Added)
		return nil
	}
	if err := os.WriteFile(pend.Path, res.Bytes, 0o644); err != nil {
		return fmt.Errorf("writing class: %w", err)
	}
	p.log.Info("class rewritten", "class", pend.ClassName, "added", len(res.Added))
	return nil
}

// Run executes both phases.
func (p *Processor) Run() (*Report, error) {
	if err := p.Collect(); err != nil {
		return nil, err
	}
	return p.TransformAll()
}
