// Package transform rewrites one compiled class at a time: parse the
// binary form, index it, run the applicable generation handlers, and
// re-emit a structurally valid class file with the members appended.
package transform

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/classweave/classweave/internal/bytecode"
	"github.com/classweave/classweave/internal/classfile"
	"github.com/classweave/classweave/internal/model"
)

// Result reports one class transformation.
type Result struct {
	ClassName   string   // internal name
	Annotations []string // simple names that selected handlers, in registry order
	Added       []string // "name descriptor" member signatures appended
	Bytes       []byte   // re-serialized class; equals the input when nothing was added
	Changed     bool
}

// Transformer drives the handler registry against single classes.
// It is stateless across classes and safe to reuse for a whole run.
type Transformer struct {
	registry *bytecode.Registry
	packages []string // annotation package allowlist (internal names); empty allows all
	log      *slog.Logger
}

// New returns a transformer using the given registry. packages optionally
// restricts which annotation packages are honored.
func New(registry *bytecode.Registry, packages []string, log *slog.Logger) *Transformer {
	if log == nil {
		log = slog.Default()
	}
	return &Transformer{registry: registry, packages: packages, log: log}
}

// accepted reports whether the annotation passes the package allowlist.
func (t *Transformer) accepted(a classfile.Annotation) bool {
	if len(t.packages) == 0 {
		return true
	}
	pkg := a.PackagePrefix()
	for _, p := range t.packages {
		if pkg == p || strings.HasPrefix(pkg, p+"/") {
			return true
		}
	}
	return false
}

// Annotations returns the class-level annotation simple names that have a
// registered handler, ordered by handler registration.
func (t *Transformer) Annotations(cf *classfile.ClassFile) ([]string, error) {
	anns, err := classfile.ReadAnnotations(cf.Pool, cf.Attributes)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(anns))
	for _, a := range anns {
		if t.accepted(a) {
			present[a.SimpleName()] = true
		}
	}
	var out []string
	for _, name := range t.registry.Names() {
		if present[name] {
			out = append(out, name)
		}
	}
	return out, nil
}

// Transform parses src, runs every applicable handler against a fresh
// ClassInfo, and serializes the augmented class. A class with no
// applicable annotations, or whose requested members all exist already,
// comes back unchanged.
func (t *Transformer) Transform(src []byte) (*Result, error) {
	cf, err := classfile.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parsing class: %w", err)
	}

	annotations, err := t.Annotations(cf)
	if err != nil {
		return nil, fmt.Errorf("reading annotations: %w", err)
	}

	info, err := model.Build(cf)
	if err != nil {
		return nil, fmt.Errorf("indexing class: %w", err)
	}

	res := &Result{ClassName: info.Name, Annotations: annotations}
	if len(annotations) == 0 {
		res.Bytes = src
		return res, nil
	}

	g := bytecode.NewGen(cf, t.log.With("class", info.Name))
	for _, name := range annotations {
		h, ok := t.registry.Lookup(name)
		if !ok {
			continue
		}
		if err := h.Apply(g, info); err != nil {
			return nil, fmt.Errorf("handler %s: %w", name, err)
		}
	}

	res.Added = g.Added()
	if len(res.Added) == 0 {
		res.Bytes = src
		return res, nil
	}

	out, err := classfile.Write(cf)
	if err != nil {
		return nil, fmt.Errorf("serializing class: %w", err)
	}
	res.Bytes = out
	res.Changed = true
	return res, nil
}
