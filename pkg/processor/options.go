package processor

import (
	"path/filepath"
	"strings"
)

// Options control a processing run.
//
// ClassDir     – compiler output directory scanned for .class files
// Packages     – annotation package allowlist (internal names, e.g. "lombok"); empty honors any
// DryRun       – collect and transform but never write class files back
// StubsDir     – output directory for generated Go mirror stubs
// StubsFile    – output filename for generated Go mirror stubs
// StubsPackage – Go package name of the generated stubs file
// ManifestPath – manifest recording transformation snapshots; "" disables it
type Options struct {
	ClassDir     string   `json:"class_dir,omitempty" yaml:"class_dir,omitempty" toml:"class_dir,omitempty" mapstructure:"class_dir,omitempty"`
	Packages     []string `json:"packages,omitempty" yaml:"packages,omitempty" toml:"packages,omitempty" mapstructure:"packages,omitempty"`
	DryRun       bool     `json:"dry_run,omitempty" yaml:"dry_run,omitempty" toml:"dry_run,omitempty" mapstructure:"dry_run,omitempty"`
	StubsDir     string   `json:"stubs_dir,omitempty" yaml:"stubs_dir,omitempty" toml:"stubs_dir,omitempty" mapstructure:"stubs_dir,omitempty"`
	StubsFile    string   `json:"stubs_file,omitempty" yaml:"stubs_file,omitempty" toml:"stubs_file,omitempty" mapstructure:"stubs_file,omitempty"`
	StubsPackage string   `json:"stubs_package,omitempty" yaml:"stubs_package,omitempty" toml:"stubs_package,omitempty" mapstructure:"stubs_package,omitempty"`
	ManifestPath string   `json:"manifest,omitempty" yaml:"manifest,omitempty" toml:"manifest,omitempty" mapstructure:"manifest,omitempty"`
}

func NewOptions() *Options {
	return &Options{
		ClassDir:     ".",
		StubsDir:     "stubs",
		StubsFile:    "mirror_gen.go",
		StubsPackage: "mirror",
	}
}

func (o *Options) Normalize() {
	if len(o.ClassDir) == 0 {
		o.ClassDir = "."
	}
	if strings.Contains(o.ClassDir, ".") {
		o.ClassDir, _ = filepath.Abs(o.ClassDir)
	}
	if len(o.StubsDir) == 0 {
		o.StubsDir = "stubs"
	}
	if len(o.StubsFile) == 0 {
		o.StubsFile = "mirror_gen.go"
	}
	if len(o.StubsPackage) == 0 {
		o.StubsPackage = "mirror"
	}
	for i, p := range o.Packages {
		o.Packages[i] = strings.ReplaceAll(strings.TrimSpace(p), ".", "/")
	}
}

// functional option pattern ---------------------------------------------------

type Option func(*Options)

func WithClassDir(d string) Option     { return func(o *Options) { o.ClassDir = d } }
func WithDryRun() Option               { return func(o *Options) { o.DryRun = true } }
func WithStubsDir(d string) Option     { return func(o *Options) { o.StubsDir = d } }
func WithStubsFile(f string) Option    { return func(o *Options) { o.StubsFile = f } }
func WithStubsPackage(p string) Option { return func(o *Options) { o.StubsPackage = p } }
func WithManifest(path string) Option  { return func(o *Options) { o.ManifestPath = path } }
func WithPackages(pkgs ...string) Option {
	return func(o *Options) {
		for _, p := range pkgs {
			o.Packages = append(o.Packages, strings.TrimSpace(p))
		}
	}
}
