package processor

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewOptionsDefaults(t *testing.T) {
	o := NewOptions()
	require.Equal(t, ".", o.ClassDir)
	require.Equal(t, "stubs", o.StubsDir)
	require.Equal(t, "mirror_gen.go", o.StubsFile)
	require.Equal(t, "mirror", o.StubsPackage)
	require.False(t, o.DryRun)
	require.Empty(t, o.Packages)
}

func TestNormalizeFillsBlanks(t *testing.T) {
	o := &Options{}
	o.Normalize()
	require.True(t, filepath.IsAbs(o.ClassDir), "relative class dirs are resolved")
	require.Equal(t, "stubs", o.StubsDir)
	require.Equal(t, "mirror_gen.go", o.StubsFile)
	require.Equal(t, "mirror", o.StubsPackage)
}

func TestNormalizeConvertsPackageNames(t *testing.T) {
	o := &Options{Packages: []string{" lombok ", "lombok.experimental", "com.acme.markers"}}
	o.Normalize()
	require.Equal(t, []string{"lombok", "lombok/experimental", "com/acme/markers"}, o.Packages)
}

func TestFunctionalOptions(t *testing.T) {
	o := NewOptions()
	for _, apply := range []Option{
		WithClassDir("build/classes"),
		WithDryRun(),
		WithStubsDir("out"),
		WithStubsFile("gen.go"),
		WithStubsPackage("shapes"),
		WithManifest("m.yaml"),
		WithPackages("lombok", " com.acme "),
	} {
		apply(o)
	}

	require.Equal(t, "build/classes", o.ClassDir)
	require.True(t, o.DryRun)
	require.Equal(t, "out", o.StubsDir)
	require.Equal(t, "gen.go", o.StubsFile)
	require.Equal(t, "shapes", o.StubsPackage)
	require.Equal(t, "m.yaml", o.ManifestPath)
	require.Equal(t, []string{"lombok", "com.acme"}, o.Packages)
}
