package processor_test

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classweave/classweave/internal/classfile"
	"github.com/classweave/classweave/internal/classtest"
	"github.com/classweave/classweave/internal/processor"
	popts "github.com/classweave/classweave/pkg/processor"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeClass(t *testing.T, dir, file string, c classtest.Class) string {
	t.Helper()
	src, err := c.Bytes()
	require.NoError(t, err)
	path := filepath.Join(dir, file)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, src, 0o644))
	return path
}

func annotated(name string) classtest.Class {
	return classtest.Class{
		Name:        name,
		Annotations: []string{"Llombok/Getter;"},
		Fields: []classtest.Field{
			{Access: classfile.AccPrivate, Name: "id", Descriptor: "I"},
		},
	}
}

func TestRunRewritesAnnotatedClasses(t *testing.T) {
	dir := t.TempDir()
	target := writeClass(t, dir, "com/example/A.class", annotated("com/example/A"))
	plainPath := writeClass(t, dir, "com/example/B.class", classtest.Class{Name: "com/example/B"})
	junkPath := filepath.Join(dir, "com/example/Junk.class")
	require.NoError(t, os.WriteFile(junkPath, []byte("garbage"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	plainBefore, err := os.ReadFile(plainPath)
	require.NoError(t, err)

	p := processor.New(&popts.Options{ClassDir: dir}, discard())
	report, err := p.Run()
	require.NoError(t, err)
	require.Equal(t, processor.StateDone, p.State())

	require.Len(t, report.Classes, 1)
	require.Equal(t, "com/example/A", report.Classes[0].ClassName)
	require.Equal(t, []string{"Getter"}, report.Classes[0].Annotations)
	require.Equal(t, []string{"getId ()I"}, report.Classes[0].Added)
	require.Equal(t, 1, report.Skipped, "the unreadable file is skipped, not fatal")
	require.Zero(t, report.Failed)

	rewritten, err := classfile.ParseFile(target)
	require.NoError(t, err)
	require.True(t, rewritten.HasMethod("getId", "()I"))

	plainAfter, err := os.ReadFile(plainPath)
	require.NoError(t, err)
	require.True(t, bytes.Equal(plainBefore, plainAfter), "unannotated classes are never touched")
}

func TestRunDeduplicatesByClassName(t *testing.T) {
	dir := t.TempDir()
	writeClass(t, dir, "a/Dup.class", annotated("com/example/Dup"))
	writeClass(t, dir, "b/Dup.class", annotated("com/example/Dup"))

	p := processor.New(&popts.Options{ClassDir: dir}, discard())
	require.NoError(t, p.Collect())
	require.Len(t, p.Pending(), 1, "a class is transformed exactly once per run")
}

func TestDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	target := writeClass(t, dir, "A.class", annotated("com/example/A"))
	before, err := os.ReadFile(target)
	require.NoError(t, err)

	p := processor.New(&popts.Options{ClassDir: dir, DryRun: true}, discard())
	report, err := p.Run()
	require.NoError(t, err)
	require.Len(t, report.Classes, 1)
	require.NotEmpty(t, report.Classes[0].Added)

	after, err := os.ReadFile(target)
	require.NoError(t, err)
	require.True(t, bytes.Equal(before, after))
}

func TestPhaseOrderIsEnforced(t *testing.T) {
	p := processor.New(&popts.Options{ClassDir: t.TempDir()}, discard())

	_, err := p.TransformAll()
	require.Error(t, err, "transforming before collection is a bug")

	require.NoError(t, p.Collect())
	require.Error(t, p.Collect(), "collection runs once")

	_, err = p.TransformAll()
	require.NoError(t, err)
	require.Equal(t, processor.StateDone, p.State())
}

func TestFailureIsScopedToItsClass(t *testing.T) {
	dir := t.TempDir()
	doomed := writeClass(t, dir, "a/Doomed.class", annotated("com/example/Doomed"))
	survivor := writeClass(t, dir, "b/Survivor.class", annotated("com/example/Survivor"))

	p := processor.New(&popts.Options{ClassDir: dir}, discard())
	require.NoError(t, p.Collect())
	require.Len(t, p.Pending(), 2)

	// the class disappears between collection and transformation
	require.NoError(t, os.Remove(doomed))

	report, err := p.TransformAll()
	require.ErrorContains(t, err, "transformation failed for 1 of 2 classes")
	require.Equal(t, 1, report.Failed)
	require.Len(t, report.Classes, 2)

	var failed, ok *processor.ClassReport
	for i := range report.Classes {
		if report.Classes[i].ClassName == "com/example/Doomed" {
			failed = &report.Classes[i]
		} else {
			ok = &report.Classes[i]
		}
	}
	require.NotNil(t, failed)
	require.NotEmpty(t, failed.Error)
	require.NotNil(t, ok)
	require.Empty(t, ok.Error)

	rewritten, err := classfile.ParseFile(survivor)
	require.NoError(t, err)
	require.True(t, rewritten.HasMethod("getId", "()I"), "the healthy class still runs")
}

func TestCollectSkipsUnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	dir := t.TempDir()
	writeClass(t, dir, "ok/A.class", annotated("com/example/A"))
	locked := filepath.Join(dir, "locked")
	writeClass(t, dir, "locked/B.class", annotated("com/example/B"))
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	p := processor.New(&popts.Options{ClassDir: dir}, discard())
	require.NoError(t, p.Collect(), "an unreadable subtree does not abort the scan")
	require.Len(t, p.Pending(), 1)
	require.Equal(t, "com/example/A", p.Pending()[0].ClassName)
}

func TestCollectFailsOnMissingRoot(t *testing.T) {
	p := processor.New(&popts.Options{ClassDir: filepath.Join(t.TempDir(), "absent")}, discard())
	require.ErrorContains(t, p.Collect(), "scanning")
}

func TestCollectHonorsPackageFilter(t *testing.T) {
	dir := t.TempDir()
	c := annotated("com/example/A")
	c.Annotations = []string{"Lcom/thirdparty/Getter;"}
	writeClass(t, dir, "A.class", c)

	p := processor.New(&popts.Options{ClassDir: dir, Packages: []string{"lombok"}}, discard())
	require.NoError(t, p.Collect())
	require.Empty(t, p.Pending())
}
