package transform_test

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classweave/classweave/internal/bytecode"
	"github.com/classweave/classweave/internal/classfile"
	"github.com/classweave/classweave/internal/classtest"
	"github.com/classweave/classweave/internal/transform"
)

func newTransformer(t *testing.T, packages ...string) *transform.Transformer {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return transform.New(bytecode.NewRegistry(), packages, log)
}

func dataClass() classtest.Class {
	return classtest.Class{
		Name:        "com/example/Point",
		Annotations: []string{"Llombok/Data;"},
		Fields: []classtest.Field{
			{Access: classfile.AccPrivate, Name: "id", Descriptor: "I"},
			{Access: classfile.AccPrivate, Name: "name", Descriptor: "Ljava/lang/String;"},
		},
	}
}

func TestTransformDataClass(t *testing.T) {
	src, err := dataClass().Bytes()
	require.NoError(t, err)

	res, err := newTransformer(t).Transform(src)
	require.NoError(t, err)
	require.True(t, res.Changed)
	require.Equal(t, "com/example/Point", res.ClassName)
	require.Equal(t, []string{"Data"}, res.Annotations)
	require.NotEmpty(t, res.Added)

	cf, err := classfile.Parse(bytes.NewReader(res.Bytes))
	require.NoError(t, err)
	for _, sig := range [][2]string{
		{"getId", "()I"},
		{"setId", "(I)V"},
		{"getName", "()Ljava/lang/String;"},
		{"setName", "(Ljava/lang/String;)V"},
		{"toString", "()Ljava/lang/String;"},
		{"equals", "(Ljava/lang/Object;)Z"},
		{"hashCode", "()I"},
	} {
		require.True(t, cf.HasMethod(sig[0], sig[1]), "%s%s", sig[0], sig[1])
	}
}

// Constants already referenced by existing bytecode must keep their pool
// indices; generation only ever appends.
func TestTransformPreservesPoolPrefix(t *testing.T) {
	src, err := dataClass().Bytes()
	require.NoError(t, err)

	original, err := classfile.Parse(bytes.NewReader(src))
	require.NoError(t, err)

	res, err := newTransformer(t).Transform(src)
	require.NoError(t, err)

	transformed, err := classfile.Parse(bytes.NewReader(res.Bytes))
	require.NoError(t, err)
	require.Greater(t, len(transformed.Pool), len(original.Pool))
	for i := 1; i < len(original.Pool); i++ {
		require.Equal(t, original.Pool[i], transformed.Pool[i], "pool index %d", i)
	}
}

func TestTransformIdempotent(t *testing.T) {
	src, err := dataClass().Bytes()
	require.NoError(t, err)

	tr := newTransformer(t)
	first, err := tr.Transform(src)
	require.NoError(t, err)
	require.True(t, first.Changed)

	second, err := tr.Transform(first.Bytes)
	require.NoError(t, err)
	require.False(t, second.Changed, "every requested member already exists")
	require.Empty(t, second.Added)
	require.Equal(t, first.Bytes, second.Bytes)
}

func TestTransformUnannotatedClassUnchanged(t *testing.T) {
	c := dataClass()
	c.Annotations = nil
	src, err := c.Bytes()
	require.NoError(t, err)

	res, err := newTransformer(t).Transform(src)
	require.NoError(t, err)
	require.False(t, res.Changed)
	require.Empty(t, res.Annotations)
	require.Equal(t, src, res.Bytes)
}

func TestTransformUnknownAnnotationIgnored(t *testing.T) {
	c := dataClass()
	c.Annotations = []string{"Ljavax/annotation/Generated;"}
	src, err := c.Bytes()
	require.NoError(t, err)

	res, err := newTransformer(t).Transform(src)
	require.NoError(t, err)
	require.False(t, res.Changed)
}

func TestTransformAnnotationOrderFollowsRegistry(t *testing.T) {
	c := dataClass()
	// declared out of registry order on purpose
	c.Annotations = []string{"Llombok/ToString;", "Llombok/Getter;"}
	src, err := c.Bytes()
	require.NoError(t, err)

	res, err := newTransformer(t).Transform(src)
	require.NoError(t, err)
	require.Equal(t, []string{"Getter", "ToString"}, res.Annotations)
}

func TestTransformPackageAllowlist(t *testing.T) {
	c := dataClass()
	c.Annotations = []string{"Lcom/thirdparty/Data;"}
	src, err := c.Bytes()
	require.NoError(t, err)

	res, err := newTransformer(t, "lombok").Transform(src)
	require.NoError(t, err)
	require.False(t, res.Changed, "foreign package not on the allowlist")

	res, err = newTransformer(t, "com/thirdparty").Transform(src)
	require.NoError(t, err)
	require.True(t, res.Changed)

	// subpackages of an allowed package pass too
	c.Annotations = []string{"Llombok/experimental/Data;"}
	src, err = c.Bytes()
	require.NoError(t, err)
	res, err = newTransformer(t, "lombok").Transform(src)
	require.NoError(t, err)
	require.True(t, res.Changed)
}

func TestTransformRejectsGarbage(t *testing.T) {
	_, err := newTransformer(t).Transform([]byte("not a class file"))
	require.Error(t, err)
}
