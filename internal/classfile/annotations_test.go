package classfile_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classweave/classweave/internal/classfile"
)

func TestAnnotationNames(t *testing.T) {
	tests := []struct {
		descriptor string
		simple     string
		pkg        string
	}{
		{"Llombok/Getter;", "Getter", "lombok"},
		{"Llombok/experimental/Accessors;", "Accessors", "lombok/experimental"},
		{"LData;", "Data", ""},
	}
	for _, tt := range tests {
		a := classfile.Annotation{Type: tt.descriptor}
		require.Equal(t, tt.simple, a.SimpleName(), tt.descriptor)
		require.Equal(t, tt.pkg, a.PackagePrefix(), tt.descriptor)
	}
}

// buildAnnotationAttr assembles a RuntimeVisibleAnnotations payload by hand
// so the element_value skipping logic is exercised against every value form.
func buildAnnotationAttr(t *testing.T, pool *classfile.Pool) []byte {
	t.Helper()
	utf8 := func(s string) uint16 {
		idx, err := pool.AddUtf8(s)
		require.NoError(t, err)
		return idx
	}

	w := &classfile.ByteWriter{}
	w.U2(2) // two annotations

	// @Getter with no elements
	w.U2(utf8("Llombok/Getter;"))
	w.U2(0)

	// @ToString(of = "id", mode = Mode.FULL, meta = @Doc, flags = {1, 2}, call = true)
	w.U2(utf8("Llombok/ToString;"))
	w.U2(5)

	w.U2(utf8("of"))
	w.U1('s')
	w.U2(utf8("id"))

	w.U2(utf8("mode"))
	w.U1('e')
	w.U2(utf8("Llombok/Mode;"))
	w.U2(utf8("FULL"))

	w.U2(utf8("meta"))
	w.U1('@')
	w.U2(utf8("Llombok/Doc;"))
	w.U2(0)

	w.U2(utf8("flags"))
	w.U1('[')
	w.U2(2)
	w.U1('I')
	w.U2(utf8("1"))
	w.U1('I')
	w.U2(utf8("2"))

	w.U2(utf8("call"))
	w.U1('Z')
	w.U2(utf8("true"))

	return w.Bytes()
}

func TestReadAnnotationsSkipsElementValues(t *testing.T) {
	pool := make(classfile.Pool, 1)
	data := buildAnnotationAttr(t, &pool)
	nameIndex, err := pool.AddUtf8(classfile.AttrRuntimeVisibleAnnotations)
	require.NoError(t, err)

	attrs := []classfile.AttributeInfo{
		{NameIndex: nameIndex, Name: classfile.AttrRuntimeVisibleAnnotations, Data: data},
	}

	anns, err := classfile.ReadAnnotations(pool, attrs)
	require.NoError(t, err)
	require.Len(t, anns, 2)
	require.Equal(t, "Llombok/Getter;", anns[0].Type)
	require.Equal(t, "Llombok/ToString;", anns[1].Type)
}

func TestReadAnnotationsScansBothRetentions(t *testing.T) {
	pool := make(classfile.Pool, 1)
	typeIndex, err := pool.AddUtf8("Llombok/Setter;")
	require.NoError(t, err)

	w := &classfile.ByteWriter{}
	w.U2(1)
	w.U2(typeIndex)
	w.U2(0)
	data := w.Bytes()

	attrs := []classfile.AttributeInfo{
		{Name: "Signature", Data: []byte{0xFF, 0xFF}}, // unrelated, never decoded
		{Name: classfile.AttrRuntimeInvisibleAnnotations, Data: data},
		{Name: classfile.AttrRuntimeVisibleAnnotations, Data: data},
	}

	anns, err := classfile.ReadAnnotations(pool, attrs)
	require.NoError(t, err)
	require.Len(t, anns, 2)
}

func TestReadAnnotationsRejectsMalformed(t *testing.T) {
	pool := make(classfile.Pool, 1)
	typeIndex, err := pool.AddUtf8("Llombok/Getter;")
	require.NoError(t, err)

	truncated := &classfile.ByteWriter{}
	truncated.U2(1)
	truncated.U2(typeIndex)
	// pair count and everything after is missing

	badTag := &classfile.ByteWriter{}
	badTag.U2(1)
	badTag.U2(typeIndex)
	badTag.U2(1)
	badTag.U2(typeIndex) // element_name_index
	badTag.U1('X')       // not an element_value tag

	for name, data := range map[string][]byte{
		"empty payload":   {},
		"truncated count": {0x00},
		"truncated":       truncated.Bytes(),
		"unknown tag":     badTag.Bytes(),
	} {
		attrs := []classfile.AttributeInfo{
			{Name: classfile.AttrRuntimeVisibleAnnotations, Data: data},
		}
		_, err := classfile.ReadAnnotations(pool, attrs)
		require.Error(t, err, name)
	}
}
