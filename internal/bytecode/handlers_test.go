package bytecode_test

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classweave/classweave/internal/bytecode"
	"github.com/classweave/classweave/internal/classfile"
	"github.com/classweave/classweave/internal/classtest"
	"github.com/classweave/classweave/internal/model"
)

func newGen(t *testing.T, c classtest.Class) (*bytecode.Gen, *model.ClassInfo, *classfile.ClassFile) {
	t.Helper()
	src, err := c.Bytes()
	require.NoError(t, err)
	cf, err := classfile.Parse(bytes.NewReader(src))
	require.NoError(t, err)
	info, err := model.Build(cf)
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return bytecode.NewGen(cf, log), info, cf
}

func hasUtf8(pool classfile.Pool, s string) bool {
	for _, e := range pool {
		if u, ok := e.(*classfile.ConstUtf8); ok && u.Value == s {
			return true
		}
	}
	return false
}

func findMethod(cf *classfile.ClassFile, name, descriptor string) *classfile.MethodInfo {
	for i := range cf.Methods {
		if cf.Methods[i].Name == name && cf.Methods[i].Descriptor == descriptor {
			return &cf.Methods[i]
		}
	}
	return nil
}

func pointClass() classtest.Class {
	return classtest.Class{
		Name: "com/example/Point",
		Fields: []classtest.Field{
			{Access: classfile.AccPrivate, Name: "id", Descriptor: "I"},
			{Access: classfile.AccPrivate, Name: "name", Descriptor: "Ljava/lang/String;"},
			{Access: classfile.AccPrivate, Name: "active", Descriptor: "Z"},
			{Access: classfile.AccStatic, Name: "instances", Descriptor: "I"},
		},
	}
}

func TestGetterHandler(t *testing.T) {
	g, info, cf := newGen(t, pointClass())
	require.NoError(t, bytecode.GetterHandler{}.Apply(g, info))

	require.True(t, cf.HasMethod("getId", "()I"))
	require.True(t, cf.HasMethod("getName", "()Ljava/lang/String;"))
	require.True(t, cf.HasMethod("isActive", "()Z"), "primitive boolean uses the is prefix")
	require.False(t, cf.HasMethod("getInstances", "()I"), "static fields get no accessor")
	require.Len(t, g.Added(), 3)

	m := findMethod(cf, "getId", "()I")
	require.NotNil(t, m)
	require.True(t, m.AccessFlags.IsPublic())
	require.Len(t, m.Attributes, 1)
	require.Equal(t, "Code", m.Attributes[0].Name)
}

func TestGetterSkipsExisting(t *testing.T) {
	c := pointClass()
	c.Methods = []classtest.Method{
		{Access: classfile.AccPublic, Name: "getId", Descriptor: "()I"},
	}
	g, info, _ := newGen(t, c)
	require.NoError(t, bytecode.GetterHandler{}.Apply(g, info))
	require.NotContains(t, g.Added(), "getId ()I")
	require.Contains(t, g.Added(), "getName ()Ljava/lang/String;")
}

func TestSetterHandler(t *testing.T) {
	c := classtest.Class{
		Name: "com/example/Config",
		Fields: []classtest.Field{
			{Access: classfile.AccPrivate, Name: "host", Descriptor: "Ljava/lang/String;"},
			{Access: classfile.AccPrivate | classfile.AccFinal, Name: "port", Descriptor: "I"},
			{Access: classfile.AccPrivate, Name: "timeout", Descriptor: "J"},
		},
	}
	g, info, cf := newGen(t, c)
	require.NoError(t, bytecode.SetterHandler{}.Apply(g, info))

	require.True(t, cf.HasMethod("setHost", "(Ljava/lang/String;)V"))
	require.True(t, cf.HasMethod("setTimeout", "(J)V"))
	require.False(t, cf.HasMethod("setPort", "(I)V"), "final fields stay immutable")
}

func TestToStringHandler(t *testing.T) {
	g, info, cf := newGen(t, pointClass())
	require.NoError(t, bytecode.ToStringHandler{}.Apply(g, info))

	require.True(t, cf.HasMethod("toString", "()Ljava/lang/String;"))
	require.True(t, hasUtf8(cf.Pool, "Point("), "opens with the simple class name")
	require.True(t, hasUtf8(cf.Pool, "id="))
	require.True(t, hasUtf8(cf.Pool, ", name="))
	require.True(t, hasUtf8(cf.Pool, ", active="))
	require.True(t, hasUtf8(cf.Pool, ")"))
	require.False(t, hasUtf8(cf.Pool, "instances="), "static fields are not printed")
}

func TestToStringSkipsExisting(t *testing.T) {
	c := pointClass()
	c.Methods = []classtest.Method{
		{Access: classfile.AccPublic, Name: "toString", Descriptor: "()Ljava/lang/String;"},
	}
	g, info, _ := newGen(t, c)
	require.NoError(t, bytecode.ToStringHandler{}.Apply(g, info))
	require.Empty(t, g.Added())
}

func TestEqualsAndHashCodeHandler(t *testing.T) {
	c := classtest.Class{
		Name: "com/example/Sample",
		Fields: []classtest.Field{
			{Access: classfile.AccPrivate, Name: "id", Descriptor: "I"},
			{Access: classfile.AccPrivate, Name: "ratio", Descriptor: "D"},
			{Access: classfile.AccPrivate, Name: "ts", Descriptor: "J"},
			{Access: classfile.AccPrivate, Name: "score", Descriptor: "F"},
			{Access: classfile.AccPrivate, Name: "name", Descriptor: "Ljava/lang/String;"},
		},
	}
	g, info, cf := newGen(t, c)
	require.NoError(t, bytecode.EqualsAndHashCodeHandler{}.Apply(g, info))

	require.True(t, cf.HasMethod("equals", "(Ljava/lang/Object;)Z"))
	require.True(t, cf.HasMethod("hashCode", "()I"))

	// branching equals needs verification frames on a >=50 class
	require.True(t, hasUtf8(cf.Pool, "StackMapTable"))

	// comparison helpers referenced per field type
	require.True(t, hasUtf8(cf.Pool, "java/lang/Float"))
	require.True(t, hasUtf8(cf.Pool, "java/lang/Double"))
	require.True(t, hasUtf8(cf.Pool, "java/util/Objects"))

	// hashCode boxes primitives through valueOf
	require.True(t, hasUtf8(cf.Pool, "valueOf"))
	require.True(t, hasUtf8(cf.Pool, "hash"))
}

func TestEqualsAndHashCodeGeneratesMissingHalf(t *testing.T) {
	c := pointClass()
	c.Methods = []classtest.Method{
		{Access: classfile.AccPublic, Name: "equals", Descriptor: "(Ljava/lang/Object;)Z"},
	}
	g, info, cf := newGen(t, c)
	require.NoError(t, bytecode.EqualsAndHashCodeHandler{}.Apply(g, info))

	require.Equal(t, []string{"hashCode ()I"}, g.Added())
	require.True(t, cf.HasMethod("hashCode", "()I"))
}

func TestEqualsAndHashCodeNoFields(t *testing.T) {
	g, info, cf := newGen(t, classtest.Class{Name: "com/example/Empty"})
	require.NoError(t, bytecode.EqualsAndHashCodeHandler{}.Apply(g, info))

	require.True(t, cf.HasMethod("equals", "(Ljava/lang/Object;)Z"))
	require.True(t, cf.HasMethod("hashCode", "()I"))
}

func TestAllArgsConstructor(t *testing.T) {
	c := classtest.Class{
		Name:  "com/example/Span",
		Super: "com/example/Base",
		Fields: []classtest.Field{
			{Access: classfile.AccPrivate, Name: "start", Descriptor: "I"},
			{Access: classfile.AccPrivate, Name: "length", Descriptor: "J"},
			{Access: classfile.AccPrivate, Name: "label", Descriptor: "Ljava/lang/String;"},
			{Access: classfile.AccStatic, Name: "pool", Descriptor: "I"},
		},
	}
	g, info, cf := newGen(t, c)
	require.NoError(t, bytecode.AllArgsConstructorHandler{}.Apply(g, info))

	require.True(t, cf.HasMethod("<init>", "(IJLjava/lang/String;)V"),
		"parameters follow field declaration order")
	require.True(t, hasUtf8(cf.Pool, "com/example/Base"), "super constructor is invoked")
}

func TestAllArgsConstructorNoFields(t *testing.T) {
	g, info, cf := newGen(t, classtest.Class{Name: "com/example/Empty"})
	require.NoError(t, bytecode.AllArgsConstructorHandler{}.Apply(g, info))
	require.Empty(t, g.Added())
	require.False(t, cf.HasMethod("<init>", "()V"))
}

func TestNoArgsConstructor(t *testing.T) {
	g, info, cf := newGen(t, pointClass())
	require.NoError(t, bytecode.NoArgsConstructorHandler{}.Apply(g, info))
	require.True(t, cf.HasMethod("<init>", "()V"))
}

func TestConstructorSkipsExisting(t *testing.T) {
	c := pointClass()
	c.Methods = []classtest.Method{
		{Access: classfile.AccPublic, Name: "<init>", Descriptor: "()V"},
	}
	g, info, _ := newGen(t, c)
	require.NoError(t, bytecode.NoArgsConstructorHandler{}.Apply(g, info))
	require.Empty(t, g.Added())
}

func TestRequiredArgsConstructor(t *testing.T) {
	c := classtest.Class{
		Name: "com/example/Order",
		Fields: []classtest.Field{
			{Access: classfile.AccPrivate | classfile.AccFinal, Name: "id", Descriptor: "J"},
			{Access: classfile.AccPrivate, Name: "customer", Descriptor: "Ljava/lang/String;", Annotations: []string{"Llombok/NonNull;"}},
			{Access: classfile.AccPrivate, Name: "note", Descriptor: "Ljava/lang/String;"},
		},
	}
	g, info, cf := newGen(t, c)
	require.NoError(t, bytecode.RequiredArgsConstructorHandler{}.Apply(g, info))

	require.True(t, cf.HasMethod("<init>", "(JLjava/lang/String;)V"),
		"only final and NonNull fields are required")
}

func TestBuilderHandler(t *testing.T) {
	g, info, cf := newGen(t, pointClass())
	require.NoError(t, bytecode.BuilderHandler{}.Apply(g, info))

	m := findMethod(cf, "builder", "()Lcom/example/Point$Builder;")
	require.NotNil(t, m)
	require.True(t, m.AccessFlags.IsStatic())
	require.True(t, m.AccessFlags.IsPublic())
}

func TestDataHandlerBundle(t *testing.T) {
	g, info, cf := newGen(t, pointClass())
	require.NoError(t, bytecode.DataHandler{}.Apply(g, info))

	require.True(t, cf.HasMethod("getId", "()I"))
	require.True(t, cf.HasMethod("setId", "(I)V"))
	require.True(t, cf.HasMethod("toString", "()Ljava/lang/String;"))
	require.True(t, cf.HasMethod("equals", "(Ljava/lang/Object;)Z"))
	require.True(t, cf.HasMethod("hashCode", "()I"))
	require.False(t, cf.HasMethod("<init>", "(ILjava/lang/String;Z)V"), "Data emits no constructor")
}

func TestValueHandlerBundle(t *testing.T) {
	g, info, cf := newGen(t, pointClass())
	require.NoError(t, bytecode.ValueHandler{}.Apply(g, info))

	require.True(t, cf.HasMethod("getId", "()I"))
	require.False(t, cf.HasMethod("setId", "(I)V"), "Value emits no mutators")
	require.True(t, cf.HasMethod("toString", "()Ljava/lang/String;"))
	require.True(t, cf.HasMethod("equals", "(Ljava/lang/Object;)Z"))
	require.True(t, cf.HasMethod("hashCode", "()I"))
	require.True(t, cf.HasMethod("<init>", "(ILjava/lang/String;Z)V"))
}

func TestRegistryOrder(t *testing.T) {
	r := bytecode.NewRegistry()
	require.Equal(t, []string{
		"Getter",
		"Setter",
		"ToString",
		"EqualsAndHashCode",
		"AllArgsConstructor",
		"NoArgsConstructor",
		"RequiredArgsConstructor",
		"Builder",
		"Data",
		"Value",
	}, r.Names())

	h, ok := r.Lookup("Getter")
	require.True(t, ok)
	require.Equal(t, "Getter", h.Annotation())

	_, ok = r.Lookup("Synchronized")
	require.False(t, ok)

	require.True(t, r.Supports([]string{"Deprecated", "Data"}))
	require.False(t, r.Supports([]string{"Deprecated", "Override"}))
}

func TestGeneratedClassReserializes(t *testing.T) {
	g, info, cf := newGen(t, pointClass())
	require.NoError(t, bytecode.DataHandler{}.Apply(g, info))

	out, err := classfile.Write(cf)
	require.NoError(t, err)

	reparsed, err := classfile.Parse(bytes.NewReader(out))
	require.NoError(t, err)
	require.True(t, reparsed.HasMethod("equals", "(Ljava/lang/Object;)Z"))

	again, err := classfile.Write(reparsed)
	require.NoError(t, err)
	require.Equal(t, out, again)
}
