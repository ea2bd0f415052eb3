package bytecode

import (
	"github.com/classweave/classweave/internal/classfile"
	"github.com/classweave/classweave/internal/model"
)

// emitConstructor generates an <init> taking the given fields as parameters
// in declaration order: super() call, then one putfield per parameter.
// Parameter slots advance by the JVM width rule (two slots for long/double).
func emitConstructor(g *Gen, info *model.ClassInfo, fields []model.FieldData) error {
	params := make([]string, len(fields))
	for i, f := range fields {
		params[i] = f.Descriptor
	}
	descriptor := classfile.MethodDescriptor(params, "V")
	if g.HasMethod("<init>", descriptor) {
		g.Log().Debug("constructor already defined, skipping",
			"class", info.Name, "descriptor", descriptor)
		return nil
	}

	superName := info.SuperName
	if superName == "" {
		superName = javaLangObject
	}

	a := NewAsm(g.Pool())
	a.LoadThis()
	a.InvokeSpecial(superName, "<init>", "()V")

	slot := 1
	maxStack := 1 // the super() receiver
	for _, f := range fields {
		a.LoadThis()
		a.Load(f.Descriptor, slot)
		a.PutField(info.Name, f.Name, f.Descriptor)
		width := classfile.SlotWidth(f.Descriptor)
		slot += width
		if s := 1 + width; s > maxStack {
			maxStack = s
		}
	}
	a.Return("V")

	return g.AddMethod(classfile.AccPublic, "<init>", descriptor, a, maxStack, slot)
}

// AllArgsConstructorHandler emits a constructor over every non-static field.
type AllArgsConstructorHandler struct{}

func (AllArgsConstructorHandler) Annotation() string { return "AllArgsConstructor" }

func (h AllArgsConstructorHandler) Apply(g *Gen, info *model.ClassInfo) error {
	fields := info.InstanceFields()
	if len(fields) == 0 {
		g.Log().Info("no instance fields, skipping all-args constructor", "class", info.Name)
		return nil
	}
	return emitConstructor(g, info, fields)
}

// NoArgsConstructorHandler emits a zero-argument constructor that only
// calls the superclass's zero-argument constructor.
type NoArgsConstructorHandler struct{}

func (NoArgsConstructorHandler) Annotation() string { return "NoArgsConstructor" }

func (h NoArgsConstructorHandler) Apply(g *Gen, info *model.ClassInfo) error {
	return emitConstructor(g, info, nil)
}

// RequiredArgsConstructorHandler emits a constructor over the required
// fields: final ones plus those marked NonNull.
type RequiredArgsConstructorHandler struct{}

func (RequiredArgsConstructorHandler) Annotation() string { return "RequiredArgsConstructor" }

func (h RequiredArgsConstructorHandler) Apply(g *Gen, info *model.ClassInfo) error {
	fields := info.RequiredFields()
	if len(fields) == 0 {
		g.Log().Info("no required fields, skipping required-args constructor", "class", info.Name)
		return nil
	}
	return emitConstructor(g, info, fields)
}
