package bytecode

import (
	"github.com/classweave/classweave/internal/classfile"
	"github.com/classweave/classweave/internal/model"
)

const (
	stringBuilder  = "java/lang/StringBuilder"
	stringDesc     = "Ljava/lang/String;"
	toStringDesc   = "()Ljava/lang/String;"
	appendOfString = "(Ljava/lang/String;)Ljava/lang/StringBuilder;"
)

// ToStringHandler emits a toString of the form
// "Simple(field1=value1, field2=value2)" over the non-static fields in
// declaration order.
type ToStringHandler struct{}

func (ToStringHandler) Annotation() string { return "ToString" }

func (h ToStringHandler) Apply(g *Gen, info *model.ClassInfo) error {
	if g.HasMethod("toString", toStringDesc) {
		g.Log().Debug("toString already defined, skipping", "class", info.Name)
		return nil
	}

	fields := info.InstanceFields()

	a := NewAsm(g.Pool())
	a.New(stringBuilder)
	a.Dup()
	a.InvokeSpecial(stringBuilder, "<init>", "()V")
	a.LdcString(classfile.SimpleName(info.Name) + "(")
	a.InvokeVirtual(stringBuilder, "append", appendOfString)

	for i, f := range fields {
		label := f.Name + "="
		if i > 0 {
			label = ", " + label
		}
		a.LdcString(label)
		a.InvokeVirtual(stringBuilder, "append", appendOfString)
		a.LoadThis()
		a.GetField(info.Name, f.Name, f.Descriptor)
		a.InvokeVirtual(stringBuilder, "append", appendDescriptor(f.Descriptor))
	}

	a.LdcString(")")
	a.InvokeVirtual(stringBuilder, "append", appendOfString)
	a.InvokeVirtual(stringBuilder, "toString", toStringDesc)
	a.Return(stringDesc)

	// builder ref plus the widest appended value
	maxStack := 2
	for _, f := range fields {
		if s := 1 + classfile.SlotWidth(f.Descriptor); s > maxStack {
			maxStack = s
		}
	}
	return g.AddMethod(classfile.AccPublic, "toString", toStringDesc, a, maxStack, 1)
}
