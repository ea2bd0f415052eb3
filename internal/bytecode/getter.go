package bytecode

import (
	"github.com/classweave/classweave/internal/classfile"
	"github.com/classweave/classweave/internal/model"
)

// GetterHandler emits a JavaBean getter for every non-static field that
// does not already have one.
type GetterHandler struct{}

func (GetterHandler) Annotation() string { return "Getter" }

func (h GetterHandler) Apply(g *Gen, info *model.ClassInfo) error {
	for _, f := range info.InstanceFields() {
		name := getterName(f)
		descriptor := "()" + f.Descriptor
		if g.HasMethod(name, descriptor) {
			g.Log().Debug("getter already defined, skipping",
				"class", info.Name, "method", name)
			continue
		}

		a := NewAsm(g.Pool())
		a.LoadThis()
		a.GetField(info.Name, f.Name, f.Descriptor)
		a.Return(f.Descriptor)

		maxStack := classfile.SlotWidth(f.Descriptor)
		if err := g.AddMethod(classfile.AccPublic, name, descriptor, a, maxStack, 1); err != nil {
			return err
		}
	}
	return nil
}

// SetterHandler emits a JavaBean setter for every non-static, non-final
// field that does not already have one. Final fields stay immutable
// post-construction.
type SetterHandler struct{}

func (SetterHandler) Annotation() string { return "Setter" }

func (h SetterHandler) Apply(g *Gen, info *model.ClassInfo) error {
	for _, f := range info.InstanceFields() {
		if f.IsFinal {
			continue
		}
		name := setterName(f)
		descriptor := "(" + f.Descriptor + ")V"
		if g.HasMethod(name, descriptor) {
			g.Log().Debug("setter already defined, skipping",
				"class", info.Name, "method", name)
			continue
		}

		a := NewAsm(g.Pool())
		a.LoadThis()
		a.Load(f.Descriptor, 1)
		a.PutField(info.Name, f.Name, f.Descriptor)
		a.Return("V")

		width := classfile.SlotWidth(f.Descriptor)
		if err := g.AddMethod(classfile.AccPublic, name, descriptor, a, 1+width, 1+width); err != nil {
			return err
		}
	}
	return nil
}
