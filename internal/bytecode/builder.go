package bytecode

import (
	"github.com/classweave/classweave/internal/classfile"
	"github.com/classweave/classweave/internal/model"
)

// BuilderHandler emits only the static builder() factory returning an
// instance of the companion "<Class>$Builder" type. The companion class
// itself is not generated by this subsystem; the source-level generator is
// the fuller alternative, and the gap is surfaced as a build note rather
// than silently pretended away.
type BuilderHandler struct{}

func (BuilderHandler) Annotation() string { return "Builder" }

func (h BuilderHandler) Apply(g *Gen, info *model.ClassInfo) error {
	builderClass := info.Name + "$Builder"
	descriptor := "()L" + builderClass + ";"
	if g.HasMethod("builder", descriptor) {
		g.Log().Debug("builder() already defined, skipping", "class", info.Name)
		return nil
	}

	g.Log().Info("builder() generated; the companion builder class is not emitted here, use the source generator for full builder support",
		"class", info.Name, "companion", builderClass)

	a := NewAsm(g.Pool())
	a.New(builderClass)
	a.Dup()
	a.InvokeSpecial(builderClass, "<init>", "()V")
	a.Return("L" + builderClass + ";")

	return g.AddMethod(classfile.AccPublic|classfile.AccStatic, "builder", descriptor, a, 2, 0)
}
