package bytecode

import (
	"github.com/classweave/classweave/internal/classfile"
	"github.com/classweave/classweave/internal/model"
)

const (
	javaLangObject = "java/lang/Object"
	equalsDesc     = "(Ljava/lang/Object;)Z"
	hashCodeDesc   = "()I"
	getClassDesc   = "()Ljava/lang/Class;"
)

// EqualsAndHashCodeHandler emits the equals/hashCode pair over the
// non-static fields. Each method is generated independently and only if
// missing; a pre-existing asymmetric pair is surfaced as a warning, never
// auto-fixed.
type EqualsAndHashCodeHandler struct{}

func (EqualsAndHashCodeHandler) Annotation() string { return "EqualsAndHashCode" }

func (h EqualsAndHashCodeHandler) Apply(g *Gen, info *model.ClassInfo) error {
	hasEquals := info.HasMethod("equals", equalsDesc)
	hasHashCode := info.HasMethod("hashCode", hashCodeDesc)
	if hasEquals != hasHashCode {
		g.Log().Warn("class defines only one of equals/hashCode; the pair should be kept in sync",
			"class", info.Name, "equals", hasEquals, "hashCode", hasHashCode)
	}

	if !g.HasMethod("equals", equalsDesc) {
		if err := h.emitEquals(g, info); err != nil {
			return err
		}
	} else {
		g.Log().Debug("equals already defined, skipping", "class", info.Name)
	}

	if !g.HasMethod("hashCode", hashCodeDesc) {
		if err := h.emitHashCode(g, info); err != nil {
			return err
		}
	} else {
		g.Log().Debug("hashCode already defined, skipping", "class", info.Name)
	}
	return nil
}

// emitEquals generates the standard contract: reference identity, null
// check, strict getClass() comparison, then per-field comparison with
// type-appropriate semantics.
func (h EqualsAndHashCodeHandler) emitEquals(g *Gen, info *model.ClassInfo) error {
	fields := info.InstanceFields()

	a := NewAsm(g.Pool())
	checks := a.NewLabel()
	retFalse := a.NewLabel()

	// this == o -> true
	a.LoadThis()
	a.Load("L", 1)
	a.Branch(opIfAcmpne, checks)
	a.Iconst(1)
	a.Return("Z")

	a.Bind(checks)
	a.Frame(checks, info.Name, javaLangObject)

	// o == null -> false
	a.Load("L", 1)
	a.Branch(opIfnull, retFalse)

	// exact class match, not instanceof
	a.LoadThis()
	a.InvokeVirtual(javaLangObject, "getClass", getClassDesc)
	a.Load("L", 1)
	a.InvokeVirtual(javaLangObject, "getClass", getClassDesc)
	a.Branch(opIfAcmpne, retFalse)

	var retFalseCast Label
	if len(fields) > 0 {
		a.Load("L", 1)
		a.Checkcast(info.Name)
		a.AStore(2)

		retFalseCast = a.NewLabel()
		for _, f := range fields {
			h.emitFieldCompare(a, info.Name, f, retFalseCast)
		}
	}
	a.Iconst(1)
	a.Return("Z")

	a.Bind(retFalse)
	a.Frame(retFalse, info.Name, javaLangObject)
	a.Iconst(0)
	a.Return("Z")

	if len(fields) > 0 {
		a.Bind(retFalseCast)
		a.Frame(retFalseCast, info.Name, javaLangObject, info.Name)
		a.Iconst(0)
		a.Return("Z")
	}

	maxStack := 2
	for _, f := range fields {
		if s := 2 * classfile.SlotWidth(f.Descriptor); s > maxStack {
			maxStack = s
		}
	}
	maxLocals := 2
	if len(fields) > 0 {
		maxLocals = 3
	}
	return g.AddMethod(classfile.AccPublic, "equals", equalsDesc, a, maxStack, maxLocals)
}

// emitFieldCompare pushes this.f and other.f and branches to retFalse on
// mismatch. Comparison semantics follow the field type: icmp for the int
// category, lcmp for long, Float/Double.compare for IEEE types, null-safe
// Objects.equals for references.
func (EqualsAndHashCodeHandler) emitFieldCompare(a *Asm, owner string, f model.FieldData, retFalse Label) {
	a.LoadThis()
	a.GetField(owner, f.Name, f.Descriptor)
	a.Load("L", 2)
	a.GetField(owner, f.Name, f.Descriptor)

	switch f.Descriptor {
	case "I", "S", "B", "C", "Z":
		a.Branch(opIfIcmpne, retFalse)
	case "J":
		a.Lcmp()
		a.Branch(opIfne, retFalse)
	case "F":
		a.InvokeStatic("java/lang/Float", "compare", "(FF)I")
		a.Branch(opIfne, retFalse)
	case "D":
		a.InvokeStatic("java/lang/Double", "compare", "(DD)I")
		a.Branch(opIfne, retFalse)
	default:
		a.InvokeStatic("java/util/Objects", "equals", "(Ljava/lang/Object;Ljava/lang/Object;)Z")
		a.Branch(opIfeq, retFalse)
	}
}

// emitHashCode combines all non-static field values through
// Objects.hash(Object...), boxing primitives. An empty field set hashes
// to the constant 0.
func (EqualsAndHashCodeHandler) emitHashCode(g *Gen, info *model.ClassInfo) error {
	fields := info.InstanceFields()

	a := NewAsm(g.Pool())
	if len(fields) == 0 {
		a.Iconst(0)
		a.Return("I")
		return g.AddMethod(classfile.AccPublic, "hashCode", hashCodeDesc, a, 1, 1)
	}

	a.Iconst(len(fields))
	a.ANewArray(javaLangObject)
	for i, f := range fields {
		a.Dup()
		a.Iconst(i)
		a.LoadThis()
		a.GetField(info.Name, f.Name, f.Descriptor)
		if owner, sig, ok := boxFor(f.Descriptor); ok {
			a.InvokeStatic(owner, "valueOf", sig)
		}
		a.AAStore()
	}
	a.InvokeStatic("java/util/Objects", "hash", "([Ljava/lang/Object;)I")
	a.Return("I")

	maxStack := 4
	for _, f := range fields {
		if s := 3 + classfile.SlotWidth(f.Descriptor); s > maxStack {
			maxStack = s
		}
	}
	return g.AddMethod(classfile.AccPublic, "hashCode", hashCodeDesc, a, maxStack, 1)
}
