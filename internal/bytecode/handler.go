package bytecode

import (
	"fmt"
	"log/slog"

	"github.com/classweave/classweave/internal/classfile"
	"github.com/classweave/classweave/internal/model"
)

// Handler is one code-generation strategy: given the generation context and
// the class index, it appends members into the class being rewritten.
type Handler interface {
	// Annotation is the simple name of the annotation that triggers this handler.
	Annotation() string
	Apply(g *Gen, info *model.ClassInfo) error
}

// Gen is the per-class generation context shared by all handlers of one
// transformation: the class under rewrite, its pool, and the build log.
type Gen struct {
	cf    *classfile.ClassFile
	log   *slog.Logger
	added []string
}

// NewGen wraps a parsed class for member generation.
func NewGen(cf *classfile.ClassFile, log *slog.Logger) *Gen {
	return &Gen{cf: cf, log: log}
}

// Pool returns the class's constant pool for appending.
func (g *Gen) Pool() *classfile.Pool { return &g.cf.Pool }

// Log returns the build log.
func (g *Gen) Log() *slog.Logger { return g.log }

// HasMethod reports whether the class already carries the signature,
// including methods appended earlier in the same transformation.
func (g *Gen) HasMethod(name, descriptor string) bool {
	return g.cf.HasMethod(name, descriptor)
}

// Added lists the "name descriptor" signatures appended so far.
func (g *Gen) Added() []string { return g.added }

// AddMethod finalizes an assembled body and appends it as a new method.
func (g *Gen) AddMethod(access classfile.AccessFlags, name, descriptor string, a *Asm, maxStack, maxLocals int) error {
	code, err := a.Code(maxStack, maxLocals)
	if err != nil {
		return fmt.Errorf("assembling %s%s: %w", name, descriptor, err)
	}

	pool := &g.cf.Pool
	nameIndex, err := pool.AddUtf8(name)
	if err != nil {
		return err
	}
	descIndex, err := pool.AddUtf8(descriptor)
	if err != nil {
		return err
	}
	codeIndex, err := pool.AddUtf8("Code")
	if err != nil {
		return err
	}

	g.cf.Methods = append(g.cf.Methods, classfile.MethodInfo{
		AccessFlags:     access,
		NameIndex:       nameIndex,
		DescriptorIndex: descIndex,
		Name:            name,
		Descriptor:      descriptor,
		Attributes: []classfile.AttributeInfo{
			{NameIndex: codeIndex, Name: "Code", Data: code},
		},
	})
	g.added = append(g.added, name+" "+descriptor)
	return nil
}

// Registry maps annotation simple names to handlers in a fixed order.
// Handlers are stateless and shared across all classes of a run.
type Registry struct {
	order    []string
	handlers map[string]Handler
}

// NewRegistry builds the default registry. Registration order is fixed and
// is the order handlers run in when a class carries several annotations.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[string]Handler)}
	for _, h := range []Handler{
		GetterHandler{},
		SetterHandler{},
		ToStringHandler{},
		EqualsAndHashCodeHandler{},
		AllArgsConstructorHandler{},
		NoArgsConstructorHandler{},
		RequiredArgsConstructorHandler{},
		BuilderHandler{},
		DataHandler{},
		ValueHandler{},
	} {
		r.register(h)
	}
	return r
}

func (r *Registry) register(h Handler) {
	name := h.Annotation()
	if _, dup := r.handlers[name]; dup {
		panic("duplicate handler registration: " + name)
	}
	r.order = append(r.order, name)
	r.handlers[name] = h
}

// Lookup returns the handler registered for the annotation simple name.
func (r *Registry) Lookup(annotation string) (Handler, bool) {
	h, ok := r.handlers[annotation]
	return h, ok
}

// Names returns the registered annotation names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Supports reports whether any of the given annotation simple names has a handler.
func (r *Registry) Supports(annotations []string) bool {
	for _, a := range annotations {
		if _, ok := r.handlers[a]; ok {
			return true
		}
	}
	return false
}
