// Package model holds the read-only structural index a transformation
// runs against: one ClassInfo per class, built before any handler executes.
package model

import (
	"github.com/classweave/classweave/internal/classfile"
)

// NonNullAnnotation is the simple name of the field marker that makes a
// non-final field count as required for constructor generation.
const NonNullAnnotation = "NonNull"

// FieldData describes one declared field.
type FieldData struct {
	Name       string
	Descriptor string
	IsStatic   bool
	IsFinal    bool
	// NonNull is set when the field carries a NonNull marker annotation.
	NonNull bool
}

// ClassInfo is the structural index of one class being transformed.
// Field order is declaration order; generated constructor parameters and
// toString/equals iteration all derive from it.
type ClassInfo struct {
	Name      string // internal (slash-separated) name
	SuperName string
	Fields    []FieldData

	methods map[string]struct{} // "name+descriptor" pairs already present
}

// Build scans a parsed class file into a ClassInfo.
func Build(cf *classfile.ClassFile) (*ClassInfo, error) {
	name, err := cf.ClassName()
	if err != nil {
		return nil, err
	}
	superName, err := cf.SuperClassName()
	if err != nil {
		return nil, err
	}

	info := &ClassInfo{
		Name:      name,
		SuperName: superName,
		Fields:    make([]FieldData, 0, len(cf.Fields)),
		methods:   make(map[string]struct{}, len(cf.Methods)),
	}

	for i := range cf.Fields {
		f := &cf.Fields[i]
		fd := FieldData{
			Name:       f.Name,
			Descriptor: f.Descriptor,
			IsStatic:   f.AccessFlags.IsStatic(),
			IsFinal:    f.AccessFlags.IsFinal(),
		}
		anns, err := classfile.ReadAnnotations(cf.Pool, f.Attributes)
		if err != nil {
			return nil, err
		}
		for _, a := range anns {
			if a.SimpleName() == NonNullAnnotation {
				fd.NonNull = true
				break
			}
		}
		info.Fields = append(info.Fields, fd)
	}

	for i := range cf.Methods {
		info.methods[cf.Methods[i].Name+cf.Methods[i].Descriptor] = struct{}{}
	}

	return info, nil
}

// HasMethod reports whether a method with the exact name and descriptor
// already exists. Handlers use this for skip-if-exists generation; the JVM
// rejects duplicate signatures within one class.
func (c *ClassInfo) HasMethod(name, descriptor string) bool {
	_, ok := c.methods[name+descriptor]
	return ok
}

// InstanceFields returns the non-static fields in declaration order.
func (c *ClassInfo) InstanceFields() []FieldData {
	out := make([]FieldData, 0, len(c.Fields))
	for _, f := range c.Fields {
		if !f.IsStatic {
			out = append(out, f)
		}
	}
	return out
}

// RequiredFields returns the non-static fields that must be supplied at
// construction time: final fields plus NonNull-marked ones.
func (c *ClassInfo) RequiredFields() []FieldData {
	out := make([]FieldData, 0, len(c.Fields))
	for _, f := range c.Fields {
		if f.IsStatic {
			continue
		}
		if f.IsFinal || f.NonNull {
			out = append(out, f)
		}
	}
	return out
}
