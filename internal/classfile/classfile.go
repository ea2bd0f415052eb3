// Package classfile reads and writes the JVM class-file format at the
// structural level: constant pool, fields, methods and raw attributes.
// Method bodies are carried as opaque attribute payloads; the package
// supports appending members, never rewriting existing ones.
package classfile

import "strings"

// ClassFile is one parsed class.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	Pool         Pool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   []AttributeInfo
}

// FieldInfo is a field_info structure. Name and Descriptor are resolved
// from the pool at parse time; the indices are kept for re-emission.
type FieldInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Name            string
	Descriptor      string
	Attributes      []AttributeInfo
}

// MethodInfo is a method_info structure.
type MethodInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Name            string
	Descriptor      string
	Attributes      []AttributeInfo
}

// AttributeInfo is a raw attribute: resolved name plus opaque payload.
type AttributeInfo struct {
	NameIndex uint16
	Name      string
	Data      []byte
}

// ClassName returns the internal (slash-separated) name of this class.
func (cf *ClassFile) ClassName() (string, error) {
	return cf.Pool.ClassName(cf.ThisClass)
}

// SuperClassName returns the internal name of the direct superclass,
// or "" when this class is java/lang/Object.
func (cf *ClassFile) SuperClassName() (string, error) {
	if cf.SuperClass == 0 {
		return "", nil
	}
	return cf.Pool.ClassName(cf.SuperClass)
}

// HasMethod reports whether a method with the exact name and descriptor exists.
func (cf *ClassFile) HasMethod(name, descriptor string) bool {
	for i := range cf.Methods {
		if cf.Methods[i].Name == name && cf.Methods[i].Descriptor == descriptor {
			return true
		}
	}
	return false
}

// FindAttribute returns the first class-level attribute with the given name.
func (cf *ClassFile) FindAttribute(name string) *AttributeInfo {
	for i := range cf.Attributes {
		if cf.Attributes[i].Name == name {
			return &cf.Attributes[i]
		}
	}
	return nil
}

// SimpleName returns the part of an internal class name after the last '/'.
func SimpleName(internal string) string {
	if i := strings.LastIndexByte(internal, '/'); i >= 0 {
		return internal[i+1:]
	}
	return internal
}
