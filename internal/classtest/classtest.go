// Package classtest builds small synthetic class files for tests.
package classtest

import (
	"github.com/classweave/classweave/internal/classfile"
)

// Field describes one fixture field.
type Field struct {
	Access      classfile.AccessFlags
	Name        string
	Descriptor  string
	Annotations []string // annotation type descriptors
}

// Method describes one pre-existing fixture method signature. The body is
// left empty; the transformer never looks inside it.
type Method struct {
	Access     classfile.AccessFlags
	Name       string
	Descriptor string
}

// Class describes one fixture class.
type Class struct {
	Name        string // internal name
	Super       string // internal name; defaults to java/lang/Object
	Major       uint16 // defaults to 52 (Java 8)
	Annotations []string
	Fields      []Field
	Methods     []Method
}

// Bytes serializes the fixture to class-file bytes.
func (c Class) Bytes() ([]byte, error) {
	super := c.Super
	if super == "" {
		super = "java/lang/Object"
	}
	major := c.Major
	if major == 0 {
		major = 52
	}

	cf := &classfile.ClassFile{
		MajorVersion: major,
		Pool:         make(classfile.Pool, 1),
		AccessFlags:  classfile.AccPublic | classfile.AccSuper,
	}

	var err error
	if cf.ThisClass, err = cf.Pool.AddClass(c.Name); err != nil {
		return nil, err
	}
	if cf.SuperClass, err = cf.Pool.AddClass(super); err != nil {
		return nil, err
	}

	for _, f := range c.Fields {
		nameIndex, err := cf.Pool.AddUtf8(f.Name)
		if err != nil {
			return nil, err
		}
		descIndex, err := cf.Pool.AddUtf8(f.Descriptor)
		if err != nil {
			return nil, err
		}
		fi := classfile.FieldInfo{
			AccessFlags:     f.Access,
			NameIndex:       nameIndex,
			DescriptorIndex: descIndex,
			Name:            f.Name,
			Descriptor:      f.Descriptor,
		}
		if len(f.Annotations) > 0 {
			attr, err := annotationsAttr(&cf.Pool, f.Annotations)
			if err != nil {
				return nil, err
			}
			fi.Attributes = append(fi.Attributes, attr)
		}
		cf.Fields = append(cf.Fields, fi)
	}

	for _, m := range c.Methods {
		nameIndex, err := cf.Pool.AddUtf8(m.Name)
		if err != nil {
			return nil, err
		}
		descIndex, err := cf.Pool.AddUtf8(m.Descriptor)
		if err != nil {
			return nil, err
		}
		cf.Methods = append(cf.Methods, classfile.MethodInfo{
			AccessFlags:     m.Access,
			NameIndex:       nameIndex,
			DescriptorIndex: descIndex,
			Name:            m.Name,
			Descriptor:      m.Descriptor,
		})
	}

	if len(c.Annotations) > 0 {
		attr, err := annotationsAttr(&cf.Pool, c.Annotations)
		if err != nil {
			return nil, err
		}
		cf.Attributes = append(cf.Attributes, attr)
	}

	return classfile.Write(cf)
}

// annotationsAttr encodes a RuntimeVisibleAnnotations attribute holding
// zero-element annotations of the given type descriptors.
func annotationsAttr(pool *classfile.Pool, descriptors []string) (classfile.AttributeInfo, error) {
	nameIndex, err := pool.AddUtf8(classfile.AttrRuntimeVisibleAnnotations)
	if err != nil {
		return classfile.AttributeInfo{}, err
	}

	w := &classfile.ByteWriter{}
	w.U2(uint16(len(descriptors)))
	for _, d := range descriptors {
		typeIndex, err := pool.AddUtf8(d)
		if err != nil {
			return classfile.AttributeInfo{}, err
		}
		w.U2(typeIndex)
		w.U2(0) // no element-value pairs
	}

	return classfile.AttributeInfo{
		NameIndex: nameIndex,
		Name:      classfile.AttrRuntimeVisibleAnnotations,
		Data:      w.Bytes(),
	}, nil
}
