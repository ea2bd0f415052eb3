// Package gostubs renders Go mirror structs for transformed classes, so
// build tooling and tests can work with the same shapes natively. It is
// the source-level counterpart of the bytecode handlers: one Go struct
// per class, descriptor-mapped field types, and slice adders named with
// the singularized field name.
package gostubs

import (
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/jinzhu/inflection"

	"github.com/classweave/classweave/internal/classfile"
	"github.com/classweave/classweave/internal/model"
)

// Generator renders mirror stubs into one Go source file.
type Generator struct {
	pkg string
}

// New returns a generator emitting into the named Go package.
func New(pkg string) *Generator {
	return &Generator{pkg: pkg}
}

// File renders one Go file containing a mirror struct per class.
func (g *Generator) File(infos []*model.ClassInfo) *jen.File {
	f := jen.NewFile(g.pkg)
	f.HeaderComment("Code generated by classweave. DO NOT EDIT.")

	for _, info := range infos {
		g.mirrorStruct(f, info)
	}
	return f
}

func (g *Generator) mirrorStruct(f *jen.File, info *model.ClassInfo) {
	name := classfile.SimpleName(info.Name)

	fields := make([]jen.Code, 0, len(info.Fields))
	for _, fd := range info.InstanceFields() {
		fields = append(fields, jen.Id(exported(fd.Name)).
			Add(goType(fd.Descriptor)).
			Tag(map[string]string{"java": fd.Name + "," + fd.Descriptor}))
	}

	f.Commentf("%s mirrors %s.", name, info.Name)
	f.Type().Id(name).Struct(fields...)

	// slice adders, named after the singular of the field name
	for _, fd := range info.InstanceFields() {
		if !isCollection(fd.Descriptor) {
			continue
		}
		adder := "Add" + exported(inflection.Singular(fd.Name))
		f.Func().Params(jen.Id("m").Op("*").Id(name)).Id(adder).
			Params(jen.Id("v").Add(elementType(fd.Descriptor))).
			Block(
				jen.Id("m").Dot(exported(fd.Name)).Op("=").
					Append(jen.Id("m").Dot(exported(fd.Name)), jen.Id("v")),
			)
	}
}

// isCollection reports whether the descriptor maps to a Go slice: JVM
// arrays plus the untyped List and Set (generics are erased in descriptors).
func isCollection(descriptor string) bool {
	return strings.HasPrefix(descriptor, "[") ||
		descriptor == "Ljava/util/List;" || descriptor == "Ljava/util/Set;"
}

// elementType returns the Go element type a collection field holds.
func elementType(descriptor string) *jen.Statement {
	if strings.HasPrefix(descriptor, "[") {
		return goType(descriptor[1:])
	}
	return jen.Any()
}

func exported(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// goType maps a field descriptor onto the closest Go type.
func goType(descriptor string) *jen.Statement {
	switch descriptor {
	case "Z":
		return jen.Bool()
	case "B":
		return jen.Int8()
	case "S":
		return jen.Int16()
	case "C":
		return jen.Rune()
	case "I":
		return jen.Int32()
	case "J":
		return jen.Int64()
	case "F":
		return jen.Float32()
	case "D":
		return jen.Float64()
	case "Ljava/lang/String;":
		return jen.String()
	case "Ljava/util/List;", "Ljava/util/Set;":
		return jen.Index().Any()
	}
	if strings.HasPrefix(descriptor, "[") {
		return jen.Index().Add(goType(descriptor[1:]))
	}
	return jen.Any()
}
