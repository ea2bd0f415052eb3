package classfile

import (
	"fmt"
	"strings"
)

// Attribute names carrying annotation data. Source-retention markers never
// reach the class file; class-retention markers land in the invisible set,
// runtime-retention markers in the visible one. Both are scanned.
const (
	AttrRuntimeVisibleAnnotations   = "RuntimeVisibleAnnotations"
	AttrRuntimeInvisibleAnnotations = "RuntimeInvisibleAnnotations"
)

// Annotation is one annotation read from a class or field attribute.
// Element values are skipped structurally but not interpreted.
type Annotation struct {
	Type string // type descriptor, e.g. "Llombok/Getter;"
}

// SimpleName returns the bare annotation type name: "Llombok/Getter;" -> "Getter".
func (a Annotation) SimpleName() string {
	t := strings.TrimSuffix(strings.TrimPrefix(a.Type, "L"), ";")
	if i := strings.LastIndexByte(t, '/'); i >= 0 {
		t = t[i+1:]
	}
	return t
}

// PackagePrefix returns the internal-name package of the annotation type:
// "Llombok/experimental/Accessors;" -> "lombok/experimental".
func (a Annotation) PackagePrefix() string {
	t := strings.TrimSuffix(strings.TrimPrefix(a.Type, "L"), ";")
	if i := strings.LastIndexByte(t, '/'); i >= 0 {
		return t[:i]
	}
	return ""
}

// ReadAnnotations decodes every annotation found in the RuntimeVisible and
// RuntimeInvisible annotation attributes of attrs.
func ReadAnnotations(pool Pool, attrs []AttributeInfo) ([]Annotation, error) {
	var out []Annotation
	for i := range attrs {
		if attrs[i].Name != AttrRuntimeVisibleAnnotations && attrs[i].Name != AttrRuntimeInvisibleAnnotations {
			continue
		}
		anns, err := decodeAnnotations(pool, attrs[i].Data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", attrs[i].Name, err)
		}
		out = append(out, anns...)
	}
	return out, nil
}

func decodeAnnotations(pool Pool, data []byte) ([]Annotation, error) {
	c := &cursor{data: data}
	count := c.u2()
	if c.err != nil {
		return nil, c.err
	}
	anns := make([]Annotation, 0, count)
	for i := uint16(0); i < count; i++ {
		typeIndex := c.readAnnotation()
		if c.err != nil {
			return nil, fmt.Errorf("annotation %d: %w", i, c.err)
		}
		desc, err := pool.Utf8(typeIndex)
		if err != nil {
			return nil, fmt.Errorf("annotation %d type: %w", i, err)
		}
		anns = append(anns, Annotation{Type: desc})
	}
	return anns, nil
}

// cursor walks an attribute payload with a sticky error.
type cursor struct {
	data []byte
	off  int
	err  error
}

func (c *cursor) u1() uint8 {
	if c.err != nil {
		return 0
	}
	if c.off+1 > len(c.data) {
		c.err = fmt.Errorf("truncated at offset %d", c.off)
		return 0
	}
	v := c.data[c.off]
	c.off++
	return v
}

func (c *cursor) u2() uint16 {
	hi := uint16(c.u1())
	lo := uint16(c.u1())
	return hi<<8 | lo
}

// readAnnotation consumes one annotation structure and returns its type index.
func (c *cursor) readAnnotation() uint16 {
	typeIndex := c.u2()
	pairs := c.u2()
	for i := uint16(0); i < pairs && c.err == nil; i++ {
		c.u2() // element_name_index
		c.skipElementValue()
	}
	return typeIndex
}

// skipElementValue consumes one element_value of any form.
func (c *cursor) skipElementValue() {
	tag := c.u1()
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's', 'c':
		c.u2() // const_value_index or class_info_index
	case 'e':
		c.u2() // type_name_index
		c.u2() // const_name_index
	case '@':
		c.readAnnotation()
	case '[':
		n := c.u2()
		for i := uint16(0); i < n && c.err == nil; i++ {
			c.skipElementValue()
		}
	default:
		if c.err == nil {
			c.err = fmt.Errorf("unknown element_value tag %q at offset %d", tag, c.off-1)
		}
	}
}
