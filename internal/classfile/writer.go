package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// ByteWriter accumulates big-endian class-file data.
type ByteWriter struct {
	buf bytes.Buffer
}

func (w *ByteWriter) U1(v uint8)     { w.buf.WriteByte(v) }
func (w *ByteWriter) U2(v uint16)    { _ = binary.Write(&w.buf, binary.BigEndian, v) }
func (w *ByteWriter) U4(v uint32)    { _ = binary.Write(&w.buf, binary.BigEndian, v) }
func (w *ByteWriter) Write(b []byte) { w.buf.Write(b) }
func (w *ByteWriter) Bytes() []byte  { return w.buf.Bytes() }
func (w *ByteWriter) Len() int       { return w.buf.Len() }

// Write serializes a class file back to bytes in format order:
// magic, version, pool, flags, this/super, interfaces, fields, methods, attributes.
func Write(cf *ClassFile) ([]byte, error) {
	w := &ByteWriter{}

	w.U4(Magic)
	w.U2(cf.MinorVersion)
	w.U2(cf.MajorVersion)

	if err := writePool(w, cf.Pool); err != nil {
		return nil, fmt.Errorf("writing constant pool: %w", err)
	}

	w.U2(uint16(cf.AccessFlags))
	w.U2(cf.ThisClass)
	w.U2(cf.SuperClass)

	w.U2(uint16(len(cf.Interfaces)))
	for _, idx := range cf.Interfaces {
		w.U2(idx)
	}

	w.U2(uint16(len(cf.Fields)))
	for i := range cf.Fields {
		f := &cf.Fields[i]
		w.U2(uint16(f.AccessFlags))
		w.U2(f.NameIndex)
		w.U2(f.DescriptorIndex)
		writeAttributes(w, f.Attributes)
	}

	w.U2(uint16(len(cf.Methods)))
	for i := range cf.Methods {
		m := &cf.Methods[i]
		w.U2(uint16(m.AccessFlags))
		w.U2(m.NameIndex)
		w.U2(m.DescriptorIndex)
		writeAttributes(w, m.Attributes)
	}

	writeAttributes(w, cf.Attributes)

	return w.Bytes(), nil
}

func writePool(w *ByteWriter, pool Pool) error {
	if len(pool) > maxPoolSize {
		return fmt.Errorf("constant pool overflow: %d entries", len(pool))
	}
	w.U2(uint16(len(pool)))

	for i := 1; i < len(pool); i++ {
		e := pool[i]
		if e == nil {
			continue // slot 0 and the shadow slot after Long/Double
		}
		w.U1(e.Tag())

		switch c := e.(type) {
		case *ConstUtf8:
			w.U2(uint16(len(c.Value)))
			w.Write([]byte(c.Value))
		case *ConstInteger:
			w.U4(uint32(c.Value))
		case *ConstFloat:
			w.U4(math.Float32bits(c.Value))
		case *ConstLong:
			w.U4(uint32(uint64(c.Value) >> 32))
			w.U4(uint32(uint64(c.Value)))
		case *ConstDouble:
			bits := math.Float64bits(c.Value)
			w.U4(uint32(bits >> 32))
			w.U4(uint32(bits))
		case *ConstClass:
			w.U2(c.NameIndex)
		case *ConstString:
			w.U2(c.StringIndex)
		case *ConstFieldref:
			w.U2(c.ClassIndex)
			w.U2(c.NameAndTypeIndex)
		case *ConstMethodref:
			w.U2(c.ClassIndex)
			w.U2(c.NameAndTypeIndex)
		case *ConstInterfaceMethodref:
			w.U2(c.ClassIndex)
			w.U2(c.NameAndTypeIndex)
		case *ConstNameAndType:
			w.U2(c.NameIndex)
			w.U2(c.DescriptorIndex)
		case *ConstRaw:
			w.Write(c.Data)
		default:
			return fmt.Errorf("unknown constant pool entry %T at index %d", e, i)
		}
	}

	return nil
}

func writeAttributes(w *ByteWriter, attrs []AttributeInfo) {
	w.U2(uint16(len(attrs)))
	for i := range attrs {
		w.U2(attrs[i].NameIndex)
		w.U4(uint32(len(attrs[i].Data)))
		w.Write(attrs[i].Data)
	}
}
