package classfile

import "fmt"

// Entry is implemented by all constant pool entry types.
type Entry interface {
	Tag() uint8
}

type ConstUtf8 struct {
	Value string
}

func (c *ConstUtf8) Tag() uint8 { return TagUtf8 }

type ConstInteger struct {
	Value int32
}

func (c *ConstInteger) Tag() uint8 { return TagInteger }

type ConstFloat struct {
	Value float32
}

func (c *ConstFloat) Tag() uint8 { return TagFloat }

type ConstLong struct {
	Value int64
}

func (c *ConstLong) Tag() uint8 { return TagLong }

type ConstDouble struct {
	Value float64
}

func (c *ConstDouble) Tag() uint8 { return TagDouble }

type ConstClass struct {
	NameIndex uint16
}

func (c *ConstClass) Tag() uint8 { return TagClass }

type ConstString struct {
	StringIndex uint16
}

func (c *ConstString) Tag() uint8 { return TagString }

type ConstFieldref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstFieldref) Tag() uint8 { return TagFieldref }

type ConstMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstMethodref) Tag() uint8 { return TagMethodref }

type ConstInterfaceMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstInterfaceMethodref) Tag() uint8 { return TagInterfaceMethodref }

type ConstNameAndType struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstNameAndType) Tag() uint8 { return TagNameAndType }

// ConstRaw preserves entries the transformer never inspects
// (MethodHandle, MethodType, Dynamic, InvokeDynamic, Module, Package)
// so that a parsed class round-trips byte for byte.
type ConstRaw struct {
	RawTag uint8
	Data   []byte
}

func (c *ConstRaw) Tag() uint8 { return c.RawTag }

// Pool is a 1-indexed constant pool. Slot 0 is nil, and the slot
// following a Long or Double entry is nil as well.
type Pool []Entry

// maxPoolSize is the format limit on constant_pool_count.
const maxPoolSize = 0xFFFF

// Utf8 returns the Utf8 string at index.
func (p Pool) Utf8(index uint16) (string, error) {
	if int(index) >= len(p) || p[index] == nil {
		return "", fmt.Errorf("invalid constant pool index %d", index)
	}
	u, ok := p[index].(*ConstUtf8)
	if !ok {
		return "", fmt.Errorf("constant pool index %d is not Utf8 (tag=%d)", index, p[index].Tag())
	}
	return u.Value, nil
}

// ClassName returns the class name referenced by a CONSTANT_Class entry.
func (p Pool) ClassName(index uint16) (string, error) {
	if int(index) >= len(p) || p[index] == nil {
		return "", fmt.Errorf("invalid constant pool index %d", index)
	}
	c, ok := p[index].(*ConstClass)
	if !ok {
		return "", fmt.Errorf("constant pool index %d is not Class (tag=%d)", index, p[index].Tag())
	}
	return p.Utf8(c.NameIndex)
}

// add appends an entry, returning its index. Existing entries are never
// renumbered, so indices referenced by already-compiled bytecode stay valid.
func (p *Pool) add(e Entry) (uint16, error) {
	if len(*p) >= maxPoolSize {
		return 0, fmt.Errorf("constant pool overflow: %d entries", len(*p))
	}
	*p = append(*p, e)
	return uint16(len(*p) - 1), nil
}

// AddUtf8 returns the index of a Utf8 entry for s, appending one if absent.
func (p *Pool) AddUtf8(s string) (uint16, error) {
	for i, e := range *p {
		if u, ok := e.(*ConstUtf8); ok && u.Value == s {
			return uint16(i), nil
		}
	}
	return p.add(&ConstUtf8{Value: s})
}

// AddClass returns the index of a Class entry for the internal name, appending if absent.
func (p *Pool) AddClass(name string) (uint16, error) {
	for i, e := range *p {
		if c, ok := e.(*ConstClass); ok {
			if n, err := p.Utf8(c.NameIndex); err == nil && n == name {
				return uint16(i), nil
			}
		}
	}
	nameIndex, err := p.AddUtf8(name)
	if err != nil {
		return 0, err
	}
	return p.add(&ConstClass{NameIndex: nameIndex})
}

// AddString returns the index of a String entry for s, appending if absent.
func (p *Pool) AddString(s string) (uint16, error) {
	for i, e := range *p {
		if c, ok := e.(*ConstString); ok {
			if v, err := p.Utf8(c.StringIndex); err == nil && v == s {
				return uint16(i), nil
			}
		}
	}
	strIndex, err := p.AddUtf8(s)
	if err != nil {
		return 0, err
	}
	return p.add(&ConstString{StringIndex: strIndex})
}

// AddNameAndType returns the index of a NameAndType entry, appending if absent.
func (p *Pool) AddNameAndType(name, descriptor string) (uint16, error) {
	for i, e := range *p {
		if nat, ok := e.(*ConstNameAndType); ok {
			n, err1 := p.Utf8(nat.NameIndex)
			d, err2 := p.Utf8(nat.DescriptorIndex)
			if err1 == nil && err2 == nil && n == name && d == descriptor {
				return uint16(i), nil
			}
		}
	}
	nameIndex, err := p.AddUtf8(name)
	if err != nil {
		return 0, err
	}
	descIndex, err := p.AddUtf8(descriptor)
	if err != nil {
		return 0, err
	}
	return p.add(&ConstNameAndType{NameIndex: nameIndex, DescriptorIndex: descIndex})
}

// AddFieldref returns the index of a Fieldref entry, appending if absent.
func (p *Pool) AddFieldref(class, name, descriptor string) (uint16, error) {
	classIndex, err := p.AddClass(class)
	if err != nil {
		return 0, err
	}
	natIndex, err := p.AddNameAndType(name, descriptor)
	if err != nil {
		return 0, err
	}
	for i, e := range *p {
		if f, ok := e.(*ConstFieldref); ok && f.ClassIndex == classIndex && f.NameAndTypeIndex == natIndex {
			return uint16(i), nil
		}
	}
	return p.add(&ConstFieldref{ClassIndex: classIndex, NameAndTypeIndex: natIndex})
}

// AddMethodref returns the index of a Methodref entry, appending if absent.
func (p *Pool) AddMethodref(class, name, descriptor string) (uint16, error) {
	classIndex, err := p.AddClass(class)
	if err != nil {
		return 0, err
	}
	natIndex, err := p.AddNameAndType(name, descriptor)
	if err != nil {
		return 0, err
	}
	for i, e := range *p {
		if m, ok := e.(*ConstMethodref); ok && m.ClassIndex == classIndex && m.NameAndTypeIndex == natIndex {
			return uint16(i), nil
		}
	}
	return p.add(&ConstMethodref{ClassIndex: classIndex, NameAndTypeIndex: natIndex})
}
