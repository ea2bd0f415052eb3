// Package bytecode synthesizes method bodies for the generation handlers.
// Every generated method is straight-line except equals, which is the only
// one that needs branch labels and StackMapTable frames.
package bytecode

import (
	"fmt"
	"sort"

	"github.com/classweave/classweave/internal/classfile"
)

// JVM opcodes used by the generators.
const (
	opIconstM1 = 0x02
	opIconst0  = 0x03
	opBipush   = 0x10
	opSipush   = 0x11
	opLdc      = 0x12
	opLdcW     = 0x13

	opIload = 0x15
	opLload = 0x16
	opFload = 0x17
	opDload = 0x18
	opAload = 0x19

	opIload0 = 0x1a
	opLload0 = 0x1e
	opFload0 = 0x22
	opDload0 = 0x26
	opAload0 = 0x2a

	opAstore  = 0x3a
	opAstore0 = 0x4b
	opAastore = 0x53
	opDup     = 0x59

	opLcmp = 0x94

	opIfeq     = 0x99
	opIfne     = 0x9a
	opIfIcmpne = 0xa0
	opIfAcmpne = 0xa6
	opGoto     = 0xa7

	opIreturn = 0xac
	opLreturn = 0xad
	opFreturn = 0xae
	opDreturn = 0xaf
	opAreturn = 0xb0
	opReturn  = 0xb1

	opGetfield      = 0xb4
	opPutfield      = 0xb5
	opInvokevirtual = 0xb6
	opInvokespecial = 0xb7
	opInvokestatic  = 0xb8

	opNew       = 0xbb
	opAnewarray = 0xbd
	opCheckcast = 0xc0
	opIfnull    = 0xc6
)

// Label marks a forward branch target.
type Label int

type fixup struct {
	pc     int   // offset of the branch opcode
	at     int   // offset of the 16-bit operand
	target Label
}

// frameReq is a full StackMapTable frame recorded at a label. All locals at
// our branch targets are reference types, and the operand stack is empty.
type frameReq struct {
	target Label
	locals []string // internal class names
}

// Asm assembles one method body.
type Asm struct {
	pool   *classfile.Pool
	code   []byte
	labels []int
	fixups []fixup
	frames []frameReq
	err    error
}

// NewAsm returns an assembler emitting constants into pool.
func NewAsm(pool *classfile.Pool) *Asm {
	return &Asm{pool: pool}
}

// Err returns the first error recorded while assembling.
func (a *Asm) Err() error { return a.err }

func (a *Asm) fail(err error) {
	if a.err == nil {
		a.err = err
	}
}

func (a *Asm) op(b byte)   { a.code = append(a.code, b) }
func (a *Asm) u1(v uint8)  { a.code = append(a.code, v) }
func (a *Asm) u2(v uint16) { a.code = append(a.code, byte(v>>8), byte(v)) }

func (a *Asm) utf8(s string) uint16 {
	i, err := a.pool.AddUtf8(s)
	if err != nil {
		a.fail(err)
	}
	return i
}

func (a *Asm) class(name string) uint16 {
	i, err := a.pool.AddClass(name)
	if err != nil {
		a.fail(err)
	}
	return i
}

// Load emits the load instruction for a value of the given descriptor from slot.
func (a *Asm) Load(descriptor string, slot int) {
	var base, short0 byte
	switch descriptor {
	case "I", "S", "B", "C", "Z":
		base, short0 = opIload, opIload0
	case "J":
		base, short0 = opLload, opLload0
	case "F":
		base, short0 = opFload, opFload0
	case "D":
		base, short0 = opDload, opDload0
	default:
		base, short0 = opAload, opAload0
	}
	if slot <= 3 {
		a.op(short0 + byte(slot))
		return
	}
	if slot > 0xFF {
		a.fail(fmt.Errorf("local slot %d out of range", slot))
		return
	}
	a.op(base)
	a.u1(uint8(slot))
}

// LoadThis emits aload_0.
func (a *Asm) LoadThis() { a.op(opAload0) }

// AStore emits a reference store into slot.
func (a *Asm) AStore(slot int) {
	if slot <= 3 {
		a.op(opAstore0 + byte(slot))
		return
	}
	a.op(opAstore)
	a.u1(uint8(slot))
}

// Iconst pushes a small int constant.
func (a *Asm) Iconst(v int) {
	switch {
	case v >= -1 && v <= 5:
		a.op(byte(opIconst0 + v))
	case v >= -128 && v <= 127:
		a.op(opBipush)
		a.u1(uint8(int8(v)))
	case v >= -32768 && v <= 32767:
		a.op(opSipush)
		a.u2(uint16(int16(v)))
	default:
		a.fail(fmt.Errorf("int constant %d out of emitter range", v))
	}
}

// LdcString pushes a string constant.
func (a *Asm) LdcString(s string) {
	idx, err := a.pool.AddString(s)
	if err != nil {
		a.fail(err)
		return
	}
	if idx <= 0xFF {
		a.op(opLdc)
		a.u1(uint8(idx))
		return
	}
	a.op(opLdcW)
	a.u2(idx)
}

// GetField emits getfield owner.name:descriptor.
func (a *Asm) GetField(owner, name, descriptor string) {
	idx, err := a.pool.AddFieldref(owner, name, descriptor)
	if err != nil {
		a.fail(err)
		return
	}
	a.op(opGetfield)
	a.u2(idx)
}

// PutField emits putfield owner.name:descriptor.
func (a *Asm) PutField(owner, name, descriptor string) {
	idx, err := a.pool.AddFieldref(owner, name, descriptor)
	if err != nil {
		a.fail(err)
		return
	}
	a.op(opPutfield)
	a.u2(idx)
}

func (a *Asm) invoke(op byte, owner, name, descriptor string) {
	idx, err := a.pool.AddMethodref(owner, name, descriptor)
	if err != nil {
		a.fail(err)
		return
	}
	a.op(op)
	a.u2(idx)
}

// InvokeVirtual emits invokevirtual owner.name:descriptor.
func (a *Asm) InvokeVirtual(owner, name, descriptor string) {
	a.invoke(opInvokevirtual, owner, name, descriptor)
}

// InvokeSpecial emits invokespecial owner.name:descriptor.
func (a *Asm) InvokeSpecial(owner, name, descriptor string) {
	a.invoke(opInvokespecial, owner, name, descriptor)
}

// InvokeStatic emits invokestatic owner.name:descriptor.
func (a *Asm) InvokeStatic(owner, name, descriptor string) {
	a.invoke(opInvokestatic, owner, name, descriptor)
}

// New emits new class.
func (a *Asm) New(class string) {
	a.op(opNew)
	a.u2(a.class(class))
}

// Dup emits dup.
func (a *Asm) Dup() { a.op(opDup) }

// Checkcast emits checkcast class.
func (a *Asm) Checkcast(class string) {
	a.op(opCheckcast)
	a.u2(a.class(class))
}

// ANewArray emits anewarray class.
func (a *Asm) ANewArray(class string) {
	a.op(opAnewarray)
	a.u2(a.class(class))
}

// AAStore emits aastore.
func (a *Asm) AAStore() { a.op(opAastore) }

// Lcmp emits lcmp.
func (a *Asm) Lcmp() { a.op(opLcmp) }

// Return emits the return instruction matching the descriptor ("V" for void).
func (a *Asm) Return(descriptor string) {
	switch descriptor {
	case "V":
		a.op(opReturn)
	case "I", "S", "B", "C", "Z":
		a.op(opIreturn)
	case "J":
		a.op(opLreturn)
	case "F":
		a.op(opFreturn)
	case "D":
		a.op(opDreturn)
	default:
		a.op(opAreturn)
	}
}

// NewLabel creates an unbound label.
func (a *Asm) NewLabel() Label {
	a.labels = append(a.labels, -1)
	return Label(len(a.labels) - 1)
}

// Branch emits a conditional or unconditional branch to a label.
func (a *Asm) Branch(op byte, target Label) {
	pc := len(a.code)
	a.op(op)
	a.fixups = append(a.fixups, fixup{pc: pc, at: len(a.code), target: target})
	a.u2(0)
}

// Bind binds a label to the current position.
func (a *Asm) Bind(l Label) {
	if a.labels[l] != -1 {
		a.fail(fmt.Errorf("label %d bound twice", l))
		return
	}
	a.labels[l] = len(a.code)
}

// Frame records a full stack-map frame at a label. locals are the internal
// class names of the reference-typed locals live at that point.
func (a *Asm) Frame(target Label, locals ...string) {
	a.frames = append(a.frames, frameReq{target: target, locals: locals})
}

// resolve patches branch offsets. Branch offsets are relative to the opcode.
func (a *Asm) resolve() {
	for _, f := range a.fixups {
		pos := a.labels[f.target]
		if pos < 0 {
			a.fail(fmt.Errorf("branch to unbound label %d", f.target))
			return
		}
		off := pos - f.pc
		if off < -32768 || off > 32767 {
			a.fail(fmt.Errorf("branch offset %d out of 16-bit range", off))
			return
		}
		a.code[f.at] = byte(uint16(int16(off)) >> 8)
		a.code[f.at+1] = byte(uint16(int16(off)))
	}
}

// stackMapTable serializes the recorded frames as full_frame entries,
// ordered by bytecode offset, with an empty operand stack.
func (a *Asm) stackMapTable() []byte {
	type bound struct {
		offset int
		locals []string
	}
	frames := make([]bound, 0, len(a.frames))
	for _, f := range a.frames {
		pos := a.labels[f.target]
		if pos < 0 {
			continue // frame for a label that was never emitted
		}
		frames = append(frames, bound{offset: pos, locals: f.locals})
	}
	if len(frames) == 0 {
		return nil
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].offset < frames[j].offset })

	w := &classfile.ByteWriter{}
	w.U2(uint16(len(frames)))
	prev := -1
	for _, f := range frames {
		delta := f.offset - prev - 1
		w.U1(255) // full_frame
		w.U2(uint16(delta))
		w.U2(uint16(len(f.locals)))
		for _, cls := range f.locals {
			w.U1(7) // ITEM_Object
			w.U2(a.class(cls))
		}
		w.U2(0) // empty stack
		prev = f.offset
	}
	return w.Bytes()
}

// Code builds the Code attribute payload for the assembled body.
func (a *Asm) Code(maxStack, maxLocals int) ([]byte, error) {
	a.resolve()
	smt := a.stackMapTable()
	if a.err != nil {
		return nil, a.err
	}

	w := &classfile.ByteWriter{}
	w.U2(uint16(maxStack))
	w.U2(uint16(maxLocals))
	w.U4(uint32(len(a.code)))
	w.Write(a.code)
	w.U2(0) // empty exception table
	if smt == nil {
		w.U2(0)
		return w.Bytes(), nil
	}
	w.U2(1)
	w.U2(a.utf8("StackMapTable"))
	w.U4(uint32(len(smt)))
	w.Write(smt)
	if a.err != nil {
		return nil, a.err
	}
	return w.Bytes(), nil
}
