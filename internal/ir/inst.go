package ir

import (
	"fmt"
	"io"
)

// Inst is a handle to an instruction. The zero Inst refers to nothing.
//
// Accessors panic with an *Error when the handle is stale (its graph was
// released) or zero; that is a programming error, not a runtime condition.
type Inst struct {
	g     *Graph
	id    InstID
	epoch uint64
}

// ID returns the instruction id.
func (i Inst) ID() InstID { return i.id }

// Graph returns the owning graph.
func (i Inst) Graph() *Graph { return i.g }

// Valid reports whether i refers to a live instruction.
func (i Inst) Valid() bool {
	return i.g != nil && i.g.checkInst("Valid", i) == nil
}

func (i Inst) data(op string) *instData {
	if i.g == nil {
		panic(Errorf(CodeStaleHandle, op, "zero Inst handle"))
	}
	if err := i.g.checkInst(op, i); err != nil {
		panic(err)
	}
	return i.g.inst(i.id)
}

// Opcode returns the immutable opcode tag.
func (i Inst) Opcode() Opcode { return i.data("Opcode").opcode }

// Kind returns the instruction kind backing the opcode.
func (i Inst) Kind() InstKind { return i.Opcode().Kind() }

// IsPhi reports whether the instruction is a phi.
func (i Inst) IsPhi() bool { return i.Opcode() == OpcodePhi }

// Type returns the annotated data type; TypeUntyped until SetType.
func (i Inst) Type() DataType { return i.data("Type").typ }

// SetType annotates the instruction. The type is not checked against the
// opcode.
func (i Inst) SetType(t DataType) {
	i.data("SetType").typ = t
}

// Block returns the block the instruction was placed in.
func (i Inst) Block() (Block, bool) {
	d := i.data("Block")
	if d.block == NoBlock {
		return Block{}, false
	}
	return i.g.blockHandle(d.block), true
}

// Prev returns the previous instruction in the block sequence.
func (i Inst) Prev() (Inst, bool) {
	d := i.data("Prev")
	if d.prev == NoInst {
		return Inst{}, false
	}
	return i.g.instHandle(d.prev), true
}

// Next returns the next instruction in the block sequence.
func (i Inst) Next() (Inst, bool) {
	d := i.data("Next")
	if d.next == NoInst {
		return Inst{}, false
	}
	return i.g.instHandle(d.next), true
}

// String returns "ID: <id>, Opcode: <name>".
func (i Inst) String() string {
	if i.g == nil {
		return "ID: 0, Opcode: Invalid"
	}
	return fmt.Sprintf("ID: %d, Opcode: %s", i.id, i.Opcode())
}

// Dump writes String followed by a newline.
func (i Inst) Dump(w io.Writer) {
	fmt.Fprintln(w, i.String())
}
