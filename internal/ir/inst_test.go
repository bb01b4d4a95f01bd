package ir_test

import (
	"bytes"
	"testing"

	"rhine/internal/ir"
)

func TestInstDump(t *testing.T) {
	g := ir.NewGraph()
	b, _ := g.CreateEmptyBlock()
	add, err := g.CreateInstAdd()
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AddInst(add, true); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	add.Dump(&buf)
	if got, want := buf.String(), "ID: 1, Opcode: Add\n"; got != want {
		t.Errorf("Dump = %q, want %q", got, want)
	}
	if got, want := add.String(), "ID: 1, Opcode: Add"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}

	not, _ := g.CreateInstNot()
	if got, want := not.String(), "ID: 2, Opcode: Not"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}

func TestInstSetType(t *testing.T) {
	g := ir.NewGraph()
	inst, _ := g.CreateInstAlloc()
	inst.SetType(ir.TypeI32)
	if inst.Type() != ir.TypeI32 {
		t.Fatalf("Type = %s, want i32", inst.Type())
	}
	// No legality check against the opcode.
	inst.SetType(ir.TypeVoid)
	if inst.Type() != ir.TypeVoid {
		t.Fatalf("Type = %s, want void", inst.Type())
	}
}

func TestIsPhi(t *testing.T) {
	g := ir.NewGraph()
	phi, _ := g.CreateInstPhi()
	add, _ := g.CreateInstAdd()
	if !phi.IsPhi() || add.IsPhi() {
		t.Fatalf("IsPhi: phi=%v add=%v", phi.IsPhi(), add.IsPhi())
	}
}

func TestParseOpcode(t *testing.T) {
	tests := []struct {
		in   string
		want ir.Opcode
		ok   bool
	}{
		{"Add", ir.OpcodeAdd, true},
		{"add", ir.OpcodeAdd, true},
		{"RETURNVOID", ir.OpcodeReturnVoid, true},
		{" phi ", ir.OpcodePhi, true},
		{"Invalid", ir.OpcodeInvalid, false},
		{"Jump", ir.OpcodeInvalid, false},
	}
	for _, tt := range tests {
		got, ok := ir.ParseOpcode(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseOpcode(%q) = %s, %v; want %s, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	if n := len(ir.Opcodes()); n != 17 {
		t.Errorf("len(Opcodes) = %d, want 17", n)
	}
}

func TestParseDataType(t *testing.T) {
	for _, typ := range []ir.DataType{ir.TypeU8, ir.TypeI64, ir.TypeBool, ir.TypeF64, ir.TypeVoid} {
		got, err := ir.ParseDataType(typ.String())
		if err != nil || got != typ {
			t.Errorf("ParseDataType(%q) = %s, %v", typ.String(), got, err)
		}
	}
	if got, err := ir.ParseDataType(""); err != nil || got != ir.TypeUntyped {
		t.Errorf("ParseDataType(\"\") = %s, %v", got, err)
	}
	if _, err := ir.ParseDataType("i128"); err == nil {
		t.Errorf("ParseDataType(i128) succeeded")
	}
}
