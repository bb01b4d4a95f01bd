package ir

import (
	"fmt"
	"strings"
)

//go:generate go run rhine/cmd/irgen -catalog instructions.toml -out opcode_gen.go -package ir

// String returns the display name used in diagnostics.
func (o Opcode) String() string {
	if o < opcodeCount {
		return opcodeNames[o]
	}
	return fmt.Sprintf("Opcode(%d)", uint16(o))
}

// Kind returns the instruction kind that backs o.
func (o Opcode) Kind() InstKind {
	if o < opcodeCount {
		return opcodeKinds[o]
	}
	return KindInvalid
}

// Valid reports whether o is a catalog opcode.
func (o Opcode) Valid() bool {
	return o > OpcodeInvalid && o < opcodeCount
}

// ParseOpcode looks an opcode up by name, ignoring case.
func ParseOpcode(name string) (Opcode, bool) {
	op, ok := opcodesByLowerName[strings.ToLower(strings.TrimSpace(name))]
	return op, ok
}

// Opcodes returns every catalog opcode in declaration order.
func Opcodes() []Opcode {
	ops := make([]Opcode, 0, opcodeCount-1)
	for o := OpcodeInvalid + 1; o < opcodeCount; o++ {
		ops = append(ops, o)
	}
	return ops
}
