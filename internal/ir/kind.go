package ir

import "fmt"

// InstKind is the structural shape backing an opcode. All kinds share the
// same fields today; kind-specific payloads will hang off Inst when passes
// need them.
type InstKind uint8

const (
	KindInvalid InstKind = iota
	KindUnary
	KindBinary
	KindAlloc
	KindPhi
	KindReturnVoid
	KindNop
)

var instKindNames = [...]string{
	KindInvalid:    "Invalid",
	KindUnary:      "UnaryOperation",
	KindBinary:     "BinaryOperation",
	KindAlloc:      "AllocInst",
	KindPhi:        "PhiInst",
	KindReturnVoid: "ReturnVoidInst",
	KindNop:        "NopInst",
}

// String returns the catalog base name of the kind.
func (k InstKind) String() string {
	if int(k) < len(instKindNames) {
		return instKindNames[k]
	}
	return fmt.Sprintf("InstKind(%d)", uint8(k))
}
