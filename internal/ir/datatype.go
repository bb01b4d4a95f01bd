package ir

import (
	"fmt"
	"strings"
)

// DataType is the value type annotated on an instruction.
type DataType uint8

const (
	// TypeUntyped marks an instruction that has not been typed yet.
	TypeUntyped DataType = iota
	TypeU8
	TypeU16
	TypeU32
	TypeU64
	TypeI8
	TypeI16
	TypeI32
	TypeI64
	TypeBool
	TypeF32
	TypeF64
	TypeVoid

	dataTypeCount
)

var dataTypeNames = [...]string{
	TypeUntyped: "untyped",
	TypeU8:      "u8",
	TypeU16:     "u16",
	TypeU32:     "u32",
	TypeU64:     "u64",
	TypeI8:      "i8",
	TypeI16:     "i16",
	TypeI32:     "i32",
	TypeI64:     "i64",
	TypeBool:    "bool",
	TypeF32:     "f32",
	TypeF64:     "f64",
	TypeVoid:    "void",
}

// String returns the display name of the type.
func (t DataType) String() string {
	if t < dataTypeCount {
		return dataTypeNames[t]
	}
	return fmt.Sprintf("DataType(%d)", uint8(t))
}

// Valid reports whether t is a member of the enumeration.
func (t DataType) Valid() bool {
	return t < dataTypeCount
}

// ParseDataType maps a display name back to its DataType.
// The empty string parses as TypeUntyped.
func ParseDataType(s string) (DataType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TypeUntyped, nil
	}
	for i, name := range dataTypeNames {
		if name == s {
			return DataType(i), nil
		}
	}
	return TypeUntyped, fmt.Errorf("unknown data type %q", s)
}
