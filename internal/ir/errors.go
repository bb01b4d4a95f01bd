package ir

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies a class of IR invariant violation. Codes are stable
// and render as IR<code>.
type ErrorCode uint16

const (
	CodeUnknown ErrorCode = 0

	// Construction (builder and factory preconditions).
	CodeDuplicateInstructionID      ErrorCode = 1001
	CodeReservedBlockID             ErrorCode = 1002
	CodeDuplicateBlockID            ErrorCode = 1003
	CodeUnknownBlockReference       ErrorCode = 1004
	CodeUnknownInstructionReference ErrorCode = 1005
	CodeDuplicateEdgeDisallowed     ErrorCode = 1006
	CodeNoCurrentBlock              ErrorCode = 1007
	CodePhiInsertionRejected        ErrorCode = 1008
	CodeNoCurrentInstruction        ErrorCode = 1009
	CodeBlockStillOpen              ErrorCode = 1010
	CodeConstructorFinalized        ErrorCode = 1011

	// Structure.
	CodeEdgeNotFound             ErrorCode = 2001
	CodeCorruptEdgeList          ErrorCode = 2002
	CodeInstructionAlreadyPlaced ErrorCode = 2003
	CodeNotAPhi                  ErrorCode = 2004
	CodeReservedBlockRedefined   ErrorCode = 2005
	CodeInvalidGraph             ErrorCode = 2006
	CodeInvalidOpcode            ErrorCode = 2007

	// Handles and lifetime.
	CodeStaleHandle   ErrorCode = 3001
	CodeForeignHandle ErrorCode = 3002
	CodeGraphReleased ErrorCode = 3003
	CodeIDOverflow    ErrorCode = 3004
)

var codeNames = map[ErrorCode]string{
	CodeUnknown:                     "Unknown",
	CodeDuplicateInstructionID:      "DuplicateInstructionId",
	CodeReservedBlockID:             "ReservedBlockId",
	CodeDuplicateBlockID:            "DuplicateBlockId",
	CodeUnknownBlockReference:       "UnknownBlockReference",
	CodeUnknownInstructionReference: "UnknownInstructionReference",
	CodeDuplicateEdgeDisallowed:     "DuplicateEdgeDisallowed",
	CodeNoCurrentBlock:              "NoCurrentBlock",
	CodePhiInsertionRejected:        "PhiInsertionRejected",
	CodeNoCurrentInstruction:        "NoCurrentInstruction",
	CodeBlockStillOpen:              "BlockStillOpen",
	CodeConstructorFinalized:        "ConstructorFinalized",
	CodeEdgeNotFound:                "EdgeNotFound",
	CodeCorruptEdgeList:             "CorruptEdgeList",
	CodeInstructionAlreadyPlaced:    "InstructionAlreadyPlaced",
	CodeNotAPhi:                     "NotAPhi",
	CodeReservedBlockRedefined:      "ReservedBlockRedefined",
	CodeInvalidGraph:                "InvalidGraph",
	CodeInvalidOpcode:               "InvalidOpcode",
	CodeStaleHandle:                 "StaleHandle",
	CodeForeignHandle:               "ForeignHandle",
	CodeGraphReleased:               "GraphReleased",
	CodeIDOverflow:                  "IdOverflow",
}

// ID returns the stable identifier, e.g. "IR1006".
func (c ErrorCode) ID() string {
	return fmt.Sprintf("IR%04d", uint16(c))
}

// String returns the human name of the code.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return c.ID()
}

// Error is the structured failure returned by every IR operation.
type Error struct {
	Code   ErrorCode
	Op     string // operation that failed, e.g. "AddSucc"
	Detail string
	Cause  error
}

// Sentinels for errors.Is. Only the code is compared.
var (
	ErrDuplicateInstructionID      = &Error{Code: CodeDuplicateInstructionID}
	ErrReservedBlockID             = &Error{Code: CodeReservedBlockID}
	ErrDuplicateBlockID            = &Error{Code: CodeDuplicateBlockID}
	ErrUnknownBlockReference       = &Error{Code: CodeUnknownBlockReference}
	ErrUnknownInstructionReference = &Error{Code: CodeUnknownInstructionReference}
	ErrDuplicateEdgeDisallowed     = &Error{Code: CodeDuplicateEdgeDisallowed}
	ErrNoCurrentBlock              = &Error{Code: CodeNoCurrentBlock}
	ErrPhiInsertionRejected        = &Error{Code: CodePhiInsertionRejected}
	ErrNoCurrentInstruction        = &Error{Code: CodeNoCurrentInstruction}
	ErrBlockStillOpen              = &Error{Code: CodeBlockStillOpen}
	ErrConstructorFinalized        = &Error{Code: CodeConstructorFinalized}
	ErrEdgeNotFound                = &Error{Code: CodeEdgeNotFound}
	ErrCorruptEdgeList             = &Error{Code: CodeCorruptEdgeList}
	ErrInstructionAlreadyPlaced    = &Error{Code: CodeInstructionAlreadyPlaced}
	ErrNotAPhi                     = &Error{Code: CodeNotAPhi}
	ErrReservedBlockRedefined      = &Error{Code: CodeReservedBlockRedefined}
	ErrInvalidGraph                = &Error{Code: CodeInvalidGraph}
	ErrInvalidOpcode               = &Error{Code: CodeInvalidOpcode}
	ErrStaleHandle                 = &Error{Code: CodeStaleHandle}
	ErrForeignHandle               = &Error{Code: CodeForeignHandle}
	ErrGraphReleased               = &Error{Code: CodeGraphReleased}
	ErrIDOverflow                  = &Error{Code: CodeIDOverflow}
)

// Errorf builds an *Error with a formatted detail.
func Errorf(code ErrorCode, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Detail: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Code.ID())
	b.WriteByte(' ')
	b.WriteString(e.Code.String())

	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// CodeOf returns the code of the first *Error in err's tree.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
