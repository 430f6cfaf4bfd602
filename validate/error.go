// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"errors"
	"fmt"

	"github.com/go-interpreter/wasmvalidate/wasm"
	ops "github.com/go-interpreter/wasmvalidate/wasm/operators"
)

// Error wraps a validation failure with the function and byte offset at
// which it was encountered. It unwraps to the underlying cause so callers
// can branch on error category with errors.As.
type Error struct {
	Offset   int // Byte offset in the bytecode vector where the error occurs.
	Function int // Index into the function index space for the offending function.
	Err      error
}

func (e Error) Error() string {
	return fmt.Sprintf("error while validating function %d at offset %d: %v", e.Function, e.Offset, e.Err)
}

func (e Error) Unwrap() error { return e.Err }

// wrapf builds an Error for the given function/offset, wrapping cause with
// fmt.Errorf so that %w chains keep working through errors.As/errors.Is.
func wrapf(fn, offset int, cause error) error {
	return Error{Function: fn, Offset: offset, Err: fmt.Errorf("%w", cause)}
}

// ErrStackUnderflow is returned if an instruction consumes a value, but there
// are no values on the stack.
var ErrStackUnderflow = errors.New("validate: invalid stack access")

// ErrUnbalancedStack is returned when a control region ends with operands
// left over beyond its declared result.
var ErrUnbalancedStack = errors.New("validate: stack was not empty at end of control structure")

// ErrElselessIf is returned when an if-block with a non-empty result type
// is closed without an intervening else.
var ErrElselessIf = errors.New("validate: else-less if may not yield a result")

// ErrNoTable is returned for call_indirect when the module declares no
// table. An element segment in such a module fails with
// InvalidTableIndexError instead.
var ErrNoTable = errors.New("validate: call_indirect without a table")

// ErrNoMemory is returned for a memory opcode when the module declares no
// memory.
var ErrNoMemory = errors.New("validate: memory operation without a memory")

// ErrImmutableGlobal is returned when set_global targets an immutable
// global, and by Definitions when a module imports or exports a mutable
// global or an initializer expression references one.
var ErrImmutableGlobal = errors.New("validate: attempt to set an immutable global")

// ErrFunctionEndMismatch is returned when the opcode stream and the control
// stack do not both terminate at the same point.
var ErrFunctionEndMismatch = errors.New("validate: function body ends without its control stack fully unwound")

// InvalidImmediateError is returned if the immediate value provided
// is invalid for the given instruction.
type InvalidImmediateError struct {
	ImmType string
	OpName  string
}

func (e InvalidImmediateError) Error() string {
	return fmt.Sprintf("invalid immediate for op %s (should be %s)", e.OpName, e.ImmType)
}

// UnmatchedOpError is returned if an else instruction is encountered
// outside of an if block. A block left without its end is reported as
// ErrFunctionEndMismatch instead.
type UnmatchedOpError byte

func (e UnmatchedOpError) Error() string {
	n1, _ := ops.New(byte(e))
	return fmt.Sprintf("encountered unmatched %s", n1.Name)
}

// InvalidLabelError is returned if a branch is encountered which points to
// a block that does not exist.
type InvalidLabelError uint32

func (e InvalidLabelError) Error() string {
	return fmt.Sprintf("invalid nesting depth %d", uint32(e))
}

// BrTableTargetMismatchError is returned when a br_table's targets disagree
// on branch argument type; unlike ordinary branches this comparison is
// strict, never relaxed by the "any" wildcard.
type BrTableTargetMismatchError struct {
	Default wasm.BlockType
	Target  wasm.BlockType
}

func (e BrTableTargetMismatchError) Error() string {
	return fmt.Sprintf("br_table target type %v does not match default target type %v", e.Target, e.Default)
}

// InvalidTableIndexError is returned if a table is referenced with an
// out-of-bounds index.
type InvalidTableIndexError uint32

func (e InvalidTableIndexError) Error() string {
	return fmt.Sprintf("invalid table index %d", uint32(e))
}

// InvalidLocalIndexError is returned if a local variable index is referenced
// which does not exist.
type InvalidLocalIndexError uint32

func (e InvalidLocalIndexError) Error() string {
	return fmt.Sprintf("invalid index for local variable %d", uint32(e))
}

// InvalidGlobalIndexError is returned if a global index is referenced which
// does not exist.
type InvalidGlobalIndexError uint32

func (e InvalidGlobalIndexError) Error() string {
	return fmt.Sprintf("invalid index for global variable %d", uint32(e))
}

// InvalidFunctionIndexError is returned if a function index is referenced
// which does not exist.
type InvalidFunctionIndexError uint32

func (e InvalidFunctionIndexError) Error() string {
	return fmt.Sprintf("invalid index for function %d", uint32(e))
}

// InvalidTypeIndexError is returned if a type index is referenced which
// does not exist.
type InvalidTypeIndexError uint32

func (e InvalidTypeIndexError) Error() string {
	return fmt.Sprintf("invalid index into the type section %d", uint32(e))
}

// InvalidTypeError is returned if there is a mismatch between the type(s)
// an operator or function accepts, and the value provided.
type InvalidTypeError struct {
	Wanted  wasm.ValueType
	Got     wasm.ValueType
	Context string
}

func valueTypeStr(v wasm.ValueType) string {
	switch v {
	case noReturn:
		return "void"
	case unknownType:
		return "anytype"
	default:
		return v.String()
	}
}

func (e InvalidTypeError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("type mismatch: expected %v but got %v in %s", valueTypeStr(e.Wanted), valueTypeStr(e.Got), e.Context)
	}
	return fmt.Sprintf("invalid type, got: %v, wanted: %v", valueTypeStr(e.Got), valueTypeStr(e.Wanted))
}

// DuplicateExportError is returned when two exports share the same name.
type DuplicateExportError string

func (e DuplicateExportError) Error() string {
	return fmt.Sprintf("duplicate export entry: %s", string(e))
}

// SizeLimitError is returned when a resizable limit pair is inconsistent or
// exceeds its implementation ceiling.
type SizeLimitError struct {
	What string
	Min  uint64
	Max  uint64
	Ceil uint64
}

func (e SizeLimitError) Error() string {
	return fmt.Sprintf("invalid size constraints for %s: min=%d max=%d ceiling=%d", e.What, e.Min, e.Max, e.Ceil)
}

// TooManyError is returned when a module declares more than one table or
// memory in total (imports plus definitions).
type TooManyError string

func (e TooManyError) Error() string {
	return fmt.Sprintf("a module may declare at most one %s", string(e))
}

// ErrStartFunctionShape is returned when the start function has
// parameters or a result.
var ErrStartFunctionShape = errors.New("validate: start function must take no parameters and return no results")

// ErrInvalidElemType is returned when a table's element type is not
// anyfunc.
var ErrInvalidElemType = errors.New("validate: table element type must be anyfunc")
