// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package operators is a data-driven table of the WebAssembly MVP opcode
// set: for each opcode byte, its mnemonic and, where the opcode has a fixed
// generic stack effect (constants, unary/binary arithmetic, comparisons,
// conversions), the operand types it pops and the type it pushes.
//
// Opcodes whose stack effect depends on something outside the opcode byte
// itself (locals, globals, calls, memory access, structured control flow)
// are special-cased by the validator instead of being driven through
// Args/Returns. The structural and index-space opcodes are registered here
// only for their name; the memory-access entries in memory.go also record a
// value type (the loaded type for loads, the stored value type for stores),
// which the validator does not read.
package operators

import (
	"fmt"
	"strings"

	"github.com/go-interpreter/wasmvalidate/wasm"
)

// Op describes one opcode's static shape.
type Op struct {
	Name    string
	Args    []wasm.ValueType
	Returns wasm.ValueType
}

// IsValid reports whether the Op was actually registered (as opposed to
// being the zero value returned for an opcode byte this package doesn't
// know about).
func (o Op) IsValid() bool {
	return o.Name != ""
}

var ops [256]Op

// UnknownOpcodeError is returned by New for a byte with no registered Op.
type UnknownOpcodeError byte

func (e UnknownOpcodeError) Error() string {
	return fmt.Sprintf("operators: unknown opcode 0x%02x", byte(e))
}

// New looks up the Op registered for the given opcode byte.
func New(b byte) (Op, error) {
	o := ops[b]
	if !o.IsValid() {
		return o, UnknownOpcodeError(b)
	}
	return o, nil
}

func newOp(code byte, name string, args []wasm.ValueType, returns wasm.ValueType) byte {
	ops[code] = Op{Name: name, Args: args, Returns: returns}
	return code
}

// newConversionOp derives Args/Returns from the mnemonic itself: a
// conversion is always named "<returns>.<op>/<arg>".
func newConversionOp(code byte, name string) byte {
	dot := strings.IndexByte(name, '.')
	slash := strings.IndexByte(name, '/')
	returns := parseValueType(name[:dot])
	args := []wasm.ValueType{parseValueType(name[slash+1:])}
	return newOp(code, name, args, returns)
}

func parseValueType(s string) wasm.ValueType {
	switch s {
	case "i32":
		return wasm.ValueTypeI32
	case "i64":
		return wasm.ValueTypeI64
	case "f32":
		return wasm.ValueTypeF32
	case "f64":
		return wasm.ValueTypeF64
	}
	panic("operators: unknown value type mnemonic " + s)
}

var (
	i32, i64, f32, f64 = wasm.ValueTypeI32, wasm.ValueTypeI64, wasm.ValueTypeF32, wasm.ValueTypeF64
)

// Structural and index-space opcodes: registered for their Name only. The
// validator special-cases every one of these rather than driving them
// through Args/Returns.
var (
	Unreachable   = newOp(0x00, "unreachable", nil, 0)
	Nop           = newOp(0x01, "nop", nil, 0)
	Block         = newOp(0x02, "block", nil, 0)
	Loop          = newOp(0x03, "loop", nil, 0)
	If            = newOp(0x04, "if", nil, 0)
	Else          = newOp(0x05, "else", nil, 0)
	End           = newOp(0x0b, "end", nil, 0)
	Br            = newOp(0x0c, "br", nil, 0)
	BrIf          = newOp(0x0d, "br_if", nil, 0)
	BrTable       = newOp(0x0e, "br_table", nil, 0)
	Return        = newOp(0x0f, "return", nil, 0)
	Call          = newOp(0x10, "call", nil, 0)
	CallIndirect  = newOp(0x11, "call_indirect", nil, 0)
	Drop          = newOp(0x1a, "drop", nil, 0)
	Select        = newOp(0x1b, "select", nil, 0)
	GetLocal      = newOp(0x20, "get_local", nil, 0)
	SetLocal      = newOp(0x21, "set_local", nil, 0)
	TeeLocal      = newOp(0x22, "tee_local", nil, 0)
	GetGlobal     = newOp(0x23, "get_global", nil, 0)
	SetGlobal     = newOp(0x24, "set_global", nil, 0)
	I32Const      = newOp(0x41, "i32.const", nil, 0)
	I64Const      = newOp(0x42, "i64.const", nil, 0)
	F32Const      = newOp(0x43, "f32.const", nil, 0)
	F64Const      = newOp(0x44, "f64.const", nil, 0)
)

// Comparisons and arithmetic: generic, registered with their real
// Args/Returns so the validator's simple-opcode dispatch can drive them.
var (
	I32Eqz = newOp(0x45, "i32.eqz", []wasm.ValueType{i32}, i32)
	I32Eq  = newOp(0x46, "i32.eq", []wasm.ValueType{i32, i32}, i32)
	I32Ne  = newOp(0x47, "i32.ne", []wasm.ValueType{i32, i32}, i32)
	I32LtS = newOp(0x48, "i32.lt_s", []wasm.ValueType{i32, i32}, i32)
	I32LtU = newOp(0x49, "i32.lt_u", []wasm.ValueType{i32, i32}, i32)
	I32GtS = newOp(0x4a, "i32.gt_s", []wasm.ValueType{i32, i32}, i32)
	I32GtU = newOp(0x4b, "i32.gt_u", []wasm.ValueType{i32, i32}, i32)
	I32LeS = newOp(0x4c, "i32.le_s", []wasm.ValueType{i32, i32}, i32)
	I32LeU = newOp(0x4d, "i32.le_u", []wasm.ValueType{i32, i32}, i32)
	I32GeS = newOp(0x4e, "i32.ge_s", []wasm.ValueType{i32, i32}, i32)
	I32GeU = newOp(0x4f, "i32.ge_u", []wasm.ValueType{i32, i32}, i32)

	I64Eqz = newOp(0x50, "i64.eqz", []wasm.ValueType{i64}, i32)
	I64Eq  = newOp(0x51, "i64.eq", []wasm.ValueType{i64, i64}, i32)
	I64Ne  = newOp(0x52, "i64.ne", []wasm.ValueType{i64, i64}, i32)
	I64LtS = newOp(0x53, "i64.lt_s", []wasm.ValueType{i64, i64}, i32)
	I64LtU = newOp(0x54, "i64.lt_u", []wasm.ValueType{i64, i64}, i32)
	I64GtS = newOp(0x55, "i64.gt_s", []wasm.ValueType{i64, i64}, i32)
	I64GtU = newOp(0x56, "i64.gt_u", []wasm.ValueType{i64, i64}, i32)
	I64LeS = newOp(0x57, "i64.le_s", []wasm.ValueType{i64, i64}, i32)
	I64LeU = newOp(0x58, "i64.le_u", []wasm.ValueType{i64, i64}, i32)
	I64GeS = newOp(0x59, "i64.ge_s", []wasm.ValueType{i64, i64}, i32)
	I64GeU = newOp(0x5a, "i64.ge_u", []wasm.ValueType{i64, i64}, i32)

	F32Eq = newOp(0x5b, "f32.eq", []wasm.ValueType{f32, f32}, i32)
	F32Ne = newOp(0x5c, "f32.ne", []wasm.ValueType{f32, f32}, i32)
	F32Lt = newOp(0x5d, "f32.lt", []wasm.ValueType{f32, f32}, i32)
	F32Gt = newOp(0x5e, "f32.gt", []wasm.ValueType{f32, f32}, i32)
	F32Le = newOp(0x5f, "f32.le", []wasm.ValueType{f32, f32}, i32)
	F32Ge = newOp(0x60, "f32.ge", []wasm.ValueType{f32, f32}, i32)

	F64Eq = newOp(0x61, "f64.eq", []wasm.ValueType{f64, f64}, i32)
	F64Ne = newOp(0x62, "f64.ne", []wasm.ValueType{f64, f64}, i32)
	F64Lt = newOp(0x63, "f64.lt", []wasm.ValueType{f64, f64}, i32)
	F64Gt = newOp(0x64, "f64.gt", []wasm.ValueType{f64, f64}, i32)
	F64Le = newOp(0x65, "f64.le", []wasm.ValueType{f64, f64}, i32)
	F64Ge = newOp(0x66, "f64.ge", []wasm.ValueType{f64, f64}, i32)

	I32Clz    = newOp(0x67, "i32.clz", []wasm.ValueType{i32}, i32)
	I32Ctz    = newOp(0x68, "i32.ctz", []wasm.ValueType{i32}, i32)
	I32Popcnt = newOp(0x69, "i32.popcnt", []wasm.ValueType{i32}, i32)
	I32Add    = newOp(0x6a, "i32.add", []wasm.ValueType{i32, i32}, i32)
	I32Sub    = newOp(0x6b, "i32.sub", []wasm.ValueType{i32, i32}, i32)
	I32Mul    = newOp(0x6c, "i32.mul", []wasm.ValueType{i32, i32}, i32)
	I32DivS   = newOp(0x6d, "i32.div_s", []wasm.ValueType{i32, i32}, i32)
	I32DivU   = newOp(0x6e, "i32.div_u", []wasm.ValueType{i32, i32}, i32)
	I32RemS   = newOp(0x6f, "i32.rem_s", []wasm.ValueType{i32, i32}, i32)
	I32RemU   = newOp(0x70, "i32.rem_u", []wasm.ValueType{i32, i32}, i32)
	I32And    = newOp(0x71, "i32.and", []wasm.ValueType{i32, i32}, i32)
	I32Or     = newOp(0x72, "i32.or", []wasm.ValueType{i32, i32}, i32)
	I32Xor    = newOp(0x73, "i32.xor", []wasm.ValueType{i32, i32}, i32)
	I32Shl    = newOp(0x74, "i32.shl", []wasm.ValueType{i32, i32}, i32)
	I32ShrS   = newOp(0x75, "i32.shr_s", []wasm.ValueType{i32, i32}, i32)
	I32ShrU   = newOp(0x76, "i32.shr_u", []wasm.ValueType{i32, i32}, i32)
	I32Rotl   = newOp(0x77, "i32.rotl", []wasm.ValueType{i32, i32}, i32)
	I32Rotr   = newOp(0x78, "i32.rotr", []wasm.ValueType{i32, i32}, i32)

	I64Clz    = newOp(0x79, "i64.clz", []wasm.ValueType{i64}, i64)
	I64Ctz    = newOp(0x7a, "i64.ctz", []wasm.ValueType{i64}, i64)
	I64Popcnt = newOp(0x7b, "i64.popcnt", []wasm.ValueType{i64}, i64)
	I64Add    = newOp(0x7c, "i64.add", []wasm.ValueType{i64, i64}, i64)
	I64Sub    = newOp(0x7d, "i64.sub", []wasm.ValueType{i64, i64}, i64)
	I64Mul    = newOp(0x7e, "i64.mul", []wasm.ValueType{i64, i64}, i64)
	I64DivS   = newOp(0x7f, "i64.div_s", []wasm.ValueType{i64, i64}, i64)
	I64DivU   = newOp(0x80, "i64.div_u", []wasm.ValueType{i64, i64}, i64)
	I64RemS   = newOp(0x81, "i64.rem_s", []wasm.ValueType{i64, i64}, i64)
	I64RemU   = newOp(0x82, "i64.rem_u", []wasm.ValueType{i64, i64}, i64)
	I64And    = newOp(0x83, "i64.and", []wasm.ValueType{i64, i64}, i64)
	I64Or     = newOp(0x84, "i64.or", []wasm.ValueType{i64, i64}, i64)
	I64Xor    = newOp(0x85, "i64.xor", []wasm.ValueType{i64, i64}, i64)
	I64Shl    = newOp(0x86, "i64.shl", []wasm.ValueType{i64, i64}, i64)
	I64ShrS   = newOp(0x87, "i64.shr_s", []wasm.ValueType{i64, i64}, i64)
	I64ShrU   = newOp(0x88, "i64.shr_u", []wasm.ValueType{i64, i64}, i64)
	I64Rotl   = newOp(0x89, "i64.rotl", []wasm.ValueType{i64, i64}, i64)
	I64Rotr   = newOp(0x8a, "i64.rotr", []wasm.ValueType{i64, i64}, i64)

	F32Abs      = newOp(0x8b, "f32.abs", []wasm.ValueType{f32}, f32)
	F32Neg      = newOp(0x8c, "f32.neg", []wasm.ValueType{f32}, f32)
	F32Ceil     = newOp(0x8d, "f32.ceil", []wasm.ValueType{f32}, f32)
	F32Floor    = newOp(0x8e, "f32.floor", []wasm.ValueType{f32}, f32)
	F32Trunc    = newOp(0x8f, "f32.trunc", []wasm.ValueType{f32}, f32)
	F32Nearest  = newOp(0x90, "f32.nearest", []wasm.ValueType{f32}, f32)
	F32Sqrt     = newOp(0x91, "f32.sqrt", []wasm.ValueType{f32}, f32)
	F32Add      = newOp(0x92, "f32.add", []wasm.ValueType{f32, f32}, f32)
	F32Sub      = newOp(0x93, "f32.sub", []wasm.ValueType{f32, f32}, f32)
	F32Mul      = newOp(0x94, "f32.mul", []wasm.ValueType{f32, f32}, f32)
	F32Div      = newOp(0x95, "f32.div", []wasm.ValueType{f32, f32}, f32)
	F32Min      = newOp(0x96, "f32.min", []wasm.ValueType{f32, f32}, f32)
	F32Max      = newOp(0x97, "f32.max", []wasm.ValueType{f32, f32}, f32)
	F32Copysign = newOp(0x98, "f32.copysign", []wasm.ValueType{f32, f32}, f32)

	F64Abs      = newOp(0x99, "f64.abs", []wasm.ValueType{f64}, f64)
	F64Neg      = newOp(0x9a, "f64.neg", []wasm.ValueType{f64}, f64)
	F64Ceil     = newOp(0x9b, "f64.ceil", []wasm.ValueType{f64}, f64)
	F64Floor    = newOp(0x9c, "f64.floor", []wasm.ValueType{f64}, f64)
	F64Trunc    = newOp(0x9d, "f64.trunc", []wasm.ValueType{f64}, f64)
	F64Nearest  = newOp(0x9e, "f64.nearest", []wasm.ValueType{f64}, f64)
	F64Sqrt     = newOp(0x9f, "f64.sqrt", []wasm.ValueType{f64}, f64)
	F64Add      = newOp(0xa0, "f64.add", []wasm.ValueType{f64, f64}, f64)
	F64Sub      = newOp(0xa1, "f64.sub", []wasm.ValueType{f64, f64}, f64)
	F64Mul      = newOp(0xa2, "f64.mul", []wasm.ValueType{f64, f64}, f64)
	F64Div      = newOp(0xa3, "f64.div", []wasm.ValueType{f64, f64}, f64)
	F64Min      = newOp(0xa4, "f64.min", []wasm.ValueType{f64, f64}, f64)
	F64Max      = newOp(0xa5, "f64.max", []wasm.ValueType{f64, f64}, f64)
	F64Copysign = newOp(0xa6, "f64.copysign", []wasm.ValueType{f64, f64}, f64)
)

// Conversions: Args/Returns derived from the mnemonic by newConversionOp.
var (
	I32WrapI64         = newConversionOp(0xa7, "i32.wrap/i64")
	I32TruncSF32       = newConversionOp(0xa8, "i32.trunc_s/f32")
	I32TruncUF32       = newConversionOp(0xa9, "i32.trunc_u/f32")
	I32TruncSF64       = newConversionOp(0xaa, "i32.trunc_s/f64")
	I32TruncUF64       = newConversionOp(0xab, "i32.trunc_u/f64")
	I64ExtendSI32      = newConversionOp(0xac, "i64.extend_s/i32")
	I64ExtendUI32      = newConversionOp(0xad, "i64.extend_u/i32")
	I64TruncSF32       = newConversionOp(0xae, "i64.trunc_s/f32")
	I64TruncUF32       = newConversionOp(0xaf, "i64.trunc_u/f32")
	I64TruncSF64       = newConversionOp(0xb0, "i64.trunc_s/f64")
	I64TruncUF64       = newConversionOp(0xb1, "i64.trunc_u/f64")
	F32ConvertSI32     = newConversionOp(0xb2, "f32.convert_s/i32")
	F32ConvertUI32     = newConversionOp(0xb3, "f32.convert_u/i32")
	F32ConvertSI64     = newConversionOp(0xb4, "f32.convert_s/i64")
	F32ConvertUI64     = newConversionOp(0xb5, "f32.convert_u/i64")
	F32DemoteF64       = newConversionOp(0xb6, "f32.demote/f64")
	F64ConvertSI32     = newConversionOp(0xb7, "f64.convert_s/i32")
	F64ConvertUI32     = newConversionOp(0xb8, "f64.convert_u/i32")
	F64ConvertSI64     = newConversionOp(0xb9, "f64.convert_s/i64")
	F64ConvertUI64     = newConversionOp(0xba, "f64.convert_u/i64")
	F64PromoteF32      = newConversionOp(0xbb, "f64.promote/f32")
	I32ReinterpretF32  = newConversionOp(0xbc, "i32.reinterpret/f32")
	I64ReinterpretF64  = newConversionOp(0xbd, "i64.reinterpret/f64")
	F32ReinterpretI32  = newConversionOp(0xbe, "f32.reinterpret/i32")
	F64ReinterpretI64  = newConversionOp(0xbf, "f64.reinterpret/i64")
)
