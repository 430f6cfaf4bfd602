// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-interpreter/wasmvalidate/wasm"
	ops "github.com/go-interpreter/wasmvalidate/wasm/operators"
)

// cause unwraps a validate.Error down to the concrete error it wraps, so
// table-driven tests can compare against a plain sentinel or struct value
// instead of reimplementing Error's formatting.
func cause(err error) error {
	if err == nil {
		return nil
	}
	if u := errors.Unwrap(err); u != nil {
		if u2 := errors.Unwrap(u); u2 != nil {
			return u2
		}
		return u
	}
	return err
}

func oneFuncModule(sig wasm.FunctionSig, locals []wasm.ValueType, code []byte) *wasm.Module {
	return &wasm.Module{
		Types:     []wasm.FunctionSig{sig},
		Functions: []wasm.FunctionDef{{TypeIndex: 0, Locals: locals, Code: code}},
	}
}

func withMemory(m *wasm.Module) *wasm.Module {
	m.Memories = []wasm.Memory{{Limits: &wasm.ResizableLimits{Initial: 1}}}
	return m
}

// blockType LEB128-encodes a block's signature byte the way the binary
// format actually stores it (e.g. i32 is wire byte 0x7f, not Go's
// in-memory -1), for building inline test bytecode by hand.
func blockType(v wasm.BlockType) byte {
	return byte(v) & 0x7f
}

func TestValidateAlignment(t *testing.T) {
	tcs := []struct {
		name string
		code []byte
		err  error
	}{
		{
			name: "i32.load8s alignment",
			code: []byte{ops.I32Const, 0, ops.I32Load8s, 2, 0},
			err:  InvalidImmediateError{OpName: "i32.load8_s", ImmType: "naturally aligned"},
		},
		{
			name: "i32.load16u alignment",
			code: []byte{ops.I32Const, 0, ops.I32Load16u, 4, 0},
			err:  InvalidImmediateError{OpName: "i32.load16_u", ImmType: "naturally aligned"},
		},
		{
			name: "i32.load alignment",
			code: []byte{ops.I32Const, 0, ops.I32Load, 8, 0},
			err:  InvalidImmediateError{OpName: "i32.load", ImmType: "naturally aligned"},
		},
		{
			name: "i64.load32s alignment",
			code: []byte{ops.I32Const, 0, ops.I64Load32s, 8, 0},
			err:  InvalidImmediateError{OpName: "i64.load32_s", ImmType: "naturally aligned"},
		},
		{
			name: "f64.load alignment",
			code: []byte{ops.I32Const, 0, ops.F64Load, 16, 0},
			err:  InvalidImmediateError{OpName: "f64.load", ImmType: "naturally aligned"},
		},
		{
			name: "i32.load naturally aligned accepts",
			code: []byte{ops.I32Const, 0, ops.I32Load, 2, 0, ops.Drop},
			err:  nil,
		},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			mod := withMemory(oneFuncModule(wasm.FunctionSig{}, nil, tc.code))
			err := Code(mod)
			assert.Equal(t, tc.err, cause(err))
		})
	}
}

func TestValidateMemoryPresence(t *testing.T) {
	code := []byte{ops.CurrentMemory, 0, ops.Drop}
	mod := oneFuncModule(wasm.FunctionSig{}, nil, code)
	err := Code(mod)
	assert.Equal(t, ErrNoMemory, cause(err))

	mod = withMemory(oneFuncModule(wasm.FunctionSig{}, nil, code))
	require.NoError(t, Code(mod))
}

func TestValidateFuncTypecheck(t *testing.T) {
	i32 := []wasm.ValueType{wasm.ValueTypeI32}

	tcs := []struct {
		name string
		sig  wasm.FunctionSig
		code []byte
		err  error
	}{
		{
			name: "accept i32 const as i32 result",
			sig:  wasm.FunctionSig{ReturnTypes: i32},
			code: []byte{ops.I32Const, 7},
		},
		{
			name: "reject type mismatch in i32.add",
			sig:  wasm.FunctionSig{ReturnTypes: i32},
			code: []byte{ops.I32Const, 1, ops.I64Const, 2, ops.I32Add},
			err:  InvalidTypeError{Wanted: wasm.ValueTypeI32, Got: wasm.ValueTypeI64, Context: "i32.add operand"},
		},
		{
			name: "unreachable accepts any fall-through result",
			sig:  wasm.FunctionSig{ReturnTypes: i32},
			code: []byte{ops.Unreachable},
		},
		{
			name: "underflow on empty stack",
			sig:  wasm.FunctionSig{ReturnTypes: i32},
			code: []byte{ops.Nop},
			err:  ErrStackUnderflow,
		},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			mod := oneFuncModule(tc.sig, nil, tc.code)
			err := Code(mod)
			assert.Equal(t, tc.err, cause(err))
		})
	}
}

func TestValidateBlockResult(t *testing.T) {
	// block i32 (unreachable) end; end -- the inner block materializes a
	// real i32 on the outer stack even though its body never produces one.
	code := []byte{
		ops.Block, blockType(wasm.BlockType(wasm.ValueTypeI32)), ops.Unreachable, ops.End,
	}
	mod := oneFuncModule(wasm.FunctionSig{ReturnTypes: []wasm.ValueType{wasm.ValueTypeI32}}, nil, code)
	require.NoError(t, Code(mod))
}

func TestValidateElselessIf(t *testing.T) {
	code := []byte{
		ops.I32Const, 0,
		ops.If, blockType(wasm.BlockType(wasm.ValueTypeI32)),
		ops.I32Const, 1,
		ops.End,
	}
	mod := oneFuncModule(wasm.FunctionSig{}, nil, code)
	err := Code(mod)
	assert.Equal(t, ErrElselessIf, cause(err))
}

func TestValidateIfElse(t *testing.T) {
	code := []byte{
		ops.I32Const, 0,
		ops.If, blockType(wasm.BlockType(wasm.ValueTypeI32)),
		ops.I32Const, 1,
		ops.Else,
		ops.I32Const, 2,
		ops.End,
		ops.Drop,
	}
	mod := oneFuncModule(wasm.FunctionSig{}, nil, code)
	require.NoError(t, Code(mod))
}

func TestValidateBrTable(t *testing.T) {
	// block () (i32.const 0; br_table [0, 0] 0) end
	code := []byte{
		ops.Block, blockType(wasm.BlockTypeEmpty),
		ops.I32Const, 0,
		ops.BrTable, 2, 0, 0, 0,
		ops.End,
	}
	mod := oneFuncModule(wasm.FunctionSig{}, nil, code)
	require.NoError(t, Code(mod))
}

func TestValidateBrTableMismatch(t *testing.T) {
	code := []byte{
		ops.Block, blockType(wasm.BlockType(wasm.ValueTypeI32)),
		ops.Block, blockType(wasm.BlockTypeEmpty),
		ops.I32Const, 0,
		ops.BrTable, 2, 0, 1, 0, // targets depth 0 (empty) and depth 1 (i32) disagree
		ops.End,
		ops.Drop,
		ops.End,
	}
	mod := oneFuncModule(wasm.FunctionSig{}, nil, code)
	err := Code(mod)
	var mismatch BrTableTargetMismatchError
	require.True(t, errors.As(err, &mismatch))
}

func TestValidateCallIndirectWithoutTable(t *testing.T) {
	code := []byte{ops.I32Const, 0, ops.CallIndirect, 0, 0}
	mod := oneFuncModule(wasm.FunctionSig{}, nil, code)
	err := Code(mod)
	assert.Equal(t, ErrNoTable, cause(err))
}

func TestValidateLocals(t *testing.T) {
	code := []byte{ops.GetLocal, 0, ops.SetLocal, 1, ops.GetLocal, 1, ops.Drop}
	sig := wasm.FunctionSig{ParamTypes: []wasm.ValueType{wasm.ValueTypeI32}}
	mod := oneFuncModule(sig, []wasm.ValueType{wasm.ValueTypeI32}, code)
	require.NoError(t, Code(mod))
}

func TestValidateUnreachableBlockStaysReachable(t *testing.T) {
	// unreachable; block () drop end -- the block is a fresh region and
	// must type-check on its own merits, not inherit the unreachability
	// of the code that opened it.
	code := []byte{
		ops.Unreachable,
		ops.Block, blockType(wasm.BlockTypeEmpty),
		ops.Drop,
		ops.End,
	}
	mod := oneFuncModule(wasm.FunctionSig{}, nil, code)
	err := Code(mod)
	assert.Equal(t, ErrStackUnderflow, cause(err))
}

func TestValidateUnreachableElseStaysReachable(t *testing.T) {
	// unreachable; if () else (i32.add) end -- the else-branch is a fresh
	// region and must type-check on its own merits, not inherit the
	// unreachability of the code that opened the if.
	code := []byte{
		ops.Unreachable,
		ops.I32Const, 0,
		ops.If, blockType(wasm.BlockTypeEmpty),
		ops.Else,
		ops.I32Add,
		ops.End,
	}
	mod := oneFuncModule(wasm.FunctionSig{}, nil, code)
	err := Code(mod)
	assert.Equal(t, ErrStackUnderflow, cause(err))
}

func TestValidatePrematureEnd(t *testing.T) {
	// end (closes the function-level context early) followed by another
	// opcode; must be rejected, not panic on an empty control stack.
	code := []byte{ops.End, ops.Nop}
	mod := oneFuncModule(wasm.FunctionSig{}, nil, code)
	err := Code(mod)
	assert.Equal(t, ErrFunctionEndMismatch, cause(err))
}

func TestDefinitionsDuplicateExport(t *testing.T) {
	mod := oneFuncModule(wasm.FunctionSig{}, nil, []byte{ops.Nop})
	mod.Exports = []wasm.ExportEntry{
		{FieldStr: "f", Kind: wasm.ExternalFunction, Index: 0},
		{FieldStr: "f", Kind: wasm.ExternalFunction, Index: 0},
	}
	err := Definitions(mod)
	assert.Equal(t, DuplicateExportError("f"), cause(err))
}

func TestDefinitionsMutableGlobalExport(t *testing.T) {
	mod := oneFuncModule(wasm.FunctionSig{}, nil, []byte{ops.Nop})
	mod.Globals = []wasm.GlobalDef{
		{Type: wasm.GlobalVar{ContentType: wasm.ValueTypeI32, Mutable: true}, Init: wasm.InitExpr{Opcode: wasm.OpI32Const, I32: 0}},
	}
	mod.Exports = []wasm.ExportEntry{{FieldStr: "g", Kind: wasm.ExternalGlobal, Index: 0}}
	err := Definitions(mod)
	assert.Equal(t, ErrImmutableGlobal, cause(err))
}

func TestDefinitionsStartFunctionShape(t *testing.T) {
	i32 := []wasm.ValueType{wasm.ValueTypeI32}
	mod := oneFuncModule(wasm.FunctionSig{ReturnTypes: i32}, nil, []byte{ops.I32Const, 0})
	idx := uint32(0)
	mod.Start = &idx
	err := Definitions(mod)
	assert.Equal(t, ErrStartFunctionShape, cause(err))
}

func TestDefinitionsImportedMutableGlobal(t *testing.T) {
	mod := &wasm.Module{
		Imports: []wasm.Import{
			{ModuleName: "env", FieldName: "g", Kind: wasm.ExternalGlobal,
				GlobalType: wasm.GlobalVar{ContentType: wasm.ValueTypeI32, Mutable: true}},
		},
	}
	err := Definitions(mod)
	assert.Equal(t, ErrImmutableGlobal, cause(err))
}

func TestDefinitionsInitExprReferencesMutableGlobal(t *testing.T) {
	mod := &wasm.Module{
		Imports: []wasm.Import{
			{ModuleName: "env", FieldName: "g", Kind: wasm.ExternalGlobal,
				GlobalType: wasm.GlobalVar{ContentType: wasm.ValueTypeI32, Mutable: true}},
		},
		Globals: []wasm.GlobalDef{
			{Type: wasm.GlobalVar{ContentType: wasm.ValueTypeI32}, Init: wasm.InitExpr{Opcode: wasm.OpGetGlobal, GlobalIndex: 0}},
		},
	}
	err := Definitions(mod)
	assert.Equal(t, ErrImmutableGlobal, cause(err))
}
