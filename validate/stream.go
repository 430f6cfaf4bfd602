// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import "github.com/go-interpreter/wasmvalidate/wasm"

// CodeStream drives a single function's FunctionValidationContext one
// opcode at a time. A surrounding decoder reads the function's opcode
// stream and calls the matching method per opcode; CodeStream itself does
// no byte decoding.
type CodeStream struct {
	ctx *FunctionValidationContext
	pc  int
}

// NewCodeStream constructs a streaming validator for functionDef, the
// index-th entry in the module's function index space (counting imports).
func NewCodeStream(module *wasm.Module, index int, functionDef *wasm.FunctionDef) (*CodeStream, error) {
	sig, ok := module.TypeAt(functionDef.TypeIndex)
	if !ok {
		return nil, wrapf(index, 0, InvalidTypeIndexError(functionDef.TypeIndex))
	}
	locals := make([]wasm.ValueType, 0, len(sig.ParamTypes)+len(functionDef.Locals))
	locals = append(locals, sig.ParamTypes...)
	locals = append(locals, functionDef.Locals...)

	return &CodeStream{
		ctx: NewFunctionValidationContext(module, index, sig, locals),
	}, nil
}

// advance marks pc as the byte offset of the opcode about to be validated,
// traces it under its mnemonic name, and wraps whatever error that
// opcode's handler returns.
func (s *CodeStream) advance(pc int, name string, err error) error {
	s.pc = pc
	s.ctx.setPC(pc)
	if err != nil {
		return s.ctx.err(err)
	}
	if PrintDebugInfo {
		traceOp(s.ctx.index, pc, name, s.ctx.innermost().reachable)
	}
	return nil
}

func (s *CodeStream) Unreachable(pc int) error { return s.advance(pc, "unreachable", s.ctx.Unreachable()) }
func (s *CodeStream) Nop(pc int) error         { return s.advance(pc, "nop", s.ctx.Nop()) }
func (s *CodeStream) Block(pc int, rt wasm.BlockType) error { return s.advance(pc, "block", s.ctx.Block(rt)) }
func (s *CodeStream) Loop(pc int, rt wasm.BlockType) error  { return s.advance(pc, "loop", s.ctx.Loop(rt)) }
func (s *CodeStream) If(pc int, rt wasm.BlockType) error    { return s.advance(pc, "if", s.ctx.If(rt)) }
func (s *CodeStream) Else(pc int) error                     { return s.advance(pc, "else", s.ctx.Else()) }

// End closes the innermost control region opened by a decoded block, loop
// or if. The function-level context is closed only by Finish, once the
// opcode stream is exhausted -- a decoded end that would close it instead
// means the stream closed more regions than it opened.
func (s *CodeStream) End(pc int) error {
	if s.ctx.Depth() == 1 {
		return s.advance(pc, "end", ErrFunctionEndMismatch)
	}
	return s.advance(pc, "end", s.ctx.End())
}

func (s *CodeStream) Return(pc int) error             { return s.advance(pc, "return", s.ctx.Return()) }
func (s *CodeStream) Br(pc int, depth uint32) error   { return s.advance(pc, "br", s.ctx.Br(depth)) }
func (s *CodeStream) BrIf(pc int, depth uint32) error { return s.advance(pc, "br_if", s.ctx.BrIf(depth)) }

func (s *CodeStream) BrTable(pc int, targets []uint32, def uint32) error {
	return s.advance(pc, "br_table", s.ctx.BrTable(targets, def))
}

func (s *CodeStream) Call(pc int, index uint32) error {
	return s.advance(pc, "call", s.ctx.Call(index))
}

func (s *CodeStream) CallIndirect(pc int, typeIndex uint32) error {
	return s.advance(pc, "call_indirect", s.ctx.CallIndirect(typeIndex))
}

func (s *CodeStream) Drop(pc int) error   { return s.advance(pc, "drop", s.ctx.Drop()) }
func (s *CodeStream) Select(pc int) error { return s.advance(pc, "select", s.ctx.Select()) }

func (s *CodeStream) GetLocal(pc int, index uint32) error { return s.advance(pc, "get_local", s.ctx.GetLocal(index)) }
func (s *CodeStream) SetLocal(pc int, index uint32) error { return s.advance(pc, "set_local", s.ctx.SetLocal(index)) }
func (s *CodeStream) TeeLocal(pc int, index uint32) error { return s.advance(pc, "tee_local", s.ctx.TeeLocal(index)) }

func (s *CodeStream) GetGlobal(pc int, index uint32) error { return s.advance(pc, "get_global", s.ctx.GetGlobal(index)) }
func (s *CodeStream) SetGlobal(pc int, index uint32) error { return s.advance(pc, "set_global", s.ctx.SetGlobal(index)) }

func (s *CodeStream) Load(pc int, op wasm.Opcode, align, offset uint32) error {
	return s.advance(pc, op.String(), s.ctx.Load(op, align, offset))
}

func (s *CodeStream) Store(pc int, op wasm.Opcode, align, offset uint32) error {
	return s.advance(pc, op.String(), s.ctx.Store(op, align, offset))
}

func (s *CodeStream) CurrentMemory(pc int) error { return s.advance(pc, "current_memory", s.ctx.CurrentMemory()) }
func (s *CodeStream) GrowMemory(pc int) error    { return s.advance(pc, "grow_memory", s.ctx.GrowMemory()) }

func (s *CodeStream) I32Const(pc int, v int32) error  { return s.advance(pc, "i32.const", s.ctx.I32Const(v)) }
func (s *CodeStream) I64Const(pc int, v int64) error  { return s.advance(pc, "i64.const", s.ctx.I64Const(v)) }
func (s *CodeStream) F32Const(pc int, v uint32) error { return s.advance(pc, "f32.const", s.ctx.F32Const(v)) }
func (s *CodeStream) F64Const(pc int, v uint64) error { return s.advance(pc, "f64.const", s.ctx.F64Const(v)) }

// Simple dispatches every opcode whose effect is fully described by the
// operators table (arithmetic, comparison, conversion).
func (s *CodeStream) Simple(pc int, op byte) error {
	return s.advance(pc, wasm.Opcode(op).String(), s.ctx.Simple(op))
}

// Finish closes the function's own implicit block (the code passed to the
// CodeStream never carries the trailing end byte the decoder stripped)
// and checks that doing so empties the control stack. A stream whose
// decoded opcodes left more than the function-level context open has an
// unmatched block, loop or if.
func (s *CodeStream) Finish() error {
	if s.ctx.Depth() != 1 {
		return s.ctx.err(ErrFunctionEndMismatch)
	}
	return s.advance(s.pc, "end", s.ctx.End())
}
