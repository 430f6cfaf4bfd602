// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"math"

	"github.com/go-interpreter/wasmvalidate/wasm"
)

// maxMemoryPages is the MVP ceiling on linear memory size, in 64KiB pages.
const maxMemoryPages = 65536

// uint32Ceil is the implementation ceiling table definitions are checked
// against; the spec names this UINT32_MAX.
const uint32Ceil = uint64(math.MaxUint32)

// uintptrCeil is the implementation ceiling table imports are checked
// against; the spec names this UINTPTR_MAX.
const uintptrCeil = uint64(^uintptr(0))

// Definitions runs every module-level check: types, imports, function
// defs, tables, memories, globals, exports, the start function, and the
// data/element segments. It does not look at function bodies -- that is
// Code's job.
func Definitions(module *wasm.Module) error {
	if err := checkTypes(module); err != nil {
		return err
	}
	if err := checkImports(module); err != nil {
		return err
	}
	if err := checkFunctionDefs(module); err != nil {
		return err
	}
	if err := checkTables(module); err != nil {
		return err
	}
	if err := checkMemories(module); err != nil {
		return err
	}
	if err := checkGlobals(module); err != nil {
		return err
	}
	if err := checkExports(module); err != nil {
		return err
	}
	if err := checkStart(module); err != nil {
		return err
	}
	if err := checkDataSegments(module); err != nil {
		return err
	}
	if err := checkElementSegments(module); err != nil {
		return err
	}
	// The function/code section entry-count check (4.1 rule 11) is already
	// enforced by wasm.DecodeModule before a Module value can exist; there
	// is nothing left to re-check here for a module built through Decode.
	return nil
}

func checkTypes(module *wasm.Module) error {
	for _, sig := range module.Types {
		for _, p := range sig.ParamTypes {
			if !p.Valid() {
				return InvalidTypeError{Got: p, Context: "function parameter type"}
			}
		}
		if rt := sig.Result(); !rt.Valid() {
			return InvalidTypeError{Got: wasm.ValueType(rt), Context: "function result type"}
		}
	}
	return nil
}

func checkSizeLimits(what string, lim *wasm.ResizableLimits, ceil uint64) error {
	m := ceil
	if lim.Flags && lim.Maximum != nil {
		m = uint64(*lim.Maximum)
	}
	if uint64(lim.Initial) > m || m > ceil {
		return SizeLimitError{What: what, Min: uint64(lim.Initial), Max: m, Ceil: ceil}
	}
	return nil
}

func checkImports(module *wasm.Module) error {
	for _, imp := range module.Imports {
		switch imp.Kind {
		case wasm.ExternalFunction:
			if _, ok := module.TypeAt(imp.FuncType); !ok {
				return InvalidTypeIndexError(imp.FuncType)
			}
		case wasm.ExternalTable:
			if imp.TableType.ElementType != wasm.ElemTypeAnyFunc {
				return ErrInvalidElemType
			}
			if err := checkSizeLimits("table", imp.TableType.Limits, uintptrCeil); err != nil {
				return err
			}
		case wasm.ExternalMemory:
			if err := checkSizeLimits("memory", imp.MemType.Limits, maxMemoryPages); err != nil {
				return err
			}
		case wasm.ExternalGlobal:
			if !imp.GlobalType.ContentType.Valid() {
				return InvalidTypeError{Got: imp.GlobalType.ContentType, Context: "imported global"}
			}
			if imp.GlobalType.Mutable {
				return ErrImmutableGlobal
			}
		default:
			return wasm.InvalidExternalError(imp.Kind)
		}
	}
	return nil
}

func checkFunctionDefs(module *wasm.Module) error {
	for _, fn := range module.Functions {
		if _, ok := module.TypeAt(fn.TypeIndex); !ok {
			return InvalidTypeIndexError(fn.TypeIndex)
		}
		for _, l := range fn.Locals {
			if !l.Valid() {
				return InvalidTypeError{Got: l, Context: "local variable"}
			}
		}
	}
	return nil
}

func checkTables(module *wasm.Module) error {
	if module.TableCount() > 1 {
		return TooManyError("table")
	}
	for i := range module.Tables {
		t := &module.Tables[i]
		if t.ElementType != wasm.ElemTypeAnyFunc {
			return ErrInvalidElemType
		}
		if err := checkSizeLimits("table", t.Limits, uint32Ceil); err != nil {
			return err
		}
	}
	return nil
}

func checkMemories(module *wasm.Module) error {
	if module.MemoryCount() > 1 {
		return TooManyError("memory")
	}
	for i := range module.Memories {
		if err := checkSizeLimits("memory", module.Memories[i].Limits, maxMemoryPages); err != nil {
			return err
		}
	}
	return nil
}

func checkGlobals(module *wasm.Module) error {
	for i := range module.Globals {
		g := &module.Globals[i]
		if !g.Type.ContentType.Valid() {
			return InvalidTypeError{Got: g.Type.ContentType, Context: "global variable"}
		}
		if err := checkInitExpr(module, g.Init, g.Type.ContentType); err != nil {
			return err
		}
	}
	return nil
}

// checkInitExpr implements the initializer-expression grammar of 4.2: a
// single constant node, or a reference to an imported immutable global of
// matching type.
func checkInitExpr(module *wasm.Module, e wasm.InitExpr, expected wasm.ValueType) error {
	var got wasm.ValueType
	switch e.Opcode {
	case wasm.OpI32Const:
		got = wasm.ValueTypeI32
	case wasm.OpI64Const:
		got = wasm.ValueTypeI64
	case wasm.OpF32Const:
		got = wasm.ValueTypeF32
	case wasm.OpF64Const:
		got = wasm.ValueTypeF64
	case wasm.OpGetGlobal:
		if !module.GlobalIsImported(e.GlobalIndex) {
			return InvalidGlobalIndexError(e.GlobalIndex)
		}
		g, ok := module.GlobalType(e.GlobalIndex)
		if !ok {
			return InvalidGlobalIndexError(e.GlobalIndex)
		}
		if g.Mutable {
			return ErrImmutableGlobal
		}
		got = g.ContentType
	default:
		return wasm.InvalidInitExprOpcodeError(e.Opcode)
	}
	if got != expected {
		return InvalidTypeError{Wanted: expected, Got: got, Context: "initializer expression"}
	}
	return nil
}

func checkExports(module *wasm.Module) error {
	seen := make(map[string]bool, len(module.Exports))
	for _, exp := range module.Exports {
		if seen[exp.FieldStr] {
			return DuplicateExportError(exp.FieldStr)
		}
		seen[exp.FieldStr] = true

		switch exp.Kind {
		case wasm.ExternalFunction:
			if exp.Index >= uint32(module.FuncCount()) {
				return InvalidFunctionIndexError(exp.Index)
			}
		case wasm.ExternalTable:
			if exp.Index >= uint32(module.TableCount()) {
				return InvalidTableIndexError(exp.Index)
			}
		case wasm.ExternalMemory:
			if exp.Index >= uint32(module.MemoryCount()) {
				return wasm.InvalidLinearMemoryIndexError(exp.Index)
			}
		case wasm.ExternalGlobal:
			g, ok := module.GlobalType(exp.Index)
			if !ok {
				return InvalidGlobalIndexError(exp.Index)
			}
			if g.Mutable {
				return ErrImmutableGlobal
			}
		default:
			return wasm.InvalidExternalError(exp.Kind)
		}
	}
	return nil
}

func checkStart(module *wasm.Module) error {
	if module.Start == nil {
		return nil
	}
	sig, ok := module.FunctionSig(*module.Start)
	if !ok {
		return InvalidFunctionIndexError(*module.Start)
	}
	if len(sig.ParamTypes) != 0 || sig.Result() != wasm.BlockTypeEmpty {
		return ErrStartFunctionShape
	}
	return nil
}

func checkDataSegments(module *wasm.Module) error {
	for _, d := range module.Data {
		if d.MemoryIndex >= uint32(module.MemoryCount()) {
			return wasm.InvalidLinearMemoryIndexError(d.MemoryIndex)
		}
		if err := checkInitExpr(module, d.Offset, wasm.ValueTypeI32); err != nil {
			return err
		}
	}
	return nil
}

func checkElementSegments(module *wasm.Module) error {
	for _, e := range module.Elements {
		if e.TableIndex >= uint32(module.TableCount()) {
			return InvalidTableIndexError(e.TableIndex)
		}
		if err := checkInitExpr(module, e.Offset, wasm.ValueTypeI32); err != nil {
			return err
		}
		for _, fn := range e.Elems {
			if fn >= uint32(module.FuncCount()) {
				return InvalidFunctionIndexError(fn)
			}
		}
	}
	return nil
}
