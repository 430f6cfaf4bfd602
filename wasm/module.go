// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"errors"
	"io"

	"github.com/go-interpreter/wasmvalidate/wasm/internal/readpos"
)

var ErrInvalidMagic = errors.New("wasm: invalid magic number")

const (
	Magic   uint32 = 0x6d736100
	Version uint32 = 0x1
)

// FunctionDef is a function defined (not imported) by the module: a type
// index plus the raw code-section payload for its body.
type FunctionDef struct {
	TypeIndex uint32
	Locals    []ValueType // declared non-parameter locals, in declaration order
	Code      []byte      // opcode stream, without the trailing "end" and without the locals header
}

// GlobalDef is a global variable defined (not imported) by the module.
type GlobalDef struct {
	Type GlobalVar
	Init InitExpr
}

// ElementSegment describes the initial contents of a range of a table.
type ElementSegment struct {
	TableIndex uint32
	Offset     InitExpr
	Elems      []uint32
}

// DataSegment describes the initial contents of a range of linear memory.
type DataSegment struct {
	MemoryIndex uint32
	Offset      InitExpr
	Data        []byte
}

// Module is a decoded WebAssembly module, flattened into plain slices
// indexed by declaration order rather than wrapped section types. Index
// spaces (functions, globals, tables, memories) are the concatenation of
// imports followed by local definitions, per the Wasm module spec.
type Module struct {
	Version uint32

	Types     []FunctionSig
	Imports   []Import
	Functions []FunctionDef
	Tables    []Table
	Memories  []Memory
	Globals   []GlobalDef
	Exports   []ExportEntry
	Start     *uint32
	Elements  []ElementSegment
	Data      []DataSegment
	Custom    []Section

	// funcTypeIdx carries the raw function-section type indices, recorded
	// separately from Functions so readSectionCode can cross-check the
	// function and code section entry counts before pairing them up.
	funcTypeIdx []uint32
}

// DecodeModule reads a module's binary encoding from r.
func DecodeModule(r io.Reader) (*Module, error) {
	reader := &readpos.ReadPos{R: r}
	m := &Module{}

	magic, err := readU32(reader)
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}
	if m.Version, err = readU32(reader); err != nil {
		return nil, err
	}

	for {
		done, err := m.readSection(reader)
		if err != nil {
			return nil, err
		} else if done {
			break
		}
	}

	if len(m.funcTypeIdx) != len(m.Functions) {
		return nil, errors.New("wasm: the number of entries in the function and code section are unequal")
	}

	logger.Printf("decoded module: %d types, %d imports, %d functions, %d globals", len(m.Types), len(m.Imports), len(m.Functions), len(m.Globals))
	return m, nil
}
