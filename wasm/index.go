package wasm

import "fmt"

// Functions for looking up entries in a module's index spaces: the
// concatenation of a kind's imports followed by its local definitions.
// More info: http://webassembly.org/docs/modules/#function-index-space

type InvalidFunctionIndexError uint32

func (e InvalidFunctionIndexError) Error() string {
	return fmt.Sprintf("wasm: invalid index to function index space: %#x", uint32(e))
}

type InvalidGlobalIndexError uint32

func (e InvalidGlobalIndexError) Error() string {
	return fmt.Sprintf("wasm: invalid index to global index space: %#x", uint32(e))
}

type InvalidTableIndexError uint32

func (e InvalidTableIndexError) Error() string {
	return fmt.Sprintf("wasm: invalid index to table index space: %#x", uint32(e))
}

type InvalidLinearMemoryIndexError uint32

func (e InvalidLinearMemoryIndexError) Error() string {
	return fmt.Sprintf("wasm: invalid linear memory index: %#x", uint32(e))
}

type InvalidTypeIndexError uint32

func (e InvalidTypeIndexError) Error() string {
	return fmt.Sprintf("wasm: invalid index into the type section: %#x", uint32(e))
}

// FuncCount returns the size of the function index space: imported
// functions followed by locally defined ones.
func (m *Module) FuncCount() int {
	return m.importCount(ExternalFunction) + len(m.Functions)
}

// FunctionSig resolves i in the function index space to its signature,
// whether i names an imported or a locally defined function.
func (m *Module) FunctionSig(i uint32) (*FunctionSig, bool) {
	nImports := m.importCount(ExternalFunction)
	if i < uint32(nImports) {
		typeIdx := m.nthImport(ExternalFunction, int(i)).FuncType
		return m.TypeAt(typeIdx)
	}
	j := int(i) - nImports
	if j < 0 || j >= len(m.Functions) {
		return nil, false
	}
	return m.TypeAt(m.Functions[j].TypeIndex)
}

// FunctionIsImported reports whether i in the function index space names
// an imported function rather than a local definition.
func (m *Module) FunctionIsImported(i uint32) bool {
	return i < uint32(m.importCount(ExternalFunction))
}

// TypeAt resolves an index into the type section.
func (m *Module) TypeAt(i uint32) (*FunctionSig, bool) {
	if int(i) >= len(m.Types) {
		return nil, false
	}
	return &m.Types[i], true
}

// GlobalCount returns the size of the global index space.
func (m *Module) GlobalCount() int {
	return m.importCount(ExternalGlobal) + len(m.Globals)
}

// GlobalType resolves i in the global index space to its declared type.
func (m *Module) GlobalType(i uint32) (GlobalVar, bool) {
	nImports := m.importCount(ExternalGlobal)
	if i < uint32(nImports) {
		return m.nthImport(ExternalGlobal, int(i)).GlobalType, true
	}
	j := int(i) - nImports
	if j < 0 || j >= len(m.Globals) {
		return GlobalVar{}, false
	}
	return m.Globals[j].Type, true
}

// GlobalIsImported reports whether i in the global index space names an
// imported global rather than a local definition.
func (m *Module) GlobalIsImported(i uint32) bool {
	return i < uint32(m.importCount(ExternalGlobal))
}

// TableCount returns the total number of tables (imports + defs). The MVP
// permits at most one.
func (m *Module) TableCount() int {
	return m.importCount(ExternalTable) + len(m.Tables)
}

// MemoryCount returns the total number of memories (imports + defs). The
// MVP permits at most one.
func (m *Module) MemoryCount() int {
	return m.importCount(ExternalMemory) + len(m.Memories)
}

// HasMemory reports whether the module declares or imports a default
// memory that memory opcodes may operate on.
func (m *Module) HasMemory() bool {
	return m.MemoryCount() > 0
}

// HasTable reports whether the module declares or imports a default table
// that call_indirect and element segments may operate on.
func (m *Module) HasTable() bool {
	return m.TableCount() > 0
}

func (m *Module) importCount(kind External) int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Kind == kind {
			n++
		}
	}
	return n
}

// nthImport returns the n-th import (0-based) of the given kind. Callers
// must have already checked that n is in range via importCount.
func (m *Module) nthImport(kind External, n int) Import {
	i := 0
	for _, imp := range m.Imports {
		if imp.Kind != kind {
			continue
		}
		if i == n {
			return imp
		}
		i++
	}
	panic("wasm: nthImport index out of range")
}
