// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"fmt"
	"io"

	"github.com/go-interpreter/wasmvalidate/wasm/leb128"
)

// Import describes a single entry of the import section. Exactly one of
// FuncType, TableType, MemType, GlobalType is meaningful, selected by Kind.
//
// Unlike the original decoder this module was built from, imports are not
// resolved against another module's exports: the validator only needs the
// declared external type of each import, never its linked value.
type Import struct {
	ModuleName string
	FieldName  string
	Kind       External

	FuncType   uint32
	TableType  Table
	MemType    Memory
	GlobalType GlobalVar
}

type InvalidExternalError uint8

func (e InvalidExternalError) Error() string {
	return fmt.Sprintf("wasm: invalid external_kind value %d", uint8(e))
}

func readImportEntry(r io.Reader) (Import, error) {
	i := Import{}

	modLen, err := leb128.ReadVarUint32(r)
	if err != nil {
		return i, err
	}
	if i.ModuleName, err = readString(r, uint(modLen)); err != nil {
		return i, err
	}

	fieldLen, err := leb128.ReadVarUint32(r)
	if err != nil {
		return i, err
	}
	if i.FieldName, err = readString(r, uint(fieldLen)); err != nil {
		return i, err
	}

	if i.Kind, err = readExternal(r); err != nil {
		return i, err
	}

	switch i.Kind {
	case ExternalFunction:
		i.FuncType, err = leb128.ReadVarUint32(r)
	case ExternalTable:
		var t *Table
		t, err = readTable(r)
		if t != nil {
			i.TableType = *t
		}
	case ExternalMemory:
		var m *Memory
		m, err = readMemory(r)
		if m != nil {
			i.MemType = *m
		}
	case ExternalGlobal:
		var g *GlobalVar
		g, err = readGlobalVar(r)
		if g != nil {
			i.GlobalType = *g
		}
	default:
		return i, InvalidExternalError(i.Kind)
	}

	return i, err
}
