// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-interpreter/wasmvalidate/wasm"
)

// section builds one module section: a leb128 id, a leb128 payload length,
// then the payload itself.
func section(id wasm.SectionID, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(id))
	buf.WriteByte(byte(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

func header() []byte {
	return []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
}

// oneVoidFunc builds a minimal module declaring one function, type ()->(),
// whose body is just the implicit end byte (no other opcodes).
func oneVoidFunc(omitFunctionSection, omitCodeSection bool) []byte {
	var buf bytes.Buffer
	buf.Write(header())

	// type section: one func type, no params, no results.
	buf.Write(section(wasm.SectionIDType, []byte{0x01, 0x60, 0x00, 0x00}))

	if !omitFunctionSection {
		// function section: one function, using type index 0.
		buf.Write(section(wasm.SectionIDFunction, []byte{0x01, 0x00}))
	}

	if !omitCodeSection {
		// code section: one body, size 2, no locals, end.
		buf.Write(section(wasm.SectionIDCode, []byte{0x01, 0x02, 0x00, 0x0b}))
	}

	return buf.Bytes()
}

func TestDecodeModuleMinimal(t *testing.T) {
	m, err := wasm.DecodeModule(bytes.NewReader(oneVoidFunc(false, false)))
	require.NoError(t, err)

	require.Len(t, m.Types, 1)
	assert.Empty(t, m.Types[0].ParamTypes)
	assert.Empty(t, m.Types[0].ReturnTypes)

	require.Len(t, m.Functions, 1)
	assert.Equal(t, uint32(0), m.Functions[0].TypeIndex)
	assert.Empty(t, m.Functions[0].Locals)
	assert.Empty(t, m.Functions[0].Code, "the trailing end byte is stripped from the body")
}

func TestDecodeModuleBadMagic(t *testing.T) {
	raw := oneVoidFunc(false, false)
	raw[0] = 0xff
	_, err := wasm.DecodeModule(bytes.NewReader(raw))
	assert.Equal(t, wasm.ErrInvalidMagic, err)
}

func TestDecodeModuleFunctionCodeCountMismatch(t *testing.T) {
	_, err := wasm.DecodeModule(bytes.NewReader(oneVoidFunc(false, true)))
	require.Error(t, err)

	_, err = wasm.DecodeModule(bytes.NewReader(oneVoidFunc(true, false)))
	require.Error(t, err)
}

func TestDecodeModuleTruncatedSection(t *testing.T) {
	raw := oneVoidFunc(false, false)
	_, err := wasm.DecodeModule(bytes.NewReader(raw[:len(raw)-1]))
	assert.Error(t, err)
}
