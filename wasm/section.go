// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/go-interpreter/wasmvalidate/wasm/internal/readpos"
	"github.com/go-interpreter/wasmvalidate/wasm/leb128"
)

// SectionID is a 1-byte code that encodes the section code of both known and custom sections.
type SectionID uint8

const (
	SectionIDCustom   SectionID = 0
	SectionIDType     SectionID = 1
	SectionIDImport   SectionID = 2
	SectionIDFunction SectionID = 3
	SectionIDTable    SectionID = 4
	SectionIDMemory   SectionID = 5
	SectionIDGlobal   SectionID = 6
	SectionIDExport   SectionID = 7
	SectionIDStart    SectionID = 8
	SectionIDElement  SectionID = 9
	SectionIDCode     SectionID = 10
	SectionIDData     SectionID = 11
)

func (s SectionID) String() string {
	n, ok := map[SectionID]string{
		SectionIDCustom:   "custom",
		SectionIDType:     "type",
		SectionIDImport:   "import",
		SectionIDFunction: "function",
		SectionIDTable:    "table",
		SectionIDMemory:   "memory",
		SectionIDGlobal:   "global",
		SectionIDExport:   "export",
		SectionIDStart:    "start",
		SectionIDElement:  "element",
		SectionIDCode:     "code",
		SectionIDData:     "data",
	}[s]
	if !ok {
		return "unknown"
	}
	return n
}

// Section is a custom (opaque) section carried by a module. Known sections
// are decoded directly into Module's fields; only custom sections are kept
// in their raw form, since their contents (e.g. a "name" section) carry no
// validation-relevant information.
type Section struct {
	ID    SectionID
	Name  string
	Bytes []byte
}

type InvalidSectionIDError SectionID

func (e InvalidSectionIDError) Error() string {
	return fmt.Sprintf("wasm: invalid section ID %d", e)
}

var ErrUnsupportedSection = errors.New("wasm: unsupported section")

// readSection reads a single section from r. The first return value is true
// if and only if the module has been completely read.
func (m *Module) readSection(r *readpos.ReadPos) (bool, error) {
	id, err := leb128.ReadVarUint32(r)
	if err != nil {
		if err == io.EOF {
			return true, nil
		}
		return false, err
	}
	sid := SectionID(id)

	payloadLen, err := leb128.ReadVarUint32(r)
	if err != nil {
		return false, err
	}
	payloadDataLen := payloadLen

	var name string
	if sid == SectionIDCustom {
		nameLen, nameLenSize, err := leb128.ReadVarUint32Size(r)
		if err != nil {
			return false, err
		}
		payloadDataLen -= uint32(nameLenSize)
		if name, err = readString(r, uint(nameLen)); err != nil {
			return false, err
		}
		payloadDataLen -= uint32(nameLen)
	}

	sectionBytes := new(bytes.Buffer)
	sectionBytes.Grow(int(payloadDataLen))
	sectionReader := io.LimitReader(io.TeeReader(r, sectionBytes), int64(payloadDataLen))

	logger.Printf("reading section %s, payload %d bytes", sid, payloadDataLen)

	switch sid {
	case SectionIDCustom:
		if _, err = io.Copy(ioutil.Discard, sectionReader); err == nil {
			m.Custom = append(m.Custom, Section{ID: sid, Name: name, Bytes: sectionBytes.Bytes()})
		}
	case SectionIDType:
		err = m.readSectionTypes(sectionReader)
	case SectionIDImport:
		err = m.readSectionImports(sectionReader)
	case SectionIDFunction:
		err = m.readSectionFunctions(sectionReader)
	case SectionIDTable:
		err = m.readSectionTables(sectionReader)
	case SectionIDMemory:
		err = m.readSectionMemories(sectionReader)
	case SectionIDGlobal:
		err = m.readSectionGlobals(sectionReader)
	case SectionIDExport:
		err = m.readSectionExports(sectionReader)
	case SectionIDStart:
		err = m.readSectionStart(sectionReader)
	case SectionIDElement:
		err = m.readSectionElements(sectionReader)
	case SectionIDCode:
		err = m.readSectionCode(sectionReader)
	case SectionIDData:
		err = m.readSectionData(sectionReader)
	default:
		return false, InvalidSectionIDError(sid)
	}

	return false, err
}

func (m *Module) readSectionTypes(r io.Reader) error {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	m.Types = make([]FunctionSig, count)
	for i := range m.Types {
		if m.Types[i], err = readFunction(r); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) readSectionImports(r io.Reader) error {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	m.Imports = make([]Import, count)
	for i := range m.Imports {
		if m.Imports[i], err = readImportEntry(r); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) readSectionFunctions(r io.Reader) error {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	m.funcTypeIdx = make([]uint32, count)
	for i := range m.funcTypeIdx {
		if m.funcTypeIdx[i], err = leb128.ReadVarUint32(r); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) readSectionTables(r io.Reader) error {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	m.Tables = make([]Table, count)
	for i := range m.Tables {
		t, err := readTable(r)
		if err != nil {
			return err
		}
		m.Tables[i] = *t
	}
	return nil
}

func (m *Module) readSectionMemories(r io.Reader) error {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	m.Memories = make([]Memory, count)
	for i := range m.Memories {
		mem, err := readMemory(r)
		if err != nil {
			return err
		}
		m.Memories[i] = *mem
	}
	return nil
}

func (m *Module) readSectionGlobals(r io.Reader) error {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	m.Globals = make([]GlobalDef, count)
	for i := range m.Globals {
		gv, err := readGlobalVar(r)
		if err != nil {
			return err
		}
		init, err := readInitExpr(r)
		if err != nil {
			return err
		}
		m.Globals[i] = GlobalDef{Type: *gv, Init: init}
	}
	return nil
}

// ExportEntry represents an exported entry by the module
type ExportEntry struct {
	FieldStr string
	Kind     External
	Index    uint32
}

func (m *Module) readSectionExports(r io.Reader) error {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	m.Exports = make([]ExportEntry, count)
	for i := range m.Exports {
		if m.Exports[i], err = readExportEntry(r); err != nil {
			return err
		}
	}
	return nil
}

func readExportEntry(r io.Reader) (ExportEntry, error) {
	e := ExportEntry{}
	fieldLen, err := leb128.ReadVarUint32(r)
	if err != nil {
		return e, err
	}
	if e.FieldStr, err = readString(r, uint(fieldLen)); err != nil {
		return e, err
	}
	if e.Kind, err = readExternal(r); err != nil {
		return e, err
	}
	e.Index, err = leb128.ReadVarUint32(r)
	return e, err
}

func (m *Module) readSectionStart(r io.Reader) error {
	idx, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	m.Start = &idx
	return nil
}

func (m *Module) readSectionElements(r io.Reader) error {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	m.Elements = make([]ElementSegment, count)
	for i := range m.Elements {
		if m.Elements[i], err = readElementSegment(r); err != nil {
			return err
		}
	}
	return nil
}

func readElementSegment(r io.Reader) (ElementSegment, error) {
	s := ElementSegment{}
	var err error

	if s.TableIndex, err = leb128.ReadVarUint32(r); err != nil {
		return s, err
	}
	if s.Offset, err = readInitExpr(r); err != nil {
		return s, err
	}

	numElems, err := leb128.ReadVarUint32(r)
	if err != nil {
		return s, err
	}
	s.Elems = make([]uint32, numElems)
	for i := range s.Elems {
		if s.Elems[i], err = leb128.ReadVarUint32(r); err != nil {
			return s, err
		}
	}
	return s, nil
}

var ErrFunctionNoEnd = errors.New("wasm: function body does not end with 0x0b (end)")

func (m *Module) readSectionCode(r io.Reader) error {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	if len(m.funcTypeIdx) == 0 {
		return MissingSectionError(SectionIDFunction)
	}
	if len(m.Types) == 0 {
		return MissingSectionError(SectionIDType)
	}
	if uint32(len(m.funcTypeIdx)) != count {
		return errors.New("wasm: the number of entries in the function and code section are unequal")
	}

	m.Functions = make([]FunctionDef, count)
	for i := range m.Functions {
		code, locals, err := readFunctionBody(r)
		if err != nil {
			return err
		}
		m.Functions[i] = FunctionDef{
			TypeIndex: m.funcTypeIdx[i],
			Locals:    locals,
			Code:      code,
		}
	}
	return nil
}

type MissingSectionError SectionID

func (e MissingSectionError) Error() string {
	return fmt.Sprintf("wasm: missing section %s", SectionID(e).String())
}

func readFunctionBody(r io.Reader) (code []byte, locals []ValueType, err error) {
	bodySize, err := leb128.ReadVarUint32(r)
	if err != nil {
		return nil, nil, err
	}

	body := make([]byte, bodySize)
	if _, err = io.ReadFull(r, body); err != nil {
		return nil, nil, err
	}

	br := bytes.NewBuffer(body)

	localEntryCount, err := leb128.ReadVarUint32(br)
	if err != nil {
		return nil, nil, err
	}
	for i := uint32(0); i < localEntryCount; i++ {
		count, err := leb128.ReadVarUint32(br)
		if err != nil {
			return nil, nil, err
		}
		typ, err := readValueType(br)
		if err != nil {
			return nil, nil, err
		}
		for j := uint32(0); j < count; j++ {
			locals = append(locals, typ)
		}
	}

	rest := br.Bytes()
	if len(rest) == 0 || rest[len(rest)-1] != byte(OpEnd) {
		return nil, nil, ErrFunctionNoEnd
	}

	return rest[:len(rest)-1], locals, nil
}

func (m *Module) readSectionData(r io.Reader) error {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return err
	}
	m.Data = make([]DataSegment, count)
	for i := range m.Data {
		if m.Data[i], err = readDataSegment(r); err != nil {
			return err
		}
	}
	return nil
}

func readDataSegment(r io.Reader) (DataSegment, error) {
	s := DataSegment{}
	var err error

	if s.MemoryIndex, err = leb128.ReadVarUint32(r); err != nil {
		return s, err
	}
	if s.Offset, err = readInitExpr(r); err != nil {
		return s, err
	}

	size, err := leb128.ReadVarUint32(r)
	if err != nil {
		return s, err
	}
	s.Data, err = readBytes(r, uint(size))
	return s, err
}
