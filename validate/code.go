// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"bytes"
	"encoding/binary"
	"io"
	"sync"

	"github.com/go-interpreter/wasmvalidate/wasm"
	"github.com/go-interpreter/wasmvalidate/wasm/leb128"
	ops "github.com/go-interpreter/wasmvalidate/wasm/operators"
)

// Code validates every function definition's body, in index order,
// matching the teacher's sequential VerifyModule loop.
func Code(module *wasm.Module) error {
	nImports := module.FuncCount() - len(module.Functions)
	for i, fn := range module.Functions {
		if err := validateFunctionBody(module, nImports+i, &fn); err != nil {
			return err
		}
	}
	return nil
}

// CodeParallel is the concurrency-model variant of Code described by the
// resource model: the same per-function semantics, fanned across a
// bounded worker pool. It returns the first error encountered; when more
// than one function fails, which one wins the race is unspecified.
func CodeParallel(module *wasm.Module, workers int) error {
	if workers < 1 {
		workers = 1
	}

	type job struct {
		index int
		fn    *wasm.FunctionDef
	}

	nImports := module.FuncCount() - len(module.Functions)
	jobs := make(chan job)
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := validateFunctionBody(module, j.index, j.fn); err != nil {
					errs <- err
					return
				}
			}
		}()
	}

	go func() {
		for i := range module.Functions {
			jobs <- job{index: nImports + i, fn: &module.Functions[i]}
		}
		close(jobs)
	}()

	wg.Wait()
	close(errs)
	return <-errs
}

func validateFunctionBody(module *wasm.Module, index int, fn *wasm.FunctionDef) error {
	stream, err := NewCodeStream(module, index, fn)
	if err != nil {
		return err
	}
	if err := runCode(stream, fn.Code); err != nil {
		return err
	}
	return stream.Finish()
}

// runCode is the operation decoder described as an external collaborator
// by the validator's scope: it walks fn.Code byte by byte, decodes each
// opcode's immediates, and calls the matching CodeStream method.
func runCode(s *CodeStream, code []byte) error {
	r := bytes.NewReader(code)
	for {
		pc := len(code) - r.Len()
		op, err := r.ReadByte()
		if err != nil {
			break // io.EOF: fn.Code never carries the function's own trailing end
		}

		if _, lookupErr := ops.New(op); lookupErr != nil {
			return s.advance(pc, "", lookupErr)
		}

		switch op {
		case ops.Block, ops.Loop, ops.If:
			rt, err := readBlockType(r)
			if err != nil {
				return s.advance(pc, "", err)
			}
			switch op {
			case ops.Block:
				err = s.Block(pc, rt)
			case ops.Loop:
				err = s.Loop(pc, rt)
			default:
				err = s.If(pc, rt)
			}
			if err != nil {
				return err
			}
		case ops.Else:
			if err := s.Else(pc); err != nil {
				return err
			}
		case ops.End:
			if err := s.End(pc); err != nil {
				return err
			}
		case ops.Unreachable:
			if err := s.Unreachable(pc); err != nil {
				return err
			}
		case ops.Nop:
			if err := s.Nop(pc); err != nil {
				return err
			}
		case ops.Return:
			if err := s.Return(pc); err != nil {
				return err
			}
		case ops.Br, ops.BrIf:
			depth, err := leb128.ReadVarUint32(r)
			if err != nil {
				return s.advance(pc, "", err)
			}
			if op == ops.Br {
				err = s.Br(pc, depth)
			} else {
				err = s.BrIf(pc, depth)
			}
			if err != nil {
				return err
			}
		case ops.BrTable:
			targets, def, err := readBrTable(r)
			if err != nil {
				return s.advance(pc, "", err)
			}
			if err := s.BrTable(pc, targets, def); err != nil {
				return err
			}
		case ops.Call:
			index, err := leb128.ReadVarUint32(r)
			if err != nil {
				return s.advance(pc, "", err)
			}
			if err := s.Call(pc, index); err != nil {
				return err
			}
		case ops.CallIndirect:
			typeIndex, err := leb128.ReadVarUint32(r)
			if err != nil {
				return s.advance(pc, "", err)
			}
			if _, err := leb128.ReadVarUint32(r); err != nil { // reserved table index byte
				return s.advance(pc, "", err)
			}
			if err := s.CallIndirect(pc, typeIndex); err != nil {
				return err
			}
		case ops.Drop:
			if err := s.Drop(pc); err != nil {
				return err
			}
		case ops.Select:
			if err := s.Select(pc); err != nil {
				return err
			}
		case ops.GetLocal, ops.SetLocal, ops.TeeLocal, ops.GetGlobal, ops.SetGlobal:
			index, err := leb128.ReadVarUint32(r)
			if err != nil {
				return s.advance(pc, "", err)
			}
			switch op {
			case ops.GetLocal:
				err = s.GetLocal(pc, index)
			case ops.SetLocal:
				err = s.SetLocal(pc, index)
			case ops.TeeLocal:
				err = s.TeeLocal(pc, index)
			case ops.GetGlobal:
				err = s.GetGlobal(pc, index)
			default:
				err = s.SetGlobal(pc, index)
			}
			if err != nil {
				return err
			}
		case ops.CurrentMemory:
			if _, err := leb128.ReadVarUint32(r); err != nil { // reserved byte
				return s.advance(pc, "", err)
			}
			if err := s.CurrentMemory(pc); err != nil {
				return err
			}
		case ops.GrowMemory:
			if _, err := leb128.ReadVarUint32(r); err != nil { // reserved byte
				return s.advance(pc, "", err)
			}
			if err := s.GrowMemory(pc); err != nil {
				return err
			}
		case ops.I32Const:
			v, err := leb128.ReadVarint32(r)
			if err != nil {
				return s.advance(pc, "", err)
			}
			if err := s.I32Const(pc, v); err != nil {
				return err
			}
		case ops.I64Const:
			v, err := leb128.ReadVarint64(r)
			if err != nil {
				return s.advance(pc, "", err)
			}
			if err := s.I64Const(pc, v); err != nil {
				return err
			}
		case ops.F32Const:
			v, err := readFixed32(r)
			if err != nil {
				return s.advance(pc, "", err)
			}
			if err := s.F32Const(pc, v); err != nil {
				return err
			}
		case ops.F64Const:
			v, err := readFixed64(r)
			if err != nil {
				return s.advance(pc, "", err)
			}
			if err := s.F64Const(pc, v); err != nil {
				return err
			}
		default:
			if isMemoryOp(op) {
				align, offset, err := readMemImmediates(r)
				if err != nil {
					return s.advance(pc, "", err)
				}
				var err2 error
				if isStoreOp(op) {
					err2 = s.Store(pc, wasm.Opcode(op), align, offset)
				} else {
					err2 = s.Load(pc, wasm.Opcode(op), align, offset)
				}
				if err2 != nil {
					return err2
				}
				break
			}
			if err := s.Simple(pc, op); err != nil {
				return err
			}
		}
	}
	return nil
}

func readBlockType(r *bytes.Reader) (wasm.BlockType, error) {
	v, err := leb128.ReadVarint32(r)
	if err != nil {
		return 0, err
	}
	rt := wasm.BlockType(v)
	if !rt.Valid() {
		return 0, InvalidImmediateError{OpName: "block", ImmType: "block_type"}
	}
	return rt, nil
}

func readBrTable(r *bytes.Reader) ([]uint32, uint32, error) {
	count, err := leb128.ReadVarUint32(r)
	if err != nil {
		return nil, 0, err
	}
	targets := make([]uint32, count)
	for i := range targets {
		if targets[i], err = leb128.ReadVarUint32(r); err != nil {
			return nil, 0, err
		}
	}
	def, err := leb128.ReadVarUint32(r)
	if err != nil {
		return nil, 0, err
	}
	return targets, def, nil
}

func readMemImmediates(r *bytes.Reader) (align, offset uint32, err error) {
	if align, err = leb128.ReadVarUint32(r); err != nil {
		return 0, 0, err
	}
	if offset, err = leb128.ReadVarUint32(r); err != nil {
		return 0, 0, err
	}
	return align, offset, nil
}

func readFixed32(r *bytes.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readFixed64(r *bytes.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func isMemoryOp(op byte) bool {
	switch op {
	case ops.I32Load, ops.I64Load, ops.F32Load, ops.F64Load,
		ops.I32Load8s, ops.I32Load8u, ops.I32Load16s, ops.I32Load16u,
		ops.I64Load8s, ops.I64Load8u, ops.I64Load16s, ops.I64Load16u,
		ops.I64Load32s, ops.I64Load32u,
		ops.I32Store, ops.I64Store, ops.F32Store, ops.F64Store,
		ops.I32Store8, ops.I32Store16, ops.I64Store8, ops.I64Store16, ops.I64Store32:
		return true
	}
	return false
}

func isStoreOp(op byte) bool {
	switch op {
	case ops.I32Store, ops.I64Store, ops.F32Store, ops.F64Store,
		ops.I32Store8, ops.I32Store16, ops.I64Store8, ops.I64Store16, ops.I64Store32:
		return true
	}
	return false
}
