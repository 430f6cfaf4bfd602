// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import "github.com/go-interpreter/wasmvalidate/wasm"

// maxAlign gives, for each memory opcode, the largest alignment exponent
// (log2 of the byte width actually accessed) the MVP permits. Declaring a
// larger alignment than the access width would be a false guarantee.
var maxAlign = map[wasm.Opcode]uint32{
	wasm.OpI32Load: 2, wasm.OpI64Load: 3, wasm.OpF32Load: 2, wasm.OpF64Load: 3,
	wasm.OpI32Load8S: 0, wasm.OpI32Load8U: 0, wasm.OpI32Load16S: 1, wasm.OpI32Load16U: 1,
	wasm.OpI64Load8S: 0, wasm.OpI64Load8U: 0, wasm.OpI64Load16S: 1, wasm.OpI64Load16U: 1,
	wasm.OpI64Load32S: 2, wasm.OpI64Load32U: 2,
	wasm.OpI32Store: 2, wasm.OpI64Store: 3, wasm.OpF32Store: 2, wasm.OpF64Store: 3,
	wasm.OpI32Store8: 0, wasm.OpI32Store16: 1,
	wasm.OpI64Store8: 0, wasm.OpI64Store16: 1, wasm.OpI64Store32: 2,
}

var loadResult = map[wasm.Opcode]wasm.ValueType{
	wasm.OpI32Load: wasm.ValueTypeI32, wasm.OpI64Load: wasm.ValueTypeI64,
	wasm.OpF32Load: wasm.ValueTypeF32, wasm.OpF64Load: wasm.ValueTypeF64,
	wasm.OpI32Load8S: wasm.ValueTypeI32, wasm.OpI32Load8U: wasm.ValueTypeI32,
	wasm.OpI32Load16S: wasm.ValueTypeI32, wasm.OpI32Load16U: wasm.ValueTypeI32,
	wasm.OpI64Load8S: wasm.ValueTypeI64, wasm.OpI64Load8U: wasm.ValueTypeI64,
	wasm.OpI64Load16S: wasm.ValueTypeI64, wasm.OpI64Load16U: wasm.ValueTypeI64,
	wasm.OpI64Load32S: wasm.ValueTypeI64, wasm.OpI64Load32U: wasm.ValueTypeI64,
}

var storeOperand = map[wasm.Opcode]wasm.ValueType{
	wasm.OpI32Store: wasm.ValueTypeI32, wasm.OpI64Store: wasm.ValueTypeI64,
	wasm.OpF32Store: wasm.ValueTypeF32, wasm.OpF64Store: wasm.ValueTypeF64,
	wasm.OpI32Store8: wasm.ValueTypeI32, wasm.OpI32Store16: wasm.ValueTypeI32,
	wasm.OpI64Store8: wasm.ValueTypeI64, wasm.OpI64Store16: wasm.ValueTypeI64, wasm.OpI64Store32: wasm.ValueTypeI64,
}

func checkAlign(op wasm.Opcode, align uint32) error {
	if align > maxAlign[op] {
		return InvalidImmediateError{OpName: op.String(), ImmType: "naturally aligned"}
	}
	return nil
}

// Load implements the family of tNN.load opcodes: pop the i32 address,
// check the declared alignment does not exceed the access width, and
// push the loaded value's type.
func (c *FunctionValidationContext) Load(op wasm.Opcode, align, offset uint32) error {
	if !c.module.HasMemory() {
		return ErrNoMemory
	}
	if err := checkAlign(op, align); err != nil {
		return err
	}
	if err := c.popAndCheck(wasm.ValueTypeI32, "memory address"); err != nil {
		return err
	}
	c.pushOperand(loadResult[op])
	return nil
}

// Store implements the family of tNN.store opcodes: pop the value then
// the i32 address, checking alignment as Load does.
func (c *FunctionValidationContext) Store(op wasm.Opcode, align, offset uint32) error {
	if !c.module.HasMemory() {
		return ErrNoMemory
	}
	if err := checkAlign(op, align); err != nil {
		return err
	}
	if err := c.popAndCheck(storeOperand[op], "memory store value"); err != nil {
		return err
	}
	return c.popAndCheck(wasm.ValueTypeI32, "memory address")
}

// CurrentMemory implements the current_memory opcode.
func (c *FunctionValidationContext) CurrentMemory() error {
	if !c.module.HasMemory() {
		return ErrNoMemory
	}
	c.pushOperand(wasm.ValueTypeI32)
	return nil
}

// GrowMemory implements the grow_memory opcode.
func (c *FunctionValidationContext) GrowMemory() error {
	if !c.module.HasMemory() {
		return ErrNoMemory
	}
	if err := c.popAndCheck(wasm.ValueTypeI32, "grow_memory delta"); err != nil {
		return err
	}
	c.pushOperand(wasm.ValueTypeI32)
	return nil
}
