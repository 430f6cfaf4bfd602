// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import "github.com/go-interpreter/wasmvalidate/wasm"

// Call implements the call opcode.
func (c *FunctionValidationContext) Call(index uint32) error {
	sig, ok := c.module.FunctionSig(index)
	if !ok {
		return InvalidFunctionIndexError(index)
	}
	if err := c.popAndCheckMany(sig.ParamTypes, "call argument"); err != nil {
		return err
	}
	c.pushResult(sig.Result())
	return nil
}

// CallIndirect implements the call_indirect opcode: the table index in
// the MVP encoding is a reserved zero byte, and the callee's type is
// looked up from the type section; the topmost operand is the table
// index into the function table.
func (c *FunctionValidationContext) CallIndirect(typeIndex uint32) error {
	if !c.module.HasTable() {
		return ErrNoTable
	}
	sig, ok := c.module.TypeAt(typeIndex)
	if !ok {
		return InvalidTypeIndexError(typeIndex)
	}
	if err := c.popAndCheck(wasm.ValueTypeI32, "call_indirect table index"); err != nil {
		return err
	}
	if err := c.popAndCheckMany(sig.ParamTypes, "call_indirect argument"); err != nil {
		return err
	}
	c.pushResult(sig.Result())
	return nil
}
