// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"github.com/go-interpreter/wasmvalidate/wasm"
	ops "github.com/go-interpreter/wasmvalidate/wasm/operators"
)

// I32Const, I64Const, F32Const and F64Const implement the four constant
// opcodes. The validator only tracks shape, not value, so the immediate
// itself is not inspected.
func (c *FunctionValidationContext) I32Const(int32) error {
	c.pushOperand(wasm.ValueTypeI32)
	return nil
}

func (c *FunctionValidationContext) I64Const(int64) error {
	c.pushOperand(wasm.ValueTypeI64)
	return nil
}

func (c *FunctionValidationContext) F32Const(uint32) error {
	c.pushOperand(wasm.ValueTypeF32)
	return nil
}

func (c *FunctionValidationContext) F64Const(uint64) error {
	c.pushOperand(wasm.ValueTypeF64)
	return nil
}

// Simple implements every opcode whose stack effect is fully described by
// the operators table: the arithmetic, comparison and conversion families.
// Structural opcodes, locals/globals, calls, parametric and memory
// opcodes all have dedicated methods and never reach this dispatch.
func (c *FunctionValidationContext) Simple(op byte) error {
	o, err := ops.New(op)
	if err != nil {
		return err
	}
	if err := c.popAndCheckMany(o.Args, o.Name+" operand"); err != nil {
		return err
	}
	if o.Returns != 0 {
		c.pushOperand(o.Returns)
	}
	return nil
}
