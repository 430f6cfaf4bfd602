// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import "github.com/go-interpreter/wasmvalidate/wasm"

// Drop implements the drop opcode: discard one operand of any type.
func (c *FunctionValidationContext) Drop() error {
	_, err := c.popOperand()
	return err
}

// Select implements the select opcode: pop the i32 condition, then two
// operands of matching type, and push back one of that type.
func (c *FunctionValidationContext) Select() error {
	if err := c.popAndCheck(wasm.ValueTypeI32, "select condition"); err != nil {
		return err
	}
	b, err := c.popOperand()
	if err != nil {
		return err
	}
	a, err := c.popOperand()
	if err != nil {
		return err
	}
	if !typesMatch(a, b) {
		return InvalidTypeError{Wanted: a, Got: b, Context: "select operands"}
	}
	if a == unknownType {
		a = b
	}
	c.pushOperand(a)
	return nil
}
