// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import "github.com/go-interpreter/wasmvalidate/wasm"

// localType returns the declared type of local index i (parameters first,
// then declared locals), or ok=false if i is out of range.
func (c *FunctionValidationContext) localType(i uint32) (wasm.ValueType, bool) {
	if int(i) >= len(c.locals) {
		return 0, false
	}
	return c.locals[i], true
}

// GetLocal implements the get_local opcode.
func (c *FunctionValidationContext) GetLocal(index uint32) error {
	t, ok := c.localType(index)
	if !ok {
		return InvalidLocalIndexError(index)
	}
	c.pushOperand(t)
	return nil
}

// SetLocal implements the set_local opcode.
func (c *FunctionValidationContext) SetLocal(index uint32) error {
	t, ok := c.localType(index)
	if !ok {
		return InvalidLocalIndexError(index)
	}
	return c.popAndCheck(t, "set_local")
}

// TeeLocal implements the tee_local opcode: like set_local, but leaves the
// value on the stack.
func (c *FunctionValidationContext) TeeLocal(index uint32) error {
	t, ok := c.localType(index)
	if !ok {
		return InvalidLocalIndexError(index)
	}
	if err := c.popAndCheck(t, "tee_local"); err != nil {
		return err
	}
	c.pushOperand(t)
	return nil
}
