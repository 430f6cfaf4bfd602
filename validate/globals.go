// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

// GetGlobal implements the get_global opcode.
func (c *FunctionValidationContext) GetGlobal(index uint32) error {
	g, ok := c.module.GlobalType(index)
	if !ok {
		return InvalidGlobalIndexError(index)
	}
	c.pushOperand(g.ContentType)
	return nil
}

// SetGlobal implements the set_global opcode.
func (c *FunctionValidationContext) SetGlobal(index uint32) error {
	g, ok := c.module.GlobalType(index)
	if !ok {
		return InvalidGlobalIndexError(index)
	}
	if !g.Mutable {
		return ErrImmutableGlobal
	}
	return c.popAndCheck(g.ContentType, "set_global")
}
