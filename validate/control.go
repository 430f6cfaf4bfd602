// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import "github.com/go-interpreter/wasmvalidate/wasm"

// Unreachable implements the unreachable opcode: it marks the remainder of
// the current control region as dead code, where stack polymorphism takes
// over from strict typing.
func (c *FunctionValidationContext) Unreachable() error {
	c.enterUnreachable()
	return nil
}

// Nop implements the nop opcode.
func (c *FunctionValidationContext) Nop() error {
	return nil
}

// Block implements the block opcode: it opens a new control region whose
// branch target expects the declared result type.
func (c *FunctionValidationContext) Block(rt wasm.BlockType) error {
	c.controlStack = append(c.controlStack, controlContext{
		kind:               ctxBlock,
		outerStackSize:     len(c.operandStack),
		branchArgumentType: rt,
		result:             rt,
		reachable:          true,
	})
	return nil
}

// Loop implements the loop opcode: like block, but a branch to a loop
// target consumes no value -- the loop's entry point takes no arguments.
func (c *FunctionValidationContext) Loop(rt wasm.BlockType) error {
	c.controlStack = append(c.controlStack, controlContext{
		kind:               ctxLoop,
		outerStackSize:     len(c.operandStack),
		branchArgumentType: wasm.BlockTypeEmpty,
		result:             rt,
		reachable:          true,
	})
	return nil
}

// If implements the if opcode: the top of the stack is the condition,
// which must be i32. A new control region opens for the then-branch.
func (c *FunctionValidationContext) If(rt wasm.BlockType) error {
	if err := c.popAndCheck(wasm.ValueTypeI32, "if condition"); err != nil {
		return err
	}
	c.controlStack = append(c.controlStack, controlContext{
		kind:               ctxIfThen,
		outerStackSize:     len(c.operandStack),
		branchArgumentType: rt,
		result:             rt,
		reachable:          true,
	})
	return nil
}

// Else implements the else opcode: it closes the then-branch and reopens
// the region for the else-branch at the same operand-stack floor.
func (c *FunctionValidationContext) Else() error {
	ctx := c.innermost()
	if ctx.kind != ctxIfThen {
		return UnmatchedOpError(wasm.OpElse)
	}
	if err := c.closeRegion(ctx, ctx.result); err != nil {
		return err
	}
	ctx.kind = ctxIfElse
	ctx.reachable = true
	return nil
}

// End implements the end opcode: it closes the innermost control region,
// checking that it leaves exactly its declared result (if reachable) and
// pushing that result onto the enclosing region.
func (c *FunctionValidationContext) End() error {
	n := len(c.controlStack)
	ctx := &c.controlStack[n-1]
	if ctx.kind == ctxIfThen && ctx.result != wasm.BlockTypeEmpty {
		return ErrElselessIf
	}
	if err := c.closeRegion(ctx, ctx.result); err != nil {
		return err
	}
	result := ctx.result
	c.controlStack = c.controlStack[:n-1]
	if n-1 > 0 {
		c.pushResult(result)
	}
	return nil
}

// Return implements the return opcode: it behaves like a branch to the
// outermost (function-level) control context.
func (c *FunctionValidationContext) Return() error {
	fn := &c.controlStack[0]
	if err := c.popAndCheckResult(fn.branchArgumentType, "return value"); err != nil {
		return err
	}
	c.enterUnreachable()
	return nil
}

// Br implements the br opcode: an unconditional branch to the control
// context depth levels up the control stack.
func (c *FunctionValidationContext) Br(depth uint32) error {
	target, err := c.branchTarget(depth)
	if err != nil {
		return err
	}
	if err := c.popAndCheckResult(target.branchArgumentType, "branch argument"); err != nil {
		return err
	}
	c.enterUnreachable()
	return nil
}

// BrIf implements the br_if opcode: a conditional branch. The branch
// argument, if any, must remain on the stack for the fall-through path, so
// it is checked but not consumed.
func (c *FunctionValidationContext) BrIf(depth uint32) error {
	target, err := c.branchTarget(depth)
	if err != nil {
		return err
	}
	if err := c.popAndCheck(wasm.ValueTypeI32, "br_if condition"); err != nil {
		return err
	}
	if target.branchArgumentType == wasm.BlockTypeEmpty {
		return nil
	}
	if err := c.popAndCheckResult(target.branchArgumentType, "branch argument"); err != nil {
		return err
	}
	c.pushResult(target.branchArgumentType)
	return nil
}

// BrTable implements the br_table opcode: every target, including the
// default, must agree exactly (no relaxed match) on branch argument type.
func (c *FunctionValidationContext) BrTable(targets []uint32, defaultTarget uint32) error {
	def, err := c.branchTarget(defaultTarget)
	if err != nil {
		return err
	}
	for _, depth := range targets {
		t, err := c.branchTarget(depth)
		if err != nil {
			return err
		}
		if t.branchArgumentType != def.branchArgumentType {
			return BrTableTargetMismatchError{Default: def.branchArgumentType, Target: t.branchArgumentType}
		}
	}
	if err := c.popAndCheck(wasm.ValueTypeI32, "br_table index"); err != nil {
		return err
	}
	if err := c.popAndCheckResult(def.branchArgumentType, "branch argument"); err != nil {
		return err
	}
	c.enterUnreachable()
	return nil
}
