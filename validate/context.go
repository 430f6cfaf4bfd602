// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import "github.com/go-interpreter/wasmvalidate/wasm"

type ctxKind uint8

const (
	ctxFunction ctxKind = iota
	ctxBlock
	ctxIfThen
	ctxIfElse
	ctxLoop
)

// controlContext is one entry on the control stack: a structured region
// opened by function entry, block, loop or if.
type controlContext struct {
	kind ctxKind

	// outerStackSize is the operand-stack height when this context was
	// pushed; it is the floor below which pops inside this context may
	// not reach while the context remains reachable.
	outerStackSize int

	// branchArgumentType is the result type a branch to this context
	// must supply. It is noReturn for loop (branching to a loop consumes
	// nothing) and equal to result otherwise.
	branchArgumentType wasm.BlockType

	// result is the value this context produces on normal fall-through.
	result wasm.BlockType

	reachable bool
}

// FunctionValidationContext holds the per-function validator state: the
// shadow operand stack, the control-structure stack, and the function's
// locals (parameters followed by declared non-parameter locals).
type FunctionValidationContext struct {
	module *wasm.Module
	index  int // index into the function index space

	locals []wasm.ValueType

	operandStack []wasm.ValueType
	controlStack []controlContext

	pc int // current byte offset, maintained by the caller for diagnostics
}

// NewFunctionValidationContext constructs the validator state for a single
// function definition, with its control stack holding just the implicit
// function-level context.
func NewFunctionValidationContext(module *wasm.Module, index int, sig *wasm.FunctionSig, locals []wasm.ValueType) *FunctionValidationContext {
	rt := sig.Result()
	c := &FunctionValidationContext{
		module: module,
		index:  index,
		locals: locals,
	}
	c.controlStack = append(c.controlStack, controlContext{
		kind:               ctxFunction,
		outerStackSize:     0,
		branchArgumentType: rt,
		result:             rt,
		reachable:          true,
	})
	return c
}

func (c *FunctionValidationContext) err(cause error) error {
	return wrapf(c.index, c.pc, cause)
}

func (c *FunctionValidationContext) innermost() *controlContext {
	return &c.controlStack[len(c.controlStack)-1]
}

// popOperand implements the pop_operand() helper: pop the top of the
// operand stack if the innermost context's floor allows it, otherwise fail
// (if reachable) or synthesize unknownType (if not).
func (c *FunctionValidationContext) popOperand() (wasm.ValueType, error) {
	ctx := c.innermost()
	if len(c.operandStack) > ctx.outerStackSize {
		v := c.operandStack[len(c.operandStack)-1]
		c.operandStack = c.operandStack[:len(c.operandStack)-1]
		return v, nil
	}
	if ctx.reachable {
		return 0, ErrStackUnderflow
	}
	return unknownType, nil
}

func (c *FunctionValidationContext) pushOperand(t wasm.ValueType) {
	c.operandStack = append(c.operandStack, t)
}

// popAndCheck pops one operand and checks it against expected under the
// relaxed type-match rule.
func (c *FunctionValidationContext) popAndCheck(expected wasm.ValueType, ctxName string) error {
	got, err := c.popOperand()
	if err != nil {
		return err
	}
	if !typesMatch(got, expected) {
		return InvalidTypeError{Wanted: expected, Got: got, Context: ctxName}
	}
	return nil
}

// popAndCheckMany pops len(expected) operands, checking the last expected
// type against the top of the stack first.
func (c *FunctionValidationContext) popAndCheckMany(expected []wasm.ValueType, ctxName string) error {
	for i := len(expected) - 1; i >= 0; i-- {
		if err := c.popAndCheck(expected[i], ctxName); err != nil {
			return err
		}
	}
	return nil
}

// popAndCheckResult pops and checks a single result type; a noReturn result
// is a no-op.
func (c *FunctionValidationContext) popAndCheckResult(rt wasm.BlockType, ctxName string) error {
	if rt == wasm.BlockTypeEmpty {
		return nil
	}
	return c.popAndCheck(wasm.ValueType(rt), ctxName)
}

func (c *FunctionValidationContext) pushResult(rt wasm.BlockType) {
	if rt == wasm.BlockTypeEmpty {
		return
	}
	c.pushOperand(wasm.ValueType(rt))
}

// enterUnreachable implements the stack-polymorphism discipline: truncate
// the operand stack to the innermost context's floor and mark it
// unreachable, so further pops in this context synthesize unknownType
// rather than failing.
func (c *FunctionValidationContext) enterUnreachable() {
	ctx := c.innermost()
	c.operandStack = c.operandStack[:ctx.outerStackSize]
	ctx.reachable = false
}

// closeRegion pops and checks rt, then -- if the region is still reachable
// -- requires the operand stack to be exactly at the region's floor (plus
// the one value just popped for rt); leftover operands in a reachable
// region are a validation error, not silently discarded.
func (c *FunctionValidationContext) closeRegion(ctx *controlContext, rt wasm.BlockType) error {
	if err := c.popAndCheckResult(rt, "block result"); err != nil {
		return err
	}
	if ctx.reachable && len(c.operandStack) != ctx.outerStackSize {
		return ErrUnbalancedStack
	}
	c.operandStack = c.operandStack[:ctx.outerStackSize]
	return nil
}

func (c *FunctionValidationContext) branchTarget(depth uint32) (*controlContext, error) {
	if int(depth) >= len(c.controlStack) {
		return nil, InvalidLabelError(depth)
	}
	return &c.controlStack[len(c.controlStack)-1-int(depth)], nil
}

// Depth reports how many control contexts remain open, for the caller
// (Finish) to check that the code stream and the control stack ended
// together.
func (c *FunctionValidationContext) Depth() int {
	return len(c.controlStack)
}

// setPC records the byte offset of the opcode about to be validated, used
// to annotate any error this opcode produces.
func (c *FunctionValidationContext) setPC(pc int) {
	c.pc = pc
}
