// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"github.com/go-interpreter/wasmvalidate/wasm"
)

const (
	noReturn = wasm.ValueType(wasm.BlockTypeEmpty)
	// unknownType is the validator-internal "any" wildcard: it is never
	// pushed by an ordinary opcode, only produced by a pop performed
	// inside unreachable code.
	unknownType = wasm.ValueType(0)
)

// typesMatch implements the relaxed type-match rule: two value types match
// if they are equal, or either is the unknownType wildcard.
func typesMatch(a, b wasm.ValueType) bool {
	return a == unknownType || b == unknownType || a == b
}
