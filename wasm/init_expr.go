package wasm

import (
	"errors"
	"io"

	"github.com/go-interpreter/wasmvalidate/wasm/leb128"
)

// InitExpr is the result of parsing a Wasm "constant expression": the
// restricted grammar used for global, table and data segment initializers.
// It holds exactly one constant node, captured by opcode rather than
// re-serialized to bytes, since nothing downstream of decoding needs to
// re-walk the original byte sequence.
type InitExpr struct {
	Opcode Opcode

	I32         int32
	I64         int64
	F32Bits     uint32
	F64Bits     uint64
	GlobalIndex uint32
}

var ErrEmptyInitExpr = errors.New("wasm: initializer expression produces no value")
var ErrInitExprNoEnd = errors.New("wasm: initializer expression does not end with 0x0b (end)")

// readInitExpr parses a single constant node followed by the terminating
// "end" opcode. It does not execute the expression: evaluating a get_global
// reference to a concrete numeral is a module-instantiation concern, not a
// decoding one.
func readInitExpr(r io.Reader) (InitExpr, error) {
	var e InitExpr

	op, err := readOpcodeByte(r)
	if err != nil {
		return e, err
	}
	e.Opcode = op

	switch op {
	case OpI32Const:
		v, err := leb128.ReadVarint32(r)
		if err != nil {
			return e, err
		}
		e.I32 = v
	case OpI64Const:
		v, err := leb128.ReadVarint64(r)
		if err != nil {
			return e, err
		}
		e.I64 = v
	case OpF32Const:
		v, err := readU32(r)
		if err != nil {
			return e, err
		}
		e.F32Bits = v
	case OpF64Const:
		v, err := readU64(r)
		if err != nil {
			return e, err
		}
		e.F64Bits = v
	case OpGetGlobal:
		v, err := leb128.ReadVarUint32(r)
		if err != nil {
			return e, err
		}
		e.GlobalIndex = v
	default:
		return e, InvalidInitExprOpcodeError(op)
	}

	end, err := readOpcodeByte(r)
	if err != nil {
		return e, err
	}
	if end != OpEnd {
		return e, ErrInitExprNoEnd
	}

	return e, nil
}

type InvalidInitExprOpcodeError Opcode

func (e InvalidInitExprOpcodeError) Error() string {
	return "wasm: invalid opcode in initializer expression: " + Opcode(e).String()
}

func readOpcodeByte(r io.Reader) (Opcode, error) {
	b, err := readBytes(r, 1)
	if err != nil {
		return 0, err
	}
	return Opcode(b[0]), nil
}
