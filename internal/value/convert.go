package value

import (
	"errors"
	"fmt"
	"math"

	"github.com/derrell/LearnCS-sub002/internal/types"
)

// ErrOperand reports an operand whose type does not suit the operation.
var ErrOperand = errors.New("invalid operand")

// Convert converts v to type t following C's conversion rules: integers
// truncate or extend to the target width, floating values truncate
// toward zero when converted to an integer, double narrows to binary32
// for float, and pointers and integers convert to each other by address.
func Convert(v Value, t types.Type) (Value, error) {
	if v.kind == Invalid || v.kind == ContKind {
		return Value{}, fmt.Errorf("%w: cannot convert %s value", ErrOperand, v.kind)
	}
	switch {
	case types.IsVoidType(t):
		return Void(), nil

	case types.IsIntegral(t):
		switch v.kind {
		case IntKind, AddrKind:
			return Int(t, v.i), nil
		case FloatKind:
			if types.IsUnsignedIntegral(t) && v.f >= math.MaxInt64 {
				return Uint(t, uint64(v.f)), nil
			}
			return Int(t, int64(v.f)), nil
		}

	case types.IsFloating(t):
		switch v.kind {
		case IntKind, FloatKind:
			return Float(t, v.Float64()), nil
		}

	case types.IsPointer(t):
		switch v.kind {
		case IntKind, AddrKind:
			return Addr(t, int(v.i)), nil
		}

	case types.IsAggregate(t):
		if v.kind == AddrKind && types.Identical(v.typ, t) {
			return v, nil
		}
	}
	return Value{}, fmt.Errorf("%w: cannot convert %s to %s", ErrOperand, v.typ, t)
}

// Truth reports whether v is nonzero, the way a controlling expression of
// if, while or ?: is tested.
func Truth(v Value) bool {
	switch v.kind {
	case IntKind, AddrKind:
		return v.i != 0
	case FloatKind:
		return v.f != 0
	}
	return false
}

// Bool returns the int 1 if b is true and 0 otherwise.
func Bool(b bool) Value {
	if b {
		return Int(types.Typ[types.Int], 1)
	}
	return Int(types.Typ[types.Int], 0)
}
