package value

import (
	"errors"
	"fmt"

	"github.com/derrell/LearnCS-sub002/internal/types"
)

// ErrDivideByZero is returned for integer division or remainder by zero.
var ErrDivideByZero = errors.New("division by zero")

// Op is an arithmetic, bitwise, comparison or unary operator.
type Op int

const (
	OpInvalid Op = iota

	// Binary arithmetic and bitwise
	OpAdd // +
	OpSub // -
	OpMul // *
	OpDiv // /
	OpRem // %
	OpAnd // &
	OpOr  // |
	OpXor // ^
	OpShl // <<
	OpShr // >>

	// Comparison
	OpEql // ==
	OpNeq // !=
	OpLss // <
	OpLeq // <=
	OpGtr // >
	OpGeq // >=

	// Unary
	OpNeg   // -x
	OpPlus  // +x
	OpCompl // ~x
	OpLNot  // !x

	opCount
)

var opNames = [opCount]string{
	OpInvalid: "invalid",
	OpAdd:     "+",
	OpSub:     "-",
	OpMul:     "*",
	OpDiv:     "/",
	OpRem:     "%",
	OpAnd:     "&",
	OpOr:      "|",
	OpXor:     "^",
	OpShl:     "<<",
	OpShr:     ">>",
	OpEql:     "==",
	OpNeq:     "!=",
	OpLss:     "<",
	OpLeq:     "<=",
	OpGtr:     ">",
	OpGeq:     ">=",
	OpNeg:     "-",
	OpPlus:    "+",
	OpCompl:   "~",
	OpLNot:    "!",
}

// String returns the operator symbol.
func (o Op) String() string {
	if o >= 0 && o < opCount {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// IsComparison reports whether o yields a truth value.
func (o Op) IsComparison() bool {
	return o >= OpEql && o <= OpGeq
}

// BinaryOp returns the binary operator written as sym.
func BinaryOp(sym string) (Op, bool) {
	for o := OpAdd; o <= OpGeq; o++ {
		if opNames[o] == sym {
			return o, true
		}
	}
	return OpInvalid, false
}

// UnaryOp returns the unary operator written as sym.
func UnaryOp(sym string) (Op, bool) {
	for o := OpNeg; o < opCount; o++ {
		if opNames[o] == sym {
			return o, true
		}
	}
	return OpInvalid, false
}

// Binary applies a binary operator. Arithmetic operands are first
// brought to their common type by the usual arithmetic conversions;
// integer results wrap modulo 2^width. A pointer operand selects
// pointer arithmetic scaled by the size of the pointed-to type.
func Binary(op Op, x, y Value) (Value, error) {
	if op.IsComparison() {
		return Compare(op, x, y)
	}
	if x.kind == AddrKind || y.kind == AddrKind {
		return pointerArith(op, x, y)
	}
	if !arithmetic(x) || !arithmetic(y) {
		return Value{}, fmt.Errorf("%w: %s %s %s", ErrOperand, x.typ, op, y.typ)
	}

	if op == OpShl || op == OpShr {
		return shift(op, x, y)
	}

	t := types.CommonType(x.typ, y.typ)
	if types.IsFloating(t) {
		a, b := x.Float64(), y.Float64()
		switch op {
		case OpAdd:
			return Float(t, a+b), nil
		case OpSub:
			return Float(t, a-b), nil
		case OpMul:
			return Float(t, a*b), nil
		case OpDiv:
			return Float(t, a/b), nil
		}
		return Value{}, fmt.Errorf("%w: %s %s %s", ErrOperand, x.typ, op, y.typ)
	}

	xv, _ := Convert(x, t)
	yv, _ := Convert(y, t)
	a, b := xv.i, yv.i
	unsigned := types.IsUnsignedIntegral(t)
	switch op {
	case OpAdd:
		return Int(t, a+b), nil
	case OpSub:
		return Int(t, a-b), nil
	case OpMul:
		return Int(t, a*b), nil
	case OpDiv:
		if b == 0 {
			return Value{}, ErrDivideByZero
		}
		if unsigned {
			return Uint(t, uint64(a)/uint64(b)), nil
		}
		return Int(t, a/b), nil
	case OpRem:
		if b == 0 {
			return Value{}, ErrDivideByZero
		}
		if unsigned {
			return Uint(t, uint64(a)%uint64(b)), nil
		}
		return Int(t, a%b), nil
	case OpAnd:
		return Int(t, a&b), nil
	case OpOr:
		return Int(t, a|b), nil
	case OpXor:
		return Int(t, a^b), nil
	}
	return Value{}, fmt.Errorf("%w: unknown binary operator %s", ErrOperand, op)
}

// shift implements << and >>. The result has the promoted type of the
// left operand; the count is taken as unsigned, so negative or oversized
// counts shift every bit out.
func shift(op Op, x, y Value) (Value, error) {
	if !types.IsIntegral(x.typ) || !types.IsIntegral(y.typ) {
		return Value{}, fmt.Errorf("%w: %s %s %s", ErrOperand, x.typ, op, y.typ)
	}
	t := types.Promote(x.typ)
	xv, _ := Convert(x, t)
	n := y.Uint64()
	if op == OpShl {
		return Int(t, xv.i<<n), nil
	}
	if types.IsUnsignedIntegral(t) {
		return Uint(t, uint64(xv.i)>>n), nil
	}
	return Int(t, xv.i>>n), nil
}

func pointerArith(op Op, x, y Value) (Value, error) {
	switch {
	case x.kind == AddrKind && y.kind == IntKind && (op == OpAdd || op == OpSub):
		pt := types.Decay(x.typ)
		n := y.Int64()
		if op == OpSub {
			n = -n
		}
		return Addr(pt, x.Address()+int(n*elemSize(pt))), nil

	case x.kind == IntKind && y.kind == AddrKind && op == OpAdd:
		pt := types.Decay(y.typ)
		return Addr(pt, y.Address()+int(x.Int64()*elemSize(pt))), nil

	case x.kind == AddrKind && y.kind == AddrKind && op == OpSub:
		pt := types.Decay(x.typ)
		diff := int64(x.Address() - y.Address())
		return Int(types.Typ[types.Int], diff/elemSize(pt)), nil
	}
	return Value{}, fmt.Errorf("%w: %s %s %s", ErrOperand, x.typ, op, y.typ)
}

// elemSize returns the scale factor for arithmetic on pointer type pt.
// Pointers to void or to incomplete types step by one byte.
func elemSize(pt types.Type) int64 {
	elem := types.Elem(pt)
	if elem == nil || types.DefaultSizes.Check(elem) != nil {
		return 1
	}
	return types.ByteWidth(elem)
}

// Compare applies a comparison operator and returns the int 0 or 1.
func Compare(op Op, x, y Value) (Value, error) {
	if !op.IsComparison() {
		return Value{}, fmt.Errorf("%w: %s is not a comparison", ErrOperand, op)
	}
	if x.kind == AddrKind || y.kind == AddrKind {
		if !addressable(x) || !addressable(y) {
			return Value{}, fmt.Errorf("%w: %s %s %s", ErrOperand, x.typ, op, y.typ)
		}
		return Bool(compareOrdered(op, uint64(x.i), uint64(y.i))), nil
	}
	if !arithmetic(x) || !arithmetic(y) {
		return Value{}, fmt.Errorf("%w: %s %s %s", ErrOperand, x.typ, op, y.typ)
	}

	t := types.CommonType(x.typ, y.typ)
	if types.IsFloating(t) {
		return Bool(compareOrdered(op, x.Float64(), y.Float64())), nil
	}
	xv, _ := Convert(x, t)
	yv, _ := Convert(y, t)
	if types.IsUnsignedIntegral(t) {
		return Bool(compareOrdered(op, uint64(xv.i), uint64(yv.i))), nil
	}
	return Bool(compareOrdered(op, xv.i, yv.i)), nil
}

func compareOrdered[T int64 | uint64 | float64](op Op, a, b T) bool {
	switch op {
	case OpEql:
		return a == b
	case OpNeq:
		return a != b
	case OpLss:
		return a < b
	case OpLeq:
		return a <= b
	case OpGtr:
		return a > b
	case OpGeq:
		return a >= b
	}
	return false
}

// Unary applies a unary operator. Arithmetic operands undergo integer
// promotion first.
func Unary(op Op, x Value) (Value, error) {
	if op == OpLNot {
		if !addressable(x) && x.kind != FloatKind {
			return Value{}, fmt.Errorf("%w: %s%s", ErrOperand, op, x.typ)
		}
		return Bool(!Truth(x)), nil
	}
	if !arithmetic(x) {
		return Value{}, fmt.Errorf("%w: %s%s", ErrOperand, op, x.typ)
	}
	if x.kind == FloatKind {
		switch op {
		case OpNeg:
			return Float(x.typ, -x.f), nil
		case OpPlus:
			return x, nil
		}
		return Value{}, fmt.Errorf("%w: %s%s", ErrOperand, op, x.typ)
	}

	t := types.Promote(x.typ)
	xv, _ := Convert(x, t)
	switch op {
	case OpNeg:
		return Int(t, -xv.i), nil
	case OpPlus:
		return xv, nil
	case OpCompl:
		return Int(t, ^xv.i), nil
	}
	return Value{}, fmt.Errorf("%w: unknown unary operator %s", ErrOperand, op)
}

func arithmetic(v Value) bool {
	return (v.kind == IntKind || v.kind == FloatKind) && types.IsArithmetic(v.typ)
}

func addressable(v Value) bool {
	return v.kind == AddrKind || v.kind == IntKind
}

// IsScalar reports whether v can be stored in memory cells directly.
func IsScalar(v Value) bool {
	return v.kind == IntKind || v.kind == FloatKind || (v.kind == AddrKind && types.IsPointer(v.typ))
}
