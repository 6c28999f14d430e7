// Package value implements the typed values of the emulated C machine.
//
// A Value is a closed sum over four kinds. Integer and floating values
// carry the C type they were produced as, and constructors normalize the
// payload to that type's width, so every Value is always in range.
package value

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/derrell/LearnCS-sub002/internal/types"
)

// Kind identifies the representation of a Value.
type Kind uint8

const (
	Invalid Kind = iota
	IntKind      // integer of width 1, 2, 4 or 8, signed or unsigned
	FloatKind    // float (binary32) or double (binary64)
	AddrKind     // address of a memory cell; pointers and aggregates
	ContKind     // continuation marker naming the address of its owner
)

var kindNames = [...]string{
	Invalid:   "invalid",
	IntKind:   "int",
	FloatKind: "float",
	AddrKind:  "addr",
	ContKind:  "cont",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Value is a typed C value.
//
// For IntKind the payload holds the value sign- or zero-extended from
// its width; unsigned long long values above 1<<63 keep their bit
// pattern. For FloatKind of type float the payload is already rounded to
// binary32. AddrKind values also represent arrays and structs, which are
// carried by the address of their first byte.
type Value struct {
	kind Kind
	typ  types.Type
	i    int64
	f    float64
}

// Int returns an integer value of type t holding x truncated to t's width.
func Int(t types.Type, x int64) Value {
	return Value{kind: IntKind, typ: t, i: wrap(t, x)}
}

// Uint is like Int for an unsigned source value.
func Uint(t types.Type, x uint64) Value {
	return Int(t, int64(x))
}

// Float returns a floating value of type t. Values of type float are
// rounded to single precision.
func Float(t types.Type, x float64) Value {
	if b, ok := t.(*types.Basic); ok && b.Kind() == types.Float {
		x = float64(float32(x))
	}
	return Value{kind: FloatKind, typ: t, f: x}
}

// Addr returns an address value of type t, which is a pointer, array or
// struct type.
func Addr(t types.Type, addr int) Value {
	return Value{kind: AddrKind, typ: t, i: int64(uint32(addr))}
}

// Cont returns the continuation marker stored in the cells that follow
// the first cell of a multi-byte value starting at owner.
func Cont(owner int) Value {
	return Value{kind: ContKind, i: int64(owner)}
}

// Zero returns the zero value of type t.
func Zero(t types.Type) Value {
	switch {
	case types.IsIntegral(t):
		return Int(t, 0)
	case types.IsFloating(t):
		return Float(t, 0)
	case types.IsPointer(t), types.IsAggregate(t):
		return Addr(t, 0)
	}
	return Value{typ: t}
}

// Void returns the value produced by a call to a void function.
func Void() Value {
	return Value{typ: types.Typ[types.Void]}
}

// Kind returns the representation kind of v.
func (v Value) Kind() Kind { return v.kind }

// Type returns the C type of v. It is nil for continuation markers.
func (v Value) Type() types.Type { return v.typ }

// IsValid reports whether v holds a value.
func (v Value) IsValid() bool { return v.kind != Invalid }

// IsCont reports whether v is a continuation marker.
func (v Value) IsCont() bool { return v.kind == ContKind }

// Int64 returns v as a signed integer. Floating values truncate toward
// zero and addresses convert to their numeric value.
func (v Value) Int64() int64 {
	switch v.kind {
	case IntKind, AddrKind, ContKind:
		return v.i
	case FloatKind:
		return int64(v.f)
	}
	return 0
}

// Uint64 returns the bit pattern of an integer value.
func (v Value) Uint64() uint64 {
	if v.kind == FloatKind {
		if v.f >= math.MaxInt64 {
			return uint64(v.f)
		}
		return uint64(int64(v.f))
	}
	return uint64(v.i)
}

// Float64 returns v as a float64.
func (v Value) Float64() float64 {
	switch v.kind {
	case FloatKind:
		return v.f
	case IntKind:
		if types.IsUnsignedIntegral(v.typ) {
			return float64(uint64(v.i))
		}
		return float64(v.i)
	case AddrKind:
		return float64(v.i)
	}
	return 0
}

// Address returns the address held by an AddrKind value.
func (v Value) Address() int {
	return int(v.i)
}

// Owner returns the owning address of a continuation marker.
func (v Value) Owner() int {
	return int(v.i)
}

// Retype returns v with its type replaced by t without converting the
// payload. It is used for reads of a prefix of a value's bytes and for
// pointer casts.
func (v Value) Retype(t types.Type) Value {
	v.typ = t
	return v
}

// Width returns the number of bytes v occupies in memory.
func (v Value) Width() int {
	switch v.kind {
	case IntKind, FloatKind, AddrKind:
		return int(types.ByteWidth(v.typ))
	case ContKind:
		return 1
	}
	return 0
}

// Bytes returns the little-endian byte image of a scalar value.
func (v Value) Bytes() []byte {
	var buf [8]byte
	switch v.kind {
	case IntKind:
		binary.LittleEndian.PutUint64(buf[:], uint64(v.i))
		return append([]byte(nil), buf[:types.ByteWidth(v.typ)]...)
	case FloatKind:
		if types.ByteWidth(v.typ) == 4 {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(float32(v.f)))
			return append([]byte(nil), buf[:4]...)
		}
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v.f))
		return append([]byte(nil), buf[:8]...)
	case AddrKind:
		binary.LittleEndian.PutUint32(buf[:], uint32(v.i))
		return append([]byte(nil), buf[:4]...)
	}
	panic(fmt.Sprintf("value: Bytes of %s value", v.kind))
}

// FromBytes decodes the little-endian image b as a scalar of type t.
// b must hold at least ByteWidth(t) bytes.
func FromBytes(t types.Type, b []byte) Value {
	var buf [8]byte
	n := types.ByteWidth(t)
	copy(buf[:], b[:n])
	switch {
	case types.IsIntegral(t):
		return Int(t, int64(binary.LittleEndian.Uint64(buf[:])))
	case types.IsFloating(t):
		if n == 4 {
			return Float(t, float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[:]))))
		}
		return Float(t, math.Float64frombits(binary.LittleEndian.Uint64(buf[:])))
	case types.IsPointer(t):
		return Addr(t, int(binary.LittleEndian.Uint32(buf[:])))
	}
	panic(fmt.Sprintf("value: FromBytes of non-scalar type %s", t))
}

// String formats v for diagnostics and memory dumps.
func (v Value) String() string {
	switch v.kind {
	case IntKind:
		if types.IsUnsignedIntegral(v.typ) {
			return fmt.Sprintf("%d", uint64(v.i))
		}
		return fmt.Sprintf("%d", v.i)
	case FloatKind:
		return fmt.Sprintf("%g", v.f)
	case AddrKind:
		return fmt.Sprintf("0x%04x", v.i)
	case ContKind:
		return fmt.Sprintf("cont(0x%04x)", v.i)
	}
	if v.typ != nil && types.IsVoidType(v.typ) {
		return "void"
	}
	return "<invalid>"
}

// wrap truncates x to the width of integer type t, sign-extending for
// signed types and zero-extending for unsigned ones.
func wrap(t types.Type, x int64) int64 {
	w := uint(types.ByteWidth(t)) * 8
	if w >= 64 {
		return x
	}
	shift := 64 - w
	if types.IsUnsignedIntegral(t) {
		return int64(uint64(x) << shift >> shift)
	}
	return x << shift >> shift
}
