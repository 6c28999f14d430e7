package value

import (
	"errors"
	"math"
	"testing"

	"github.com/derrell/LearnCS-sub002/internal/types"
)

var (
	tChar   = types.Typ[types.Char]
	tUChar  = types.Typ[types.UChar]
	tShort  = types.Typ[types.Short]
	tInt    = types.Typ[types.Int]
	tUInt   = types.Typ[types.UInt]
	tLL     = types.Typ[types.LongLong]
	tULL    = types.Typ[types.ULongLong]
	tFloat  = types.Typ[types.Float]
	tDouble = types.Typ[types.Double]
)

func TestIntNormalization(t *testing.T) {
	tests := []struct {
		name string
		typ  types.Type
		in   int64
		want int64
	}{
		{"char wraps", tChar, 200, -56},
		{"uchar wraps", tUChar, -1, 255},
		{"short wraps", tShort, 40000, -25536},
		{"int max", tInt, math.MaxInt32, math.MaxInt32},
		{"int wraps", tInt, math.MaxInt32 + 1, math.MinInt32},
		{"uint from negative", tUInt, -1, math.MaxUint32},
		{"long long", tLL, math.MinInt64, math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Int(tt.typ, tt.in)
			if v.Int64() != tt.want {
				t.Errorf("Int(%s, %d) = %d, want %d", tt.typ, tt.in, v.Int64(), tt.want)
			}
		})
	}
}

func TestUnsignedWrap(t *testing.T) {
	widths := []types.Type{tUChar, types.Typ[types.UShort], tUInt, tULL}
	for _, typ := range widths {
		w := uint(types.ByteWidth(typ)) * 8
		max := Uint(typ, math.MaxUint64)
		one := Int(typ, 1)
		got, err := Binary(OpAdd, max, one)
		if err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
		// the common type of small unsigned types is int, so wrap is checked
		// after converting back to the operand type
		back, _ := Convert(got, typ)
		if back.Uint64() != 0 {
			t.Errorf("%s: max+1 = %d, want 0", typ, back.Uint64())
		}
		if w < 64 && max.Uint64() != 1<<w-1 {
			t.Errorf("%s: max = %d", typ, max.Uint64())
		}
	}
}

func TestSignedWrap(t *testing.T) {
	x := Int(tInt, 2000000000)
	got, err := Binary(OpAdd, x, x)
	if err != nil {
		t.Fatal(err)
	}
	if got.Int64() != -294967296 {
		t.Errorf("2000000000 + 2000000000 = %d, want -294967296", got.Int64())
	}
	if got.Type() != tInt {
		t.Errorf("result type = %s, want int", got.Type())
	}

	min := Int(tInt, math.MinInt32)
	neg, err := Unary(OpNeg, min)
	if err != nil {
		t.Fatal(err)
	}
	if neg.Int64() != math.MinInt32 {
		t.Errorf("-INT_MIN = %d, want %d", neg.Int64(), math.MinInt32)
	}
}

func TestBinaryArithmetic(t *testing.T) {
	tests := []struct {
		name string
		op   Op
		x, y Value
		want string
		typ  types.Type
	}{
		{"int add", OpAdd, Int(tInt, 5), Int(tInt, 3), "8", tInt},
		{"char promote", OpAdd, Int(tChar, 100), Int(tChar, 100), "200", tInt},
		{"int div truncates", OpDiv, Int(tInt, -7), Int(tInt, 2), "-3", tInt},
		{"int rem sign", OpRem, Int(tInt, -7), Int(tInt, 2), "-1", tInt},
		{"unsigned div", OpDiv, Int(tUInt, -2), Int(tUInt, 2), "2147483647", tUInt},
		{"mixed sign", OpAdd, Int(tInt, -1), Int(tUInt, 0), "4294967295", tUInt},
		{"int to double", OpMul, Int(tInt, 3), Float(tDouble, 0.5), "1.5", tDouble},
		{"float stays float", OpAdd, Float(tFloat, 1), Float(tFloat, 2), "3", tFloat},
		{"bitwise and", OpAnd, Int(tInt, 12), Int(tInt, 10), "8", tInt},
		{"xor", OpXor, Int(tInt, 12), Int(tInt, 10), "6", tInt},
		{"shl", OpShl, Int(tInt, 1), Int(tInt, 31), "-2147483648", tInt},
		{"shr signed", OpShr, Int(tInt, -8), Int(tInt, 1), "-4", tInt},
		{"shr unsigned", OpShr, Int(tUInt, -8), Int(tInt, 1), "2147483644", tUInt},
		{"shl char promotes", OpShl, Int(tChar, 1), Int(tInt, 8), "256", tInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Binary(tt.op, tt.x, tt.y)
			if err != nil {
				t.Fatalf("Binary error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("%s %s %s = %s, want %s", tt.x, tt.op, tt.y, got, tt.want)
			}
			if got.Type() != tt.typ {
				t.Errorf("result type = %s, want %s", got.Type(), tt.typ)
			}
		})
	}
}

func TestDivideByZero(t *testing.T) {
	for _, op := range []Op{OpDiv, OpRem} {
		_, err := Binary(op, Int(tInt, 1), Int(tInt, 0))
		if !errors.Is(err, ErrDivideByZero) {
			t.Errorf("1 %s 0: err = %v, want ErrDivideByZero", op, err)
		}
	}
	got, err := Binary(OpDiv, Float(tDouble, 1), Float(tDouble, 0))
	if err != nil {
		t.Fatalf("float division by zero: %v", err)
	}
	if !math.IsInf(got.Float64(), 1) {
		t.Errorf("1.0/0.0 = %v, want +Inf", got)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		op   Op
		x, y Value
		want int64
	}{
		{OpLss, Int(tInt, -1), Int(tInt, 0), 1},
		{OpLss, Int(tInt, -1), Int(tUInt, 0), 0}, // -1 converts to UINT_MAX
		{OpEql, Float(tDouble, 0.5), Float(tFloat, 0.5), 1},
		{OpGeq, Int(tChar, 'b'), Int(tChar, 'a'), 1},
		{OpNeq, Addr(types.NewPointer(tInt), 8), Int(tInt, 0), 1},
		{OpEql, Addr(types.NewPointer(tInt), 0), Int(tInt, 0), 1},
	}

	for _, tt := range tests {
		got, err := Compare(tt.op, tt.x, tt.y)
		if err != nil {
			t.Fatalf("Compare(%s): %v", tt.op, err)
		}
		if got.Int64() != tt.want || got.Type() != tInt {
			t.Errorf("%s %s %s = %s (%s), want %d", tt.x, tt.op, tt.y, got, got.Type(), tt.want)
		}
	}
}

func TestPointerArithmetic(t *testing.T) {
	pInt := types.NewPointer(tInt)
	p := Addr(pInt, 100)

	got, err := Binary(OpAdd, p, Int(tInt, 3))
	if err != nil {
		t.Fatal(err)
	}
	if got.Address() != 112 {
		t.Errorf("p+3 = %d, want 112", got.Address())
	}

	got, err = Binary(OpSub, p, Int(tInt, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got.Address() != 96 {
		t.Errorf("p-1 = %d, want 96", got.Address())
	}

	diff, err := Binary(OpSub, Addr(pInt, 120), p)
	if err != nil {
		t.Fatal(err)
	}
	if diff.Int64() != 5 {
		t.Errorf("q-p = %d, want 5", diff.Int64())
	}

	arr := Addr(types.NewArray(4, tShort), 40)
	got, err = Binary(OpAdd, Int(tInt, 2), arr)
	if err != nil {
		t.Fatal(err)
	}
	if got.Address() != 44 || !types.IsPointer(got.Type()) {
		t.Errorf("2+arr = %s (%s), want 44 (short*)", got, got.Type())
	}

	if _, err := Binary(OpMul, p, Int(tInt, 2)); !errors.Is(err, ErrOperand) {
		t.Errorf("p*2: err = %v, want ErrOperand", err)
	}
}

func TestUnary(t *testing.T) {
	tests := []struct {
		op   Op
		x    Value
		want string
	}{
		{OpNeg, Int(tInt, 5), "-5"},
		{OpCompl, Int(tInt, 0), "-1"},
		{OpCompl, Int(tUChar, 0), "-1"}, // promoted to int
		{OpLNot, Int(tInt, 0), "1"},
		{OpLNot, Float(tDouble, 2.5), "0"},
		{OpLNot, Addr(types.NewPointer(tChar), 0), "1"},
		{OpPlus, Int(tChar, 'A'), "65"},
		{OpNeg, Float(tDouble, 1.5), "-1.5"},
	}

	for _, tt := range tests {
		got, err := Unary(tt.op, tt.x)
		if err != nil {
			t.Fatalf("Unary(%s, %s): %v", tt.op, tt.x, err)
		}
		if got.String() != tt.want {
			t.Errorf("%s%s = %s, want %s", tt.op, tt.x, got, tt.want)
		}
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		to   types.Type
		want string
	}{
		{"int to char", Int(tInt, 300), tChar, "44"},
		{"negative to uchar", Int(tInt, -1), tUChar, "255"},
		{"double to int", Float(tDouble, -3.99), tInt, "-3"},
		{"double to float", Float(tDouble, 0.1), tFloat, "0.10000000149011612"},
		{"int to double", Int(tUInt, -1), tDouble, "4.294967295e+09"},
		{"int to pointer", Int(tInt, 64), types.NewPointer(tChar), "0x0040"},
		{"pointer to int", Addr(types.NewPointer(tChar), 64), tInt, "64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.v, tt.to)
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("Convert(%s, %s) = %s, want %s", tt.v, tt.to, got, tt.want)
			}
		})
	}

	if _, err := Convert(Float(tDouble, 1), types.NewPointer(tInt)); !errors.Is(err, ErrOperand) {
		t.Errorf("double to pointer: err = %v, want ErrOperand", err)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	vals := []Value{
		Int(tChar, -2),
		Int(tShort, 0x1234),
		Int(tInt, -123456),
		Uint(tULL, math.MaxUint64),
		Float(tFloat, 1.25),
		Float(tDouble, math.Pi),
		Addr(types.NewPointer(tInt), 0x1000),
	}

	for _, v := range vals {
		b := v.Bytes()
		if len(b) != v.Width() {
			t.Errorf("%s: len(Bytes()) = %d, want %d", v.Type(), len(b), v.Width())
		}
		back := FromBytes(v.Type(), b)
		if back != v {
			t.Errorf("FromBytes(Bytes(%s)) = %s", v, back)
		}
	}

	if b := Int(tInt, 0x01020304).Bytes(); b[0] != 4 || b[3] != 1 {
		t.Errorf("Bytes not little-endian: %v", b)
	}
}
