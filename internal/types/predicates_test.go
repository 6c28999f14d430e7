package types

import "testing"

func TestIdentical(t *testing.T) {
	st := NewStruct("p", nil)
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"same basic", Typ[Int], Typ[Int], true},
		{"diff basic", Typ[Int], Typ[UInt], false},
		{"same array", NewArray(10, Typ[Int]), NewArray(10, Typ[Int]), true},
		{"diff array len", NewArray(10, Typ[Int]), NewArray(5, Typ[Int]), false},
		{"same ptr", NewPointer(Typ[Int]), NewPointer(Typ[Int]), true},
		{"diff ptr", NewPointer(Typ[Int]), NewPointer(Typ[Char]), false},
		{"same struct", st, st, true},
		{"diff struct", st, NewStruct("p", nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Identical(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("Identical(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestPromote(t *testing.T) {
	tests := []struct {
		in, want Type
	}{
		{Typ[Char], Typ[Int]},
		{Typ[UChar], Typ[Int]},
		{Typ[Short], Typ[Int]},
		{Typ[UShort], Typ[Int]},
		{Typ[Int], Typ[Int]},
		{Typ[UInt], Typ[UInt]},
		{Typ[Double], Typ[Double]},
	}

	for _, tt := range tests {
		if got := Promote(tt.in); got != tt.want {
			t.Errorf("Promote(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestCommonType(t *testing.T) {
	tests := []struct {
		x, y, want Type
	}{
		{Typ[Char], Typ[Char], Typ[Int]},
		{Typ[Int], Typ[UInt], Typ[UInt]},
		{Typ[Int], Typ[Long], Typ[Long]},
		{Typ[UInt], Typ[Long], Typ[ULong]}, // long is no wider than unsigned int
		{Typ[UInt], Typ[LongLong], Typ[LongLong]},
		{Typ[ULongLong], Typ[Int], Typ[ULongLong]},
		{Typ[Int], Typ[Float], Typ[Float]},
		{Typ[Float], Typ[Double], Typ[Double]},
		{Typ[LongLong], Typ[Double], Typ[Double]},
	}

	for _, tt := range tests {
		if got := CommonType(tt.x, tt.y); got != tt.want {
			t.Errorf("CommonType(%s, %s) = %s, want %s", tt.x, tt.y, got, tt.want)
		}
		if got := CommonType(tt.y, tt.x); got != tt.want {
			t.Errorf("CommonType(%s, %s) = %s, want %s", tt.y, tt.x, got, tt.want)
		}
	}
}

func TestPredicates(t *testing.T) {
	ptr := NewPointer(Typ[Int])
	arr := NewArray(4, Typ[Char])

	if !IsIntegral(Typ[Char]) || IsIntegral(Typ[Float]) {
		t.Errorf("IsIntegral mismatch")
	}
	if !IsSigned(Typ[Int]) || IsSigned(Typ[UInt]) || IsSigned(Typ[Double]) {
		t.Errorf("IsSigned mismatch")
	}
	if !IsUnsignedIntegral(Typ[UChar]) {
		t.Errorf("IsUnsignedIntegral(unsigned char) = false")
	}
	if !IsScalar(ptr) || IsScalar(arr) {
		t.Errorf("IsScalar mismatch")
	}
	if !IsAggregate(arr) || IsAggregate(ptr) {
		t.Errorf("IsAggregate mismatch")
	}
	if d := Decay(arr); !Identical(d, NewPointer(Typ[Char])) {
		t.Errorf("Decay(%s) = %s, want char*", arr, d)
	}
	if Elem(ptr) != Typ[Int] || Elem(Typ[Int]) != nil {
		t.Errorf("Elem mismatch")
	}
}
