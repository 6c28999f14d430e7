package types

// Identical reports whether x and y are identical types.
func Identical(x, y Type) bool {
	if x == y {
		return true
	}
	if x == nil || y == nil {
		return false
	}

	switch x := x.(type) {
	case *Basic:
		if y, ok := y.(*Basic); ok {
			return x.kind == y.kind
		}
	case *Array:
		if y, ok := y.(*Array); ok {
			return x.len == y.len && Identical(x.elem, y.elem)
		}
	case *Struct:
		// Struct and union types are identical only if they are the same
		// declaration.
		return false
	case *Pointer:
		if y, ok := y.(*Pointer); ok {
			return Identical(x.base, y.base)
		}
	case *Func:
		if y, ok := y.(*Func); ok {
			return identicalFuncs(x, y)
		}
	}
	return false
}

func identicalFuncs(x, y *Func) bool {
	if len(x.params) != len(y.params) || x.variadic != y.variadic {
		return false
	}
	for i := range x.params {
		if !Identical(x.params[i].Type(), y.params[i].Type()) {
			return false
		}
	}
	return Identical(x.result, y.result)
}

func basicInfo(T Type) BasicInfo {
	if b, ok := T.(*Basic); ok {
		return b.info
	}
	return 0
}

// IsIntegral reports whether T is an integer type.
func IsIntegral(T Type) bool {
	return basicInfo(T)&IsInteger != 0
}

// IsUnsignedIntegral reports whether T is an unsigned integer type.
func IsUnsignedIntegral(T Type) bool {
	return basicInfo(T)&IsUnsigned != 0
}

// IsSigned reports whether T is a signed integer type.
func IsSigned(T Type) bool {
	info := basicInfo(T)
	return info&IsInteger != 0 && info&IsUnsigned == 0
}

// IsFloating reports whether T is float or double.
func IsFloating(T Type) bool {
	return basicInfo(T)&IsFloat != 0
}

// IsArithmetic reports whether T is an integer or floating type.
func IsArithmetic(T Type) bool {
	return basicInfo(T)&IsNumeric != 0
}

// IsVoidType reports whether T is void.
func IsVoidType(T Type) bool {
	return basicInfo(T)&IsVoid != 0
}

// IsPointer reports whether T is a pointer type.
func IsPointer(T Type) bool {
	_, ok := T.(*Pointer)
	return ok
}

// IsScalar reports whether T is an arithmetic or pointer type.
func IsScalar(T Type) bool {
	return IsArithmetic(T) || IsPointer(T)
}

// IsArray reports whether T is an array type.
func IsArray(T Type) bool {
	_, ok := T.(*Array)
	return ok
}

// IsStruct reports whether T is a struct or union type.
func IsStruct(T Type) bool {
	_, ok := T.(*Struct)
	return ok
}

// IsFunc reports whether T is a function type.
func IsFunc(T Type) bool {
	_, ok := T.(*Func)
	return ok
}

// IsAggregate reports whether values of T are carried by address:
// arrays, structs and unions.
func IsAggregate(T Type) bool {
	return IsArray(T) || IsStruct(T)
}

// Decay converts an array type to a pointer to its element, the way an
// array-valued expression converts in most contexts. Other types are
// returned unchanged.
func Decay(T Type) Type {
	if a, ok := T.(*Array); ok {
		return NewPointer(a.Elem())
	}
	return T
}

// Elem returns the pointed-to or element type of a pointer or array, or
// nil for other types.
func Elem(T Type) Type {
	switch t := T.(type) {
	case *Pointer:
		return t.Elem()
	case *Array:
		return t.Elem()
	}
	return nil
}

// Promote applies the integer promotions: integer types of lower rank
// than int convert to int. Other types are returned unchanged.
func Promote(T Type) Type {
	b, ok := T.(*Basic)
	if !ok || b.info&IsInteger == 0 {
		return T
	}
	if b.rank < Typ[Int].rank {
		return Typ[Int]
	}
	return T
}

// CommonType returns the type both operands of a binary arithmetic
// operator convert to under the usual arithmetic conversions.
// Both x and y must be arithmetic types.
func CommonType(x, y Type) Type {
	if IsFloating(x) || IsFloating(y) {
		if isKind(x, Double) || isKind(y, Double) {
			return Typ[Double]
		}
		return Typ[Float]
	}

	bx := Promote(x).(*Basic)
	by := Promote(y).(*Basic)
	if bx.kind == by.kind {
		return bx
	}

	ux, uy := bx.info&IsUnsigned != 0, by.info&IsUnsigned != 0
	if ux == uy {
		if bx.rank >= by.rank {
			return bx
		}
		return by
	}

	// Mixed signedness: order so that u is the unsigned operand.
	u, s := bx, by
	if uy {
		u, s = by, bx
	}
	if u.rank >= s.rank {
		return u
	}
	// The signed type has greater rank. It wins if it can represent every
	// value of the unsigned type, which requires it to be wider.
	if s.size > u.size {
		return s
	}
	return unsignedOf(s)
}

func isKind(T Type, k BasicKind) bool {
	b, ok := T.(*Basic)
	return ok && b.kind == k
}

// unsignedOf returns the unsigned type corresponding to signed type b.
func unsignedOf(b *Basic) *Basic {
	switch b.kind {
	case Char, SChar:
		return Typ[UChar]
	case Short:
		return Typ[UShort]
	case Int:
		return Typ[UInt]
	case Long:
		return Typ[ULong]
	case LongLong:
		return Typ[ULongLong]
	}
	return b
}
