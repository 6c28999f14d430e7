package types

import "fmt"

// StorageClass is the storage-class specifier of a declaration.
type StorageClass int

const (
	Auto StorageClass = iota // default for block-scope objects
	Static
	Extern
	Typedef
	Register
)

var storageNames = [...]string{
	Auto:     "auto",
	Static:   "static",
	Extern:   "extern",
	Typedef:  "typedef",
	Register: "register",
}

func (c StorageClass) String() string {
	if int(c) < len(storageNames) {
		return storageNames[c]
	}
	return fmt.Sprintf("StorageClass(%d)", c)
}

// Specifier is the base of a declaration before declarators apply:
// the type named by its type specifiers plus storage class and qualifiers.
type Specifier struct {
	Base    Type
	Storage StorageClass
	Const   bool
}

// DeclaratorKind identifies a declarator modifier.
type DeclaratorKind int

const (
	PointerTo DeclaratorKind = iota
	ArrayOf
	FunctionReturning
)

// Declarator is one type modifier applied to a specifier.
type Declarator struct {
	Kind     DeclaratorKind
	Len      int64  // ArrayOf: element count, -1 when omitted
	Params   []*Var // FunctionReturning: parameters
	Variadic bool   // FunctionReturning: trailing ...
}

// Apply applies declarators to base in order: the first declarator wraps
// base, the next wraps that result, and so on. For int *a[3] the order is
// [PointerTo, ArrayOf(3)], giving an array of three int pointers.
func Apply(base Type, decls []Declarator) (Type, error) {
	t := base
	for _, d := range decls {
		switch d.Kind {
		case PointerTo:
			t = NewPointer(t)
		case ArrayOf:
			if _, ok := t.(*Func); ok {
				return nil, fmt.Errorf("array of functions is not allowed")
			}
			if IsVoidType(t) {
				return nil, fmt.Errorf("array of void is not allowed")
			}
			t = NewArray(d.Len, t)
		case FunctionReturning:
			switch t.(type) {
			case *Func:
				return nil, fmt.Errorf("function returning a function is not allowed")
			case *Array:
				return nil, fmt.Errorf("function returning an array is not allowed")
			}
			params := make([]*Var, len(d.Params))
			for i, p := range d.Params {
				params[i] = NewVar(p.Name(), AdjustParam(p.Type()))
			}
			t = NewFunc(params, t, d.Variadic)
		default:
			return nil, fmt.Errorf("unknown declarator kind %d", d.Kind)
		}
	}
	return t, nil
}

// AdjustParam applies C's parameter type adjustment: arrays become
// pointers to their element and functions become function pointers.
func AdjustParam(t Type) Type {
	switch t := t.(type) {
	case *Array:
		return NewPointer(t.Elem())
	case *Func:
		return NewPointer(t)
	}
	return t
}
