package types

// Var represents a struct/union member or a function parameter.
type Var struct {
	name    string
	typ     Type
	isField bool // true if this is a struct or union member
}

// NewVar creates a new parameter object. An unnamed parameter has an
// empty name.
func NewVar(name string, typ Type) *Var {
	return &Var{name: name, typ: typ}
}

// NewField creates a new struct or union member.
func NewField(name string, typ Type) *Var {
	return &Var{name: name, typ: typ, isField: true}
}

// Name returns the member or parameter name.
func (v *Var) Name() string { return v.name }

// Type returns the member or parameter type.
func (v *Var) Type() Type { return v.typ }

// IsField reports whether v is a struct or union member.
func (v *Var) IsField() bool {
	return v.isField
}
