package types

import (
	"fmt"
	"strings"
)

// Array represents an array type Elem[N]. A negative length marks an
// incomplete array (T[]), completed later by its initializer.
type Array struct {
	typ
	len  int64
	elem Type
}

// NewArray creates a new array type with the given length and element type.
func NewArray(len int64, elem Type) *Array {
	return &Array{len: len, elem: elem}
}

// Len returns the array length, or -1 when the array is incomplete.
func (a *Array) Len() int64 {
	return a.len
}

// Elem returns the array element type.
func (a *Array) Elem() Type {
	return a.elem
}

// Incomplete reports whether the array has no declared length.
func (a *Array) Incomplete() bool {
	return a.len < 0
}

// String implements Type.
func (a *Array) String() string {
	if a.len < 0 {
		return fmt.Sprintf("%s[]", a.elem)
	}
	return fmt.Sprintf("%s[%d]", a.elem, a.len)
}

// Struct represents a struct or union type. A struct declared only by
// tag (struct node;) is incomplete until SetFields is called.
type Struct struct {
	typ
	tag      string
	union    bool
	fields   []*Var
	complete bool
	size     int64   // computed size (0 if not yet computed)
	align    int64   // computed alignment (0 if not yet computed)
	offsets  []int64 // member offsets (nil if not yet computed)
}

// NewStruct creates a new complete struct type with the given members.
func NewStruct(tag string, fields []*Var) *Struct {
	return &Struct{tag: tag, fields: fields, complete: true}
}

// NewUnion creates a new complete union type with the given members.
func NewUnion(tag string, fields []*Var) *Struct {
	return &Struct{tag: tag, union: true, fields: fields, complete: true}
}

// NewIncomplete creates a struct or union known only by its tag.
func NewIncomplete(tag string, union bool) *Struct {
	return &Struct{tag: tag, union: union}
}

// SetFields completes an incomplete struct or union.
func (s *Struct) SetFields(fields []*Var) {
	s.fields = fields
	s.complete = true
	s.offsets = nil
}

// Tag returns the struct tag, or "" for an anonymous struct.
func (s *Struct) Tag() string {
	return s.tag
}

// IsUnion reports whether s is a union.
func (s *Struct) IsUnion() bool {
	return s.union
}

// Complete reports whether the member list is known.
func (s *Struct) Complete() bool {
	return s.complete
}

// NumFields returns the number of members.
func (s *Struct) NumFields() int {
	return len(s.fields)
}

// Field returns the member at the given index.
func (s *Struct) Field(i int) *Var {
	return s.fields[i]
}

// Fields returns all members.
func (s *Struct) Fields() []*Var {
	return s.fields
}

// FieldIndex returns the index of the named member, or -1.
func (s *Struct) FieldIndex(name string) int {
	for i, f := range s.fields {
		if f.Name() == name {
			return i
		}
	}
	return -1
}

// Size returns the struct size in bytes.
// Must be called after layout is computed.
func (s *Struct) Size() int64 {
	return s.size
}

// Align returns the struct alignment in bytes.
// Must be called after layout is computed.
func (s *Struct) Align() int64 {
	return s.align
}

// Offset returns the offset of member i in bytes.
// Must be called after layout is computed.
func (s *Struct) Offset(i int) int64 {
	return s.offsets[i]
}

// Offsets returns all member offsets.
// Must be called after layout is computed.
func (s *Struct) Offsets() []int64 {
	return s.offsets
}

// SetLayout sets the computed layout information.
func (s *Struct) SetLayout(size, align int64, offsets []int64) {
	s.size = size
	s.align = align
	s.offsets = offsets
}

// LayoutDone reports whether layout has been computed.
func (s *Struct) LayoutDone() bool {
	return s.offsets != nil
}

// String implements Type.
func (s *Struct) String() string {
	kw := "struct"
	if s.union {
		kw = "union"
	}
	if s.tag != "" {
		return kw + " " + s.tag
	}
	var buf strings.Builder
	buf.WriteString(kw)
	buf.WriteString(" {")
	for i, f := range s.fields {
		if i > 0 {
			buf.WriteString(";")
		}
		buf.WriteString(" ")
		buf.WriteString(f.Type().String())
		buf.WriteString(" ")
		buf.WriteString(f.Name())
	}
	buf.WriteString(" }")
	return buf.String()
}

// Pointer represents a pointer type T*.
type Pointer struct {
	typ
	base Type
}

// NewPointer creates a new pointer type.
func NewPointer(base Type) *Pointer {
	return &Pointer{base: base}
}

// Elem returns the type the pointer points to.
func (p *Pointer) Elem() Type {
	return p.base
}

// String implements Type.
func (p *Pointer) String() string {
	return p.base.String() + "*"
}

// Func represents a function type.
type Func struct {
	typ
	params   []*Var // parameters
	result   Type   // return type (Typ[Void] for void functions)
	variadic bool   // trailing ... in the parameter list
}

// NewFunc creates a new function type.
func NewFunc(params []*Var, result Type, variadic bool) *Func {
	return &Func{params: params, result: result, variadic: variadic}
}

// Params returns the parameter list.
func (f *Func) Params() []*Var {
	return f.params
}

// NumParams returns the number of parameters.
func (f *Func) NumParams() int {
	return len(f.params)
}

// Param returns the parameter at index i.
func (f *Func) Param(i int) *Var {
	return f.params[i]
}

// Result returns the result type.
func (f *Func) Result() Type {
	return f.result
}

// Variadic reports whether the function accepts extra arguments.
func (f *Func) Variadic() bool {
	return f.variadic
}

// String implements Type.
func (f *Func) String() string {
	var buf strings.Builder
	buf.WriteString(f.result.String())
	buf.WriteString(" (")
	for i, p := range f.params {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(p.Type().String())
		if p.Name() != "" {
			buf.WriteString(" ")
			buf.WriteString(p.Name())
		}
	}
	if f.variadic {
		if len(f.params) > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("...")
	}
	buf.WriteString(")")
	return buf.String()
}
