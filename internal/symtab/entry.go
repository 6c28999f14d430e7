// Package symtab implements the symbol table of the interpreter: nested
// lexical scopes mapping C names to types and storage.
package symtab

import (
	"fmt"

	"github.com/derrell/LearnCS-sub002/internal/syntax"
	"github.com/derrell/LearnCS-sub002/internal/types"
)

// EntryKind classifies what a name denotes.
type EntryKind int

const (
	Object   EntryKind = iota // variable or parameter with storage
	Function                  // function defined in the program
	Native                    // function provided by an included header
	TypeName                  // typedef name
	Constant                  // enumeration constant
)

var kindNames = [...]string{
	Object:   "object",
	Function: "func",
	Native:   "native",
	TypeName: "typedef",
	Constant: "const",
}

func (k EntryKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("EntryKind(%d)", k)
}

// Entry is one declared name.
type Entry struct {
	Name    string
	Kind    EntryKind
	Type    types.Type
	Storage types.StorageClass
	Offset  int64 // position within the owning layout
	Addr    int   // absolute address of static storage, once resolved
	Value   int64 // value of an enumeration constant
	Native  any   // binding for Native entries
	Def     *syntax.Node
	Pos     syntax.Pos

	scope  *Scope
	layout *Layout // layout the entry was placed in, nil until placed
}

// Scope returns the scope the entry was declared in.
func (e *Entry) Scope() *Scope {
	return e.scope
}

// IsStatic reports whether the entry has static storage duration:
// file-scope objects and block-scope objects declared static or extern.
func (e *Entry) IsStatic() bool {
	if e.Kind != Object {
		return false
	}
	if e.Storage == types.Static || e.Storage == types.Extern {
		return true
	}
	return e.layout != nil && e.layout.Static
}

// Placed reports whether CalculateOffset has assigned the entry storage.
func (e *Entry) Placed() bool {
	return e.layout != nil
}

// Address returns the address of the entry's storage. Static entries
// have a fixed address; automatic entries are relative to the base of
// the active frame.
func (e *Entry) Address(frameBase int) int {
	if e.IsStatic() {
		return e.Addr
	}
	return frameBase + int(e.Offset)
}

func (e *Entry) String() string {
	switch e.Kind {
	case Object:
		where := fmt.Sprintf("fp+%d", e.Offset)
		if e.IsStatic() {
			where = fmt.Sprintf("0x%04x", e.Addr)
		}
		return fmt.Sprintf("%s %s: %s @ %s", e.Kind, e.Name, e.Type, where)
	case Constant:
		return fmt.Sprintf("%s %s = %d", e.Kind, e.Name, e.Value)
	}
	return fmt.Sprintf("%s %s: %s", e.Kind, e.Name, e.Type)
}

// Layout tracks storage assignment for a frame or for static data.
// A function scope and all of its nested blocks share one frame layout.
type Layout struct {
	Base   int   // absolute address of offset 0 for static layouts
	Size   int64 // bytes in use
	Align  int64 // strictest alignment placed
	Static bool
}

// NewFrameLayout returns an empty layout for a function activation.
func NewFrameLayout() *Layout {
	return &Layout{Align: 1}
}

// NewStaticLayout returns an empty static layout whose offset 0 is base.
func NewStaticLayout(base int) *Layout {
	return &Layout{Base: base, Align: 1, Static: true}
}

// CalculateOffset assigns e the next suitably aligned offset in its
// scope's layout, sets e.Addr to the layout base plus that offset, and
// returns the number of bytes the layout grew by. Static and extern
// entries in a block scope are placed in static instead of the frame.
func CalculateOffset(e *Entry, static *Layout, sizes *types.Sizes) (int64, error) {
	if e.Placed() {
		return 0, fmt.Errorf("%s has already been placed", e.Name)
	}
	l := e.scope.Layout()
	if (e.Storage == types.Static || e.Storage == types.Extern) && static != nil {
		l = static
	}
	if l == nil {
		return 0, fmt.Errorf("no storage layout for %s", e.Name)
	}
	if err := sizes.Check(e.Type); err != nil {
		return 0, fmt.Errorf("storage size of '%s' isn't known: %v", e.Name, err)
	}

	size := sizes.Sizeof(e.Type)
	align := sizes.Alignof(e.Type)
	before := l.Size
	e.Offset = types.Align(l.Size, align)
	l.Size = e.Offset + size
	if align > l.Align {
		l.Align = align
	}
	e.Addr = l.Base + int(e.Offset)
	e.layout = l
	return l.Size - before, nil
}
