package symtab

import (
	"fmt"
	"sort"
	"strings"

	"github.com/derrell/LearnCS-sub002/internal/types"
)

// Scope represents a lexical scope.
// Scopes form a tree starting from the file scope.
type Scope struct {
	parent   *Scope
	children []*Scope
	entries  map[string]*Entry
	tags     map[string]types.Type
	layout   *Layout
	comment  string // debugging comment (e.g., "function main", "block")
}

// NewScope creates a new scope with the given parent. A nil layout
// shares the parent's layout, as block scopes share their function's
// frame.
func NewScope(parent *Scope, layout *Layout, comment string) *Scope {
	s := &Scope{
		parent:  parent,
		entries: make(map[string]*Entry),
		tags:    make(map[string]types.Type),
		layout:  layout,
		comment: comment,
	}
	if parent != nil {
		parent.children = append(parent.children, s)
		if layout == nil {
			s.layout = parent.layout
		}
	}
	return s
}

// Parent returns the parent scope, or nil for the file scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Children returns the list of child scopes.
func (s *Scope) Children() []*Scope {
	return s.children
}

// Layout returns the storage layout the scope's objects are placed in.
func (s *Scope) Layout() *Layout {
	return s.layout
}

// Comment returns the scope's comment (for debugging).
func (s *Scope) Comment() string {
	return s.comment
}

// IsRoot reports whether s is the file scope.
func (s *Scope) IsRoot() bool {
	return s.parent == nil
}

// Root returns the file scope containing s.
func (s *Scope) Root() *Scope {
	for s.parent != nil {
		s = s.parent
	}
	return s
}

// Add declares name in s and returns its new, empty entry.
// It returns nil if name is already declared in s.
func (s *Scope) Add(name string) *Entry {
	if _, ok := s.entries[name]; ok {
		return nil
	}
	e := &Entry{Name: name, scope: s}
	s.entries[name] = e
	return e
}

// Insert inserts an entry built elsewhere into the scope.
// If an entry with the same name already exists, returns the existing entry.
// Otherwise, returns nil.
func (s *Scope) Insert(e *Entry) *Entry {
	if existing := s.entries[e.Name]; existing != nil {
		return existing
	}
	e.scope = s
	s.entries[e.Name] = e
	return nil
}

// LookupLocal returns the entry for name declared in s itself, or nil.
func (s *Scope) LookupLocal(name string) *Entry {
	return s.entries[name]
}

// Lookup searches for name from s outward to the file scope.
func (s *Scope) Lookup(name string) (*Entry, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if e := scope.entries[name]; e != nil {
			return e, true
		}
	}
	return nil, false
}

// AddTag declares a struct, union or enum tag in s. If the tag is
// already declared in s, the existing type is returned and s is
// unchanged; otherwise AddTag returns nil.
func (s *Scope) AddTag(tag string, t types.Type) types.Type {
	if existing, ok := s.tags[tag]; ok {
		return existing
	}
	s.tags[tag] = t
	return nil
}

// LookupTag searches for a tag from s outward.
func (s *Scope) LookupTag(tag string) (types.Type, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if t, ok := scope.tags[tag]; ok {
			return t, true
		}
	}
	return nil, false
}

// LookupTagLocal returns the tag declared in s itself.
func (s *Scope) LookupTagLocal(tag string) (types.Type, bool) {
	t, ok := s.tags[tag]
	return t, ok
}

// Names returns the names of all entries in the scope, sorted alphabetically.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NumEntries returns the number of entries in the scope.
func (s *Scope) NumEntries() int {
	return len(s.entries)
}

// String returns a string representation of the scope tree for debugging.
func (s *Scope) String() string {
	var buf strings.Builder
	s.writeTo(&buf, 0)
	return buf.String()
}

func (s *Scope) writeTo(buf *strings.Builder, indent int) {
	prefix := strings.Repeat("  ", indent)
	fmt.Fprintf(buf, "%sscope %s {\n", prefix, s.comment)
	tags := make([]string, 0, len(s.tags))
	for tag := range s.tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		fmt.Fprintf(buf, "%s  tag %s: %s\n", prefix, tag, s.tags[tag])
	}
	for _, name := range s.Names() {
		fmt.Fprintf(buf, "%s  %s\n", prefix, s.entries[name])
	}
	for _, child := range s.children {
		child.writeTo(buf, indent+1)
	}
	fmt.Fprintf(buf, "%s}\n", prefix)
}
