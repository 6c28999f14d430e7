package interp

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/derrell/LearnCS-sub002/internal/symtab"
	"github.com/derrell/LearnCS-sub002/internal/syntax"
	"github.com/derrell/LearnCS-sub002/internal/types"
)

// maxShown bounds the elements Inspect prints for one array.
const maxShown = 16

// Inspect formats the variable name as seen from the statement the
// machine is paused at, or from the file scope when it is not running.
func (m *Machine) Inspect(name string) (string, error) {
	m.mu.Lock()
	p := m.pause
	m.mu.Unlock()

	scope := m.root
	var base int
	if f := m.top(); f != nil && p != nil {
		scope = m.scopeAt(p.Node)
		base = f.Base
	}
	e, ok := scope.Lookup(name)
	if !ok {
		return "", fmt.Errorf("no symbol %q in current context", name)
	}
	switch e.Kind {
	case symtab.Constant:
		return fmt.Sprintf("%s = %d", name, e.Value), nil
	case symtab.Object:
		if !e.IsStatic() && p == nil {
			return "", fmt.Errorf("%s is not live", name)
		}
		return fmt.Sprintf("%s = %s", name, m.format(e.Address(base), e.Type)), nil
	}
	return fmt.Sprintf("%s: %s", name, e.Type), nil
}

func (m *Machine) scopeAt(n *syntax.Node) *symtab.Scope {
	for p := n; p != nil; p = p.Parent() {
		if s, ok := m.scopes[p]; ok {
			return s
		}
	}
	return m.root
}

// format renders the object of type t at addr.
func (m *Machine) format(addr int, t types.Type) string {
	switch t := t.(type) {
	case *types.Array:
		size := int(m.sizes.Sizeof(t.Elem()))
		if isCharType(t.Elem()) {
			if s, err := m.readCString(addr); err == nil && int64(len(s)) < t.Len() {
				return fmt.Sprintf("%q", s)
			}
		}
		var parts []string
		for i := 0; int64(i) < t.Len(); i++ {
			if i == maxShown {
				parts = append(parts, "...")
				break
			}
			parts = append(parts, m.format(addr+i*size, t.Elem()))
		}
		return "{" + strings.Join(parts, ", ") + "}"

	case *types.Struct:
		if !t.Complete() {
			return "<incomplete>"
		}
		parts := make([]string, t.NumFields())
		for i, f := range t.Fields() {
			parts[i] = f.Name() + " = " + m.format(addr+int(m.sizes.Offsetof(t, i)), f.Type())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	v, err := m.mem.Read(addr, t)
	if err != nil {
		return "<" + describe(err) + ">"
	}
	if isCharType(t) {
		if c := v.Int64(); c >= ' ' && c < 0x7f {
			return fmt.Sprintf("%d '%c'", c, rune(c))
		}
	}
	return v.String()
}

// WriteLayout writes the memory regions, the static data and the frame
// layout of every function.
func (m *Machine) WriteLayout(w io.Writer) {
	fmt.Fprintln(w, "regions:")
	for _, s := range m.mem.Regions() {
		fmt.Fprintf(w, "  %-6s [0x%04x, 0x%04x)\n", s.Region, s.Start, s.End)
	}

	var statics []*symtab.Entry
	frames := make(map[*symtab.Layout][]*symtab.Entry)
	seen := make(map[*symtab.Entry]bool)
	for _, e := range m.refs {
		if e.Kind != symtab.Object || seen[e] {
			continue
		}
		seen[e] = true
		if e.IsStatic() {
			statics = append(statics, e)
		} else {
			l := e.Scope().Layout()
			frames[l] = append(frames[l], e)
		}
	}
	sort.Slice(statics, func(i, j int) bool { return statics[i].Addr < statics[j].Addr })

	fmt.Fprintf(w, "\nstatic data at 0x%04x (%d bytes):\n", m.static.Base, m.static.Size)
	for _, e := range statics {
		fmt.Fprintf(w, "  0x%04x  %-12s %s\n", e.Addr, e.Name, e.Type)
	}
	for _, n := range m.strOrder {
		fmt.Fprintf(w, "  0x%04x  %-12s %q\n", m.strs[n], "string", n.Value)
	}

	fns := make([]*function, 0, len(m.funcs))
	for _, fn := range m.funcs {
		fns = append(fns, fn)
	}
	sort.Slice(fns, func(i, j int) bool { return fns[i].entry.Name < fns[j].entry.Name })
	for _, fn := range fns {
		fmt.Fprintf(w, "\nframe of %s (%d bytes, align %d):\n", fn.entry.Name, fn.layout.Size, fn.layout.Align)
		locals := frames[fn.layout]
		sort.Slice(locals, func(i, j int) bool { return locals[i].Offset < locals[j].Offset })
		for _, e := range locals {
			fmt.Fprintf(w, "  fp+%-4d %-12s %s\n", e.Offset, e.Name, e.Type)
		}
	}
}
