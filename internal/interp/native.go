package interp

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/derrell/LearnCS-sub002/internal/memory"
	"github.com/derrell/LearnCS-sub002/internal/rtabi"
	"github.com/derrell/LearnCS-sub002/internal/syntax"
	"github.com/derrell/LearnCS-sub002/internal/types"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

// Func is the Go implementation of a builtin function. Arguments arrive
// converted to the declared parameter types; extra variadic arguments
// arrive after the default argument promotions.
type Func func(c *Call, args []value.Value) (value.Value, error)

// Builtin describes a function provided by a header.
type Builtin struct {
	Name       string
	Params     []string
	ParamTypes []types.Type
	Result     types.Type
	Variadic   bool
	Fn         Func
}

// Sig sets the result and parameter types of b.
func (b *Builtin) Sig(result types.Type, params ...types.Type) *Builtin {
	b.Result = result
	b.ParamTypes = params
	return b
}

// Var marks b as taking a variable number of trailing arguments.
func (b *Builtin) Var() *Builtin {
	b.Variadic = true
	return b
}

// signature returns the C function type of b.
func (b *Builtin) signature() *types.Func {
	params := make([]*types.Var, len(b.ParamTypes))
	for i, t := range b.ParamTypes {
		name := ""
		if i < len(b.Params) {
			name = b.Params[i]
		}
		params[i] = types.NewVar(name, t)
	}
	result := b.Result
	if result == nil {
		result = types.Typ[types.Int]
	}
	return types.NewFunc(params, result, b.Variadic)
}

// Library is the set of builtins and constants one header provides.
type Library struct {
	Header string
	Funcs  []*Builtin
	Consts map[string]int64
}

// NewLibrary returns an empty library for header.
func NewLibrary(header string) *Library {
	return &Library{Header: header, Consts: make(map[string]int64)}
}

// Add registers a builtin named name. The parameter names are used for
// documentation and argument count checks.
func (l *Library) Add(name string, fn Func, params ...string) *Builtin {
	b := &Builtin{Name: name, Params: params, Fn: fn, Result: types.Typ[types.Int]}
	l.Funcs = append(l.Funcs, b)
	return b
}

// Const defines an integer constant made visible by including the header.
func (l *Library) Const(name string, v int64) {
	l.Consts[name] = v
}

// Registry maps header names to libraries.
type Registry struct {
	libs  map[string]*Library
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{libs: make(map[string]*Library)}
}

// Register adds lib. It is an error to register a header twice.
func (r *Registry) Register(lib *Library) error {
	if _, ok := r.libs[lib.Header]; ok {
		return fmt.Errorf("header %s is already registered", lib.Header)
	}
	r.libs[lib.Header] = lib
	r.order = append(r.order, lib.Header)
	return nil
}

// Lookup returns the library registered for header.
func (r *Registry) Lookup(header string) (*Library, bool) {
	lib, ok := r.libs[header]
	return lib, ok
}

// Headers returns the registered header names in registration order.
func (r *Registry) Headers() []string {
	return append([]string(nil), r.order...)
}

// constNames returns the constants of lib in a stable order.
func (l *Library) constNames() []string {
	names := make([]string, 0, len(l.Consts))
	for name := range l.Consts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call is the context of one builtin invocation.
type Call struct {
	m    *Machine
	node *syntax.Node
	fn   *Builtin
}

// Node returns the call expression.
func (c *Call) Node() *syntax.Node { return c.node }

// Name returns the name of the called builtin.
func (c *Call) Name() string { return c.fn.Name }

// Memory returns the machine memory.
func (c *Call) Memory() *memory.Memory { return c.m.mem }

// Stdout returns the program's standard output.
func (c *Call) Stdout() io.Writer { return c.m.stdout }

// Logger returns the machine logger.
func (c *Call) Logger() *slog.Logger { return c.m.log }

// Errorf returns a run-time error attributed to the call site.
func (c *Call) Errorf(format string, args ...interface{}) error {
	return c.m.errorf(c.node, "%s: %s", c.fn.Name, fmt.Sprintf(format, args...))
}

// Exit ends the program with the given status.
func (c *Call) Exit(code int) error {
	return exitStatus(code)
}

// Load reads a value of type t at addr.
func (c *Call) Load(addr int, t types.Type) (value.Value, error) {
	return c.m.mem.Read(addr, t)
}

// Store writes v as type t at addr.
func (c *Call) Store(addr int, t types.Type, v value.Value) error {
	return c.m.mem.Write(addr, t, v)
}

// ReadString returns the NUL-terminated string at addr.
func (c *Call) ReadString(addr int) (string, error) {
	return c.m.readCString(addr)
}

// WriteString stores s followed by a NUL byte at addr.
func (c *Call) WriteString(addr int, s string) error {
	return c.m.writeCString(addr, s)
}

// Malloc allocates size bytes of heap.
func (c *Call) Malloc(size int) (int, error) {
	return c.m.mem.Allocate(memory.Heap, size, rtabi.AlignDouble)
}

// Free releases a heap block returned by Malloc.
func (c *Call) Free(addr int) error {
	return c.m.mem.Release(memory.Heap, addr)
}

// Getc consumes one byte of program input. It returns rtabi.EOF
// once the host has closed input. When no input is buffered the
// machine suspends with an Input pause until the host feeds more.
func (c *Call) Getc() (int, error) {
	return c.m.readInput(c.node, false)
}

// Peekc is like Getc but leaves the byte in the input.
func (c *Call) Peekc() (int, error) {
	return c.m.readInput(c.node, true)
}

// readCString reads bytes from addr up to the terminating NUL.
func (m *Machine) readCString(addr int) (string, error) {
	var b strings.Builder
	uchar := types.Typ[types.UChar]
	for a := addr; ; a++ {
		v, err := m.mem.Read(a, uchar)
		if err != nil {
			return "", err
		}
		if v.Int64() == 0 {
			return b.String(), nil
		}
		b.WriteByte(byte(v.Int64()))
	}
}

// writeCString stores s and a NUL terminator at addr.
func (m *Machine) writeCString(addr int, s string) error {
	char := types.Typ[types.Char]
	for i := 0; i <= len(s); i++ {
		var ch byte
		if i < len(s) {
			ch = s[i]
		}
		if err := m.mem.Write(addr+i, char, value.Int(char, int64(int8(ch)))); err != nil {
			return err
		}
	}
	return nil
}
