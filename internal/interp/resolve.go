package interp

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/derrell/LearnCS-sub002/internal/symtab"
	"github.com/derrell/LearnCS-sub002/internal/syntax"
	"github.com/derrell/LearnCS-sub002/internal/types"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

// switchInfo holds the labels of one switch statement.
type switchInfo struct {
	cases []caseLabel
	deflt *syntax.Node
}

type caseLabel struct {
	value int64
	node  *syntax.Node
}

func (s *switchInfo) lookup(v int64) *syntax.Node {
	for _, c := range s.cases {
		if c.value == v {
			return c.node
		}
	}
	return nil
}

// resolver binds every name of the translation unit to a symbol table
// entry, assigns storage, and records the load-time facts the evaluator
// needs: literal values, type names, string literals and switch labels.
type resolver struct {
	m     *Machine
	scope *symtab.Scope
	fn    *function

	loops    int
	switches []*switchInfo
	defined  map[*symtab.Entry]bool // static objects with an initializer

	errors int
	first  *RuntimeError
}

func newResolver(m *Machine) *resolver {
	return &resolver{
		m:       m,
		scope:   m.root,
		defined: make(map[*symtab.Entry]bool),
	}
}

// errorf reports a declaration error at n.
func (r *resolver) errorf(n *syntax.Node, format string, args ...interface{}) {
	err := newError(Decl, n, nil, fmt.Sprintf(format, args...))
	if r.errors == 0 {
		r.first = err
	}
	r.errors++
	r.m.log.Debug("declaration error", slog.Int("line", err.Line), slog.String("msg", err.Msg))
}

// file resolves a translation unit. Function bodies are resolved after
// every file-scope declaration, so a body may use globals declared
// further down.
func (r *resolver) file(tu *syntax.Node) {
	var bodies []*function
	for _, n := range tu.Children() {
		switch n.Kind {
		case syntax.Include:
			r.include(n)
		case syntax.Declaration:
			r.declaration(n)
		case syntax.FuncDef:
			if fn := r.funcDef(n); fn != nil {
				bodies = append(bodies, fn)
			}
		}
	}
	for _, fn := range bodies {
		r.funcBody(fn)
	}
}

// include binds the functions and constants of a header in the file scope.
func (r *resolver) include(n *syntax.Node) {
	lib, ok := r.m.conf.Registry.Lookup(n.Value)
	if !ok {
		r.errorf(n, "%s: no such header", n.Value)
		return
	}
	root := r.m.root
	for _, b := range lib.Funcs {
		e := root.Add(b.Name)
		if e == nil {
			r.errorf(n, "'%s' already defined — included twice?", b.Name)
			continue
		}
		e.Kind = symtab.Native
		e.Type = b.signature()
		e.Storage = types.Extern
		e.Native = b
		e.Def = n
		e.Pos = n.Pos
	}
	for _, name := range lib.constNames() {
		v := lib.Consts[name]
		if old := root.LookupLocal(name); old != nil {
			if old.Kind == symtab.Constant && old.Value == v {
				continue
			}
			r.errorf(n, "'%s' already defined — included twice?", name)
			continue
		}
		e := root.Add(name)
		e.Kind = symtab.Constant
		e.Type = types.Typ[types.Int]
		e.Value = v
		e.Def = n
		e.Pos = n.Pos
	}
	r.m.log.Debug("header included",
		slog.String("header", n.Value),
		slog.Int("functions", len(lib.Funcs)),
		slog.Int("constants", len(lib.Consts)))
}

// ----------------------------------------------------------------------------
// Declarations

func (r *resolver) specifiers(n *syntax.Node) (types.Specifier, bool) {
	var spec types.Specifier
	switch n.Value {
	case "static":
		spec.Storage = types.Static
	case "extern":
		spec.Storage = types.Extern
	case "typedef":
		spec.Storage = types.Typedef
	case "register":
		spec.Storage = types.Register
	}

	var words []string
	var base types.Type
	setBase := func(c *syntax.Node, t types.Type) bool {
		if base != nil {
			r.errorf(c, "two or more data types in declaration specifiers")
			return false
		}
		base = t
		return true
	}
	for _, c := range n.Children() {
		switch c.Kind {
		case syntax.TypeSpec:
			words = append(words, c.Value)
		case syntax.Qualifier:
			if c.Value == "const" {
				spec.Const = true
			}
		case syntax.TypedefName:
			e, ok := r.scope.Lookup(c.Value)
			if !ok || e.Kind != symtab.TypeName {
				r.errorf(c, "unknown type name '%s'", c.Value)
				return spec, false
			}
			if !setBase(c, e.Type) {
				return spec, false
			}
		case syntax.StructSpec, syntax.UnionSpec:
			t := r.structType(c)
			if t == nil || !setBase(c, t) {
				return spec, false
			}
		case syntax.EnumSpec:
			if !setBase(c, r.enumType(c)) {
				return spec, false
			}
		}
	}
	if len(words) > 0 {
		if base != nil {
			r.errorf(n, "two or more data types in declaration specifiers")
			return spec, false
		}
		b, err := types.BasicFromKeywords(words)
		if err != nil {
			r.errorf(n, "%v", err)
			return spec, false
		}
		base = b
	}
	if base == nil {
		r.errorf(n, "type specifier missing")
		return spec, false
	}
	spec.Base = base
	return spec, true
}

func (r *resolver) structType(n *syntax.Node) types.Type {
	union := n.Kind == syntax.UnionSpec
	kw := "struct"
	if union {
		kw = "union"
	}
	tag := n.Value
	sameKind := func(t types.Type) (*types.Struct, bool) {
		st, ok := t.(*types.Struct)
		if !ok || st.IsUnion() != union {
			r.errorf(n, "'%s' defined as wrong kind of tag", tag)
			return nil, false
		}
		return st, true
	}

	fields := n.Child(0)
	if fields == nil {
		if t, ok := r.scope.LookupTag(tag); ok {
			st, ok := sameKind(t)
			if !ok {
				return nil
			}
			return st
		}
		st := types.NewIncomplete(tag, union)
		r.scope.AddTag(tag, st)
		return st
	}

	var st *types.Struct
	if tag != "" {
		if t, ok := r.scope.LookupTagLocal(tag); ok {
			existing, ok := sameKind(t)
			if !ok {
				return nil
			}
			if existing.Complete() {
				r.errorf(n, "redefinition of '%s %s'", kw, tag)
				return nil
			}
			st = existing
		}
	}
	if st == nil {
		st = types.NewIncomplete(tag, union)
		if tag != "" {
			r.scope.AddTag(tag, st)
		}
	}

	var members []*types.Var
	seen := make(map[string]bool)
	for _, sd := range fields.Children() {
		spec, ok := r.specifiers(sd.Child(0))
		if !ok {
			continue
		}
		for _, d := range sd.Children()[1:] {
			t := r.declType(spec.Base, d)
			if t == nil {
				continue
			}
			switch {
			case seen[d.Value]:
				r.errorf(d, "duplicate member '%s'", d.Value)
			case types.IsFunc(t):
				r.errorf(d, "field '%s' declared as a function", d.Value)
			case r.m.sizes.Check(t) != nil:
				r.errorf(d, "field '%s' has incomplete type", d.Value)
			default:
				members = append(members, types.NewField(d.Value, t))
			}
			seen[d.Value] = true
		}
	}
	st.SetFields(members)
	r.m.sizes.ComputeLayout(st)
	return st
}

func (r *resolver) enumType(n *syntax.Node) types.Type {
	intType := types.Typ[types.Int]
	if n.Value != "" {
		r.scope.AddTag(n.Value, intType)
	}
	list := n.Child(0)
	if list == nil {
		return intType
	}
	var next int64
	for _, en := range list.Children() {
		if x := en.Child(0); x != nil {
			if v, ok := r.constExpr(x); ok {
				next = v
			}
		}
		e := r.scope.Add(en.Value)
		if e == nil {
			r.errorf(en, "redeclaration of '%s'", en.Value)
		} else {
			e.Kind = symtab.Constant
			e.Type = intType
			e.Value = int64(int32(next))
			e.Def = en
			e.Pos = en.Pos
		}
		next++
	}
	return intType
}

// declType applies the modifiers of declarator d to base.
func (r *resolver) declType(base types.Type, d *syntax.Node) types.Type {
	var mods []types.Declarator
	for _, c := range d.Children() {
		switch c.Kind {
		case syntax.PointerDecl:
			mods = append(mods, types.Declarator{Kind: types.PointerTo})
		case syntax.ArrayDecl:
			n := int64(-1)
			if size := c.Child(0); size != nil {
				v, ok := r.constExpr(size)
				if !ok {
					return nil
				}
				if v <= 0 {
					if d.Value != "" {
						r.errorf(size, "size of array '%s' is not positive", d.Value)
					} else {
						r.errorf(size, "size of array is not positive")
					}
					return nil
				}
				n = v
			}
			mods = append(mods, types.Declarator{Kind: types.ArrayOf, Len: n})
		case syntax.FuncDecl:
			params, variadic, ok := r.params(c.Child(0))
			if !ok {
				return nil
			}
			mods = append(mods, types.Declarator{Kind: types.FunctionReturning, Params: params, Variadic: variadic})
		}
	}
	t, err := types.Apply(base, mods)
	if err != nil {
		r.errorf(d, "%v", err)
		return nil
	}
	return t
}

func (r *resolver) params(pl *syntax.Node) (params []*types.Var, variadic, ok bool) {
	for _, p := range pl.Children() {
		if p.Kind == syntax.Ellipsis {
			variadic = true
			continue
		}
		spec, ok := r.specifiers(p.Child(0))
		if !ok {
			return nil, false, false
		}
		t := r.declType(spec.Base, p.Child(1))
		if t == nil {
			return nil, false, false
		}
		if types.IsVoidType(t) {
			r.errorf(p, "parameter has void type")
			return nil, false, false
		}
		params = append(params, types.NewVar(p.Child(1).Value, t))
	}
	return params, variadic, true
}

func (r *resolver) typeName(tn *syntax.Node) types.Type {
	spec, ok := r.specifiers(tn.Child(0))
	if !ok {
		return nil
	}
	t := r.declType(spec.Base, tn.Child(1))
	if t != nil {
		r.m.typeOf[tn] = t
	}
	return t
}

func (r *resolver) declaration(n *syntax.Node) {
	spec, ok := r.specifiers(n.Child(0))
	if !ok {
		return
	}
	for _, id := range n.Children()[1:] {
		r.initDeclarator(spec, id)
	}
}

func (r *resolver) initDeclarator(spec types.Specifier, id *syntax.Node) {
	d, init := id.Child(0), id.Child(1)
	t := r.declType(spec.Base, d)
	if t == nil {
		return
	}
	name := d.Value

	switch {
	case spec.Storage == types.Typedef:
		e := r.scope.Add(name)
		if e == nil {
			r.errorf(d, "redefinition of '%s'", name)
			return
		}
		e.Kind = symtab.TypeName
		e.Type = t
		e.Storage = types.Typedef
		e.Def = id
		e.Pos = d.Pos

	case types.IsFunc(t):
		if init != nil {
			r.errorf(id, "function '%s' is initialized like a variable", name)
			return
		}
		if e := r.declareFunc(name, t.(*types.Func), id); e != nil {
			r.m.refs[id] = e
		}

	default:
		r.object(spec, t, id)
	}
}

// declareFunc declares a function in the file scope, merging with an
// earlier declaration of the same type.
func (r *resolver) declareFunc(name string, sig *types.Func, def *syntax.Node) *symtab.Entry {
	root := r.m.root
	if e := root.LookupLocal(name); e != nil {
		switch {
		case e.Kind != symtab.Function:
			r.errorf(def, "'%s' redeclared as different kind of symbol", name)
			return nil
		case !types.Identical(e.Type, sig):
			r.errorf(def, "conflicting types for '%s'", name)
			return nil
		}
		return e
	}
	e := root.Add(name)
	e.Kind = symtab.Function
	e.Type = sig
	e.Storage = types.Extern
	e.Def = def
	e.Pos = def.Pos
	return e
}

func (r *resolver) object(spec types.Specifier, t types.Type, id *syntax.Node) {
	d, init := id.Child(0), id.Child(1)
	name := d.Value
	if types.IsVoidType(t) {
		r.errorf(d, "variable '%s' declared void", name)
		return
	}
	if a, ok := t.(*types.Array); ok && a.Incomplete() && init != nil {
		if n := r.initLength(init, a); n > 0 {
			t = types.NewArray(n, a.Elem())
		}
	}

	// A block-scope extern refers to the file-scope object.
	if !r.scope.IsRoot() && spec.Storage == types.Extern && init == nil {
		if e := r.m.root.LookupLocal(name); e != nil && e.Kind == symtab.Object {
			if !types.Identical(e.Type, t) {
				r.errorf(d, "conflicting types for '%s'", name)
			}
			return
		}
		if r.scope.LookupLocal(name) != nil {
			r.errorf(d, "redeclaration of '%s'", name)
			return
		}
		prev := r.scope
		r.scope = r.m.root
		r.object(spec, t, id)
		r.scope = prev
		return
	}

	if r.scope.IsRoot() {
		if e := r.scope.LookupLocal(name); e != nil {
			if e.Kind != symtab.Object || !types.Identical(e.Type, t) {
				r.errorf(d, "conflicting types for '%s'", name)
				return
			}
			if init != nil {
				if r.defined[e] {
					r.errorf(d, "redefinition of '%s'", name)
					return
				}
				r.staticInit(e, id)
			}
			r.m.refs[id] = e
			return
		}
	}

	e := r.scope.Add(name)
	if e == nil {
		r.errorf(d, "redefinition of '%s'", name)
		return
	}
	e.Kind = symtab.Object
	e.Type = t
	e.Storage = spec.Storage
	e.Def = id
	e.Pos = d.Pos
	if _, err := symtab.CalculateOffset(e, r.m.static, r.m.sizes); err != nil {
		r.errorf(d, "%v", err)
		return
	}
	r.m.refs[id] = e
	if spec.Const {
		r.m.readonly[e] = true
	}
	switch {
	case init == nil:
	case e.IsStatic():
		r.staticInit(e, id)
	default:
		r.initializer(init)
	}
}

func (r *resolver) staticInit(e *symtab.Entry, id *syntax.Node) {
	init := id.Child(1)
	r.defined[e] = true
	r.initializer(init)
	r.m.inits = append(r.m.inits, staticInit{entry: e, init: init})
}

// initializer resolves the expressions of an initializer and records
// their types so brace elision can tell a struct value from its members.
func (r *resolver) initializer(init *syntax.Node) {
	if init.Kind != syntax.InitList {
		r.expr(init)
		if t := r.exprType(init); t != nil {
			r.m.typeOf[init] = t
		}
		return
	}
	for _, c := range init.Children() {
		r.initializer(c)
	}
}

// initLength returns the element count an initializer gives an array
// declared without a size.
func (r *resolver) initLength(init *syntax.Node, a *types.Array) int64 {
	if init.Kind == syntax.StringLit && isCharType(a.Elem()) {
		return int64(len(init.Value)) + 1
	}
	if init.Kind != syntax.InitList {
		return 0
	}
	items := init.Children()
	per := scalarCount(a.Elem())
	var n, flat int64
	for _, item := range items {
		if item.Kind == syntax.InitList || per == 1 || (item.Kind == syntax.StringLit && isCharArray(a.Elem())) {
			if flat > 0 {
				n += (flat + per - 1) / per
				flat = 0
			}
			n++
			continue
		}
		flat++
	}
	return n + (flat+per-1)/per
}

func scalarCount(t types.Type) int64 {
	switch t := t.(type) {
	case *types.Array:
		return max(t.Len(), 0) * scalarCount(t.Elem())
	case *types.Struct:
		var n int64
		for i, f := range t.Fields() {
			if t.IsUnion() && i > 0 {
				break
			}
			n += scalarCount(f.Type())
		}
		return max(n, 1)
	}
	return 1
}

// funcDef declares the function of a definition; its body is resolved
// by funcBody.
func (r *resolver) funcDef(n *syntax.Node) *function {
	spec, ok := r.specifiers(n.Child(0))
	if !ok {
		return nil
	}
	d := n.Child(1)
	t := r.declType(spec.Base, d)
	if t == nil {
		return nil
	}
	sig, ok := t.(*types.Func)
	if !ok {
		r.errorf(d, "'%s' is not a function", d.Value)
		return nil
	}
	if res := sig.Result(); types.IsStruct(res) && r.m.sizes.Check(res) != nil {
		r.errorf(d, "return type of '%s' is an incomplete type", d.Value)
		return nil
	}
	e := r.declareFunc(d.Value, sig, n)
	if e == nil {
		return nil
	}
	if r.m.funcs[e] != nil {
		r.errorf(d, "redefinition of '%s'", d.Value)
		return nil
	}
	e.Type = sig
	e.Def = n
	e.Pos = d.Pos

	fn := &function{entry: e, node: n, sig: sig, layout: symtab.NewFrameLayout()}
	r.m.funcs[e] = fn
	r.m.refs[n] = e
	return fn
}

func (r *resolver) funcBody(fn *function) {
	d := fn.node.Child(1)
	body := fn.node.Child(2)
	scope := symtab.NewScope(r.m.root, fn.layout, "function "+fn.entry.Name)
	fn.scope = scope
	r.m.scopes[fn.node] = scope
	r.m.scopes[body] = scope

	var fd *syntax.Node
	for _, c := range d.Children() {
		if c.Kind == syntax.FuncDecl {
			fd = c
		}
	}
	if fd == nil {
		r.errorf(d, "'%s' is not a function", fn.entry.Name)
		return
	}
	i := 0
	for _, p := range fd.Child(0).Children() {
		if p.Kind == syntax.Ellipsis {
			continue
		}
		pd := p.Child(1)
		pt := fn.sig.Param(i).Type()
		i++
		if pd.Value == "" {
			r.errorf(p, "parameter name omitted")
			continue
		}
		e := scope.Add(pd.Value)
		if e == nil {
			r.errorf(pd, "redefinition of parameter '%s'", pd.Value)
			continue
		}
		e.Kind = symtab.Object
		e.Type = pt
		e.Def = p
		e.Pos = pd.Pos
		if _, err := symtab.CalculateOffset(e, nil, r.m.sizes); err != nil {
			r.errorf(pd, "%v", err)
			continue
		}
		fn.params = append(fn.params, e)
		r.m.refs[p] = e
	}

	prev, prevFn := r.scope, r.fn
	r.scope, r.fn = scope, fn
	for _, item := range body.Children() {
		r.stmt(item)
	}
	r.scope, r.fn = prev, prevFn
}

// ----------------------------------------------------------------------------
// Statements

func (r *resolver) openScope(n *syntax.Node, comment string) func() {
	prev := r.scope
	r.scope = symtab.NewScope(prev, nil, comment)
	r.m.scopes[n] = r.scope
	return func() { r.scope = prev }
}

func (r *resolver) loop(body *syntax.Node) {
	r.loops++
	r.stmt(body)
	r.loops--
}

func (r *resolver) stmt(n *syntax.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case syntax.Compound:
		closeScope := r.openScope(n, "block")
		for _, c := range n.Children() {
			r.stmt(c)
		}
		closeScope()

	case syntax.Declaration:
		r.declaration(n)

	case syntax.ExprStmt:
		r.expr(n.Child(0))

	case syntax.If:
		r.expr(n.Child(0))
		r.stmt(n.Child(1))
		r.stmt(n.Child(2))

	case syntax.While:
		r.expr(n.Child(0))
		r.loop(n.Child(1))

	case syntax.DoWhile:
		r.loop(n.Child(0))
		r.expr(n.Child(1))

	case syntax.For:
		closeScope := r.openScope(n, "for")
		if init := n.Child(0); init != nil && init.Kind == syntax.Declaration {
			r.declaration(init)
		} else {
			r.expr(init)
		}
		r.expr(n.Child(1))
		r.expr(n.Child(2))
		r.loop(n.Child(3))
		closeScope()

	case syntax.Switch:
		r.expr(n.Child(0))
		info := &switchInfo{}
		r.m.switches[n] = info
		r.switches = append(r.switches, info)
		r.stmt(n.Child(1))
		r.switches = r.switches[:len(r.switches)-1]

	case syntax.Case:
		if len(r.switches) == 0 {
			r.errorf(n, "case label not within a switch statement")
		} else if v, ok := r.constExpr(n.Child(0)); ok {
			info := r.switches[len(r.switches)-1]
			if info.lookup(v) != nil {
				r.errorf(n, "duplicate case value")
			} else {
				info.cases = append(info.cases, caseLabel{value: v, node: n})
			}
		}
		r.stmt(n.Child(1))

	case syntax.Default:
		if len(r.switches) == 0 {
			r.errorf(n, "'default' label not within a switch statement")
		} else if info := r.switches[len(r.switches)-1]; info.deflt != nil {
			r.errorf(n, "multiple default labels in one switch")
		} else {
			info.deflt = n
		}
		r.stmt(n.Child(0))

	case syntax.Break:
		if r.loops == 0 && len(r.switches) == 0 {
			r.errorf(n, "break statement not within loop or switch")
		}

	case syntax.Continue:
		if r.loops == 0 {
			r.errorf(n, "continue statement not within a loop")
		}

	case syntax.Return:
		x := n.Child(0)
		if x == nil {
			return
		}
		r.expr(x)
		if types.IsVoidType(r.fn.sig.Result()) {
			r.errorf(n, "'return' with a value, in function returning void")
		}

	case syntax.Empty:

	default:
		r.errorf(n, "unexpected %s", n.Kind)
	}
}

// ----------------------------------------------------------------------------
// Expressions

func (r *resolver) expr(n *syntax.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case syntax.Ident:
		e, ok := r.scope.Lookup(n.Value)
		if !ok {
			r.errorf(n, "'%s' undeclared", n.Value)
			return
		}
		if e.Kind == symtab.TypeName {
			r.errorf(n, "unexpected type name '%s'", n.Value)
			return
		}
		r.m.refs[n] = e

	case syntax.IntConst, syntax.FloatConst, syntax.CharConst:
		r.literal(n)

	case syntax.StringLit:
		r.m.strOrder = append(r.m.strOrder, n)

	case syntax.Cast:
		r.typeName(n.Child(0))
		r.expr(n.Child(1))

	case syntax.SizeofType:
		r.sizeof(n, r.typeName(n.Child(0)))

	case syntax.SizeofExpr:
		r.expr(n.Child(0))
		r.sizeof(n, r.exprType(n.Child(0)))

	case syntax.Assign, syntax.PreInc, syntax.PreDec, syntax.PostInc, syntax.PostDec:
		for _, c := range n.Children() {
			r.expr(c)
		}
		r.checkWritable(n, n.Child(0))

	case syntax.Conditional:
		for _, c := range n.Children() {
			r.expr(c)
		}
		if t := r.exprType(n); t != nil {
			r.m.typeOf[n] = t
		}

	default:
		for _, c := range n.Children() {
			r.expr(c)
		}
	}
}

func (r *resolver) checkWritable(op, x *syntax.Node) {
	if x.Kind != syntax.Ident {
		return
	}
	e := r.m.refs[x]
	switch {
	case e == nil:
	case e.Kind != symtab.Object:
		r.errorf(op, "lvalue required as left operand of assignment")
	case r.m.readonly[e]:
		r.errorf(op, "assignment of read-only variable '%s'", e.Name)
	}
}

func (r *resolver) literal(n *syntax.Node) (value.Value, bool) {
	if v, ok := r.m.consts[n]; ok {
		return v, true
	}
	var v value.Value
	var err error
	switch n.Kind {
	case syntax.IntConst:
		v, err = intLiteral(n.Value)
	case syntax.FloatConst:
		v, err = floatLiteral(n.Value)
	case syntax.CharConst:
		var c int64
		if len(n.Value) > 0 {
			c = int64(int8(n.Value[0]))
		}
		v = value.Int(types.Typ[types.Int], c)
	}
	if err != nil {
		r.errorf(n, "%v", err)
		return value.Value{}, false
	}
	r.m.consts[n] = v
	return v, true
}

func (r *resolver) sizeof(n *syntax.Node, t types.Type) {
	switch {
	case t == nil:
		return
	case types.IsFunc(t):
		r.errorf(n, "invalid application of 'sizeof' to a function type")
		return
	case types.IsVoidType(t):
		r.errorf(n, "invalid application of 'sizeof' to a void type")
		return
	}
	if err := r.m.sizes.Check(t); err != nil {
		r.errorf(n, "invalid application of 'sizeof' to incomplete type '%s'", t)
		return
	}
	r.m.consts[n] = value.Int(types.Typ[types.UInt], r.m.sizes.Sizeof(t))
}

// constExpr evaluates an integer constant expression.
func (r *resolver) constExpr(n *syntax.Node) (int64, bool) {
	v, ok := r.constValue(n)
	if !ok {
		return 0, false
	}
	if !types.IsIntegral(v.Type()) {
		r.errorf(n, "integer constant expression required")
		return 0, false
	}
	return v.Int64(), true
}

func (r *resolver) constValue(n *syntax.Node) (value.Value, bool) {
	switch n.Kind {
	case syntax.IntConst, syntax.FloatConst, syntax.CharConst:
		return r.literal(n)

	case syntax.Ident:
		if e, ok := r.scope.Lookup(n.Value); ok && e.Kind == symtab.Constant {
			r.m.refs[n] = e
			return value.Int(types.Typ[types.Int], e.Value), true
		}

	case syntax.Unary:
		x, ok := r.constValue(n.Child(0))
		if !ok {
			return x, false
		}
		op, _ := value.UnaryOp(n.Value)
		v, err := value.Unary(op, x)
		if err != nil {
			r.errorf(n, "%v", err)
			return v, false
		}
		return v, true

	case syntax.Binary:
		x, ok := r.constValue(n.Child(0))
		if !ok {
			return x, false
		}
		y, ok := r.constValue(n.Child(1))
		if !ok {
			return y, false
		}
		op, _ := value.BinaryOp(n.Value)
		v, err := value.Binary(op, x, y)
		if err != nil {
			if errors.Is(err, value.ErrDivideByZero) {
				r.errorf(n, "division by zero in constant expression")
			} else {
				r.errorf(n, "%v", err)
			}
			return v, false
		}
		return v, true

	case syntax.LogicalAnd, syntax.LogicalOr:
		x, ok := r.constValue(n.Child(0))
		if !ok {
			return x, false
		}
		if value.Truth(x) == (n.Kind == syntax.LogicalOr) {
			return value.Bool(value.Truth(x)), true
		}
		y, ok := r.constValue(n.Child(1))
		if !ok {
			return y, false
		}
		return value.Bool(value.Truth(y)), true

	case syntax.Conditional:
		c, ok := r.constValue(n.Child(0))
		if !ok {
			return c, false
		}
		if value.Truth(c) {
			return r.constValue(n.Child(1))
		}
		return r.constValue(n.Child(2))

	case syntax.Cast:
		t := r.typeName(n.Child(0))
		x, ok := r.constValue(n.Child(1))
		if !ok || t == nil {
			return x, false
		}
		v, err := value.Convert(x, t)
		if err != nil {
			r.errorf(n, "%v", err)
			return v, false
		}
		return v, true

	case syntax.SizeofType, syntax.SizeofExpr:
		r.expr(n)
		v, ok := r.m.consts[n]
		return v, ok
	}
	r.errorf(n, "expression is not an integer constant")
	return value.Value{}, false
}

// exprType returns the static type of an expression, or nil when it
// cannot be determined before running.
func (r *resolver) exprType(n *syntax.Node) types.Type {
	if n == nil {
		return nil
	}
	intType := types.Typ[types.Int]
	switch n.Kind {
	case syntax.Ident:
		e := r.m.refs[n]
		if e == nil {
			return nil
		}
		if e.Kind == symtab.Constant {
			return intType
		}
		return e.Type

	case syntax.IntConst, syntax.FloatConst, syntax.CharConst, syntax.SizeofExpr, syntax.SizeofType:
		if v, ok := r.m.consts[n]; ok {
			return v.Type()
		}

	case syntax.StringLit:
		return types.NewArray(int64(len(n.Value))+1, types.Typ[types.Char])

	case syntax.Binary:
		x, y := r.exprType(n.Child(0)), r.exprType(n.Child(1))
		if x == nil || y == nil {
			return nil
		}
		op, _ := value.BinaryOp(n.Value)
		switch {
		case op.IsComparison():
			return intType
		case op == value.OpShl || op == value.OpShr:
			return types.Promote(x)
		case isPointerLike(x) && isPointerLike(y):
			return intType
		case isPointerLike(x):
			return types.Decay(x)
		case isPointerLike(y):
			return types.Decay(y)
		case types.IsArithmetic(x) && types.IsArithmetic(y):
			return types.CommonType(x, y)
		}

	case syntax.LogicalAnd, syntax.LogicalOr:
		return intType

	case syntax.Unary:
		if n.Value == "!" {
			return intType
		}
		if x := r.exprType(n.Child(0)); x != nil && types.IsArithmetic(x) {
			return types.Promote(x)
		}

	case syntax.Assign, syntax.PreInc, syntax.PreDec, syntax.PostInc, syntax.PostDec:
		return r.exprType(n.Child(0))

	case syntax.Comma:
		return r.exprType(n.Child(1))

	case syntax.Deref:
		if x := r.exprType(n.Child(0)); x != nil {
			return types.Elem(x)
		}

	case syntax.AddrOf:
		if x := r.exprType(n.Child(0)); x != nil {
			return types.NewPointer(x)
		}

	case syntax.Index:
		x, y := r.exprType(n.Child(0)), r.exprType(n.Child(1))
		switch {
		case x != nil && isPointerLike(x):
			return types.Elem(x)
		case y != nil && isPointerLike(y):
			return types.Elem(y)
		}

	case syntax.Member:
		if st, ok := r.exprType(n.Child(0)).(*types.Struct); ok {
			return fieldType(st, n.Value)
		}

	case syntax.PtrMember:
		if x := r.exprType(n.Child(0)); x != nil {
			if st, ok := types.Elem(x).(*types.Struct); ok {
				return fieldType(st, n.Value)
			}
		}

	case syntax.Cast:
		return r.m.typeOf[n.Child(0)]

	case syntax.Call:
		if f := n.Child(0); f.Kind == syntax.Ident {
			if e := r.m.refs[f]; e != nil {
				if sig, ok := e.Type.(*types.Func); ok {
					return sig.Result()
				}
			}
		}

	case syntax.Conditional:
		x, y := r.exprType(n.Child(1)), r.exprType(n.Child(2))
		switch {
		case x != nil && y != nil && types.IsArithmetic(x) && types.IsArithmetic(y):
			return types.CommonType(x, y)
		case x != nil:
			return types.Decay(x)
		case y != nil:
			return types.Decay(y)
		}
	}
	return nil
}

func isPointerLike(t types.Type) bool {
	return types.IsPointer(t) || types.IsArray(t)
}

func fieldType(st *types.Struct, name string) types.Type {
	if i := st.FieldIndex(name); i >= 0 {
		return st.Field(i).Type()
	}
	return nil
}

func isCharType(t types.Type) bool {
	return types.IsIntegral(t) && types.ByteWidth(t) == 1
}

func isCharArray(t types.Type) bool {
	a, ok := t.(*types.Array)
	return ok && isCharType(a.Elem())
}
