package interp

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/derrell/LearnCS-sub002/internal/memory"
	"github.com/derrell/LearnCS-sub002/internal/rtabi"
	"github.com/derrell/LearnCS-sub002/internal/symtab"
	"github.com/derrell/LearnCS-sub002/internal/syntax"
	"github.com/derrell/LearnCS-sub002/internal/types"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

// lvalue designates an object in memory.
type lvalue struct {
	addr int
	typ  types.Type
}

// eval evaluates an expression. Arrays evaluate to a pointer to their
// first element and structs to their address.
func (m *Machine) eval(n *syntax.Node) (value.Value, error) {
	switch n.Kind {
	case syntax.Ident:
		e := m.refs[n]
		switch e.Kind {
		case symtab.Constant:
			return value.Int(types.Typ[types.Int], e.Value), nil
		case symtab.Object:
			lv, err := m.object(n, e)
			if err != nil {
				return value.Value{}, err
			}
			return m.load(lv, n)
		}
		return value.Value{}, m.errorf(n, "function '%s' used as a value; function pointers are not supported", n.Value)

	case syntax.IntConst, syntax.FloatConst, syntax.CharConst, syntax.SizeofExpr, syntax.SizeofType:
		return m.consts[n], nil

	case syntax.StringLit:
		return value.Addr(types.NewPointer(types.Typ[types.Char]), m.strs[n]), nil

	case syntax.Binary:
		x, err := m.eval(n.Child(0))
		if err != nil {
			return x, err
		}
		y, err := m.eval(n.Child(1))
		if err != nil {
			return y, err
		}
		op, _ := value.BinaryOp(n.Value)
		return m.binary(n, op, x, y)

	case syntax.LogicalAnd, syntax.LogicalOr:
		x, err := m.cond(n.Child(0))
		if err != nil {
			return value.Value{}, err
		}
		if x == (n.Kind == syntax.LogicalOr) {
			return value.Bool(x), nil
		}
		y, err := m.cond(n.Child(1))
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(y), nil

	case syntax.Unary:
		x, err := m.eval(n.Child(0))
		if err != nil {
			return x, err
		}
		op, _ := value.UnaryOp(n.Value)
		v, err := value.Unary(op, x)
		if err != nil {
			return v, m.errorf(n, "wrong type argument to unary %s (have '%s')", n.Value, typeString(x))
		}
		return v, nil

	case syntax.Deref, syntax.Index, syntax.Member, syntax.PtrMember:
		lv, err := m.lvalue(n)
		if err != nil {
			return value.Value{}, err
		}
		return m.load(lv, n)

	case syntax.AddrOf:
		x := n.Child(0)
		if x.Kind == syntax.Ident {
			if e := m.refs[x]; e.Kind == symtab.Function || e.Kind == symtab.Native {
				return value.Value{}, m.errorf(n, "cannot take the address of function '%s'; function pointers are not supported", x.Value)
			}
		}
		lv, err := m.lvalue(x)
		if err != nil {
			return value.Value{}, err
		}
		return value.Addr(types.NewPointer(lv.typ), lv.addr), nil

	case syntax.Assign:
		return m.assign(n)

	case syntax.PreInc, syntax.PreDec, syntax.PostInc, syntax.PostDec:
		return m.incDec(n)

	case syntax.Cast:
		t := m.typeOf[n.Child(0)]
		x, err := m.eval(n.Child(1))
		if err != nil {
			return x, err
		}
		if types.IsVoidType(t) {
			return value.Void(), nil
		}
		v, err := value.Convert(x, t)
		if err != nil {
			return v, m.errorf(n, "cannot convert '%s' to '%s'", typeString(x), t)
		}
		return v, nil

	case syntax.Call:
		return m.call(n)

	case syntax.Conditional:
		c, err := m.cond(n.Child(0))
		if err != nil {
			return value.Value{}, err
		}
		branch := n.Child(2)
		if c {
			branch = n.Child(1)
		}
		v, err := m.eval(branch)
		if err != nil {
			return v, err
		}
		if t := m.typeOf[n]; t != nil && types.IsArithmetic(t) && types.IsArithmetic(v.Type()) {
			v, _ = value.Convert(v, t)
		}
		return v, nil

	case syntax.Comma:
		if _, err := m.eval(n.Child(0)); err != nil {
			return value.Value{}, err
		}
		return m.eval(n.Child(1))
	}
	return value.Value{}, m.errorf(n, "cannot evaluate %s", n.Kind)
}

func (m *Machine) binary(n *syntax.Node, op value.Op, x, y value.Value) (value.Value, error) {
	if types.IsStruct(x.Type()) || types.IsStruct(y.Type()) {
		return value.Value{}, m.errorf(n, "invalid operands to binary %s (have '%s' and '%s')", op, typeString(x), typeString(y))
	}
	v, err := value.Binary(op, x, y)
	if err == nil {
		return v, nil
	}
	if errors.Is(err, value.ErrDivideByZero) {
		return v, newError(Run, n, err, "division by zero")
	}
	return v, m.errorf(n, "invalid operands to binary %s (have '%s' and '%s')", op, typeString(x), typeString(y))
}

// object returns the storage of a variable in the active frame.
func (m *Machine) object(n *syntax.Node, e *symtab.Entry) (lvalue, error) {
	if e.IsStatic() {
		return lvalue{e.Addr, e.Type}, nil
	}
	f := m.top()
	if f == nil {
		return lvalue{}, m.errorf(n, "initializer element is not constant")
	}
	return lvalue{e.Address(f.Base), e.Type}, nil
}

func (m *Machine) lvalue(n *syntax.Node) (lvalue, error) {
	switch n.Kind {
	case syntax.Ident:
		e := m.refs[n]
		if e.Kind != symtab.Object {
			return lvalue{}, m.errorf(n, "lvalue required; '%s' is not a variable", n.Value)
		}
		return m.object(n, e)

	case syntax.Deref:
		p, err := m.eval(n.Child(0))
		if err != nil {
			return lvalue{}, err
		}
		return m.deref(n, p)

	case syntax.Index:
		x, err := m.eval(n.Child(0))
		if err != nil {
			return lvalue{}, err
		}
		y, err := m.eval(n.Child(1))
		if err != nil {
			return lvalue{}, err
		}
		if !types.IsPointer(x.Type()) && !types.IsPointer(y.Type()) {
			return lvalue{}, m.errorf(n, "subscripted value is neither array nor pointer")
		}
		p, err := m.binary(n, value.OpAdd, x, y)
		if err != nil {
			return lvalue{}, err
		}
		return m.deref(n, p)

	case syntax.Member:
		x, err := m.eval(n.Child(0))
		if err != nil {
			return lvalue{}, err
		}
		if x.Kind() != value.AddrKind {
			return lvalue{}, m.errorf(n, "request for member '%s' in something not a structure or union", n.Value)
		}
		return m.member(n, x.Type(), x.Address())

	case syntax.PtrMember:
		p, err := m.eval(n.Child(0))
		if err != nil {
			return lvalue{}, err
		}
		lv, err := m.deref(n, p)
		if err != nil {
			return lvalue{}, err
		}
		return m.member(n, lv.typ, lv.addr)

	case syntax.StringLit:
		return lvalue{m.strs[n], types.NewArray(int64(len(n.Value))+1, types.Typ[types.Char])}, nil
	}
	return lvalue{}, m.errorf(n, "lvalue required")
}

func (m *Machine) deref(n *syntax.Node, p value.Value) (lvalue, error) {
	pt, ok := p.Type().(*types.Pointer)
	if !ok || p.Kind() != value.AddrKind {
		return lvalue{}, m.errorf(n, "invalid type argument of unary '*' (have '%s')", typeString(p))
	}
	elem := pt.Elem()
	switch {
	case types.IsVoidType(elem):
		return lvalue{}, m.errorf(n, "dereferencing 'void *' pointer")
	case types.IsFunc(elem):
		return lvalue{}, m.errorf(n, "function pointers are not supported")
	case p.Address() < rtabi.NullGuard:
		return lvalue{}, newError(Run, n, memory.ErrNull, "null pointer dereference")
	}
	return lvalue{p.Address(), elem}, nil
}

func (m *Machine) member(n *syntax.Node, t types.Type, base int) (lvalue, error) {
	st, ok := t.(*types.Struct)
	if !ok {
		return lvalue{}, m.errorf(n, "request for member '%s' in something not a structure or union", n.Value)
	}
	if !st.Complete() {
		return lvalue{}, m.errorf(n, "dereferencing pointer to incomplete type '%s'", st)
	}
	i := st.FieldIndex(n.Value)
	if i < 0 {
		return lvalue{}, m.errorf(n, "'%s' has no member named '%s'", st, n.Value)
	}
	return lvalue{base + int(m.sizes.Offsetof(st, i)), st.Field(i).Type()}, nil
}

// load reads the value of an object.
func (m *Machine) load(lv lvalue, n *syntax.Node) (value.Value, error) {
	switch t := lv.typ.(type) {
	case *types.Array:
		return value.Addr(types.NewPointer(t.Elem()), lv.addr), nil
	case *types.Struct:
		if !t.Complete() {
			return value.Value{}, m.errorf(n, "use of incomplete type '%s'", t)
		}
		return value.Addr(t, lv.addr), nil
	}
	v, err := m.mem.Read(lv.addr, lv.typ)
	if err != nil {
		return v, m.fail(n, err)
	}
	return v, nil
}

// store assigns v to the object at addr and returns the stored value.
func (m *Machine) store(addr int, t types.Type, v value.Value, n *syntax.Node) (value.Value, error) {
	if !v.IsValid() {
		return v, m.errorf(n, "void value not ignored as it ought to be")
	}
	switch tt := t.(type) {
	case *types.Array:
		return v, m.errorf(n, "assignment to expression with array type")
	case *types.Struct:
		if v.Kind() != value.AddrKind || !types.Identical(v.Type(), t) {
			return v, m.errorf(n, "incompatible types when assigning to type '%s' from type '%s'", t, typeString(v))
		}
		if err := m.mem.Copy(addr, v.Address(), int(m.sizes.Sizeof(tt))); err != nil {
			return v, m.fail(n, err)
		}
		return value.Addr(t, addr), nil
	}
	cv, err := value.Convert(v, t)
	if err != nil {
		return v, m.errorf(n, "incompatible types when assigning to type '%s' from type '%s'", t, typeString(v))
	}
	if err := m.mem.Write(addr, t, cv); err != nil {
		return cv, m.fail(n, err)
	}
	return cv, nil
}

// assign evaluates the target lvalue, and for a compound assignment its
// current value, before the right operand.
func (m *Machine) assign(n *syntax.Node) (value.Value, error) {
	lv, err := m.lvalue(n.Child(0))
	if err != nil {
		return value.Value{}, err
	}
	var cur value.Value
	if n.Value != "=" {
		if cur, err = m.load(lv, n.Child(0)); err != nil {
			return cur, err
		}
	}
	rhs, err := m.eval(n.Child(1))
	if err != nil {
		return rhs, err
	}
	if n.Value != "=" {
		op, _ := value.BinaryOp(strings.TrimSuffix(n.Value, "="))
		if rhs, err = m.binary(n, op, cur, rhs); err != nil {
			return rhs, err
		}
	}
	return m.store(lv.addr, lv.typ, rhs, n)
}

func (m *Machine) incDec(n *syntax.Node) (value.Value, error) {
	lv, err := m.lvalue(n.Child(0))
	if err != nil {
		return value.Value{}, err
	}
	cur, err := m.load(lv, n.Child(0))
	if err != nil {
		return cur, err
	}
	op := value.OpAdd
	if n.Kind == syntax.PreDec || n.Kind == syntax.PostDec {
		op = value.OpSub
	}
	next, err := value.Binary(op, cur, value.Int(types.Typ[types.Int], 1))
	if err != nil {
		return next, m.errorf(n, "wrong type argument to increment or decrement (have '%s')", typeString(cur))
	}
	stored, err := m.store(lv.addr, lv.typ, next, n)
	if err != nil {
		return stored, err
	}
	if n.Kind == syntax.PreInc || n.Kind == syntax.PreDec {
		return stored, nil
	}
	return cur, nil
}

// call evaluates the arguments left to right, converts them to the
// parameter types and calls a program function or a builtin.
func (m *Machine) call(n *syntax.Node) (value.Value, error) {
	callee := n.Child(0)
	var e *symtab.Entry
	if callee.Kind == syntax.Ident {
		e = m.refs[callee]
	}
	if e == nil || (e.Kind != symtab.Function && e.Kind != symtab.Native) {
		return value.Value{}, m.errorf(n, "called object is not a function")
	}
	if m.loading {
		return value.Value{}, m.errorf(n, "initializer element is not constant")
	}
	name := e.Name
	sig := e.Type.(*types.Func)
	argNodes := n.Child(1).Children()
	switch {
	case len(argNodes) < sig.NumParams():
		return value.Value{}, m.errorf(n, "too few arguments to function '%s'", name)
	case len(argNodes) > sig.NumParams() && !sig.Variadic():
		return value.Value{}, m.errorf(n, "too many arguments to function '%s'", name)
	}

	args := make([]value.Value, len(argNodes))
	for i, a := range argNodes {
		v, err := m.eval(a)
		if err != nil {
			return v, err
		}
		if !v.IsValid() {
			return v, m.errorf(a, "invalid use of void expression")
		}
		if i >= sig.NumParams() {
			args[i] = promoteArg(v)
			continue
		}
		pt := sig.Param(i).Type()
		if types.IsAggregate(pt) {
			if !types.Identical(v.Type(), pt) {
				return v, m.errorf(a, "incompatible type for argument %d of '%s'", i+1, name)
			}
			args[i] = v
			continue
		}
		cv, err := value.Convert(v, pt)
		if err != nil {
			return v, m.errorf(a, "incompatible type for argument %d of '%s'", i+1, name)
		}
		args[i] = cv
	}

	if e.Kind == symtab.Native {
		b := e.Native.(*Builtin)
		m.log.Debug("native call", slog.String("function", name), slog.Int("args", len(args)))
		v, err := b.Fn(&Call{m: m, node: n, fn: b}, args)
		if err != nil {
			return value.Value{}, m.fail(n, err)
		}
		if types.IsVoidType(b.Result) {
			return value.Void(), nil
		}
		if v.IsValid() && !types.Identical(v.Type(), b.Result) {
			if cv, err := value.Convert(v, b.Result); err == nil {
				v = cv
			}
		}
		return v, nil
	}

	fn := m.funcs[e]
	if fn == nil {
		return value.Value{}, m.errorf(n, "undefined reference to '%s'", name)
	}
	return m.invoke(fn, args, n)
}

// promoteArg applies the default argument promotions to an argument
// matching the ... of a variadic function.
func promoteArg(v value.Value) value.Value {
	t := v.Type()
	var to types.Type
	switch {
	case types.IsFloating(t) && types.ByteWidth(t) < rtabi.SizeDouble:
		to = types.Typ[types.Double]
	case types.IsIntegral(t):
		to = types.Promote(t)
	case types.IsArray(t):
		to = types.Decay(t)
	default:
		return v
	}
	if cv, err := value.Convert(v, to); err == nil {
		return cv
	}
	return v
}
