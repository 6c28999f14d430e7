package interp

import (
	"log/slog"

	"github.com/derrell/LearnCS-sub002/internal/memory"
	"github.com/derrell/LearnCS-sub002/internal/rtabi"
	"github.com/derrell/LearnCS-sub002/internal/syntax"
	"github.com/derrell/LearnCS-sub002/internal/types"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

// control is how a statement completed.
type control int

const (
	fallThrough control = iota
	breakOut
	continueLoop
	returnOut
)

// exec runs one statement. Temporaries the statement pushed on the stack
// are popped when it completes.
func (m *Machine) exec(n *syntax.Node) (control, error) {
	if n == nil {
		return fallThrough, nil
	}
	switch n.Kind {
	case syntax.Compound, syntax.Case, syntax.Default:
	default:
		if err := m.checkpoint(n); err != nil {
			return fallThrough, err
		}
	}
	mark := m.mem.StackTop()
	ctl, err := m.execStmt(n)
	if err == nil && m.mem.StackTop() > mark {
		err = m.mem.Release(memory.Stack, mark)
	}
	return ctl, err
}

func (m *Machine) execStmt(n *syntax.Node) (control, error) {
	switch n.Kind {
	case syntax.Compound:
		return m.execList(n.Children())

	case syntax.Declaration:
		return fallThrough, m.declare(n)

	case syntax.ExprStmt:
		_, err := m.eval(n.Child(0))
		return fallThrough, err

	case syntax.Empty:
		return fallThrough, nil

	case syntax.If:
		c, err := m.cond(n.Child(0))
		if err != nil {
			return fallThrough, err
		}
		if c {
			return m.exec(n.Child(1))
		}
		return m.exec(n.Child(2))

	case syntax.While:
		for {
			m.line = n.Line()
			c, err := m.cond(n.Child(0))
			if err != nil || !c {
				return fallThrough, err
			}
			ctl, err := m.exec(n.Child(1))
			if done, ctl := loopExit(ctl, err); done {
				return ctl, err
			}
		}

	case syntax.DoWhile:
		for {
			ctl, err := m.exec(n.Child(0))
			if done, ctl := loopExit(ctl, err); done {
				return ctl, err
			}
			m.line = n.Child(1).Line()
			c, err := m.cond(n.Child(1))
			if err != nil || !c {
				return fallThrough, err
			}
		}

	case syntax.For:
		if init := n.Child(0); init != nil {
			var err error
			if init.Kind == syntax.Declaration {
				err = m.declare(init)
			} else {
				_, err = m.eval(init)
			}
			if err != nil {
				return fallThrough, err
			}
		}
		for {
			m.line = n.Line()
			if cond := n.Child(1); cond != nil {
				c, err := m.cond(cond)
				if err != nil || !c {
					return fallThrough, err
				}
			}
			ctl, err := m.exec(n.Child(3))
			if done, ctl := loopExit(ctl, err); done {
				return ctl, err
			}
			if post := n.Child(2); post != nil {
				if _, err := m.eval(post); err != nil {
					return fallThrough, err
				}
			}
		}

	case syntax.Switch:
		return m.execSwitch(n)

	case syntax.Case:
		return m.exec(n.Child(1))

	case syntax.Default:
		return m.exec(n.Child(0))

	case syntax.Break:
		return breakOut, nil

	case syntax.Continue:
		return continueLoop, nil

	case syntax.Return:
		return returnOut, m.execReturn(n)
	}
	return fallThrough, m.errorf(n, "cannot execute %s", n.Kind)
}

// loopExit reports whether a loop body's completion ends the loop, and
// how the loop itself completes then.
func loopExit(ctl control, err error) (bool, control) {
	switch {
	case err != nil:
		return true, fallThrough
	case ctl == breakOut:
		return true, fallThrough
	case ctl == returnOut:
		return true, returnOut
	}
	return false, fallThrough
}

func (m *Machine) execList(list []*syntax.Node) (control, error) {
	for _, c := range list {
		ctl, err := m.exec(c)
		if err != nil || ctl != fallThrough {
			return ctl, err
		}
	}
	return fallThrough, nil
}

func (m *Machine) cond(x *syntax.Node) (bool, error) {
	v, err := m.eval(x)
	if err != nil {
		return false, err
	}
	if !value.IsScalar(v) || types.IsStruct(v.Type()) {
		return false, m.errorf(x, "used %s where a scalar is required", typeString(v))
	}
	return value.Truth(v), nil
}

func (m *Machine) execSwitch(n *syntax.Node) (control, error) {
	v, err := m.eval(n.Child(0))
	if err != nil {
		return fallThrough, err
	}
	if !types.IsIntegral(v.Type()) {
		return fallThrough, m.errorf(n.Child(0), "switch quantity not an integer")
	}
	t := types.Promote(v.Type())
	v, _ = value.Convert(v, t)

	info := m.switches[n]
	var target *syntax.Node
	for _, c := range info.cases {
		if value.Int(t, c.value).Int64() == v.Int64() {
			target = c.node
			break
		}
	}
	if target == nil {
		target = info.deflt
	}
	if target == nil {
		return fallThrough, nil
	}
	ctl, err := m.execFrom(n.Child(1), target)
	if ctl == breakOut {
		ctl = fallThrough
	}
	return ctl, err
}

// execFrom runs n starting at the label target, which n contains.
func (m *Machine) execFrom(n, target *syntax.Node) (control, error) {
	if n == target {
		return m.exec(n)
	}
	switch n.Kind {
	case syntax.Compound:
		kids := n.Children()
		for i, c := range kids {
			if c == nil || !contains(c, target) {
				continue
			}
			ctl, err := m.execFrom(c, target)
			if err != nil || ctl != fallThrough {
				return ctl, err
			}
			return m.execList(kids[i+1:])
		}
	case syntax.Case:
		return m.execFrom(n.Child(1), target)
	case syntax.Default:
		return m.execFrom(n.Child(0), target)
	}
	return fallThrough, m.errorf(target, "case label inside a nested statement is not supported")
}

func contains(n, target *syntax.Node) bool {
	for p := target; p != nil; p = p.Parent() {
		if p == n {
			return true
		}
	}
	return false
}

// declare runs the initializers of a block-scope declaration.
func (m *Machine) declare(n *syntax.Node) error {
	f := m.top()
	for _, id := range n.Children()[1:] {
		e := m.refs[id]
		init := id.Child(1)
		if e == nil || init == nil || e.IsStatic() {
			continue
		}
		if err := m.initialize(e.Address(f.Base), e.Type, init); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) execReturn(n *syntax.Node) error {
	f := m.top()
	x := n.Child(0)
	if x == nil {
		return nil
	}
	v, err := m.eval(x)
	if err != nil {
		return err
	}
	res := f.fn.sig.Result()
	if st, ok := res.(*types.Struct); ok {
		if v.Kind() != value.AddrKind || !types.Identical(v.Type(), st) {
			return m.errorf(x, "incompatible types when returning type '%s' but '%s' was expected", typeString(v), res)
		}
		if err := m.mem.Copy(f.retSlot, v.Address(), int(m.sizes.Sizeof(st))); err != nil {
			return m.fail(x, err)
		}
		f.ret = value.Addr(st, f.retSlot)
		return nil
	}
	cv, err := value.Convert(v, res)
	if err != nil {
		return m.errorf(x, "incompatible types when returning type '%s' but '%s' was expected", typeString(v), res)
	}
	f.ret = cv
	return nil
}

// maxCallDepth bounds recursion however large the stack region is.
const maxCallDepth = 1 << 14

// invoke calls a program function with converted arguments. A struct
// result is copied to storage the caller reserves below the frame.
func (m *Machine) invoke(fn *function, args []value.Value, call *syntax.Node) (value.Value, error) {
	at := call
	if at == nil {
		at = fn.node
	}
	name := fn.entry.Name
	res := fn.sig.Result()

	retSlot := 0
	if st, ok := res.(*types.Struct); ok {
		addr, err := m.mem.Allocate(memory.Stack, int(m.sizes.Sizeof(st)), int(m.sizes.Alignof(st)))
		if err != nil {
			return value.Value{}, newError(Run, at, err, "stack overflow in call to '"+name+"'")
		}
		retSlot = addr
	}
	if len(m.frames) >= maxCallDepth {
		return value.Value{}, newError(Run, at, nil, "stack overflow in call to '"+name+"'")
	}
	mark := m.mem.StackTop()
	base, err := m.mem.Allocate(memory.Stack, int(fn.layout.Size), int(fn.layout.Align))
	if err == nil {
		// Every frame holds a return-address word after its locals, so
		// even a frame without locals reaches the stack limit.
		_, err = m.mem.Allocate(memory.Stack, rtabi.SizePtr, rtabi.AlignPtr)
	}
	if err != nil {
		return value.Value{}, newError(Run, at, err, "stack overflow in call to '"+name+"'")
	}

	f := &Frame{Func: fn.entry, Scope: fn.scope, Base: base, Call: call, fn: fn, retSlot: retSlot}
	for i, p := range fn.params {
		if _, err := m.store(p.Address(base), p.Type, args[i], at); err != nil {
			return value.Value{}, err
		}
	}
	m.frames = append(m.frames, f)
	m.log.Debug("push frame",
		slog.String("function", name),
		slog.Int("base", base),
		slog.Int("size", int(fn.layout.Size)),
		slog.Int("depth", len(m.frames)))

	_, err = m.exec(fn.node.Child(2))

	m.frames = m.frames[:len(m.frames)-1]
	m.log.Debug("pop frame", slog.String("function", name), slog.Int("depth", len(m.frames)))
	if err != nil {
		return value.Value{}, err
	}
	if err := m.mem.Release(memory.Stack, mark); err != nil {
		return value.Value{}, m.fail(at, err)
	}
	if caller := m.top(); caller != nil {
		m.line = caller.line
	}

	switch {
	case types.IsVoidType(res):
		return value.Void(), nil
	case !f.ret.IsValid():
		if types.IsStruct(res) {
			return value.Addr(res, retSlot), nil
		}
		return value.Zero(res), nil
	}
	return f.ret, nil
}

func typeString(v value.Value) string {
	if v.Type() == nil {
		return "void"
	}
	return v.Type().String()
}
