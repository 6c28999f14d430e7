package interp

import (
	"github.com/derrell/LearnCS-sub002/internal/syntax"
	"github.com/derrell/LearnCS-sub002/internal/types"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

// initialize stores the value of init in the object of type t at addr.
// Members an initializer list leaves out are zero.
func (m *Machine) initialize(addr int, t types.Type, init *syntax.Node) error {
	switch {
	case init.Kind == syntax.InitList && !types.IsAggregate(t):
		switch init.NumChildren() {
		case 0:
			return m.errorf(init, "empty scalar initializer")
		case 1:
			return m.initialize(addr, t, init.Child(0))
		}
		return m.errorf(init.Child(1), "excess elements in scalar initializer")

	case init.Kind == syntax.InitList:
		if err := m.mem.Fill(addr, int(m.sizes.Sizeof(t)), 0); err != nil {
			return m.fail(init, err)
		}
		items := init.Children()
		i := 0
		if err := m.initList(addr, t, items, &i); err != nil {
			return err
		}
		if i < len(items) {
			what := "array"
			if st, ok := t.(*types.Struct); ok && st.IsUnion() {
				what = "union"
			} else if ok {
				what = "struct"
			}
			return m.errorf(items[i], "excess elements in %s initializer", what)
		}
		return nil

	case init.Kind == syntax.StringLit && isCharArray(t):
		return m.initString(addr, t.(*types.Array), init)

	case types.IsArray(t):
		return m.errorf(init, "array must be initialized with a brace-enclosed initializer")
	}

	v, err := m.eval(init)
	if err != nil {
		return err
	}
	_, err = m.store(addr, t, v, init)
	return err
}

// initList consumes items for the members of the aggregate t, eliding
// braces around nested aggregates.
func (m *Machine) initList(addr int, t types.Type, items []*syntax.Node, i *int) error {
	switch t := t.(type) {
	case *types.Array:
		size := int(m.sizes.Sizeof(t.Elem()))
		for k := 0; int64(k) < t.Len() && *i < len(items); k++ {
			if err := m.initMember(addr+k*size, t.Elem(), items, i); err != nil {
				return err
			}
		}
	case *types.Struct:
		for k := 0; k < t.NumFields() && *i < len(items); k++ {
			off := int(m.sizes.Offsetof(t, k))
			if err := m.initMember(addr+off, t.Field(k).Type(), items, i); err != nil {
				return err
			}
			if t.IsUnion() {
				break
			}
		}
	}
	return nil
}

func (m *Machine) initMember(addr int, t types.Type, items []*syntax.Node, i *int) error {
	item := items[*i]
	switch {
	case item.Kind == syntax.InitList || !types.IsAggregate(t):
	case item.Kind == syntax.StringLit && isCharArray(t):
	case types.IsStruct(t) && item.Kind != syntax.StringLit && identical(m.typeOf[item], t):
	default:
		return m.initList(addr, t, items, i)
	}
	*i++
	return m.initialize(addr, t, item)
}

func identical(x, y types.Type) bool {
	return x != nil && y != nil && types.Identical(x, y)
}

// initString copies a string literal into a char array. The terminating
// NUL is dropped when the array has room only for the characters.
func (m *Machine) initString(addr int, a *types.Array, s *syntax.Node) error {
	if int64(len(s.Value)) > a.Len() {
		return m.errorf(s, "initializer-string for array of chars is too long")
	}
	if err := m.mem.Fill(addr, int(a.Len()), 0); err != nil {
		return m.fail(s, err)
	}
	for i := 0; i < len(s.Value); i++ {
		c := value.Int(a.Elem(), int64(int8(s.Value[i])))
		if err := m.mem.Write(addr+i, a.Elem(), c); err != nil {
			return m.fail(s, err)
		}
	}
	return nil
}
