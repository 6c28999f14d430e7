package builtins

import (
	"io"
	"strconv"

	"github.com/derrell/LearnCS-sub002/internal/interp"
	"github.com/derrell/LearnCS-sub002/internal/rtabi"
	"github.com/derrell/LearnCS-sub002/internal/types"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

func stdio() *interp.Library {
	lib := interp.NewLibrary(rtabi.HeaderStdio)
	lib.Const("EOF", rtabi.EOF)
	lib.Const("NULL", 0)
	lib.Add("printf", printf, "format").Sig(tInt, tCharPtr).Var()
	lib.Add("sprintf", sprintfC, "str", "format").Sig(tInt, tCharPtr, tCharPtr).Var()
	lib.Add("putchar", putchar, "c").Sig(tInt, tInt)
	lib.Add("puts", puts, "s").Sig(tInt, tCharPtr)
	lib.Add("getchar", getchar).Sig(tInt)
	lib.Add("scanf", scanf, "format").Sig(tInt, tCharPtr).Var()
	return lib
}

func write(c *interp.Call, s string) (value.Value, error) {
	if _, err := io.WriteString(c.Stdout(), s); err != nil {
		return value.Value{}, c.Errorf("%v", err)
	}
	return intResult(int64(len(s))), nil
}

func printf(c *interp.Call, args []value.Value) (value.Value, error) {
	format, err := c.ReadString(args[0].Address())
	if err != nil {
		return value.Value{}, err
	}
	s, err := sprintf(c, format, args[1:])
	if err != nil {
		return value.Value{}, err
	}
	return write(c, s)
}

func sprintfC(c *interp.Call, args []value.Value) (value.Value, error) {
	format, err := c.ReadString(args[1].Address())
	if err != nil {
		return value.Value{}, err
	}
	s, err := sprintf(c, format, args[2:])
	if err != nil {
		return value.Value{}, err
	}
	if err := c.WriteString(args[0].Address(), s); err != nil {
		return value.Value{}, err
	}
	return intResult(int64(len(s))), nil
}

func putchar(c *interp.Call, args []value.Value) (value.Value, error) {
	ch := byte(args[0].Int64())
	if _, err := write(c, string([]byte{ch})); err != nil {
		return value.Value{}, err
	}
	return intResult(int64(ch)), nil
}

func puts(c *interp.Call, args []value.Value) (value.Value, error) {
	s, err := c.ReadString(args[0].Address())
	if err != nil {
		return value.Value{}, err
	}
	return write(c, s+"\n")
}

func getchar(c *interp.Call, _ []value.Value) (value.Value, error) {
	b, err := c.Getc()
	if err != nil {
		return value.Value{}, err
	}
	return intResult(int64(b)), nil
}

// scanf supports the d, i, u, f, e, g, c and s conversions. The type
// stored is the pointee type of the matching argument, so length
// modifiers are accepted and ignored.
func scanf(c *interp.Call, args []value.Value) (value.Value, error) {
	format, err := c.ReadString(args[0].Address())
	if err != nil {
		return value.Value{}, err
	}
	in := reader{c}
	ptrs := args[1:]
	assigned := 0
	result := func() (value.Value, error) { return intResult(int64(assigned)), nil }

	for i := 0; i < len(format); i++ {
		ch := format[i]
		if isSpace(int(ch)) {
			if _, err := in.skipSpace(); err != nil {
				return value.Value{}, err
			}
			continue
		}
		if ch != '%' || (i+1 < len(format) && format[i+1] == '%') {
			if ch == '%' {
				i++
			}
			b, err := in.peek()
			if err != nil {
				return value.Value{}, err
			}
			if b != int(ch) {
				return result()
			}
			if _, err := in.next(); err != nil {
				return value.Value{}, err
			}
			continue
		}

		i++
		suppress := i < len(format) && format[i] == '*'
		if suppress {
			i++
		}
		width := 0
		for i < len(format) && isDigit(format[i]) {
			width = width*10 + int(format[i]-'0')
			i++
		}
		for i < len(format) && (format[i] == 'l' || format[i] == 'h' || format[i] == 'L') {
			i++
		}
		if i == len(format) {
			return value.Value{}, c.Errorf("incomplete conversion at end of format")
		}
		verb := format[i]

		if verb != 'c' {
			more, err := in.skipSpace()
			if err != nil {
				return value.Value{}, err
			}
			if !more {
				if assigned == 0 {
					return intResult(rtabi.EOF), nil
				}
				return result()
			}
		}

		limit := width
		if limit == 0 {
			limit = -1
		}
		var tok string
		switch verb {
		case 'd', 'i', 'u':
			tok, err = in.scan(limit, integer)
		case 'f', 'e', 'g', 'E', 'G':
			tok, err = in.scan(limit, floating)
		case 's':
			tok, err = in.scan(limit, func(_ string, b byte) bool { return !isSpace(int(b)) })
		case 'c':
			if width == 0 {
				width = 1
			}
			tok, err = in.scan(width, func(string, byte) bool { return true })
		default:
			return value.Value{}, c.Errorf("unknown conversion '%%%c'", verb)
		}
		if err != nil {
			return value.Value{}, err
		}
		if tok == "" || tok == "+" || tok == "-" {
			if assigned == 0 && verb == 'c' {
				return intResult(rtabi.EOF), nil
			}
			return result()
		}
		if suppress {
			continue
		}
		if len(ptrs) == 0 {
			return value.Value{}, c.Errorf("too few arguments for format %q", format)
		}
		p := ptrs[0]
		ptrs = ptrs[1:]
		if err := store(c, p, verb, tok); err != nil {
			return value.Value{}, err
		}
		assigned++
	}
	return result()
}

// store converts tok for conversion verb and writes it through p.
func store(c *interp.Call, p value.Value, verb byte, tok string) error {
	if !types.IsPointer(p.Type()) {
		return c.Errorf("argument for '%%%c' is not a pointer", verb)
	}
	elem := types.Elem(p.Type())
	addr := p.Address()
	switch verb {
	case 's', 'c':
		if verb == 'c' {
			for i := 0; i < len(tok); i++ {
				if err := c.Store(addr+i, tChar, value.Int(tChar, int64(int8(tok[i])))); err != nil {
					return err
				}
			}
			return nil
		}
		return c.WriteString(addr, tok)
	case 'f', 'e', 'g', 'E', 'G':
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil && f == 0 {
			return c.Errorf("invalid number %q", tok)
		}
		v, err := value.Convert(value.Float(tDouble, f), elem)
		if err != nil {
			return c.Errorf("argument for '%%%c' has type %s", verb, p.Type())
		}
		return c.Store(addr, elem, v)
	}
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		u, uerr := strconv.ParseUint(tok, 10, 64)
		if uerr != nil {
			return c.Errorf("invalid number %q", tok)
		}
		n = int64(u)
	}
	v, err := value.Convert(value.Int(types.Typ[types.LongLong], n), elem)
	if err != nil {
		return c.Errorf("argument for '%%%c' has type %s", verb, p.Type())
	}
	return c.Store(addr, elem, v)
}
