package builtins

import (
	"log/slog"

	"github.com/derrell/LearnCS-sub002/internal/interp"
	"github.com/derrell/LearnCS-sub002/internal/rtabi"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

// RandMax is the largest value rand returns.
const RandMax = 32767

// lcg is the rand generator of the C standard's sample implementation,
// so a seeded program produces the same sequence on every run.
type lcg struct {
	state uint32
}

func (g *lcg) seed(s uint32) {
	if s == 0 {
		s = 1
	}
	g.state = s
}

func (g *lcg) next() int64 {
	g.state = g.state*1103515245 + 12345
	return int64(g.state/65536) % (RandMax + 1)
}

func (l *Libraries) stdlib() *interp.Library {
	lib := interp.NewLibrary(rtabi.HeaderStdlib)
	lib.Const("NULL", 0)
	lib.Const("RAND_MAX", RandMax)
	lib.Const("EXIT_SUCCESS", 0)
	lib.Const("EXIT_FAILURE", 1)
	lib.Add("malloc", malloc, "size").Sig(tVoidPtr, tUInt)
	lib.Add("calloc", calloc, "nmemb", "size").Sig(tVoidPtr, tUInt, tUInt)
	lib.Add("free", free, "ptr").Sig(tVoid, tVoidPtr)
	lib.Add("abs", abs, "j").Sig(tInt, tInt)
	lib.Add("atoi", atoi, "nptr").Sig(tInt, tCharPtr)
	lib.Add("rand", func(*interp.Call, []value.Value) (value.Value, error) {
		return intResult(l.rand.next()), nil
	}).Sig(tInt)
	lib.Add("srand", func(_ *interp.Call, args []value.Value) (value.Value, error) {
		l.rand.seed(uint32(args[0].Uint64()))
		return value.Void(), nil
	}, "seed").Sig(tVoid, tUInt)
	lib.Add("exit", exit, "status").Sig(tVoid, tInt)
	return lib
}

// allocate returns NULL when the heap is exhausted. A zero size
// allocates one byte so the result is distinct from NULL.
func allocate(c *interp.Call, size int) value.Value {
	if size == 0 {
		size = 1
	}
	addr, err := c.Malloc(size)
	if err != nil {
		c.Logger().Debug("allocation failed", slog.Int("size", size), slog.Any("err", err))
		return value.Addr(tVoidPtr, 0)
	}
	c.Logger().Debug("allocate", slog.Int("addr", addr), slog.Int("size", size))
	return value.Addr(tVoidPtr, addr)
}

func malloc(c *interp.Call, args []value.Value) (value.Value, error) {
	return allocate(c, int(args[0].Uint64())), nil
}

func calloc(c *interp.Call, args []value.Value) (value.Value, error) {
	n, size := args[0].Uint64(), args[1].Uint64()
	if size != 0 && n > rtabi.UIntMax/size {
		return value.Addr(tVoidPtr, 0), nil
	}
	p := allocate(c, int(n*size))
	if addr := p.Address(); addr != 0 {
		if err := c.Memory().Fill(addr, int(n*size), 0); err != nil {
			return value.Value{}, err
		}
	}
	return p, nil
}

func free(c *interp.Call, args []value.Value) (value.Value, error) {
	addr := args[0].Address()
	if addr == 0 {
		return value.Void(), nil
	}
	if err := c.Free(addr); err != nil {
		return value.Value{}, c.Errorf("invalid pointer 0x%04x", addr)
	}
	return value.Void(), nil
}

func abs(_ *interp.Call, args []value.Value) (value.Value, error) {
	n := args[0].Int64()
	if n < 0 {
		n = -n
	}
	return intResult(n), nil
}

// atoi converts the leading decimal number of a string, ignoring
// leading white space. It returns 0 when there is none.
func atoi(c *interp.Call, args []value.Value) (value.Value, error) {
	s, err := c.ReadString(args[0].Address())
	if err != nil {
		return value.Value{}, err
	}
	i := 0
	for i < len(s) && isSpace(int(s[i])) {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	var n int64
	for ; i < len(s) && isDigit(s[i]); i++ {
		n = n*10 + int64(s[i]-'0')
		if n > rtabi.UIntMax {
			break
		}
	}
	if neg {
		n = -n
	}
	return intResult(int64(int32(n))), nil
}

func exit(c *interp.Call, args []value.Value) (value.Value, error) {
	return value.Value{}, c.Exit(int(args[0].Int64()))
}
