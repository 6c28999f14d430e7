package builtins

import (
	"strings"

	"github.com/derrell/LearnCS-sub002/internal/interp"
	"github.com/derrell/LearnCS-sub002/internal/rtabi"
	"github.com/derrell/LearnCS-sub002/internal/types"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

func str() *interp.Library {
	lib := interp.NewLibrary(rtabi.HeaderString)
	lib.Const("NULL", 0)
	lib.Add("strlen", strlen, "s").Sig(tUInt, tCharPtr)
	lib.Add("strcpy", strcpy, "dest", "src").Sig(tCharPtr, tCharPtr, tCharPtr)
	lib.Add("strncpy", strncpy, "dest", "src", "n").Sig(tCharPtr, tCharPtr, tCharPtr, tUInt)
	lib.Add("strcmp", strcmp, "s1", "s2").Sig(tInt, tCharPtr, tCharPtr)
	lib.Add("strcat", strcat, "dest", "src").Sig(tCharPtr, tCharPtr, tCharPtr)
	lib.Add("memset", memset, "s", "c", "n").Sig(tVoidPtr, tVoidPtr, tInt, tUInt)
	return lib
}

func strlen(c *interp.Call, args []value.Value) (value.Value, error) {
	s, err := c.ReadString(args[0].Address())
	if err != nil {
		return value.Value{}, err
	}
	return value.Int(tUInt, int64(len(s))), nil
}

func strcpy(c *interp.Call, args []value.Value) (value.Value, error) {
	s, err := c.ReadString(args[1].Address())
	if err != nil {
		return value.Value{}, err
	}
	if err := c.WriteString(args[0].Address(), s); err != nil {
		return value.Value{}, err
	}
	return args[0], nil
}

// strncpy copies at most n bytes and pads a short source with NULs. The
// result is not terminated when the source is n bytes or longer.
func strncpy(c *interp.Call, args []value.Value) (value.Value, error) {
	s, err := c.ReadString(args[1].Address())
	if err != nil {
		return value.Value{}, err
	}
	dst, n := args[0].Address(), int(args[2].Uint64())
	for i := 0; i < n; i++ {
		var ch int64
		if i < len(s) {
			ch = int64(int8(s[i]))
		}
		if err := c.Store(dst+i, tChar, value.Int(tChar, ch)); err != nil {
			return value.Value{}, err
		}
	}
	return args[0], nil
}

func strcmp(c *interp.Call, args []value.Value) (value.Value, error) {
	a, err := c.ReadString(args[0].Address())
	if err != nil {
		return value.Value{}, err
	}
	b, err := c.ReadString(args[1].Address())
	if err != nil {
		return value.Value{}, err
	}
	return intResult(int64(strings.Compare(a, b))), nil
}

func strcat(c *interp.Call, args []value.Value) (value.Value, error) {
	dst := args[0].Address()
	d, err := c.ReadString(dst)
	if err != nil {
		return value.Value{}, err
	}
	s, err := c.ReadString(args[1].Address())
	if err != nil {
		return value.Value{}, err
	}
	if err := c.WriteString(dst+len(d), s); err != nil {
		return value.Value{}, err
	}
	return args[0], nil
}

func memset(c *interp.Call, args []value.Value) (value.Value, error) {
	addr, n := args[0].Address(), int(args[2].Uint64())
	if n == 0 {
		return args[0], nil
	}
	if err := c.Memory().Fill(addr, n, byte(args[1].Int64())); err != nil {
		return value.Value{}, err
	}
	return value.Addr(types.NewPointer(tVoid), addr), nil
}
