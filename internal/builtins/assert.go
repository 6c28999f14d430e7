package builtins

import (
	"github.com/derrell/LearnCS-sub002/internal/interp"
	"github.com/derrell/LearnCS-sub002/internal/rtabi"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

func assert() *interp.Library {
	lib := interp.NewLibrary(rtabi.HeaderAssert)
	lib.Add("assert", func(c *interp.Call, args []value.Value) (value.Value, error) {
		if args[0].Int64() == 0 {
			return value.Value{}, c.Errorf("assertion failed")
		}
		return value.Void(), nil
	}, "expression").Sig(tVoid, tInt)
	return lib
}
