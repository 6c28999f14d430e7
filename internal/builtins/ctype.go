package builtins

import (
	"github.com/derrell/LearnCS-sub002/internal/interp"
	"github.com/derrell/LearnCS-sub002/internal/rtabi"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

func ctype() *interp.Library {
	lib := interp.NewLibrary(rtabi.HeaderCtype)
	for name, pred := range map[string]func(int64) bool{
		"isdigit": func(c int64) bool { return c >= '0' && c <= '9' },
		"isalpha": func(c int64) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' },
		"isalnum": func(c int64) bool {
			return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
		},
		"isspace": func(c int64) bool { return isSpace(int(c)) },
		"isupper": func(c int64) bool { return c >= 'A' && c <= 'Z' },
		"islower": func(c int64) bool { return c >= 'a' && c <= 'z' },
		"ispunct": func(c int64) bool {
			return c > ' ' && c < 0x7f && !(c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z')
		},
	} {
		pred := pred
		lib.Add(name, func(_ *interp.Call, args []value.Value) (value.Value, error) {
			return boolResult(pred(args[0].Int64())), nil
		}, "c").Sig(tInt, tInt)
	}
	lib.Add("toupper", func(_ *interp.Call, args []value.Value) (value.Value, error) {
		c := args[0].Int64()
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		return intResult(c), nil
	}, "c").Sig(tInt, tInt)
	lib.Add("tolower", func(_ *interp.Call, args []value.Value) (value.Value, error) {
		c := args[0].Int64()
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		return intResult(c), nil
	}, "c").Sig(tInt, tInt)
	return lib
}
