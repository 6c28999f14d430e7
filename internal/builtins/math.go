package builtins

import (
	"math"

	"github.com/derrell/LearnCS-sub002/internal/interp"
	"github.com/derrell/LearnCS-sub002/internal/rtabi"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

var unaryMath = []struct {
	name string
	fn   func(float64) float64
}{
	{"sqrt", math.Sqrt},
	{"sin", math.Sin},
	{"cos", math.Cos},
	{"tan", math.Tan},
	{"asin", math.Asin},
	{"acos", math.Acos},
	{"atan", math.Atan},
	{"exp", math.Exp},
	{"log", math.Log},
	{"log10", math.Log10},
	{"fabs", math.Abs},
	{"floor", math.Floor},
	{"ceil", math.Ceil},
}

var binaryMath = []struct {
	name string
	fn   func(float64, float64) float64
}{
	{"pow", math.Pow},
	{"atan2", math.Atan2},
	{"fmod", math.Mod},
}

func maths() *interp.Library {
	lib := interp.NewLibrary(rtabi.HeaderMath)
	for _, f := range unaryMath {
		fn := f.fn
		lib.Add(f.name, func(_ *interp.Call, args []value.Value) (value.Value, error) {
			return value.Float(tDouble, fn(args[0].Float64())), nil
		}, "x").Sig(tDouble, tDouble)
	}
	for _, f := range binaryMath {
		fn := f.fn
		lib.Add(f.name, func(_ *interp.Call, args []value.Value) (value.Value, error) {
			return value.Float(tDouble, fn(args[0].Float64(), args[1].Float64())), nil
		}, "x", "y").Sig(tDouble, tDouble, tDouble)
	}
	return lib
}
