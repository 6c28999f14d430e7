package builtins

import (
	"github.com/derrell/LearnCS-sub002/internal/interp"
	"github.com/derrell/LearnCS-sub002/internal/rtabi"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

func (l *Libraries) draw() *interp.Library {
	cv := l.Canvas
	lib := interp.NewLibrary(rtabi.HeaderDraw)
	ints := func(args []value.Value) []int {
		n := make([]int, len(args))
		for i, a := range args {
			n[i] = int(a.Int64())
		}
		return n
	}
	void := func(f func(a []int)) interp.Func {
		return func(_ *interp.Call, args []value.Value) (value.Value, error) {
			f(ints(args))
			return value.Void(), nil
		}
	}

	lib.Add("drawInit", func(c *interp.Call, args []value.Value) (value.Value, error) {
		w, h := int(args[0].Int64()), int(args[1].Int64())
		if w <= 0 || h <= 0 || w > 4096 || h > 4096 {
			return value.Value{}, c.Errorf("canvas size %dx%d is out of range", w, h)
		}
		cv.Init(w, h)
		return value.Void(), nil
	}, "width", "height").Sig(tVoid, tInt, tInt)
	lib.Add("drawColor", func(c *interp.Call, args []value.Value) (value.Value, error) {
		name, err := c.ReadString(args[0].Address())
		if err != nil {
			return value.Value{}, err
		}
		if err := cv.SetColor(name); err != nil {
			return value.Value{}, c.Errorf("%v", err)
		}
		return value.Void(), nil
	}, "name").Sig(tVoid, tCharPtr)
	lib.Add("drawRGB", void(func(a []int) { cv.SetRGB(a[0], a[1], a[2]) }),
		"r", "g", "b").Sig(tVoid, tInt, tInt, tInt)
	lib.Add("drawLine", void(func(a []int) { cv.DrawLine(a[0], a[1], a[2], a[3]) }),
		"x1", "y1", "x2", "y2").Sig(tVoid, tInt, tInt, tInt, tInt)
	lib.Add("drawRect", void(func(a []int) { cv.DrawRect(a[0], a[1], a[2], a[3]) }),
		"x", "y", "width", "height").Sig(tVoid, tInt, tInt, tInt, tInt)
	lib.Add("fillRect", void(func(a []int) { cv.FillRect(a[0], a[1], a[2], a[3]) }),
		"x", "y", "width", "height").Sig(tVoid, tInt, tInt, tInt, tInt)
	lib.Add("drawCircle", void(func(a []int) { cv.DrawCircle(a[0], a[1], a[2]) }),
		"x", "y", "radius").Sig(tVoid, tInt, tInt, tInt)
	lib.Add("fillCircle", void(func(a []int) { cv.FillCircle(a[0], a[1], a[2]) }),
		"x", "y", "radius").Sig(tVoid, tInt, tInt, tInt)
	lib.Add("drawText", func(c *interp.Call, args []value.Value) (value.Value, error) {
		s, err := c.ReadString(args[2].Address())
		if err != nil {
			return value.Value{}, err
		}
		cv.DrawText(int(args[0].Int64()), int(args[1].Int64()), s)
		return value.Void(), nil
	}, "x", "y", "text").Sig(tVoid, tInt, tInt, tCharPtr)
	lib.Add("drawClear", void(func([]int) { cv.Clear() })).Sig(tVoid)
	return lib
}
