// Package builtins implements the headers a LearnCS program may include:
// a teaching subset of the C library plus draw.h and learncs.h.
package builtins

import (
	"github.com/derrell/LearnCS-sub002/internal/draw"
	"github.com/derrell/LearnCS-sub002/internal/interp"
	"github.com/derrell/LearnCS-sub002/internal/types"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

// Options configures the libraries.
type Options struct {
	// Canvas receives draw.h output. If nil, a canvas of the default
	// size is created and can be retrieved from Libraries.Canvas.
	Canvas *draw.Canvas

	// Seed is the initial state of rand. Zero selects 1, as in C.
	Seed uint32
}

// Libraries is the set of headers bound to one program run.
type Libraries struct {
	Canvas *draw.Canvas
	rand   lcg
}

// New returns the libraries configured by opts.
func New(opts Options) *Libraries {
	l := &Libraries{Canvas: opts.Canvas}
	if l.Canvas == nil {
		l.Canvas = draw.New(draw.DefaultWidth, draw.DefaultHeight)
	}
	l.rand.seed(opts.Seed)
	return l
}

// Registry returns a registry that provides every header of l.
func (l *Libraries) Registry() *interp.Registry {
	reg := interp.NewRegistry()
	for _, lib := range []*interp.Library{
		stdio(),
		l.stdlib(),
		str(),
		ctype(),
		maths(),
		assert(),
		l.draw(),
		learncs(),
	} {
		if err := reg.Register(lib); err != nil {
			panic(err)
		}
	}
	return reg
}

// Common C types of library signatures.
var (
	tInt     = types.Typ[types.Int]
	tUInt    = types.Typ[types.UInt]
	tChar    = types.Typ[types.Char]
	tDouble  = types.Typ[types.Double]
	tVoid    = types.Typ[types.Void]
	tCharPtr = types.NewPointer(tChar)
	tVoidPtr = types.NewPointer(tVoid)
)

func intResult(n int64) value.Value { return value.Int(tInt, n) }

func boolResult(b bool) value.Value {
	if b {
		return intResult(1)
	}
	return intResult(0)
}
