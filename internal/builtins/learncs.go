package builtins

import (
	"strconv"

	"github.com/derrell/LearnCS-sub002/internal/interp"
	"github.com/derrell/LearnCS-sub002/internal/rtabi"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

// learncs.h reads whole tokens and fails loudly on malformed input,
// where scanf would silently leave its target untouched.
func learncs() *interp.Library {
	lib := interp.NewLibrary(rtabi.HeaderLearnCS)
	lib.Add("getInt", getInt).Sig(tInt)
	lib.Add("getDouble", getDouble).Sig(tDouble)
	lib.Add("getString", getString, "buf", "size").Sig(tCharPtr, tCharPtr, tInt)
	return lib
}

func getInt(c *interp.Call, _ []value.Value) (value.Value, error) {
	w, ok, err := reader{c}.word()
	if err != nil {
		return value.Value{}, err
	}
	if !ok {
		return value.Value{}, c.Errorf("end of input")
	}
	n, err := strconv.ParseInt(w, 10, 32)
	if err != nil {
		return value.Value{}, c.Errorf("not an integer: %q", w)
	}
	return intResult(n), nil
}

func getDouble(c *interp.Call, _ []value.Value) (value.Value, error) {
	w, ok, err := reader{c}.word()
	if err != nil {
		return value.Value{}, err
	}
	if !ok {
		return value.Value{}, c.Errorf("end of input")
	}
	f, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return value.Value{}, c.Errorf("not a number: %q", w)
	}
	return value.Float(tDouble, f), nil
}

// getString reads one line into buf, keeping at most size-1 bytes of it. It
// returns NULL at end of input.
func getString(c *interp.Call, args []value.Value) (value.Value, error) {
	size := int(args[1].Int64())
	if size <= 0 {
		return value.Value{}, c.Errorf("buffer size %d is not positive", size)
	}
	s, ok, err := reader{c}.line(size - 1)
	if err != nil {
		return value.Value{}, err
	}
	if !ok {
		return value.Addr(tCharPtr, 0), nil
	}
	if err := c.WriteString(args[0].Address(), s); err != nil {
		return value.Value{}, err
	}
	return args[0], nil
}
