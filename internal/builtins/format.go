package builtins

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/derrell/LearnCS-sub002/internal/interp"
	"github.com/derrell/LearnCS-sub002/internal/types"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

// sprintf renders a printf format. Each C conversion is translated to
// the fmt verb with the same flags, width and precision.
func sprintf(c *interp.Call, format string, args []value.Value) (string, error) {
	var b strings.Builder
	next := 0
	arg := func() (value.Value, error) {
		if next >= len(args) {
			return value.Value{}, c.Errorf("too few arguments for format %q", format)
		}
		v := args[next]
		next++
		return v, nil
	}

	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			b.WriteByte(format[i])
			continue
		}
		i++
		if i == len(format) {
			return "", c.Errorf("incomplete conversion at end of format")
		}
		if format[i] == '%' {
			b.WriteByte('%')
			continue
		}

		spec := []byte{'%'}
		for i < len(format) && strings.IndexByte("-+ 0#", format[i]) >= 0 {
			spec = append(spec, format[i])
			i++
		}
		var err error
		if spec, i, err = appendCount(spec, format, i, arg); err != nil {
			return "", err
		}
		if i < len(format) && format[i] == '.' {
			spec = append(spec, '.')
			if spec, i, err = appendCount(spec, format, i+1, arg); err != nil {
				return "", err
			}
		}
		for i < len(format) && strings.IndexByte("hlLjzt", format[i]) >= 0 {
			i++
		}
		if i == len(format) {
			return "", c.Errorf("incomplete conversion at end of format")
		}

		verb := format[i]
		v, err := arg()
		if err != nil {
			return "", err
		}
		s := string(spec)
		switch verb {
		case 'd', 'i':
			fmt.Fprintf(&b, s+"d", v.Int64())
		case 'u':
			fmt.Fprintf(&b, s+"d", unsigned(v))
		case 'x', 'X', 'o':
			fmt.Fprintf(&b, s+string(verb), unsigned(v))
		case 'c':
			fmt.Fprintf(&b, s+"c", rune(byte(v.Int64())))
		case 's':
			str := "(null)"
			if v.Int64() != 0 {
				if str, err = c.ReadString(v.Address()); err != nil {
					return "", err
				}
			}
			fmt.Fprintf(&b, s+"s", str)
		case 'f', 'F', 'e', 'E', 'g', 'G':
			fmt.Fprintf(&b, s+string(verb), v.Float64())
		case 'p':
			fmt.Fprintf(&b, s+"s", fmt.Sprintf("0x%04x", uint32(v.Int64())))
		default:
			return "", c.Errorf("unknown conversion '%%%c'", verb)
		}
	}
	return b.String(), nil
}

// appendCount copies a width or precision starting at format[i] to spec.
// A '*' takes the count from the next argument.
func appendCount(spec []byte, format string, i int, arg func() (value.Value, error)) ([]byte, int, error) {
	if i < len(format) && format[i] == '*' {
		v, err := arg()
		if err != nil {
			return nil, i, err
		}
		return strconv.AppendInt(spec, v.Int64(), 10), i + 1, nil
	}
	for i < len(format) && format[i] >= '0' && format[i] <= '9' {
		spec = append(spec, format[i])
		i++
	}
	return spec, i, nil
}

// unsigned returns the bit pattern of an integer argument at its own
// width.
func unsigned(v value.Value) uint64 {
	if v.Kind() == value.FloatKind {
		return uint64(v.Int64())
	}
	if w := types.ByteWidth(v.Type()); w > 0 && w < 8 {
		return v.Uint64() & (1<<(8*uint(w)) - 1)
	}
	return v.Uint64()
}
