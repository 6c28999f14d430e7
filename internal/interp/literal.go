package interp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/derrell/LearnCS-sub002/internal/types"
	"github.com/derrell/LearnCS-sub002/internal/value"
)

// intLiteral converts the text of an integer constant. The type is the
// first of the C candidate list for its base and suffix that can
// represent the value.
func intLiteral(lit string) (value.Value, error) {
	body := strings.TrimRight(lit, "uUlL")
	suffix := strings.ToLower(lit[len(body):])
	unsigned := strings.Contains(suffix, "u")
	longs := strings.Count(suffix, "l")

	base, digits := 10, body
	switch {
	case len(body) > 1 && (body[1] == 'x' || body[1] == 'X'):
		base, digits = 16, body[2:]
	case len(body) > 1 && body[0] == '0':
		base, digits = 8, body[1:]
	}
	n, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return value.Value{}, fmt.Errorf("integer constant %s is too large", lit)
		}
		return value.Value{}, fmt.Errorf("invalid integer constant %s", lit)
	}

	var cands []types.BasicKind
	switch {
	case unsigned && longs >= 2:
		cands = []types.BasicKind{types.ULongLong}
	case unsigned && longs == 1:
		cands = []types.BasicKind{types.ULong, types.ULongLong}
	case unsigned:
		cands = []types.BasicKind{types.UInt, types.ULong, types.ULongLong}
	case longs >= 2 && base == 10:
		cands = []types.BasicKind{types.LongLong}
	case longs >= 2:
		cands = []types.BasicKind{types.LongLong, types.ULongLong}
	case longs == 1 && base == 10:
		cands = []types.BasicKind{types.Long, types.LongLong}
	case longs == 1:
		cands = []types.BasicKind{types.Long, types.ULong, types.LongLong, types.ULongLong}
	case base == 10:
		cands = []types.BasicKind{types.Int, types.Long, types.LongLong}
	default:
		cands = []types.BasicKind{types.Int, types.UInt, types.Long, types.ULong, types.LongLong, types.ULongLong}
	}
	for _, k := range cands {
		t := types.Typ[k]
		if fits(n, t) {
			return value.Uint(t, n), nil
		}
	}
	return value.Value{}, fmt.Errorf("integer constant %s is too large for its type", lit)
}

func fits(n uint64, t types.Type) bool {
	bits := uint(types.ByteWidth(t)) * 8
	if types.IsUnsignedIntegral(t) {
		return bits >= 64 || n <= 1<<bits-1
	}
	return n <= 1<<(bits-1)-1
}

// floatLiteral converts the text of a floating constant: float with an
// f suffix, double otherwise.
func floatLiteral(lit string) (value.Value, error) {
	body := strings.TrimRight(lit, "fFlL")
	t := types.Typ[types.Double]
	if strings.ContainsAny(lit[len(body):], "fF") {
		t = types.Typ[types.Float]
	}
	f, err := strconv.ParseFloat(body, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return value.Value{}, fmt.Errorf("invalid floating constant %s", lit)
	}
	return value.Float(t, f), nil
}
