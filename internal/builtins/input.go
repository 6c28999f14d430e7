package builtins

import (
	"strings"

	"github.com/derrell/LearnCS-sub002/internal/interp"
	"github.com/derrell/LearnCS-sub002/internal/rtabi"
)

// reader reads program input on behalf of one builtin call.
type reader struct {
	c *interp.Call
}

func (r reader) peek() (int, error) { return r.c.Peekc() }
func (r reader) next() (int, error) { return r.c.Getc() }

func isSpace(b int) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

// skipSpace consumes white space and reports whether input remains.
func (r reader) skipSpace() (bool, error) {
	for {
		b, err := r.peek()
		if err != nil {
			return false, err
		}
		if b == rtabi.EOF {
			return false, nil
		}
		if !isSpace(b) {
			return true, nil
		}
		if _, err := r.next(); err != nil {
			return false, err
		}
	}
}

// scan consumes up to max bytes for which accept returns true. A
// negative max means no limit. accept sees the bytes consumed so far.
func (r reader) scan(max int, accept func(sofar string, b byte) bool) (string, error) {
	var sb strings.Builder
	for max < 0 || sb.Len() < max {
		b, err := r.peek()
		if err != nil {
			return "", err
		}
		if b == rtabi.EOF || !accept(sb.String(), byte(b)) {
			break
		}
		sb.WriteByte(byte(b))
		if _, err := r.next(); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// word reads the next run of non-space bytes after skipping white space.
// ok is false at end of input. The delimiter that ends the word is
// consumed when it is a newline.
func (r reader) word() (w string, ok bool, err error) {
	if ok, err = r.skipSpace(); !ok || err != nil {
		return "", ok, err
	}
	w, err = r.scan(-1, func(_ string, b byte) bool { return !isSpace(int(b)) })
	if err != nil {
		return "", false, err
	}
	if b, err := r.peek(); err != nil {
		return "", false, err
	} else if b == '\n' {
		if _, err := r.next(); err != nil {
			return "", false, err
		}
	}
	return w, true, nil
}

// line reads the next line, keeping at most max bytes of it and
// discarding the rest. The newline is consumed and not kept. ok is false
// when input ended before any byte was read.
func (r reader) line(max int) (s string, ok bool, err error) {
	first, err := r.peek()
	if err != nil || first == rtabi.EOF {
		return "", false, err
	}
	s, err = r.scan(max, func(_ string, b byte) bool { return b != '\n' })
	if err != nil {
		return "", false, err
	}
	for {
		b, err := r.next()
		if err != nil {
			return "", false, err
		}
		if b == '\n' || b == rtabi.EOF {
			return s, true, nil
		}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// integer accepts an optionally signed decimal number.
func integer(sofar string, b byte) bool {
	if sofar == "" && (b == '+' || b == '-') {
		return true
	}
	return isDigit(b)
}

// floating accepts a decimal floating constant with optional exponent.
func floating(sofar string, b byte) bool {
	switch {
	case isDigit(b):
		return true
	case b == '+' || b == '-':
		return sofar == "" || strings.ContainsAny(sofar[len(sofar)-1:], "eE")
	case b == '.':
		return !strings.ContainsAny(sofar, ".eE")
	case b == 'e' || b == 'E':
		return strings.IndexFunc(sofar, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0 &&
			!strings.ContainsAny(sofar, "eE")
	}
	return false
}
