package syntax

import (
	"bytes"
	"io"
	"unicode/utf8"
)

// source reads C source text one character at a time and tracks the
// line and column of the current character. Columns count characters,
// so a multi-byte character occupies one column.
type source struct {
	filename string
	buf      []byte
	offs     int // offset of the byte after ch

	ch   rune   // current character, -1 at end of input
	line uint32 // line of ch, 1-based
	col  uint32 // column of ch, 1-based

	errh func(line, col uint32, msg string)
}

var byteOrderMark = []byte("\xef\xbb\xbf")

// newSource reads all of r and positions the source on its first
// character. A leading byte order mark is skipped. errh may be nil.
func newSource(filename string, r io.Reader, errh func(line, col uint32, msg string)) *source {
	s := &source{filename: filename, line: 1, col: 1, ch: -1, errh: errh}
	buf, err := io.ReadAll(r)
	if err != nil {
		s.error("error reading source file: " + err.Error())
		return s
	}
	s.buf = bytes.TrimPrefix(buf, byteOrderMark)
	s.read()
	return s
}

// nextch advances to the next character. A newline moves to column 1
// of the following line.
func (s *source) nextch() {
	if s.ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	s.read()
}

// read loads the character at offs into ch.
func (s *source) read() {
	if s.offs >= len(s.buf) {
		s.ch = -1
		return
	}
	b := s.buf[s.offs]
	if b < utf8.RuneSelf {
		if b == 0 {
			s.error("invalid NUL character")
		}
		s.ch = rune(b)
		s.offs++
		return
	}
	r, w := utf8.DecodeRune(s.buf[s.offs:])
	if r == utf8.RuneError && w == 1 {
		s.error("invalid UTF-8 encoding")
	}
	s.ch = r
	s.offs += w
}

func (s *source) pos() Pos {
	return NewPos(s.filename, s.line, s.col)
}

// error reports a lexical error at the current character.
func (s *source) error(msg string) {
	if s.errh != nil {
		s.errh(s.line, s.col, msg)
	}
}

// Character classes of the ASCII range.
const (
	classLetter uint8 = 1 << iota
	classDigit
	classHex
	classOctal
	classBlank
	classOperator
)

var charClass [utf8.RuneSelf]uint8

func init() {
	for c := 'a'; c <= 'z'; c++ {
		charClass[c] |= classLetter
		charClass[c-'a'+'A'] |= classLetter
	}
	charClass['_'] |= classLetter
	for c := '0'; c <= '9'; c++ {
		charClass[c] |= classDigit | classHex
		if c <= '7' {
			charClass[c] |= classOctal
		}
	}
	for _, c := range "abcdefABCDEF" {
		charClass[c] |= classHex
	}
	// '\n' is not blank: it ends a directive line.
	for _, c := range " \t\r\f\v" {
		charClass[c] |= classBlank
	}
	for _, c := range "+-*/%&|^~<>=!?:()[]{},;." {
		charClass[c] |= classOperator
	}
}

func inClass(r rune, class uint8) bool {
	return r >= 0 && r < utf8.RuneSelf && charClass[r]&class != 0
}

func isLetter(r rune) bool        { return inClass(r, classLetter) }
func isDigit(r rune) bool         { return inClass(r, classDigit) }
func isHexDigit(r rune) bool      { return inClass(r, classHex) }
func isOctalDigit(r rune) bool    { return inClass(r, classOctal) }
func isWhitespace(r rune) bool    { return inClass(r, classBlank) }
func isOperatorStart(r rune) bool { return inClass(r, classOperator) }

// lower maps an ASCII upper-case letter to lower case.
func lower(r rune) rune {
	if 'A' <= r && r <= 'Z' {
		return r + 'a' - 'A'
	}
	return r
}
