package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Scanner performs lexical analysis on C source code.
type Scanner struct {
	source // embedded character reader

	// Current token info
	tok    Token   // token type
	lit    string  // token literal (identifier name, number, decoded string, header name)
	kind   LitKind // literal kind (only valid when tok == _Literal)
	tokPos Pos     // token start position

	// Directive state
	bol  bool   // at beginning of line (only whitespace seen)
	body string // replacement text of a #define
	bpos Pos    // position of body

	// Literal accumulation
	litBuf strings.Builder
}

// NewScanner creates a new Scanner for the given source.
// The errh function is called for each lexical error; if nil, errors are silently ignored.
func NewScanner(filename string, src io.Reader, errh func(line, col uint32, msg string)) *Scanner {
	s := &Scanner{
		source: *newSource(filename, src, errh),
		bol:    true,
	}
	return s
}

// Next advances to the next token.
func (s *Scanner) Next() {
redo:
	// 1. Skip whitespace, noting line starts for directives
	s.skipWhitespace()

	// 2. Record token start position
	s.tokPos = s.pos()
	s.kind = 0

	// 3. Scan token based on current character
	switch {
	case s.ch < 0:
		s.tok = _EOF
		s.lit = ""

	case s.ch == '#':
		if !s.bol {
			s.error("unexpected '#' inside a line")
			s.nextch()
			goto redo
		}
		if !s.scanDirective() {
			goto redo
		}

	case isLetter(s.ch):
		s.scanIdent()

	case isDigit(s.ch):
		s.scanNumber()

	case s.ch == '"':
		s.scanString()

	case s.ch == '\'':
		s.scanChar()

	case isOperatorStart(s.ch):
		if s.scanOperator() {
			// scanOperator returned true, meaning we skipped a comment
			goto redo
		}

	default:
		s.error(fmt.Sprintf("unexpected character %q", s.ch))
		s.nextch()
		goto redo
	}

	s.bol = false
}

// Token returns the current token type.
func (s *Scanner) Token() Token {
	return s.tok
}

// Literal returns the current token's literal value.
func (s *Scanner) Literal() string {
	return s.lit
}

// LitKind returns the current literal's kind (only valid when Token() == _Literal).
func (s *Scanner) LitKind() LitKind {
	return s.kind
}

// Pos returns the current token's start position.
func (s *Scanner) Pos() Pos {
	return s.tokPos
}

// Body returns the replacement text of the current #define token and
// its position.
func (s *Scanner) Body() (string, Pos) {
	return s.body, s.bpos
}

// skipWhitespace skips blanks and newlines. A newline puts the scanner
// back at the beginning of a line.
func (s *Scanner) skipWhitespace() {
	for isWhitespace(s.ch) || s.ch == '\n' {
		if s.ch == '\n' {
			s.bol = true
		}
		s.nextch()
	}
}

// skipBlanks skips blanks within a line.
func (s *Scanner) skipBlanks() {
	for isWhitespace(s.ch) {
		s.nextch()
	}
}

// startLit begins accumulating a literal.
func (s *Scanner) startLit() {
	s.litBuf.Reset()
	s.litBuf.WriteRune(s.ch)
}

// continueLit adds the current character to the literal being accumulated.
func (s *Scanner) continueLit() {
	s.litBuf.WriteRune(s.ch)
}

// stopLit ends literal accumulation and returns the accumulated string.
func (s *Scanner) stopLit() string {
	return s.litBuf.String()
}

// scanIdent scans an identifier or keyword.
func (s *Scanner) scanIdent() {
	s.startLit()
	s.nextch()

	for isLetter(s.ch) || isDigit(s.ch) {
		s.continueLit()
		s.nextch()
	}

	s.lit = s.stopLit()

	// Check if it's a keyword
	s.tok = LookupKeyword(s.lit)
}

// scanDirective scans a preprocessor line starting at '#'. It reports
// whether a token was produced; ignored directives produce none.
func (s *Scanner) scanDirective() bool {
	s.nextch() // skip #
	s.skipBlanks()

	var name strings.Builder
	for isLetter(s.ch) {
		name.WriteRune(s.ch)
		s.nextch()
	}

	switch name.String() {
	case "include":
		s.skipBlanks()
		var closer rune
		switch s.ch {
		case '<':
			closer = '>'
		case '"':
			closer = '"'
		default:
			s.error("#include expects <header> or \"header\"")
			s.skipLine()
			return false
		}
		s.nextch()
		var hdr strings.Builder
		for s.ch != closer {
			if s.ch == '\n' || s.ch < 0 {
				s.error("unterminated header name")
				return false
			}
			hdr.WriteRune(s.ch)
			s.nextch()
		}
		s.nextch() // skip closer
		s.tok = _Include
		s.lit = hdr.String()
		s.skipLine()
		return true

	case "define":
		s.skipBlanks()
		if !isLetter(s.ch) {
			s.error("macro name must be an identifier")
			s.skipLine()
			return false
		}
		var macro strings.Builder
		for isLetter(s.ch) || isDigit(s.ch) {
			macro.WriteRune(s.ch)
			s.nextch()
		}
		if s.ch == '(' {
			s.error("function-like macros are not supported")
			s.skipLine()
			return false
		}
		s.skipBlanks()
		s.bpos = s.pos()
		var body strings.Builder
		for s.ch != '\n' && s.ch >= 0 {
			if s.ch == '\\' {
				// line continuation
				s.nextch()
				if s.ch == '\n' {
					body.WriteByte(' ')
					s.nextch()
					continue
				}
				body.WriteByte('\\')
				continue
			}
			body.WriteRune(s.ch)
			s.nextch()
		}
		s.tok = _Define
		s.lit = macro.String()
		s.body = strings.TrimSpace(body.String())
		return true

	case "pragma", "":
		s.skipLine()
		return false
	}

	s.error(fmt.Sprintf("unsupported preprocessor directive #%s", name.String()))
	s.skipLine()
	return false
}

// skipLine skips to the end of the current line.
func (s *Scanner) skipLine() {
	for s.ch != '\n' && s.ch >= 0 {
		s.nextch()
	}
}

// scanNumber scans a number literal (integer or float). The literal keeps
// its prefix and suffix; the parser's consumers decode it.
func (s *Scanner) scanNumber() {
	s.litBuf.Reset()
	s.kind = IntLit

	if s.ch == '0' {
		s.litBuf.WriteRune(s.ch)
		s.nextch()
		switch lower(s.ch) {
		case 'x':
			// Hexadecimal: 0x or 0X
			s.litBuf.WriteRune(s.ch)
			s.nextch()
			s.scanHexDigits()
		default:
			// Octal, or a float with a leading zero
			s.scanDecimalDigits()
			if s.ch == '.' || lower(s.ch) == 'e' {
				s.scanFraction()
			} else if lit := s.litBuf.String(); strings.ContainsAny(lit, "89") {
				s.error("invalid digit in octal literal")
			}
		}
	} else {
		// Decimal number - scan all digits including first
		s.scanDecimalDigits()
		// Check for float
		if s.ch == '.' || lower(s.ch) == 'e' {
			s.scanFraction()
		}
	}
	s.scanSuffix()

	s.lit = s.litBuf.String()
	s.tok = _Literal
}

// scanSuffix scans integer (u, l, ll) or floating (f, l) suffixes.
func (s *Scanner) scanSuffix() {
	for {
		c := lower(s.ch)
		switch {
		case s.kind == IntLit && (c == 'u' || c == 'l'):
		case s.kind == FloatLit && (c == 'f' || c == 'l'):
		default:
			if isLetter(s.ch) || isDigit(s.ch) {
				s.error(fmt.Sprintf("invalid suffix %q on number", s.ch))
				for isLetter(s.ch) || isDigit(s.ch) {
					s.nextch()
				}
			}
			return
		}
		s.continueLit()
		s.nextch()
	}
}

// scanDecimalDigits scans decimal digits.
func (s *Scanner) scanDecimalDigits() {
	for isDigit(s.ch) {
		s.continueLit()
		s.nextch()
	}
}

// scanHexDigits scans hexadecimal digits.
func (s *Scanner) scanHexDigits() {
	if !isHexDigit(s.ch) {
		s.error("invalid hex digit")
		return
	}
	for isHexDigit(s.ch) {
		s.continueLit()
		s.nextch()
	}
}

// scanFraction scans the fractional part of a float (. and/or exponent).
func (s *Scanner) scanFraction() {
	// Decimal point
	if s.ch == '.' {
		s.kind = FloatLit
		s.continueLit()
		s.nextch()
		s.scanDecimalDigits()
	}

	// Exponent
	if lower(s.ch) == 'e' {
		s.kind = FloatLit
		s.continueLit()
		s.nextch()

		// Optional sign
		if s.ch == '+' || s.ch == '-' {
			s.continueLit()
			s.nextch()
		}

		if !isDigit(s.ch) {
			s.error("exponent has no digits")
			return
		}
		s.scanDecimalDigits()
	}
}

// scanString scans a string literal.
// The resulting literal is the decoded string content (escape sequences are interpreted).
func (s *Scanner) scanString() {
	s.nextch() // skip opening "
	var b strings.Builder

	for {
		switch {
		case s.ch == '"':
			s.nextch()
			s.lit = b.String()
			s.tok = _Literal
			s.kind = StrLit
			return

		case s.ch == '\\':
			if c, ok := s.scanEscape('"'); ok {
				b.WriteByte(c)
			}

		case s.ch == '\n' || s.ch < 0:
			s.error("string not terminated")
			s.lit = b.String()
			s.tok = _Literal
			s.kind = StrLit
			return

		default:
			b.WriteRune(s.ch)
			s.nextch()
		}
	}
}

// scanChar scans a character constant. The literal is the decoded byte.
func (s *Scanner) scanChar() {
	s.nextch() // skip opening '
	s.tok = _Literal
	s.kind = CharLit

	var c byte
	switch {
	case s.ch == '\\':
		c, _ = s.scanEscape('\'')
	case s.ch == '\'' || s.ch == '\n' || s.ch < 0:
		s.error("empty character constant")
		s.lit = "\x00"
		if s.ch == '\'' {
			s.nextch()
		}
		return
	default:
		if s.ch > 0x7f {
			s.error("multi-byte character constant")
		}
		c = byte(s.ch)
		s.nextch()
	}

	if s.ch != '\'' {
		s.error("character constant not terminated")
		for s.ch != '\'' && s.ch != '\n' && s.ch >= 0 {
			s.nextch()
		}
	}
	if s.ch == '\'' {
		s.nextch()
	}
	s.lit = string([]byte{c})
}

// scanEscape scans an escape sequence and returns the decoded byte.
// quote is the delimiter of the enclosing literal.
func (s *Scanner) scanEscape(quote rune) (byte, bool) {
	s.nextch() // skip \

	switch s.ch {
	case 'n':
		s.nextch()
		return '\n', true
	case 't':
		s.nextch()
		return '\t', true
	case 'r':
		s.nextch()
		return '\r', true
	case 'a':
		s.nextch()
		return '\a', true
	case 'b':
		s.nextch()
		return '\b', true
	case 'f':
		s.nextch()
		return '\f', true
	case 'v':
		s.nextch()
		return '\v', true
	case '\\', '\'', '"', '?':
		c := byte(s.ch)
		s.nextch()
		return c, true
	case 'x':
		s.nextch()
		return s.scanHexEscape()
	}
	if isOctalDigit(s.ch) {
		var val int
		for i := 0; i < 3 && isOctalDigit(s.ch); i++ {
			val = val*8 + int(s.ch-'0')
			s.nextch()
		}
		if val > 0xff {
			s.error("octal escape sequence out of range")
		}
		return byte(val), true
	}
	if s.ch == quote || s.ch == '\n' || s.ch < 0 {
		s.error("incomplete escape sequence")
		return 0, false
	}
	s.error(fmt.Sprintf("unknown escape sequence: \\%c", s.ch))
	s.nextch()
	return 0, false
}

// scanHexEscape scans the digits of a \xNN escape sequence.
func (s *Scanner) scanHexEscape() (byte, bool) {
	if !isHexDigit(s.ch) {
		s.error("invalid hex escape")
		return 0, false
	}
	var val rune
	for isHexDigit(s.ch) {
		val = val*16 + hexValue(s.ch)
		s.nextch()
	}
	if val > 0xff {
		s.error("hex escape sequence out of range")
	}
	return byte(val), true
}

// hexValue returns the numeric value of a hex digit.
func hexValue(r rune) rune {
	switch {
	case '0' <= r && r <= '9':
		return r - '0'
	case 'a' <= lower(r) && lower(r) <= 'f':
		return lower(r) - 'a' + 10
	}
	return 0
}

// scanOperator scans an operator or delimiter.
// Returns true if a comment was skipped (caller should rescan).
func (s *Scanner) scanOperator() bool {
	ch := s.ch
	s.nextch()

	switch ch {
	case '+':
		switch s.ch {
		case '+':
			s.nextch()
			s.set(_Inc, "++")
		case '=':
			s.nextch()
			s.set(_AssignOp, "+=")
		default:
			s.set(_Add, "+")
		}
	case '-':
		switch s.ch {
		case '-':
			s.nextch()
			s.set(_Dec, "--")
		case '=':
			s.nextch()
			s.set(_AssignOp, "-=")
		case '>':
			s.nextch()
			s.set(_Arrow, "->")
		default:
			s.set(_Sub, "-")
		}
	case '*':
		s.opOrAssign(_Mul, "*")
	case '/':
		switch s.ch {
		case '/':
			// Line comment
			s.skipLineComment()
			return true
		case '*':
			s.skipBlockComment()
			return true
		}
		s.opOrAssign(_Div, "/")
	case '%':
		s.opOrAssign(_Rem, "%")
	case '&':
		if s.ch == '&' {
			s.nextch()
			s.set(_AndAnd, "&&")
		} else {
			s.opOrAssign(_And, "&")
		}
	case '|':
		if s.ch == '|' {
			s.nextch()
			s.set(_OrOr, "||")
		} else {
			s.opOrAssign(_Or, "|")
		}
	case '^':
		s.opOrAssign(_Xor, "^")
	case '~':
		s.set(_Tilde, "~")
	case '<':
		switch s.ch {
		case '=':
			s.nextch()
			s.set(_Leq, "<=")
		case '<':
			s.nextch()
			s.opOrAssign(_Shl, "<<")
		default:
			s.set(_Lss, "<")
		}
	case '>':
		switch s.ch {
		case '=':
			s.nextch()
			s.set(_Geq, ">=")
		case '>':
			s.nextch()
			s.opOrAssign(_Shr, ">>")
		default:
			s.set(_Gtr, ">")
		}
	case '=':
		if s.ch == '=' {
			s.nextch()
			s.set(_Eql, "==")
		} else {
			s.set(_Assign, "=")
		}
	case '!':
		if s.ch == '=' {
			s.nextch()
			s.set(_Neq, "!=")
		} else {
			s.set(_Not, "!")
		}
	case '?':
		s.set(_Question, "?")
	case ':':
		s.set(_Colon, ":")
	case '(':
		s.set(_Lparen, "(")
	case ')':
		s.set(_Rparen, ")")
	case '[':
		s.set(_Lbrack, "[")
	case ']':
		s.set(_Rbrack, "]")
	case '{':
		s.set(_Lbrace, "{")
	case '}':
		s.set(_Rbrace, "}")
	case ',':
		s.set(_Comma, ",")
	case ';':
		s.set(_Semi, ";")
	case '.':
		switch {
		case isDigit(s.ch):
			s.litBuf.Reset()
			s.litBuf.WriteByte('0')
			s.kind = IntLit
			s.scanFractionAfterDot()
		case s.ch == '.':
			s.nextch()
			if s.ch != '.' {
				s.error("unexpected '..'")
			} else {
				s.nextch()
			}
			s.set(_Ellipsis, "...")
		default:
			s.set(_Dot, ".")
		}
	}

	return false
}

// scanFractionAfterDot finishes a float literal like .5 whose '.' has
// already been consumed.
func (s *Scanner) scanFractionAfterDot() {
	s.kind = FloatLit
	s.litBuf.WriteByte('.')
	s.scanDecimalDigits()
	if lower(s.ch) == 'e' {
		s.scanFraction()
	}
	s.scanSuffix()
	s.lit = s.litBuf.String()
	s.tok = _Literal
}

func (s *Scanner) set(tok Token, lit string) {
	s.tok = tok
	s.lit = lit
}

// opOrAssign sets tok, or the compound assignment op= if '=' follows.
func (s *Scanner) opOrAssign(tok Token, op string) {
	if s.ch == '=' {
		s.nextch()
		s.set(_AssignOp, op+"=")
		return
	}
	s.set(tok, op)
}

// skipLineComment skips a line comment (from // to end of line).
func (s *Scanner) skipLineComment() {
	// Already consumed the first /
	s.nextch()
	for s.ch != '\n' && s.ch >= 0 {
		s.nextch()
	}
}

// skipBlockComment skips a /* */ comment.
func (s *Scanner) skipBlockComment() {
	s.nextch() // skip *
	for s.ch >= 0 {
		if s.ch == '*' {
			s.nextch()
			if s.ch == '/' {
				s.nextch()
				return
			}
			continue
		}
		s.nextch()
	}
	s.error("comment not terminated")
}
