package syntax

import (
	"strings"
	"testing"
)

func scanAll(src string) (toks []Token, lits []string) {
	s := NewScanner("test.c", strings.NewReader(src), nil)
	for {
		s.Next()
		if s.Token().IsEOF() {
			return
		}
		toks = append(toks, s.Token())
		lits = append(lits, s.Literal())
	}
}

func TestScanTokens(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		tokens []Token
		lits   []string
	}{
		// Identifiers and keywords
		{"ident", "foo", []Token{_Name}, []string{"foo"}},
		{"ident_underscore", "_bar9", []Token{_Name}, []string{"_bar9"}},
		{"keyword", "unsigned int", []Token{_Unsigned, _Int}, []string{"unsigned", "int"}},

		// Integer literals keep prefix and suffix
		{"int_dec", "123", []Token{_Literal}, []string{"123"}},
		{"int_zero", "0", []Token{_Literal}, []string{"0"}},
		{"int_hex", "0xDeAd", []Token{_Literal}, []string{"0xDeAd"}},
		{"int_oct", "017", []Token{_Literal}, []string{"017"}},
		{"int_unsigned", "10u", []Token{_Literal}, []string{"10u"}},
		{"int_ulong", "10UL", []Token{_Literal}, []string{"10UL"}},
		{"int_longlong", "5ll", []Token{_Literal}, []string{"5ll"}},

		// Float literals
		{"float_simple", "3.14", []Token{_Literal}, []string{"3.14"}},
		{"float_no_frac", "3.", []Token{_Literal}, []string{"3."}},
		{"float_leading_dot", ".5", []Token{_Literal}, []string{"0.5"}},
		{"float_exp", "2.5e-3", []Token{_Literal}, []string{"2.5e-3"}},
		{"float_suffix", "1.5f", []Token{_Literal}, []string{"1.5f"}},

		// String and char literals (decoded content)
		{"string_simple", `"hello"`, []Token{_Literal}, []string{"hello"}},
		{"string_empty", `""`, []Token{_Literal}, []string{""}},
		{"string_escapes", `"a\n\t\\\"b"`, []Token{_Literal}, []string{"a\n\t\\\"b"}},
		{"string_octal", `"\101\0"`, []Token{_Literal}, []string{"A\x00"}},
		{"string_hex", `"\x41"`, []Token{_Literal}, []string{"A"}},
		{"char", `'a'`, []Token{_Literal}, []string{"a"}},
		{"char_escape", `'\n'`, []Token{_Literal}, []string{"\n"}},
		{"char_quote", `'\''`, []Token{_Literal}, []string{"'"}},
		{"char_nul", `'\0'`, []Token{_Literal}, []string{"\x00"}},

		// Operators
		{"arith", "+ - * / %", []Token{_Add, _Sub, _Mul, _Div, _Rem}, []string{"+", "-", "*", "/", "%"}},
		{"incdec", "++ --", []Token{_Inc, _Dec}, []string{"++", "--"}},
		{"compound", "+= <<= >>= &= |= ^= %=",
			[]Token{_AssignOp, _AssignOp, _AssignOp, _AssignOp, _AssignOp, _AssignOp, _AssignOp},
			[]string{"+=", "<<=", ">>=", "&=", "|=", "^=", "%="}},
		{"compare", "== != < <= > >=", []Token{_Eql, _Neq, _Lss, _Leq, _Gtr, _Geq}, []string{"==", "!=", "<", "<=", ">", ">="}},
		{"logical", "&& || !", []Token{_AndAnd, _OrOr, _Not}, []string{"&&", "||", "!"}},
		{"bitwise", "& | ^ ~ << >>", []Token{_And, _Or, _Xor, _Tilde, _Shl, _Shr}, []string{"&", "|", "^", "~", "<<", ">>"}},
		{"member", "p->x.y", []Token{_Name, _Arrow, _Name, _Dot, _Name}, []string{"p", "->", "x", ".", "y"}},
		{"ternary", "a ? b : c", []Token{_Name, _Question, _Name, _Colon, _Name}, []string{"a", "?", "b", ":", "c"}},
		{"ellipsis", "(...)", []Token{_Lparen, _Ellipsis, _Rparen}, []string{"(", "...", ")"}},

		// Comments
		{"line_comment", "a // b\nc", []Token{_Name, _Name}, []string{"a", "c"}},
		{"block_comment", "a /* b\n * c */ d", []Token{_Name, _Name}, []string{"a", "d"}},

		// Directives
		{"include_angle", "#include <stdio.h>\nint", []Token{_Include, _Int}, []string{"stdio.h", "int"}},
		{"include_quote", `# include "learncs.h"`, []Token{_Include}, []string{"learncs.h"}},
		{"define", "#define N 10\nN", []Token{_Define, _Name}, []string{"N", "N"}},
		{"pragma", "#pragma once\nx", []Token{_Name}, []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, lits := scanAll(tt.src)
			if len(toks) != len(tt.tokens) {
				t.Fatalf("got %d tokens %v, want %d %v", len(toks), toks, len(tt.tokens), tt.tokens)
			}
			for i := range toks {
				if toks[i] != tt.tokens[i] {
					t.Errorf("token %d: got %v, want %v", i, toks[i], tt.tokens[i])
				}
				if lits[i] != tt.lits[i] {
					t.Errorf("token %d: lit = %q, want %q", i, lits[i], tt.lits[i])
				}
			}
		})
	}
}

func TestScanLitKind(t *testing.T) {
	tests := []struct {
		src  string
		want LitKind
	}{
		{"42", IntLit},
		{"0x2a", IntLit},
		{"4.2", FloatLit},
		{"1e3", FloatLit},
		{".5f", FloatLit},
		{"'x'", CharLit},
		{`"x"`, StrLit},
	}

	for _, tt := range tests {
		s := NewScanner("test.c", strings.NewReader(tt.src), nil)
		s.Next()
		if s.Token() != _Literal {
			t.Fatalf("%s: token = %v, want literal", tt.src, s.Token())
		}
		if s.LitKind() != tt.want {
			t.Errorf("%s: LitKind = %v, want %v", tt.src, s.LitKind(), tt.want)
		}
	}
}

func TestDefineBody(t *testing.T) {
	s := NewScanner("test.c", strings.NewReader("#define MAX (N * 2) \\\n  + 1\nx"), nil)
	s.Next()
	if s.Token() != _Define || s.Literal() != "MAX" {
		t.Fatalf("got %v %q, want #define MAX", s.Token(), s.Literal())
	}
	body, pos := s.Body()
	if body != "(N * 2)    + 1" {
		t.Errorf("body = %q", body)
	}
	if pos.Line() != 1 || pos.Col() != 13 {
		t.Errorf("body pos = %s, want 1:13", pos)
	}
	s.Next()
	if s.Token() != _Name || s.Literal() != "x" {
		t.Errorf("after define: %v %q", s.Token(), s.Literal())
	}
}

func TestPosition(t *testing.T) {
	src := `#include <stdio.h>

int main() {
    x = 123;
}`

	expected := []struct {
		tok  Token
		line uint32
		col  uint32
	}{
		{_Include, 1, 1},
		{_Int, 3, 1},
		{_Name, 3, 5},    // main
		{_Lparen, 3, 9},  // (
		{_Rparen, 3, 10}, // )
		{_Lbrace, 3, 12}, // {
		{_Name, 4, 5},    // x
		{_Assign, 4, 7},  // =
		{_Literal, 4, 9}, // 123
		{_Semi, 4, 12},   // ;
		{_Rbrace, 5, 1},  // }
		{_EOF, 5, 2},
	}

	s := NewScanner("test.c", strings.NewReader(src), nil)
	for i, exp := range expected {
		s.Next()
		pos := s.Pos()
		if s.Token() != exp.tok {
			t.Errorf("token %d: got %v, want %v", i, s.Token(), exp.tok)
		}
		if pos.Line() != exp.line || pos.Col() != exp.col {
			t.Errorf("token %d (%v): pos = %d:%d, want %d:%d",
				i, s.Token(), pos.Line(), pos.Col(), exp.line, exp.col)
		}
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"unterminated_string", `"hello`, "string not terminated"},
		{"bad_escape", `"\q"`, "unknown escape sequence"},
		{"bad_hex_escape", `"\xGG"`, "invalid hex escape"},
		{"bad_hex_literal", "0xGG", "invalid hex digit"},
		{"bad_octal_literal", "09", "invalid digit in octal literal"},
		{"bad_suffix", "12abc", "invalid suffix"},
		{"empty_exponent", "1e", "exponent has no digits"},
		{"empty_char", "''", "empty character constant"},
		{"long_char", "'ab'", "character constant not terminated"},
		{"unterminated_comment", "/* never", "comment not terminated"},
		{"function_macro", "#define F(x) x", "function-like macros are not supported"},
		{"unknown_directive", "#ifdef X", "unsupported preprocessor directive"},
		{"hash_midline", "a # b", "unexpected '#'"},
		{"bad_char", "@", "unexpected character"},
		{"bad_char_dollar", "$", "unexpected character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errMsg string
			errh := func(line, col uint32, msg string) {
				if errMsg == "" { // capture first error only
					errMsg = msg
				}
			}
			s := NewScanner("test", strings.NewReader(tt.src), errh)
			for {
				s.Next()
				if s.Token().IsEOF() {
					break
				}
			}
			if errMsg == "" {
				t.Errorf("expected error containing %q, got no error", tt.wantErr)
			} else if !strings.Contains(errMsg, tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, errMsg)
			}
		})
	}
}

func TestCompleteProgram(t *testing.T) {
	src := `#include <stdio.h>
#define N 10

struct point {
    int x;
    double y;
};

int add(int a, int b) {
    return a + b;
}

int main(void) {
    struct point p;
    int i;
    p.x = 10;
    p.y = 3.14;
    for (i = 0; i < N; i++) {
        p.x += add(i, 2);
    }
    printf("%d\n", p.x);
    return 0;
}
`

	s := NewScanner("test.c", strings.NewReader(src), nil)
	tokenCount := 0
	for {
		s.Next()
		tokenCount++
		if s.Token().IsEOF() {
			break
		}
		if tokenCount > 1000 {
			t.Fatal("too many tokens, possible infinite loop")
		}
	}

	if tokenCount < 80 {
		t.Errorf("expected at least 80 tokens, got %d", tokenCount)
	}
}

func FuzzScanner(f *testing.F) {
	seeds := []string{
		"#include <stdio.h>",
		"int main() { return 0; }",
		`char *s = "hello\nworld";`,
		"x = 0x1F + 017 + 'a';",
		"if (a && b || c) { }",
		"for (i = 0; i < 10; i++) { }",
		"struct point { int x; };",
		"p->x += 10;",
		"/* comment */ foo",
		"#define N 10\nN",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, src string) {
		errh := func(line, col uint32, msg string) {}
		s := NewScanner("fuzz", strings.NewReader(src), errh)
		for i := 0; i < 10000; i++ {
			s.Next()
			if s.Token().IsEOF() {
				break
			}
		}
	})
}
