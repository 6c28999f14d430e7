// Package syntax implements lexical analysis and parsing for the C subset
// run by the LearnCS interpreter.
package syntax

import "fmt"

// Token represents the type of a lexical token.
type Token uint

const (
	// Special tokens
	_EOF   Token = iota // end of file
	_Error              // lexical error

	// Literals
	_Name    // identifier: foo, bar, main
	_Literal // literal value (used with LitKind)

	// Preprocessor directives, recognized at the start of a line
	_Include // #include <stdio.h>; lit holds the header name
	_Define  // #define NAME body; lit holds NAME

	// Operators (ordered by precedence, low to high)
	// Assignment
	_Assign   // =
	_AssignOp // += -= *= /= %= &= |= ^= <<= >>=; lit holds the operator

	_Question // ?
	_Colon    // :

	// Logical operators
	_OrOr   // ||
	_AndAnd // &&

	// Bitwise operators
	_Or  // |
	_Xor // ^
	_And // &

	// Comparison operators
	_Eql // ==
	_Neq // !=
	_Lss // <
	_Leq // <=
	_Gtr // >
	_Geq // >=

	// Shifts
	_Shl // <<
	_Shr // >>

	// Arithmetic operators
	_Add // +
	_Sub // -
	_Mul // *
	_Div // /
	_Rem // %

	// Unary operators
	_Not   // !
	_Tilde // ~
	_Inc   // ++
	_Dec   // --

	// Delimiters
	_Lparen   // (
	_Rparen   // )
	_Lbrack   // [
	_Rbrack   // ]
	_Lbrace   // {
	_Rbrace   // }
	_Comma    // ,
	_Semi     // ;
	_Dot      // .
	_Arrow    // ->
	_Ellipsis // ...

	// Keywords
	_Auto
	_Break
	_Case
	_Char
	_Const
	_Continue
	_Default
	_Do
	_Double
	_Else
	_Enum
	_Extern
	_Float
	_For
	_If
	_Int
	_Long
	_Register
	_Return
	_Short
	_Signed
	_Sizeof
	_Static
	_Struct
	_Switch
	_Typedef
	_Union
	_Unsigned
	_Void
	_Volatile
	_While

	tokenCount
)

// tokenNames maps tokens to their string representation.
var tokenNames = [...]string{
	_EOF:   "EOF",
	_Error: "ERROR",

	_Name:    "NAME",
	_Literal: "LITERAL",

	_Include: "#include",
	_Define:  "#define",

	_Assign:   "=",
	_AssignOp: "op=",

	_Question: "?",
	_Colon:    ":",

	_OrOr:   "||",
	_AndAnd: "&&",

	_Or:  "|",
	_Xor: "^",
	_And: "&",

	_Eql: "==",
	_Neq: "!=",
	_Lss: "<",
	_Leq: "<=",
	_Gtr: ">",
	_Geq: ">=",

	_Shl: "<<",
	_Shr: ">>",

	_Add: "+",
	_Sub: "-",
	_Mul: "*",
	_Div: "/",
	_Rem: "%",

	_Not:   "!",
	_Tilde: "~",
	_Inc:   "++",
	_Dec:   "--",

	_Lparen:   "(",
	_Rparen:   ")",
	_Lbrack:   "[",
	_Rbrack:   "]",
	_Lbrace:   "{",
	_Rbrace:   "}",
	_Comma:    ",",
	_Semi:     ";",
	_Dot:      ".",
	_Arrow:    "->",
	_Ellipsis: "...",

	_Auto:     "auto",
	_Break:    "break",
	_Case:     "case",
	_Char:     "char",
	_Const:    "const",
	_Continue: "continue",
	_Default:  "default",
	_Do:       "do",
	_Double:   "double",
	_Else:     "else",
	_Enum:     "enum",
	_Extern:   "extern",
	_Float:    "float",
	_For:      "for",
	_If:       "if",
	_Int:      "int",
	_Long:     "long",
	_Register: "register",
	_Return:   "return",
	_Short:    "short",
	_Signed:   "signed",
	_Sizeof:   "sizeof",
	_Static:   "static",
	_Struct:   "struct",
	_Switch:   "switch",
	_Typedef:  "typedef",
	_Union:    "union",
	_Unsigned: "unsigned",
	_Void:     "void",
	_Volatile: "volatile",
	_While:    "while",
}

// String returns the string representation of the token.
func (t Token) String() string {
	if t < tokenCount {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", t)
}

// Precedence returns the operator precedence for binary operators.
// Returns 0 for non-operators.
// Precedence levels (higher = binds tighter):
//
//	1: ||
//	2: &&
//	3: |
//	4: ^
//	5: &
//	6: == !=
//	7: < <= > >=
//	8: << >>
//	9: + -
//	10: * / %
func (t Token) Precedence() int {
	switch t {
	case _OrOr:
		return 1
	case _AndAnd:
		return 2
	case _Or:
		return 3
	case _Xor:
		return 4
	case _And:
		return 5
	case _Eql, _Neq:
		return 6
	case _Lss, _Leq, _Gtr, _Geq:
		return 7
	case _Shl, _Shr:
		return 8
	case _Add, _Sub:
		return 9
	case _Mul, _Div, _Rem:
		return 10
	}
	return 0
}

// IsKeyword reports whether t is a keyword token.
func (t Token) IsKeyword() bool {
	return t >= _Auto && t <= _While
}

// IsLiteral reports whether t is a literal token.
func (t Token) IsLiteral() bool {
	return t == _Literal
}

// IsOperator reports whether t is an operator token.
func (t Token) IsOperator() bool {
	return t >= _Assign && t <= _Dec
}

// IsEOF reports whether t is the EOF token.
func (t Token) IsEOF() bool {
	return t == _EOF
}

// IsDirective reports whether t is a preprocessor directive.
func (t Token) IsDirective() bool {
	return t == _Include || t == _Define
}

// IsAssign reports whether t is = or a compound assignment operator.
func (t Token) IsAssign() bool {
	return t == _Assign || t == _AssignOp
}

// isTypeKeyword reports whether t is a basic type specifier keyword.
func (t Token) isTypeKeyword() bool {
	switch t {
	case _Void, _Char, _Short, _Int, _Long, _Float, _Double, _Signed, _Unsigned:
		return true
	}
	return false
}

// isStorageClass reports whether t is a storage-class specifier.
func (t Token) isStorageClass() bool {
	switch t {
	case _Auto, _Static, _Extern, _Typedef, _Register:
		return true
	}
	return false
}

// LitKind represents the kind of a literal token.
type LitKind uint8

const (
	IntLit   LitKind = iota // 123, 0x1F, 017, 10u, 5L
	FloatLit                // 3.14, 1e10, 2.5f
	CharLit                 // 'a', '\n'
	StrLit                  // "hello", "line\n"
)

// litKindNames maps literal kinds to their string representation.
var litKindNames = [...]string{
	IntLit:   "int",
	FloatLit: "float",
	CharLit:  "char",
	StrLit:   "string",
}

// String returns the string representation of the literal kind.
func (k LitKind) String() string {
	if k <= StrLit {
		return litKindNames[k]
	}
	return fmt.Sprintf("LitKind(%d)", k)
}

// keywords maps keyword strings to their token type.
var keywords = map[string]Token{
	"auto":     _Auto,
	"break":    _Break,
	"case":     _Case,
	"char":     _Char,
	"const":    _Const,
	"continue": _Continue,
	"default":  _Default,
	"do":       _Do,
	"double":   _Double,
	"else":     _Else,
	"enum":     _Enum,
	"extern":   _Extern,
	"float":    _Float,
	"for":      _For,
	"if":       _If,
	"int":      _Int,
	"long":     _Long,
	"register": _Register,
	"return":   _Return,
	"short":    _Short,
	"signed":   _Signed,
	"sizeof":   _Sizeof,
	"static":   _Static,
	"struct":   _Struct,
	"switch":   _Switch,
	"typedef":  _Typedef,
	"union":    _Union,
	"unsigned": _Unsigned,
	"void":     _Void,
	"volatile": _Volatile,
	"while":    _While,
}

// LookupKeyword returns the token for the given identifier string.
// If the identifier is a keyword, returns the keyword token.
// Otherwise, returns _Name.
func LookupKeyword(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return _Name
}
