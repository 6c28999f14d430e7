package syntax

import (
	"io"
	"strings"
)

// Maximum number of errors before aborting parse.
const maxErrors = 10

// Maximum number of macro expansions while producing one source token.
const maxExpansions = 64

// SyntaxError represents a syntax error.
type SyntaxError struct {
	Pos Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// Position returns the location of the error.
func (e *SyntaxError) Position() Pos {
	return e.Pos
}

// ErrorHandler is called for each syntax error.
type ErrorHandler func(pos Pos, msg string)

// token is a scanned token, buffered for lookahead and macro expansion.
type token struct {
	tok  Token
	lit  string
	kind LitKind
	pos  Pos
}

// Parser performs syntax analysis on C source code.
type Parser struct {
	scanner *Scanner

	// Current token info (cached from scanner)
	tok  Token
	lit  string
	kind LitKind
	pos  Pos

	ahead    *token  // one-token lookahead
	pending  []token // tokens of a macro expansion not yet consumed
	macros   map[string][]token
	expands  int // expansions since the last token read from source
	consumed int // tokens consumed, for detecting loops that make no progress

	// Error handling
	errh   ErrorHandler
	errcnt int
	first  error // first error encountered
	abort  bool  // set to true when error limit reached

	// Ordinary identifiers declared per scope; true marks a typedef name.
	scopes []map[string]bool
}

// NewParser creates a new Parser for the given source.
func NewParser(filename string, src io.Reader, errh ErrorHandler) *Parser {
	p := &Parser{
		errh:   errh,
		macros: make(map[string][]token),
		scopes: []map[string]bool{{}},
	}
	scanErrh := func(line, col uint32, msg string) {
		p.syntaxErrorAt(NewPos(filename, line, col), msg)
	}
	p.scanner = NewScanner(filename, src, scanErrh)
	p.next() // prime the parser with first token
	return p
}

// ParseFile parses a complete translation unit. It returns the tree,
// which is usable for inspection even when errors were reported, and
// the first error.
func ParseFile(filename string, src io.Reader, errh ErrorHandler) (*Node, error) {
	p := NewParser(filename, src, errh)
	f := p.Parse()
	return f, p.FirstError()
}

// ----------------------------------------------------------------------------
// Token navigation

// next advances to the next token.
func (p *Parser) next() {
	if p.abort {
		p.tok = _EOF
		return
	}
	p.consumed++
	var t token
	if p.ahead != nil {
		t = *p.ahead
		p.ahead = nil
	} else {
		t = p.fetch()
	}
	p.tok, p.lit, p.kind, p.pos = t.tok, t.lit, t.kind, t.pos
}

// peek returns the token after the current one without consuming it.
func (p *Parser) peek() token {
	if p.ahead == nil {
		t := p.fetch()
		p.ahead = &t
	}
	return *p.ahead
}

// fetch produces the next token after directive handling and macro
// replacement.
func (p *Parser) fetch() token {
	for {
		var t token
		if len(p.pending) > 0 {
			t = p.pending[0]
			p.pending = p.pending[1:]
		} else {
			p.scanner.Next()
			t = token{p.scanner.Token(), p.scanner.Literal(), p.scanner.LitKind(), p.scanner.Pos()}
			p.expands = 0
		}

		switch t.tok {
		case _Define:
			body, bpos := p.scanner.Body()
			p.define(t.lit, body, bpos)
			continue
		case _Name:
			if body, ok := p.macros[t.lit]; ok {
				p.expands++
				if p.expands > maxExpansions {
					p.syntaxErrorAt(t.pos, "macro "+t.lit+" expands recursively")
					p.pending = nil
					continue
				}
				// Replacement tokens take the position of the use site.
				expansion := make([]token, len(body), len(body)+len(p.pending))
				for i, b := range body {
					b.pos = t.pos
					expansion[i] = b
				}
				p.pending = append(expansion, p.pending...)
				continue
			}
		}
		return t
	}
}

// define records an object-like macro.
func (p *Parser) define(name, body string, pos Pos) {
	errh := func(line, col uint32, msg string) {
		p.syntaxErrorAt(pos, "in definition of "+name+": "+msg)
	}
	s := NewScanner(pos.Filename(), strings.NewReader(body), errh)
	var toks []token
	for {
		s.Next()
		if s.Token() == _EOF {
			break
		}
		if s.Token().IsDirective() {
			errh(0, 0, "directive in macro body")
			continue
		}
		toks = append(toks, token{s.Token(), s.Literal(), s.LitKind(), pos})
	}
	p.macros[name] = toks
}

// got reports whether the current token is tok.
// If so, it consumes the token and returns true.
func (p *Parser) got(tok Token) bool {
	if p.tok == tok {
		p.next()
		return true
	}
	return false
}

// want consumes the current token if it matches tok.
// Otherwise, reports an error.
func (p *Parser) want(tok Token) {
	if !p.got(tok) {
		p.syntaxError("expected " + tok.String())
		p.advance()
	}
}

// ----------------------------------------------------------------------------
// Error handling

// syntaxError reports a syntax error at the current position.
func (p *Parser) syntaxError(msg string) {
	p.syntaxErrorAt(p.pos, msg)
}

// syntaxErrorAt reports a syntax error at a specific position.
func (p *Parser) syntaxErrorAt(pos Pos, msg string) {
	if p.abort {
		return
	}
	if p.errcnt == 0 {
		p.first = &SyntaxError{Pos: pos, Msg: msg}
	}
	p.errcnt++

	if p.errh != nil {
		p.errh(pos, msg)
	}

	p.errorLimitCheck(pos)
}

// errorLimitCheck aborts parsing if too many errors have occurred.
func (p *Parser) errorLimitCheck(pos Pos) {
	if p.errcnt >= maxErrors {
		p.abort = true
		if p.errh != nil {
			p.errh(pos, "too many errors; aborting parse")
		}
		p.tok = _EOF
	}
}

// advance skips tokens until it finds a synchronization point.
// This is used for error recovery.
func (p *Parser) advance() {
	for p.tok != _EOF {
		switch p.tok {
		case _Semi, _Rbrace:
			p.next()
			return
		case _Lbrace, _If, _While, _Do, _For, _Switch, _Return, _Break, _Continue:
			return
		}
		p.next()
	}
}

// Errors returns the number of errors encountered during parsing.
func (p *Parser) Errors() int {
	return p.errcnt
}

// FirstError returns the first error encountered, or nil if none.
func (p *Parser) FirstError() error {
	return p.first
}

// Macros returns the names of the macros defined so far.
func (p *Parser) Macros() []string {
	names := make([]string, 0, len(p.macros))
	for name := range p.macros {
		names = append(names, name)
	}
	return names
}

// ----------------------------------------------------------------------------
// Typedef name tracking

func (p *Parser) pushScope() {
	p.scopes = append(p.scopes, map[string]bool{})
}

func (p *Parser) popScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

// declare records an ordinary identifier in the innermost scope.
func (p *Parser) declare(name string, typedef bool) {
	if name != "" {
		p.scopes[len(p.scopes)-1][name] = typedef
	}
}

// isTypedefName reports whether name currently denotes a typedef.
func (p *Parser) isTypedefName(name string) bool {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if typedef, ok := p.scopes[i][name]; ok {
			return typedef
		}
	}
	return false
}

// startsType reports whether t begins a type name.
func (p *Parser) startsType(t token) bool {
	switch {
	case t.tok.isTypeKeyword():
		return true
	case t.tok == _Struct, t.tok == _Union, t.tok == _Enum, t.tok == _Const, t.tok == _Volatile:
		return true
	case t.tok == _Name:
		return p.isTypedefName(t.lit)
	}
	return false
}

// startsDeclaration reports whether the current token begins a declaration.
func (p *Parser) startsDeclaration() bool {
	return p.tok.isStorageClass() || p.startsType(p.current())
}

func (p *Parser) current() token {
	return token{p.tok, p.lit, p.kind, p.pos}
}

// ----------------------------------------------------------------------------
// Parsing entry point

// Parse parses a complete translation unit and returns its tree.
func (p *Parser) Parse() *Node {
	tu := NewNode(TranslationUnit, p.pos, "")

	for !p.abort && p.tok != _EOF {
		switch p.tok {
		case _Include:
			tu.Add(NewNode(Include, p.pos, p.lit))
			p.next()
		case _Semi:
			p.next()
		default:
			n := p.consumed
			if d := p.externalDecl(); d != nil {
				tu.Add(d)
			}
			if p.consumed == n {
				p.next()
			}
		}
	}

	return tu
}

// ----------------------------------------------------------------------------
// Declarations

// declMode selects which declarator forms are accepted.
type declMode int

const (
	named    declMode = iota // declarations: a name is required
	abstract                 // type names: no name
	either                   // parameters: name optional
)

// externalDecl parses a function definition or a file-scope declaration.
func (p *Parser) externalDecl() *Node {
	pos := p.pos
	specs := p.declSpecifiers()
	if specs == nil {
		p.syntaxError("expected declaration")
		p.advance()
		return nil
	}
	if p.got(_Semi) {
		return NewNode(Declaration, pos, "").Add(specs)
	}

	d := p.declarator(named)
	if isFuncDeclarator(d) && p.tok == _Lbrace {
		fn := NewNode(FuncDef, pos, d.Value).Add(specs, d)
		p.declare(d.Value, false)
		fn.Add(p.funcBody(d))
		return fn
	}
	return p.declRest(pos, specs, d)
}

// isFuncDeclarator reports whether d declares a function, that is its
// outermost modifier is a function declarator.
func isFuncDeclarator(d *Node) bool {
	n := d.NumChildren()
	return n > 0 && d.Child(n-1).Kind == FuncDecl
}

// funcBody parses the body of a function definition with the
// parameters of d in scope.
func (p *Parser) funcBody(d *Node) *Node {
	p.pushScope()
	defer p.popScope()
	fd := d.Child(d.NumChildren() - 1)
	for _, param := range fd.Child(0).Children() {
		if param.Kind == ParamDecl {
			p.declare(param.Child(1).Value, false)
		}
	}
	return p.compound(false)
}

// declaration parses a block-scope declaration.
func (p *Parser) declaration() *Node {
	pos := p.pos
	specs := p.declSpecifiers()
	if p.got(_Semi) {
		return NewNode(Declaration, pos, "").Add(specs)
	}
	d := p.declarator(named)
	if isFuncDeclarator(d) && p.tok == _Lbrace {
		p.syntaxError("function definition is not allowed here")
		p.compound(true)
		return nil
	}
	return p.declRest(pos, specs, d)
}

// declRest parses the remaining init-declarators of a declaration whose
// first declarator is d.
func (p *Parser) declRest(pos Pos, specs, d *Node) *Node {
	decl := NewNode(Declaration, pos, "").Add(specs)
	typedef := specs.Value == "typedef"
	for {
		p.declare(d.Value, typedef)
		var init *Node
		if p.got(_Assign) {
			if typedef {
				p.syntaxError("typedef cannot be initialized")
			}
			init = p.initializer()
		}
		decl.Add(NewNode(InitDeclarator, d.Pos, d.Value).Add(d, init))
		if !p.got(_Comma) {
			break
		}
		d = p.declarator(named)
	}
	p.want(_Semi)
	return decl
}

// initializer parses an expression or a brace-enclosed initializer list.
func (p *Parser) initializer() *Node {
	if p.tok != _Lbrace {
		return p.assignExpr()
	}
	list := NewNode(InitList, p.pos, "")
	p.next()
	for p.tok != _Rbrace && p.tok != _EOF {
		list.Add(p.initializer())
		if !p.got(_Comma) {
			break
		}
	}
	p.want(_Rbrace)
	return list
}

// declSpecifiers parses storage classes, qualifiers and type specifiers.
// It returns nil if the current token starts none of them.
func (p *Parser) declSpecifiers() *Node {
	specs := NewNode(DeclSpecifiers, p.pos, "")
	sawType := false
	found := false

loop:
	for {
		switch {
		case p.tok.isStorageClass():
			if specs.Value != "" {
				p.syntaxError("multiple storage classes in declaration")
			}
			specs.Value = p.lit
			p.next()

		case p.tok == _Const || p.tok == _Volatile:
			specs.Add(NewNode(Qualifier, p.pos, p.lit))
			p.next()

		case p.tok.isTypeKeyword():
			specs.Add(NewNode(TypeSpec, p.pos, p.lit))
			sawType = true
			p.next()

		case p.tok == _Struct || p.tok == _Union:
			specs.Add(p.structSpec())
			sawType = true

		case p.tok == _Enum:
			specs.Add(p.enumSpec())
			sawType = true

		case p.tok == _Name && !sawType && p.isTypedefName(p.lit):
			specs.Add(NewNode(TypedefName, p.pos, p.lit))
			sawType = true
			p.next()

		default:
			break loop
		}
		found = true
	}

	if !found {
		return nil
	}
	if !sawType {
		p.syntaxErrorAt(specs.Pos, "expected type specifier")
	}
	return specs
}

// structSpec parses struct or union [tag] [{ fields }].
func (p *Parser) structSpec() *Node {
	kind := StructSpec
	if p.tok == _Union {
		kind = UnionSpec
	}
	n := NewNode(kind, p.pos, "")
	p.next()

	if p.tok == _Name {
		n.Value = p.lit
		p.next()
	}
	if p.tok != _Lbrace {
		if n.Value == "" {
			p.syntaxError("expected struct tag or member list")
		}
		return n.Add(nil)
	}

	fields := NewNode(FieldList, p.pos, "")
	p.next()
	for p.tok != _Rbrace && p.tok != _EOF && !p.abort {
		fields.Add(p.structDeclaration())
	}
	p.want(_Rbrace)
	return n.Add(fields)
}

// structDeclaration parses one member declaration: type a, *b, c[3];
func (p *Parser) structDeclaration() *Node {
	pos := p.pos
	specs := p.declSpecifiers()
	if specs == nil {
		p.syntaxError("expected member declaration")
		p.advance()
		return nil
	}
	if specs.Value != "" {
		p.syntaxErrorAt(pos, "storage class not allowed on struct member")
	}
	sd := NewNode(StructDeclaration, pos, "").Add(specs)
	for {
		sd.Add(p.declarator(named))
		if p.tok == _Colon {
			p.syntaxError("bit-fields are not supported")
			p.advance()
			return sd
		}
		if !p.got(_Comma) {
			break
		}
	}
	p.want(_Semi)
	return sd
}

// enumSpec parses enum [tag] [{ A, B = 2, ... }].
func (p *Parser) enumSpec() *Node {
	n := NewNode(EnumSpec, p.pos, "")
	p.next()

	if p.tok == _Name {
		n.Value = p.lit
		p.next()
	}
	if p.tok != _Lbrace {
		if n.Value == "" {
			p.syntaxError("expected enum tag or enumerator list")
		}
		return n.Add(nil)
	}

	list := NewNode(EnumList, p.pos, "")
	p.next()
	for p.tok == _Name {
		e := NewNode(Enumerator, p.pos, p.lit)
		p.declare(p.lit, false)
		p.next()
		var val *Node
		if p.got(_Assign) {
			val = p.conditionalExpr()
		}
		list.Add(e.Add(val))
		if !p.got(_Comma) {
			break
		}
	}
	if list.NumChildren() == 0 {
		p.syntaxError("expected enumerator")
	}
	p.want(_Rbrace)
	return n.Add(list)
}

// declarator parses a declarator and returns it with its modifiers in
// the order they apply to the declared base type.
func (p *Parser) declarator(mode declMode) *Node {
	d := NewNode(Declarator, p.pos, "")
	d.Add(p.declaratorMods(d, mode)...)
	return d
}

// declaratorMods parses pointers, the direct declarator and its suffixes.
// For int *(*x)[3] it yields [pointer, array 3, pointer]: the outer
// pointers apply first, then the outer suffixes right to left, then the
// parenthesized inner declarator.
func (p *Parser) declaratorMods(d *Node, mode declMode) []*Node {
	var ptrs []*Node
	for p.tok == _Mul {
		ptr := NewNode(PointerDecl, p.pos, "")
		p.next()
		for p.tok == _Const || p.tok == _Volatile {
			if p.tok == _Const {
				ptr.Value = "const"
			}
			p.next()
		}
		ptrs = append(ptrs, ptr)
	}

	var inner []*Node
	switch {
	case p.tok == _Name && mode != abstract:
		d.Value = p.lit
		d.Pos = p.pos
		p.next()
	case p.tok == _Lparen && p.nestedDeclarator(mode):
		p.next()
		inner = p.declaratorMods(d, mode)
		p.want(_Rparen)
	case mode == named:
		p.syntaxError("expected identifier in declarator")
	}

	var suffixes []*Node
	for {
		switch p.tok {
		case _Lbrack:
			a := NewNode(ArrayDecl, p.pos, "")
			p.next()
			var size *Node
			if p.tok != _Rbrack {
				size = p.conditionalExpr()
			}
			p.want(_Rbrack)
			suffixes = append(suffixes, a.Add(size))
			continue
		case _Lparen:
			f := NewNode(FuncDecl, p.pos, "")
			suffixes = append(suffixes, f.Add(p.paramList()))
			continue
		}
		break
	}

	mods := ptrs
	for i := len(suffixes) - 1; i >= 0; i-- {
		mods = append(mods, suffixes[i])
	}
	return append(mods, inner...)
}

// nestedDeclarator reports whether the '(' at the current token opens a
// parenthesized declarator rather than a parameter list.
func (p *Parser) nestedDeclarator(mode declMode) bool {
	if mode == named {
		return true
	}
	t := p.peek()
	switch t.tok {
	case _Mul, _Lbrack:
		return true
	case _Lparen:
		return true
	case _Name:
		return mode == either && !p.isTypedefName(t.lit)
	}
	return false
}

// paramList parses (params), (void) or ().
func (p *Parser) paramList() *Node {
	pl := NewNode(ParamList, p.pos, "")
	p.want(_Lparen)

	if p.tok == _Void && p.peek().tok == _Rparen {
		p.next()
		p.next()
		return pl
	}

	for p.tok != _Rparen && p.tok != _EOF && !p.abort {
		if p.tok == _Ellipsis {
			if pl.NumChildren() == 0 {
				p.syntaxError("a named parameter is required before '...'")
			}
			pl.Add(NewNode(Ellipsis, p.pos, ""))
			p.next()
			break
		}
		pos := p.pos
		specs := p.declSpecifiers()
		if specs == nil {
			p.syntaxError("expected parameter declaration")
			p.advance()
			return pl
		}
		pl.Add(NewNode(ParamDecl, pos, "").Add(specs, p.declarator(either)))
		if !p.got(_Comma) {
			break
		}
	}
	p.want(_Rparen)
	return pl
}

// typeName parses a type name as used in casts and sizeof.
func (p *Parser) typeName() *Node {
	tn := NewNode(TypeName, p.pos, "")
	specs := p.declSpecifiers()
	if specs == nil {
		p.syntaxError("expected type name")
		specs = NewNode(DeclSpecifiers, p.pos, "")
	}
	return tn.Add(specs, p.declarator(abstract))
}

// ----------------------------------------------------------------------------
// Statements

// compound parses { items... }. A function body shares the scope its
// parameters were declared in; scoped is false for it.
func (p *Parser) compound(scoped bool) *Node {
	b := NewNode(Compound, p.pos, "")
	p.want(_Lbrace)
	if scoped {
		p.pushScope()
		defer p.popScope()
	}

	for p.tok != _Rbrace && p.tok != _EOF && !p.abort {
		n := p.consumed
		if item := p.blockItem(); item != nil {
			b.Add(item)
		}
		if p.consumed == n {
			p.next()
		}
	}

	p.want(_Rbrace)
	return b
}

// blockItem parses a declaration or a statement.
func (p *Parser) blockItem() *Node {
	if p.startsDeclaration() {
		return p.declaration()
	}
	return p.stmt()
}

// stmt parses a statement.
func (p *Parser) stmt() *Node {
	pos := p.pos
	switch p.tok {
	case _Lbrace:
		return p.compound(true)

	case _If:
		p.next()
		s := NewNode(If, pos, "").Add(p.parenExpr(), p.stmt())
		var els *Node
		if p.got(_Else) {
			els = p.stmt()
		}
		return s.Add(els)

	case _While:
		p.next()
		return NewNode(While, pos, "").Add(p.parenExpr(), p.stmt())

	case _Do:
		p.next()
		body := p.stmt()
		p.want(_While)
		cond := p.parenExpr()
		p.want(_Semi)
		return NewNode(DoWhile, pos, "").Add(body, cond)

	case _For:
		return p.forStmt()

	case _Switch:
		p.next()
		return NewNode(Switch, pos, "").Add(p.parenExpr(), p.stmt())

	case _Case:
		p.next()
		x := p.conditionalExpr()
		p.want(_Colon)
		return NewNode(Case, pos, "").Add(x, p.stmt())

	case _Default:
		p.next()
		p.want(_Colon)
		return NewNode(Default, pos, "").Add(p.stmt())

	case _Break, _Continue:
		kind := Break
		if p.tok == _Continue {
			kind = Continue
		}
		p.next()
		p.want(_Semi)
		return NewNode(kind, pos, "")

	case _Return:
		p.next()
		var x *Node
		if p.tok != _Semi {
			x = p.expr()
		}
		p.want(_Semi)
		return NewNode(Return, pos, "").Add(x)

	case _Semi:
		p.next()
		return NewNode(Empty, pos, "")

	case _Include:
		p.syntaxError("#include must appear at file scope")
		p.next()
		return nil
	}

	x := p.expr()
	s := NewNode(ExprStmt, pos, "").Add(x)
	p.want(_Semi)
	return s
}

// forStmt parses for (init; cond; post) body. A declaration in init is
// scoped to the loop.
func (p *Parser) forStmt() *Node {
	s := NewNode(For, p.pos, "")
	p.want(_For)
	p.want(_Lparen)
	p.pushScope()
	defer p.popScope()

	var init, cond, post *Node
	switch {
	case p.startsDeclaration():
		init = p.declaration()
	case p.tok != _Semi:
		init = p.expr()
		p.want(_Semi)
	default:
		p.next()
	}
	if p.tok != _Semi {
		cond = p.expr()
	}
	p.want(_Semi)
	if p.tok != _Rparen {
		post = p.expr()
	}
	p.want(_Rparen)
	return s.Add(init, cond, post, p.stmt())
}

// parenExpr parses ( expr ).
func (p *Parser) parenExpr() *Node {
	p.want(_Lparen)
	x := p.expr()
	p.want(_Rparen)
	return x
}

// ----------------------------------------------------------------------------
// Expressions

// expr parses a comma expression.
func (p *Parser) expr() *Node {
	x := p.assignExpr()
	for p.tok == _Comma {
		p.next()
		x = NewNode(Comma, x.Pos, "").Add(x, p.assignExpr())
	}
	return x
}

// assignExpr parses an assignment, which is right associative.
func (p *Parser) assignExpr() *Node {
	x := p.conditionalExpr()
	if p.tok.IsAssign() {
		op := p.lit
		p.next()
		return NewNode(Assign, x.Pos, op).Add(x, p.assignExpr())
	}
	return x
}

// conditionalExpr parses cond ? x : y.
func (p *Parser) conditionalExpr() *Node {
	c := p.binaryExpr(0)
	if !p.got(_Question) {
		return c
	}
	x := p.expr()
	p.want(_Colon)
	return NewNode(Conditional, c.Pos, "").Add(c, x, p.conditionalExpr())
}

// binaryExpr parses a binary expression with minimum precedence prec.
// Implements Pratt parsing / precedence climbing.
func (p *Parser) binaryExpr(prec int) *Node {
	x := p.castExpr()

	for {
		// Check if current token is a binary operator with sufficient precedence
		oprec := p.tok.Precedence()
		if oprec <= prec {
			return x
		}

		// Binary expression position starts at the left operand.
		var op *Node
		switch p.tok {
		case _AndAnd:
			op = NewNode(LogicalAnd, x.Pos, "")
		case _OrOr:
			op = NewNode(LogicalOr, x.Pos, "")
		default:
			op = NewNode(Binary, x.Pos, p.lit)
		}
		p.next() // consume operator

		// Parse right operand with higher precedence (left associative)
		x = op.Add(x, p.binaryExpr(oprec))
	}
}

// castExpr parses (type) x or a unary expression.
func (p *Parser) castExpr() *Node {
	if p.tok == _Lparen && p.startsType(p.peek()) {
		pos := p.pos
		p.next()
		tn := p.typeName()
		p.want(_Rparen)
		return NewNode(Cast, pos, "").Add(tn, p.castExpr())
	}
	return p.unaryExpr()
}

// unaryExpr parses a unary expression.
func (p *Parser) unaryExpr() *Node {
	pos := p.pos
	switch p.tok {
	case _Inc, _Dec:
		kind := PreInc
		if p.tok == _Dec {
			kind = PreDec
		}
		p.next()
		return NewNode(kind, pos, "").Add(p.unaryExpr())

	case _And: // & (address-of)
		p.next()
		return NewNode(AddrOf, pos, "").Add(p.castExpr())

	case _Mul: // * (dereference)
		p.next()
		return NewNode(Deref, pos, "").Add(p.castExpr())

	case _Add, _Sub, _Tilde, _Not:
		op := p.lit
		p.next()
		return NewNode(Unary, pos, op).Add(p.castExpr())

	case _Sizeof:
		p.next()
		if p.tok == _Lparen && p.startsType(p.peek()) {
			p.next()
			tn := p.typeName()
			p.want(_Rparen)
			return NewNode(SizeofType, pos, "").Add(tn)
		}
		return NewNode(SizeofExpr, pos, "").Add(p.unaryExpr())
	}
	return p.postfixExpr()
}

// postfixExpr parses calls, indexing, member access and x++ / x--.
func (p *Parser) postfixExpr() *Node {
	x := p.primaryExpr()

	for {
		switch p.tok {
		case _Lparen: // function call
			args := NewNode(ArgList, p.pos, "")
			p.next()
			if p.tok != _Rparen {
				args.Add(p.assignExpr())
				for p.got(_Comma) {
					args.Add(p.assignExpr())
				}
			}
			p.want(_Rparen)
			x = NewNode(Call, x.Pos, "").Add(x, args)

		case _Lbrack: // index expression
			p.next()
			idx := p.expr()
			p.want(_Rbrack)
			x = NewNode(Index, x.Pos, "").Add(x, idx)

		case _Dot, _Arrow:
			kind := Member
			if p.tok == _Arrow {
				kind = PtrMember
			}
			p.next()
			name := "_"
			if p.tok == _Name {
				name = p.lit
				p.next()
			} else {
				p.syntaxError("expected member name")
			}
			x = NewNode(kind, x.Pos, name).Add(x)

		case _Inc:
			p.next()
			x = NewNode(PostInc, x.Pos, "").Add(x)

		case _Dec:
			p.next()
			x = NewNode(PostDec, x.Pos, "").Add(x)

		default:
			return x
		}
	}
}

// primaryExpr parses identifiers, constants and parenthesized expressions.
func (p *Parser) primaryExpr() *Node {
	pos := p.pos
	switch p.tok {
	case _Name:
		n := NewNode(Ident, pos, p.lit)
		p.next()
		return n

	case _Literal:
		switch p.kind {
		case IntLit:
			n := NewNode(IntConst, pos, p.lit)
			p.next()
			return n
		case FloatLit:
			n := NewNode(FloatConst, pos, p.lit)
			p.next()
			return n
		case CharLit:
			n := NewNode(CharConst, pos, p.lit)
			p.next()
			return n
		}
		// adjacent string literals concatenate
		var b strings.Builder
		for p.tok == _Literal && p.kind == StrLit {
			b.WriteString(p.lit)
			p.next()
		}
		return NewNode(StringLit, pos, b.String())

	case _Lparen: // parenthesized expression
		p.next()
		x := p.expr()
		p.want(_Rparen)
		return x
	}

	p.syntaxError("expected expression")
	n := NewNode(Ident, pos, "_") // error recovery
	if p.tok != _Semi && p.tok != _Rbrace && p.tok != _Rparen {
		p.next()
	}
	return n
}
