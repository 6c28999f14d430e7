package syntax

import "fmt"

// Kind identifies the production a Node represents. The children of
// each kind are listed next to it; "?" marks a child that may be nil.
type Kind uint8

const (
	Invalid Kind = iota

	// Top level
	TranslationUnit // [Include | FuncDef | Declaration ...]
	Include         // Value = header name
	FuncDef         // [DeclSpecifiers, Declarator, Compound]; Value = name

	// Declarations
	Declaration       // [DeclSpecifiers, InitDeclarator ...]
	DeclSpecifiers    // [TypeSpec | TypedefName | StructSpec | UnionSpec | EnumSpec | Qualifier ...]; Value = storage class or ""
	TypeSpec          // Value = "int", "unsigned", ...
	TypedefName       // Value = name
	Qualifier         // Value = "const" or "volatile"
	StructSpec        // [FieldList?]; Value = tag or ""
	UnionSpec         // [FieldList?]; Value = tag or ""
	FieldList         // [StructDeclaration ...]
	StructDeclaration // [DeclSpecifiers, Declarator ...]
	EnumSpec          // [EnumList?]; Value = tag or ""
	EnumList          // [Enumerator ...]
	Enumerator        // [expr?]; Value = name
	InitDeclarator    // [Declarator, initializer?]; Value = declared name
	Declarator        // [PointerDecl | ArrayDecl | FuncDecl ...] in application order; Value = name or ""
	PointerDecl       // Value = "const" or ""
	ArrayDecl         // [size?]
	FuncDecl          // [ParamList]
	ParamList         // [ParamDecl ... Ellipsis?]
	ParamDecl         // [DeclSpecifiers, Declarator]
	Ellipsis          //
	TypeName          // [DeclSpecifiers, Declarator]
	InitList          // [initializer ...]

	// Statements
	Compound // [Declaration | statement ...]
	ExprStmt // [expr]
	If       // [cond, then, else?]
	While    // [cond, body]
	DoWhile  // [body, cond]
	For      // [init?, cond?, post?, body]; init is a Declaration or expression
	Switch   // [expr, body]
	Case     // [expr, statement]
	Default  // [statement]
	Break    //
	Continue //
	Return   // [expr?]
	Empty    //

	// Expressions
	Ident       // Value = name
	IntConst    // Value = literal text
	FloatConst  // Value = literal text
	CharConst   // Value = decoded character
	StringLit   // Value = decoded, concatenated contents
	Binary      // [x, y]; Value = operator
	LogicalAnd  // [x, y]
	LogicalOr   // [x, y]
	Assign      // [lhs, rhs]; Value = "=" or compound operator like "+="
	Unary       // [x]; Value = "-", "+", "~" or "!"
	Deref       // [x]
	AddrOf      // [x]
	PreInc      // [x]
	PreDec      // [x]
	PostInc     // [x]
	PostDec     // [x]
	Cast        // [TypeName, x]
	SizeofExpr  // [x]
	SizeofType  // [TypeName]
	Call        // [fn, ArgList]
	ArgList     // [expr ...]
	Index       // [x, index]
	Member      // [x]; Value = field name
	PtrMember   // [x]; Value = field name
	Conditional // [cond, x, y]
	Comma       // [x, y]

	kindCount
)

var kindNames = [...]string{
	Invalid:           "Invalid",
	TranslationUnit:   "TranslationUnit",
	Include:           "Include",
	FuncDef:           "FuncDef",
	Declaration:       "Declaration",
	DeclSpecifiers:    "DeclSpecifiers",
	TypeSpec:          "TypeSpec",
	TypedefName:       "TypedefName",
	Qualifier:         "Qualifier",
	StructSpec:        "StructSpec",
	UnionSpec:         "UnionSpec",
	FieldList:         "FieldList",
	StructDeclaration: "StructDeclaration",
	EnumSpec:          "EnumSpec",
	EnumList:          "EnumList",
	Enumerator:        "Enumerator",
	InitDeclarator:    "InitDeclarator",
	Declarator:        "Declarator",
	PointerDecl:       "PointerDecl",
	ArrayDecl:         "ArrayDecl",
	FuncDecl:          "FuncDecl",
	ParamList:         "ParamList",
	ParamDecl:         "ParamDecl",
	Ellipsis:          "Ellipsis",
	TypeName:          "TypeName",
	InitList:          "InitList",
	Compound:          "Compound",
	ExprStmt:          "ExprStmt",
	If:                "If",
	While:             "While",
	DoWhile:           "DoWhile",
	For:               "For",
	Switch:            "Switch",
	Case:              "Case",
	Default:           "Default",
	Break:             "Break",
	Continue:          "Continue",
	Return:            "Return",
	Empty:             "Empty",
	Ident:             "Ident",
	IntConst:          "IntConst",
	FloatConst:        "FloatConst",
	CharConst:         "CharConst",
	StringLit:         "StringLit",
	Binary:            "Binary",
	LogicalAnd:        "LogicalAnd",
	LogicalOr:         "LogicalOr",
	Assign:            "Assign",
	Unary:             "Unary",
	Deref:             "Deref",
	AddrOf:            "AddrOf",
	PreInc:            "PreInc",
	PreDec:            "PreDec",
	PostInc:           "PostInc",
	PostDec:           "PostDec",
	Cast:              "Cast",
	SizeofExpr:        "SizeofExpr",
	SizeofType:        "SizeofType",
	Call:              "Call",
	ArgList:           "ArgList",
	Index:             "Index",
	Member:            "Member",
	PtrMember:         "PtrMember",
	Conditional:       "Conditional",
	Comma:             "Comma",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsStatement reports whether nodes of kind k are statements.
func (k Kind) IsStatement() bool {
	return k >= Compound && k <= Empty
}

// IsExpr reports whether nodes of kind k are expressions.
func (k Kind) IsExpr() bool {
	return k >= Ident && k <= Comma
}

// Node is a node of the syntax tree. Every production uses the same
// structure: a kind, an optional value string, a position, and an
// ordered list of children. Absent optional clauses are nil children.
// Nodes are not modified after parsing.
type Node struct {
	Kind  Kind
	Value string
	Pos   Pos

	children []*Node
	parent   *Node
}

// NewNode creates a node with no children.
func NewNode(kind Kind, pos Pos, value string) *Node {
	return &Node{Kind: kind, Value: value, Pos: pos}
}

// Add appends children to n, setting their parent to n. Nil children
// are kept as placeholders. It returns n.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			c.parent = n
		}
		n.children = append(n.children, c)
	}
	return n
}

// Children returns the children of n.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children, including nil ones.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// Child returns the i'th child, or nil if it is absent.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Parent returns the node n was added to. It is meant for diagnostics.
func (n *Node) Parent() *Node {
	return n.parent
}

// Line returns the 1-based source line of n.
func (n *Node) Line() int {
	return int(n.Pos.Line())
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Value != "" {
		return fmt.Sprintf("%s %q", n.Kind, n.Value)
	}
	return n.Kind.String()
}
