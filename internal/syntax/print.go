package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a textual representation of the tree rooted at node to
// w, one node per line, children indented below their parent.
func Fprint(w io.Writer, node *Node) {
	p := &printer{w: w}
	p.print(node)
}

type printer struct {
	w      io.Writer
	indent int
}

func (p *printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s%s", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

func (p *printer) print(n *Node) {
	if n == nil {
		p.printf("-\n")
		return
	}

	switch {
	case n.Kind == StringLit, n.Kind == CharConst:
		p.printf("%s %q %s\n", n.Kind, n.Value, n.Pos)
	case n.Value != "":
		p.printf("%s %s %s\n", n.Kind, n.Value, n.Pos)
	default:
		p.printf("%s %s\n", n.Kind, n.Pos)
	}

	p.indent++
	for _, c := range n.children {
		p.print(c)
	}
	p.indent--
}
