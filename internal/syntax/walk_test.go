package syntax

import "testing"

func TestWalk(t *testing.T) {
	src := `int main() {
	int x = 1 + 2;
	return x;
}
`
	f := parseFile(t, src)

	var nodeCount int
	var identCount int
	Walk(f, func(n *Node) bool {
		nodeCount++
		if n.Kind == Ident {
			identCount++
		}
		return true
	})

	if nodeCount == 0 {
		t.Error("Walk visited no nodes")
	}
	if identCount != 1 {
		t.Errorf("Ident nodes = %d, want 1", identCount)
	}
}

func TestWalkPrune(t *testing.T) {
	f := parseFile(t, "int f() { return 1; }\nint g() { return 2; }\n")

	var visited []Kind
	Walk(f, func(n *Node) bool {
		visited = append(visited, n.Kind)
		return n.Kind != FuncDef
	})

	want := []Kind{TranslationUnit, FuncDef, FuncDef}
	if len(visited) != len(want) {
		t.Fatalf("visited = %v, want %v", visited, want)
	}
}

func TestInspect(t *testing.T) {
	src := `int f(int x) {
	if (x > 0) {
		if (x > 1) return 2;
		return 1;
	}
	return 0;
}
`
	f := parseFile(t, src)

	var ifCount int
	Inspect(f, func(n *Node) bool {
		if n.Kind == If {
			ifCount++
		}
		return true
	})

	if ifCount != 2 {
		t.Errorf("expected 2 If nodes, got %d", ifCount)
	}
}

func TestFind(t *testing.T) {
	f := parseFile(t, "int main() { int a = 3; return a * 4; }")

	n := Find(f, func(n *Node) bool { return n.Kind == Binary })
	if n == nil {
		t.Fatal("Find returned nil")
	}
	if n.Value != "*" {
		t.Errorf("found %s, want Binary *", n)
	}
	if p := n.Parent(); p == nil || p.Kind != Return {
		t.Errorf("parent = %v, want Return", p)
	}

	if Find(f, func(n *Node) bool { return n.Kind == While }) != nil {
		t.Error("Find matched a node that does not exist")
	}
}

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		kind Kind
		stmt bool
		expr bool
	}{
		{Compound, true, false},
		{Return, true, false},
		{Empty, true, false},
		{Ident, false, true},
		{Comma, false, true},
		{Declaration, false, false},
		{TranslationUnit, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.IsStatement(); got != tt.stmt {
				t.Errorf("IsStatement() = %v, want %v", got, tt.stmt)
			}
			if got := tt.kind.IsExpr(); got != tt.expr {
				t.Errorf("IsExpr() = %v, want %v", got, tt.expr)
			}
		})
	}

	if got := Kind(200).String(); got != "Kind(200)" {
		t.Errorf("String() = %q, want Kind(200)", got)
	}
}
