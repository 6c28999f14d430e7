package syntax

// Visitor is called for each node during Walk.
// If it returns false, the children of the node are not visited.
type Visitor func(node *Node) bool

// Walk traverses a syntax tree in depth-first order. Nil children are
// skipped. If visitor returns false, children are not visited.
func Walk(node *Node, v Visitor) {
	if node == nil || !v(node) {
		return
	}
	for _, c := range node.children {
		Walk(c, v)
	}
}

// Inspect traverses a syntax tree and calls f for each node.
// Convenience wrapper around Walk.
func Inspect(node *Node, f func(*Node) bool) {
	Walk(node, Visitor(f))
}

// Find returns the first node in depth-first order for which f reports
// true, or nil.
func Find(node *Node, f func(*Node) bool) *Node {
	var found *Node
	Walk(node, func(n *Node) bool {
		if found != nil {
			return false
		}
		if f(n) {
			found = n
			return false
		}
		return true
	})
	return found
}
