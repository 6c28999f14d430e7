package syntax

import (
	"encoding/json"
	"io"
)

// FprintJSON writes a JSON representation of the tree to w.
func FprintJSON(w io.Writer, node *Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(node))
}

func toJSON(n *Node) interface{} {
	if n == nil {
		return nil
	}

	m := map[string]interface{}{
		"type": n.Kind.String(),
		"line": n.Pos.Line(),
		"col":  n.Pos.Col(),
	}
	if n.Value != "" {
		m["value"] = n.Value
	}
	if len(n.children) > 0 {
		children := make([]interface{}, len(n.children))
		for i, c := range n.children {
			children[i] = toJSON(c)
		}
		m["children"] = children
	}
	return m
}
