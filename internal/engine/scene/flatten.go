package scene

import (
	"fmt"
	"strings"
)

// Part is a one-line description of a node, used for load-time debug dumps.
type Part struct {
	Path     string
	Kind     string
	Material string
	Vertices int
}

// String formats the part for logs.
func (p Part) String() string {
	if p.Kind != "mesh" {
		return fmt.Sprintf("%s [%s]", p.Path, p.Kind)
	}
	return fmt.Sprintf("%s [mesh material=%q vertices=%d]", p.Path, p.Material, p.Vertices)
}

// KindName returns a short label for the node's variant.
func KindName(n Node) string {
	switch v := n.(type) {
	case *GroupNode:
		return "group"
	case *MeshNode:
		return "mesh"
	case *OtherNode:
		if v.Kind != "" {
			return v.Kind
		}
		return "other"
	default:
		return "unknown"
	}
}

// Flatten lists every node under root in traversal order with its
// slash-separated path from root.
func Flatten(root Node) []Part {
	var parts []Part
	var visit func(n Node, path []string)
	visit = func(n Node, path []string) {
		path = append(path, n.Base().Name)
		p := Part{
			Path: strings.Join(path, "/"),
			Kind: KindName(n),
		}
		if m, ok := n.(*MeshNode); ok {
			if m.Material != nil {
				p.Material = m.Material.MaterialName()
			}
			if m.Geometry != nil {
				p.Vertices = m.Geometry.VertexCount()
			}
		}
		parts = append(parts, p)
		for _, c := range n.Base().Children() {
			visit(c, path)
		}
	}
	visit(root, nil)
	return parts
}
